/*
 * @module service/pipeline/report_publisher
 * @description 质量报告发布器，运行完成后将质量报告推送到Kafka主题，供下游订阅
 * @architecture 适配器模式 - 封装kafka-go生产者，未配置broker时降级为空操作
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 运行完成 -> 序列化报告 -> 按运行ID作为消息键发送
 * @rules 发布失败只记录日志，不影响运行结果落库
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/run_service.go
 */

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReportPublisherConfig 报告发布配置
type ReportPublisherConfig struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	BatchTimeout time.Duration `json:"batch_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// ReportPublisher 将运行质量报告发布到Kafka
type ReportPublisher struct {
	writer *kafka.Writer
	config ReportPublisherConfig
}

// reportEnvelope 发布到主题的消息体
type reportEnvelope struct {
	RunID       string        `json:"run_id"`
	CompletedAt time.Time     `json:"completed_at"`
	Quality     QualityReport `json:"quality"`
}

// NewReportPublisher 创建报告发布器，brokers为空时返回空操作发布器
func NewReportPublisher(config ReportPublisherConfig) *ReportPublisher {
	if len(config.Brokers) == 0 || config.Topic == "" {
		return &ReportPublisher{config: config}
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 100 * time.Millisecond
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: config.BatchTimeout,
	}
	return &ReportPublisher{writer: writer, config: config}
}

// Enabled 是否真正配置了Kafka发布
func (p *ReportPublisher) Enabled() bool {
	return p.writer != nil
}

// Publish 发送一次运行的质量报告，消息键为运行ID
func (p *ReportPublisher) Publish(ctx context.Context, runID string, quality QualityReport) error {
	if p.writer == nil {
		return nil
	}

	envelope := reportEnvelope{
		RunID:       runID,
		CompletedAt: time.Now(),
		Quality:     quality,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("序列化质量报告消息失败: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.config.WriteTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(runID),
		Value: value,
		Time:  envelope.CompletedAt,
	}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("发送质量报告失败 topic=%s: %w", p.config.Topic, err)
	}

	slog.Info("质量报告已发布", "topic", p.config.Topic, "run_id", runID)
	return nil
}

// Close 关闭底层生产者
func (p *ReportPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("关闭报告生产者失败: %w", err)
	}
	return nil
}
