/*
 * @module service/ingestion/kafka_source
 * @description Kafka批次来源，消费JSON消息攒批，空闲超时视为流排空
 * @architecture 数据接入层 - 实现pipeline.BatchSource
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 订阅 -> 攒批返回 -> 空闲超时返回io.EOF
 * @rules 无法解码的消息跳过并计数，不阻断消费；偏移量随消费组自动提交
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/pipeline/reducer.go
 */

package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/pipeline"

	"github.com/segmentio/kafka-go"
)

const (
	defaultKafkaBatchSize   = 10000
	defaultKafkaIdleTimeout = 5 * time.Second
)

// KafkaSourceOptions Kafka来源配置
type KafkaSourceOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	// BatchSize 每批最大记录数，<=0取默认值
	BatchSize int
	// MaxRecords 本次运行最多消费的记录数，<=0不限
	MaxRecords int64
	// IdleTimeout 连续无新消息达到该时长即视为流排空，<=0取默认值
	IdleTimeout time.Duration
	// FromEarliest 无已提交偏移量时是否从最早开始
	FromEarliest bool
}

// KafkaSource Kafka批次来源
type KafkaSource struct {
	reader     *kafka.Reader
	opts       KafkaSourceOptions
	consumed   int64
	decodeErrs int64
	drained    bool
}

// NewKafkaSource 创建Kafka批次来源
func NewKafkaSource(opts KafkaSourceOptions) (*KafkaSource, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("Kafka来源缺少broker配置")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("Kafka来源缺少topic配置")
	}
	if opts.GroupID == "" {
		return nil, fmt.Errorf("Kafka来源缺少消费组配置")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultKafkaBatchSize
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultKafkaIdleTimeout
	}

	startOffset := kafka.LastOffset
	if opts.FromEarliest {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     opts.Brokers,
		Topic:       opts.Topic,
		GroupID:     opts.GroupID,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
		MaxWait:     time.Second,
		StartOffset: startOffset,
	})

	slog.Info("Kafka批次来源已创建", "topic", opts.Topic, "group_id", opts.GroupID, "brokers", opts.Brokers)
	return &KafkaSource{reader: reader, opts: opts}, nil
}

// Next 攒一批消息返回。空闲超时且批为空时返回io.EOF。
func (s *KafkaSource) Next(ctx context.Context) (pipeline.Batch, error) {
	if s.drained {
		return nil, io.EOF
	}
	if s.opts.MaxRecords > 0 && atomic.LoadInt64(&s.consumed) >= s.opts.MaxRecords {
		s.drained = true
		return nil, io.EOF
	}

	batch := make(pipeline.Batch, 0, s.opts.BatchSize)
	for len(batch) < s.opts.BatchSize {
		if s.opts.MaxRecords > 0 && atomic.LoadInt64(&s.consumed) >= s.opts.MaxRecords {
			s.drained = true
			break
		}

		msgCtx, cancel := context.WithTimeout(ctx, s.opts.IdleTimeout)
		msg, err := s.reader.ReadMessage(msgCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				// 空闲超时，当前流视为排空
				s.drained = true
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("读取Kafka消息失败 topic=%s: %w", s.opts.Topic, err)
		}

		record, err := decodeRecord(msg.Value)
		if err != nil {
			atomic.AddInt64(&s.decodeErrs, 1)
			slog.Warn("跳过无法解码的Kafka消息",
				"topic", s.opts.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}

		batch = append(batch, record)
		atomic.AddInt64(&s.consumed, 1)
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Close 关闭底层消费者
func (s *KafkaSource) Close() error {
	if err := s.reader.Close(); err != nil {
		return fmt.Errorf("关闭Kafka消费者失败: %w", err)
	}
	return nil
}

// Consumed 已消费的记录数
func (s *KafkaSource) Consumed() int64 {
	return atomic.LoadInt64(&s.consumed)
}

// DecodeErrors 解码失败的消息数
func (s *KafkaSource) DecodeErrors() int64 {
	return atomic.LoadInt64(&s.decodeErrs)
}

// decodeRecord 将消息体解码为一条原始记录
func decodeRecord(data []byte) (cleansing.RawRecord, error) {
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("消息不是JSON对象: %w", err)
	}
	return cleansing.RawRecord(record), nil
}
