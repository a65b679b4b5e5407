/*
 * @module service/ingestion/mqtt_source
 * @description MQTT批次来源，订阅主题将JSON消息缓冲攒批，空闲超时视为流排空
 * @architecture 数据接入层 - 实现pipeline.BatchSource
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 连接订阅 -> 回调写入缓冲 -> 攒批返回 -> 空闲超时返回io.EOF
 * @rules 缓冲满时丢弃新消息并计数，订阅回调永不阻塞
 * @dependencies github.com/eclipse/paho.mqtt.golang, encoding/json
 * @refs service/pipeline/reducer.go
 */

package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/pipeline"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	defaultMQTTBatchSize   = 10000
	defaultMQTTIdleTimeout = 5 * time.Second
	defaultMQTTBufferSize  = 65536
)

// MQTTSourceOptions MQTT来源配置
type MQTTSourceOptions struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	QoS      byte
	// BatchSize 每批最大记录数，<=0取默认值
	BatchSize int
	// MaxRecords 本次运行最多接收的记录数，<=0不限
	MaxRecords int64
	// IdleTimeout 连续无新消息达到该时长即视为流排空，<=0取默认值
	IdleTimeout time.Duration
	// BufferSize 接收缓冲大小，<=0取默认值
	BufferSize int
}

// MQTTSource MQTT批次来源
type MQTTSource struct {
	client     mqtt.Client
	opts       MQTTSourceOptions
	records    chan cleansing.RawRecord
	consumed   int64
	decodeErrs int64
	dropped    int64
	drained    bool
}

// NewMQTTSource 连接broker并订阅主题
func NewMQTTSource(opts MQTTSourceOptions) (*MQTTSource, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("MQTT来源缺少broker配置")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("MQTT来源缺少topic配置")
	}
	if opts.ClientID == "" {
		opts.ClientID = "salescleanse-" + uuid.New().String()[:8]
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultMQTTBatchSize
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultMQTTIdleTimeout
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultMQTTBufferSize
	}

	s := &MQTTSource{
		opts:    opts,
		records: make(chan cleansing.RawRecord, opts.BufferSize),
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetCleanSession(true)
	clientOpts.SetKeepAlive(30 * time.Second)
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("MQTT连接断开", "broker", opts.Broker, "error", err)
	})

	s.client = mqtt.NewClient(clientOpts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT连接失败 %s: %w", opts.Broker, token.Error())
	}

	if token := s.client.Subscribe(opts.Topic, opts.QoS, s.onMessage); token.Wait() && token.Error() != nil {
		s.client.Disconnect(250)
		return nil, fmt.Errorf("订阅主题失败 topic=%s: %w", opts.Topic, token.Error())
	}

	slog.Info("MQTT批次来源已订阅", "broker", opts.Broker, "topic", opts.Topic, "client_id", opts.ClientID)
	return s, nil
}

// onMessage 订阅回调，解码后写入缓冲，缓冲满时丢弃
func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	record, err := decodeRecord(msg.Payload())
	if err != nil {
		atomic.AddInt64(&s.decodeErrs, 1)
		slog.Warn("跳过无法解码的MQTT消息", "topic", msg.Topic(), "error", err)
		return
	}

	select {
	case s.records <- record:
	default:
		atomic.AddInt64(&s.dropped, 1)
	}
}

// Next 攒一批消息返回。空闲超时且批为空时返回io.EOF。
func (s *MQTTSource) Next(ctx context.Context) (pipeline.Batch, error) {
	if s.drained {
		return nil, io.EOF
	}
	if s.opts.MaxRecords > 0 && atomic.LoadInt64(&s.consumed) >= s.opts.MaxRecords {
		s.drained = true
		return nil, io.EOF
	}

	batch := make(pipeline.Batch, 0, s.opts.BatchSize)
	idle := time.NewTimer(s.opts.IdleTimeout)
	defer idle.Stop()

	for len(batch) < s.opts.BatchSize {
		if s.opts.MaxRecords > 0 && atomic.LoadInt64(&s.consumed) >= s.opts.MaxRecords {
			s.drained = true
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case record := <-s.records:
			batch = append(batch, record)
			atomic.AddInt64(&s.consumed, 1)
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(s.opts.IdleTimeout)
		case <-idle.C:
			// 空闲超时，当前流视为排空
			s.drained = true
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Close 取消订阅并断开连接
func (s *MQTTSource) Close() error {
	if token := s.client.Unsubscribe(s.opts.Topic); token.Wait() && token.Error() != nil {
		slog.Warn("取消订阅失败", "topic", s.opts.Topic, "error", token.Error())
	}
	s.client.Disconnect(250)
	return nil
}

// Consumed 已接收的记录数
func (s *MQTTSource) Consumed() int64 {
	return atomic.LoadInt64(&s.consumed)
}

// DecodeErrors 解码失败的消息数
func (s *MQTTSource) DecodeErrors() int64 {
	return atomic.LoadInt64(&s.decodeErrs)
}

// Dropped 因缓冲满被丢弃的消息数
func (s *MQTTSource) Dropped() int64 {
	return atomic.LoadInt64(&s.dropped)
}
