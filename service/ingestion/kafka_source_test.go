/*
 * @module service/ingestion/kafka_source_test
 * @description Kafka批次来源单元测试，覆盖配置校验与消息解码
 * @architecture 单元测试 - 不连接真实Broker
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 构造配置/消息体 -> 断言校验与解码结果
 * @rules 无法解码的消息跳过不阻断消费
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs kafka_source.go
 */

package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaSource_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    KafkaSourceOptions
		wantErr string
	}{
		{
			name:    "缺少broker",
			opts:    KafkaSourceOptions{Topic: "sales", GroupID: "g1"},
			wantErr: "broker",
		},
		{
			name:    "缺少topic",
			opts:    KafkaSourceOptions{Brokers: []string{"localhost:9092"}, GroupID: "g1"},
			wantErr: "topic",
		},
		{
			name:    "缺少消费组",
			opts:    KafkaSourceOptions{Brokers: []string{"localhost:9092"}, Topic: "sales"},
			wantErr: "消费组",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKafkaSource(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	t.Run("JSON对象解码为原始记录", func(t *testing.T) {
		record, err := decodeRecord([]byte(`{"order_id":"ORD1","quantity":2,"unit_price":10.5}`))
		require.NoError(t, err)
		assert.Equal(t, "ORD1", record["order_id"])
		assert.Equal(t, float64(2), record["quantity"])
		assert.Equal(t, 10.5, record["unit_price"])
	})

	t.Run("非JSON消息报错", func(t *testing.T) {
		_, err := decodeRecord([]byte("not json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "消息不是JSON对象")
	})

	t.Run("JSON数组不是对象", func(t *testing.T) {
		_, err := decodeRecord([]byte(`[1,2,3]`))
		require.Error(t, err)
	})
}
