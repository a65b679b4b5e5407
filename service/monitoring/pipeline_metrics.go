/*
 * @module service/monitoring/pipeline_metrics
 * @description 清洗流水线Prometheus指标，覆盖记录吞吐、剔除原因分布、批次与运行时长、活跃运行数
 * @architecture 分层架构 - 观测层，指标注册到默认registry由/metrics暴露
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 服务启动注册 -> 运行过程中打点 -> promhttp拉取
 * @rules 指标只反映进程内事实，不参与清洗计数口径
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs main.go, service/run_service.go
 */

package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics 清洗流水线指标集合
type PipelineMetrics struct {
	RecordsProcessed  *prometheus.CounterVec // 按结果(cleaned/removed)统计的记录数
	RecordsRejected   *prometheus.CounterVec // 按剔除原因统计的记录数
	BatchesConsumed   prometheus.Counter
	BatchDuration     prometheus.Histogram
	RunDuration       prometheus.Histogram
	ActiveRuns        prometheus.Gauge
	RunsTotal         *prometheus.CounterVec // 按终态统计的运行数
	ReportsPublished  prometheus.Counter
	WatchdogReclaimed prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsInstance *PipelineMetrics
)

// GetPipelineMetrics 获取全局指标集合，首次调用时注册到默认registry
func GetPipelineMetrics() *PipelineMetrics {
	metricsOnce.Do(func() {
		metricsInstance = newPipelineMetrics()
		metricsInstance.register()
	})
	return metricsInstance
}

func newPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salescleanse_records_processed_total",
			Help: "处理的记录总数，按结果分类",
		}, []string{"outcome"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salescleanse_records_rejected_total",
			Help: "剔除的记录总数，按原因分类",
		}, []string{"reason"}),
		BatchesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescleanse_batches_consumed_total",
			Help: "消费的批次总数",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salescleanse_batch_duration_seconds",
			Help:    "单批次处理时长",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salescleanse_run_duration_seconds",
			Help:    "整次运行时长",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "salescleanse_active_runs",
			Help: "当前进行中的运行数",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salescleanse_runs_total",
			Help: "完成的运行总数，按终态分类",
		}, []string{"status"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescleanse_reports_published_total",
			Help: "发布到Kafka的质量报告数",
		}),
		WatchdogReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescleanse_watchdog_reclaimed_runs_total",
			Help: "看门狗回收的僵死运行数",
		}),
	}
}

func (m *PipelineMetrics) register() {
	prometheus.MustRegister(
		m.RecordsProcessed,
		m.RecordsRejected,
		m.BatchesConsumed,
		m.BatchDuration,
		m.RunDuration,
		m.ActiveRuns,
		m.RunsTotal,
		m.ReportsPublished,
		m.WatchdogReclaimed,
	)
}
