/*
 * @module service/monitoring/stale_run_watchdog
 * @description 僵死运行看门狗，定期扫描长时间停留在running状态的运行并标记失败
 * @architecture 分层架构 - 观测层后台任务
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 周期扫描 -> 超过阈值的running运行 -> 置为failed并记录原因
 * @rules 进程崩溃会留下永远running的记录，看门狗是唯一的兜底回收路径
 * @dependencies gorm.io/gorm, github.com/prometheus/common/model
 * @refs service/init.go, service/models/pipeline_models.go
 */

package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"salescleanse-service/service/models"

	"github.com/prometheus/common/model"
	"gorm.io/gorm"
)

const (
	defaultStaleThreshold = "30m"
	defaultScanInterval   = 5 * time.Minute
)

// StaleRunWatchdog 僵死运行看门狗
type StaleRunWatchdog struct {
	db        *gorm.DB
	metrics   *PipelineMetrics
	threshold time.Duration
	interval  time.Duration
	cancel    context.CancelFunc
}

// NewStaleRunWatchdog 创建看门狗，阈值取自RUN_STALE_THRESHOLD（Prometheus时长格式，如30m、1h30m）
func NewStaleRunWatchdog(db *gorm.DB, metrics *PipelineMetrics) (*StaleRunWatchdog, error) {
	raw := os.Getenv("RUN_STALE_THRESHOLD")
	if raw == "" {
		raw = defaultStaleThreshold
	}
	parsed, err := model.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("解析RUN_STALE_THRESHOLD失败 %q: %w", raw, err)
	}

	return &StaleRunWatchdog{
		db:        db,
		metrics:   metrics,
		threshold: time.Duration(parsed),
		interval:  defaultScanInterval,
	}, nil
}

// Start 启动周期扫描
func (w *StaleRunWatchdog) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		slog.Info("僵死运行看门狗已启动", "threshold", w.threshold.String(), "interval", w.interval.String())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.scanOnce()
			}
		}
	}()
}

// Stop 停止扫描
func (w *StaleRunWatchdog) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *StaleRunWatchdog) scanOnce() {
	cutoff := time.Now().Add(-w.threshold)

	var stale []models.PipelineRun
	err := w.db.Where("status = ? AND start_time < ?", models.RunStatusRunning, cutoff).Find(&stale).Error
	if err != nil {
		slog.Error("看门狗扫描失败", "error", err)
		return
	}

	for i := range stale {
		run := &stale[i]
		now := time.Now()
		updates := map[string]interface{}{
			"status":        models.RunStatusFailed,
			"end_time":      now,
			"error_message": fmt.Sprintf("运行超过%s未结束，被看门狗标记失败", w.threshold),
		}
		if run.StartTime != nil {
			updates["duration"] = now.Sub(*run.StartTime).Milliseconds()
		}

		if err := w.db.Model(&models.PipelineRun{}).Where("id = ? AND status = ?", run.ID, models.RunStatusRunning).Updates(updates).Error; err != nil {
			slog.Error("看门狗标记运行失败", "run_id", run.ID, "error", err)
			continue
		}

		if w.metrics != nil {
			w.metrics.WatchdogReclaimed.Inc()
		}
		slog.Warn("看门狗回收僵死运行", "run_id", run.ID, "started_at", run.StartTime)
	}
}
