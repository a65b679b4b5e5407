/*
 * @module service/cleanup/run_retention_service
 * @description 运行保留期清理服务，定期删除超过保留期的终态运行记录及其归档报告
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 定时触发 -> 读取保留期配置 -> 删除过期归档 -> 记录结果
 * @rules 只清理终态运行，running/pending状态的记录交由看门狗处理
 * @dependencies gorm.io/gorm, github.com/robfig/cron/v3
 * @refs service/models/pipeline_models.go, service/monitoring/stale_run_watchdog.go
 */

package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"salescleanse-service/service/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const defaultRetentionDays = 30

// RunRetentionService 运行保留期清理服务
type RunRetentionService struct {
	db            *gorm.DB
	retentionDays int
	cron          *cron.Cron
	ctx           context.Context
	cancel        context.CancelFunc
	started       bool
}

// NewRunRetentionService 创建运行保留期清理服务，保留天数取自RUN_RETENTION_DAYS
func NewRunRetentionService(db *gorm.DB) *RunRetentionService {
	retentionDays := defaultRetentionDays
	if raw := os.Getenv("RUN_RETENTION_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.Warn("RUN_RETENTION_DAYS无效，使用默认值", "raw", raw, "default_days", defaultRetentionDays)
		} else {
			retentionDays = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RunRetentionService{
		db:            db,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithSeconds()),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// CleanupExpiredRuns 删除超过保留期的终态运行及其归档报告，返回删除的运行数
func (s *RunRetentionService) CleanupExpiredRuns(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	slog.Debug("清理过期运行记录", "cutoff", cutoff.Format("2006-01-02 15:04:05"), "retention_days", s.retentionDays)

	terminalStates := []string{
		models.RunStatusSucceeded,
		models.RunStatusFailed,
		models.RunStatusCanceled,
	}

	var expiredIDs []string
	err := s.db.WithContext(ctx).Model(&models.PipelineRun{}).
		Where("status IN ? AND created_at < ?", terminalStates, cutoff).
		Pluck("id", &expiredIDs).Error
	if err != nil {
		return 0, fmt.Errorf("查询过期运行失败: %w", err)
	}
	if len(expiredIDs) == 0 {
		return 0, nil
	}

	// 先删归档报告再删运行记录
	if err := s.db.WithContext(ctx).Where("run_id IN ?", expiredIDs).Delete(&models.QualityReportRecord{}).Error; err != nil {
		return 0, fmt.Errorf("删除归档报告失败: %w", err)
	}

	result := s.db.WithContext(ctx).Where("id IN ?", expiredIDs).Delete(&models.PipelineRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除运行记录失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// StartScheduledCleanup 启动定时清理任务
func (s *RunRetentionService) StartScheduledCleanup() error {
	if s.started {
		return fmt.Errorf("运行保留期清理调度器已经启动")
	}

	// 每天凌晨3点执行清理
	_, err := s.cron.AddFunc("0 0 3 * * *", func() {
		s.sweep()
	})
	if err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true

	slog.Info("运行保留期清理调度器启动成功", "retention_days", s.retentionDays)

	// 启动时立即执行一次清理
	go s.sweep()

	return nil
}

// StopScheduledCleanup 停止定时清理任务
func (s *RunRetentionService) StopScheduledCleanup() {
	if !s.started {
		return
	}

	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.started = false

	slog.Info("运行保留期清理调度器已停止")
}

func (s *RunRetentionService) sweep() {
	startTime := time.Now()

	deleted, err := s.CleanupExpiredRuns(s.ctx)
	if err != nil {
		slog.Error("运行保留期清理失败", "error", err)
		return
	}

	slog.Info("运行保留期清理完成",
		"deleted_runs", deleted,
		"retention_days", s.retentionDays,
		"duration_ms", time.Since(startTime).Milliseconds())
}
