/*
 * @module service/scheduler/pipeline_scheduler
 * @description 定时清洗调度器，按cron表达式触发流水线运行
 * @architecture 基于cron库的调度器模式，表达式含秒位共六段
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 加载启用的定时任务 -> cron触发 -> 提交运行 -> 回写最近运行信息
 * @rules cron库不支持按ID移除任务，任何增删改后整体重建调度器
 * @dependencies github.com/robfig/cron/v3, gorm.io/gorm
 * @refs service/models/pipeline_models.go, service/run_service.go
 */

package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salescleanse-service/service/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cron表达式解析器，与cron.WithSeconds保持同一格式
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RunLauncher 触发运行的依赖接口，由运行编排服务实现
type RunLauncher interface {
	LaunchScheduled(schedule *models.ScheduledPipeline) (runID string, err error)
}

// PipelineScheduler 定时清洗调度器
type PipelineScheduler struct {
	db       *gorm.DB
	launcher RunLauncher
	cron     *cron.Cron
	mu       sync.Mutex
	started  bool
}

// NewPipelineScheduler 创建调度器
func NewPipelineScheduler(db *gorm.DB, launcher RunLauncher) *PipelineScheduler {
	return &PipelineScheduler{
		db:       db,
		launcher: launcher,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start 启动调度器并加载启用的定时任务
func (s *PipelineScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Start()
	s.started = true

	if err := s.loadSchedulesLocked(); err != nil {
		return err
	}

	slog.Info("定时清洗调度器已启动")
	return nil
}

// Stop 停止调度器
func (s *PipelineScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	s.started = false
	slog.Info("定时清洗调度器已停止")
}

// loadSchedulesLocked 加载全部启用的定时任务，调用方需持有锁
func (s *PipelineScheduler) loadSchedulesLocked() error {
	var schedules []models.ScheduledPipeline
	if err := s.db.Where("is_enabled = ?", true).Find(&schedules).Error; err != nil {
		return fmt.Errorf("加载定时任务失败: %w", err)
	}

	for i := range schedules {
		schedule := schedules[i]
		scheduleID := schedule.ID
		_, err := s.cron.AddFunc(schedule.CronExpr, func() {
			s.trigger(scheduleID)
		})
		if err != nil {
			slog.Error("注册定时任务失败", "schedule_id", scheduleID, "cron_expr", schedule.CronExpr, "error", err)
			continue
		}
		slog.Info("注册定时任务", "schedule_id", scheduleID, "name", schedule.Name, "cron_expr", schedule.CronExpr)
	}

	slog.Info("定时任务加载完成", "count", len(schedules))
	return nil
}

// rebuildLocked 重建cron实例并重新加载，调用方需持有锁
func (s *PipelineScheduler) rebuildLocked() error {
	if !s.started {
		return nil
	}
	s.cron.Stop()
	s.cron = cron.New(cron.WithSeconds())
	s.cron.Start()
	return s.loadSchedulesLocked()
}

// trigger 定时触发一次运行
func (s *PipelineScheduler) trigger(scheduleID string) {
	var schedule models.ScheduledPipeline
	if err := s.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		slog.Error("定时任务已不存在", "schedule_id", scheduleID, "error", err)
		return
	}
	if !schedule.IsEnabled {
		return
	}

	runID, err := s.launcher.LaunchScheduled(&schedule)
	if err != nil {
		slog.Error("定时触发运行失败", "schedule_id", scheduleID, "error", err)
		return
	}

	now := time.Now()
	if err := s.db.Model(&models.ScheduledPipeline{}).Where("id = ?", scheduleID).Updates(map[string]interface{}{
		"last_run_id": runID,
		"last_run_at": now,
	}).Error; err != nil {
		slog.Error("回写定时任务运行信息失败", "schedule_id", scheduleID, "error", err)
	}

	slog.Info("定时任务已触发运行", "schedule_id", scheduleID, "run_id", runID)
}

// CreateSchedule 创建定时任务并重建调度
func (s *PipelineScheduler) CreateSchedule(schedule *models.ScheduledPipeline) error {
	if schedule.Name == "" {
		return fmt.Errorf("定时任务缺少名称")
	}
	if _, err := cronParser.Parse(schedule.CronExpr); err != nil {
		return fmt.Errorf("cron表达式无效 %q: %w", schedule.CronExpr, err)
	}

	if err := s.db.Create(schedule).Error; err != nil {
		return fmt.Errorf("创建定时任务失败: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

// DeleteSchedule 删除定时任务并重建调度
func (s *PipelineScheduler) DeleteSchedule(id string) error {
	result := s.db.Delete(&models.ScheduledPipeline{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除定时任务失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

// SetScheduleEnabled 启用/停用定时任务并重建调度
func (s *PipelineScheduler) SetScheduleEnabled(id string, enabled bool) error {
	result := s.db.Model(&models.ScheduledPipeline{}).Where("id = ?", id).Update("is_enabled", enabled)
	if result.Error != nil {
		return fmt.Errorf("更新定时任务失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

// GetSchedule 按ID查询定时任务
func (s *PipelineScheduler) GetSchedule(id string) (*models.ScheduledPipeline, error) {
	var schedule models.ScheduledPipeline
	if err := s.db.First(&schedule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListSchedules 分页查询定时任务
func (s *PipelineScheduler) ListSchedules(page, pageSize int) ([]models.ScheduledPipeline, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.ScheduledPipeline{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schedules []models.ScheduledPipeline
	err := s.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&schedules).Error
	if err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}
