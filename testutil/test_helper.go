/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"salescleanse-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.PipelineRun{},
		&models.QualityReportRecord{},
		&models.ScheduledPipeline{},
		&models.AccessKey{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"pipeline_runs",
		"quality_report_records",
		"scheduled_pipelines",
		"access_keys",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// PipelineRunOption 运行记录选项函数类型
type PipelineRunOption func(*models.PipelineRun)

// CreatePipelineRun 创建测试运行记录
func (f *TestDataFactory) CreatePipelineRun(opts ...PipelineRunOption) *models.PipelineRun {
	run := &models.PipelineRun{
		ID:         generateID("run"),
		Status:     models.RunStatusPending,
		Trigger:    models.RunTriggerAPI,
		SourceType: models.SourceTypeCSV,
		SourceURIs: []string{"/data/test_" + generateSuffix() + ".csv"},
		BatchSize:  1000,
		Workers:    1,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(run)
	}

	err := f.DB.Create(run).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test pipeline run: %v", err))
	}

	return run
}

// WithRunStatus 设置运行状态
func WithRunStatus(status string) PipelineRunOption {
	return func(run *models.PipelineRun) {
		run.Status = status
	}
}

// WithRunStartTime 设置运行开始时间
func WithRunStartTime(startTime time.Time) PipelineRunOption {
	return func(run *models.PipelineRun) {
		run.StartTime = &startTime
	}
}

// QualityReportRecordOption 报告归档选项函数类型
type QualityReportRecordOption func(*models.QualityReportRecord)

// CreateQualityReportRecord 创建测试报告归档
func (f *TestDataFactory) CreateQualityReportRecord(runID string, opts ...QualityReportRecordOption) *models.QualityReportRecord {
	record := &models.QualityReportRecord{
		ID:    generateID("rep"),
		RunID: runID,
		Quality: models.JSONB{
			"total_rows_processed": 100,
			"total_rows_cleaned":   90,
			"data_quality_score":   90.0,
		},
		MonthlySummary: models.JSONBGenericArray{},
		TopProducts:    models.JSONBGenericArray{},
		AnomalyRecords: models.JSONBGenericArray{},
		CreatedAt:      time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(record)
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test quality report record: %v", err))
	}

	return record
}

// ScheduledPipelineOption 定时任务选项函数类型
type ScheduledPipelineOption func(*models.ScheduledPipeline)

// CreateScheduledPipeline 创建测试定时任务
func (f *TestDataFactory) CreateScheduledPipeline(opts ...ScheduledPipelineOption) *models.ScheduledPipeline {
	schedule := &models.ScheduledPipeline{
		ID:         generateID("sch"),
		Name:       "测试定时任务_" + generateSuffix(),
		CronExpr:   "0 0 2 * * *",
		SourceType: models.SourceTypeGenerator,
		SourceURIs: []string{"generator://rows=1000&seed=42"},
		Source: models.JSONB{
			"type": models.SourceTypeGenerator,
			"rows": 1000,
			"seed": 42,
		},
		BatchSize: 500,
		Workers:   1,
		IsEnabled: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(schedule)
	}

	err := f.DB.Create(schedule).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test scheduled pipeline: %v", err))
	}

	return schedule
}

// WithScheduleEnabled 设置定时任务启用状态
func WithScheduleEnabled(enabled bool) ScheduledPipelineOption {
	return func(schedule *models.ScheduledPipeline) {
		schedule.IsEnabled = enabled
	}
}

// AccessKeyOption 访问密钥选项函数类型
type AccessKeyOption func(*models.AccessKey)

// CreateAccessKey 创建测试访问密钥
func (f *TestDataFactory) CreateAccessKey(opts ...AccessKeyOption) *models.AccessKey {
	key := &models.AccessKey{
		ID:        generateID("key"),
		Name:      "测试密钥_" + generateSuffix(),
		Prefix:    generateSuffix()[:5] + "pfx",
		KeyHash:   "test_key_hash_" + generateSuffix(),
		IsEnabled: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(key)
	}

	err := f.DB.Create(key).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test access key: %v", err))
	}

	return key
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%05d", time.Now().UnixNano()%100000)
}
