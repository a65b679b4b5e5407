/*
 * @module service/models/test_utils
 * @description 模型测试辅助工具
 * @architecture 测试基础设施 - 专门为模型测试提供工具
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 避免循环导入，专门为模型层测试提供工具
 * @dependencies gorm, sqlite, time
 */

package models

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ModelTestDB 模型测试数据库配置
type ModelTestDB struct {
	DB *gorm.DB
}

// NewModelTestDB 创建模型测试数据库
func NewModelTestDB() *ModelTestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&PipelineRun{},
		&QualityReportRecord{},
		&ScheduledPipeline{},
		&AccessKey{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &ModelTestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *ModelTestDB) CleanDB() {
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
func (tdb *ModelTestDB) Close() {
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		fmt.Printf("Error getting underlying DB: %v\n", err)
		return
	}
	sqlDB.Close()
}

// ModelTestDataFactory 模型测试数据工厂
type ModelTestDataFactory struct {
	DB *gorm.DB
}

// NewModelTestDataFactory 创建新的模型测试数据工厂
func NewModelTestDataFactory(db *gorm.DB) *ModelTestDataFactory {
	return &ModelTestDataFactory{DB: db}
}

// CreatePipelineRun 创建测试运行记录
func (f *ModelTestDataFactory) CreatePipelineRun() *PipelineRun {
	run := &PipelineRun{
		ID:         generateID("run"),
		Status:     RunStatusPending,
		Trigger:    RunTriggerAPI,
		SourceType: SourceTypeCSV,
		SourceURIs: []string{"/data/sales_" + generateSuffix() + ".csv"},
		Config:     JSONB{"top_k_products": 10},
		BatchSize:  1000,
		Workers:    1,
		OutputDir:  "/tmp/output",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	err := f.DB.Create(run).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test pipeline run: %v", err))
	}

	return run
}

// CreateQualityReportRecord 创建测试报告归档
func (f *ModelTestDataFactory) CreateQualityReportRecord(runID string) *QualityReportRecord {
	record := &QualityReportRecord{
		ID:    generateID("rep"),
		RunID: runID,
		Quality: JSONB{
			"total_rows_processed": 100,
			"total_rows_cleaned":   90,
			"rows_removed":         10,
			"data_quality_score":   90.0,
		},
		MonthlySummary: JSONBGenericArray{},
		TopProducts:    JSONBGenericArray{},
		AnomalyRecords: JSONBGenericArray{},
		CreatedAt:      time.Now(),
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test quality report record: %v", err))
	}

	return record
}

// CreateScheduledPipeline 创建测试定时任务
func (f *ModelTestDataFactory) CreateScheduledPipeline() *ScheduledPipeline {
	schedule := &ScheduledPipeline{
		ID:         generateID("sch"),
		Name:       "测试定时任务_" + generateSuffix(),
		CronExpr:   "0 0 2 * * *",
		SourceType: SourceTypeGenerator,
		SourceURIs: []string{"generator://rows=1000"},
		Source:     JSONB{"type": SourceTypeGenerator, "rows": 1000},
		BatchSize:  500,
		Workers:    1,
		IsEnabled:  true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	err := f.DB.Create(schedule).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test scheduled pipeline: %v", err))
	}

	return schedule
}

// CreateAccessKey 创建测试访问密钥
func (f *ModelTestDataFactory) CreateAccessKey() *AccessKey {
	key := &AccessKey{
		ID:        generateID("key"),
		Name:      "测试密钥_" + generateSuffix(),
		Prefix:    "pfx" + generateSuffix(),
		KeyHash:   "hash_" + generateSuffix(),
		IsEnabled: true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
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
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}
