/*
 * @module service/models/pipeline_models
 * @description 清洗流水线数据模型，包含运行记录、质量报告归档、定时任务与访问密钥
 * @architecture 数据模型层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 运行创建 -> 执行中状态更新 -> 终态计数落盘 -> 报告归档
 * @rules 运行记录只保存结果计数与产物路径，清洗过程中的聚合器状态不落库
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq
 * @refs service/run_service.go, service/scheduler/pipeline_scheduler.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 运行状态
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusCanceled  = "canceled"
)

// 运行触发方式
const (
	RunTriggerAPI      = "api"
	RunTriggerSchedule = "schedule"
)

// 批次来源类型
const (
	SourceTypeCSV       = "csv"
	SourceTypeKafka     = "kafka"
	SourceTypeMQTT      = "mqtt"
	SourceTypeGenerator = "generator"
)

// PipelineRun 清洗流水线运行记录模型
type PipelineRun struct {
	ID               string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	Status           string           `gorm:"type:varchar(20);not null;index" json:"status"`  // pending, running, succeeded, failed, canceled
	Trigger          string           `gorm:"type:varchar(20);not null" json:"trigger"`       // api, schedule
	ScheduleID       string           `gorm:"type:varchar(50);index" json:"schedule_id,omitempty"`
	SourceType       string           `gorm:"type:varchar(20);not null" json:"source_type"`   // csv, kafka, mqtt, generator
	SourceURIs       pq.StringArray   `gorm:"type:text[]" json:"source_uris"`
	Config           JSONB            `gorm:"type:jsonb" json:"config"`                       // 本次运行生效的清洗配置
	BatchSize        int              `json:"batch_size"`
	Workers          int              `json:"workers"`
	OutputDir        string           `gorm:"type:varchar(500)" json:"output_dir"`
	ArtifactPaths    JSONBStringArray `gorm:"type:jsonb" json:"artifact_paths"`
	StartTime        *time.Time       `json:"start_time,omitempty"`
	EndTime          *time.Time       `json:"end_time,omitempty"`
	Duration         int64            `json:"duration"` // 运行时长，毫秒
	RowsProcessed    int64            `json:"rows_processed"`
	RowsCleaned      int64            `json:"rows_cleaned"`
	RowsRemoved      int64            `json:"rows_removed"`
	DataQualityScore float64          `json:"data_quality_score"`
	ErrorMessage     string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName 指定表名
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// BeforeCreate 创建前钩子
func (r *PipelineRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// IsTerminal 运行是否已到终态
func (r *PipelineRun) IsTerminal() bool {
	switch r.Status {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCanceled:
		return true
	}
	return false
}

// QualityReportRecord 运行质量报告归档模型，保存报告终态的四个部分
type QualityReportRecord struct {
	ID             string            `gorm:"type:varchar(50);primaryKey" json:"id"`
	RunID          string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"run_id"`
	Quality        JSONB             `gorm:"type:jsonb;not null" json:"quality"`
	MonthlySummary JSONBGenericArray `gorm:"type:jsonb" json:"monthly_summary"`
	TopProducts    JSONBGenericArray `gorm:"type:jsonb" json:"top_products"`
	AnomalyRecords JSONBGenericArray `gorm:"type:jsonb" json:"anomaly_records"`
	CreatedAt      time.Time         `json:"created_at"`
}

// TableName 指定表名
func (QualityReportRecord) TableName() string {
	return "quality_report_records"
}

// BeforeCreate 创建前钩子
func (q *QualityReportRecord) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// ScheduledPipeline 定时清洗任务模型
type ScheduledPipeline struct {
	ID            string         `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(100);not null" json:"name"`
	CronExpr      string         `gorm:"type:varchar(100);not null" json:"cron_expr"` // 秒级六段cron表达式
	SourceType    string         `gorm:"type:varchar(20);not null" json:"source_type"`
	SourceURIs    pq.StringArray `gorm:"type:text[]" json:"source_uris"`
	Source        JSONB          `gorm:"type:jsonb;not null" json:"source"` // 完整来源描述
	Config        JSONB          `gorm:"type:jsonb" json:"config"`
	BatchSize     int            `json:"batch_size"`
	Workers       int            `json:"workers"`
	OutputDir     string         `gorm:"type:varchar(500)" json:"output_dir"`
	PublishReport bool           `gorm:"default:false" json:"publish_report"`
	IsEnabled     bool           `gorm:"default:true" json:"is_enabled"`
	LastRunID     string         `gorm:"type:varchar(50)" json:"last_run_id,omitempty"`
	LastRunAt     *time.Time     `json:"last_run_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (ScheduledPipeline) TableName() string {
	return "scheduled_pipelines"
}

// BeforeCreate 创建前钩子
func (s *ScheduledPipeline) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// AccessKey API访问密钥模型，密钥明文只在签发时返回一次
type AccessKey struct {
	ID         string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	Prefix     string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"prefix"`
	KeyHash    string     `gorm:"type:varchar(100);not null" json:"-"`
	IsEnabled  bool       `gorm:"default:true" json:"is_enabled"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (AccessKey) TableName() string {
	return "access_keys"
}

// BeforeCreate 创建前钩子
func (k *AccessKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return nil
}
