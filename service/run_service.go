/*
 * @module service/run_service
 * @description 清洗运行编排服务，负责运行创建、来源构建、异步执行、结果落库与报告归档
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow pending -> running -> succeeded/failed/canceled，终态后记录不再变更
 * @rules 同一数据来源同一时刻只允许一个实例执行；聚合器状态只在运行内存活，落库的只有结果
 * @dependencies salescleanse-service/service/pipeline, salescleanse-service/service/ingestion, gorm.io/gorm
 * @refs api/controllers/pipeline_controller.go, service/scheduler/pipeline_scheduler.go
 */

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/distributed_lock"
	"salescleanse-service/service/generator"
	"salescleanse-service/service/ingestion"
	"salescleanse-service/service/models"
	"salescleanse-service/service/monitoring"
	"salescleanse-service/service/pipeline"

	"gorm.io/gorm"
)

const (
	runLockTTL             = 10 * time.Minute
	runLockRefreshInterval = 3 * time.Minute
)

// SourceSpec 批次来源描述
type SourceSpec struct {
	Type string `json:"type"` // csv, kafka, mqtt, generator

	// CSV来源
	Path     string `json:"path,omitempty"`
	Encoding string `json:"encoding,omitempty"`

	// Kafka来源
	Brokers      []string `json:"brokers,omitempty"`
	Topic        string   `json:"topic,omitempty"`
	GroupID      string   `json:"group_id,omitempty"`
	FromEarliest bool     `json:"from_earliest,omitempty"`

	// MQTT来源
	Broker   string `json:"broker,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	QoS      byte   `json:"qos,omitempty"`

	// 消息类来源通用：最大消费条数与空闲超时(Go时长格式)
	MaxRecords  int64  `json:"max_records,omitempty"`
	IdleTimeout string `json:"idle_timeout,omitempty"`

	// 生成器来源
	Rows int   `json:"rows,omitempty"`
	Seed int64 `json:"seed,omitempty"`
}

// RunRequest 运行请求
type RunRequest struct {
	Source SourceSpec `json:"source"`
	// Config 本次运行的清洗配置，零值字段取默认值
	Config        *cleansing.Config `json:"config,omitempty"`
	BatchSize     int               `json:"batch_size,omitempty"`
	Workers       int               `json:"workers,omitempty"`
	OutputDir     string            `json:"output_dir,omitempty"`
	PublishReport bool              `json:"publish_report,omitempty"`
}

// Validate 校验运行请求
func (r *RunRequest) Validate() error {
	switch r.Source.Type {
	case models.SourceTypeCSV:
		if r.Source.Path == "" {
			return errors.New("CSV来源缺少path")
		}
	case models.SourceTypeKafka:
		if len(r.Source.Brokers) == 0 || r.Source.Topic == "" || r.Source.GroupID == "" {
			return errors.New("Kafka来源需要brokers、topic与group_id")
		}
	case models.SourceTypeMQTT:
		if r.Source.Broker == "" || r.Source.Topic == "" {
			return errors.New("MQTT来源需要broker与topic")
		}
	case models.SourceTypeGenerator:
		if r.Source.Rows <= 0 {
			return errors.New("生成器来源需要正的rows")
		}
	default:
		return fmt.Errorf("不支持的来源类型: %s", r.Source.Type)
	}

	if r.Source.IdleTimeout != "" {
		if _, err := time.ParseDuration(r.Source.IdleTimeout); err != nil {
			return fmt.Errorf("idle_timeout格式无效: %w", err)
		}
	}
	if r.Workers < 0 {
		return errors.New("workers不能为负")
	}
	if r.BatchSize < 0 {
		return errors.New("batch_size不能为负")
	}
	return nil
}

// URIs 来源地址列表，用于运行与定时任务记录
func (s *SourceSpec) URIs() []string {
	switch s.Type {
	case models.SourceTypeCSV:
		return []string{s.Path}
	case models.SourceTypeKafka:
		return append([]string{}, s.Brokers...)
	case models.SourceTypeMQTT:
		return []string{s.Broker}
	case models.SourceTypeGenerator:
		return []string{fmt.Sprintf("generator://rows=%d&seed=%d", s.Rows, s.Seed)}
	}
	return nil
}

// lockKey 同源互斥键。生成器来源无共享数据，不参与互斥。
func (r *RunRequest) lockKey(runID string) string {
	switch r.Source.Type {
	case models.SourceTypeCSV:
		return "csv:" + r.Source.Path
	case models.SourceTypeKafka:
		return "kafka:" + r.Source.Topic + ":" + r.Source.GroupID
	case models.SourceTypeMQTT:
		return "mqtt:" + r.Source.Broker + ":" + r.Source.Topic
	}
	return "run:" + runID
}

// RunService 清洗运行编排服务
type RunService struct {
	db        *gorm.DB
	lockExec  *distributed_lock.LockExecutor
	publisher *pipeline.ReportPublisher
	metrics   *monitoring.PipelineMetrics
	outputDir string
}

// NewRunService 创建运行编排服务。lockExec与publisher允许为nil，表示单实例无锁部署/不发布报告。
func NewRunService(db *gorm.DB, lockExec *distributed_lock.LockExecutor, publisher *pipeline.ReportPublisher) *RunService {
	return &RunService{
		db:        db,
		lockExec:  lockExec,
		publisher: publisher,
		metrics:   monitoring.GetPipelineMetrics(),
		outputDir: getEnvWithDefault("RUN_OUTPUT_DIR", "./output"),
	}
}

// StartRun 创建运行记录并异步执行，立即返回pending状态的运行
func (s *RunService) StartRun(req *RunRequest, trigger, scheduleID string) (*models.PipelineRun, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := cleansing.DefaultConfig()
	if req.Config != nil {
		cfg = req.Config.Normalize()
	}
	configJSON, err := models.ToJSONB(cfg)
	if err != nil {
		return nil, fmt.Errorf("序列化运行配置失败: %w", err)
	}

	run := &models.PipelineRun{
		Status:     models.RunStatusPending,
		Trigger:    trigger,
		ScheduleID: scheduleID,
		SourceType: req.Source.Type,
		SourceURIs: req.Source.URIs(),
		Config:     configJSON,
		BatchSize:  req.BatchSize,
		Workers:    req.Workers,
		OutputDir:  req.OutputDir,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("创建运行记录失败: %w", err)
	}

	go s.executeRun(run.ID, req, cfg)

	slog.Info("运行已创建", "run_id", run.ID, "source_type", req.Source.Type, "trigger", trigger)
	return run, nil
}

// executeRun 异步执行入口，负责加锁与异常兜底
func (s *RunService) executeRun(runID string, req *RunRequest, cfg cleansing.Config) {
	ctx := context.Background()

	execute := func() error {
		return s.runPipeline(ctx, runID, req, cfg)
	}

	var err error
	if s.lockExec != nil {
		err = s.lockExec.ExecuteWithLockAndRefresh(ctx, req.lockKey(runID), runLockTTL, runLockRefreshInterval, execute)
		if errors.Is(err, distributed_lock.ErrLockHeld) {
			s.finishRun(runID, models.RunStatusCanceled, "同一数据来源已有运行执行中，本次运行取消")
			return
		}
	} else {
		err = execute()
	}

	if err != nil {
		slog.Error("运行执行失败", "run_id", runID, "error", err)
	}
}

// runPipeline 执行一次完整清洗运行
func (s *RunService) runPipeline(ctx context.Context, runID string, req *RunRequest, cfg cleansing.Config) error {
	startedAt := time.Now()
	if err := s.db.Model(&models.PipelineRun{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"status":     models.RunStatusRunning,
		"start_time": startedAt,
	}).Error; err != nil {
		return fmt.Errorf("更新运行状态失败: %w", err)
	}

	s.metrics.ActiveRuns.Inc()
	defer s.metrics.ActiveRuns.Dec()

	slog.Info("================ 清洗运行开始 ================", "run_id", runID, "source_type", req.Source.Type)

	source, err := s.buildSource(req, runID)
	if err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return err
	}
	defer source.Close()

	reducer, err := pipeline.NewReducer(cfg, pipeline.ReducerOptions{
		Workers: req.Workers,
		Observer: func(batchIndex, size int, duration time.Duration) {
			s.metrics.BatchesConsumed.Inc()
			s.metrics.BatchDuration.Observe(duration.Seconds())
		},
	})
	if err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return err
	}

	slog.Info("阶段1: 摄取与清洗", "run_id", runID)
	if err := reducer.Run(ctx, source); err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return fmt.Errorf("清洗阶段失败: %w", err)
	}

	slog.Info("阶段2: 聚合定稿", "run_id", runID)
	report, err := reducer.Build()
	if err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return fmt.Errorf("聚合定稿失败: %w", err)
	}

	slog.Info("阶段3: 写出产物", "run_id", runID)
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(s.outputDir, runID)
	}
	artifacts, err := pipeline.WriteArtifacts(outputDir, report)
	if err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return fmt.Errorf("写出产物失败: %w", err)
	}

	if err := s.archiveReport(runID, report); err != nil {
		s.finishRun(runID, models.RunStatusFailed, err.Error())
		return err
	}

	if req.PublishReport && s.publisher != nil && s.publisher.Enabled() {
		if err := s.publisher.Publish(ctx, runID, report.Quality); err != nil {
			// 发布失败不影响运行结果
			slog.Error("发布质量报告失败", "run_id", runID, "error", err)
		} else {
			s.metrics.ReportsPublished.Inc()
		}
	}

	s.recordOutcomeMetrics(report)

	now := time.Now()
	duration := now.Sub(startedAt)
	updates := map[string]interface{}{
		"status":             models.RunStatusSucceeded,
		"end_time":           now,
		"duration":           duration.Milliseconds(),
		"output_dir":         outputDir,
		"artifact_paths":     models.JSONBStringArray(artifacts),
		"rows_processed":     report.Quality.TotalRowsProcessed,
		"rows_cleaned":       report.Quality.TotalRowsCleaned,
		"rows_removed":       report.Quality.RowsRemoved,
		"data_quality_score": report.Quality.DataQualityScore,
	}
	if err := s.db.Model(&models.PipelineRun{}).Where("id = ?", runID).Updates(updates).Error; err != nil {
		return fmt.Errorf("落盘运行结果失败: %w", err)
	}

	s.metrics.RunsTotal.WithLabelValues(models.RunStatusSucceeded).Inc()
	s.metrics.RunDuration.Observe(duration.Seconds())

	slog.Info("================ 清洗运行完成 ================",
		"run_id", runID,
		"rows_processed", report.Quality.TotalRowsProcessed,
		"rows_cleaned", report.Quality.TotalRowsCleaned,
		"data_quality_score", report.Quality.DataQualityScore,
		"duration_ms", duration.Milliseconds())
	return nil
}

// finishRun 将运行置为终态
func (s *RunService) finishRun(runID, status, message string) {
	now := time.Now()

	var run models.PipelineRun
	updates := map[string]interface{}{
		"status":        status,
		"end_time":      now,
		"error_message": message,
	}
	if err := s.db.First(&run, "id = ?", runID).Error; err == nil && run.StartTime != nil {
		updates["duration"] = now.Sub(*run.StartTime).Milliseconds()
	}

	if err := s.db.Model(&models.PipelineRun{}).Where("id = ?", runID).Updates(updates).Error; err != nil {
		slog.Error("更新运行终态失败", "run_id", runID, "status", status, "error", err)
		return
	}
	s.metrics.RunsTotal.WithLabelValues(status).Inc()
}

// archiveReport 归档完整报告
func (s *RunService) archiveReport(runID string, report *pipeline.Report) error {
	quality, err := models.ToJSONB(report.Quality)
	if err != nil {
		return fmt.Errorf("序列化质量报告失败: %w", err)
	}
	monthly, err := models.ToJSONBGenericArray(report.MonthlySummary)
	if err != nil {
		return fmt.Errorf("序列化月度汇总失败: %w", err)
	}
	topProducts, err := models.ToJSONBGenericArray(report.TopProducts)
	if err != nil {
		return fmt.Errorf("序列化商品排行失败: %w", err)
	}
	anomalies, err := models.ToJSONBGenericArray(report.AnomalyRecords)
	if err != nil {
		return fmt.Errorf("序列化异常记录失败: %w", err)
	}

	record := &models.QualityReportRecord{
		RunID:          runID,
		Quality:        quality,
		MonthlySummary: monthly,
		TopProducts:    topProducts,
		AnomalyRecords: anomalies,
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("归档质量报告失败: %w", err)
	}
	return nil
}

// recordOutcomeMetrics 将终态计数写入Prometheus
func (s *RunService) recordOutcomeMetrics(report *pipeline.Report) {
	q := report.Quality
	s.metrics.RecordsProcessed.WithLabelValues("cleaned").Add(float64(q.TotalRowsCleaned))
	s.metrics.RecordsProcessed.WithLabelValues("removed").Add(float64(q.RowsRemoved))
	s.metrics.RecordsRejected.WithLabelValues(string(cleansing.ReasonMissingValues)).Add(float64(q.MissingValues))
	s.metrics.RecordsRejected.WithLabelValues(string(cleansing.ReasonInvalidQuantity)).Add(float64(q.InvalidQuantity))
	s.metrics.RecordsRejected.WithLabelValues(string(cleansing.ReasonInvalidPrice)).Add(float64(q.InvalidPrice))
	s.metrics.RecordsRejected.WithLabelValues(string(cleansing.ReasonInvalidDate)).Add(float64(q.InvalidDate))
	s.metrics.RecordsRejected.WithLabelValues(string(cleansing.ReasonDuplicateOrders)).Add(float64(q.DuplicateOrders))
}

// buildSource 按来源描述构建批次来源
func (s *RunService) buildSource(req *RunRequest, runID string) (pipeline.BatchSource, error) {
	idleTimeout := time.Duration(0)
	if req.Source.IdleTimeout != "" {
		idleTimeout, _ = time.ParseDuration(req.Source.IdleTimeout)
	}

	switch req.Source.Type {
	case models.SourceTypeCSV:
		return ingestion.NewCSVSource(req.Source.Path, ingestion.CSVSourceOptions{
			ChunkSize: req.BatchSize,
			Encoding:  req.Source.Encoding,
		})
	case models.SourceTypeKafka:
		return ingestion.NewKafkaSource(ingestion.KafkaSourceOptions{
			Brokers:      req.Source.Brokers,
			Topic:        req.Source.Topic,
			GroupID:      req.Source.GroupID,
			BatchSize:    req.BatchSize,
			MaxRecords:   req.Source.MaxRecords,
			IdleTimeout:  idleTimeout,
			FromEarliest: req.Source.FromEarliest,
		})
	case models.SourceTypeMQTT:
		return ingestion.NewMQTTSource(ingestion.MQTTSourceOptions{
			Broker:      req.Source.Broker,
			ClientID:    req.Source.ClientID,
			Topic:       req.Source.Topic,
			Username:    req.Source.Username,
			Password:    req.Source.Password,
			QoS:         req.Source.QoS,
			BatchSize:   req.BatchSize,
			MaxRecords:  req.Source.MaxRecords,
			IdleTimeout: idleTimeout,
		})
	case models.SourceTypeGenerator:
		gen := generator.NewSalesGenerator(req.Source.Seed)
		return gen.Source(req.Source.Rows, req.BatchSize), nil
	}
	return nil, fmt.Errorf("不支持的来源类型: %s", req.Source.Type)
}

// GetRun 按ID查询运行
func (s *RunService) GetRun(id string) (*models.PipelineRun, error) {
	var run models.PipelineRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 分页查询运行列表
func (s *RunService) ListRuns(page, pageSize int, status string) ([]models.PipelineRun, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.PipelineRun{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.PipelineRun
	err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// GetReportRecord 查询运行的归档报告
func (s *RunService) GetReportRecord(runID string) (*models.QualityReportRecord, error) {
	var record models.QualityReportRecord
	if err := s.db.First(&record, "run_id = ?", runID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// LaunchScheduled 由调度器触发一次运行，实现scheduler.RunLauncher
func (s *RunService) LaunchScheduled(schedule *models.ScheduledPipeline) (string, error) {
	req, err := requestFromSchedule(schedule)
	if err != nil {
		return "", err
	}

	run, err := s.StartRun(req, models.RunTriggerSchedule, schedule.ID)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// requestFromSchedule 从定时任务记录还原运行请求
func requestFromSchedule(schedule *models.ScheduledPipeline) (*RunRequest, error) {
	var source SourceSpec
	if err := decodeJSONB(schedule.Source, &source); err != nil {
		return nil, fmt.Errorf("解析定时任务来源失败: %w", err)
	}

	req := &RunRequest{
		Source:        source,
		BatchSize:     schedule.BatchSize,
		Workers:       schedule.Workers,
		OutputDir:     schedule.OutputDir,
		PublishReport: schedule.PublishReport,
	}
	if len(schedule.Config) > 0 {
		var cfg cleansing.Config
		if err := decodeJSONB(schedule.Config, &cfg); err != nil {
			return nil, fmt.Errorf("解析定时任务配置失败: %w", err)
		}
		req.Config = &cfg
	}
	return req, nil
}

// decodeJSONB 将JSONB列解码到目标结构
func decodeJSONB(src models.JSONB, dst interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
