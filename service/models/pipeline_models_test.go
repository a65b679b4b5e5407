/*
 * @module service/models/pipeline_models_test
 * @description 清洗流水线数据模型验证测试
 * @architecture 测试层 - 数据模型验证，确保数据完整性和约束
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 模型创建 -> 字段验证 -> 约束检查 -> 结果断言
 * @rules 确保数据模型的完整性、约束和业务规则
 * @dependencies testing, testify, gorm
 * @refs pipeline_models.go
 */

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// PipelineModelTestSuite 流水线模型测试套件
type PipelineModelTestSuite struct {
	suite.Suite
	testDB  *ModelTestDB
	factory *ModelTestDataFactory
}

// SetupSuite 设置测试套件
func (suite *PipelineModelTestSuite) SetupSuite() {
	suite.testDB = NewModelTestDB()
	suite.factory = NewModelTestDataFactory(suite.testDB.DB)
}

// TearDownSuite 清理测试套件
func (suite *PipelineModelTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

// SetupTest 设置每个测试
func (suite *PipelineModelTestSuite) SetupTest() {
	suite.testDB.CleanDB()
}

func (suite *PipelineModelTestSuite) TestPipelineRunCreation() {
	run := suite.factory.CreatePipelineRun()

	var saved PipelineRun
	err := suite.testDB.DB.First(&saved, "id = ?", run.ID).Error
	suite.NoError(err)
	suite.Equal(RunStatusPending, saved.Status)
	suite.Equal(RunTriggerAPI, saved.Trigger)
	suite.Equal(SourceTypeCSV, saved.SourceType)
	suite.Equal(run.SourceURIs, saved.SourceURIs)
}

func (suite *PipelineModelTestSuite) TestPipelineRunGeneratesID() {
	// ID为空时由创建钩子补全UUID
	run := &PipelineRun{
		Status:     RunStatusPending,
		Trigger:    RunTriggerAPI,
		SourceType: SourceTypeGenerator,
	}

	err := suite.testDB.DB.Create(run).Error
	suite.NoError(err)
	suite.NotEmpty(run.ID)
	suite.Len(run.ID, 36)
}

func (suite *PipelineModelTestSuite) TestPipelineRunConfigRoundTrip() {
	run := &PipelineRun{
		Status:     RunStatusPending,
		Trigger:    RunTriggerAPI,
		SourceType: SourceTypeCSV,
		SourceURIs: []string{"/data/a.csv", "/data/b.csv"},
		Config: JSONB{
			"top_k_products":  5,
			"strict_synonyms": true,
		},
	}
	suite.NoError(suite.testDB.DB.Create(run).Error)

	var saved PipelineRun
	suite.NoError(suite.testDB.DB.First(&saved, "id = ?", run.ID).Error)

	// JSON数字反序列化为float64
	suite.Equal(float64(5), saved.Config["top_k_products"])
	suite.Equal(true, saved.Config["strict_synonyms"])
	suite.Equal(run.SourceURIs, saved.SourceURIs)
}

func (suite *PipelineModelTestSuite) TestPipelineRunStatusUpdate() {
	run := suite.factory.CreatePipelineRun()

	now := time.Now()
	err := suite.testDB.DB.Model(&PipelineRun{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
		"status":             RunStatusSucceeded,
		"end_time":           &now,
		"rows_processed":     int64(1000),
		"rows_cleaned":       int64(950),
		"rows_removed":       int64(50),
		"data_quality_score": 95.0,
	}).Error
	suite.NoError(err)

	var saved PipelineRun
	suite.NoError(suite.testDB.DB.First(&saved, "id = ?", run.ID).Error)
	suite.Equal(RunStatusSucceeded, saved.Status)
	suite.Equal(int64(1000), saved.RowsProcessed)
	suite.Equal(saved.RowsCleaned+saved.RowsRemoved, saved.RowsProcessed)
	suite.InDelta(95.0, saved.DataQualityScore, 0.001)
	suite.True(saved.IsTerminal())
}

func (suite *PipelineModelTestSuite) TestQualityReportRecordCreation() {
	run := suite.factory.CreatePipelineRun()
	record := suite.factory.CreateQualityReportRecord(run.ID)

	var saved QualityReportRecord
	err := suite.testDB.DB.First(&saved, "run_id = ?", run.ID).Error
	suite.NoError(err)
	suite.Equal(record.ID, saved.ID)
	suite.Equal(float64(100), saved.Quality["total_rows_processed"])
}

func (suite *PipelineModelTestSuite) TestQualityReportRecordRunIDUnique() {
	run := suite.factory.CreatePipelineRun()
	suite.factory.CreateQualityReportRecord(run.ID)

	// 同一运行只允许归档一份报告
	dup := &QualityReportRecord{
		RunID:   run.ID,
		Quality: JSONB{"total_rows_processed": 1},
	}
	err := suite.testDB.DB.Create(dup).Error
	suite.Error(err)
}

func (suite *PipelineModelTestSuite) TestQualityReportRecordSections() {
	run := suite.factory.CreatePipelineRun()
	record := &QualityReportRecord{
		RunID:   run.ID,
		Quality: JSONB{"data_quality_score": 33.33},
		MonthlySummary: JSONBGenericArray{
			map[string]interface{}{"month": "2024-01", "total_revenue": 18.0},
		},
		TopProducts: JSONBGenericArray{
			map[string]interface{}{"product_name": "Laptop Pro 15", "total_revenue": 18.0},
		},
		AnomalyRecords: JSONBGenericArray{},
	}
	suite.NoError(suite.testDB.DB.Create(record).Error)

	var saved QualityReportRecord
	suite.NoError(suite.testDB.DB.First(&saved, "id = ?", record.ID).Error)
	suite.Len(saved.MonthlySummary, 1)
	month := saved.MonthlySummary[0].(map[string]interface{})
	suite.Equal("2024-01", month["month"])
	suite.Len(saved.TopProducts, 1)
	suite.Empty(saved.AnomalyRecords)
}

func (suite *PipelineModelTestSuite) TestScheduledPipelineCreation() {
	schedule := suite.factory.CreateScheduledPipeline()

	var saved ScheduledPipeline
	err := suite.testDB.DB.First(&saved, "id = ?", schedule.ID).Error
	suite.NoError(err)
	suite.Equal(schedule.Name, saved.Name)
	suite.Equal("0 0 2 * * *", saved.CronExpr)
	suite.True(saved.IsEnabled)
	suite.Equal(SourceTypeGenerator, saved.Source["type"])
}

func (suite *PipelineModelTestSuite) TestScheduledPipelineLastRunTracking() {
	schedule := suite.factory.CreateScheduledPipeline()
	run := suite.factory.CreatePipelineRun()

	now := time.Now()
	err := suite.testDB.DB.Model(&ScheduledPipeline{}).Where("id = ?", schedule.ID).Updates(map[string]interface{}{
		"last_run_id": run.ID,
		"last_run_at": &now,
	}).Error
	suite.NoError(err)

	var saved ScheduledPipeline
	suite.NoError(suite.testDB.DB.First(&saved, "id = ?", schedule.ID).Error)
	suite.Equal(run.ID, saved.LastRunID)
	suite.NotNil(saved.LastRunAt)
}

func (suite *PipelineModelTestSuite) TestAccessKeyCreation() {
	key := suite.factory.CreateAccessKey()

	var saved AccessKey
	err := suite.testDB.DB.First(&saved, "id = ?", key.ID).Error
	suite.NoError(err)
	suite.Equal(key.Prefix, saved.Prefix)
	suite.True(saved.IsEnabled)
	suite.Nil(saved.LastUsedAt)
	suite.Nil(saved.ExpiresAt)
}

func (suite *PipelineModelTestSuite) TestAccessKeyPrefixUnique() {
	key := suite.factory.CreateAccessKey()

	dup := &AccessKey{
		Name:    "重复前缀",
		Prefix:  key.Prefix,
		KeyHash: "other_hash",
	}
	err := suite.testDB.DB.Create(dup).Error
	suite.Error(err)
}

// 运行测试套件
func TestPipelineModels(t *testing.T) {
	suite.Run(t, new(PipelineModelTestSuite))
}

// 独立的单元测试
func TestPipelineRunIsTerminal(t *testing.T) {
	testCases := []struct {
		name     string
		status   string
		terminal bool
	}{
		{"等待中", RunStatusPending, false},
		{"运行中", RunStatusRunning, false},
		{"成功", RunStatusSucceeded, true},
		{"失败", RunStatusFailed, true},
		{"已取消", RunStatusCanceled, true},
		{"未知状态", "unknown", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run := PipelineRun{Status: tc.status}
			assert.Equal(t, tc.terminal, run.IsTerminal())
		})
	}
}
