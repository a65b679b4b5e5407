/*
 * @module service/cleanup/run_retention_service_test
 * @description 运行保留期清理服务单元测试
 * @architecture 单元测试 - 使用内存数据库直接驱动单次清理
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 构造不同状态与年龄的运行 -> 执行清理 -> 断言删除范围
 * @rules 只删终态记录，非终态记录无论多旧都保留
 * @dependencies testing, testify, salescleanse-service/testutil
 * @refs run_retention_service.go
 */

package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescleanse-service/service/models"
	"salescleanse-service/testutil"
)

// backdateRun 把运行记录的创建时间改到指定天数之前
func backdateRun(t *testing.T, testDB *testutil.TestDB, runID string, days int) {
	t.Helper()
	old := time.Now().AddDate(0, 0, -days)
	err := testDB.DB.Model(&models.PipelineRun{}).Where("id = ?", runID).
		Update("created_at", old).Error
	require.NoError(t, err)
}

func TestCleanupExpiredRuns(t *testing.T) {
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)
	factory := testutil.NewTestDataFactory(testDB.DB)

	// 过保留期的成功运行，连同归档报告一起删除
	expired := factory.CreatePipelineRun(testutil.WithRunStatus(models.RunStatusSucceeded))
	factory.CreateQualityReportRecord(expired.ID)
	backdateRun(t, testDB, expired.ID, 40)

	// 过保留期的失败运行
	expiredFailed := factory.CreatePipelineRun(testutil.WithRunStatus(models.RunStatusFailed))
	backdateRun(t, testDB, expiredFailed.ID, 31)

	// 过保留期但仍在running的运行不删，交由看门狗处理
	staleRunning := factory.CreatePipelineRun(testutil.WithRunStatus(models.RunStatusRunning))
	backdateRun(t, testDB, staleRunning.ID, 60)

	// 保留期内的成功运行
	recent := factory.CreatePipelineRun(testutil.WithRunStatus(models.RunStatusSucceeded))
	factory.CreateQualityReportRecord(recent.ID)

	t.Setenv("RUN_RETENTION_DAYS", "30")
	s := NewRunRetentionService(testDB.DB)

	deleted, err := s.CleanupExpiredRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var runCount int64
	require.NoError(t, testDB.DB.Model(&models.PipelineRun{}).Count(&runCount).Error)
	assert.Equal(t, int64(2), runCount)

	// 过期运行的归档报告一并删除，保留期内的报告不受影响
	var reportCount int64
	require.NoError(t, testDB.DB.Model(&models.QualityReportRecord{}).Count(&reportCount).Error)
	assert.Equal(t, int64(1), reportCount)

	var kept models.QualityReportRecord
	require.NoError(t, testDB.DB.First(&kept, "run_id = ?", recent.ID).Error)

	err = testDB.DB.First(&models.PipelineRun{}, "id = ?", staleRunning.ID).Error
	assert.NoError(t, err, "非终态运行不应被清理")
}

func TestCleanupExpiredRunsEmptyDatabase(t *testing.T) {
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)

	t.Setenv("RUN_RETENTION_DAYS", "30")
	s := NewRunRetentionService(testDB.DB)

	deleted, err := s.CleanupExpiredRuns(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRetentionDaysConfiguration(t *testing.T) {
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)

	testCases := []struct {
		name string
		env  string
		want int
	}{
		{"默认值", "", 30},
		{"自定义", "7", 7},
		{"非数字回退默认", "abc", 30},
		{"非正数回退默认", "-1", 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("RUN_RETENTION_DAYS", tc.env)
			s := NewRunRetentionService(testDB.DB)
			assert.Equal(t, tc.want, s.retentionDays)
		})
	}
}

func TestStartScheduledCleanupTwiceFails(t *testing.T) {
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)

	s := NewRunRetentionService(testDB.DB)
	require.NoError(t, s.StartScheduledCleanup())
	t.Cleanup(s.StopScheduledCleanup)

	err := s.StartScheduledCleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "已经启动")
}
