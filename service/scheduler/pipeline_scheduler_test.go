/*
 * @module service/scheduler/pipeline_scheduler_test
 * @description 定时清洗调度器单元测试，覆盖任务增删改查与触发逻辑
 * @architecture 单元测试 - 使用内存数据库与假运行启动器
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 创建定时任务 -> 触发 -> 断言运行启动与回写
 * @rules 触发逻辑直接调用内部方法验证，不依赖真实cron计时
 * @dependencies testing, testify, salescleanse-service/testutil
 * @refs pipeline_scheduler.go
 */

package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salescleanse-service/service/models"
	"salescleanse-service/testutil"
)

// fakeLauncher 测试用运行启动器
type fakeLauncher struct {
	launched []string
	runID    string
	err      error
}

func (f *fakeLauncher) LaunchScheduled(schedule *models.ScheduledPipeline) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.launched = append(f.launched, schedule.ID)
	return f.runID, nil
}

func newTestScheduler(t *testing.T) (*PipelineScheduler, *fakeLauncher, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB()
	t.Cleanup(testDB.Close)
	launcher := &fakeLauncher{runID: "run-fake-001"}
	return NewPipelineScheduler(testDB.DB, launcher), launcher, testDB
}

func TestCreateSchedule_Validation(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	testCases := []struct {
		name     string
		schedule models.ScheduledPipeline
		wantErr  string
	}{
		{
			name: "缺少名称",
			schedule: models.ScheduledPipeline{
				CronExpr:   "0 0 2 * * *",
				SourceType: models.SourceTypeGenerator,
				Source:     models.JSONB{"type": "generator"},
			},
			wantErr: "定时任务缺少名称",
		},
		{
			name: "cron表达式无效",
			schedule: models.ScheduledPipeline{
				Name:       "坏表达式",
				CronExpr:   "not a cron",
				SourceType: models.SourceTypeGenerator,
				Source:     models.JSONB{"type": "generator"},
			},
			wantErr: "cron表达式无效",
		},
		{
			name: "五段表达式缺少秒位",
			schedule: models.ScheduledPipeline{
				Name:       "五段",
				CronExpr:   "0 2 * * *",
				SourceType: models.SourceTypeGenerator,
				Source:     models.JSONB{"type": "generator"},
			},
			wantErr: "cron表达式无效",
		},
		{
			name: "六段表达式",
			schedule: models.ScheduledPipeline{
				Name:       "每天凌晨两点",
				CronExpr:   "0 0 2 * * *",
				SourceType: models.SourceTypeGenerator,
				Source:     models.JSONB{"type": "generator", "rows": 1000},
			},
		},
		{
			name: "描述符表达式",
			schedule: models.ScheduledPipeline{
				Name:       "每小时",
				CronExpr:   "@hourly",
				SourceType: models.SourceTypeGenerator,
				Source:     models.JSONB{"type": "generator"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.CreateSchedule(&tc.schedule)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tc.schedule.ID)

			saved, err := s.GetSchedule(tc.schedule.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.schedule.Name, saved.Name)
			assert.True(t, saved.IsEnabled)
		})
	}
}

func TestTriggerLaunchesRunAndWritesBack(t *testing.T) {
	s, launcher, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	schedule := factory.CreateScheduledPipeline()

	s.trigger(schedule.ID)

	require.Equal(t, []string{schedule.ID}, launcher.launched)

	saved, err := s.GetSchedule(schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "run-fake-001", saved.LastRunID)
	require.NotNil(t, saved.LastRunAt)
}

func TestTriggerSkipsDisabledSchedule(t *testing.T) {
	s, launcher, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	schedule := factory.CreateScheduledPipeline(testutil.WithScheduleEnabled(false))

	s.trigger(schedule.ID)

	assert.Empty(t, launcher.launched)

	saved, err := s.GetSchedule(schedule.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.LastRunID)
	assert.Nil(t, saved.LastRunAt)
}

func TestTriggerLauncherErrorLeavesScheduleUntouched(t *testing.T) {
	s, launcher, testDB := newTestScheduler(t)
	launcher.err = errors.New("提交失败")
	factory := testutil.NewTestDataFactory(testDB.DB)
	schedule := factory.CreateScheduledPipeline()

	s.trigger(schedule.ID)

	saved, err := s.GetSchedule(schedule.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.LastRunID)
	assert.Nil(t, saved.LastRunAt)
}

func TestTriggerMissingScheduleIsNoop(t *testing.T) {
	s, launcher, _ := newTestScheduler(t)

	s.trigger("no-such-schedule")

	assert.Empty(t, launcher.launched)
}

func TestSetScheduleEnabled(t *testing.T) {
	s, _, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	schedule := factory.CreateScheduledPipeline()

	require.NoError(t, s.SetScheduleEnabled(schedule.ID, false))

	saved, err := s.GetSchedule(schedule.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsEnabled)

	// 不存在的任务返回未找到
	err = s.SetScheduleEnabled("no-such-schedule", true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteSchedule(t *testing.T) {
	s, _, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	schedule := factory.CreateScheduledPipeline()

	require.NoError(t, s.DeleteSchedule(schedule.ID))

	_, err := s.GetSchedule(schedule.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = s.DeleteSchedule(schedule.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListSchedulesPagination(t *testing.T) {
	s, _, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	for i := 0; i < 3; i++ {
		factory.CreateScheduledPipeline()
	}

	page1, total, err := s.ListSchedules(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page1, 2)

	page2, total, err := s.ListSchedules(2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)

	// 非法分页参数回退默认值
	all, total, err := s.ListSchedules(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestStartAndStop(t *testing.T) {
	s, _, testDB := newTestScheduler(t)
	factory := testutil.NewTestDataFactory(testDB.DB)
	factory.CreateScheduledPipeline()

	require.NoError(t, s.Start())
	s.Stop()
}
