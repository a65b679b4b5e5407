/*
 * @module service/rate_limiter/run_rate_limiter_test
 * @description 运行提交限流器单元测试，Redis不可用时跳过
 * @architecture 测试层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 连接Redis -> 逐次提交 -> 断言配额与拒绝
 * @rules 测试使用独立的密钥ID，避免清空共享Redis
 * @dependencies testing, testify, github.com/google/uuid
 * @refs run_rate_limiter.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestLimiter 创建测试限流器，Redis不可用时跳过
func setupTestLimiter(t *testing.T, limit, windowSeconds int) *RunRateLimiter {
	t.Helper()
	t.Setenv("RUN_RATE_LIMIT", fmt.Sprintf("%d", limit))
	t.Setenv("RUN_RATE_WINDOW_SECONDS", fmt.Sprintf("%d", windowSeconds))

	limiter, err := NewRunRateLimiter()
	if err != nil {
		t.Skipf("Redis不可用，跳过限流器测试: %v", err)
	}
	t.Cleanup(func() { limiter.Close() })
	return limiter
}

func TestNewRunRateLimiter_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		limit  string
		window string
	}{
		{"提交数非数字", "abc", "60"},
		{"提交数为零", "0", "60"},
		{"窗口非数字", "10", "xyz"},
		{"窗口为负", "10", "-5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("RUN_RATE_LIMIT", tc.limit)
			t.Setenv("RUN_RATE_WINDOW_SECONDS", tc.window)

			_, err := NewRunRateLimiter()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "无效")
		})
	}
}

func TestAllowWithinLimit(t *testing.T) {
	limiter := setupTestLimiter(t, 5, 60)
	ctx := context.Background()
	keyID := "key-" + uuid.New().String()

	for i := 0; i < 5; i++ {
		decision, err := limiter.Allow(ctx, keyID)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "第%d次提交应被允许", i+1)
		assert.Equal(t, 5, decision.Limit)
		assert.Equal(t, 5-i-1, decision.Remaining)
	}

	// 超过配额后被拒绝
	decision, err := limiter.Allow(ctx, keyID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Contains(t, decision.Message, "最多提交")
}

func TestAllowIsolatesAccessKeys(t *testing.T) {
	limiter := setupTestLimiter(t, 1, 60)
	ctx := context.Background()
	first := "key-" + uuid.New().String()
	second := "key-" + uuid.New().String()

	decision, err := limiter.Allow(ctx, first)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Allow(ctx, first)
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "同一密钥第二次提交应被拒绝")

	// 另一把密钥不受影响
	decision, err = limiter.Allow(ctx, second)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestResetClearsWindow(t *testing.T) {
	limiter := setupTestLimiter(t, 1, 60)
	ctx := context.Background()
	keyID := "key-" + uuid.New().String()

	decision, err := limiter.Allow(ctx, keyID)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = limiter.Allow(ctx, keyID)
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	require.NoError(t, limiter.Reset(ctx, keyID))

	decision, err = limiter.Allow(ctx, keyID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "重置后应恢复配额")
}
