/*
 * @module service/rate_limiter/run_rate_limiter
 * @description 基于Redis的运行提交限流器，按访问密钥限制清洗运行的提交频率
 * @architecture 工具层 - 固定窗口计数限流
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 提交请求 -> Redis原子计数 -> 判断是否超限
 * @rules 使用Lua脚本保证INCR与EXPIRE的原子性；限流只针对运行提交等重操作
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/middleware/run_rate_limit.go, service/init.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const limitKeyPrefix = "salescleanse:run_limit:"

// LimitDecision 限流检查结果
type LimitDecision struct {
	Allowed   bool   `json:"allowed"`   // 是否允许提交
	Limit     int    `json:"limit"`     // 窗口内最大提交数
	Remaining int    `json:"remaining"` // 剩余配额
	ResetAt   int64  `json:"reset_at"`  // 窗口重置时间（Unix时间戳）
	Message   string `json:"message"`   // 提示信息
}

// RunRateLimiter 运行提交限流器
type RunRateLimiter struct {
	client        *redis.Client
	maxSubmits    int
	windowSeconds int
}

// NewRunRateLimiter 创建运行提交限流器，连接与阈值配置取自环境变量
func NewRunRateLimiter() (*RunRateLimiter, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	maxSubmits, err := strconv.Atoi(getEnvWithDefault("RUN_RATE_LIMIT", "10"))
	if err != nil || maxSubmits <= 0 {
		return nil, fmt.Errorf("RUN_RATE_LIMIT无效: %q", os.Getenv("RUN_RATE_LIMIT"))
	}
	windowSeconds, err := strconv.Atoi(getEnvWithDefault("RUN_RATE_WINDOW_SECONDS", "60"))
	if err != nil || windowSeconds <= 0 {
		return nil, fmt.Errorf("RUN_RATE_WINDOW_SECONDS无效: %q", os.Getenv("RUN_RATE_WINDOW_SECONDS"))
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	slog.Info("运行提交限流器初始化成功",
		"max_submits", maxSubmits,
		"window_seconds", windowSeconds,
		"redis_host", host,
		"redis_port", port)

	return &RunRateLimiter{
		client:        client,
		maxSubmits:    maxSubmits,
		windowSeconds: windowSeconds,
	}, nil
}

// Allow 检查指定访问密钥在当前窗口内是否还允许提交运行
func (r *RunRateLimiter) Allow(ctx context.Context, accessKeyID string) (*LimitDecision, error) {
	if accessKeyID == "" {
		accessKeyID = "anonymous"
	}
	key := r.buildKey(accessKeyID)

	// Lua脚本保证计数与过期设置的原子性
	script := `
		local key = KEYS[1]
		local max_submits = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		if current >= max_submits then
			local ttl = redis.call('TTL', key)
			if ttl == -1 then
				ttl = window
			end
			return {0, current, ttl}
		end

		local new_count = redis.call('INCR', key)
		if new_count == 1 then
			redis.call('EXPIRE', key, window)
		end

		local ttl = redis.call('TTL', key)
		if ttl == -1 then
			ttl = window
		end

		return {1, new_count, ttl}
	`

	result, err := r.client.Eval(ctx, script, []string{key}, r.maxSubmits, r.windowSeconds).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}

	values := result.([]interface{})
	allowed := values[0].(int64) == 1
	count := int(values[1].(int64))
	ttl := int(values[2].(int64))

	remaining := r.maxSubmits - count
	if remaining < 0 {
		remaining = 0
	}

	message := "允许提交"
	if !allowed {
		message = fmt.Sprintf("该访问密钥%d秒内最多提交%d次运行", r.windowSeconds, r.maxSubmits)
	}

	return &LimitDecision{
		Allowed:   allowed,
		Limit:     r.maxSubmits,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttl) * time.Second).Unix(),
		Message:   message,
	}, nil
}

// Reset 清空指定访问密钥当前窗口的计数
func (r *RunRateLimiter) Reset(ctx context.Context, accessKeyID string) error {
	return r.client.Del(ctx, r.buildKey(accessKeyID)).Err()
}

// buildKey 构造当前窗口的限流Key
func (r *RunRateLimiter) buildKey(accessKeyID string) string {
	windowSlot := time.Now().Unix() / int64(r.windowSeconds)
	return fmt.Sprintf("%s%s:%d", limitKeyPrefix, accessKeyID, windowSlot)
}

// Close 关闭Redis客户端
func (r *RunRateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
