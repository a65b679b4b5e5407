/*
 * @module api/middleware/run_rate_limit
 * @description 运行提交限流中间件，按上下文中的访问密钥ID限制提交频率
 * @architecture 中间件模式 - 挂在鉴权中间件之后
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 读取密钥ID -> 限流检查 -> 超限返回429 -> 下一个处理器
 * @rules 限流器未配置或Redis故障时放行，限流只做保护不做强依赖
 * @dependencies salescleanse-service/service/rate_limiter, github.com/go-chi/render
 * @refs api/routes.go, service/rate_limiter/run_rate_limiter.go
 */

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"salescleanse-service/service/rate_limiter"

	"github.com/go-chi/render"
)

// RunRateLimitMiddleware 运行提交限流中间件
type RunRateLimitMiddleware struct {
	limiter *rate_limiter.RunRateLimiter
}

// NewRunRateLimitMiddleware 创建运行提交限流中间件，limiter为nil时直接放行
func NewRunRateLimitMiddleware(limiter *rate_limiter.RunRateLimiter) *RunRateLimitMiddleware {
	return &RunRateLimitMiddleware{limiter: limiter}
}

// Middleware 限流中间件处理函数
func (m *RunRateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		keyID, _ := GetAccessKeyIDFromContext(r.Context())
		decision, err := m.limiter.Allow(r.Context(), keyID)
		if err != nil {
			slog.Warn("限流检查失败，放行请求", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			retryAfter := decision.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, map[string]interface{}{
				"status":  http.StatusTooManyRequests,
				"message": decision.Message,
				"error":   "Too Many Requests",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
