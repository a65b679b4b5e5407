/*
 * @module api/middleware/access_key_auth
 * @description 访问密钥鉴权中间件，校验Bearer密钥并注入密钥身份到请求上下文
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 密钥提取 -> 密钥校验 -> 上下文注入 -> 下一个处理器
 * @rules 只挂在变更类路由上；查询与运维端点不做鉴权
 * @dependencies salescleanse-service/service/auth, github.com/go-chi/render
 * @refs api/routes.go, service/auth/access_key_service.go
 */

package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"salescleanse-service/service/auth"

	"github.com/go-chi/render"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	// AccessKeyIDKey 密钥ID在上下文中的键
	AccessKeyIDKey ContextKey = "access_key_id"
	// AccessKeyNameKey 密钥名称在上下文中的键
	AccessKeyNameKey ContextKey = "access_key_name"
)

// AccessKeyAuthMiddleware 访问密钥鉴权中间件
type AccessKeyAuthMiddleware struct {
	keyService *auth.AccessKeyService
}

// NewAccessKeyAuthMiddleware 创建访问密钥鉴权中间件实例
func NewAccessKeyAuthMiddleware(keyService *auth.AccessKeyService) *AccessKeyAuthMiddleware {
	return &AccessKeyAuthMiddleware{keyService: keyService}
}

// Middleware 鉴权中间件处理函数
func (m *AccessKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyValue, ok := extractBearer(r)
		if !ok {
			respondUnauthorized(w, r, "缺少或无效的Authorization头，请使用Bearer密钥")
			return
		}

		key, err := m.keyService.VerifyKey(keyValue)
		if err != nil {
			respondUnauthorized(w, r, "访问密钥校验失败: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), AccessKeyIDKey, key.ID)
		ctx = context.WithValue(ctx, AccessKeyNameKey, key.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BootstrapTokenMiddleware 引导令牌鉴权，仅用于密钥签发端点
func BootstrapTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("ADMIN_BOOTSTRAP_TOKEN")
		if expected == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]interface{}{
				"status":  http.StatusServiceUnavailable,
				"message": "未配置ADMIN_BOOTSTRAP_TOKEN，密钥管理接口不可用",
				"error":   "Service Unavailable",
			})
			return
		}

		token, ok := extractBearer(r)
		if !ok || token != expected {
			respondUnauthorized(w, r, "引导令牌无效")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetAccessKeyIDFromContext 从上下文中获取密钥ID
func GetAccessKeyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccessKeyIDKey).(string)
	return id, ok
}

// extractBearer 从Authorization头中提取Bearer值
func extractBearer(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	value := strings.TrimPrefix(authHeader, "Bearer ")
	if value == "" {
		return "", false
	}
	return value, true
}

// respondUnauthorized 返回401未授权响应
func respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": message,
		"error":   "Unauthorized",
	})
}
