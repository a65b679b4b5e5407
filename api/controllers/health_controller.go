/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供存活检查与含数据库探测的就绪检查
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow HTTP请求处理流程
 * @rules 存活检查不依赖外部组件；就绪检查探测数据库连接，失败返回503
 * @dependencies salescleanse-service/service
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"time"

	"salescleanse-service/service"

	"github.com/go-chi/render"
)

const (
	serviceName    = "salescleanse-service"
	serviceVersion = "1.0.0"
)

// HealthController 健康检查控制器
type HealthController struct{}

// NewHealthController 创建健康检查控制器实例
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"salescleanse-service"`
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务进程存活，不探测外部依赖
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Service:   serviceName,
	})
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查服务是否就绪，探测数据库连接
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse "数据库不可达"
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	if !databaseReachable() {
		status = "not_ready"
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Service:   serviceName,
	})
}

// databaseReachable 探测数据库连接是否可用
func databaseReachable() bool {
	if service.DB == nil {
		return false
	}
	sqlDB, err := service.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}
