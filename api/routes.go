/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式；变更类路由需要访问密钥
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"salescleanse-service/api/controllers"
	apimiddleware "salescleanse-service/api/middleware"
	"salescleanse-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 变更类路由的访问密钥鉴权与提交限流
	keyAuth := apimiddleware.NewAccessKeyAuthMiddleware(service.GlobalAccessKeyService)
	runLimit := apimiddleware.NewRunRateLimitMiddleware(service.GlobalRunRateLimiter)

	// 清洗运行管理
	r.Route("/pipeline/runs", func(r chi.Router) {
		pipelineController := controllers.NewPipelineController(service.GlobalRunService)

		// 启动运行需要访问密钥，且按密钥限制提交频率
		r.With(keyAuth.Middleware, runLimit.Middleware).Post("/", pipelineController.CreateRun)

		// 运行状态与结果查询
		r.Get("/", pipelineController.ListRuns)
		r.Get("/{id}", pipelineController.GetRun)
		r.Get("/{id}/report", pipelineController.GetRunReport)
		r.Get("/{id}/monthly", pipelineController.GetRunMonthly)
		r.Get("/{id}/top-products", pipelineController.GetRunTopProducts)
		r.Get("/{id}/anomalies", pipelineController.GetRunAnomalies)
	})

	// 测试数据生成
	r.Route("/generator", func(r chi.Router) {
		generatorController := controllers.NewGeneratorController()
		r.With(keyAuth.Middleware, runLimit.Middleware).Post("/datasets", generatorController.GenerateDataset)
	})

	// 定时清洗任务管理
	r.Route("/schedules", func(r chi.Router) {
		scheduleController := controllers.NewScheduleController(service.GlobalPipelineScheduler)

		r.Get("/", scheduleController.ListSchedules)
		r.Get("/{id}", scheduleController.GetSchedule)

		// 变更操作需要访问密钥
		r.Group(func(r chi.Router) {
			r.Use(keyAuth.Middleware)
			r.Post("/", scheduleController.CreateSchedule)
			r.Delete("/{id}", scheduleController.DeleteSchedule)
			r.Post("/{id}/enable", scheduleController.EnableSchedule)
			r.Post("/{id}/disable", scheduleController.DisableSchedule)
		})
	})

	// 访问密钥管理，整组由引导令牌保护
	r.Route("/auth/keys", func(r chi.Router) {
		authController := controllers.NewAuthController(service.GlobalAccessKeyService)

		r.Use(apimiddleware.BootstrapTokenMiddleware)
		r.Post("/", authController.IssueKey)
		r.Get("/", authController.ListKeys)
		r.Delete("/{id}", authController.RevokeKey)
		r.Put("/{id}/enabled", authController.SetKeyEnabled)
	})
}
