/*
 * @module api/controllers/schedule_controller
 * @description 定时清洗任务控制器，提供定时任务的创建、查询、启停与删除API
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow HTTP请求处理流程，任务注册与触发由调度器负责
 * @rules cron表达式为六段秒级格式；来源描述完整存入任务记录，触发时据此重建运行请求
 * @dependencies salescleanse-service/service, github.com/go-chi/chi/v5
 * @refs service/scheduler/pipeline_scheduler.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"salescleanse-service/service"
	"salescleanse-service/service/cleansing"
	"salescleanse-service/service/models"
	"salescleanse-service/service/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// ScheduleController 定时清洗任务控制器
type ScheduleController struct {
	scheduler *scheduler.PipelineScheduler
}

// NewScheduleController 创建定时清洗任务控制器实例
func NewScheduleController(pipelineScheduler *scheduler.PipelineScheduler) *ScheduleController {
	return &ScheduleController{scheduler: pipelineScheduler}
}

// CreateScheduleRequest 创建定时任务请求结构
type CreateScheduleRequest struct {
	Name          string             `json:"name"`
	CronExpr      string             `json:"cron_expr"`
	Source        service.SourceSpec `json:"source"`
	Config        *cleansing.Config  `json:"config,omitempty"`
	BatchSize     int                `json:"batch_size,omitempty"`
	Workers       int                `json:"workers,omitempty"`
	OutputDir     string             `json:"output_dir,omitempty"`
	PublishReport bool               `json:"publish_report,omitempty"`
	IsEnabled     *bool              `json:"is_enabled,omitempty"`
}

// CreateSchedule 创建定时任务
// @Summary 创建定时任务
// @Description 注册一个按cron表达式周期触发的清洗运行
// @Tags 定时任务
// @Accept json
// @Produce json
// @Param schedule body CreateScheduleRequest true "定时任务信息"
// @Success 201 {object} APIResponse{data=models.ScheduledPipeline} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedules [post]
func (c *ScheduleController) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	// 来源校验复用运行请求的规则
	runReq := service.RunRequest{Source: req.Source, Config: req.Config, BatchSize: req.BatchSize, Workers: req.Workers}
	if err := runReq.Validate(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    err.Error(),
		})
		return
	}

	sourceJSONB, err := models.ToJSONB(req.Source)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "来源描述无法序列化",
		})
		return
	}

	var configJSONB models.JSONB
	if req.Config != nil {
		if configJSONB, err = models.ToJSONB(req.Config); err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    "清洗配置无法序列化",
			})
			return
		}
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	schedule := &models.ScheduledPipeline{
		Name:          req.Name,
		CronExpr:      req.CronExpr,
		SourceType:    req.Source.Type,
		SourceURIs:    req.Source.URIs(),
		Source:        sourceJSONB,
		Config:        configJSONB,
		BatchSize:     req.BatchSize,
		Workers:       req.Workers,
		OutputDir:     req.OutputDir,
		PublishReport: req.PublishReport,
		IsEnabled:     enabled,
	}

	if err := c.scheduler.CreateSchedule(schedule); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "创建定时任务失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建定时任务成功",
		Data:   schedule,
	})
}

// ListSchedules 获取定时任务列表
// @Summary 获取定时任务列表
// @Description 分页获取定时清洗任务列表
// @Tags 定时任务
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.ScheduledPipeline} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedules [get]
func (c *ScheduleController) ListSchedules(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}

	schedules, total, err := c.scheduler.ListSchedules(page, size)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取定时任务列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取定时任务列表成功",
		Data:   schedules,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetSchedule 获取定时任务详情
// @Summary 获取定时任务详情
// @Description 根据ID获取定时任务
// @Tags 定时任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.ScheduledPipeline} "获取成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /schedules/{id} [get]
func (c *ScheduleController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	schedule, err := c.scheduler.GetSchedule(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "定时任务不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取定时任务成功",
		Data:   schedule,
	})
}

// DeleteSchedule 删除定时任务
// @Summary 删除定时任务
// @Description 删除定时任务并从调度器中移除
// @Tags 定时任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /schedules/{id} [delete]
func (c *ScheduleController) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.scheduler.DeleteSchedule(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "定时任务不存在",
			})
		} else {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "删除定时任务失败",
			})
		}
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除定时任务成功",
	})
}

// EnableSchedule 启用定时任务
// @Summary 启用定时任务
// @Tags 定时任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "操作成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /schedules/{id}/enable [post]
func (c *ScheduleController) EnableSchedule(w http.ResponseWriter, r *http.Request) {
	c.setEnabled(w, r, true)
}

// DisableSchedule 停用定时任务
// @Summary 停用定时任务
// @Tags 定时任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "操作成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /schedules/{id}/disable [post]
func (c *ScheduleController) DisableSchedule(w http.ResponseWriter, r *http.Request) {
	c.setEnabled(w, r, false)
}

func (c *ScheduleController) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := chi.URLParam(r, "id")

	if err := c.scheduler.SetScheduleEnabled(id, enabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "定时任务不存在",
			})
		} else {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "更新定时任务状态失败",
			})
		}
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新定时任务状态成功",
	})
}
