/*
 * @module api/controllers/pipeline_controller
 * @description 清洗运行控制器，提供运行创建、状态查询、运行列表与结果报告查询API
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow HTTP请求处理流程，运行本身在后台goroutine中异步执行
 * @rules 统一的错误处理和响应格式；结果端点只读取归档表，不触碰运行期内存状态
 * @dependencies salescleanse-service/service, github.com/go-chi/chi/v5
 * @refs service/run_service.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"salescleanse-service/service"
	"salescleanse-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// PipelineController 清洗运行控制器
type PipelineController struct {
	runService *service.RunService
}

// NewPipelineController 创建清洗运行控制器实例
func NewPipelineController(runService *service.RunService) *PipelineController {
	return &PipelineController{runService: runService}
}

// CreateRun 启动清洗运行
// @Summary 启动清洗运行
// @Description 按请求中的数据来源与配置启动一次异步清洗运行，立即返回运行记录
// @Tags 清洗运行
// @Accept json
// @Produce json
// @Param run body service.RunRequest true "运行请求"
// @Success 201 {object} APIResponse{data=models.PipelineRun} "运行已创建"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 429 {object} APIResponse "提交过于频繁"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /pipeline/runs [post]
func (c *PipelineController) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req service.RunRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := req.Validate(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    err.Error(),
		})
		return
	}

	run, err := c.runService.StartRun(&req, models.RunTriggerAPI, "")
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建运行失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "运行已创建",
		Data:   run,
	})
}

// GetRun 查询运行状态
// @Summary 查询运行状态
// @Description 根据运行ID查询运行状态与质量计数
// @Tags 清洗运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse{data=models.PipelineRun} "获取成功"
// @Failure 404 {object} APIResponse "运行不存在"
// @Router /pipeline/runs/{id} [get]
func (c *PipelineController) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := c.runService.GetRun(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "运行不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取运行成功",
		Data:   run,
	})
}

// ListRuns 获取运行列表
// @Summary 获取运行列表
// @Description 分页获取清洗运行列表，可按状态过滤
// @Tags 清洗运行
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Param status query string false "运行状态"
// @Success 200 {object} PaginatedResponse{data=[]models.PipelineRun} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /pipeline/runs [get]
func (c *PipelineController) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	status := r.URL.Query().Get("status")

	runs, total, err := c.runService.ListRuns(page, size, status)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取运行列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取运行列表成功",
		Data:   runs,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetRunReport 查询运行质量报告
// @Summary 查询运行质量报告
// @Description 查询运行归档的完整质量报告，包括计数、月度汇总、热销产品与异常记录
// @Tags 清洗运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse{data=models.QualityReportRecord} "获取成功"
// @Failure 404 {object} APIResponse "报告不存在"
// @Router /pipeline/runs/{id}/report [get]
func (c *PipelineController) GetRunReport(w http.ResponseWriter, r *http.Request) {
	record, ok := c.loadReport(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取质量报告成功",
		Data:   record,
	})
}

// GetRunMonthly 查询运行月度汇总
// @Summary 查询运行月度汇总
// @Description 查询运行产出的按月销售汇总表，按年月升序
// @Tags 清洗运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse "获取成功"
// @Failure 404 {object} APIResponse "报告不存在"
// @Router /pipeline/runs/{id}/monthly [get]
func (c *PipelineController) GetRunMonthly(w http.ResponseWriter, r *http.Request) {
	record, ok := c.loadReport(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取月度汇总成功",
		Data:   record.MonthlySummary,
	})
}

// GetRunTopProducts 查询运行热销产品
// @Summary 查询运行热销产品
// @Description 查询运行产出的热销产品表（收入榜与销量榜合并去重，按总收入降序）
// @Tags 清洗运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse "获取成功"
// @Failure 404 {object} APIResponse "报告不存在"
// @Router /pipeline/runs/{id}/top-products [get]
func (c *PipelineController) GetRunTopProducts(w http.ResponseWriter, r *http.Request) {
	record, ok := c.loadReport(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取热销产品成功",
		Data:   record.TopProducts,
	})
}

// GetRunAnomalies 查询运行异常记录
// @Summary 查询运行异常记录
// @Description 查询运行产出的高收入异常记录，按收入降序
// @Tags 清洗运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse "获取成功"
// @Failure 404 {object} APIResponse "报告不存在"
// @Router /pipeline/runs/{id}/anomalies [get]
func (c *PipelineController) GetRunAnomalies(w http.ResponseWriter, r *http.Request) {
	record, ok := c.loadReport(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取异常记录成功",
		Data:   record.AnomalyRecords,
	})
}

// loadReport 加载运行的归档报告，不存在时写出404响应
func (c *PipelineController) loadReport(w http.ResponseWriter, r *http.Request) (*models.QualityReportRecord, bool) {
	id := chi.URLParam(r, "id")

	record, err := c.runService.GetReportRecord(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "运行报告不存在或尚未生成",
			})
		} else {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "查询运行报告失败",
			})
		}
		return nil, false
	}

	return record, true
}
