/*
 * @module api/controllers/generator_controller
 * @description 测试数据生成控制器，生成带质量缺陷的合成销售数据集
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow HTTP请求处理流程，大数据集生成同步执行并返回写出行数
 * @rules 输出路径限定在服务配置的数据目录内，防止任意路径写入
 * @dependencies salescleanse-service/service/generator
 * @refs service/generator/sales_generator.go
 */

package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salescleanse-service/service/generator"

	"github.com/go-chi/render"
)

const defaultGeneratorRows = 100000

// GeneratorController 测试数据生成控制器
type GeneratorController struct {
	dataDir string
}

// NewGeneratorController 创建测试数据生成控制器实例
func NewGeneratorController() *GeneratorController {
	dataDir := os.Getenv("GENERATOR_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	return &GeneratorController{dataDir: dataDir}
}

// GenerateDatasetRequest 数据集生成请求结构
type GenerateDatasetRequest struct {
	FileName string `json:"file_name"`
	Rows     int    `json:"rows"`
	Seed     int64  `json:"seed"`
}

// GenerateDatasetResult 数据集生成结果结构
type GenerateDatasetResult struct {
	FilePath   string `json:"file_path"`
	Rows       int64  `json:"rows"`
	DurationMs int64  `json:"duration_ms"`
}

// GenerateDataset 生成合成销售数据集
// @Summary 生成合成销售数据集
// @Description 生成带有约10%质量缺陷的CSV销售数据集，seed相同则输出相同
// @Tags 数据生成
// @Accept json
// @Produce json
// @Param request body GenerateDatasetRequest true "生成请求"
// @Success 201 {object} APIResponse{data=GenerateDatasetResult} "生成成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 429 {object} APIResponse "提交过于频繁"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /generator/datasets [post]
func (c *GeneratorController) GenerateDataset(w http.ResponseWriter, r *http.Request) {
	var req GenerateDatasetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.Rows <= 0 {
		req.Rows = defaultGeneratorRows
	}
	if req.FileName == "" {
		req.FileName = "sales_data_" + time.Now().Format("20060102_150405") + ".csv"
	}
	if strings.Contains(req.FileName, "..") || strings.ContainsAny(req.FileName, `/\`) {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "文件名不能包含路径分隔符",
		})
		return
	}

	path := filepath.Join(c.dataDir, req.FileName)
	start := time.Now()

	gen := generator.NewSalesGenerator(req.Seed)
	rows, err := gen.WriteCSV(path, req.Rows, 0)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "生成数据集失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "生成数据集成功",
		Data: GenerateDatasetResult{
			FilePath:   path,
			Rows:       rows,
			DurationMs: time.Since(start).Milliseconds(),
		},
	})
}
