/*
 * @module api/controllers/auth_controller
 * @description 访问密钥管理控制器，提供密钥签发、列表、启停与吊销API
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow HTTP请求处理流程，整组路由由引导令牌中间件保护
 * @rules 完整密钥仅在签发响应中出现一次，数据库只保存哈希
 * @dependencies salescleanse-service/service/auth, github.com/go-chi/chi/v5
 * @refs api/middleware/access_key_auth.go
 */

package controllers

import (
	"errors"
	"net/http"
	"time"

	"salescleanse-service/service/auth"
	"salescleanse-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// AuthController 访问密钥管理控制器
type AuthController struct {
	keyService *auth.AccessKeyService
}

// NewAuthController 创建访问密钥管理控制器实例
func NewAuthController(keyService *auth.AccessKeyService) *AuthController {
	return &AuthController{keyService: keyService}
}

// IssueKeyRequest 密钥签发请求结构
type IssueKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IssueKeyResult 密钥签发结果结构
type IssueKeyResult struct {
	Key       *models.AccessKey `json:"key"`
	AccessKey string            `json:"access_key"`
}

// IssueKey 签发访问密钥
// @Summary 签发访问密钥
// @Description 签发新的访问密钥，完整密钥值仅在本响应中返回一次
// @Tags 访问密钥
// @Accept json
// @Produce json
// @Param request body IssueKeyRequest true "签发请求"
// @Success 201 {object} APIResponse{data=IssueKeyResult} "签发成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /auth/keys [post]
func (c *AuthController) IssueKey(w http.ResponseWriter, r *http.Request) {
	var req IssueKeyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.Name == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "密钥名称不能为空",
		})
		return
	}

	key, fullKey, err := c.keyService.IssueKey(req.Name, req.ExpiresAt)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "签发密钥失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "签发密钥成功",
		Data: IssueKeyResult{
			Key:       key,
			AccessKey: fullKey,
		},
	})
}

// ListKeys 获取密钥列表
// @Summary 获取密钥列表
// @Description 获取全部访问密钥（不含密钥值）
// @Tags 访问密钥
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.AccessKey} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /auth/keys [get]
func (c *AuthController) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := c.keyService.ListKeys()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取密钥列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取密钥列表成功",
		Data:   keys,
	})
}

// RevokeKey 吊销密钥
// @Summary 吊销密钥
// @Description 删除访问密钥，立即失效
// @Tags 访问密钥
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse "吊销成功"
// @Failure 404 {object} APIResponse "密钥不存在"
// @Router /auth/keys/{id} [delete]
func (c *AuthController) RevokeKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.keyService.RevokeKey(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "密钥不存在",
			})
		} else {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "吊销密钥失败",
			})
		}
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "吊销密钥成功",
	})
}

// SetKeyEnabled 启用或禁用密钥
// @Summary 启用或禁用密钥
// @Tags 访问密钥
// @Accept json
// @Produce json
// @Param id path string true "密钥ID"
// @Param request body map[string]bool true "{\"enabled\": true}"
// @Success 200 {object} APIResponse "操作成功"
// @Failure 404 {object} APIResponse "密钥不存在"
// @Router /auth/keys/{id}/enabled [put]
func (c *AuthController) SetKeyEnabled(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.keyService.SetKeyEnabled(id, body.Enabled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "密钥不存在",
			})
		} else {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "更新密钥状态失败",
			})
		}
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新密钥状态成功",
	})
}
