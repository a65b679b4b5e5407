/*
 * @module api/controllers/response
 * @description 控制器层统一响应envelope定义，业务状态码承载在响应体内
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 无状态结构定义
 * @rules 除鉴权与限流中间件外，HTTP层统一返回200，语义状态放在status字段
 * @dependencies 无
 * @refs api/controllers, docs/docs.go
 */

package controllers

// APIResponse 统一API响应结构，msg为面向调用方的中文提示
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构，附带总数与分页参数回显
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}
