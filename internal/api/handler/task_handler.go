package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// TaskHandler 计划任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc service.TaskService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// Create 创建计划任务
// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.taskSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询计划任务
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "任务ID不能为空")
		return
	}

	result, err := h.taskSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, result)
}

// List 查询计划任务列表
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	var req dto.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	list, total, err := h.taskSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update 更新计划任务
// PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "任务ID不能为空")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.taskSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除计划任务
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "任务ID不能为空")
		return
	}

	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.taskSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.OK(c, nil)
}

// Convert 计划任务转工单
// POST /api/v1/tasks/:id/convert
func (h *TaskHandler) Convert(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "任务ID不能为空")
		return
	}

	var req dto.ConvertTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.taskSvc.Convert(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	response.Created(c, result)
}

// handleTaskError 统一处理计划任务模块业务错误
func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 14101, "计划任务不存在")
	case errors.Is(err, service.ErrTaskConverted):
		response.Conflict(c, 14102, "计划任务已生成工单，不可重复转换或修改")
	case errors.Is(err, service.ErrTaskSourceRequired):
		response.BadRequest(c, 14103, "停机分析任务必须关联源完工记录")
	case errors.Is(err, service.ErrJobNotFound):
		response.BadRequest(c, 14104, "关联的完工记录不存在")
	case errors.Is(err, service.ErrTechnicianNotFound):
		response.BadRequest(c, 14105, "指定的执行人不存在")
	case errors.Is(err, repository.ErrTaskAlreadyConverted):
		response.Conflict(c, 14102, "计划任务已生成工单，不可重复转换或修改")
	default:
		response.InternalError(c)
	}
}
