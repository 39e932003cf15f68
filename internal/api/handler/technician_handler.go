package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// TechnicianHandler 技工目录 HTTP 处理器（只读）
type TechnicianHandler struct {
	technicianSvc service.TechnicianService
}

// NewTechnicianHandler 创建 TechnicianHandler
func NewTechnicianHandler(technicianSvc service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{technicianSvc: technicianSvc}
}

// Get 按员工号查询技工
// GET /api/v1/technicians/:employee_id
func (h *TechnicianHandler) Get(c *gin.Context) {
	employeeID := c.Param("employee_id")
	if employeeID == "" {
		response.BadRequest(c, 11001, "员工号不能为空")
		return
	}

	result, err := h.technicianSvc.GetByEmployeeID(c.Request.Context(), employeeID)
	if err != nil {
		if errors.Is(err, service.ErrTechnicianNotFound) {
			response.NotFound(c, 11101, "技工不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// List 查询技工列表
// GET /api/v1/technicians
func (h *TechnicianHandler) List(c *gin.Context) {
	var req dto.TechnicianListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	list, total, err := h.technicianSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
