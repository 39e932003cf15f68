package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// PerformanceHandler 绩效汇总 HTTP 处理器
type PerformanceHandler struct {
	performanceSvc service.PerformanceService
}

// NewPerformanceHandler 创建 PerformanceHandler
func NewPerformanceHandler(performanceSvc service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceSvc: performanceSvc}
}

// Summary 查询技工绩效汇总（日或月）
// GET /api/v1/performance/summary
func (h *PerformanceHandler) Summary(c *gin.Context) {
	var req dto.PerformanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	result, err := h.performanceSvc.Summary(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPerfPeriodRequired):
			response.BadRequest(c, 16102, "date 与 month 参数至少填写一项")
		case errors.Is(err, service.ErrInvalidTimeOfDay):
			response.BadRequest(c, 16103, "日期格式无效")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
