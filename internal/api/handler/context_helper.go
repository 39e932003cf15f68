package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

// MustGetEmployeeID 从 Gin 上下文中安全提取 employee_id。
// 如果 JWT 中间件未正确注入 employee_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetEmployeeID(c *gin.Context) (string, bool) {
	v, exists := c.Get("employee_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 从 Gin 上下文中提取操作人（员工号 + 角色）。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return service.Actor{}, false
	}

	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	role, ok := v.(string)
	if !ok || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}

	// 部门声明可为空（部门规则由服务层按角色裁量）
	department, _ := c.Get("department")
	dept, _ := department.(string)

	return service.Actor{EmployeeID: employeeID, Role: role, Department: dept}, true
}
