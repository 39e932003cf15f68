package dto

// ── 技工模块 DTO（只读，人员维护归人事系统） ──

// TechnicianListRequest 技工列表查询参数
type TechnicianListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=100"`
	ActiveOnly bool   `form:"active_only"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=50"`
}

// TechnicianResponse 技工信息响应
type TechnicianResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// TechnicianBrief 技工简要信息（嵌入其他响应）
type TechnicianBrief struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}
