package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// 编号与时间段至少填一项；时间段以当日分钟数表示
type CreateShiftRequest struct {
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	Code        *int   `json:"code"         binding:"omitempty,min=0,max=99"`
	StartMinute *int   `json:"start_minute" binding:"omitempty,min=0,max=1439"`
	EndMinute   *int   `json:"end_minute"   binding:"omitempty,min=0,max=2879"`
}

// UpdateShiftRequest 更新班次请求
type UpdateShiftRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=1,max=100"`
	Code        *int    `json:"code"         binding:"omitempty,min=0,max=99"`
	StartMinute *int    `json:"start_minute" binding:"omitempty,min=0,max=1439"`
	EndMinute   *int    `json:"end_minute"   binding:"omitempty,min=0,max=2879"`
	IsActive    *bool   `json:"is_active"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	ActiveOnly bool `form:"active_only"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Code            *int   `json:"code,omitempty"`
	StartMinute     *int   `json:"start_minute,omitempty"`
	EndMinute       *int   `json:"end_minute,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// ShiftBrief 班次简要信息（嵌入其他响应）
type ShiftBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code *int   `json:"code,omitempty"`
}
