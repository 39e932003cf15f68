package dto

// ── 绩效模块 DTO ──

// PerformanceRequest 绩效查询参数
// date 与 month 至少填一项：date 返回日汇总，month 返回月汇总
type PerformanceRequest struct {
	EmployeeID string `form:"employee_id" binding:"required,max=20"`
	Date       string `form:"date"        binding:"omitempty,datetime=2006-01-02"`
	Month      string `form:"month"       binding:"omitempty,datetime=2006-01"`
}

// ShiftPerformanceRow 单个班次的绩效行
type ShiftPerformanceRow struct {
	ShiftKey         string `json:"shift_key"` // 规范班次键（编号优先）
	ShiftLabel       string `json:"shift_label,omitempty"`
	CompletedOrders  int    `json:"completed_orders"`
	CompletedMinutes int    `json:"completed_minutes"`
	AvailableMinutes int    `json:"available_minutes"`
	UtilizationRate  int    `json:"utilization_rate"` // 百分比，四舍五入
}

// PerformanceSummaryResponse 合并后的绩效汇总响应
type PerformanceSummaryResponse struct {
	EmployeeID       string                `json:"employee_id"`
	Period           string                `json:"period"` // "2025-01-10" 或 "2025-01"
	CompletedOrders  int                   `json:"completed_orders"`
	CompletedMinutes int                   `json:"completed_minutes"`
	AvailableMinutes int                   `json:"available_minutes"`
	UtilizationRate  int                   `json:"utilization_rate"`
	AvgMinutesPerOrd int                   `json:"avg_minutes_per_order"` // 加权平均完成时长
	Shifts           []ShiftPerformanceRow `json:"shifts"`
}
