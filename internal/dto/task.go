package dto

// ── 计划任务模块 DTO ──

// CreateTaskRequest 创建计划任务请求
type CreateTaskRequest struct {
	MachineCode      string  `json:"machine_code"      binding:"required,max=50"`
	InterventionType string  `json:"intervention_type" binding:"required,max=50"`
	Description      string  `json:"description"       binding:"required"`
	MaterialNotes    string  `json:"material_notes"`
	Kind             string  `json:"kind"              binding:"omitempty,oneof=ROUTINE_MAINTENANCE EXTENDED_DOWNTIME_ANALYSIS"`
	AssigneeID       *string `json:"assignee_id"       binding:"omitempty,max=20"`
	SourceJobID      *string `json:"source_job_id"     binding:"omitempty,max=13"`
}

// UpdateTaskRequest 更新计划任务请求
type UpdateTaskRequest struct {
	MachineCode      *string `json:"machine_code"      binding:"omitempty,max=50"`
	InterventionType *string `json:"intervention_type" binding:"omitempty,max=50"`
	Description      *string `json:"description"`
	MaterialNotes    *string `json:"material_notes"`
	AssigneeID       *string `json:"assignee_id"       binding:"omitempty,max=20"`
}

// TaskListRequest 计划任务列表查询参数
type TaskListRequest struct {
	PaginationRequest
	Kind        string `form:"kind"         binding:"omitempty,oneof=ROUTINE_MAINTENANCE EXTENDED_DOWNTIME_ANALYSIS"`
	MachineCode string `form:"machine_code" binding:"omitempty,max=50"`
	Unconverted bool   `form:"unconverted"` // 仅列出尚未生成工单的任务
}

// ConvertTaskRequest 计划任务转工单请求
type ConvertTaskRequest struct {
	Priority         string `json:"priority"          binding:"omitempty,oneof=URGENT HIGH NORMAL LOW"`
	EstimatedMinutes *int   `json:"estimated_minutes" binding:"omitempty,min=1"`
}

// TaskResponse 计划任务响应
type TaskResponse struct {
	ID               string           `json:"id"`
	MachineCode      string           `json:"machine_code"`
	InterventionType string           `json:"intervention_type"`
	Description      string           `json:"description"`
	MaterialNotes    string           `json:"material_notes,omitempty"`
	Kind             string           `json:"kind"`
	Assignee         *TechnicianBrief `json:"assignee,omitempty"`
	WorkOrderID      *string          `json:"work_order_id,omitempty"`
	WorkOrderNumber  *string          `json:"work_order_number,omitempty"`
	SentAt           *string          `json:"sent_at,omitempty"`
	SourceJobID      *string          `json:"source_job_id,omitempty"`
	SourceDowntime   *int             `json:"source_downtime_minutes,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}
