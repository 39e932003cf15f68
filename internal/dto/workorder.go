package dto

// ── 工单模块 DTO ──

// CreateWorkOrderRequest 直接创建工单请求（调度/经理）
type CreateWorkOrderRequest struct {
	Title            string  `json:"title"             binding:"required,min=2,max=200"`
	Description      string  `json:"description"       binding:"required"`
	Priority         string  `json:"priority"          binding:"omitempty,oneof=URGENT HIGH NORMAL LOW"`
	AssigneeID       *string `json:"assignee_id"       binding:"omitempty,max=20"`
	ShiftID          *string `json:"shift_id"          binding:"omitempty,uuid"`
	EstimatedMinutes int     `json:"estimated_minutes" binding:"omitempty,min=1"`
}

// TransitionWorkOrderRequest 工单状态流转请求
type TransitionWorkOrderRequest struct {
	TargetStatus  string  `json:"target_status"  binding:"required,oneof=ASSIGNED IN_PROGRESS PENDING_APPROVAL COMPLETED CANCELLED"`
	AssigneeID    *string `json:"assignee_id"    binding:"omitempty,max=20"` // PENDING→ASSIGNED 时必填
	ReportContent *string `json:"report_content"`                           // 进入 PENDING_APPROVAL 时必填
	Note          string  `json:"note"           binding:"omitempty,max=500"`
}

// ReopenWorkOrderRequest 重开已完成的停机分析工单请求
type ReopenWorkOrderRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// WorkOrderListRequest 工单列表查询参数
type WorkOrderListRequest struct {
	PaginationRequest
	Status     string `form:"status"      binding:"omitempty,oneof=PENDING ASSIGNED IN_PROGRESS PENDING_APPROVAL COMPLETED CANCELLED"`
	Category   string `form:"category"    binding:"omitempty,oneof=general extended_downtime"`
	AssigneeID string `form:"assignee_id" binding:"omitempty,max=20"`
}

// WorkOrderResponse 工单响应
type WorkOrderResponse struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Category         string      `json:"category"`
	Priority         string      `json:"priority"`
	Status           string      `json:"status"`
	RequesterID      string      `json:"requester_id"`
	AssigneeID       *string     `json:"assignee_id,omitempty"`
	Shift            *ShiftBrief `json:"shift,omitempty"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	HasReport        bool        `json:"has_report"`
	ApproverID       *string     `json:"approver_id,omitempty"`
	ApprovedAt       *string     `json:"approved_at,omitempty"`
	AssignedAt       *string     `json:"assigned_at,omitempty"`
	StartedAt        *string     `json:"started_at,omitempty"`
	CompletedAt      *string     `json:"completed_at,omitempty"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
}

// WorkOrderReportResponse 停机分析报告响应（只读）
type WorkOrderReportResponse struct {
	WorkOrderID   string  `json:"work_order_id"`
	Number        string  `json:"number"`
	Status        string  `json:"status"`
	ReportContent *string `json:"report_content"`
}

// WorkOrderStatusLogResponse 工单状态流转日志响应
type WorkOrderStatusLogResponse struct {
	ID        string `json:"id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Action    string `json:"action"`
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/workorder.go
