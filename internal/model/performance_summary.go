package model

import "time"

// PerformanceSummary 绩效汇总表 — 对应 performance_summaries
// 由同步作业从上游权威系统写入；本服务视其为只读的远端汇总来源，
// 查询时与本地完工记录按班次身份合并（见 service 层 Reconciler）。
type PerformanceSummary struct {
	SummaryID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"summary_id"`
	EmployeeID       string    `gorm:"type:varchar(20);not null"                      json:"employee_id"`
	SummaryDate      time.Time `gorm:"type:date;not null"                             json:"summary_date"`
	ShiftCode        *int      `gorm:"type:int"                                       json:"shift_code,omitempty"`
	ShiftStartMinute *int      `gorm:"type:int"                                       json:"shift_start_minute,omitempty"`
	ShiftEndMinute   *int      `gorm:"type:int"                                       json:"shift_end_minute,omitempty"`
	CompletedOrders  int       `gorm:"not null;default:0"                             json:"completed_orders"`
	CompletedMinutes int       `gorm:"not null;default:0"                             json:"completed_minutes"`
	AvailableMinutes int       `gorm:"not null;default:0"                             json:"available_minutes"`
	SyncedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"synced_at"`
}

// TableName 指定表名
func (PerformanceSummary) TableName() string { return "performance_summaries" }
