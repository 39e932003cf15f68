package service

import (
	"fmt"
	"regexp"
	"strconv"
)

// ── 班次文本解析 ──
//
// 源系统的班次字段是自由文本（如 "2班 (08:30-16:30)"、"Shift 3"、"白班"），
// 读取时解析为规范班次身份：班次编号和/或当日分钟区间。
// 两个描述符只要编号相同或时间段相同即视为同一班次。

// timeRangePattern 匹配 "HH:MM-HH:MM"（分隔符兼容 - ~ — ～）
var timeRangePattern = regexp.MustCompile(`([0-2]?\d)[:.]([0-5]\d)\s*[-~—～]\s*([0-2]?\d)[:.]([0-5]\d)`)

// shiftCodePattern 匹配去掉时间段后剩余文本中的 1-2 位班次编号
var shiftCodePattern = regexp.MustCompile(`\d{1,2}`)

// ShiftIdentity 班次的规范身份
// Code 与分钟区间至少一项非空时才是可识别班次
type ShiftIdentity struct {
	Code        *int
	StartMinute *int // 当日第几分钟 [0, 1440)
	EndMinute   *int // 跨午夜时大于 StartMinute 不成立，按 +1440 归一
}

// ParseShiftText 解析自由文本班次描述符
// 解析不出任何信息时返回零值身份（Recognized() == false）
func ParseShiftText(text string) ShiftIdentity {
	var id ShiftIdentity

	remainder := text
	if m := timeRangePattern.FindStringSubmatchIndex(text); m != nil {
		sub := timeRangePattern.FindStringSubmatch(text)
		sh, _ := strconv.Atoi(sub[1])
		sm, _ := strconv.Atoi(sub[2])
		eh, _ := strconv.Atoi(sub[3])
		em, _ := strconv.Atoi(sub[4])
		if sh <= 23 && eh <= 23 {
			start := sh*60 + sm
			end := eh*60 + em
			if end <= start {
				end += 24 * 60 // 夜班跨午夜
			}
			id.StartMinute = &start
			id.EndMinute = &end
		}
		// 班次编号只在时间段以外的文本里找，避免把小时当编号
		remainder = text[:m[0]] + text[m[1]:]
	}

	if m := shiftCodePattern.FindString(remainder); m != "" {
		if code, err := strconv.Atoi(m); err == nil {
			id.Code = &code
		}
	}

	return id
}

// Recognized 是否解析出了编号或时间段
func (id ShiftIdentity) Recognized() bool {
	return id.Code != nil || (id.StartMinute != nil && id.EndMinute != nil)
}

// Same 两个班次身份是否同一班次：编号相同，或时间段相同
func (id ShiftIdentity) Same(other ShiftIdentity) bool {
	if id.Code != nil && other.Code != nil && *id.Code == *other.Code {
		return true
	}
	if id.StartMinute != nil && id.EndMinute != nil &&
		other.StartMinute != nil && other.EndMinute != nil &&
		*id.StartMinute == *other.StartMinute && *id.EndMinute == *other.EndMinute {
		return true
	}
	return false
}

// DurationMinutes 班次时长；无时间段时返回 defaultMinutes（默认 8 小时班）
func (id ShiftIdentity) DurationMinutes(defaultMinutes int) int {
	if id.StartMinute == nil || id.EndMinute == nil {
		return defaultMinutes
	}
	return *id.EndMinute - *id.StartMinute
}

// Key 分组用键：优先编号，其次时间段；两者皆无时退化为空键
func (id ShiftIdentity) Key() string {
	if id.Code != nil {
		return fmt.Sprintf("c%d", *id.Code)
	}
	if id.StartMinute != nil && id.EndMinute != nil {
		return fmt.Sprintf("t%d-%d", *id.StartMinute, *id.EndMinute)
	}
	return ""
}
