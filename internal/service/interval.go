package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ── 时间区间模型 ──
//
// 完工记录的起止时间为 "HH:MM" 文本，结合日期构造左闭右开区间
// [Start, End)。End <= Start 视为跨午夜班次，End 顺延 24 小时。

var ErrInvalidTimeOfDay = errors.New("无效的时间格式，应为 HH:MM")

// Interval 左闭右开时间区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// parseTimeOfDay 解析 "HH:MM" 为当日分钟数 [0, 1440)
func parseTimeOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return h*60 + m, nil
}

// NewInterval 由日期与两个 HH:MM 时间构造区间
// endHHMM <= startHHMM 时按跨午夜处理；格式非法时返回错误，调用方必须拒绝提交
func NewInterval(date time.Time, startHHMM, endHHMM string) (Interval, error) {
	startMin, err := parseTimeOfDay(startHHMM)
	if err != nil {
		return Interval{}, err
	}
	endMin, err := parseTimeOfDay(endHHMM)
	if err != nil {
		return Interval{}, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.Add(time.Duration(startMin) * time.Minute)
	end := day.Add(time.Duration(endMin) * time.Minute)
	if !end.After(start) {
		end = end.Add(24 * time.Hour) // 跨午夜
	}

	return Interval{Start: start, End: end}, nil
}

// DurationMinutes 区间时长（分钟）
func (iv Interval) DurationMinutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// Overlaps 半开区间重叠判定：16:30 结束与 16:30 开始不冲突
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}
