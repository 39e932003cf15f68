package service

// ── 双源绩效合并 ──
//
// 本地完工记录与远端同步汇总按 (日期, 班次身份) 单元格合并：
// 完成单数与完成分钟数相加，可用分钟数取两源较大值（容量不重复计），
// 平均完成时长由合并后的总量重新计算。任一侧为空时合并结果等于另一侧。

// ShiftCell 某天某班次的绩效计数单元
type ShiftCell struct {
	Date             string // 2006-01-02
	Identity         ShiftIdentity
	Label            string
	CompletedOrders  int
	CompletedMinutes int
	AvailableMinutes int
}

// Reconciler 双源合并器
type Reconciler struct{}

// Merge 合并本地与远端单元格列表
// 匹配规则：同一天且班次身份相同（编号匹配优先，其次时间段）；
// 未匹配的单元格原样保留。
func (Reconciler) Merge(local, remote []ShiftCell) []ShiftCell {
	merged := make([]ShiftCell, len(local))
	copy(merged, local)

	for _, rc := range remote {
		idx := -1
		for i := range merged {
			if merged[i].Date == rc.Date && sameCellIdentity(merged[i].Identity, rc.Identity) {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, rc)
			continue
		}
		cell := &merged[idx]
		cell.CompletedOrders += rc.CompletedOrders
		cell.CompletedMinutes += rc.CompletedMinutes
		if rc.AvailableMinutes > cell.AvailableMinutes {
			cell.AvailableMinutes = rc.AvailableMinutes
		}
		if cell.Label == "" {
			cell.Label = rc.Label
		}
	}
	return merged
}

// sameCellIdentity 两个无法识别的班次身份记入同一单元格
func sameCellIdentity(a, b ShiftIdentity) bool {
	if a.Same(b) {
		return true
	}
	return !a.Recognized() && !b.Recognized()
}

// Totals 单元格列表的总量
func Totals(cells []ShiftCell) (orders, minutes, available int) {
	for _, c := range cells {
		orders += c.CompletedOrders
		minutes += c.CompletedMinutes
		available += c.AvailableMinutes
	}
	return orders, minutes, available
}

// UtilizationRate 完成率百分比（四舍五入）；可用分钟为 0 时返回 0
func UtilizationRate(completedMinutes, availableMinutes int) int {
	if availableMinutes <= 0 {
		return 0
	}
	return (completedMinutes*100 + availableMinutes/2) / availableMinutes
}

// AvgMinutesPerOrder 加权平均完成时长（四舍五入）；无完成单时返回 0
func AvgMinutesPerOrder(completedMinutes, completedOrders int) int {
	if completedOrders <= 0 {
		return 0
	}
	return (completedMinutes + completedOrders/2) / completedOrders
}
