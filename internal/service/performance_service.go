package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/redis"
)

// ── 绩效模块业务错误 ──

var ErrPerfPeriodRequired = errors.New("date 与 month 参数至少填写一项")

const perfCacheTTL = 5 * time.Minute

// PerformanceService 绩效汇总业务接口
// 本地完工记录与远端同步汇总双源合并（见 Reconciler）
type PerformanceService interface {
	Summary(ctx context.Context, req *dto.PerformanceRequest) (*dto.PerformanceSummaryResponse, error)
}

type performanceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewPerformanceService 创建 PerformanceService 实例
func NewPerformanceService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) PerformanceService {
	return &performanceService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

func (s *performanceService) Summary(ctx context.Context, req *dto.PerformanceRequest) (*dto.PerformanceSummaryResponse, error) {
	var period string
	var from, to time.Time

	switch {
	case req.Date != "":
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, req.Date)
		}
		period = req.Date
		from, to = d, d
	case req.Month != "":
		m, err := time.Parse("2006-01", req.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, req.Month)
		}
		period = req.Month
		from = m
		to = m.AddDate(0, 1, -1)
	default:
		return nil, ErrPerfPeriodRequired
	}

	// 缓存命中直接返回（Redis 不可用时静默降级）
	cacheKey := req.EmployeeID + ":" + period
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	local, err := s.localCells(ctx, req.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}
	remote, err := s.remoteCells(ctx, req.EmployeeID, from, to, req.Month != "")
	if err != nil {
		return nil, err
	}

	merged := Reconciler{}.Merge(local, remote)
	resp := s.buildSummary(req.EmployeeID, period, merged)

	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// localCells 本地完工记录 → 单元格
// 班次身份从原始文本解析；同一记录对每位技工各计一单，此处只取目标技工视角
func (s *performanceService) localCells(ctx context.Context, employeeID string, from, to time.Time) ([]ShiftCell, error) {
	jobs, err := s.repo.Job.ListByEmployeeAndDateRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询本地完工记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	var cells []ShiftCell
	for i := range jobs {
		job := &jobs[i]
		identity := ParseShiftText(job.ShiftText)
		date := job.JobDate.Format("2006-01-02")

		idx := -1
		for j := range cells {
			if cells[j].Date == date && sameCellIdentity(cells[j].Identity, identity) {
				idx = j
				break
			}
		}
		if idx < 0 {
			cells = append(cells, ShiftCell{
				Date:     date,
				Identity: identity,
				Label:    job.ShiftText,
				// 同一天同一班次的容量只计一次
				AvailableMinutes: identity.DurationMinutes(s.cfg.Shift.DefaultMinutes),
			})
			idx = len(cells) - 1
		}
		cells[idx].CompletedOrders++
		cells[idx].CompletedMinutes += job.DurationMinutes
	}
	return cells, nil
}

// remoteCells 远端同步汇总 → 单元格
func (s *performanceService) remoteCells(ctx context.Context, employeeID string, from, to time.Time, monthly bool) ([]ShiftCell, error) {
	var rows []model.PerformanceSummary
	var err error
	if monthly {
		rows, err = s.repo.PerfSummary.ListByEmployeeAndMonth(ctx, employeeID, from.Year(), from.Month())
	} else {
		rows, err = s.repo.PerfSummary.ListByEmployeeAndDate(ctx, employeeID, from)
	}
	if err != nil {
		s.logger.Error("查询远端绩效汇总失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	cells := make([]ShiftCell, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		identity := ShiftIdentity{
			Code:        row.ShiftCode,
			StartMinute: row.ShiftStartMinute,
			EndMinute:   row.ShiftEndMinute,
		}
		label := ""
		if row.ShiftCode != nil {
			label = fmt.Sprintf("%d班", *row.ShiftCode)
		}
		cells = append(cells, ShiftCell{
			Date:             row.SummaryDate.Format("2006-01-02"),
			Identity:         identity,
			Label:            label,
			CompletedOrders:  row.CompletedOrders,
			CompletedMinutes: row.CompletedMinutes,
			AvailableMinutes: row.AvailableMinutes,
		})
	}
	return cells, nil
}

// buildSummary 合并结果 → 响应：总量 + 按班次身份聚合的明细行
func (s *performanceService) buildSummary(employeeID, period string, cells []ShiftCell) *dto.PerformanceSummaryResponse {
	orders, minutes, available := Totals(cells)

	// 按班次身份跨天聚合明细行
	type shiftAgg struct {
		key     string
		label   string
		orders  int
		minutes int
		avail   int
	}
	var aggs []*shiftAgg
	byKey := make(map[string]*shiftAgg)
	for _, c := range cells {
		key := c.Identity.Key()
		agg, ok := byKey[key]
		if !ok {
			agg = &shiftAgg{key: key, label: c.Label}
			byKey[key] = agg
			aggs = append(aggs, agg)
		}
		agg.orders += c.CompletedOrders
		agg.minutes += c.CompletedMinutes
		agg.avail += c.AvailableMinutes
		if agg.label == "" {
			agg.label = c.Label
		}
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].key < aggs[j].key })

	shifts := make([]dto.ShiftPerformanceRow, 0, len(aggs))
	for _, a := range aggs {
		shifts = append(shifts, dto.ShiftPerformanceRow{
			ShiftKey:         a.key,
			ShiftLabel:       a.label,
			CompletedOrders:  a.orders,
			CompletedMinutes: a.minutes,
			AvailableMinutes: a.avail,
			UtilizationRate:  UtilizationRate(a.minutes, a.avail),
		})
	}

	return &dto.PerformanceSummaryResponse{
		EmployeeID:       employeeID,
		Period:           period,
		CompletedOrders:  orders,
		CompletedMinutes: minutes,
		AvailableMinutes: available,
		UtilizationRate:  UtilizationRate(minutes, available),
		AvgMinutesPerOrd: AvgMinutesPerOrder(minutes, orders),
		Shifts:           shifts,
	}
}

func (s *performanceService) cacheGet(ctx context.Context, key string) (*dto.PerformanceSummaryResponse, bool) {
	if s.rdb == nil {
		return nil, false
	}
	payload, ok, err := s.rdb.GetPerfSummary(ctx, key)
	if err != nil {
		s.logger.Warn("读取绩效缓存失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var resp dto.PerformanceSummaryResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (s *performanceService) cacheSet(ctx context.Context, key string, resp *dto.PerformanceSummaryResponse) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.SetPerfSummary(ctx, key, string(payload), perfCacheTTL); err != nil {
		s.logger.Warn("写入绩效缓存失败", zap.String("key", key), zap.Error(err))
	}
}
