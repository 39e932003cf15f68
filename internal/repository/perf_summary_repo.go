package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
)

// PerformanceSummaryRepository 远端绩效汇总数据访问接口
// 表由同步作业写入，本服务只读；查询结果交由 service 层与本地完工记录合并。
type PerformanceSummaryRepository interface {
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]model.PerformanceSummary, error)
	ListByEmployeeAndMonth(ctx context.Context, employeeID string, year int, month time.Month) ([]model.PerformanceSummary, error)
}

// perfSummaryRepo PerformanceSummaryRepository 的 GORM 实现
type perfSummaryRepo struct {
	db *gorm.DB
}

// NewPerformanceSummaryRepo 创建 PerformanceSummaryRepository 实例
func NewPerformanceSummaryRepo(db *gorm.DB) PerformanceSummaryRepository {
	return &perfSummaryRepo{db: db}
}

func (r *perfSummaryRepo) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]model.PerformanceSummary, error) {
	var rows []model.PerformanceSummary
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND summary_date = ?", employeeID, date.Format("2006-01-02")).
		Order("shift_code ASC NULLS LAST, shift_start_minute ASC NULLS LAST").
		Find(&rows).Error
	return rows, err
}

func (r *perfSummaryRepo) ListByEmployeeAndMonth(ctx context.Context, employeeID string, year int, month time.Month) ([]model.PerformanceSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []model.PerformanceSummary
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND summary_date >= ? AND summary_date < ?",
			employeeID, start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("summary_date ASC, shift_code ASC NULLS LAST").
		Find(&rows).Error
	return rows, err
}
