package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	pkgerrors "github.com/BERKEKARAYANIK/CMMS-sub001/pkg/errors"
)

// ErrTaskAlreadyConverted 任务已生成过工单，不允许二次转换
var ErrTaskAlreadyConverted = errors.New("计划任务已生成工单")

// PlannedTaskRepository 计划任务数据访问接口
type PlannedTaskRepository interface {
	Create(ctx context.Context, task *model.PlannedTask) error
	GetByID(ctx context.Context, id string) (*model.PlannedTask, error)
	List(ctx context.Context, kind, machineCode string, unconverted bool, offset, limit int) ([]model.PlannedTask, int64, error)
	Update(ctx context.Context, task *model.PlannedTask) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// DeleteBySourceJob 删除引用某完工记录的全部计划任务（升级后清理被取代的计划）
	DeleteBySourceJob(ctx context.Context, sourceJobID string, deletedBy string) error
	// MarkConverted 回填工单链接；已有 work_order_id 的任务不会命中（谱系只允许一张工单）
	MarkConverted(ctx context.Context, taskID, workOrderID, workOrderNumber string, sentAt time.Time) error
}

// plannedTaskRepo PlannedTaskRepository 的 GORM 实现
type plannedTaskRepo struct {
	db *gorm.DB
}

// NewPlannedTaskRepo 创建 PlannedTaskRepository 实例
func NewPlannedTaskRepo(db *gorm.DB) PlannedTaskRepository {
	return &plannedTaskRepo{db: db}
}

func (r *plannedTaskRepo) Create(ctx context.Context, task *model.PlannedTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *plannedTaskRepo) GetByID(ctx context.Context, id string) (*model.PlannedTask, error) {
	var task model.PlannedTask
	err := r.db.WithContext(ctx).
		Preload("SourceJob").
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *plannedTaskRepo) List(ctx context.Context, kind, machineCode string, unconverted bool, offset, limit int) ([]model.PlannedTask, int64, error) {
	var tasks []model.PlannedTask
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PlannedTask{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if machineCode != "" {
		db = db.Where("machine_code = ?", machineCode)
	}
	if unconverted {
		db = db.Where("work_order_id IS NULL")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, total, err
}

func (r *plannedTaskRepo) Update(ctx context.Context, task *model.PlannedTask) error {
	oldVersion := task.Version
	result := r.db.WithContext(ctx).
		Model(task).
		Where("task_id = ? AND version = ?", task.TaskID, oldVersion).
		Updates(map[string]interface{}{
			"machine_code":        task.MachineCode,
			"intervention_type":   task.InterventionType,
			"description":         task.Description,
			"material_notes":      task.MaterialNotes,
			"assignee_id":         task.AssigneeID,
			"assignee_name":       task.AssigneeName,
			"assignee_department": task.AssigneeDepartment,
			"updated_by":          task.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version = oldVersion + 1
	return nil
}

func (r *plannedTaskRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	if err := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("task_id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("task_id = ?", id).
		Delete(&model.PlannedTask{}).Error
}

func (r *plannedTaskRepo) DeleteBySourceJob(ctx context.Context, sourceJobID string, deletedBy string) error {
	if err := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("source_job_id = ?", sourceJobID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("source_job_id = ?", sourceJobID).
		Delete(&model.PlannedTask{}).Error
}

func (r *plannedTaskRepo) MarkConverted(ctx context.Context, taskID, workOrderID, workOrderNumber string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.PlannedTask{}).
		Where("task_id = ? AND work_order_id IS NULL", taskID).
		Updates(map[string]interface{}{
			"work_order_id":     workOrderID,
			"work_order_number": workOrderNumber,
			"sent_at":           sentAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskAlreadyConverted
	}
	return nil
}
