package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	pkgerrors "github.com/BERKEKARAYANIK/CMMS-sub001/pkg/errors"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	// FindMatching 按班次身份查找：编号匹配优先，其次时间段匹配
	FindMatching(ctx context.Context, code, startMinute, endMinute *int) (*model.Shift, error)
	List(ctx context.Context, activeOnly bool) ([]model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// shiftRepo ShiftRepository 的 GORM 实现
type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindMatching(ctx context.Context, code, startMinute, endMinute *int) (*model.Shift, error) {
	var shift model.Shift

	if code != nil {
		err := r.db.WithContext(ctx).
			Where("code = ?", *code).
			First(&shift).Error
		if err == nil {
			return &shift, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	if startMinute != nil && endMinute != nil {
		err := r.db.WithContext(ctx).
			Where("start_minute = ? AND end_minute = ?", *startMinute, *endMinute).
			First(&shift).Error
		if err != nil {
			return nil, err
		}
		return &shift, nil
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *shiftRepo) List(ctx context.Context, activeOnly bool) ([]model.Shift, error) {
	var shifts []model.Shift
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("code ASC NULLS LAST, start_minute ASC NULLS LAST").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(shift).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"name":         shift.Name,
			"code":         shift.Code,
			"start_minute": shift.StartMinute,
			"end_minute":   shift.EndMinute,
			"is_active":    shift.IsActive,
			"updated_by":   shift.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}
