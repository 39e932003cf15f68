package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
)

// TechnicianRepository 技工档案数据访问接口（只读，档案由人事系统维护）
type TechnicianRepository interface {
	GetByID(ctx context.Context, id string) (*model.Technician, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*model.Technician, error)
	List(ctx context.Context, department, keyword string, activeOnly bool, offset, limit int) ([]model.Technician, int64, error)
}

// technicianRepo TechnicianRepository 的 GORM 实现
type technicianRepo struct {
	db *gorm.DB
}

// NewTechnicianRepo 创建 TechnicianRepository 实例
func NewTechnicianRepo(db *gorm.DB) TechnicianRepository {
	return &technicianRepo{db: db}
}

func (r *technicianRepo) GetByID(ctx context.Context, id string) (*model.Technician, error) {
	var tech model.Technician
	err := r.db.WithContext(ctx).
		Where("technician_id = ?", id).
		First(&tech).Error
	if err != nil {
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Technician, error) {
	var tech model.Technician
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&tech).Error
	if err != nil {
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepo) List(ctx context.Context, department, keyword string, activeOnly bool, offset, limit int) ([]model.Technician, int64, error) {
	var techs []model.Technician
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Technician{})
	if department != "" {
		db = db.Where("department = ?", department)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ? OR employee_id ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("employee_id ASC").
		Find(&techs).Error
	return techs, total, err
}
