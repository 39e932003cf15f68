package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

// ── 技工模块业务错误 ──

var ErrTechnicianNotFound = errors.New("技工不存在")

// TechnicianService 技工目录业务接口（只读）
type TechnicianService interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (*dto.TechnicianResponse, error)
	List(ctx context.Context, req *dto.TechnicianListRequest) ([]dto.TechnicianResponse, int64, error)
}

type technicianService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTechnicianService 创建 TechnicianService 实例
func NewTechnicianService(repo *repository.Repository, logger *zap.Logger) TechnicianService {
	return &technicianService{repo: repo, logger: logger}
}

func (s *technicianService) GetByEmployeeID(ctx context.Context, employeeID string) (*dto.TechnicianResponse, error) {
	tech, err := s.repo.Technician.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		s.logger.Error("查询技工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	resp := toTechnicianResponse(tech)
	return &resp, nil
}

func (s *technicianService) List(ctx context.Context, req *dto.TechnicianListRequest) ([]dto.TechnicianResponse, int64, error) {
	techs, total, err := s.repo.Technician.List(ctx,
		req.Department, req.Keyword, req.ActiveOnly,
		req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询技工列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.TechnicianResponse, 0, len(techs))
	for i := range techs {
		resps = append(resps, toTechnicianResponse(&techs[i]))
	}
	return resps, total, nil
}

func toTechnicianResponse(t *model.Technician) dto.TechnicianResponse {
	return dto.TechnicianResponse{
		ID:         t.TechnicianID,
		EmployeeID: t.EmployeeID,
		Name:       t.Name,
		Department: t.Department,
		Role:       t.Role,
		IsActive:   t.IsActive,
	}
}
