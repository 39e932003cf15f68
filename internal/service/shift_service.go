package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound        = errors.New("班次不存在")
	ErrShiftIdentityEmpty   = errors.New("班次编号与时间段至少填写一项")
	ErrShiftRangeIncomplete = errors.New("班次开始与结束分钟必须成对填写")
)

// ShiftService 班次业务接口
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Get(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type shiftService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{cfg: cfg, repo: repo, logger: logger}
}

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	if req.Code == nil && (req.StartMinute == nil || req.EndMinute == nil) {
		if req.StartMinute != nil || req.EndMinute != nil {
			return nil, ErrShiftRangeIncomplete
		}
		return nil, ErrShiftIdentityEmpty
	}

	shift := &model.Shift{
		Name:        req.Name,
		Code:        req.Code,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		IsActive:    true,
	}
	shift.CreatedBy = &callerID

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift, s.cfg.Shift.DefaultMinutes)
	return &resp, nil
}

func (s *shiftService) Get(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", id), zap.Error(err))
		return nil, err
	}
	resp := toShiftResponse(shift, s.cfg.Shift.DefaultMinutes)
	return &resp, nil
}

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.List(ctx, req.ActiveOnly)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		resps = append(resps, toShiftResponse(&shifts[i], s.cfg.Shift.DefaultMinutes))
	}
	return resps, nil
}

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.Code != nil {
		shift.Code = req.Code
	}
	if req.StartMinute != nil {
		shift.StartMinute = req.StartMinute
	}
	if req.EndMinute != nil {
		shift.EndMinute = req.EndMinute
	}
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}
	if shift.Code == nil && (shift.StartMinute == nil || shift.EndMinute == nil) {
		return nil, ErrShiftIdentityEmpty
	}
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("更新班次失败", zap.String("shift_id", id), zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift, s.cfg.Shift.DefaultMinutes)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Shift.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}
	if err := s.repo.Shift.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除班次失败", zap.String("shift_id", id), zap.Error(err))
		return err
	}
	return nil
}

// resolveShiftDescriptor 将自由文本班次描述符归一到班次记录
// 解析出身份后先按编号、再按时间段匹配已有班次；未命中则自动登记新班次。
// 解析不出任何身份时返回 (nil, 零值身份, nil)，调用方保留原始文本即可。
func resolveShiftDescriptor(ctx context.Context, shifts repository.ShiftRepository, text, callerID string) (*model.Shift, ShiftIdentity, error) {
	id := ParseShiftText(text)
	if !id.Recognized() {
		return nil, id, nil
	}

	shift, err := shifts.FindMatching(ctx, id.Code, id.StartMinute, id.EndMinute)
	if err == nil {
		return shift, id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, id, err
	}

	// 首次出现的班次，自动登记
	shift = &model.Shift{
		Name:        text,
		Code:        id.Code,
		StartMinute: id.StartMinute,
		EndMinute:   id.EndMinute,
		IsActive:    true,
	}
	shift.CreatedBy = &callerID
	if err := shifts.Create(ctx, shift); err != nil {
		return nil, id, err
	}
	return shift, id, nil
}

func toShiftResponse(sh *model.Shift, defaultMinutes int) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:              sh.ShiftID,
		Name:            sh.Name,
		Code:            sh.Code,
		StartMinute:     sh.StartMinute,
		EndMinute:       sh.EndMinute,
		DurationMinutes: sh.DurationMinutes(defaultMinutes),
		IsActive:        sh.IsActive,
		CreatedAt:       sh.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       sh.UpdatedAt.Format(time.RFC3339),
	}
}

func toShiftBrief(sh *model.Shift) *dto.ShiftBrief {
	if sh == nil {
		return nil
	}
	return &dto.ShiftBrief{ID: sh.ShiftID, Name: sh.Name, Code: sh.Code}
}
