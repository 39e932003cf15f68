package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

// ── 升级模块业务错误 ──

var (
	ErrNotEscalatable   = errors.New("停机时长未超过升级阈值")
	ErrAlreadyEscalated = errors.New("该完工记录已升级为分析工单")
	ErrAssigneeInactive = errors.New("指定的分析负责人不存在或已停用")
)

// EscalationService 超长停机升级业务接口
// 将停机超阈值的完工记录转为高优先级停机分析工单
type EscalationService interface {
	Escalate(ctx context.Context, jobID string, req *dto.EscalateJobRequest, actor Actor) (*dto.EscalateJobResponse, error)
}

type escalationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEscalationService 创建 EscalationService 实例
func NewEscalationService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) EscalationService {
	return &escalationService{cfg: cfg, repo: repo, logger: logger}
}

func (s *escalationService) Escalate(ctx context.Context, jobID string, req *dto.EscalateJobRequest, actor Actor) (*dto.EscalateJobResponse, error) {
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询完工记录失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	// 1. 阈值判定
	if job.DurationMinutes <= s.cfg.Escalation.ThresholdMinutes {
		return nil, ErrNotEscalatable
	}

	// 2. 幂等检查：已有分析指派直接拒绝（数据库条件更新兜底并发竞争）
	if job.Escalated() {
		return nil, ErrAlreadyEscalated
	}

	// 3. 分析负责人必须在职
	assignee, err := s.repo.Technician.GetByEmployeeID(ctx, req.AssigneeEmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeInactive
		}
		return nil, err
	}
	if !assignee.IsActive {
		return nil, ErrAssigneeInactive
	}

	// 预计时长取停机分钟数，缺失时回退配置默认值
	estimated := job.DurationMinutes
	if estimated <= 0 {
		estimated = s.cfg.Escalation.DefaultDurationMinutes
	}

	now := time.Now()
	wo := &model.WorkOrder{
		Title: fmt.Sprintf("停机分析：%s %s", job.MachineCode, job.JobDate.Format("2006-01-02")),
		Description: fmt.Sprintf("完工记录 %s 停机 %d 分钟（阈值 %d 分钟），需产出停机报告与根因分析。\n日期：%s\n班次：%s\n时段：%s-%s\n设备：%s\n干预类型：%s\n原始描述：%s",
			job.JobID, job.DurationMinutes, s.cfg.Escalation.ThresholdMinutes,
			job.JobDate.Format("2006-01-02"), job.ShiftText, job.StartTime, job.EndTime,
			job.MachineCode, job.InterventionType, job.Description),
		Category:         model.WorkOrderCategoryDowntimeAnalysis,
		Priority:         model.WorkOrderPriorityHigh,
		Status:           model.WorkOrderStatusAssigned,
		RequesterID:      actor.EmployeeID,
		AssigneeID:       &assignee.EmployeeID,
		ShiftID:          job.ShiftID,
		EstimatedMinutes: estimated,
		AssignedAt:       &now,
	}
	if req.Note != "" {
		wo.Description += "\n备注：" + req.Note
	}
	wo.CreatedBy = &actor.EmployeeID

	// 4-6. 建单、回写指派、清理同源计划任务 — 同一事务
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.AdvisoryLock(ctx, "wo:seq:"+now.Format("2006-01-02")); err != nil {
			return err
		}
		number, err := tx.WorkOrder.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		wo.Number = number

		if err := tx.WorkOrder.Create(ctx, wo); err != nil {
			return err
		}

		if err := tx.Job.SetAnalysisAssignment(ctx, job.JobID,
			assignee.EmployeeID, assignee.Name, wo.WorkOrderID, wo.Number, now); err != nil {
			return err
		}

		// 该记录衍生的计划任务已被工单取代
		if err := tx.Task.DeleteBySourceJob(ctx, job.JobID, actor.EmployeeID); err != nil {
			return err
		}

		return tx.StatusLog.Create(ctx, &model.WorkOrderStatusLog{
			WorkOrderID: wo.WorkOrderID,
			OldStatus:   model.WorkOrderStatusPending,
			NewStatus:   model.WorkOrderStatusAssigned,
			Action:      "transition",
			ActorID:     actor.EmployeeID,
			ActorRole:   actor.Role,
			Note:        req.Note,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisAlreadySet) {
			// 并发升级竞争失败方
			return nil, ErrAlreadyEscalated
		}
		s.logger.Error("升级停机分析工单失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("完工记录已升级为停机分析工单",
		zap.String("job_id", job.JobID),
		zap.String("work_order_number", wo.Number),
		zap.String("assignee", assignee.EmployeeID),
		zap.Int("downtime_minutes", job.DurationMinutes),
	)

	return &dto.EscalateJobResponse{
		WorkOrderID:     wo.WorkOrderID,
		WorkOrderNumber: wo.Number,
	}, nil
}
