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

// ── 计划任务模块业务错误 ──

var (
	ErrTaskNotFound       = errors.New("计划任务不存在")
	ErrTaskConverted      = errors.New("计划任务已生成工单，不可重复转换或修改")
	ErrTaskSourceRequired = errors.New("停机分析任务必须关联源完工记录")
)

// TaskService 计划任务业务接口
type TaskService interface {
	Create(ctx context.Context, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error)
	Get(ctx context.Context, id string) (*dto.TaskResponse, error)
	List(ctx context.Context, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTaskRequest, callerID string) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Convert 计划任务转工单：一条任务谱系只允许一张工单，成功后任务删除
	Convert(ctx context.Context, id string, req *dto.ConvertTaskRequest, actor Actor) (*dto.WorkOrderResponse, error)
}

type taskService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TaskService {
	return &taskService{cfg: cfg, repo: repo, logger: logger}
}

func (s *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = model.TaskKindRoutine
	}

	task := &model.PlannedTask{
		MachineCode:      req.MachineCode,
		InterventionType: req.InterventionType,
		Description:      req.Description,
		MaterialNotes:    req.MaterialNotes,
		Kind:             kind,
	}
	task.CreatedBy = &callerID

	if kind == model.TaskKindAnalysis {
		if req.SourceJobID == nil || *req.SourceJobID == "" {
			return nil, ErrTaskSourceRequired
		}
		job, err := s.repo.Job.GetByID(ctx, *req.SourceJobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJobNotFound
			}
			return nil, err
		}
		task.SourceJobID = &job.JobID
		task.SourceDowntimeMinutes = &job.DurationMinutes
	}

	if req.AssigneeID != nil && *req.AssigneeID != "" {
		tech, err := s.repo.Technician.GetByEmployeeID(ctx, *req.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTechnicianNotFound
			}
			return nil, err
		}
		task.AssigneeID = &tech.EmployeeID
		task.AssigneeName = &tech.Name
		task.AssigneeDepartment = &tech.Department
	}

	if err := s.repo.Task.Create(ctx, task); err != nil {
		s.logger.Error("创建计划任务失败", zap.Error(err))
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) Get(ctx context.Context, id string) (*dto.TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) List(ctx context.Context, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error) {
	tasks, total, err := s.repo.Task.List(ctx, req.Kind, req.MachineCode, req.Unconverted, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询计划任务列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resps = append(resps, toTaskResponse(&tasks[i]))
	}
	return resps, total, nil
}

func (s *taskService) Update(ctx context.Context, id string, req *dto.UpdateTaskRequest, callerID string) (*dto.TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.WorkOrderID != nil {
		return nil, ErrTaskConverted
	}

	if req.MachineCode != nil {
		task.MachineCode = *req.MachineCode
	}
	if req.InterventionType != nil {
		task.InterventionType = *req.InterventionType
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.MaterialNotes != nil {
		task.MaterialNotes = *req.MaterialNotes
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
			task.AssigneeName = nil
			task.AssigneeDepartment = nil
		} else {
			tech, err := s.repo.Technician.GetByEmployeeID(ctx, *req.AssigneeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrTechnicianNotFound
				}
				return nil, err
			}
			task.AssigneeID = &tech.EmployeeID
			task.AssigneeName = &tech.Name
			task.AssigneeDepartment = &tech.Department
		}
	}
	task.UpdatedBy = &callerID

	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("更新计划任务失败", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Task.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除计划任务失败", zap.String("task_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *taskService) Convert(ctx context.Context, id string, req *dto.ConvertTaskRequest, actor Actor) (*dto.WorkOrderResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.WorkOrderID != nil {
		return nil, ErrTaskConverted
	}
	if task.Kind == model.TaskKindAnalysis && task.SourceJobID == nil {
		return nil, ErrTaskSourceRequired
	}

	category := model.WorkOrderCategoryGeneral
	priority := req.Priority
	if task.Kind == model.TaskKindAnalysis {
		category = model.WorkOrderCategoryDowntimeAnalysis
		if priority == "" {
			priority = model.WorkOrderPriorityHigh
		}
	}
	if priority == "" {
		priority = model.WorkOrderPriorityNormal
	}

	estimated := s.cfg.Escalation.DefaultDurationMinutes
	if req.EstimatedMinutes != nil {
		estimated = *req.EstimatedMinutes
	} else if task.SourceDowntimeMinutes != nil {
		estimated = *task.SourceDowntimeMinutes
	}

	now := time.Now()
	wo := &model.WorkOrder{
		Title:            fmt.Sprintf("%s：%s", task.InterventionType, task.MachineCode),
		Description:      task.Description,
		Category:         category,
		Priority:         priority,
		Status:           model.WorkOrderStatusPending,
		RequesterID:      actor.EmployeeID,
		EstimatedMinutes: estimated,
	}
	wo.CreatedBy = &actor.EmployeeID

	if task.AssigneeID != nil {
		wo.AssigneeID = task.AssigneeID
		wo.Status = model.WorkOrderStatusAssigned
		wo.AssignedAt = &now
	}

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

		// 条件更新拦截并发二次转换
		if err := tx.Task.MarkConverted(ctx, task.TaskID, wo.WorkOrderID, wo.Number, now); err != nil {
			return err
		}

		// 已完成使命的计划任务移除（软删，保留谱系）
		if err := tx.Task.Delete(ctx, task.TaskID, actor.EmployeeID); err != nil {
			return err
		}

		if wo.Status == model.WorkOrderStatusAssigned {
			return tx.StatusLog.Create(ctx, &model.WorkOrderStatusLog{
				WorkOrderID: wo.WorkOrderID,
				OldStatus:   model.WorkOrderStatusPending,
				NewStatus:   model.WorkOrderStatusAssigned,
				Action:      "transition",
				ActorID:     actor.EmployeeID,
				ActorRole:   actor.Role,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrTaskAlreadyConverted) {
			return nil, ErrTaskConverted
		}
		s.logger.Error("计划任务转工单失败", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("计划任务已转为工单",
		zap.String("task_id", task.TaskID),
		zap.String("work_order_number", wo.Number),
		zap.String("kind", task.Kind),
	)

	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *taskService) getTask(ctx context.Context, id string) (*model.PlannedTask, error) {
	task, err := s.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询计划任务失败", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}
	return task, nil
}

func toTaskResponse(task *model.PlannedTask) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:               task.TaskID,
		MachineCode:      task.MachineCode,
		InterventionType: task.InterventionType,
		Description:      task.Description,
		MaterialNotes:    task.MaterialNotes,
		Kind:             task.Kind,
		WorkOrderID:      task.WorkOrderID,
		WorkOrderNumber:  task.WorkOrderNumber,
		SourceJobID:      task.SourceJobID,
		SourceDowntime:   task.SourceDowntimeMinutes,
		CreatedAt:        task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        task.UpdatedAt.Format(time.RFC3339),
	}
	if task.AssigneeID != nil {
		resp.Assignee = &dto.TechnicianBrief{
			EmployeeID: *task.AssigneeID,
			Name:       derefStr(task.AssigneeName),
			Department: derefStr(task.AssigneeDepartment),
		}
	}
	resp.SentAt = fmtTimePtr(task.SentAt)
	return resp
}
