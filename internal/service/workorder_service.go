package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

// ── 工单模块业务错误 ──

var (
	ErrWorkOrderNotFound  = errors.New("工单不存在")
	ErrWorkOrderForbidden = errors.New("当前角色无权执行此操作")
	ErrAssigneeRequired   = errors.New("指派工单必须指定执行人")
	ErrReportRequired     = errors.New("提交审批必须附停机分析报告")
	ErrReportNotFound     = errors.New("工单没有分析报告")
	ErrNotAnalysisOrder   = errors.New("仅停机分析工单支持此操作")
	ErrReopenNotCompleted = errors.New("仅已完成的工单可以重开")
)

// TransitionError 非法状态流转
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("工单状态不允许从 %s 流转到 %s", e.From, e.To)
}

// transitionRule 状态流转规则：允许的角色 + 是否允许执行人本人操作
type transitionRule struct {
	roles         []string
	assigneeSelf  bool // 执行人本人可操作（无论角色）
	requesterSelf bool // 发起人本人可操作（无论角色）
	analysisOnly  bool // 仅停机分析工单
	generalOnly   bool // 仅普通工单（分析工单必须走审批）
}

// transitionTable 工单状态机
// 不在表中的 (from, to) 一律 TransitionError；在表中但角色不符则 Forbidden。
var transitionTable = map[string]map[string]transitionRule{
	model.WorkOrderStatusPending: {
		model.WorkOrderStatusAssigned:   {roles: []string{model.RoleScheduler, model.RoleManager}},
		model.WorkOrderStatusInProgress: {roles: []string{model.RoleManager}},
		model.WorkOrderStatusCancelled:  {roles: []string{model.RoleManager}},
	},
	model.WorkOrderStatusAssigned: {
		model.WorkOrderStatusInProgress: {roles: []string{model.RoleManager}, assigneeSelf: true},
		model.WorkOrderStatusCancelled:  {roles: []string{model.RoleManager}},
	},
	model.WorkOrderStatusInProgress: {
		model.WorkOrderStatusCompleted:       {roles: []string{model.RoleManager}, assigneeSelf: true, generalOnly: true},
		model.WorkOrderStatusPendingApproval: {roles: []string{model.RoleManager}, assigneeSelf: true, analysisOnly: true},
		model.WorkOrderStatusCancelled:       {roles: []string{model.RoleManager}},
	},
	model.WorkOrderStatusPendingApproval: {
		// 审批通过；驳回返工走清除报告（强制回退），不占流转表
		model.WorkOrderStatusCompleted: {roles: []string{model.RoleManager}, requesterSelf: true},
		model.WorkOrderStatusCancelled: {roles: []string{model.RoleManager}},
	},
}

// Actor 操作人上下文（从 JWT 声明提取）
type Actor struct {
	EmployeeID string
	Role       string
	Department string
}

// HasCrossDepartmentRight 调度员与经理可跨部门操作；技工仅限本部门
func (a Actor) HasCrossDepartmentRight() bool {
	return a.Role == model.RoleScheduler || a.Role == model.RoleManager
}

// WorkOrderService 工单业务接口
type WorkOrderService interface {
	Create(ctx context.Context, req *dto.CreateWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error)
	Get(ctx context.Context, id string) (*dto.WorkOrderResponse, error)
	List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error)
	// Transition 状态机唯一入口：校验流转表与角色后条件更新并写审计日志
	Transition(ctx context.Context, id string, req *dto.TransitionWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error)
	// Reopen 经理重开已完成的停机分析工单（回到 IN_PROGRESS）
	Reopen(ctx context.Context, id string, req *dto.ReopenWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error)
	GetReport(ctx context.Context, id string) (*dto.WorkOrderReportResponse, error)
	// ClearReport 经理清除分析报告；状态已离开 IN_PROGRESS 时强制回退
	ClearReport(ctx context.Context, id string, actor Actor) (*dto.WorkOrderResponse, error)
	ListStatusLogs(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.WorkOrderStatusLogResponse, int64, error)
}

type workOrderService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkOrderService 创建 WorkOrderService 实例
func NewWorkOrderService(repo *repository.Repository, logger *zap.Logger) WorkOrderService {
	return &workOrderService{repo: repo, logger: logger}
}

func (s *workOrderService) Create(ctx context.Context, req *dto.CreateWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error) {
	priority := req.Priority
	if priority == "" {
		priority = model.WorkOrderPriorityNormal
	}

	wo := &model.WorkOrder{
		Title:            req.Title,
		Description:      req.Description,
		Category:         model.WorkOrderCategoryGeneral,
		Priority:         priority,
		Status:           model.WorkOrderStatusPending,
		RequesterID:      actor.EmployeeID,
		ShiftID:          req.ShiftID,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	wo.CreatedBy = &actor.EmployeeID

	// 创建时直接带执行人 → 视为已指派
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		if err := s.checkAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
		now := time.Now()
		wo.AssigneeID = req.AssigneeID
		wo.Status = model.WorkOrderStatusAssigned
		wo.AssignedAt = &now
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		now := time.Now()
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
		s.logger.Error("创建工单失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("工单已创建", zap.String("number", wo.Number), zap.String("status", wo.Status))
	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *workOrderService) Get(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := s.getWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *workOrderService) List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	orders, total, err := s.repo.WorkOrder.List(ctx, req.Status, req.Category, req.AssigneeID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.WorkOrderResponse, 0, len(orders))
	for i := range orders {
		resps = append(resps, toWorkOrderResponse(&orders[i]))
	}
	return resps, total, nil
}

func (s *workOrderService) Transition(ctx context.Context, id string, req *dto.TransitionWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error) {
	wo, err := s.getWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	rule, err := lookupTransition(wo, req.TargetStatus)
	if err != nil {
		return nil, err
	}
	if !allowed(rule, wo, actor) {
		return nil, ErrWorkOrderForbidden
	}

	fields := map[string]interface{}{"status": req.TargetStatus, "updated_by": actor.EmployeeID}
	now := time.Now()

	switch req.TargetStatus {
	case model.WorkOrderStatusAssigned:
		if req.AssigneeID == nil || *req.AssigneeID == "" {
			return nil, ErrAssigneeRequired
		}
		if err := s.checkAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
		fields["assignee_id"] = *req.AssigneeID
		fields["assigned_at"] = now
	case model.WorkOrderStatusInProgress:
		// 未指派的工单直接开工须同时给出执行人（指派与开工合并）
		if wo.AssigneeID == nil {
			if req.AssigneeID == nil || *req.AssigneeID == "" {
				return nil, ErrAssigneeRequired
			}
			if err := s.checkAssignee(ctx, *req.AssigneeID); err != nil {
				return nil, err
			}
			fields["assignee_id"] = *req.AssigneeID
			fields["assigned_at"] = now
		}
		if wo.StartedAt == nil {
			fields["started_at"] = now
		}
	case model.WorkOrderStatusPendingApproval:
		if req.ReportContent == nil || *req.ReportContent == "" {
			return nil, ErrReportRequired
		}
		fields["report_content"] = *req.ReportContent
	case model.WorkOrderStatusCompleted:
		fields["completed_at"] = now
		if wo.Status == model.WorkOrderStatusPendingApproval {
			fields["approver_id"] = actor.EmployeeID
			fields["approved_at"] = now
		}
	}

	action := "transition"
	if req.TargetStatus == model.WorkOrderStatusCancelled {
		action = "cancel"
	}

	if err := s.applyTransition(ctx, wo, req.TargetStatus, fields, action, actor, req.Note); err != nil {
		return nil, err
	}

	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *workOrderService) Reopen(ctx context.Context, id string, req *dto.ReopenWorkOrderRequest, actor Actor) (*dto.WorkOrderResponse, error) {
	if actor.Role != model.RoleManager {
		return nil, ErrWorkOrderForbidden
	}

	wo, err := s.getWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wo.IsDowntimeAnalysis() {
		return nil, ErrNotAnalysisOrder
	}
	if wo.Status != model.WorkOrderStatusCompleted {
		return nil, ErrReopenNotCompleted
	}

	fields := map[string]interface{}{
		"status":       model.WorkOrderStatusInProgress,
		"completed_at": nil,
		"approver_id":  nil,
		"approved_at":  nil,
		"updated_by":   actor.EmployeeID,
	}
	if err := s.applyTransition(ctx, wo, model.WorkOrderStatusInProgress, fields, "reopen", actor, req.Note); err != nil {
		return nil, err
	}

	s.logger.Info("停机分析工单已重开", zap.String("number", wo.Number), zap.String("actor", actor.EmployeeID))
	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *workOrderService) GetReport(ctx context.Context, id string) (*dto.WorkOrderReportResponse, error) {
	wo, err := s.getWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wo.IsDowntimeAnalysis() {
		return nil, ErrNotAnalysisOrder
	}
	return &dto.WorkOrderReportResponse{
		WorkOrderID:   wo.WorkOrderID,
		Number:        wo.Number,
		Status:        wo.Status,
		ReportContent: wo.ReportContent,
	}, nil
}

func (s *workOrderService) ClearReport(ctx context.Context, id string, actor Actor) (*dto.WorkOrderResponse, error) {
	if actor.Role != model.RoleManager {
		return nil, ErrWorkOrderForbidden
	}

	wo, err := s.getWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wo.IsDowntimeAnalysis() {
		return nil, ErrNotAnalysisOrder
	}
	if wo.ReportContent == nil || *wo.ReportContent == "" {
		return nil, ErrReportNotFound
	}

	fields := map[string]interface{}{
		"report_content": nil,
		"updated_by":     actor.EmployeeID,
	}

	// 报告被清除后，已提交审批/已完成的工单退回处理中重写
	target := wo.Status
	switch wo.Status {
	case model.WorkOrderStatusPendingApproval, model.WorkOrderStatusCompleted:
		target = model.WorkOrderStatusInProgress
		fields["status"] = target
		fields["completed_at"] = nil
		fields["approver_id"] = nil
		fields["approved_at"] = nil
	}

	if err := s.applyTransition(ctx, wo, target, fields, "clear_report", actor, ""); err != nil {
		return nil, err
	}

	s.logger.Info("分析报告已清除",
		zap.String("number", wo.Number),
		zap.String("status", wo.Status),
		zap.String("actor", actor.EmployeeID),
	)
	resp := toWorkOrderResponse(wo)
	return &resp, nil
}

func (s *workOrderService) ListStatusLogs(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.WorkOrderStatusLogResponse, int64, error) {
	if _, err := s.getWorkOrder(ctx, id); err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.StatusLog.ListByWorkOrder(ctx, id, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单状态日志失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.WorkOrderStatusLogResponse, 0, len(logs))
	for _, l := range logs {
		resps = append(resps, dto.WorkOrderStatusLogResponse{
			ID:        l.StatusLogID,
			OldStatus: l.OldStatus,
			NewStatus: l.NewStatus,
			Action:    l.Action,
			ActorID:   l.ActorID,
			ActorRole: l.ActorRole,
			Note:      l.Note,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}
	return resps, total, nil
}

// ── 内部实现 ──

func (s *workOrderService) getWorkOrder(ctx context.Context, id string) (*model.WorkOrder, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, err
	}
	return wo, nil
}

// lookupTransition 查流转表；不在表中的流转一律非法
func lookupTransition(wo *model.WorkOrder, target string) (transitionRule, error) {
	targets, ok := transitionTable[wo.Status]
	if !ok {
		return transitionRule{}, &TransitionError{From: wo.Status, To: target}
	}
	rule, ok := targets[target]
	if !ok {
		return transitionRule{}, &TransitionError{From: wo.Status, To: target}
	}
	if rule.analysisOnly && !wo.IsDowntimeAnalysis() {
		return transitionRule{}, &TransitionError{From: wo.Status, To: target}
	}
	if rule.generalOnly && wo.IsDowntimeAnalysis() {
		// 停机分析工单必须经 PENDING_APPROVAL 完成
		return transitionRule{}, &TransitionError{From: wo.Status, To: target}
	}
	return rule, nil
}

func allowed(rule transitionRule, wo *model.WorkOrder, actor Actor) bool {
	if rule.assigneeSelf && wo.AssigneeID != nil && *wo.AssigneeID == actor.EmployeeID {
		return true
	}
	if rule.requesterSelf && wo.RequesterID == actor.EmployeeID {
		return true
	}
	for _, r := range rule.roles {
		if r == actor.Role {
			return true
		}
	}
	return false
}

// applyTransition 状态变更唯一落库通道：条件更新 + 审计日志，同一事务
// 并发流转只有一个请求能命中条件更新，未命中返回 repository.ErrStatusChanged。
func (s *workOrderService) applyTransition(ctx context.Context, wo *model.WorkOrder, target string, fields map[string]interface{}, action string, actor Actor, note string) error {
	oldStatus := wo.Status
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.WorkOrder.UpdateStatusFrom(ctx, wo, oldStatus, fields); err != nil {
			return err
		}
		return tx.StatusLog.Create(ctx, &model.WorkOrderStatusLog{
			WorkOrderID: wo.WorkOrderID,
			OldStatus:   oldStatus,
			NewStatus:   target,
			Action:      action,
			ActorID:     actor.EmployeeID,
			ActorRole:   actor.Role,
			Note:        note,
		})
	})
	if err != nil {
		if !errors.Is(err, repository.ErrStatusChanged) {
			s.logger.Error("工单状态流转失败",
				zap.String("number", wo.Number),
				zap.String("from", oldStatus),
				zap.String("to", target),
				zap.Error(err),
			)
		}
		return err
	}

	// 回填内存副本，响应无需重查
	wo.Status = target
	syncTransitionFields(wo, fields)
	return nil
}

// syncTransitionFields 将条件更新写入的列同步到内存模型
func syncTransitionFields(wo *model.WorkOrder, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "assignee_id":
			id := v.(string)
			wo.AssigneeID = &id
		case "assigned_at":
			t := v.(time.Time)
			wo.AssignedAt = &t
		case "started_at":
			t := v.(time.Time)
			wo.StartedAt = &t
		case "completed_at":
			if v == nil {
				wo.CompletedAt = nil
			} else {
				t := v.(time.Time)
				wo.CompletedAt = &t
			}
		case "approver_id":
			if v == nil {
				wo.ApproverID = nil
			} else {
				id := v.(string)
				wo.ApproverID = &id
			}
		case "approved_at":
			if v == nil {
				wo.ApprovedAt = nil
			} else {
				t := v.(time.Time)
				wo.ApprovedAt = &t
			}
		case "report_content":
			if v == nil {
				wo.ReportContent = nil
			} else {
				content := v.(string)
				wo.ReportContent = &content
			}
		}
	}
}

func (s *workOrderService) checkAssignee(ctx context.Context, employeeID string) error {
	tech, err := s.repo.Technician.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTechnicianNotFound
		}
		return err
	}
	if !tech.IsActive {
		return ErrTechnicianNotFound
	}
	return nil
}

func toWorkOrderResponse(wo *model.WorkOrder) dto.WorkOrderResponse {
	resp := dto.WorkOrderResponse{
		ID:               wo.WorkOrderID,
		Number:           wo.Number,
		Title:            wo.Title,
		Description:      wo.Description,
		Category:         wo.Category,
		Priority:         wo.Priority,
		Status:           wo.Status,
		RequesterID:      wo.RequesterID,
		AssigneeID:       wo.AssigneeID,
		Shift:            toShiftBrief(wo.Shift),
		EstimatedMinutes: wo.EstimatedMinutes,
		HasReport:        wo.ReportContent != nil && *wo.ReportContent != "",
		ApproverID:       wo.ApproverID,
		CreatedAt:        wo.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        wo.UpdatedAt.Format(time.RFC3339),
	}
	resp.ApprovedAt = fmtTimePtr(wo.ApprovedAt)
	resp.AssignedAt = fmtTimePtr(wo.AssignedAt)
	resp.StartedAt = fmtTimePtr(wo.StartedAt)
	resp.CompletedAt = fmtTimePtr(wo.CompletedAt)
	return resp
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
