package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

// ── Mock TechnicianRepository ──

type mockTechnicianRepo struct {
	techs map[string]*model.Technician // key: employee_id
}

func newMockTechnicianRepo() *mockTechnicianRepo {
	return &mockTechnicianRepo{techs: make(map[string]*model.Technician)}
}

func (m *mockTechnicianRepo) GetByID(_ context.Context, id string) (*model.Technician, error) {
	for _, t := range m.techs {
		if t.TechnicianID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTechnicianRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.Technician, error) {
	if t, ok := m.techs[employeeID]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTechnicianRepo) List(_ context.Context, department, keyword string, activeOnly bool, _, _ int) ([]model.Technician, int64, error) {
	var result []model.Technician
	for _, t := range m.techs {
		if department != "" && t.Department != department {
			continue
		}
		if activeOnly && !t.IsActive {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	seq    int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) FindMatching(_ context.Context, code, startMinute, endMinute *int) (*model.Shift, error) {
	if code != nil {
		for _, s := range m.shifts {
			if s.Code != nil && *s.Code == *code {
				return s, nil
			}
		}
	}
	if startMinute != nil && endMinute != nil {
		for _, s := range m.shifts {
			if s.StartMinute != nil && s.EndMinute != nil &&
				*s.StartMinute == *startMinute && *s.EndMinute == *endMinute {
				return s, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, activeOnly bool) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if activeOnly && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	m.shifts[shift.ShiftID] = shift
	shift.Version++
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.shifts, id)
	return nil
}

// ── Mock CompletedJobRepository ──

type mockJobRepo struct {
	jobs map[string]*model.CompletedJob
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.CompletedJob)}
}

func (m *mockJobRepo) Create(_ context.Context, job *model.CompletedJob) error {
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.CompletedJob, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) NextJobID(_ context.Context, date time.Time) (string, error) {
	prefix := date.Format("20060102")
	count := 0
	for id := range m.jobs {
		if len(id) >= 8 && id[:8] == prefix {
			count++
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (m *mockJobRepo) ListByEmployeeAround(_ context.Context, employeeID string, date time.Time) ([]model.CompletedJob, error) {
	from := date.AddDate(0, 0, -1)
	to := date.AddDate(0, 0, 1)
	var result []model.CompletedJob
	for _, j := range m.jobs {
		if j.JobDate.Before(from) || j.JobDate.After(to) {
			continue
		}
		if j.Technicians.Contains(employeeID) {
			result = append(result, *j)
		}
	}
	return result, nil
}

func (m *mockJobRepo) ListByEmployeeAndDateRange(_ context.Context, employeeID string, from, to time.Time) ([]model.CompletedJob, error) {
	var result []model.CompletedJob
	for _, j := range m.jobs {
		if j.JobDate.Before(from) || j.JobDate.After(to) {
			continue
		}
		if j.Technicians.Contains(employeeID) {
			result = append(result, *j)
		}
	}
	return result, nil
}

func (m *mockJobRepo) List(_ context.Context, employeeID, machineCode string, from, to *time.Time, _, _ int) ([]model.CompletedJob, int64, error) {
	var result []model.CompletedJob
	for _, j := range m.jobs {
		if employeeID != "" && !j.Technicians.Contains(employeeID) {
			continue
		}
		if machineCode != "" && j.MachineCode != machineCode {
			continue
		}
		if from != nil && j.JobDate.Before(*from) {
			continue
		}
		if to != nil && j.JobDate.After(*to) {
			continue
		}
		result = append(result, *j)
	}
	return result, int64(len(result)), nil
}

func (m *mockJobRepo) Update(_ context.Context, job *model.CompletedJob) error {
	m.jobs[job.JobID] = job
	job.Version++
	return nil
}

func (m *mockJobRepo) SetAnalysisAssignment(_ context.Context, jobID string, assigneeID, assigneeName, workOrderID, workOrderNumber string, assignedAt time.Time) error {
	j, ok := m.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if j.AnalysisWorkOrderID != nil {
		return repository.ErrAnalysisAlreadySet
	}
	j.AnalysisAssigneeID = &assigneeID
	j.AnalysisAssigneeName = &assigneeName
	j.AnalysisWorkOrderID = &workOrderID
	j.AnalysisWorkOrderNumber = &workOrderNumber
	j.AnalysisAssignedAt = &assignedAt
	return nil
}

// ── Mock PlannedTaskRepository ──

type mockTaskRepo struct {
	tasks map[string]*model.PlannedTask
	seq   int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.PlannedTask)}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.PlannedTask) error {
	if task.TaskID == "" {
		m.seq++
		task.TaskID = fmt.Sprintf("task-%03d", m.seq)
	}
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.PlannedTask, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) List(_ context.Context, kind, machineCode string, unconverted bool, _, _ int) ([]model.PlannedTask, int64, error) {
	var result []model.PlannedTask
	for _, t := range m.tasks {
		if kind != "" && t.Kind != kind {
			continue
		}
		if machineCode != "" && t.MachineCode != machineCode {
			continue
		}
		if unconverted && t.WorkOrderID != nil {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *model.PlannedTask) error {
	m.tasks[task.TaskID] = task
	task.Version++
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) DeleteBySourceJob(_ context.Context, sourceJobID string, _ string) error {
	for id, t := range m.tasks {
		if t.SourceJobID != nil && *t.SourceJobID == sourceJobID {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *mockTaskRepo) MarkConverted(_ context.Context, taskID, workOrderID, workOrderNumber string, sentAt time.Time) error {
	t, ok := m.tasks[taskID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if t.WorkOrderID != nil {
		return repository.ErrTaskAlreadyConverted
	}
	t.WorkOrderID = &workOrderID
	t.WorkOrderNumber = &workOrderNumber
	t.SentAt = &sentAt
	return nil
}

// ── Mock WorkOrderRepository ──

type mockWorkOrderRepo struct {
	orders map[string]*model.WorkOrder
	seq    int
}

func newMockWorkOrderRepo() *mockWorkOrderRepo {
	return &mockWorkOrderRepo{orders: make(map[string]*model.WorkOrder)}
}

func (m *mockWorkOrderRepo) Create(_ context.Context, wo *model.WorkOrder) error {
	if wo.WorkOrderID == "" {
		m.seq++
		wo.WorkOrderID = fmt.Sprintf("wo-%03d", m.seq)
	}
	m.orders[wo.WorkOrderID] = wo
	return nil
}

func (m *mockWorkOrderRepo) GetByID(_ context.Context, id string) (*model.WorkOrder, error) {
	if wo, ok := m.orders[id]; ok {
		return wo, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) NextNumber(_ context.Context, date time.Time) (string, error) {
	prefix := "WO-" + date.Format("20060102")
	count := 0
	for _, wo := range m.orders {
		if len(wo.Number) >= len(prefix) && wo.Number[:len(prefix)] == prefix {
			count++
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

func (m *mockWorkOrderRepo) List(_ context.Context, status, category, assigneeID string, _, _ int) ([]model.WorkOrder, int64, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if status != "" && wo.Status != status {
			continue
		}
		if category != "" && wo.Category != category {
			continue
		}
		if assigneeID != "" && (wo.AssigneeID == nil || *wo.AssigneeID != assigneeID) {
			continue
		}
		result = append(result, *wo)
	}
	return result, int64(len(result)), nil
}

func (m *mockWorkOrderRepo) UpdateStatusFrom(_ context.Context, wo *model.WorkOrder, expectedStatus string, fields map[string]interface{}) error {
	stored, ok := m.orders[wo.WorkOrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != expectedStatus {
		return repository.ErrStatusChanged
	}
	for k, v := range fields {
		switch k {
		case "status":
			stored.Status = v.(string)
		case "assignee_id":
			id := v.(string)
			stored.AssigneeID = &id
		case "assigned_at":
			t := v.(time.Time)
			stored.AssignedAt = &t
		case "started_at":
			t := v.(time.Time)
			stored.StartedAt = &t
		case "completed_at":
			if v == nil {
				stored.CompletedAt = nil
			} else {
				t := v.(time.Time)
				stored.CompletedAt = &t
			}
		case "approver_id":
			if v == nil {
				stored.ApproverID = nil
			} else {
				id := v.(string)
				stored.ApproverID = &id
			}
		case "approved_at":
			if v == nil {
				stored.ApprovedAt = nil
			} else {
				t := v.(time.Time)
				stored.ApprovedAt = &t
			}
		case "report_content":
			if v == nil {
				stored.ReportContent = nil
			} else {
				content := v.(string)
				stored.ReportContent = &content
			}
		}
	}
	stored.Version++
	wo.Version = stored.Version
	return nil
}

// ── Mock WorkOrderStatusLogRepository ──

type mockStatusLogRepo struct {
	logs []model.WorkOrderStatusLog
}

func newMockStatusLogRepo() *mockStatusLogRepo {
	return &mockStatusLogRepo{}
}

func (m *mockStatusLogRepo) Create(_ context.Context, log *model.WorkOrderStatusLog) error {
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockStatusLogRepo) ListByWorkOrder(_ context.Context, workOrderID string, _, _ int) ([]model.WorkOrderStatusLog, int64, error) {
	var result []model.WorkOrderStatusLog
	for _, l := range m.logs {
		if l.WorkOrderID == workOrderID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock PerformanceSummaryRepository ──

type mockPerfSummaryRepo struct {
	rows []model.PerformanceSummary
}

func newMockPerfSummaryRepo() *mockPerfSummaryRepo {
	return &mockPerfSummaryRepo{}
}

func (m *mockPerfSummaryRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]model.PerformanceSummary, error) {
	var result []model.PerformanceSummary
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.SummaryDate.Format("2006-01-02") == date.Format("2006-01-02") {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockPerfSummaryRepo) ListByEmployeeAndMonth(_ context.Context, employeeID string, year int, month time.Month) ([]model.PerformanceSummary, error) {
	var result []model.PerformanceSummary
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.SummaryDate.Year() == year && r.SummaryDate.Month() == month {
			result = append(result, r)
		}
	}
	return result, nil
}

// ── 公共测试装配 ──

func newMockRepository() *repository.Repository {
	return &repository.Repository{
		Technician:  newMockTechnicianRepo(),
		Shift:       newMockShiftRepo(),
		Job:         newMockJobRepo(),
		Task:        newMockTaskRepo(),
		WorkOrder:   newMockWorkOrderRepo(),
		StatusLog:   newMockStatusLogRepo(),
		PerfSummary: newMockPerfSummaryRepo(),
	}
}
