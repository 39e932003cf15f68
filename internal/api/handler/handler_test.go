package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/service"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock JobService ──

type mockJobService struct {
	createResult *dto.JobResponse
	createErr    error
	getResult    *dto.JobResponse
	getErr       error
	listResult   []dto.JobResponse
	listTotal    int64
	listErr      error
	updateResult *dto.JobResponse
	updateErr    error
}

func (m *mockJobService) Create(_ context.Context, _ *dto.CreateJobRequest, _ service.Actor) (*dto.JobResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockJobService) Get(_ context.Context, _ string) (*dto.JobResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockJobService) List(_ context.Context, _ *dto.JobListRequest) ([]dto.JobResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockJobService) Update(_ context.Context, _ string, _ *dto.UpdateJobRequest, _ string) (*dto.JobResponse, error) {
	return m.updateResult, m.updateErr
}

// ── Mock EscalationService ──

type mockEscalationService struct {
	escalateResult *dto.EscalateJobResponse
	escalateErr    error
}

func (m *mockEscalationService) Escalate(_ context.Context, _ string, _ *dto.EscalateJobRequest, _ service.Actor) (*dto.EscalateJobResponse, error) {
	return m.escalateResult, m.escalateErr
}

// ── Mock WorkOrderService ──

type mockWorkOrderService struct {
	createResult     *dto.WorkOrderResponse
	createErr        error
	getResult        *dto.WorkOrderResponse
	getErr           error
	listResult       []dto.WorkOrderResponse
	listTotal        int64
	listErr          error
	transitionResult *dto.WorkOrderResponse
	transitionErr    error
	reopenResult     *dto.WorkOrderResponse
	reopenErr        error
	reportResult     *dto.WorkOrderReportResponse
	reportErr        error
	clearResult      *dto.WorkOrderResponse
	clearErr         error
	statusLogsResult []dto.WorkOrderStatusLogResponse
	statusLogsTotal  int64
	statusLogsErr    error
}

func (m *mockWorkOrderService) Create(_ context.Context, _ *dto.CreateWorkOrderRequest, _ service.Actor) (*dto.WorkOrderResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockWorkOrderService) Get(_ context.Context, _ string) (*dto.WorkOrderResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockWorkOrderService) List(_ context.Context, _ *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockWorkOrderService) Transition(_ context.Context, _ string, _ *dto.TransitionWorkOrderRequest, _ service.Actor) (*dto.WorkOrderResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockWorkOrderService) Reopen(_ context.Context, _ string, _ *dto.ReopenWorkOrderRequest, _ service.Actor) (*dto.WorkOrderResponse, error) {
	return m.reopenResult, m.reopenErr
}
func (m *mockWorkOrderService) GetReport(_ context.Context, _ string) (*dto.WorkOrderReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockWorkOrderService) ClearReport(_ context.Context, _ string, _ service.Actor) (*dto.WorkOrderResponse, error) {
	return m.clearResult, m.clearErr
}
func (m *mockWorkOrderService) ListStatusLogs(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.WorkOrderStatusLogResponse, int64, error) {
	return m.statusLogsResult, m.statusLogsTotal, m.statusLogsErr
}

// ── Mock TaskService ──

type mockTaskService struct {
	createResult  *dto.TaskResponse
	createErr     error
	getResult     *dto.TaskResponse
	getErr        error
	listResult    []dto.TaskResponse
	listTotal     int64
	listErr       error
	updateResult  *dto.TaskResponse
	updateErr     error
	deleteErr     error
	convertResult *dto.WorkOrderResponse
	convertErr    error
}

func (m *mockTaskService) Create(_ context.Context, _ *dto.CreateTaskRequest, _ string) (*dto.TaskResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockTaskService) Get(_ context.Context, _ string) (*dto.TaskResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTaskService) List(_ context.Context, _ *dto.TaskListRequest) ([]dto.TaskResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockTaskService) Update(_ context.Context, _ string, _ *dto.UpdateTaskRequest, _ string) (*dto.TaskResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockTaskService) Delete(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}
func (m *mockTaskService) Convert(_ context.Context, _ string, _ *dto.ConvertTaskRequest, _ service.Actor) (*dto.WorkOrderResponse, error) {
	return m.convertResult, m.convertErr
}

// ── Mock PerformanceService ──

type mockPerformanceService struct {
	summaryResult *dto.PerformanceSummaryResponse
	summaryErr    error
}

func (m *mockPerformanceService) Summary(_ context.Context, _ *dto.PerformanceRequest) (*dto.PerformanceSummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("employee_id", "E001")
	c.Set("role", "manager")
	c.Set("department", "维修一部")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func validCreateJobBody() dto.CreateJobRequest {
	return dto.CreateJobRequest{
		Date:             "2025-01-10",
		ShiftText:        "2班 (08:30-16:30)",
		MachineCode:      "CNC-01",
		InterventionType: "机械维修",
		StartTime:        "08:00",
		EndTime:          "09:00",
		Description:      "更换主轴轴承",
		Technicians: []dto.JobTechnicianEntry{
			{EmployeeID: "E001", Name: "张伟", Department: "维修一部"},
		},
	}
}

// ═══════════════════════════════════════════════════════════
// JobHandler Tests
// ═══════════════════════════════════════════════════════════

func TestJobHandler_Create_Success(t *testing.T) {
	mock := &mockJobService{
		createResult: &dto.JobResponse{ID: "20250110-0001", DurationMinutes: 60},
	}
	h := NewJobHandler(mock, &mockEscalationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", jsonBody(validCreateJobBody()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestJobHandler_Create_BadJSON(t *testing.T) {
	h := NewJobHandler(&mockJobService{}, &mockEscalationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestJobHandler_Create_Conflict(t *testing.T) {
	mock := &mockJobService{
		createErr: &service.ConflictError{
			EmployeeID: "E001",
			JobID:      "20250110-0001",
			StartTime:  "08:00",
			EndTime:    "09:00",
		},
	}
	h := NewJobHandler(mock, &mockEscalationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", jsonBody(validCreateJobBody()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13102 {
		t.Errorf("expected error code 13102, got %d", resp.Code)
	}
	if resp.Details == "" {
		t.Error("expected conflict details to carry the conflicting job")
	}
}

func TestJobHandler_Create_CrossDepartmentForbidden(t *testing.T) {
	mock := &mockJobService{createErr: service.ErrJobCrossDepartment}
	h := NewJobHandler(mock, &mockEscalationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs", jsonBody(validCreateJobBody()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs", func(c *gin.Context) {
		setAuth(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13109 {
		t.Errorf("expected error code 13109, got %d", resp.Code)
	}
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	mock := &mockJobService{getErr: service.ErrJobNotFound}
	h := NewJobHandler(mock, &mockEscalationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/jobs/20250110-0001", nil)

	r := gin.New()
	r.GET("/jobs/:id", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestJobHandler_Escalate_AlreadyEscalated(t *testing.T) {
	mock := &mockEscalationService{escalateErr: service.ErrAlreadyEscalated}
	h := NewJobHandler(&mockJobService{}, mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs/20250110-0001/escalate", jsonBody(dto.EscalateJobRequest{
		AssigneeEmployeeID: "E002",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs/:id/escalate", func(c *gin.Context) {
		setAuth(c)
		h.Escalate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13107 {
		t.Errorf("expected error code 13107, got %d", resp.Code)
	}
}

func TestJobHandler_Escalate_NotEscalatable(t *testing.T) {
	mock := &mockEscalationService{escalateErr: service.ErrNotEscalatable}
	h := NewJobHandler(&mockJobService{}, mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/jobs/20250110-0001/escalate", jsonBody(dto.EscalateJobRequest{
		AssigneeEmployeeID: "E002",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/jobs/:id/escalate", func(c *gin.Context) {
		setAuth(c)
		h.Escalate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// WorkOrderHandler Tests
// ═══════════════════════════════════════════════════════════

func TestWorkOrderHandler_Transition_Success(t *testing.T) {
	mock := &mockWorkOrderService{
		transitionResult: &dto.WorkOrderResponse{ID: "wo-001", Status: "IN_PROGRESS"},
	}
	h := NewWorkOrderHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/work-orders/wo-001/transition", jsonBody(dto.TransitionWorkOrderRequest{
		TargetStatus: "IN_PROGRESS",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/work-orders/:id/transition", func(c *gin.Context) {
		setAuth(c)
		h.Transition(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestWorkOrderHandler_Transition_InvalidPair(t *testing.T) {
	mock := &mockWorkOrderService{
		transitionErr: &service.TransitionError{From: "PENDING", To: "COMPLETED"},
	}
	h := NewWorkOrderHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/work-orders/wo-001/transition", jsonBody(dto.TransitionWorkOrderRequest{
		TargetStatus: "COMPLETED",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/work-orders/:id/transition", func(c *gin.Context) {
		setAuth(c)
		h.Transition(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15102 {
		t.Errorf("expected error code 15102, got %d", resp.Code)
	}
}

func TestWorkOrderHandler_Transition_Forbidden(t *testing.T) {
	mock := &mockWorkOrderService{transitionErr: service.ErrWorkOrderForbidden}
	h := NewWorkOrderHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/work-orders/wo-001/transition", jsonBody(dto.TransitionWorkOrderRequest{
		TargetStatus: "CANCELLED",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/work-orders/:id/transition", func(c *gin.Context) {
		setAuth(c)
		h.Transition(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestWorkOrderHandler_Transition_Unauthenticated(t *testing.T) {
	h := NewWorkOrderHandler(&mockWorkOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/work-orders/wo-001/transition", jsonBody(dto.TransitionWorkOrderRequest{
		TargetStatus: "CANCELLED",
	}))
	req.Header.Set("Content-Type", "application/json")

	// 不注入认证上下文
	r := gin.New()
	r.POST("/work-orders/:id/transition", h.Transition)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestWorkOrderHandler_ClearReport_NoReport(t *testing.T) {
	mock := &mockWorkOrderService{clearErr: service.ErrReportNotFound}
	h := NewWorkOrderHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/work-orders/wo-001/report", nil)

	r := gin.New()
	r.DELETE("/work-orders/:id/report", func(c *gin.Context) {
		setAuth(c)
		h.ClearReport(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TaskHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTaskHandler_Convert_AlreadyConverted(t *testing.T) {
	mock := &mockTaskService{convertErr: service.ErrTaskConverted}
	h := NewTaskHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tasks/task-001/convert", jsonBody(dto.ConvertTaskRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/tasks/:id/convert", func(c *gin.Context) {
		setAuth(c)
		h.Convert(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14102 {
		t.Errorf("expected error code 14102, got %d", resp.Code)
	}
}

func TestTaskHandler_Convert_Success(t *testing.T) {
	mock := &mockTaskService{
		convertResult: &dto.WorkOrderResponse{ID: "wo-001", Number: "WO-20250110-001"},
	}
	h := NewTaskHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tasks/task-001/convert", jsonBody(dto.ConvertTaskRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/tasks/:id/convert", func(c *gin.Context) {
		setAuth(c)
		h.Convert(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PerformanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPerformanceHandler_Summary_Success(t *testing.T) {
	mock := &mockPerformanceService{
		summaryResult: &dto.PerformanceSummaryResponse{
			EmployeeID:      "E001",
			Period:          "2025-01-10",
			CompletedOrders: 3,
		},
	}
	h := NewPerformanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/performance/summary?employee_id=E001&date=2025-01-10", nil)

	r := gin.New()
	r.GET("/performance/summary", h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPerformanceHandler_Summary_PeriodRequired(t *testing.T) {
	mock := &mockPerformanceService{summaryErr: service.ErrPerfPeriodRequired}
	h := NewPerformanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/performance/summary?employee_id=E001", nil)

	r := gin.New()
	r.GET("/performance/summary", h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16102 {
		t.Errorf("expected error code 16102, got %d", resp.Code)
	}
}
