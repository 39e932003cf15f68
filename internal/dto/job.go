package dto

// ── 完工记录模块 DTO ──

// JobTechnicianEntry 提交完工记录时的技工条目
type JobTechnicianEntry struct {
	EmployeeID string `json:"employee_id" binding:"required,max=20"`
	Name       string `json:"name"        binding:"required,max=100"`
	Department string `json:"department"  binding:"required,max=100"`
}

// CreateJobRequest 提交完工记录请求
type CreateJobRequest struct {
	Date             string               `json:"date"              binding:"required,datetime=2006-01-02"`
	ShiftText        string               `json:"shift_text"        binding:"required,max=100"`
	MachineCode      string               `json:"machine_code"      binding:"required,max=50"`
	InterventionType string               `json:"intervention_type" binding:"required,max=50"`
	StartTime        string               `json:"start_time"        binding:"required,len=5"`
	EndTime          string               `json:"end_time"          binding:"required,len=5"`
	Description      string               `json:"description"       binding:"required"`
	MaterialNotes    string               `json:"material_notes"`
	Technicians      []JobTechnicianEntry `json:"technicians"       binding:"required,min=1,dive"`
}

// UpdateJobRequest 经理修正完工记录请求（全量编辑）
type UpdateJobRequest struct {
	Date             *string               `json:"date"              binding:"omitempty,datetime=2006-01-02"`
	ShiftText        *string               `json:"shift_text"        binding:"omitempty,max=100"`
	MachineCode      *string               `json:"machine_code"      binding:"omitempty,max=50"`
	InterventionType *string               `json:"intervention_type" binding:"omitempty,max=50"`
	StartTime        *string               `json:"start_time"        binding:"omitempty,len=5"`
	EndTime          *string               `json:"end_time"          binding:"omitempty,len=5"`
	Description      *string               `json:"description"`
	MaterialNotes    *string               `json:"material_notes"`
	Technicians      []JobTechnicianEntry  `json:"technicians"       binding:"omitempty,min=1,dive"`
}

// JobListRequest 完工记录列表查询参数
type JobListRequest struct {
	PaginationRequest
	EmployeeID  string `form:"employee_id"  binding:"omitempty,max=20"`
	From        string `form:"from"         binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to"           binding:"omitempty,datetime=2006-01-02"`
	MachineCode string `form:"machine_code" binding:"omitempty,max=50"`
}

// JobResponse 完工记录响应
type JobResponse struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	ShiftText        string            `json:"shift_text"`
	Shift            *ShiftBrief       `json:"shift,omitempty"`
	MachineCode      string            `json:"machine_code"`
	InterventionType string            `json:"intervention_type"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	DurationMinutes  int               `json:"duration_minutes"`
	Description      string            `json:"description"`
	MaterialNotes    string            `json:"material_notes,omitempty"`
	Technicians      []TechnicianBrief `json:"technicians"`
	Analysis         *JobAnalysisInfo  `json:"analysis,omitempty"`
	Escalatable      bool              `json:"escalatable"` // 停机超阈值且尚未升级
	CreatedAt        string            `json:"created_at"`
}

// JobAnalysisInfo 完工记录的分析指派信息
type JobAnalysisInfo struct {
	AssigneeID      string `json:"assignee_id"`
	AssigneeName    string `json:"assignee_name"`
	WorkOrderID     string `json:"work_order_id"`
	WorkOrderNumber string `json:"work_order_number"`
	AssignedAt      string `json:"assigned_at"`
}

// EscalateJobRequest 超长停机升级请求
type EscalateJobRequest struct {
	AssigneeEmployeeID string `json:"assignee_employee_id" binding:"required,max=20"`
	Note               string `json:"note"                 binding:"omitempty,max=500"`
}

// EscalateJobResponse 升级结果
type EscalateJobResponse struct {
	WorkOrderID     string `json:"work_order_id"`
	WorkOrderNumber string `json:"work_order_number"`
}

// [自证通过] internal/dto/job.go
