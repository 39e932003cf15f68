package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/dto"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/model"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/repository"
)

func setupTestTaskService() (TaskService, *repository.Repository) {
	repo := newMockRepository()
	seedTechnician(repo, "E001", "张伟", true)
	seedTechnician(repo, "E002", "李强", true)
	svc := NewTaskService(testConfig(), repo, zap.NewNop())
	return svc, repo
}

func TestTaskService_Create_Routine(t *testing.T) {
	svc, _ := setupTestTaskService()

	result, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "季度润滑保养",
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Kind != model.TaskKindRoutine {
		t.Errorf("默认类型应为常规保养，实际 %s", result.Kind)
	}
	if result.Assignee != nil {
		t.Error("未指派的任务不应有执行人")
	}
}

func TestTaskService_Create_AnalysisRequiresSource(t *testing.T) {
	svc, repo := setupTestTaskService()

	_, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-01",
		InterventionType: "停机分析",
		Description:      "待分析",
		Kind:             model.TaskKindAnalysis,
	}, "S001")
	if !errors.Is(err, ErrTaskSourceRequired) {
		t.Fatalf("期望 ErrTaskSourceRequired，实际: %v", err)
	}

	// 携带源记录则冻结停机时长
	job := seedCompletedJob(repo, "20250110-0001", 90)
	srcID := job.JobID
	result, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-01",
		InterventionType: "停机分析",
		Description:      "待分析",
		Kind:             model.TaskKindAnalysis,
		SourceJobID:      &srcID,
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.SourceDowntime == nil || *result.SourceDowntime != 90 {
		t.Errorf("应冻结源记录停机时长快照，实际 %+v", result.SourceDowntime)
	}
}

func TestTaskService_Create_AssigneeFromDirectory(t *testing.T) {
	svc, _ := setupTestTaskService()

	assignee := "E001"
	result, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "x",
		AssigneeID:       &assignee,
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Assignee == nil || result.Assignee.Name != "张伟" {
		t.Errorf("执行人姓名应取自目录，实际 %+v", result.Assignee)
	}

	unknown := "E999"
	_, err = svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "x",
		AssigneeID:       &unknown,
	}, "S001")
	if !errors.Is(err, ErrTechnicianNotFound) {
		t.Errorf("期望 ErrTechnicianNotFound，实际: %v", err)
	}
}

func TestTaskService_Convert_Routine(t *testing.T) {
	svc, repo := setupTestTaskService()

	created, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "季度润滑保养",
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	wo, err := svc.Convert(context.Background(), created.ID, &dto.ConvertTaskRequest{},
		Actor{EmployeeID: "S001", Role: model.RoleScheduler})
	if err != nil {
		t.Fatalf("Convert 应成功: %v", err)
	}
	if wo.Category != model.WorkOrderCategoryGeneral {
		t.Errorf("常规任务应生成普通工单，实际 %s", wo.Category)
	}
	if wo.Priority != model.WorkOrderPriorityNormal {
		t.Errorf("默认优先级应为 NORMAL，实际 %s", wo.Priority)
	}
	if wo.Status != model.WorkOrderStatusPending {
		t.Errorf("无执行人应为 PENDING，实际 %s", wo.Status)
	}
	if wo.EstimatedMinutes != 60 {
		t.Errorf("无来源时长应回落到默认 60 分钟，实际 %d", wo.EstimatedMinutes)
	}

	// 转换后任务移除
	if _, err := repo.Task.GetByID(context.Background(), created.ID); err == nil {
		t.Error("转换后任务应被删除")
	}
}

func TestTaskService_Convert_AnalysisDefaults(t *testing.T) {
	svc, repo := setupTestTaskService()

	job := seedCompletedJob(repo, "20250110-0001", 90)
	srcID := job.JobID
	assignee := "E002"
	created, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-01",
		InterventionType: "停机分析",
		Description:      "待分析",
		Kind:             model.TaskKindAnalysis,
		SourceJobID:      &srcID,
		AssigneeID:       &assignee,
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	wo, err := svc.Convert(context.Background(), created.ID, &dto.ConvertTaskRequest{},
		Actor{EmployeeID: "S001", Role: model.RoleScheduler})
	if err != nil {
		t.Fatalf("Convert 应成功: %v", err)
	}
	if wo.Category != model.WorkOrderCategoryDowntimeAnalysis {
		t.Errorf("分析任务应生成停机分析工单，实际 %s", wo.Category)
	}
	if wo.Priority != model.WorkOrderPriorityHigh {
		t.Errorf("分析工单默认优先级应为 HIGH，实际 %s", wo.Priority)
	}
	if wo.Status != model.WorkOrderStatusAssigned {
		t.Errorf("带执行人的任务转换后应为 ASSIGNED，实际 %s", wo.Status)
	}
	if wo.EstimatedMinutes != 90 {
		t.Errorf("预估时长应取源记录停机时长，实际 %d", wo.EstimatedMinutes)
	}
}

func TestTaskService_Convert_OnceOnly(t *testing.T) {
	svc, repo := setupTestTaskService()

	created, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "x",
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 模拟已转换的任务
	task, _ := repo.Task.GetByID(context.Background(), created.ID)
	woID := "wo-001"
	task.WorkOrderID = &woID

	_, err = svc.Convert(context.Background(), created.ID, &dto.ConvertTaskRequest{},
		Actor{EmployeeID: "S001", Role: model.RoleScheduler})
	if !errors.Is(err, ErrTaskConverted) {
		t.Errorf("期望 ErrTaskConverted，实际: %v", err)
	}
}

func TestTaskService_Update_BlockedAfterConvert(t *testing.T) {
	svc, repo := setupTestTaskService()

	created, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "x",
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	task, _ := repo.Task.GetByID(context.Background(), created.ID)
	woID := "wo-001"
	task.WorkOrderID = &woID

	desc := "改描述"
	_, err = svc.Update(context.Background(), created.ID, &dto.UpdateTaskRequest{Description: &desc}, "S001")
	if !errors.Is(err, ErrTaskConverted) {
		t.Errorf("期望 ErrTaskConverted，实际: %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	svc, repo := setupTestTaskService()

	created, err := svc.Create(context.Background(), &dto.CreateTaskRequest{
		MachineCode:      "CNC-02",
		InterventionType: "预防保养",
		Description:      "x",
	}, "S001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "S001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := repo.Task.GetByID(context.Background(), created.ID); err == nil {
		t.Error("删除后任务不应存在")
	}

	if err := svc.Delete(context.Background(), "task-999", "S001"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("期望 ErrTaskNotFound，实际: %v", err)
	}
}
