package service

import (
	"context"
	"errors"
	"testing"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestWorkerService() (*testEnv, WorkerService) {
	env := newTestEnv()
	svc := NewWorkerService(env.repo, env.semesterService(), env.cache, env.cfg, env.logger)
	return env, svc
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// seedPayroll 8 小时 × $12.50 + 5 小时 × 10.00
func seedPayroll(env *testEnv) string {
	return env.seedWorker("Alice", day("2024-01-10"), nil,
		model.Assignment{
			Title:      "Front desk",
			HourlyRate: "$12.50",
			Blocks:     []model.AssignmentBlock{block("M", "09:00", "13:00"), block("W", "09:00", "13:00")},
		},
		model.Assignment{
			Title:      "Lab monitor",
			HourlyRate: "10.00",
			EndDate:    day("2024-02-01"),
			Blocks:     []model.AssignmentBlock{block("F", "12:00", "17:00")},
		},
	)
}

// ── Create 测试 ──

func TestWorkerService_Create_DefaultsActive(t *testing.T) {
	_, svc := setupTestWorkerService()

	result, err := svc.Create(context.Background(), &dto.CreateWorkerRequest{Name: " Bob ", StartDate: strPtr("2024-01-10")}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "Bob" {
		t.Errorf("期望Name=Bob，实际=%q", result.Name)
	}
	if !result.IsActive {
		t.Error("未指定 is_active 时应默认启用")
	}
	if result.Version != 1 {
		t.Errorf("期望Version=1，实际=%d", result.Version)
	}
}

func TestWorkerService_Create_InvalidDates(t *testing.T) {
	_, svc := setupTestWorkerService()

	cases := []*dto.CreateWorkerRequest{
		{Name: "Bob", StartDate: strPtr("not-a-date")},
		{Name: "Bob", StartDate: strPtr("2024-05-01"), EndDate: strPtr("2024-01-01")},
	}
	for _, req := range cases {
		if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrWorkerDateInvalid) {
			t.Errorf("期望 ErrWorkerDateInvalid，实际: %v", err)
		}
	}
}

// ── Summary 测试 ──

func TestWorkerService_Summary_PayAndStatus(t *testing.T) {
	env, svc := setupTestWorkerService()
	id := seedPayroll(env)

	summary, err := svc.Summary(context.Background(), id, dto.ReferenceQuery{At: "2024-03-01"})
	if err != nil {
		t.Fatalf("Summary 应成功: %v", err)
	}
	if summary.Totals.WeeklyHours != 13 {
		t.Errorf("期望周工时=13，实际=%v", summary.Totals.WeeklyHours)
	}
	if summary.Totals.WeeklyPay != 150 {
		t.Errorf("期望周薪=150.00，实际=%v", summary.Totals.WeeklyPay)
	}
	if summary.ActiveTotals.WeeklyPay != 100 {
		t.Errorf("期望进行中周薪=100.00，实际=%v", summary.ActiveTotals.WeeklyPay)
	}
	if summary.Status != lifecycle.Partial {
		t.Errorf("期望状态=partial，实际=%s", summary.Status)
	}
	if len(summary.Assignments) != 2 || summary.Assignments[1].Status != lifecycle.Ended {
		t.Fatalf("期望第二个任务已结束，实际 %+v", summary.Assignments)
	}
	if got := summary.Assignments[0].Blocks; len(got) != 2 || got[0] != "M 09:00-13:00" {
		t.Errorf("时间块格式不符: %v", got)
	}
}

func TestWorkerService_Summary_CachedUntilInvalidated(t *testing.T) {
	env, svc := setupTestWorkerService()
	id := seedPayroll(env)
	q := dto.ReferenceQuery{At: "2024-03-01"}

	if _, err := svc.Summary(context.Background(), id, q); err != nil {
		t.Fatalf("Summary 应成功: %v", err)
	}
	if _, err := svc.Summary(context.Background(), id, q); err != nil {
		t.Fatalf("Summary 应成功: %v", err)
	}
	if env.cache.hits != 1 {
		t.Errorf("第二次查询应命中缓存，hits=%d", env.cache.hits)
	}

	_, err := svc.Update(context.Background(), id, &dto.UpdateWorkerRequest{Notes: strPtr("x"), Version: 1}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if len(env.cache.entries) != 0 {
		t.Error("更新人员后缓存应失效")
	}
}

func TestWorkerService_Summary_NotFound(t *testing.T) {
	_, svc := setupTestWorkerService()

	_, err := svc.Summary(context.Background(), "nope", dto.ReferenceQuery{At: "2024-03-01"})
	if !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("期望 ErrWorkerNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestWorkerService_List_FilterByStatus(t *testing.T) {
	env, svc := setupTestWorkerService()
	seedPayroll(env)
	env.seedWorker("Carol", day("2030-01-01"), nil)
	env.seedWorker("Dave", day("2023-01-01"), day("2023-06-01"))

	req := &dto.WorkerListRequest{Status: "upcoming"}
	req.At = "2024-03-01"
	list, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Name != "Carol" {
		t.Errorf("期望只返回 Carol，实际 total=%d list=%+v", total, list)
	}
}

func TestWorkerService_List_InactiveFlag(t *testing.T) {
	env, svc := setupTestWorkerService()
	seedPayroll(env)
	id := env.seedWorker("Erin", day("2024-01-01"), nil)
	env.workers.workers[id].IsActive = false

	req := &dto.WorkerListRequest{Active: boolPtr(false)}
	req.At = "2024-03-01"
	list, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || list[0].Status != lifecycle.Inactive {
		t.Errorf("停用人员状态应为 inactive，实际 %+v", list)
	}
}

// ── Update / Delete 测试 ──

func TestWorkerService_Update_VersionConflict(t *testing.T) {
	env, svc := setupTestWorkerService()
	id := seedPayroll(env)

	_, err := svc.Update(context.Background(), id, &dto.UpdateWorkerRequest{Name: strPtr("A"), Version: 7}, "admin-001")
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("期望 ErrVersionConflict，实际: %v", err)
	}
}

func TestWorkerService_Update_ClearEndDate(t *testing.T) {
	env, svc := setupTestWorkerService()
	id := env.seedWorker("Dave", day("2023-01-01"), day("2023-06-01"))

	result, err := svc.Update(context.Background(), id, &dto.UpdateWorkerRequest{EndDate: strPtr(""), Version: 1}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.EndDate != "" || result.Version != 2 {
		t.Errorf("期望清除结束日期且版本递增，实际 %+v", result)
	}
}

func TestWorkerService_Delete(t *testing.T) {
	env, svc := setupTestWorkerService()
	id := seedPayroll(env)

	if err := svc.Delete(context.Background(), id, "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(env.assignments.assignments) != 0 {
		t.Error("删除人员应同时删除其任务")
	}
	if err := svc.Delete(context.Background(), id, "admin-001"); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("重复删除期望 ErrWorkerNotFound，实际: %v", err)
	}
}
