package service

import (
	"context"
	"errors"
	"testing"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/model"
)

func setupTestTimelineService() (*testEnv, TimelineService) {
	env := newTestEnv()
	return env, NewTimelineService(env.repo, env.semesterService(), env.logger)
}

func timelineQuery(at string, courses bool) dto.TimelineQuery {
	q := dto.TimelineQuery{IncludeCourses: courses}
	q.At = at
	return q
}

func TestTimelineService_WorkerWeek_LanesAcrossAssignments(t *testing.T) {
	env, svc := setupTestTimelineService()
	id := env.seedWorker("Alice", day("2024-01-10"), nil,
		model.Assignment{Title: "A", Blocks: []model.AssignmentBlock{block("M", "09:00", "12:00")}},
		model.Assignment{Title: "B", Blocks: []model.AssignmentBlock{block("M", "10:00", "11:00"), block("M", "12:00", "13:00")}},
	)

	resp, err := svc.WorkerWeek(context.Background(), id, timelineQuery("2024-03-01", false))
	if err != nil {
		t.Fatalf("WorkerWeek 应成功: %v", err)
	}
	if len(resp.Days) != 5 {
		t.Fatalf("无周末块时只返回周一至周五，实际 %d 天", len(resp.Days))
	}
	monday := resp.Days[0].Entries
	if len(monday) != 3 {
		t.Fatalf("周一应有 3 个条目，实际 %d", len(monday))
	}
	// 09-12 与 10-11 重叠：两条泳道；12-13 与 09-12 相接，开启新簇
	if monday[0].Lane != 0 || monday[0].LaneCount != 2 || monday[1].Lane != 1 {
		t.Errorf("重叠块泳道分配不符: %+v", monday[:2])
	}
	if monday[2].LaneCount != 1 || monday[2].Cluster == monday[0].Cluster {
		t.Errorf("相接块应位于新簇: %+v", monday[2])
	}
	if monday[1].Width != 50 || monday[1].Left != 50 {
		t.Errorf("几何位置不符: width=%v left=%v", monday[1].Width, monday[1].Left)
	}
}

func TestTimelineService_WorkerWeek_CoursesOnWeekend(t *testing.T) {
	env, svc := setupTestTimelineService()
	id := env.seedWorker("Alice", day("2024-01-10"), nil,
		model.Assignment{Title: "A", Blocks: []model.AssignmentBlock{block("M", "09:00", "12:00")}},
	)
	_ = env.courses.Create(context.Background(), &model.CourseSchedule{
		WorkerID: id, CourseName: "CS 101", Day: "S", StartTime: "18:00", EndTime: "20:00", Source: "manual",
	})

	resp, err := svc.WorkerWeek(context.Background(), id, timelineQuery("2024-03-01", true))
	if err != nil {
		t.Fatalf("WorkerWeek 应成功: %v", err)
	}
	if len(resp.Days) != 6 || resp.Days[5].Day != "S" {
		t.Fatalf("周六有课表时应返回周六，实际 %+v", resp.Days)
	}
	if e := resp.Days[5].Entries[0]; e.Kind != "course" || e.Status != nil || e.Title != "CS 101" {
		t.Errorf("课表条目不符: %+v", e)
	}
}

func TestTimelineService_WorkerWeek_ActiveOnly(t *testing.T) {
	env, svc := setupTestTimelineService()
	id := env.seedWorker("Alice", day("2024-01-10"), nil,
		model.Assignment{Title: "Old", EndDate: day("2024-02-01"), Blocks: []model.AssignmentBlock{block("T", "09:00", "10:00")}},
		model.Assignment{Title: "New", Blocks: []model.AssignmentBlock{block("T", "09:00", "10:00")}},
	)

	q := timelineQuery("2024-03-01", false)
	q.ActiveOnly = true
	resp, err := svc.WorkerWeek(context.Background(), id, q)
	if err != nil {
		t.Fatalf("WorkerWeek 应成功: %v", err)
	}
	tuesday := resp.Days[1].Entries
	if len(tuesday) != 1 || tuesday[0].Title != "New" {
		t.Errorf("只应包含进行中任务: %+v", tuesday)
	}
}

func TestTimelineService_DepartmentDay(t *testing.T) {
	env, svc := setupTestTimelineService()
	env.seedWorker("Alice", day("2024-01-10"), nil,
		model.Assignment{Title: "Desk", Blocks: []model.AssignmentBlock{block("W", "09:00", "12:00"), block("R", "09:00", "12:00")}},
	)
	env.seedWorker("Bob", day("2024-01-10"), nil,
		model.Assignment{Title: "Lab", Blocks: []model.AssignmentBlock{block("W", "11:00", "13:00")}},
	)
	env.seedWorker("Carol", day("2030-01-10"), nil,
		model.Assignment{Title: "Future", Blocks: []model.AssignmentBlock{block("W", "09:00", "10:00")}},
	)

	resp, err := svc.DepartmentDay(context.Background(), "Wednesday", "", timelineQuery("2024-03-01", false))
	if err != nil {
		t.Fatalf("DepartmentDay 应成功: %v", err)
	}
	if resp.Day != "W" || len(resp.Entries) != 2 {
		t.Fatalf("期望周三 2 个条目，实际 %+v", resp.Entries)
	}
	if resp.Entries[0].WorkerName != "Alice" || resp.Entries[1].Lane != 1 {
		t.Errorf("泳道分配不符: %+v", resp.Entries)
	}
}

func TestTimelineService_DepartmentDay_InvalidDay(t *testing.T) {
	_, svc := setupTestTimelineService()

	_, err := svc.DepartmentDay(context.Background(), "funday", "", timelineQuery("", false))
	if !errors.Is(err, ErrDayInvalid) {
		t.Errorf("期望 ErrDayInvalid，实际: %v", err)
	}
}
