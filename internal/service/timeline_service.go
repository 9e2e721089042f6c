package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/repository"
	"faculty-schedules/backend/internal/roster"
	"faculty-schedules/backend/internal/timeblock"
)

// ── 时间轴模块业务错误 ──

var ErrDayInvalid = errors.New("星期参数无效")

const (
	entryAssignment = "assignment"
	entryCourse     = "course"
)

// timelineItem 待布局的条目及其时间块
type timelineItem struct {
	block timeblock.Block
	entry dto.TimelineEntry
}

// TimelineService 时间轴视图
//
// 任务块与课表块一起参与泳道布局，课表块只读，可能落在周末或可编辑时段之外。
type TimelineService interface {
	// WorkerWeek 单个人员的一周；周一至周五总是返回，周末仅在有块时返回
	WorkerWeek(ctx context.Context, workerID string, q dto.TimelineQuery) (*dto.WeekTimelineResponse, error)
	// DepartmentDay 全部启用人员在某一天的时间轴，只包含参考点下进行中的任务
	DepartmentDay(ctx context.Context, day, department string, q dto.TimelineQuery) (*dto.DayTimelineResponse, error)
}

type timelineService struct {
	repo      *repository.Repository
	semesters SemesterService
	logger    *zap.Logger
}

// NewTimelineService 创建 TimelineService 实例
func NewTimelineService(repo *repository.Repository, semesters SemesterService, logger *zap.Logger) TimelineService {
	return &timelineService{repo: repo, semesters: semesters, logger: logger}
}

// ────────────────────── WorkerWeek ──────────────────────

func (s *timelineService) WorkerWeek(ctx context.Context, workerID string, q dto.TimelineQuery) (*dto.WeekTimelineResponse, error) {
	ref, info, err := s.semesters.ResolveReference(ctx, q.ReferenceQuery)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Worker.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询人员失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	w := toRosterWorker(m)

	entries := assignmentEntries(w, ref, q.ActiveOnly, nil)
	if q.IncludeCourses {
		courses, err := s.courses(ctx, []string{workerID}, info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, courseEntries(courses, nil, nil)...)
	}

	resp := &dto.WeekTimelineResponse{
		WorkerID:  w.ID,
		Name:      w.Name,
		Status:    w.Status(ref),
		Reference: info,
	}
	byDay := layoutEntries(entries)
	for _, d := range timeblock.AllDays {
		if !d.Editable() && len(byDay[d]) == 0 {
			continue
		}
		resp.Days = append(resp.Days, dto.TimelineDay{Day: d.Code(), Name: d.String(), Entries: nonNil(byDay[d])})
	}
	return resp, nil
}

// ────────────────────── DepartmentDay ──────────────────────

func (s *timelineService) DepartmentDay(ctx context.Context, dayCode, department string, q dto.TimelineQuery) (*dto.DayTimelineResponse, error) {
	day, ok := timeblock.ParseDay(dayCode)
	if !ok {
		return nil, ErrDayInvalid
	}
	ref, info, err := s.semesters.ResolveReference(ctx, q.ReferenceQuery)
	if err != nil {
		return nil, err
	}

	active := true
	workers, _, err := s.repo.Worker.List(ctx, repository.WorkerFilter{Active: &active, Department: department})
	if err != nil {
		s.logger.Error("查询人员列表失败", zap.Error(err))
		return nil, err
	}

	var entries []timelineItem
	var ids []string
	names := make(map[string]string, len(workers))
	for i := range workers {
		w := toRosterWorker(&workers[i])
		ids = append(ids, w.ID)
		names[w.ID] = w.Name
		entries = append(entries, assignmentEntries(w, ref, true, &day)...)
	}
	if q.IncludeCourses {
		courses, err := s.courses(ctx, ids, info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, courseEntries(courses, names, &day)...)
	}

	return &dto.DayTimelineResponse{
		Reference: info,
		TimelineDay: dto.TimelineDay{
			Day:     day.Code(),
			Name:    day.String(),
			Entries: nonNil(layoutEntries(entries)[day]),
		},
	}, nil
}

// ── 内部辅助方法 ──

// courses 课表按参考学期过滤；非学期参考点时返回全部
func (s *timelineService) courses(ctx context.Context, workerIDs []string, info dto.ReferenceInfo) ([]model.CourseSchedule, error) {
	list, err := s.repo.CourseSchedule.ListByWorkers(ctx, workerIDs, info.SemesterID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Strings("worker_ids", workerIDs), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// assignmentEntries 展开任务时间块；day 非空时只保留该天
func assignmentEntries(w roster.Worker, ref lifecycle.Reference, activeOnly bool, day *timeblock.Day) []timelineItem {
	var out []timelineItem
	for _, a := range w.Assignments {
		status := w.AssignmentStatus(a, ref)
		if activeOnly && status != lifecycle.Active {
			continue
		}
		location := ""
		if len(a.Locations) > 0 {
			location = a.Locations[0]
		}
		for _, b := range a.Blocks {
			if day != nil && b.Day != *day {
				continue
			}
			st := status
			out = append(out, newEntry(b, dto.TimelineEntry{
				Kind:         entryAssignment,
				WorkerID:     w.ID,
				WorkerName:   w.Name,
				AssignmentID: a.ID,
				Title:        a.Title,
				Location:     location,
				Status:       &st,
			}))
		}
	}
	return out
}

func courseEntries(courses []model.CourseSchedule, names map[string]string, day *timeblock.Day) []timelineItem {
	var out []timelineItem
	for _, c := range courses {
		b, ok := timeblock.Parse(c.Day, c.StartTime, c.EndTime)
		if !ok || (day != nil && b.Day != *day) {
			continue
		}
		out = append(out, newEntry(b, dto.TimelineEntry{
			Kind:       entryCourse,
			WorkerID:   c.WorkerID,
			WorkerName: names[c.WorkerID],
			Title:      c.CourseName,
			Location:   c.Location,
		}))
	}
	return out
}

func newEntry(b timeblock.Block, e dto.TimelineEntry) timelineItem {
	e.Start = timeblock.FormatClock(b.Start)
	e.End = timeblock.FormatClock(b.End)
	e.StartMinutes = b.Start
	e.EndMinutes = b.End
	return timelineItem{block: b, entry: e}
}

// layoutEntries 为全部条目分配泳道，按天分组并按 (start, lane) 排序
func layoutEntries(items []timelineItem) map[timeblock.Day][]dto.TimelineEntry {
	blocks := make([]timeblock.Block, len(items))
	for i, it := range items {
		blocks[i] = it.block
	}

	out := make(map[timeblock.Day][]dto.TimelineEntry)
	for d, placements := range timeblock.LayoutWeek(blocks) {
		list := make([]dto.TimelineEntry, 0, len(placements))
		for _, p := range placements {
			e := items[p.Index].entry
			e.Lane = p.Lane
			e.LaneCount = p.LaneCount
			e.Cluster = p.Cluster
			e.Left = p.Left()
			e.Width = p.Width()
			list = append(list, e)
		}
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].StartMinutes != list[j].StartMinutes {
				return list[i].StartMinutes < list[j].StartMinutes
			}
			return list[i].Lane < list[j].Lane
		})
		out[d] = list
	}
	return out
}

func nonNil(entries []dto.TimelineEntry) []dto.TimelineEntry {
	if entries == nil {
		return []dto.TimelineEntry{}
	}
	return entries
}
