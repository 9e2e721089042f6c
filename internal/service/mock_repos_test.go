package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/repository"
	pkgerrors "faculty-schedules/backend/pkg/errors"
)

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers     map[string]*model.Worker
	assignments *mockAssignmentRepo
	seq         int
}

func newMockWorkerRepo(assignments *mockAssignmentRepo) *mockWorkerRepo {
	return &mockWorkerRepo{workers: make(map[string]*model.Worker), assignments: assignments}
}

func (m *mockWorkerRepo) Create(ctx context.Context, worker *model.Worker) error {
	if worker.WorkerID == "" {
		m.seq++
		worker.WorkerID = fmt.Sprintf("w-%d", m.seq)
	}
	for i := range worker.Assignments {
		worker.Assignments[i].WorkerID = worker.WorkerID
		_ = m.assignments.Create(ctx, &worker.Assignments[i])
	}
	cp := *worker
	cp.Assignments = nil
	m.workers[worker.WorkerID] = &cp
	return nil
}

// withAssignments 返回附带任务的副本，模拟 Preload
func (m *mockWorkerRepo) withAssignments(w *model.Worker) model.Worker {
	cp := *w
	cp.Assignments = m.assignments.byWorker(w.WorkerID)
	return cp
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	w, ok := m.workers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withAssignments(w)
	return &cp, nil
}

func (m *mockWorkerRepo) List(_ context.Context, filter repository.WorkerFilter) ([]model.Worker, int64, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if filter.Active != nil && w.IsActive != *filter.Active {
			continue
		}
		if filter.Department != "" && w.Department != filter.Department {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(w.Name, filter.Keyword) && !strings.Contains(w.Email, filter.Keyword) {
			continue
		}
		result = append(result, m.withAssignments(w))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if filter.Limit > 0 {
		result = paginate(result, filter.Offset, filter.Limit)
	}
	return result, total, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, worker *model.Worker) error {
	cur, ok := m.workers[worker.WorkerID]
	if !ok || cur.Version != worker.Version {
		return pkgerrors.ErrOptimisticLock
	}
	worker.Version++
	cp := *worker
	cp.Assignments = nil
	m.workers[worker.WorkerID] = &cp
	return nil
}

func (m *mockWorkerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.workers, id)
	for aid, a := range m.assignments.assignments {
		if a.WorkerID == id {
			delete(m.assignments.assignments, aid)
		}
	}
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	seq         int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) byWorker(workerID string) []model.Assignment {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.WorkerID == workerID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("a-%02d", m.seq)
	}
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) ListByWorker(_ context.Context, workerID string) ([]model.Assignment, error) {
	return m.byWorker(workerID), nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	cur, ok := m.assignments[a.AssignmentID]
	if !ok || cur.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	cp := *a
	cp.Blocks = cur.Blocks
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) ReplaceBlocks(_ context.Context, id string, expectedVersion int, blocks []model.AssignmentBlock, _ string) (int, error) {
	cur, ok := m.assignments[id]
	if !ok || cur.Version != expectedVersion {
		return 0, pkgerrors.ErrOptimisticLock
	}
	cur.Version++
	cur.Blocks = append([]model.AssignmentBlock(nil), blocks...)
	return cur.Version, nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.assignments, id)
	return nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = "sem-" + semester.Name
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSemesterRepo) ListOverlapping(_ context.Context, start, end time.Time, excludeID string) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		if s.SemesterID == excludeID {
			continue
		}
		if !s.StartDate.After(end) && !s.EndDate.Before(start) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.semesters, id)
	return nil
}

func (m *mockSemesterRepo) ClearActive(_ context.Context) error {
	for _, s := range m.semesters {
		s.IsActive = false
	}
	return nil
}

// ── Mock CourseScheduleRepository ──

type mockCourseRepo struct {
	courses map[string]*model.CourseSchedule
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.CourseSchedule)}
}

func (m *mockCourseRepo) ListByWorkers(_ context.Context, workerIDs []string, semesterID string) ([]model.CourseSchedule, error) {
	want := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		want[id] = true
	}
	var result []model.CourseSchedule
	for _, c := range m.courses {
		if !want[c.WorkerID] {
			continue
		}
		if semesterID != "" && (c.SemesterID == nil || *c.SemesterID != semesterID) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseScheduleID < result[j].CourseScheduleID })
	return result, nil
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.CourseSchedule) error {
	if c.CourseScheduleID == "" {
		m.seq++
		c.CourseScheduleID = fmt.Sprintf("c-%02d", m.seq)
	}
	cp := *c
	m.courses[c.CourseScheduleID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) ReplaceByWorker(ctx context.Context, workerID, semesterID, source string, courses []model.CourseSchedule) error {
	for id, c := range m.courses {
		if c.WorkerID != workerID || c.Source != source {
			continue
		}
		if semesterID != "" && (c.SemesterID == nil || *c.SemesterID != semesterID) {
			continue
		}
		delete(m.courses, id)
	}
	for i := range courses {
		_ = m.Create(ctx, &courses[i])
	}
	return nil
}

// ── Mock SummaryCache ──

type mockSummaryCache struct {
	entries     map[string][]byte
	invalidated []string
	hits        int
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[string][]byte)}
}

func (m *mockSummaryCache) GetSummary(_ context.Context, workerID, refKey string, dst interface{}) (bool, error) {
	b, ok := m.entries[workerID+"|"+refKey]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(b, dst)
}

func (m *mockSummaryCache) SetSummary(_ context.Context, workerID, refKey string, v interface{}, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.entries[workerID+"|"+refKey] = b
	return nil
}

func (m *mockSummaryCache) InvalidateSummary(_ context.Context, workerIDs ...string) error {
	for _, id := range workerIDs {
		m.invalidated = append(m.invalidated, id)
		for k := range m.entries {
			if strings.HasPrefix(k, id+"|") {
				delete(m.entries, k)
			}
		}
	}
	return nil
}

// ── 测试辅助 ──

type testEnv struct {
	repo        *repository.Repository
	workers     *mockWorkerRepo
	assignments *mockAssignmentRepo
	semesters   *mockSemesterRepo
	courses     *mockCourseRepo
	cache       *mockSummaryCache
	cfg         config.ScheduleConfig
	logger      *zap.Logger
}

func newTestEnv() *testEnv {
	assignments := newMockAssignmentRepo()
	env := &testEnv{
		workers:     newMockWorkerRepo(assignments),
		assignments: assignments,
		semesters:   newMockSemesterRepo(),
		courses:     newMockCourseRepo(),
		cache:       newMockSummaryCache(),
		cfg: config.ScheduleConfig{
			EditStart:   "08:00",
			EditEnd:     "17:00",
			CellMinutes: 60,
			Timezone:    "UTC",
		},
		logger: zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Worker:         env.workers,
		Assignment:     env.assignments,
		Semester:       env.semesters,
		CourseSchedule: env.courses,
	}
	return env
}

func (e *testEnv) semesterService() SemesterService {
	return NewSemesterService(e.repo, e.cfg, e.logger)
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// seedWorker 写入一个人员及其任务，返回人员 ID
func (e *testEnv) seedWorker(name string, start, end *time.Time, assignments ...model.Assignment) string {
	w := &model.Worker{Name: name, StartDate: start, EndDate: end, IsActive: true, Department: "IT"}
	w.Version = 1
	_ = e.workers.Create(context.Background(), w)
	for i := range assignments {
		assignments[i].WorkerID = w.WorkerID
		if assignments[i].Version == 0 {
			assignments[i].Version = 1
		}
		_ = e.assignments.Create(context.Background(), &assignments[i])
	}
	return w.WorkerID
}

func block(d, start, end string) model.AssignmentBlock {
	return model.AssignmentBlock{Day: d, StartTime: start, EndTime: end}
}
