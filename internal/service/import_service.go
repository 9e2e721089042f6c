package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/repository"
	"faculty-schedules/backend/internal/roster"
	"faculty-schedules/backend/internal/timeblock"
)

// ── 导入模块业务错误 ──

var (
	ErrICSParseFailed   = errors.New("ICS 文件解析失败")
	ErrICSFetchFailed   = errors.New("ICS 链接获取失败")
	ErrICSSourceMissing = errors.New("请上传 ICS 文件或提供链接")
	ErrCourseNotFound   = errors.New("课表条目不存在")
	ErrCourseInvalid    = errors.New("课表时间无效")
	ErrRosterInvalid    = errors.New("人员记录格式无效")
)

// ImportService 外部数据导入
//
// 课表（ICS 或手工录入）只作为时间轴上的只读参考块；人员记录导入接受
// 多任务与旧版单岗位两种 JSON 形态，统一规整为多任务后入库。
type ImportService interface {
	ImportICS(ctx context.Context, workerID string, r io.Reader, semesterID, callerID string) (*dto.ImportICSResponse, error)
	ImportICSFromURL(ctx context.Context, workerID string, req *dto.ImportICSRequest, callerID string) (*dto.ImportICSResponse, error)
	ListCourses(ctx context.Context, workerID, semesterID string) ([]dto.CourseResponse, error)
	CreateCourse(ctx context.Context, workerID string, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id string) error
	ImportRoster(ctx context.Context, data []byte, callerID string) (*dto.RosterImportResponse, error)
}

type importService struct {
	repo   *repository.Repository
	cache  SummaryCache
	loc    *time.Location
	client *http.Client
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, cache SummaryCache, cfg config.ScheduleConfig, logger *zap.Logger) ImportService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
	}
	return &importService{
		repo:   repo,
		cache:  cache,
		loc:    loc,
		client: &http.Client{Timeout: icsFetchTimeout},
		logger: logger,
	}
}

// ═══════════════════════════════════════════════════════════
// ICS 导入
// ═══════════════════════════════════════════════════════════
//
// 同一人员、同一学期的 ICS 课表整体替换；手工录入的条目不受影响。

func (s *importService) ImportICS(ctx context.Context, workerID string, r io.Reader, semesterID, callerID string) (*dto.ImportICSResponse, error) {
	if err := s.ensureWorker(ctx, workerID); err != nil {
		return nil, err
	}

	var semID *string
	var window *[2]time.Time
	if semesterID != "" {
		semester, err := s.repo.Semester.GetByID(ctx, semesterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSemesterNotFound
			}
			s.logger.Error("查询学期失败", zap.String("id", semesterID), zap.Error(err))
			return nil, err
		}
		semID = &semester.SemesterID
		window = &[2]time.Time{semester.StartDate, semester.EndDate}
	}

	res, err := ParseICS(r, workerID, semID, window, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	for i := range res.Courses {
		res.Courses[i].CreatedBy = &callerID
		res.Courses[i].UpdatedBy = &callerID
	}

	if err := s.repo.CourseSchedule.ReplaceByWorker(ctx, workerID, semesterID, "ics", res.Courses); err != nil {
		s.logger.Error("保存课表失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, workerID)

	s.logger.Info("ICS 课表导入完成",
		zap.String("worker_id", workerID),
		zap.Int("imported", len(res.Courses)),
		zap.Int("skipped", res.Skipped),
	)

	resp := &dto.ImportICSResponse{
		ImportedCount: len(res.Courses),
		SkippedCount:  res.Skipped,
		Events:        make([]dto.ImportedCourseEvent, 0, len(res.Events)),
	}
	for _, e := range res.Events {
		resp.Events = append(resp.Events, dto.ImportedCourseEvent{
			Name:      e.Name,
			Day:       e.Block.Day.Code(),
			StartTime: timeblock.FormatClock(e.Block.Start),
			EndTime:   timeblock.FormatClock(e.Block.End),
			Location:  e.Location,
		})
	}
	return resp, nil
}

func (s *importService) ImportICSFromURL(ctx context.Context, workerID string, req *dto.ImportICSRequest, callerID string) (*dto.ImportICSResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrICSSourceMissing
	}
	body, err := FetchICSContent(s.client, req.URL)
	if err != nil {
		s.logger.Warn("获取 ICS 失败", zap.String("url", req.URL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	defer body.Close()
	return s.ImportICS(ctx, workerID, body, req.SemesterID, callerID)
}

// ────────────────────── 手工课表 ──────────────────────

func (s *importService) ListCourses(ctx context.Context, workerID, semesterID string) ([]dto.CourseResponse, error) {
	if err := s.ensureWorker(ctx, workerID); err != nil {
		return nil, err
	}
	courses, err := s.repo.CourseSchedule.ListByWorkers(ctx, []string{workerID}, semesterID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseResponse(&courses[i]))
	}
	return out, nil
}

// CreateCourse 手工录入课表；课表是外部时间，允许周末与可编辑时段之外
func (s *importService) CreateCourse(ctx context.Context, workerID string, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	if err := s.ensureWorker(ctx, workerID); err != nil {
		return nil, err
	}
	b, ok := timeblock.Parse(req.Day, req.Start, req.End)
	if !ok {
		return nil, ErrCourseInvalid
	}

	course := &model.CourseSchedule{
		WorkerID:   workerID,
		CourseName: strings.TrimSpace(req.CourseName),
		Location:   strings.TrimSpace(req.Location),
		Day:        b.Day.Code(),
		StartTime:  timeblock.FormatClock(b.Start),
		EndTime:    timeblock.FormatClock(b.End),
		Source:     "manual",
	}
	if req.SemesterID != "" {
		if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSemesterNotFound
			}
			return nil, err
		}
		semID := req.SemesterID
		course.SemesterID = &semID
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.CourseSchedule.Create(ctx, course); err != nil {
		s.logger.Error("创建课表失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *importService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.CourseSchedule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("删除课表失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// ImportRoster 人员记录批量导入
// ═══════════════════════════════════════════════════════════
//
// 接受 JSON 数组或单个对象。单条记录损坏只计入 Failed，不影响其他记录；
// 字段级别的错误（日期、时间块）按宽松规则降级。

func (s *importService) ImportRoster(ctx context.Context, data []byte, callerID string) (*dto.RosterImportResponse, error) {
	items, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	resp := &dto.RosterImportResponse{Workers: []string{}}
	for i, raw := range items {
		rec, err := roster.DecodeRecord(raw)
		if err != nil {
			resp.Failed = append(resp.Failed, dto.RosterImportError{Index: i, Message: err.Error()})
			continue
		}
		if strings.TrimSpace(rec.Name) == "" {
			resp.Failed = append(resp.Failed, dto.RosterImportError{Index: i, Message: "缺少姓名"})
			continue
		}
		if _, ok := rec.Jobs.(roster.LegacySingleJob); ok {
			resp.Legacy++
		}

		worker := workerModel(rec.Normalize(), callerID)
		if err := s.repo.Worker.Create(ctx, worker); err != nil {
			s.logger.Error("导入人员失败", zap.Int("index", i), zap.Error(err))
			resp.Failed = append(resp.Failed, dto.RosterImportError{Index: i, Message: "保存失败"})
			continue
		}
		resp.Created++
		resp.Workers = append(resp.Workers, worker.WorkerID)
	}

	s.logger.Info("人员记录导入完成",
		zap.Int("created", resp.Created),
		zap.Int("legacy", resp.Legacy),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, ErrRosterInvalid
	case trimmed[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRosterInvalid, err)
		}
		return items, nil
	case trimmed[0] == '{':
		return []json.RawMessage{trimmed}, nil
	default:
		return nil, ErrRosterInvalid
	}
}

// workerModel 规整后的人员转为持久化模型；记录中的 ID 只在来源系统有意义，入库时重新生成
func workerModel(w roster.Worker, callerID string) *model.Worker {
	m := &model.Worker{
		Name:      strings.TrimSpace(w.Name),
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		IsActive:  w.IsActive,
	}
	m.Version = 1
	m.CreatedBy = &callerID
	m.UpdatedBy = &callerID
	for _, a := range w.Assignments {
		am := model.Assignment{
			Title:      a.Title,
			Supervisor: a.Supervisor,
			HourlyRate: a.HourlyRate,
			Locations:  model.StringList(a.Locations),
			StartDate:  a.StartDate,
			EndDate:    a.EndDate,
			Blocks:     fromBlocks(a.Blocks),
		}
		am.Version = 1
		am.CreatedBy = &callerID
		am.UpdatedBy = &callerID
		m.Assignments = append(m.Assignments, am)
	}
	return m
}

// ── 内部辅助方法 ──

func (s *importService) ensureWorker(ctx context.Context, workerID string) error {
	if _, err := s.repo.Worker.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		s.logger.Error("查询人员失败", zap.String("worker_id", workerID), zap.Error(err))
		return err
	}
	return nil
}

func toCourseResponse(c *model.CourseSchedule) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:         c.CourseScheduleID,
		WorkerID:   c.WorkerID,
		CourseName: c.CourseName,
		Location:   c.Location,
		Day:        c.Day,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		Source:     c.Source,
	}
	if c.SemesterID != nil {
		resp.SemesterID = *c.SemesterID
	}
	return resp
}
