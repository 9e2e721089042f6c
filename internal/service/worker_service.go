package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/repository"
	"faculty-schedules/backend/internal/roster"
	"faculty-schedules/backend/internal/timeblock"
	pkgerrors "faculty-schedules/backend/pkg/errors"
)

// ── 人员模块业务错误 ──

var (
	ErrWorkerNotFound    = errors.New("人员不存在")
	ErrWorkerDateInvalid = errors.New("人员起止日期无效")
	ErrVersionConflict   = errors.New("数据已被他人修改，请刷新后重试")
)

// WorkerService 人员业务接口
type WorkerService interface {
	Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	GetByID(ctx context.Context, id string, q dto.ReferenceQuery) (*dto.WorkerResponse, error)
	List(ctx context.Context, req *dto.WorkerListRequest) ([]dto.WorkerResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Summary 状态、工时、薪资以及逐任务明细
	Summary(ctx context.Context, id string, q dto.ReferenceQuery) (*dto.WorkerSummaryResponse, error)
}

type workerService struct {
	repo      *repository.Repository
	semesters SemesterService
	cache     SummaryCache
	cfg       config.ScheduleConfig
	logger    *zap.Logger
}

// NewWorkerService 创建 WorkerService 实例；cache 可为 nil
func NewWorkerService(
	repo *repository.Repository,
	semesters SemesterService,
	cache SummaryCache,
	cfg config.ScheduleConfig,
	logger *zap.Logger,
) WorkerService {
	return &workerService{repo: repo, semesters: semesters, cache: cache, cfg: cfg, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *workerService) Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	start, ok1 := parseDateInput(req.StartDate)
	end, ok2 := parseDateInput(req.EndDate)
	if !ok1 || !ok2 || !rangeOrdered(start, end) {
		return nil, ErrWorkerDateInvalid
	}

	worker := &model.Worker{
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Department: req.Department,
		Notes:      req.Notes,
		StartDate:  start,
		EndDate:    end,
		IsActive:   req.IsActive == nil || *req.IsActive,
	}
	worker.Version = 1
	worker.CreatedBy = &callerID
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Create(ctx, worker); err != nil {
		s.logger.Error("创建人员失败", zap.Error(err))
		return nil, err
	}

	resp := toWorkerResponse(worker, lifecycle.Reference{}, editWindow(s.cfg))
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workerService) GetByID(ctx context.Context, id string, q dto.ReferenceQuery) (*dto.WorkerResponse, error) {
	ref, _, err := s.semesters.ResolveReference(ctx, q)
	if err != nil {
		return nil, err
	}
	worker, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toWorkerResponse(worker, ref, editWindow(s.cfg))
	return &resp, nil
}

// ────────────────────── List ──────────────────────

// List 数据库侧过滤启用标记、部门与关键字；派生状态只能在内存中过滤，
// 此时先取全量再分页。
func (s *workerService) List(ctx context.Context, req *dto.WorkerListRequest) ([]dto.WorkerResponse, int64, error) {
	ref, _, err := s.semesters.ResolveReference(ctx, req.ReferenceQuery)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.WorkerFilter{
		Active:     req.Active,
		Department: req.Department,
		Keyword:    strings.TrimSpace(req.Keyword),
	}
	var want lifecycle.Status
	byStatus := req.Status != ""
	if byStatus {
		want, _ = lifecycle.ParseStatus(req.Status)
	} else {
		filter.Offset = req.GetOffset()
		filter.Limit = req.GetPageSize()
	}

	workers, total, err := s.repo.Worker.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询人员列表失败", zap.Error(err))
		return nil, 0, err
	}

	win := editWindow(s.cfg)
	result := make([]dto.WorkerResponse, 0, len(workers))
	for i := range workers {
		resp := toWorkerResponse(&workers[i], ref, win)
		if byStatus && resp.Status != want {
			continue
		}
		result = append(result, resp)
	}

	if byStatus {
		total = int64(len(result))
		result = paginate(result, req.GetOffset(), req.GetPageSize())
	}
	return result, total, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ────────────────────── Update ──────────────────────

func (s *workerService) Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	worker, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if worker.Version != req.Version {
		return nil, ErrVersionConflict
	}

	if req.Name != nil {
		worker.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		worker.Email = *req.Email
	}
	if req.Department != nil {
		worker.Department = *req.Department
	}
	if req.Notes != nil {
		worker.Notes = *req.Notes
	}
	if req.StartDate != nil {
		d, ok := parseDateInput(req.StartDate)
		if !ok {
			return nil, ErrWorkerDateInvalid
		}
		worker.StartDate = d
	}
	if req.EndDate != nil {
		d, ok := parseDateInput(req.EndDate)
		if !ok {
			return nil, ErrWorkerDateInvalid
		}
		worker.EndDate = d
	}
	if !rangeOrdered(worker.StartDate, worker.EndDate) {
		return nil, ErrWorkerDateInvalid
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Update(ctx, worker); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrVersionConflict
		}
		s.logger.Error("更新人员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, id)

	resp := toWorkerResponse(worker, lifecycle.Reference{}, editWindow(s.cfg))
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *workerService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Worker.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除人员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	invalidate(ctx, s.cache, s.logger, id)
	return nil
}

// ═══════════════════════════════════════════════════════════
// Summary 人员汇总
// ═══════════════════════════════════════════════════════════
//
// Totals 不区分任务状态；ActiveTotals 只累加参考点下进行中的任务。
// 结果按 (人员, 参考点) 缓存，人员或其任务变更时整体失效。

func (s *workerService) Summary(ctx context.Context, id string, q dto.ReferenceQuery) (*dto.WorkerSummaryResponse, error) {
	ref, info, err := s.semesters.ResolveReference(ctx, q)
	if err != nil {
		return nil, err
	}

	key := referenceKey(info)
	if s.cache != nil {
		var cached dto.WorkerSummaryResponse
		hit, err := s.cache.GetSummary(ctx, id, key, &cached)
		if err != nil {
			s.logger.Warn("读取人员汇总缓存失败", zap.String("id", id), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	worker, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(toRosterWorker(worker), ref, info)

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, id, key, summary, s.cfg.SummaryCacheTTL); err != nil {
			s.logger.Warn("写入人员汇总缓存失败", zap.String("id", id), zap.Error(err))
		}
	}
	return summary, nil
}

func buildSummary(w roster.Worker, ref lifecycle.Reference, info dto.ReferenceInfo) *dto.WorkerSummaryResponse {
	all := roster.TotalsOf(w)
	active := roster.TotalsWhere(w, w.WithStatus(ref, lifecycle.Active))

	out := &dto.WorkerSummaryResponse{
		WorkerID:     w.ID,
		Name:         w.Name,
		Status:       w.Status(ref),
		Reference:    info,
		Totals:       dto.TotalsResponse{WeeklyHours: all.Hours, WeeklyPay: roster.RoundCents(all.Pay)},
		ActiveTotals: dto.TotalsResponse{WeeklyHours: active.Hours, WeeklyPay: roster.RoundCents(active.Pay)},
		Assignments:  make([]dto.AssignmentSummary, 0, len(w.Assignments)),
	}
	for _, a := range w.Assignments {
		out.Assignments = append(out.Assignments, dto.AssignmentSummary{
			AssignmentID: a.ID,
			Title:        a.Title,
			Status:       w.AssignmentStatus(a, ref),
			HourlyRate:   roster.ParseRate(a.HourlyRate),
			WeeklyHours:  a.WeeklyHours(),
			WeeklyPay:    roster.RoundCents(roster.WeeklyPay(a)),
			Blocks:       timeblock.Strings(a.Blocks),
		})
	}
	return out
}

// referenceKey 参考点的缓存键
func referenceKey(info dto.ReferenceInfo) string {
	switch info.Mode {
	case "semester":
		return "semester:" + info.SemesterID + ":" + info.StartDate + ":" + info.EndDate
	case "window":
		return "window:" + info.StartDate + ":" + info.EndDate
	default:
		return "instant:" + info.At
	}
}

// ── 内部辅助方法 ──

func (s *workerService) get(ctx context.Context, id string) (*model.Worker, error) {
	worker, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询人员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return worker, nil
}
