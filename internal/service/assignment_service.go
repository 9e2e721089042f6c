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
	"faculty-schedules/backend/internal/timeblock"
	pkgerrors "faculty-schedules/backend/pkg/errors"
)

// ── 任务模块业务错误 ──

var (
	ErrAssignmentNotFound    = errors.New("任务不存在")
	ErrAssignmentDateInvalid = errors.New("任务起止日期无效")
	ErrBlockInvalid          = errors.New("时间块无效")
	ErrCellInvalid           = errors.New("网格单元不在可编辑范围内")
)

// AssignmentService 岗位任务与时间块编辑接口
//
// 所有时间块编辑都以客户端读取时的 version 为前提，版本不符返回 ErrVersionConflict。
type AssignmentService interface {
	Create(ctx context.Context, workerID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	AddBlock(ctx context.Context, id string, req *dto.BlockEditRequest, callerID string) (*dto.AssignmentResponse, error)
	RemoveBlock(ctx context.Context, id string, req *dto.BlockEditRequest, callerID string) (*dto.AssignmentResponse, error)
	ToggleCell(ctx context.Context, id string, req *dto.ToggleCellRequest, callerID string) (*dto.GridResponse, error)
	GetGrid(ctx context.Context, id string) (*dto.GridResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	cache  SummaryCache
	cfg    config.ScheduleConfig
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, cache SummaryCache, cfg config.ScheduleConfig, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 时间块逐个按精确录入规则校验后合并；完全重复的块忽略
func (s *assignmentService) Create(ctx context.Context, workerID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	worker, err := s.repo.Worker.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询人员失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	start, ok1 := parseDateInput(req.StartDate)
	end, ok2 := parseDateInput(req.EndDate)
	if !ok1 || !ok2 || !rangeOrdered(start, end) {
		return nil, ErrAssignmentDateInvalid
	}

	win := editWindow(s.cfg)
	var blocks []timeblock.Block
	for _, in := range req.Blocks {
		next, err := timeblock.AddPrecise(blocks, in.Day, in.Start, in.End, win)
		if err != nil {
			if errors.Is(err, timeblock.ErrDuplicate) {
				continue
			}
			return nil, err
		}
		blocks = next
	}

	a := &model.Assignment{
		WorkerID:   worker.WorkerID,
		Title:      strings.TrimSpace(req.Title),
		Supervisor: req.Supervisor,
		HourlyRate: strings.TrimSpace(req.HourlyRate),
		Locations:  model.StringList(cleanLocations(req.Locations)),
		StartDate:  start,
		EndDate:    end,
		Blocks:     fromBlocks(blocks),
	}
	a.Version = 1
	a.CreatedBy = &callerID
	a.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建任务失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, worker.WorkerID)

	resp := toAssignmentResponse(toRosterWorker(worker), a, lifecycle.Reference{}, win)
	return &resp, nil
}

func cleanLocations(in []string) []string {
	var out []string
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, a)
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Version != req.Version {
		return nil, ErrVersionConflict
	}

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Supervisor != nil {
		a.Supervisor = *req.Supervisor
	}
	if req.HourlyRate != nil {
		a.HourlyRate = strings.TrimSpace(*req.HourlyRate)
	}
	if req.Locations != nil {
		a.Locations = model.StringList(cleanLocations(*req.Locations))
	}
	if req.StartDate != nil {
		d, ok := parseDateInput(req.StartDate)
		if !ok {
			return nil, ErrAssignmentDateInvalid
		}
		a.StartDate = d
	}
	if req.EndDate != nil {
		d, ok := parseDateInput(req.EndDate)
		if !ok {
			return nil, ErrAssignmentDateInvalid
		}
		a.EndDate = d
	}
	if !rangeOrdered(a.StartDate, a.EndDate) {
		return nil, ErrAssignmentDateInvalid
	}
	a.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrVersionConflict
		}
		s.logger.Error("更新任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, a.WorkerID)

	return s.respond(ctx, a)
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string, callerID string) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除任务失败", zap.String("id", id), zap.Error(err))
		return err
	}
	invalidate(ctx, s.cache, s.logger, a.WorkerID)
	return nil
}

// ═══════════════════════════════════════════════════════════
// 时间块编辑
// ═══════════════════════════════════════════════════════════

// AddBlock 精确录入；校验失败返回 *timeblock.ValidationError
func (s *assignmentService) AddBlock(ctx context.Context, id string, req *dto.BlockEditRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.getVersion(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}
	blocks, err := timeblock.AddPrecise(toBlocks(a.Blocks), req.Day, req.Start, req.End, editWindow(s.cfg))
	if err != nil {
		return nil, err
	}
	if err := s.replace(ctx, a, blocks, callerID); err != nil {
		return nil, err
	}
	return s.respond(ctx, a)
}

// RemoveBlock 扣除区间，可拆分已有块；周末与时段外的块同样可以删除
func (s *assignmentService) RemoveBlock(ctx context.Context, id string, req *dto.BlockEditRequest, callerID string) (*dto.AssignmentResponse, error) {
	b, ok := timeblock.Parse(req.Day, req.Start, req.End)
	if !ok {
		return nil, ErrBlockInvalid
	}
	a, err := s.getVersion(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}
	if err := s.replace(ctx, a, timeblock.Remove(toBlocks(a.Blocks), b), callerID); err != nil {
		return nil, err
	}
	return s.respond(ctx, a)
}

// ToggleCell 切换网格单元，单元必须在可编辑星期与时段内
func (s *assignmentService) ToggleCell(ctx context.Context, id string, req *dto.ToggleCellRequest, callerID string) (*dto.GridResponse, error) {
	win := editWindow(s.cfg)
	step := s.cellMinutes()
	day, ok := timeblock.ParseDay(req.Day)
	if !ok || !day.Editable() {
		return nil, ErrCellInvalid
	}
	start, ok := timeblock.ParseClock(req.Start)
	if !ok || !win.Admits(start, start+step) || (start-win.Start)%step != 0 {
		return nil, ErrCellInvalid
	}

	a, err := s.getVersion(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}
	blocks := timeblock.ToggleCell(toBlocks(a.Blocks), day, start, step)
	if err := s.replace(ctx, a, blocks, callerID); err != nil {
		return nil, err
	}
	return s.grid(a, blocks), nil
}

// GetGrid 网格投影，每次由时间块重新计算
func (s *assignmentService) GetGrid(ctx context.Context, id string) (*dto.GridResponse, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.grid(a, toBlocks(a.Blocks)), nil
}

func (s *assignmentService) grid(a *model.Assignment, blocks []timeblock.Block) *dto.GridResponse {
	view := timeblock.Grid(blocks, editWindow(s.cfg), s.cellMinutes())
	resp := &dto.GridResponse{
		AssignmentID: a.AssignmentID,
		Version:      a.Version,
		CellMinutes:  s.cellMinutes(),
		Days:         make([]string, 0, len(view.Days)),
		Rows:         make([]dto.GridRow, 0, len(view.Rows)),
	}
	for _, d := range view.Days {
		resp.Days = append(resp.Days, d.Code())
	}
	for _, r := range view.Rows {
		resp.Rows = append(resp.Rows, dto.GridRow{
			Start:   timeblock.FormatClock(r.Start),
			End:     timeblock.FormatClock(r.End),
			Covered: r.Covered,
		})
	}
	return resp
}

// ── 内部辅助方法 ──

func (s *assignmentService) cellMinutes() int {
	if s.cfg.CellMinutes <= 0 {
		return timeblock.DefaultCellMinutes
	}
	return s.cfg.CellMinutes
}

func (s *assignmentService) get(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) getVersion(ctx context.Context, id string, version int) (*model.Assignment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Version != version {
		return nil, ErrVersionConflict
	}
	return a, nil
}

// replace 持久化新的时间块列表并回写版本号
func (s *assignmentService) replace(ctx context.Context, a *model.Assignment, blocks []timeblock.Block, callerID string) error {
	rows := fromBlocks(blocks)
	version, err := s.repo.Assignment.ReplaceBlocks(ctx, a.AssignmentID, a.Version, rows, callerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrVersionConflict
		}
		s.logger.Error("保存时间块失败", zap.String("id", a.AssignmentID), zap.Error(err))
		return err
	}
	a.Version = version
	a.Blocks = rows
	invalidate(ctx, s.cache, s.logger, a.WorkerID)
	return nil
}

func (s *assignmentService) respond(ctx context.Context, a *model.Assignment) (*dto.AssignmentResponse, error) {
	worker, err := s.repo.Worker.GetByID(ctx, a.WorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询人员失败", zap.String("worker_id", a.WorkerID), zap.Error(err))
		return nil, err
	}
	resp := toAssignmentResponse(toRosterWorker(worker), a, lifecycle.Reference{}, editWindow(s.cfg))
	return &resp, nil
}
