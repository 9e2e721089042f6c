package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/repository"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound    = errors.New("学期不存在")
	ErrSemesterDateInvalid = errors.New("学期结束日期必须晚于开始日期")
	ErrSemesterDateOverlap = errors.New("学期日期与已有学期重叠")
	ErrReferenceInvalid    = errors.New("参考日期格式无效，应为 YYYY-MM-DD")
)

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
	// ResolveReference 确定状态计算的参考点
	ResolveReference(ctx context.Context, q dto.ReferenceQuery) (lifecycle.Reference, dto.ReferenceInfo, error)
}

type semesterService struct {
	repo   *repository.Repository
	cfg    config.ScheduleConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, cfg config.ScheduleConfig, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, cfg: cfg, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrSemesterDateInvalid
	}
	if err := s.checkOverlap(ctx, startDate, endDate, ""); err != nil {
		return nil, err
	}

	semester := &model.Semester{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  false,
	}
	semester.Version = 1
	semester.CreatedBy = &callerID
	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询当前学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	semester, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		semester.Name = *req.Name
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.EndDate = endDate
	}
	if !semester.EndDate.After(semester.StartDate) {
		return nil, ErrSemesterDateInvalid
	}
	if req.StartDate != nil || req.EndDate != nil {
		if err := s.checkOverlap(ctx, semester.StartDate, semester.EndDate, id); err != nil {
			return nil, err
		}
	}

	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Activate ──────────────────────

func (s *semesterService) Activate(ctx context.Context, id string, callerID string) error {
	semester, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	// 使用事务保证 ClearActive + Update 的原子性
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Semester.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除活动学期失败", zap.Error(err))
		return err
	}

	semester.IsActive = true
	semester.UpdatedBy = &callerID

	if err := txRepo.Semester.Update(ctx, semester); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("学期已启用", zap.String("id", id), zap.String("name", semester.Name))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Semester.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ═══════════════════════════════════════════════════════════
// ResolveReference 状态参考点
// ═══════════════════════════════════════════════════════════
//
// 优先级：
//  1. at 指定日期 → 单一时刻
//  2. semester_id → 该学期窗口
//  3. 启用中的学期 → 其窗口
//  4. 配置的兜底窗口（任一端存在即可，缺失端视为无穷）
//  5. 当前时刻

func (s *semesterService) ResolveReference(ctx context.Context, q dto.ReferenceQuery) (lifecycle.Reference, dto.ReferenceInfo, error) {
	if q.At != "" {
		at := lifecycle.ParseDate(q.At)
		if at == nil {
			return lifecycle.Reference{}, dto.ReferenceInfo{}, ErrReferenceInvalid
		}
		return lifecycle.At(*at), dto.ReferenceInfo{Mode: "instant", At: at.Format(dateLayout)}, nil
	}

	if q.SemesterID != "" {
		semester, err := s.get(ctx, q.SemesterID)
		if err != nil {
			return lifecycle.Reference{}, dto.ReferenceInfo{}, err
		}
		return semesterReference(semester)
	}

	semester, err := s.repo.Semester.GetCurrent(ctx)
	switch {
	case err == nil:
		return semesterReference(semester)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询当前学期失败", zap.Error(err))
		return lifecycle.Reference{}, dto.ReferenceInfo{}, err
	}

	start := lifecycle.ParseDate(s.cfg.WindowStart)
	end := lifecycle.ParseDate(s.cfg.WindowEnd)
	if start != nil || end != nil {
		info := dto.ReferenceInfo{Mode: "window", StartDate: formatDate(start), EndDate: formatDate(end)}
		return lifecycle.Within(lifecycle.Window{Start: start, End: end}), info, nil
	}

	now := s.now()
	return lifecycle.At(now), dto.ReferenceInfo{Mode: "instant", At: now.Format(dateLayout)}, nil
}

func semesterReference(semester *model.Semester) (lifecycle.Reference, dto.ReferenceInfo, error) {
	start, end := semester.StartDate, semester.EndDate
	info := dto.ReferenceInfo{
		Mode:       "semester",
		SemesterID: semester.SemesterID,
		Name:       semester.Name,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
	}
	return lifecycle.Within(lifecycle.Window{Start: &start, End: &end}), info, nil
}

// ── 内部辅助方法 ──

func (s *semesterService) get(ctx context.Context, id string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return semester, nil
}

func (s *semesterService) checkOverlap(ctx context.Context, start, end time.Time, excludeID string) error {
	overlapping, err := s.repo.Semester.ListOverlapping(ctx, start, end, excludeID)
	if err != nil {
		s.logger.Error("检查学期重叠失败", zap.Error(err))
		return err
	}
	if len(overlapping) > 0 {
		return ErrSemesterDateOverlap
	}
	return nil
}

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	return &dto.SemesterResponse{
		ID:        semester.SemesterID,
		Name:      semester.Name,
		StartDate: semester.StartDate.Format(dateLayout),
		EndDate:   semester.EndDate.Format(dateLayout),
		IsActive:  semester.IsActive,
		CreatedAt: semester.CreatedAt.Format(time.RFC3339),
		UpdatedAt: semester.UpdatedAt.Format(time.RFC3339),
	}
}
