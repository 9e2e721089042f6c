package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/repository"
	"faculty-schedules/backend/internal/timeblock"
)

// SummaryCache 人员汇总缓存；由 pkg/redis.Client 实现，可为 nil
type SummaryCache interface {
	GetSummary(ctx context.Context, workerID, refKey string, dst interface{}) (bool, error)
	SetSummary(ctx context.Context, workerID, refKey string, v interface{}, ttl time.Duration) error
	InvalidateSummary(ctx context.Context, workerIDs ...string) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Worker     WorkerService
	Assignment AssignmentService
	Timeline   TimelineService
	Semester   SemesterService
	Import     ImportService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache SummaryCache,
	logger *zap.Logger,
) *Service {
	semester := NewSemesterService(repo, cfg.Schedule, logger)
	return &Service{
		Worker:     NewWorkerService(repo, semester, cache, cfg.Schedule, logger),
		Assignment: NewAssignmentService(repo, cache, cfg.Schedule, logger),
		Timeline:   NewTimelineService(repo, semester, logger),
		Semester:   semester,
		Import:     NewImportService(repo, cache, cfg.Schedule, logger),
		Export:     NewExportService(repo, semester, logger),
	}
}

// editWindow 由配置解析可编辑时段
func editWindow(cfg config.ScheduleConfig) timeblock.Window {
	return timeblock.ParseWindow(cfg.EditStart, cfg.EditEnd)
}

// invalidate 使人员汇总缓存失效；缓存失败只记录日志，不影响写操作
func invalidate(ctx context.Context, cache SummaryCache, logger *zap.Logger, workerIDs ...string) {
	if cache == nil || len(workerIDs) == 0 {
		return
	}
	if err := cache.InvalidateSummary(ctx, workerIDs...); err != nil {
		logger.Warn("清除人员汇总缓存失败", zap.Strings("worker_ids", workerIDs), zap.Error(err))
	}
}
