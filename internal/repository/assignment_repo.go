package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-schedules/backend/internal/model"
	pkgerrors "faculty-schedules/backend/pkg/errors"
)

// AssignmentRepository 岗位任务数据访问接口
type AssignmentRepository interface {
	// Create 连同时间块一起创建
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByWorker(ctx context.Context, workerID string) ([]model.Assignment, error)
	// Update 更新任务字段（不含时间块），乐观锁
	Update(ctx context.Context, assignment *model.Assignment) error
	// ReplaceBlocks 以 expectedVersion 为前提整体替换时间块，返回新版本号
	ReplaceBlocks(ctx context.Context, assignmentID string, expectedVersion int, blocks []model.AssignmentBlock, updatedBy string) (int, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Blocks", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_time ASC") }).
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByWorker(ctx context.Context, workerID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Blocks", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_time ASC") }).
		Where("worker_id = ?", workerID).
		Order("created_at ASC, assignment_id ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	oldVersion := a.Version
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ? AND version = ?", a.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"title":       a.Title,
			"supervisor":  a.Supervisor,
			"hourly_rate": a.HourlyRate,
			"locations":   a.Locations,
			"start_date":  a.StartDate,
			"end_date":    a.EndDate,
			"updated_by":  a.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version = oldVersion + 1
	return nil
}

func (r *assignmentRepo) ReplaceBlocks(ctx context.Context, assignmentID string, expectedVersion int, blocks []model.AssignmentBlock, updatedBy string) (int, error) {
	newVersion := expectedVersion + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Assignment{}).
			Where("assignment_id = ? AND version = ?", assignmentID, expectedVersion).
			Updates(map[string]interface{}{
				"updated_by": updatedBy,
				"version":    newVersion,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		// 硬删除：时间块随任务整体替换
		if err := tx.Where("assignment_id = ?", assignmentID).
			Delete(&model.AssignmentBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}
		for i := range blocks {
			blocks[i].AssignmentID = assignmentID
			blocks[i].BlockID = ""
		}
		return tx.Create(&blocks).Error
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		}).Error
}
