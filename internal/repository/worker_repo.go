package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-schedules/backend/internal/model"
	pkgerrors "faculty-schedules/backend/pkg/errors"
)

// WorkerFilter 人员列表过滤条件
type WorkerFilter struct {
	Active     *bool
	Department string
	Keyword    string // 姓名或邮箱模糊匹配
	Offset     int
	Limit      int // <= 0 表示不分页
}

// WorkerRepository 人员数据访问接口
type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]model.Worker, int64, error)
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type workerRepo struct {
	db *gorm.DB
}

// NewWorkerRepo 创建 WorkerRepository 实例
func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

// withSchedule 预加载任务与时间块
func withSchedule(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Assignments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC, assignment_id ASC")
		}).
		Preload("Assignments.Blocks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("start_time ASC")
		})
}

func (r *workerRepo) Create(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	err := withSchedule(r.db.WithContext(ctx)).
		Where("worker_id = ?", id).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) List(ctx context.Context, filter WorkerFilter) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Worker{})
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = withSchedule(db).Order("name ASC, worker_id ASC")
	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := db.Find(&workers).Error; err != nil {
		return nil, 0, err
	}
	return workers, total, nil
}

func (r *workerRepo) Update(ctx context.Context, worker *model.Worker) error {
	oldVersion := worker.Version
	result := r.db.WithContext(ctx).
		Model(&model.Worker{}).
		Where("worker_id = ? AND version = ?", worker.WorkerID, oldVersion).
		Updates(map[string]interface{}{
			"name":       worker.Name,
			"email":      worker.Email,
			"department": worker.Department,
			"notes":      worker.Notes,
			"start_date": worker.StartDate,
			"end_date":   worker.EndDate,
			"is_active":  worker.IsActive,
			"updated_by": worker.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	worker.Version = oldVersion + 1
	return nil
}

// Delete 软删除人员及其全部任务
func (r *workerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Assignment{}).
			Where("worker_id = ?", id).
			Updates(map[string]interface{}{"deleted_by": deletedBy, "deleted_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Worker{}).
			Where("worker_id = ?", id).
			Updates(map[string]interface{}{"deleted_by": deletedBy, "deleted_at": now}).Error
	})
}
