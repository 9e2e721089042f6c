package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-schedules/backend/internal/model"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id string) (*model.Semester, error)
	GetCurrent(ctx context.Context) (*model.Semester, error)
	List(ctx context.Context) ([]model.Semester, error)
	// ListOverlapping 与 [start, end] 有交集的学期，excludeID 非空时排除自身
	ListOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]model.Semester, error)
	Update(ctx context.Context, semester *model.Semester) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ClearActive(ctx context.Context) error
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

// GetCurrent 启用中的学期；多于一个时取开始日期最晚者
func (r *semesterRepo) GetCurrent(ctx context.Context) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date DESC").
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) List(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) ListOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]model.Semester, error) {
	var semesters []model.Semester
	db := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		db = db.Where("semester_id <> ?", excludeID)
	}
	err := db.Order("start_date ASC").Find(&semesters).Error
	return semesters, err
}

// Update 只写可编辑列，避免覆盖 created_by 等审计字段
func (r *semesterRepo) Update(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).
		Model(semester).
		Select("name", "start_date", "end_date", "is_active", "updated_by", "updated_at").
		Updates(semester).Error
}

// Delete 软删除；被删除的学期不再作为默认参考窗口
func (r *semesterRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("semester_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		}).Error
}

// ClearActive 将所有学期的 is_active 设为 false
func (r *semesterRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
