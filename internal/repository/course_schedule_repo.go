package repository

import (
	"context"

	"gorm.io/gorm"

	"faculty-schedules/backend/internal/model"
)

// CourseScheduleRepository 课表数据访问接口
type CourseScheduleRepository interface {
	// ListByWorkers semesterID 为空时返回全部学期
	ListByWorkers(ctx context.Context, workerIDs []string, semesterID string) ([]model.CourseSchedule, error)
	Create(ctx context.Context, course *model.CourseSchedule) error
	Delete(ctx context.Context, id string) error
	// ReplaceByWorker 在事务中全量替换某来源的课表：先删除旧数据，再批量插入新数据
	ReplaceByWorker(ctx context.Context, workerID, semesterID, source string, courses []model.CourseSchedule) error
}

type courseScheduleRepo struct {
	db *gorm.DB
}

// NewCourseScheduleRepo 创建 CourseScheduleRepository 实例
func NewCourseScheduleRepo(db *gorm.DB) CourseScheduleRepository {
	return &courseScheduleRepo{db: db}
}

func scopeSemester(db *gorm.DB, semesterID string) *gorm.DB {
	if semesterID == "" {
		return db
	}
	return db.Where("semester_id = ?", semesterID)
}

func (r *courseScheduleRepo) ListByWorkers(ctx context.Context, workerIDs []string, semesterID string) ([]model.CourseSchedule, error) {
	var courses []model.CourseSchedule
	if len(workerIDs) == 0 {
		return courses, nil
	}
	err := scopeSemester(r.db.WithContext(ctx), semesterID).
		Where("worker_id IN ?", workerIDs).
		Order("worker_id ASC, start_time ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseScheduleRepo) Create(ctx context.Context, course *model.CourseSchedule) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseScheduleRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("course_schedule_id = ?", id).
		Delete(&model.CourseSchedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseScheduleRepo) ReplaceByWorker(ctx context.Context, workerID, semesterID, source string, courses []model.CourseSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 硬删除旧课表（替换场景，无需软删除审计）
		if err := scopeSemester(tx.Unscoped(), semesterID).
			Where("worker_id = ? AND source = ?", workerID, source).
			Delete(&model.CourseSchedule{}).Error; err != nil {
			return err
		}
		if len(courses) > 0 {
			if err := tx.Create(&courses).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
