package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Worker         WorkerRepository
	Assignment     AssignmentRepository
	Semester       SemesterRepository
	CourseSchedule CourseScheduleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		Worker:         NewWorkerRepo(db),
		Assignment:     NewAssignmentRepo(db),
		Semester:       NewSemesterRepo(db),
		CourseSchedule: NewCourseScheduleRepo(db),
	}
}

// BeginTx 开启事务
//
// 未绑定数据库（单元测试中使用 mock 仓储）时返回 nil，调用方据此跳过提交与回滚。
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
