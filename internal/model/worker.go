package model

import (
	"time"

	"gorm.io/gorm"
)

// Worker 人员表 — 对应 workers
type Worker struct {
	WorkerID   string     `gorm:"type:uuid;primaryKey"       json:"worker_id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	Email      string     `gorm:"type:varchar(255)"          json:"email,omitempty"`
	Department string     `gorm:"type:varchar(100)"          json:"department,omitempty"`
	Notes      string     `gorm:"type:text"                  json:"notes,omitempty"`
	StartDate  *time.Time `gorm:"type:date"                  json:"start_date,omitempty"`
	EndDate    *time.Time `gorm:"type:date"                  json:"end_date,omitempty"`
	IsActive   bool       `gorm:"not null"                   json:"is_active"`
	VersionedModel

	// 关联
	Assignments []Assignment `gorm:"foreignKey:WorkerID;references:WorkerID" json:"assignments,omitempty"`
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// BeforeCreate 生成主键
func (w *Worker) BeforeCreate(*gorm.DB) error {
	newID(&w.WorkerID)
	return nil
}
