package model

import (
	"time"

	"gorm.io/gorm"
)

// Semester 学期表 — 对应 semesters
//
// 启用中的学期作为状态计算的默认窗口。
type Semester struct {
	SemesterID string    `gorm:"type:uuid;primaryKey"       json:"semester_id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	StartDate  time.Time `gorm:"type:date;not null"         json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null"         json:"end_date"`
	IsActive   bool      `gorm:"not null;default:false"     json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// BeforeCreate 生成主键
func (s *Semester) BeforeCreate(*gorm.DB) error {
	newID(&s.SemesterID)
	return nil
}
