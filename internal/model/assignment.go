package model

import (
	"time"

	"gorm.io/gorm"
)

// Assignment 岗位任务表 — 对应 assignments
type Assignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey"       json:"assignment_id"`
	WorkerID     string     `gorm:"type:uuid;not null;index"   json:"worker_id"`
	Title        string     `gorm:"type:varchar(100);not null" json:"title"`
	Supervisor   string     `gorm:"type:varchar(100)"          json:"supervisor,omitempty"`
	HourlyRate   string     `gorm:"type:varchar(32)"           json:"hourly_rate,omitempty"` // 原样保存用户输入，如 "$12.50"
	Locations    StringList `gorm:"type:text"                  json:"locations,omitempty"`
	StartDate    *time.Time `gorm:"type:date"                  json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"type:date"                  json:"end_date,omitempty"`
	VersionedModel

	// 关联
	Blocks []AssignmentBlock `gorm:"foreignKey:AssignmentID;references:AssignmentID;constraint:OnDelete:CASCADE" json:"blocks,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// BeforeCreate 生成主键
func (a *Assignment) BeforeCreate(*gorm.DB) error {
	newID(&a.AssignmentID)
	return nil
}

// AssignmentBlock 任务每周时间块 — 对应 assignment_blocks
//
// 时间块随任务整体替换，不做软删除。
type AssignmentBlock struct {
	BlockID      string    `gorm:"type:uuid;primaryKey"                  json:"block_id"`
	AssignmentID string    `gorm:"type:uuid;not null;index"              json:"assignment_id"`
	Day          string    `gorm:"type:char(1);not null"                 json:"day"`        // M T W R F S U
	StartTime    string    `gorm:"type:varchar(5);not null"              json:"start_time"` // HH:MM
	EndTime      string    `gorm:"type:varchar(5);not null"              json:"end_time"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"created_at"`
}

// TableName 指定表名
func (AssignmentBlock) TableName() string { return "assignment_blocks" }

// BeforeCreate 生成主键
func (b *AssignmentBlock) BeforeCreate(*gorm.DB) error {
	newID(&b.BlockID)
	return nil
}
