package model

import "gorm.io/gorm"

// CourseSchedule 课表表 — 对应 course_schedules
//
// 外部来源（ICS 导入或手工录入）的只读时间块，可能落在周末或可编辑时段之外，
// 只参与时间轴展示，不参与工时与薪资计算。
type CourseSchedule struct {
	CourseScheduleID string  `gorm:"type:uuid;primaryKey"                     json:"course_schedule_id"`
	WorkerID         string  `gorm:"type:uuid;not null;index"                 json:"worker_id"`
	SemesterID       *string `gorm:"type:uuid"                                json:"semester_id,omitempty"`
	CourseName       string  `gorm:"type:varchar(200);not null"               json:"course_name"`
	Location         string  `gorm:"type:varchar(100)"                        json:"location,omitempty"`
	Day              string  `gorm:"type:char(1);not null"                    json:"day"`
	StartTime        string  `gorm:"type:varchar(5);not null"                 json:"start_time"`
	EndTime          string  `gorm:"type:varchar(5);not null"                 json:"end_time"`
	Source           string  `gorm:"type:varchar(20);not null;default:'ics'"  json:"source"` // ics | manual
	SoftDeleteModel
}

// TableName 指定表名
func (CourseSchedule) TableName() string { return "course_schedules" }

// BeforeCreate 生成主键
func (c *CourseSchedule) BeforeCreate(*gorm.DB) error {
	newID(&c.CourseScheduleID)
	return nil
}
