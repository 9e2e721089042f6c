package dto

import "faculty-schedules/backend/internal/lifecycle"

// ── 岗位任务 DTO ──

// BlockInput 时间块输入，day 为单字母星期代码或星期名
type BlockInput struct {
	Day   string `json:"day"   binding:"required"`
	Start string `json:"start" binding:"required"` // HH:MM
	End   string `json:"end"   binding:"required"`
}

// CreateAssignmentRequest 创建任务请求
type CreateAssignmentRequest struct {
	Title      string       `json:"title"       binding:"required,min=1,max=100"`
	Supervisor string       `json:"supervisor"  binding:"omitempty,max=100"`
	HourlyRate string       `json:"hourly_rate" binding:"omitempty,max=32"`
	Locations  []string     `json:"locations"   binding:"omitempty,max=20,dive,max=100"`
	StartDate  *string      `json:"start_date"`
	EndDate    *string      `json:"end_date"`
	Blocks     []BlockInput `json:"blocks"      binding:"omitempty,max=50,dive"`
}

// UpdateAssignmentRequest 更新任务字段（不含时间块）
type UpdateAssignmentRequest struct {
	Title      *string   `json:"title"       binding:"omitempty,min=1,max=100"`
	Supervisor *string   `json:"supervisor"  binding:"omitempty,max=100"`
	HourlyRate *string   `json:"hourly_rate" binding:"omitempty,max=32"`
	Locations  *[]string `json:"locations"`
	StartDate  *string   `json:"start_date"` // 空字符串表示清除（回退到人员日期）
	EndDate    *string   `json:"end_date"`
	Version    int       `json:"version"     binding:"required,min=1"`
}

// BlockEditRequest 精确添加或删除时间块
type BlockEditRequest struct {
	BlockInput
	Version int `json:"version" binding:"required,min=1"`
}

// ToggleCellRequest 网格单元切换
type ToggleCellRequest struct {
	Day     string `json:"day"     binding:"required"`
	Start   string `json:"start"   binding:"required"` // 单元起始 HH:MM
	Version int    `json:"version" binding:"required,min=1"`
}

// BlockResponse 时间块
type BlockResponse struct {
	Day     string  `json:"day"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Label   string  `json:"label"`
	Hours   float64 `json:"hours"`
	Outside bool    `json:"outside_window,omitempty"` // 落在可编辑时段之外（只读展示）
}

// AssignmentResponse 任务信息
type AssignmentResponse struct {
	ID          string           `json:"id"`
	WorkerID    string           `json:"worker_id"`
	Title       string           `json:"title"`
	Supervisor  string           `json:"supervisor,omitempty"`
	HourlyRate  string           `json:"hourly_rate,omitempty"`
	Locations   []string         `json:"locations"`
	StartDate   string           `json:"start_date,omitempty"`
	EndDate     string           `json:"end_date,omitempty"`
	Status      lifecycle.Status `json:"status"`
	WeeklyHours float64          `json:"weekly_hours"`
	WeeklyPay   float64          `json:"weekly_pay"`
	Blocks      []BlockResponse  `json:"blocks"`
	Version     int              `json:"version"`
}

// GridResponse 周网格视图
type GridResponse struct {
	AssignmentID string    `json:"assignment_id"`
	Version      int       `json:"version"`
	Days         []string  `json:"days"`
	CellMinutes  int       `json:"cell_minutes"`
	Rows         []GridRow `json:"rows"`
}

// GridRow 网格行
type GridRow struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Covered []bool `json:"covered"`
}
