package dto

import "faculty-schedules/backend/internal/lifecycle"

// ── 人员模块 DTO ──

// CreateWorkerRequest 创建人员请求
type CreateWorkerRequest struct {
	Name       string  `json:"name"       binding:"required,min=1,max=100"`
	Email      string  `json:"email"      binding:"omitempty,email"`
	Department string  `json:"department" binding:"omitempty,max=100"`
	Notes      string  `json:"notes"      binding:"omitempty,max=2000"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	IsActive   *bool   `json:"is_active"` // 缺省为 true
}

// UpdateWorkerRequest 更新人员请求；Version 为客户端读取时的版本号
type UpdateWorkerRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Notes      *string `json:"notes"      binding:"omitempty,max=2000"`
	StartDate  *string `json:"start_date"` // 空字符串表示清除
	EndDate    *string `json:"end_date"`
	IsActive   *bool   `json:"is_active"`
	Version    int     `json:"version"    binding:"required,min=1"`
}

// WorkerListRequest 人员列表查询
type WorkerListRequest struct {
	PaginationRequest
	ReferenceQuery
	Active     *bool  `form:"active"`
	Status     string `form:"status"     binding:"omitempty,oneof=active upcoming ended inactive partial"`
	Department string `form:"department"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=100"`
}

// WorkerResponse 人员信息与派生状态
type WorkerResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email,omitempty"`
	Department  string               `json:"department,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	StartDate   string               `json:"start_date,omitempty"`
	EndDate     string               `json:"end_date,omitempty"`
	IsActive    bool                 `json:"is_active"`
	Status      lifecycle.Status     `json:"status"`
	WeeklyHours float64              `json:"weekly_hours"`
	WeeklyPay   float64              `json:"weekly_pay"`
	Version     int                  `json:"version"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// WorkerSummaryResponse 人员汇总
//
// Totals 累加全部任务；ActiveTotals 只累加参考点下进行中的任务。
type WorkerSummaryResponse struct {
	WorkerID     string              `json:"worker_id"`
	Name         string              `json:"name"`
	Status       lifecycle.Status    `json:"status"`
	Reference    ReferenceInfo       `json:"reference"`
	Totals       TotalsResponse      `json:"totals"`
	ActiveTotals TotalsResponse      `json:"active_totals"`
	Assignments  []AssignmentSummary `json:"assignments"`
}

// TotalsResponse 工时与薪资合计
type TotalsResponse struct {
	WeeklyHours float64 `json:"weekly_hours"`
	WeeklyPay   float64 `json:"weekly_pay"`
}

// AssignmentSummary 单个任务的汇总行
type AssignmentSummary struct {
	AssignmentID string           `json:"assignment_id"`
	Title        string           `json:"title"`
	Status       lifecycle.Status `json:"status"`
	HourlyRate   float64          `json:"hourly_rate"`
	WeeklyHours  float64          `json:"weekly_hours"`
	WeeklyPay    float64          `json:"weekly_pay"`
	Blocks       []string         `json:"blocks"`
}
