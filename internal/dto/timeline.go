package dto

import "faculty-schedules/backend/internal/lifecycle"

// ── 时间轴 DTO ──

// TimelineQuery 时间轴查询参数
type TimelineQuery struct {
	ReferenceQuery
	// 为 true 时只展示参考点下进行中的任务
	ActiveOnly bool `form:"active_only"`
	// 为 true 时叠加课表等外部时间块
	IncludeCourses bool `form:"include_courses"`
}

// TimelineEntry 时间轴上的一个块及其泳道位置
type TimelineEntry struct {
	Kind         string            `json:"kind"` // assignment | course
	WorkerID     string            `json:"worker_id"`
	WorkerName   string            `json:"worker_name,omitempty"`
	AssignmentID string            `json:"assignment_id,omitempty"`
	Title        string            `json:"title"`
	Location     string            `json:"location,omitempty"`
	Status       *lifecycle.Status `json:"status,omitempty"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	StartMinutes int               `json:"start_minutes"`
	EndMinutes   int               `json:"end_minutes"`
	Lane         int               `json:"lane"`
	LaneCount    int               `json:"lane_count"`
	Cluster      int               `json:"cluster"`
	Left         float64           `json:"left_percent"`
	Width        float64           `json:"width_percent"`
}

// TimelineDay 一天的时间轴
type TimelineDay struct {
	Day     string          `json:"day"`
	Name    string          `json:"name"`
	Entries []TimelineEntry `json:"entries"`
}

// WeekTimelineResponse 人员周时间轴
type WeekTimelineResponse struct {
	WorkerID  string           `json:"worker_id"`
	Name      string           `json:"name"`
	Status    lifecycle.Status `json:"status"`
	Reference ReferenceInfo    `json:"reference"`
	Days      []TimelineDay    `json:"days"`
}

// DayTimelineResponse 部门单日时间轴
type DayTimelineResponse struct {
	Reference ReferenceInfo `json:"reference"`
	TimelineDay
}
