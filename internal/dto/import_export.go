package dto

// ── 导入导出 DTO ──

// ImportICSRequest ICS 导入请求（URL 方式；文件方式走 multipart）
type ImportICSRequest struct {
	URL        string `json:"url"         form:"url"         binding:"omitempty,url"`
	SemesterID string `json:"semester_id" form:"semester_id" binding:"omitempty"`
}

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCount int                   `json:"imported_count"`
	SkippedCount  int                   `json:"skipped_count"`
	Events        []ImportedCourseEvent `json:"events"`
}

// ImportedCourseEvent 导入的课程
type ImportedCourseEvent struct {
	Name      string `json:"name"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location,omitempty"`
}

// CreateCourseRequest 手工录入课表
type CreateCourseRequest struct {
	CourseName string `json:"course_name" binding:"required,max=200"`
	Location   string `json:"location"    binding:"omitempty,max=100"`
	SemesterID string `json:"semester_id" binding:"omitempty"`
	BlockInput
}

// CourseResponse 课表条目
type CourseResponse struct {
	ID         string `json:"id"`
	WorkerID   string `json:"worker_id"`
	SemesterID string `json:"semester_id,omitempty"`
	CourseName string `json:"course_name"`
	Location   string `json:"location,omitempty"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Source     string `json:"source"`
}

// RosterImportResponse 人员记录批量导入结果
type RosterImportResponse struct {
	Created int                 `json:"created"`
	Legacy  int                 `json:"legacy"` // 其中旧版单岗位记录数
	Failed  []RosterImportError `json:"failed,omitempty"`
	Workers []string            `json:"workers"`
}

// RosterImportError 单条记录导入失败
type RosterImportError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}
