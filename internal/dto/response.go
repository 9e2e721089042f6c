package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 50
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 状态参考点 ──

// ReferenceQuery 状态计算的参考点参数
//
// 优先级：at（单一日期）> semester_id（指定学期窗口）> 启用学期 > 配置窗口 > 当前时刻。
type ReferenceQuery struct {
	At         string `form:"at"          binding:"omitempty"` // YYYY-MM-DD
	SemesterID string `form:"semester_id" binding:"omitempty"`
}

// ReferenceInfo 实际采用的参考点
type ReferenceInfo struct {
	Mode       string `json:"mode"` // instant | semester | window
	At         string `json:"at,omitempty"`
	SemesterID string `json:"semester_id,omitempty"`
	Name       string `json:"name,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}
