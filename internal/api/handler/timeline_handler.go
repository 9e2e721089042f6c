package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/service"
	"faculty-schedules/backend/pkg/response"
)

// TimelineHandler 时间轴视图 HTTP 处理器
type TimelineHandler struct {
	timelineSvc service.TimelineService
}

// NewTimelineHandler 创建 TimelineHandler
func NewTimelineHandler(timelineSvc service.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineSvc: timelineSvc}
}

// GetWorkerWeek 单个人员的周时间轴
// GET /api/v1/workers/:id/timeline?active_only=true&include_courses=true
func (h *TimelineHandler) GetWorkerWeek(c *gin.Context) {
	id, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}
	var q dto.TimelineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	week, err := h.timelineSvc.WorkerWeek(c.Request.Context(), id, q)
	if err != nil {
		h.handleTimelineError(c, err)
		return
	}

	response.OK(c, week)
}

// GetDepartmentDay 部门某一天的时间轴
// GET /api/v1/timeline/:day?department=xxx
//
// 未指定 department 时使用当前用户所属部门；两者都为空时返回全部人员。
func (h *TimelineHandler) GetDepartmentDay(c *gin.Context) {
	day, ok := pathID(c, "day", "星期")
	if !ok {
		return
	}
	var q dto.TimelineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	department := c.Query("department")
	if department == "" {
		department = GetDepartment(c)
	}

	timeline, err := h.timelineSvc.DepartmentDay(c.Request.Context(), day, department, q)
	if err != nil {
		h.handleTimelineError(c, err)
		return
	}

	response.OK(c, timeline)
}

func (h *TimelineHandler) handleTimelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDayInvalid):
		response.BadRequest(c, 30007, "星期参数无效")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20001, "人员不存在")
	case errors.Is(err, service.ErrReferenceInvalid):
		response.BadRequest(c, 40004, "参考日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 40001, "学期不存在")
	default:
		response.InternalError(c)
	}
}
