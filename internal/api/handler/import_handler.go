package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/service"
	"faculty-schedules/backend/pkg/response"
)

// ImportHandler 课表与人员记录导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportICS 导入 ICS 课表
// POST /api/v1/workers/:id/courses/ics
//
// multipart 上传 file 字段，或以 JSON / 表单提供 url。
func (h *ImportHandler) ImportICS(c *gin.Context) {
	workerID, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if file, _, err := c.Request.FormFile("file"); err == nil {
			defer file.Close()
			resp, err := h.importSvc.ImportICS(c.Request.Context(), workerID, file, c.PostForm("semester_id"), callerID)
			if err != nil {
				h.handleImportError(c, err)
				return
			}
			response.OK(c, resp)
			return
		}
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "请上传 ICS 文件或提供链接")
		return
	}

	resp, err := h.importSvc.ImportICSFromURL(c.Request.Context(), workerID, &req, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListCourses 人员课表
// GET /api/v1/workers/:id/courses?semester_id=xxx
func (h *ImportHandler) ListCourses(c *gin.Context) {
	workerID, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}

	courses, err := h.importSvc.ListCourses(c.Request.Context(), workerID, c.Query("semester_id"))
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// CreateCourse 手工录入课表
// POST /api/v1/workers/:id/courses
func (h *ImportHandler) CreateCourse(c *gin.Context) {
	workerID, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.importSvc.CreateCourse(c.Request.Context(), workerID, &req, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.Created(c, course)
}

// DeleteCourse 删除课表条目
// DELETE /api/v1/courses/:id
func (h *ImportHandler) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id", "课表ID")
	if !ok {
		return
	}

	if err := h.importSvc.DeleteCourse(c.Request.Context(), id); err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportRoster 批量导入人员记录（JSON 数组，兼容旧版单岗位格式）
// POST /api/v1/workers/import
func (h *ImportHandler) ImportRoster(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			return
		}
		response.BadRequest(c, response.CodeBadRequest, "读取请求体失败")
		return
	}

	resp, err := h.importSvc.ImportRoster(c.Request.Context(), data, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, resp)
}

// ── 错误映射 ──

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20001, "人员不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 40001, "学期不存在")
	case errors.Is(err, service.ErrICSSourceMissing):
		response.BadRequest(c, 50001, "请上传 ICS 文件或提供链接")
	case errors.Is(err, service.ErrICSFetchFailed):
		response.ErrorWithDetails(c, http.StatusBadGateway, 50002, "ICS 链接获取失败", err.Error())
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 50003, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 50004, "课表条目不存在")
	case errors.Is(err, service.ErrCourseInvalid):
		response.Unprocessable(c, 50005, "课表时间无效")
	case errors.Is(err, service.ErrRosterInvalid):
		response.BadRequest(c, 50006, "人员记录格式无效")
	default:
		response.InternalError(c)
	}
}
