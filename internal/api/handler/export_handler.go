package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/service"
	"faculty-schedules/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoster 导出人员周排班
// GET /api/v1/export/roster?department=xxx&at=YYYY-MM-DD&semester_id=xxx
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	var q dto.ReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), c.Query("department"), q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoWorkers):
		response.NotFound(c, 50101, "没有可导出的人员")
	case errors.Is(err, service.ErrReferenceInvalid):
		response.BadRequest(c, 40004, "参考日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 40001, "学期不存在")
	default:
		response.InternalError(c)
	}
}
