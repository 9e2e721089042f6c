package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/service"
	"faculty-schedules/backend/pkg/response"
)

// WorkerHandler 人员模块 HTTP 处理器
type WorkerHandler struct {
	workerSvc service.WorkerService
}

// NewWorkerHandler 创建 WorkerHandler
func NewWorkerHandler(workerSvc service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workerSvc: workerSvc}
}

// ListWorkers 人员列表（支持按状态、部门、关键字过滤）
// GET /api/v1/workers
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	var req dto.WorkerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	list, total, err := h.workerSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetWorker 人员详情（含全部任务）
// GET /api/v1/workers/:id
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	id, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}
	var q dto.ReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	worker, err := h.workerSvc.GetByID(c.Request.Context(), id, q)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, worker)
}

// GetWorkerSummary 人员状态、工时与薪资汇总
// GET /api/v1/workers/:id/summary
func (h *WorkerHandler) GetWorkerSummary(c *gin.Context) {
	id, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}
	var q dto.ReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	summary, err := h.workerSvc.Summary(c.Request.Context(), id, q)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, summary)
}

// CreateWorker 新建人员
// POST /api/v1/workers
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req dto.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.Created(c, worker)
}

// UpdateWorker 更新人员（需携带 version）
// PUT /api/v1/workers/:id
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	id, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}

	var req dto.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, worker)
}

// DeleteWorker 删除人员及其全部任务
// DELETE /api/v1/workers/:id
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	id, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.workerSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 错误映射 ──

func (h *WorkerHandler) handleWorkerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20001, "人员不存在")
	case errors.Is(err, service.ErrWorkerDateInvalid):
		response.BadRequest(c, 20002, err.Error())
	case errors.Is(err, service.ErrVersionConflict):
		response.Conflict(c, 20003, "数据已被他人修改，请刷新后重试")
	case errors.Is(err, service.ErrReferenceInvalid):
		response.BadRequest(c, 40004, "参考日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 40001, "学期不存在")
	default:
		response.InternalError(c)
	}
}
