package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/service"
	"faculty-schedules/backend/internal/timeblock"
	"faculty-schedules/backend/pkg/response"
)

// AssignmentHandler 任务与时间块编辑 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// CreateAssignment 为人员新增任务
// POST /api/v1/workers/:id/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	workerID, ok := pathID(c, "id", "人员ID")
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Create(c.Request.Context(), workerID, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// GetAssignment 任务详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// UpdateAssignment 更新任务元数据
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// DeleteAssignment 删除任务
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddBlock 精确添加时间块（与同日相邻/重叠的块合并）
// POST /api/v1/assignments/:id/blocks
func (h *AssignmentHandler) AddBlock(c *gin.Context) {
	h.editBlock(c, h.assignmentSvc.AddBlock)
}

// RemoveBlock 从时间块中扣除一段，可能拆分原块
// POST /api/v1/assignments/:id/blocks/remove
func (h *AssignmentHandler) RemoveBlock(c *gin.Context) {
	h.editBlock(c, h.assignmentSvc.RemoveBlock)
}

type blockEditFunc func(ctx context.Context, id string, req *dto.BlockEditRequest, callerID string) (*dto.AssignmentResponse, error)

func (h *AssignmentHandler) editBlock(c *gin.Context, edit blockEditFunc) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	var req dto.BlockEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := edit(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// GetGrid 网格视图
// GET /api/v1/assignments/:id/grid
func (h *AssignmentHandler) GetGrid(c *gin.Context) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	grid, err := h.assignmentSvc.GetGrid(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, grid)
}

// ToggleCell 切换网格单元
// POST /api/v1/assignments/:id/grid/toggle
func (h *AssignmentHandler) ToggleCell(c *gin.Context) {
	id, ok := pathID(c, "id", "任务ID")
	if !ok {
		return
	}

	var req dto.ToggleCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grid, err := h.assignmentSvc.ToggleCell(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, grid)
}

// ── 错误映射 ──

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	var verr *timeblock.ValidationError
	switch {
	case errors.Is(err, timeblock.ErrDuplicate) && errors.As(err, &verr):
		response.Conflict(c, 30006, verr.Message)
	case errors.As(err, &verr):
		response.Unprocessable(c, 30005, verr.Message)
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 30001, "任务不存在")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20001, "人员不存在")
	case errors.Is(err, service.ErrAssignmentDateInvalid):
		response.BadRequest(c, 30002, err.Error())
	case errors.Is(err, service.ErrBlockInvalid):
		response.Unprocessable(c, 30003, "时间块无效")
	case errors.Is(err, service.ErrCellInvalid):
		response.Unprocessable(c, 30004, "网格单元不在可编辑范围内")
	case errors.Is(err, service.ErrVersionConflict):
		response.Conflict(c, 20003, "数据已被他人修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
