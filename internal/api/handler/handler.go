package handler

import "faculty-schedules/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Semester   *SemesterHandler
	Worker     *WorkerHandler
	Assignment *AssignmentHandler
	Timeline   *TimelineHandler
	Import     *ImportHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合；revoker 可为 nil
func NewHandler(svc *service.Service, revoker TokenRevoker) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(revoker),
		Semester:   NewSemesterHandler(svc.Semester),
		Worker:     NewWorkerHandler(svc.Worker),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Timeline:   NewTimelineHandler(svc.Timeline),
		Import:     NewImportHandler(svc.Import),
		Export:     NewExportHandler(svc.Export),
	}
}
