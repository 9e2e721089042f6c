package service

import (
	"strings"
	"time"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/roster"
	"faculty-schedules/backend/internal/timeblock"
)

// ── 持久化模型 ↔ 排班引擎 ──

const dateLayout = "2006-01-02"

// toBlocks 存储的时间块转为引擎时间块，损坏的行直接跳过，结果已合并排序
func toBlocks(rows []model.AssignmentBlock) []timeblock.Block {
	blocks := make([]timeblock.Block, 0, len(rows))
	for _, r := range rows {
		if b, ok := timeblock.Parse(r.Day, r.StartTime, r.EndTime); ok {
			blocks = append(blocks, b)
		}
	}
	return timeblock.Normalize(blocks)
}

// fromBlocks 引擎时间块转为存储行
func fromBlocks(blocks []timeblock.Block) []model.AssignmentBlock {
	rows := make([]model.AssignmentBlock, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, model.AssignmentBlock{
			Day:       b.Day.Code(),
			StartTime: timeblock.FormatClock(b.Start),
			EndTime:   timeblock.FormatClock(b.End),
		})
	}
	return rows
}

func toRosterAssignment(a *model.Assignment) roster.Assignment {
	return roster.Assignment{
		ID:         a.AssignmentID,
		Title:      a.Title,
		Supervisor: a.Supervisor,
		HourlyRate: a.HourlyRate,
		Locations:  []string(a.Locations),
		Blocks:     toBlocks(a.Blocks),
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
	}
}

// toRosterWorker 人员及其任务转为领域模型
func toRosterWorker(w *model.Worker) roster.Worker {
	rw := roster.Worker{
		ID:        w.WorkerID,
		Name:      w.Name,
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		IsActive:  w.IsActive,
	}
	for i := range w.Assignments {
		rw.Assignments = append(rw.Assignments, toRosterAssignment(&w.Assignments[i]))
	}
	return rw
}

// ── 日期输入 ──

// parseDateInput 解析可选日期：nil 表示未提供，空字符串表示清除
func parseDateInput(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	d := lifecycle.ParseDate(*s)
	if d == nil {
		return nil, false
	}
	return d, true
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// rangeOrdered 两端都存在时要求 start <= end
func rangeOrdered(start, end *time.Time) bool {
	return start == nil || end == nil || !end.Before(*start)
}

// ── 响应构造 ──

func toBlockResponses(blocks []timeblock.Block, w timeblock.Window) []dto.BlockResponse {
	out := make([]dto.BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, dto.BlockResponse{
			Day:     b.Day.Code(),
			Start:   timeblock.FormatClock(b.Start),
			End:     timeblock.FormatClock(b.End),
			Label:   b.String(),
			Hours:   float64(b.Minutes()) / 60,
			Outside: !b.Day.Editable() || !w.Admits(b.Start, b.End),
		})
	}
	return out
}

func toAssignmentResponse(w roster.Worker, m *model.Assignment, ref lifecycle.Reference, win timeblock.Window) dto.AssignmentResponse {
	a := toRosterAssignment(m)
	locations := a.Locations
	if locations == nil {
		locations = []string{}
	}
	return dto.AssignmentResponse{
		ID:          m.AssignmentID,
		WorkerID:    m.WorkerID,
		Title:       m.Title,
		Supervisor:  m.Supervisor,
		HourlyRate:  m.HourlyRate,
		Locations:   locations,
		StartDate:   formatDate(m.StartDate),
		EndDate:     formatDate(m.EndDate),
		Status:      w.AssignmentStatus(a, ref),
		WeeklyHours: a.WeeklyHours(),
		WeeklyPay:   roster.RoundCents(roster.WeeklyPay(a)),
		Blocks:      toBlockResponses(a.Blocks, win),
		Version:     m.Version,
	}
}

func toWorkerResponse(m *model.Worker, ref lifecycle.Reference, win timeblock.Window) dto.WorkerResponse {
	w := toRosterWorker(m)
	totals := roster.TotalsOf(w)
	resp := dto.WorkerResponse{
		ID:          m.WorkerID,
		Name:        m.Name,
		Email:       m.Email,
		Department:  m.Department,
		Notes:       m.Notes,
		StartDate:   formatDate(m.StartDate),
		EndDate:     formatDate(m.EndDate),
		IsActive:    m.IsActive,
		Status:      w.Status(ref),
		WeeklyHours: totals.Hours,
		WeeklyPay:   roster.RoundCents(totals.Pay),
		Version:     m.Version,
		Assignments: make([]dto.AssignmentResponse, 0, len(m.Assignments)),
	}
	for i := range m.Assignments {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(w, &m.Assignments[i], ref, win))
	}
	return resp
}
