// Package roster 人员与岗位任务的领域模型
//
// 负责有效日期区间的推导与状态汇总，持久化层的记录在进入此包前
// 统一规整为多任务形式。
package roster

import (
	"time"

	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/timeblock"
)

// Assignment 人员承担的一项岗位任务
type Assignment struct {
	ID         string
	Title      string
	Supervisor string
	HourlyRate string
	Locations  []string
	Blocks     []timeblock.Block
	StartDate  *time.Time
	EndDate    *time.Time
}

// WeeklyHours 每周工时
func (a Assignment) WeeklyHours() float64 {
	return timeblock.WeeklyHours(a.Blocks)
}

// Worker 人员
type Worker struct {
	ID          string
	Name        string
	Assignments []Assignment
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    bool
}

// EffectiveRange 任务的有效区间：逐字段取任务自身值，缺失时回退到人员区间
func (w Worker) EffectiveRange(a Assignment) lifecycle.Range {
	r := lifecycle.Range{Start: a.StartDate, End: a.EndDate}
	if r.Start == nil {
		r.Start = w.StartDate
	}
	if r.End == nil {
		r.End = w.EndDate
	}
	return r
}

// AssignmentStatus 单个任务的状态
func (w Worker) AssignmentStatus(a Assignment, ref lifecycle.Reference) lifecycle.Status {
	return lifecycle.Evaluate(w.EffectiveRange(a), !w.IsActive, ref)
}

// AssignmentStatuses 按任务顺序返回各自状态
func (w Worker) AssignmentStatuses(ref lifecycle.Reference) []lifecycle.Status {
	out := make([]lifecycle.Status, len(w.Assignments))
	for i, a := range w.Assignments {
		out[i] = w.AssignmentStatus(a, ref)
	}
	return out
}

// Status 人员汇总状态；没有任务时按人员自身区间判定
func (w Worker) Status(ref lifecycle.Reference) lifecycle.Status {
	if !w.IsActive {
		return lifecycle.Inactive
	}
	if len(w.Assignments) == 0 {
		return lifecycle.Evaluate(lifecycle.Range{Start: w.StartDate, End: w.EndDate}, false, ref)
	}
	return lifecycle.Aggregate(w.AssignmentStatuses(ref))
}

// Blocks 汇总所有任务的时间块，按 (day, start) 排序，不做跨任务合并
func (w Worker) Blocks() []timeblock.Block {
	var out []timeblock.Block
	for _, a := range w.Assignments {
		out = append(out, a.Blocks...)
	}
	timeblock.Sort(out)
	return out
}

// Filter 返回满足条件的任务副本
func (w Worker) Filter(pred func(Assignment) bool) Worker {
	cp := w
	cp.Assignments = nil
	for _, a := range w.Assignments {
		if pred(a) {
			cp.Assignments = append(cp.Assignments, a)
		}
	}
	return cp
}

// WithStatus 构造按状态过滤的谓词
func (w Worker) WithStatus(ref lifecycle.Reference, statuses ...lifecycle.Status) func(Assignment) bool {
	return func(a Assignment) bool {
		s := w.AssignmentStatus(a, ref)
		for _, want := range statuses {
			if s == want {
				return true
			}
		}
		return false
	}
}
