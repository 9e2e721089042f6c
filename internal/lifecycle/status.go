// Package lifecycle 任务与人员的生命周期状态推导
//
// 状态只由日期区间与参考点（单一时刻或学期窗口）计算得出，不落库。
package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Status 生命周期状态
type Status int

const (
	Inactive Status = iota
	Active
	Upcoming
	Ended
	// Partial 仅用于人员汇总：同时存在进行中与已结束的任务
	Partial
)

var statusNames = [...]string{"inactive", "active", "upcoming", "ended", "partial"}

func (s Status) String() string {
	if s < Inactive || s > Partial {
		return "inactive"
	}
	return statusNames[s]
}

// MarshalText JSON 中以小写字符串输出
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析状态字符串
func (s *Status) UnmarshalText(b []byte) error {
	v, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("未知状态: %q", string(b))
	}
	*s = v
	return nil
}

// ParseStatus 大小写不敏感地解析状态
func ParseStatus(v string) (Status, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range statusNames {
		if v == name {
			return Status(i), true
		}
	}
	return Inactive, false
}

// Range 任务或人员的起止日期，End 为空表示无限期
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Window 学期窗口，缺失的边界视为 ±∞
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Reference 状态计算的参考点：Window 非空时按窗口计算，否则按 Now
type Reference struct {
	Window *Window
	Now    time.Time
}

// At 单一时刻参考点
func At(now time.Time) Reference { return Reference{Now: now} }

// Within 学期窗口参考点
func Within(w Window) Reference { return Reference{Window: &w} }

// day 截断到自然日（日期不携带时刻）
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClassifyAt 以单一时刻判定
//
// now < start → Upcoming；end 存在且 now > end → Ended；其余 Active。
// start 缺失 → Inactive。
func ClassifyAt(r Range, now time.Time) Status {
	if r.Start == nil {
		return Inactive
	}
	n := day(now)
	if n.Before(day(*r.Start)) {
		return Upcoming
	}
	if r.End != nil && n.After(day(*r.End)) {
		return Ended
	}
	return Active
}

// ClassifyWithin 以学期窗口判定
//
// 区间与窗口相交 → Active；start 严格晚于 window.end → Upcoming；
// end 严格早于 window.start → Ended。缺失边界一律按 ±∞ 处理，
// 因此与窗口不相交时必有一侧边界存在，最后的 Inactive 分支只作兜底。
func ClassifyWithin(r Range, w Window) Status {
	if r.Start == nil {
		return Inactive
	}
	start := day(*r.Start)

	// start > window.end
	if w.End != nil && start.After(day(*w.End)) {
		return Upcoming
	}
	// end < window.start
	if r.End != nil && w.Start != nil && day(*r.End).Before(day(*w.Start)) {
		return Ended
	}
	// 两侧都未分离即相交：start <= w.end 且 end >= w.start（缺失边界视为无穷）
	if r.End != nil && day(*r.End).Before(start) {
		// 起止颠倒的脏数据
		return Inactive
	}
	return Active
}

// Evaluate 完整的状态判定入口
//
// 显式停用标记优先；随后依据参考点选择窗口或时刻模式。
func Evaluate(r Range, inactive bool, ref Reference) Status {
	if inactive {
		return Inactive
	}
	if ref.Window != nil {
		return ClassifyWithin(r, *ref.Window)
	}
	now := ref.Now
	if now.IsZero() {
		now = time.Now()
	}
	return ClassifyAt(r, now)
}

// Aggregate 汇总多个任务状态为人员状态
//
// 同时存在 Active 与 Ended → Partial；否则任一 Active → Active；
// 任一 Upcoming → Upcoming；任一 Ended → Ended；其余 Inactive。
func Aggregate(statuses []Status) Status {
	var active, upcoming, ended bool
	for _, s := range statuses {
		switch s {
		case Active:
			active = true
		case Upcoming:
			upcoming = true
		case Ended:
			ended = true
		case Partial:
			active, ended = true, true
		}
	}
	switch {
	case active && ended:
		return Partial
	case active:
		return Active
	case upcoming:
		return Upcoming
	case ended:
		return Ended
	default:
		return Inactive
	}
}

// ParseDate 宽松解析 ISO-8601 日期（"2006-01-02" 或 RFC 3339），失败返回 nil
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := day(t)
			return &d
		}
	}
	return nil
}
