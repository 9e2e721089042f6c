package timeblock

import (
	"errors"
	"fmt"
)

// ── 编辑校验错误 ──
//
// 仅"精确录入"会向调用方报告错误；其余编辑操作对任何输入都返回新的块列表。

var (
	ErrDayNotEditable = errors.New("星期不在可编辑范围内")
	ErrClockInvalid   = errors.New("时间格式无效")
	ErrRangeInvalid   = errors.New("开始时间必须早于结束时间")
	ErrOutsideWindow  = errors.New("时间超出可编辑时段")
	ErrDuplicate      = errors.New("时间块已存在")
)

// ValidationError 可展示给用户的校验失败信息
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// Window 可编辑时段，新建时间块必须落在 [Start, End] 内
type Window struct {
	Start int
	End   int
}

// DefaultWindow 08:00–17:00
var DefaultWindow = Window{Start: 8 * 60, End: 17 * 60}

// ParseWindow 解析 "HH:MM" 边界，任一非法时回退到 DefaultWindow
func ParseWindow(start, end string) Window {
	s, ok1 := ParseClock(start)
	e, ok2 := ParseClock(end)
	if !ok1 || !ok2 || s >= e {
		return DefaultWindow
	}
	return Window{Start: s, End: e}
}

// Admits 区间是否完整落在时段内
func (w Window) Admits(start, end int) bool {
	return start >= w.Start && end <= w.End
}

// ────────────────────── Insert ──────────────────────

// Insert 插入时间块并与同日相交或相邻的块合并
//
// 同日已有块 ∪ {b} 按开始时间排序后做经典的区间合并扫描，其他日期的块原样保留。
// 返回按 (day, start) 排序的新切片，不修改入参。重复插入同一块结果不变。
func Insert(blocks []Block, b Block) []Block {
	if !b.Valid() {
		return Sorted(blocks)
	}

	out := make([]Block, 0, len(blocks)+1)
	candidates := []Block{b}
	for _, x := range blocks {
		if x.Day == b.Day {
			candidates = append(candidates, x)
		} else {
			out = append(out, x)
		}
	}

	Sort(candidates)
	merged := candidates[:1]
	for _, c := range candidates[1:] {
		last := &merged[len(merged)-1]
		if Touches(*last, c) {
			if c.End > last.End {
				last.End = c.End
			}
			continue
		}
		merged = append(merged, c)
	}

	out = append(out, merged...)
	Sort(out)
	return out
}

// ────────────────────── Remove ──────────────────────

// Remove 从同日所有相交的块中扣除 [b.Start, b.End)
//
// 完全被覆盖的块删除；一端重叠的块裁剪；严格包含删除区间的块拆分为左右两段。
// 长度为零的剩余段直接丢弃。
func Remove(blocks []Block, b Block) []Block {
	out := make([]Block, 0, len(blocks)+1)
	for _, x := range blocks {
		if !Overlaps(x, b) {
			out = append(out, x)
			continue
		}
		if Contains(b, x) {
			continue
		}
		if left := (Block{Day: x.Day, Start: x.Start, End: b.Start}); left.Valid() {
			out = append(out, left)
		}
		if right := (Block{Day: x.Day, Start: b.End, End: x.End}); right.Valid() {
			out = append(out, right)
		}
	}
	Sort(out)
	return out
}

// Normalize 将任意块列表整理为最小不重叠形式（逐个 Insert），丢弃非法块
func Normalize(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Valid() {
			out = Insert(out, b)
		}
	}
	return out
}

// ────────────────────── 精确录入 ──────────────────────

// AddPrecise 校验表单输入后插入
//
// 校验顺序：星期 → 时间格式 → start < end → 可编辑时段 → 重复块。
// 失败返回 *ValidationError（可用 errors.Is 匹配上面的哨兵错误），原列表不变。
func AddPrecise(blocks []Block, dayCode, start, end string, w Window) ([]Block, error) {
	day, ok := ParseDay(dayCode)
	if !ok || !day.Editable() {
		return blocks, invalid(ErrDayNotEditable, "星期 %q 不可编辑，仅支持周一至周五", dayCode)
	}
	s, ok := ParseClock(start)
	if !ok {
		return blocks, invalid(ErrClockInvalid, "开始时间 %q 格式无效，应为 HH:MM", start)
	}
	e, ok := ParseClock(end)
	if !ok {
		return blocks, invalid(ErrClockInvalid, "结束时间 %q 格式无效，应为 HH:MM", end)
	}
	if s >= e {
		return blocks, invalid(ErrRangeInvalid, "开始时间 %s 必须早于结束时间 %s", FormatClock(s), FormatClock(e))
	}
	if !w.Admits(s, e) {
		return blocks, invalid(ErrOutsideWindow, "时间须在 %s-%s 之间", FormatClock(w.Start), FormatClock(w.End))
	}
	nb := Block{Day: day, Start: s, End: e}
	for _, x := range blocks {
		if x == nb {
			return blocks, invalid(ErrDuplicate, "时间块 %s 已存在", nb)
		}
	}
	return Insert(blocks, nb), nil
}
