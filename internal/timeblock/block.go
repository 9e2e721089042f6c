// Package timeblock 周循环时间块引擎
//
// 时间统一以"距零点的分钟数"表示，星期为封闭枚举；字符串形式（"HH:MM"、
// 单字母星期）只在输入/输出边界转换。
package timeblock

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MinutesPerDay 一天的分钟数，时间块结束边界的上限
const MinutesPerDay = 24 * 60

// Block 单个周循环时间块，区间为左闭右开 [Start, End)
type Block struct {
	Day   Day `json:"day"`
	Start int `json:"start_minutes"`
	End   int `json:"end_minutes"`
}

// New 构造时间块（不做校验）
func New(day Day, start, end int) Block {
	return Block{Day: day, Start: start, End: end}
}

// Valid 满足 0 <= Start < End <= 1440 且星期合法
func (b Block) Valid() bool {
	return b.Day.Valid() && b.Start >= 0 && b.Start < b.End && b.End <= MinutesPerDay
}

// Minutes 时长（分钟）
func (b Block) Minutes() int { return b.End - b.Start }

// String 形如 "M 09:00-12:00"
func (b Block) String() string {
	return fmt.Sprintf("%s %s-%s", b.Day.Code(), FormatClock(b.Start), FormatClock(b.End))
}

// Span 不含星期的时间段文本 "09:00-12:00"
func (b Block) Span() string {
	return FormatClock(b.Start) + "-" + FormatClock(b.End)
}

// ParseClock 解析 "HH:MM" 为分钟偏移
//
// 表单可能处于半输入状态，因此格式错误返回 false 而非 error。
// 允许 "24:00" 表示一天的结束。
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return 0, false
	}
	total := h*60 + m
	if total > MinutesPerDay {
		return 0, false
	}
	return total, true
}

// isDigits 仅含 ASCII 数字（strconv.Atoi 会接受正负号）
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseStoredClock 兼容持久化层可能返回的 "HH:MM:SS"
func parseStoredClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 8 && s[5] == ':' && s[6:] == "00" {
		s = s[:5]
	}
	return ParseClock(s)
}

// FormatClock 分钟偏移转 "HH:MM"
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Parse 由边界字符串构造时间块，任一字段非法或区间无效时返回 false
func Parse(dayCode, start, end string) (Block, bool) {
	d, ok := ParseDay(dayCode)
	if !ok {
		return Block{}, false
	}
	s, ok := parseStoredClock(start)
	if !ok {
		return Block{}, false
	}
	e, ok := parseStoredClock(end)
	if !ok {
		return Block{}, false
	}
	b := Block{Day: d, Start: s, End: e}
	if !b.Valid() {
		return Block{}, false
	}
	return b, true
}

// Overlaps 同一天且区间相交；端点相接不算重叠
func Overlaps(a, b Block) bool {
	return a.Day == b.Day && a.Start < b.End && b.Start < a.End
}

// Touches 同一天且相交或相邻（合并规则使用）
func Touches(a, b Block) bool {
	return a.Day == b.Day && a.End >= b.Start && a.Start <= b.End
}

// Contains a 是否完整覆盖 b
func Contains(a, b Block) bool {
	return a.Day == b.Day && a.Start <= b.Start && b.End <= a.End
}

// Compare 按 (day, start, end) 排序
func Compare(a, b Block) int {
	switch {
	case a.Day != b.Day:
		return cmpInt(int(a.Day), int(b.Day))
	case a.Start != b.Start:
		return cmpInt(a.Start, b.Start)
	default:
		return cmpInt(a.End, b.End)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Sort 原地稳定排序
func Sort(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return Compare(blocks[i], blocks[j]) < 0
	})
}

// Sorted 返回排序后的副本
func Sorted(blocks []Block) []Block {
	out := append([]Block(nil), blocks...)
	Sort(out)
	return out
}

// OnDay 过滤出指定星期的时间块（保持原顺序）
func OnDay(blocks []Block, day Day) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Day == day {
			out = append(out, b)
		}
	}
	return out
}

// Strings 格式化为 "M 09:00-12:00" 列表，按 (day, start) 排序
func Strings(blocks []Block) []string {
	sorted := Sorted(blocks)
	out := make([]string, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, b.String())
	}
	return out
}
