package timeblock

import "strings"

// Day 星期枚举（周一为 0）
//
// 编辑路径只接受周一至周五；展示路径接受全部 7 天，
// 以兼容系统其他位置记录的外部数据（如晚间兼职、ICS 课表）。
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// dayCodes 单字母编码，与持久化层约定一致（R = Thursday, U = Sunday）
var dayCodes = [...]string{"M", "T", "W", "R", "F", "S", "U"}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays 可编辑的工作日集合
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// AllDays 展示用的完整一周
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid 是否为已知的星期值
func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

// Editable 是否允许在编辑器中创建时间块
func (d Day) Editable() bool { return d >= Monday && d <= Friday }

// Code 单字母编码
func (d Day) Code() string {
	if !d.Valid() {
		return "?"
	}
	return dayCodes[d]
}

// String 英文全称
func (d Day) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return dayNames[d]
}

// ISO 转为 ISO 8601 星期编号（1=周一 … 7=周日）
func (d Day) ISO() int { return int(d) + 1 }

// DayFromISO ISO 星期编号转 Day，越界返回 false
func DayFromISO(n int) (Day, bool) {
	d := Day(n - 1)
	return d, d.Valid()
}

// ParseDay 解析星期编码
//
// 接受单字母编码（M/T/W/R/F/S/U）、三字母缩写（Mon/Thu…）以及英文全称，
// 大小写不敏感。无法识别时返回 false，不报错。
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if len(s) == 1 {
		up := strings.ToUpper(s)
		for i, c := range dayCodes {
			if c == up {
				return Day(i), true
			}
		}
		return 0, false
	}
	lower := strings.ToLower(s)
	for i, name := range dayNames {
		n := strings.ToLower(name)
		if lower == n || lower == n[:3] {
			return Day(i), true
		}
	}
	switch lower {
	case "tu", "tue", "tues":
		return Tuesday, true
	case "th", "thur", "thurs":
		return Thursday, true
	}
	return 0, false
}
