package service

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"faculty-schedules/backend/internal/model"
	"faculty-schedules/backend/internal/timeblock"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 课表折算为每周固定的 CourseSchedule。
//
//   - DTSTART/DTEND（或 DURATION）确定星期与时间段
//   - RRULE 的 UNTIL/COUNT 确定课程的起止日期，用于与学期窗口比对
//   - 同名、同星期、同时间段的事件去重（ICS 常以多个单次事件表示同一课程）
//   - 跨越零点或时长为零的事件跳过
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name     string
	Location string
	Block    timeblock.Block
	First    time.Time
	Last     *time.Time // nil 表示无限重复
}

// icsResult 解析结果与被跳过的事件数
type icsResult struct {
	Courses []model.CourseSchedule
	Events  []parsedCourseEvent
	Skipped int
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(client *http.Client, rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if client == nil {
		client = &http.Client{Timeout: icsFetchTimeout}
	}

	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseICS 解析 ICS 并折算到每周课表
//
// window 非空时只保留与学期窗口有交集的课程。loc 为课程本地时间所在时区。
func ParseICS(reader io.Reader, workerID string, semesterID *string, window *[2]time.Time, loc *time.Location) (*icsResult, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	type key struct {
		name  string
		block timeblock.Block
	}
	seen := make(map[key]bool)
	res := &icsResult{}

	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			res.Skipped++
			continue
		}
		if window != nil && !evt.intersects(window[0], window[1]) {
			res.Skipped++
			continue
		}
		k := key{name: evt.Name, block: evt.Block}
		if seen[k] {
			continue
		}
		seen[k] = true

		res.Events = append(res.Events, evt)
		res.Courses = append(res.Courses, model.CourseSchedule{
			WorkerID:   workerID,
			SemesterID: semesterID,
			CourseName: evt.Name,
			Location:   evt.Location,
			Day:        evt.Block.Day.Code(),
			StartTime:  timeblock.FormatClock(evt.Block.Start),
			EndTime:    timeblock.FormatClock(evt.Block.End),
			Source:     "ics",
		})
	}
	return res, nil
}

// intersects 课程日期区间与 [start, end] 是否相交（按自然日）
func (e parsedCourseEvent) intersects(start, end time.Time) bool {
	first := civilDate(e.First)
	if first.After(civilDate(end)) {
		return false
	}
	return e.Last == nil || !civilDate(*e.Last).Before(civilDate(start))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		durProp := evt.GetProperty(ics.ComponentPropertyDuration)
		if durProp == nil {
			return parsedCourseEvent{}, false
		}
		d, ok := parseICSDuration(durProp.Value)
		if !ok {
			return parsedCourseEvent{}, false
		}
		dtEnd = dtStart.Add(d)
	}

	// 跨零点的事件无法表示为单日时间块；恰好结束于次日零点的除外
	y, m, d := dtStart.Date()
	endsAtMidnight := dtEnd.Equal(time.Date(y, m, d+1, 0, 0, 0, 0, dtStart.Location()))
	if civilDate(dtStart) != civilDate(dtEnd) && !endsAtMidnight {
		return parsedCourseEvent{}, false
	}
	start := dtStart.Hour()*60 + dtStart.Minute()
	end := dtEnd.Hour()*60 + dtEnd.Minute()
	if endsAtMidnight {
		end = timeblock.MinutesPerDay
	}
	// 全天事件不是课程
	if start == 0 && end == timeblock.MinutesPerDay {
		return parsedCourseEvent{}, false
	}

	day, _ := timeblock.DayFromISO(isoWeekday(dtStart.Weekday()))
	block := timeblock.New(day, start, end)
	if !block.Valid() {
		return parsedCourseEvent{}, false
	}

	out := parsedCourseEvent{
		Name:  strings.TrimSpace(summary.Value),
		Block: block,
		First: dtStart,
	}
	if l := evt.GetProperty(ics.ComponentPropertyLocation); l != nil {
		out.Location = strings.TrimSpace(l.Value)
	}
	out.Last = lastOccurrence(evt, dtStart)
	return out, true
}

// lastOccurrence 由 RRULE 推算最后一次上课日期；无 RRULE 时即 DTSTART
func lastOccurrence(evt *ics.VEvent, dtStart time.Time) *time.Time {
	prop := evt.GetProperty(ics.ComponentPropertyRrule)
	if prop == nil {
		return &dtStart
	}
	rule := parseRRule(prop.Value)
	switch {
	case !rule.until.IsZero():
		return &rule.until
	case rule.count > 0:
		step := 7 * rule.interval
		switch rule.freq {
		case "DAILY":
			step = rule.interval
		case "MONTHLY":
			last := dtStart.AddDate(0, rule.interval*(rule.count-1), 0)
			return &last
		}
		last := dtStart.AddDate(0, 0, step*(rule.count-1))
		return &last
	default:
		return nil
	}
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(k) {
		case "FREQ":
			r.freq = strings.ToUpper(v)
		case "INTERVAL":
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				r.interval = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				r.count = n
			}
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", v)
			if err != nil {
				t, _ = time.Parse("20060102", v)
			}
			r.until = t
		}
	}
	return r
}

// parseICSDuration 解析 "PT1H30M" 形式的时长（不支持按天/周的时长）
func parseICSDuration(v string) (time.Duration, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	v = v[2:]
	var total time.Duration
	for v != "" {
		i := strings.IndexAny(v, "HMS")
		if i <= 0 {
			return 0, false
		}
		n, err := strconv.Atoi(v[:i])
		if err != nil || n < 0 {
			return 0, false
		}
		switch v[i] {
		case 'H':
			total += time.Duration(n) * time.Hour
		case 'M':
			total += time.Duration(n) * time.Minute
		case 'S':
			total += time.Duration(n) * time.Second
		}
		v = v[i+1:]
	}
	return total, total > 0
}

// isoWeekday 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，统一换算到 loc
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
