package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/timeblock"
)

// ErrRecordNotObject 记录不是 JSON 对象
var ErrRecordNotObject = errors.New("人员记录必须是 JSON 对象")

// Jobs 记录中岗位任务的两种形态
type Jobs interface {
	Assignments() []Assignment
}

// LegacySingleJob 旧版单岗位记录：岗位字段直接平铺在人员上
type LegacySingleJob struct {
	Job Assignment
}

// Assignments 折叠为单元素列表
func (l LegacySingleJob) Assignments() []Assignment {
	return []Assignment{l.Job}
}

// MultiJob 多岗位记录
type MultiJob []Assignment

// Assignments 原样返回
func (m MultiJob) Assignments() []Assignment { return []Assignment(m) }

// Record 从持久化读取的人员原始记录
type Record struct {
	ID        string
	Name      string
	Jobs      Jobs
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool
}

// Normalize 统一为多任务形态的 Worker
func (r Record) Normalize() Worker {
	w := Worker{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		IsActive:  r.IsActive,
	}
	if r.Jobs != nil {
		for _, a := range r.Jobs.Assignments() {
			a.Blocks = timeblock.Normalize(a.Blocks)
			w.Assignments = append(w.Assignments, a)
		}
	}
	return w
}

// ════════════════════════════════════════════════════════════
// 宽松解码：单个字段缺失或格式错误时降级为默认值，不影响整条记录
// ════════════════════════════════════════════════════════════

type fields map[string]json.RawMessage

// DecodeRecord 解析人员记录
//
// 存在 assignments 数组时为多任务形态；否则若存在 jobTitle / weeklySchedule
// 等平铺字段，按旧版单岗位处理。
func DecodeRecord(data []byte) (Record, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRecordNotObject, err)
	}

	r := Record{
		ID:        f.str("id"),
		Name:      f.str("name"),
		StartDate: f.date("startDate"),
		EndDate:   f.date("endDate"),
		IsActive:  f.boolOr("isActive", true),
	}

	if raw, ok := f["assignments"]; ok && !isNull(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			jobs := make(MultiJob, 0, len(items))
			for i, item := range items {
				var af fields
				if err := json.Unmarshal(item, &af); err != nil || af == nil {
					continue
				}
				a := af.assignment("title", "hourlyRate", "locations", "blocks")
				if a.ID == "" {
					a.ID = strconv.Itoa(i)
				}
				jobs = append(jobs, a)
			}
			r.Jobs = jobs
			return r, nil
		}
	}

	if f.hasAny("jobTitle", "supervisor", "hourlyRate", "location", "weeklySchedule") {
		a := f.assignment("jobTitle", "hourlyRate", "location", "weeklySchedule")
		a.ID = "0"
		// 旧版任务日期即人员日期
		a.StartDate, a.EndDate = nil, nil
		r.Jobs = LegacySingleJob{Job: a}
		return r, nil
	}

	r.Jobs = MultiJob{}
	return r, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) hasAny(keys ...string) bool {
	for _, k := range keys {
		if raw, ok := f[k]; ok && !isNull(raw) {
			return true
		}
	}
	return false
}

func (f fields) assignment(titleKey, rateKey, locKey, blocksKey string) Assignment {
	return Assignment{
		ID:         f.str("id"),
		Title:      f.str(titleKey),
		Supervisor: f.str("supervisor"),
		HourlyRate: f.str(rateKey),
		Locations:  f.strings(locKey),
		Blocks:     f.blocks(blocksKey),
		StartDate:  f.date("startDate"),
		EndDate:    f.date("endDate"),
	}
}

// str 字符串字段，数字按原文返回
func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (f fields) boolOr(key string, def bool) bool {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return def
	}
	return b
}

func (f fields) date(key string) *time.Time {
	return lifecycle.ParseDate(f.str(key))
}

// strings 接受字符串数组或单个（逗号分隔的）字符串
func (f fields) strings(key string) []string {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil
	}
	var list []string
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		// 数组中非字符串的元素单独丢弃
		for _, item := range items {
			var v string
			if json.Unmarshal(item, &v) == nil {
				list = append(list, v)
			}
		}
	} else {
		list = strings.Split(f.str(key), ",")
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// blocks 丢弃格式错误的单个块
func (f fields) blocks(key string) []timeblock.Block {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []timeblock.Block
	for _, item := range items {
		var bf fields
		if err := json.Unmarshal(item, &bf); err != nil || bf == nil {
			continue
		}
		b, ok := timeblock.Parse(bf.str("day"), bf.str("start"), bf.str("end"))
		if !ok {
			continue
		}
		out = append(out, b)
	}
	return out
}
