package roster

import (
	"math"
	"strconv"
	"strings"
)

var rateSuffixes = []string{"/hour", "/hr", "/h", "per hour", "an hour"}

// ParseRate 宽松解析时薪，如 "$12.50"、"1,200"、"15/hr"；无法解析返回 0
func ParseRate(s string) float64 {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range rateSuffixes {
		v = strings.TrimSuffix(v, suffix)
	}
	v = strings.NewReplacer("$", "", ",", "", " ", "", "usd", "").Replace(v)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// WeeklyPay 周薪 = 周工时 × 时薪
func WeeklyPay(a Assignment) float64 {
	return a.WeeklyHours() * ParseRate(a.HourlyRate)
}

// Totals 人员合计
type Totals struct {
	Hours float64 `json:"weekly_hours"`
	Pay   float64 `json:"weekly_pay"`
}

// TotalsOf 累加所有任务，不考虑任务状态
func TotalsOf(w Worker) Totals {
	return TotalsWhere(w, nil)
}

// TotalsWhere 只累加满足条件的任务；pred 为 nil 时等价于 TotalsOf
func TotalsWhere(w Worker, pred func(Assignment) bool) Totals {
	var t Totals
	for _, a := range w.Assignments {
		if pred != nil && !pred(a) {
			continue
		}
		t.Hours += a.WeeklyHours()
		t.Pay += WeeklyPay(a)
	}
	return t
}

// RoundCents 四舍五入到分
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
