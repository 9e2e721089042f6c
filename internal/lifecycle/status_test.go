package lifecycle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestClassifyWithin_Semester(t *testing.T) {
	r := Range{Start: date("2024-01-10"), End: date("2024-05-10")}

	cases := []struct {
		name string
		w    Window
		want Status
	}{
		{"与窗口相交", Window{Start: date("2024-01-08"), End: date("2024-05-03")}, Active},
		{"窗口在结束之后", Window{Start: date("2024-08-26"), End: date("2024-12-13")}, Ended},
		{"窗口在开始之前", Window{Start: date("2023-08-28"), End: date("2023-12-15")}, Upcoming},
		{"端点当天相交", Window{Start: date("2024-05-10"), End: date("2024-08-01")}, Active},
		{"窗口缺失起点", Window{End: date("2024-02-01")}, Active},
		{"窗口缺失终点", Window{Start: date("2024-03-01")}, Active},
		{"窗口两端缺失", Window{}, Active},
		{"缺失起点且在开始之前", Window{End: date("2023-12-31")}, Upcoming},
		{"缺失终点且在结束之后", Window{Start: date("2024-06-01")}, Ended},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyWithin(r, tc.w))
		})
	}
}

func TestClassifyWithin_SemesterWindows(t *testing.T) {
	r := Range{Start: date("2024-01-10"), End: date("2024-05-10")}
	assert.Equal(t, Active, ClassifyWithin(r, Window{Start: date("2024-01-01"), End: date("2024-05-01")}))
	assert.Equal(t, Ended, ClassifyWithin(r, Window{Start: date("2024-06-01"), End: date("2024-08-01")}))
	assert.Equal(t, Upcoming, ClassifyWithin(r, Window{Start: date("2023-08-01"), End: date("2023-12-01")}))
}

func TestClassifyWithin_OpenEndedRange(t *testing.T) {
	r := Range{Start: date("2024-01-10")}
	assert.Equal(t, Active, ClassifyWithin(r, Window{Start: date("2030-01-01"), End: date("2030-05-01")}))
	assert.Equal(t, Upcoming, ClassifyWithin(r, Window{Start: date("2023-01-01"), End: date("2023-05-01")}))
}

func TestClassifyAt(t *testing.T) {
	r := Range{Start: date("2024-01-10"), End: date("2024-05-10")}
	assert.Equal(t, Upcoming, ClassifyAt(r, *date("2024-01-09")))
	assert.Equal(t, Active, ClassifyAt(r, *date("2024-01-10")))
	assert.Equal(t, Active, ClassifyAt(r, date("2024-05-10").Add(23*time.Hour)), "结束当天仍在进行中")
	assert.Equal(t, Ended, ClassifyAt(r, *date("2024-05-11")))
	assert.Equal(t, Active, ClassifyAt(Range{Start: date("2024-01-10")}, *date("2099-01-01")))
}

func TestMissingStartIsInactive(t *testing.T) {
	r := Range{End: date("2024-05-10")}
	assert.Equal(t, Inactive, ClassifyAt(r, *date("2024-02-01")))
	assert.Equal(t, Inactive, ClassifyWithin(r, Window{}))
}

func TestEvaluate(t *testing.T) {
	r := Range{Start: date("2024-01-10"), End: date("2024-05-10")}

	assert.Equal(t, Inactive, Evaluate(r, true, Within(Window{})), "停用标记优先")
	assert.Equal(t, Ended, Evaluate(r, false, Within(Window{Start: date("2024-08-26")})))
	assert.Equal(t, Active, Evaluate(r, false, At(*date("2024-03-01"))))
	assert.Equal(t, Upcoming, Evaluate(Range{Start: date("2999-01-01")}, false, Reference{}), "零值参考点使用当前时间")
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name string
		in   []Status
		want Status
	}{
		{"空", nil, Inactive},
		{"全部停用", []Status{Inactive, Inactive}, Inactive},
		{"进行中与已结束", []Status{Active, Ended}, Partial},
		{"进行中优先于未开始", []Status{Upcoming, Active}, Active},
		{"未开始优先于已结束", []Status{Ended, Upcoming}, Upcoming},
		{"仅已结束", []Status{Ended, Inactive}, Ended},
		{"部分状态向上传递", []Status{Partial, Upcoming}, Partial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Aggregate(tc.in))
		})
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Status{"s": Upcoming})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"upcoming"}`, string(b))

	var out map[string]Status
	require.NoError(t, json.Unmarshal([]byte(`{"s":"PARTIAL"}`), &out))
	assert.Equal(t, Partial, out["s"])

	assert.Error(t, json.Unmarshal([]byte(`{"s":"nope"}`), &out))
}

func TestParseDate(t *testing.T) {
	require.NotNil(t, ParseDate("2024-01-10"))
	assert.Equal(t, *date("2024-01-10"), *ParseDate("2024-01-10T15:04:05Z"))
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("10/01/2024"))
}
