package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-schedules/backend/internal/timeblock"
)

func TestDecodeRecord_MultiJob(t *testing.T) {
	data := []byte(`{
		"id": "w1",
		"name": "Ada",
		"startDate": "2024-01-01",
		"isActive": true,
		"assignments": [
			{
				"id": "a1",
				"title": "Lab Assistant",
				"supervisor": "Dr. Lee",
				"hourlyRate": "$12.50",
				"locations": ["SCI 101", "SCI 102"],
				"startDate": "2024-01-10",
				"endDate": "not a date",
				"blocks": [
					{"day": "W", "start": "13:00", "end": "15:00"},
					{"day": "M", "start": "09:00", "end": "10:00"},
					{"day": "M", "start": "10:00", "end": "12:00"},
					{"day": "Q", "start": "09:00", "end": "10:00"},
					{"day": "T", "start": "bad", "end": "10:00"},
					"garbage"
				]
			},
			{"title": "Grader", "hourlyRate": 10, "blocks": null}
		]
	}`)

	r, err := DecodeRecord(data)
	require.NoError(t, err)
	require.IsType(t, MultiJob{}, r.Jobs)

	w := r.Normalize()
	assert.Equal(t, "w1", w.ID)
	assert.True(t, w.IsActive)
	require.Len(t, w.Assignments, 2)

	first := w.Assignments[0]
	assert.Equal(t, "Lab Assistant", first.Title)
	assert.Equal(t, []string{"SCI 101", "SCI 102"}, first.Locations)
	assert.Equal(t, date("2024-01-10"), first.StartDate)
	assert.Nil(t, first.EndDate, "格式错误的日期降级为空")
	assert.Equal(t, []string{"M 09:00-12:00", "W 13:00-15:00"}, timeblock.Strings(first.Blocks))

	second := w.Assignments[1]
	assert.Equal(t, "1", second.ID)
	assert.Equal(t, "10", second.HourlyRate)
	assert.Empty(t, second.Blocks)
}

func TestDecodeRecord_LegacySingleJob(t *testing.T) {
	data := []byte(`{
		"id": "w2",
		"name": "Grace",
		"jobTitle": "Front Desk",
		"supervisor": "Office Manager",
		"hourlyRate": "11",
		"location": "Main Office",
		"startDate": "2024-01-08",
		"endDate": "2024-05-03",
		"weeklySchedule": [{"day": "F", "start": "8:00", "end": "12:00"}]
	}`)

	r, err := DecodeRecord(data)
	require.NoError(t, err)
	require.IsType(t, LegacySingleJob{}, r.Jobs)
	assert.True(t, r.IsActive, "缺失 isActive 默认为启用")

	w := r.Normalize()
	require.Len(t, w.Assignments, 1)
	a := w.Assignments[0]
	assert.Equal(t, "Front Desk", a.Title)
	assert.Equal(t, []string{"Main Office"}, a.Locations)
	assert.Equal(t, []string{"F 08:00-12:00"}, timeblock.Strings(a.Blocks))
	assert.Nil(t, a.StartDate)

	eff := w.EffectiveRange(a)
	assert.Equal(t, date("2024-01-08"), eff.Start)
	assert.Equal(t, date("2024-05-03"), eff.End)
}

func TestDecodeRecord_LocationsKeepStringEntries(t *testing.T) {
	r, err := DecodeRecord([]byte(`{
		"name": "Ana",
		"assignments": [{"title": "Tutor", "locations": ["Library", 3, null, "Lab"]}]
	}`))
	require.NoError(t, err)
	w := r.Normalize()
	require.Len(t, w.Assignments, 1)
	assert.Equal(t, []string{"Library", "Lab"}, w.Assignments[0].Locations)

	r, err = DecodeRecord([]byte(`{"name": "Bo", "jobTitle": "Desk", "location": "North, South"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, r.Normalize().Assignments[0].Locations)
}

func TestDecodeRecord_Degrades(t *testing.T) {
	r, err := DecodeRecord([]byte(`{"id": 7, "isActive": "yes"}`))
	require.NoError(t, err)
	w := r.Normalize()
	assert.Equal(t, "7", w.ID)
	assert.True(t, w.IsActive)
	assert.Empty(t, w.Assignments)

	_, err = DecodeRecord([]byte(`[1,2]`))
	assert.True(t, errors.Is(err, ErrRecordNotObject))
	_, err = DecodeRecord([]byte(`null`))
	assert.True(t, errors.Is(err, ErrRecordNotObject))
}
