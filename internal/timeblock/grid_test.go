package timeblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleCell(t *testing.T) {
	var blocks []Block
	blocks = ToggleCell(blocks, Monday, hm(9, 0), 60)
	blocks = ToggleCell(blocks, Monday, hm(10, 0), 60)
	blocks = ToggleCell(blocks, Monday, hm(11, 0), 60)
	require.Equal(t, []Block{New(Monday, hm(9, 0), hm(12, 0))}, blocks)

	// 点击中间单元：拆分合并块
	blocks = ToggleCell(blocks, Monday, hm(10, 0), 60)
	assert.Equal(t, []Block{
		New(Monday, hm(9, 0), hm(10, 0)),
		New(Monday, hm(11, 0), hm(12, 0)),
	}, blocks)

	// 部分覆盖的单元也视为已覆盖，点击后整段清空
	partial := []Block{New(Tuesday, hm(9, 30), hm(10, 30))}
	partial = ToggleCell(partial, Tuesday, hm(9, 0), 0)
	assert.Equal(t, []Block{New(Tuesday, hm(10, 0), hm(10, 30))}, partial)
}

func TestGrid_IsPureProjection(t *testing.T) {
	blocks := []Block{New(Monday, hm(9, 0), hm(11, 0)), New(Friday, hm(16, 0), hm(17, 0))}
	view := Grid(blocks, DefaultWindow, 60)
	require.Len(t, view.Rows, 9)
	require.Len(t, view.Days, 5)

	assert.Equal(t, "08:00", view.Rows[0].Label)
	assert.False(t, view.Rows[0].Covered[0])
	assert.True(t, view.Rows[1].Covered[0])
	assert.True(t, view.Rows[2].Covered[0])
	assert.False(t, view.Rows[3].Covered[0])
	assert.True(t, view.Rows[8].Covered[4])

	assert.Equal(t, view, Grid(blocks, DefaultWindow, 60))
}

func TestWeeklyHours(t *testing.T) {
	blocks := []Block{
		New(Monday, hm(9, 0), hm(12, 0)),
		New(Wednesday, hm(9, 0), hm(12, 0)),
		New(Friday, hm(13, 0), hm(15, 0)),
	}
	assert.InDelta(t, 8.0, WeeklyHours(blocks), 1e-9)
	assert.Equal(t, 0.0, WeeklyHours(nil))
	assert.Equal(t, 0.0, WeeklyHours([]Block{New(Monday, 600, 500)}))
}
