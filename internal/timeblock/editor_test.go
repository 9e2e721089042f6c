package timeblock

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_MergesOverlappingAndAdjacent(t *testing.T) {
	var blocks []Block
	blocks = Insert(blocks, New(Monday, hm(9, 0), hm(10, 0)))
	blocks = Insert(blocks, New(Monday, hm(11, 0), hm(12, 0)))
	blocks = Insert(blocks, New(Tuesday, hm(9, 0), hm(10, 0)))
	require.Len(t, blocks, 3)

	// 与第一块相邻、与第二块相邻 → 三块合一
	blocks = Insert(blocks, New(Monday, hm(10, 0), hm(11, 0)))
	assert.Equal(t, []Block{
		New(Monday, hm(9, 0), hm(12, 0)),
		New(Tuesday, hm(9, 0), hm(10, 0)),
	}, blocks)
}

func TestInsert_Disjoint(t *testing.T) {
	blocks := Insert(nil, New(Monday, hm(13, 0), hm(14, 0)))
	blocks = Insert(blocks, New(Monday, hm(8, 0), hm(9, 0)))
	assert.Equal(t, []Block{
		New(Monday, hm(8, 0), hm(9, 0)),
		New(Monday, hm(13, 0), hm(14, 0)),
	}, blocks)
}

func TestInsert_DoesNotMutateInput(t *testing.T) {
	orig := []Block{New(Monday, 600, 660), New(Monday, 700, 760)}
	snapshot := append([]Block(nil), orig...)
	_ = Insert(orig, New(Monday, 650, 710))
	assert.Equal(t, snapshot, orig)
}

func TestInsert_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		blocks := randomBlocks(rng, 6)
		b := randomBlock(rng)
		once := Insert(blocks, b)
		twice := Insert(once, b)
		require.Equal(t, once, twice)
	}
}

func TestInsert_Closure(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 200; iter++ {
		var blocks []Block
		for k := 0; k < 10; k++ {
			blocks = Insert(blocks, randomBlock(rng))
		}
		for i := range blocks {
			for j := range blocks {
				if i == j || blocks[i].Day != blocks[j].Day {
					continue
				}
				a, b := blocks[i], blocks[j]
				require.True(t, a.End < b.Start || b.End < a.Start,
					"合并后不应存在相交或相邻的块: %s %s", a, b)
			}
		}
	}
}

func TestRemove_SplitsInterior(t *testing.T) {
	blocks := Insert(nil, New(Monday, hm(8, 0), hm(17, 0)))
	blocks = Remove(blocks, New(Monday, hm(12, 0), hm(13, 0)))
	assert.Equal(t, []Block{
		New(Monday, hm(8, 0), hm(12, 0)),
		New(Monday, hm(13, 0), hm(17, 0)),
	}, blocks)
}

func TestRemove_TrimDeleteAndDropZeroLength(t *testing.T) {
	blocks := []Block{
		New(Monday, hm(8, 0), hm(10, 0)),
		New(Monday, hm(11, 0), hm(12, 0)),
		New(Monday, hm(13, 0), hm(15, 0)),
		New(Tuesday, hm(9, 0), hm(14, 0)),
	}
	got := Remove(blocks, New(Monday, hm(9, 0), hm(14, 0)))
	assert.Equal(t, []Block{
		New(Monday, hm(8, 0), hm(9, 0)),
		New(Monday, hm(14, 0), hm(15, 0)),
		New(Tuesday, hm(9, 0), hm(14, 0)),
	}, got)

	// 删除区间与块完全重合：不留下零长度残段
	got = Remove([]Block{New(Monday, 600, 660)}, New(Monday, 600, 660))
	assert.Empty(t, got)
}

func TestRemoveThenInsert_RoundTrip(t *testing.T) {
	orig := Insert(nil, New(Wednesday, hm(9, 0), hm(16, 0)))
	sub := New(Wednesday, hm(11, 0), hm(13, 30))
	removed := Remove(orig, sub)
	require.Len(t, removed, 2)
	assert.Equal(t, orig, Insert(removed, sub))
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Block{
		New(Monday, 600, 700),
		New(Monday, 650, 800),
		New(Monday, 900, 850), // 非法，丢弃
		New(Friday, 480, 540),
	})
	assert.Equal(t, []Block{New(Monday, 600, 800), New(Friday, 480, 540)}, got)
}

func TestAddPrecise(t *testing.T) {
	base := []Block{New(Monday, hm(9, 0), hm(10, 0))}

	got, err := AddPrecise(base, "M", "10:00", "11:00", DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, []Block{New(Monday, hm(9, 0), hm(11, 0))}, got)

	cases := []struct {
		name            string
		day, start, end string
		want            error
	}{
		{"周末不可编辑", "S", "09:00", "10:00", ErrDayNotEditable},
		{"未知星期", "X", "09:00", "10:00", ErrDayNotEditable},
		{"开始时间非法", "M", "9am", "10:00", ErrClockInvalid},
		{"结束时间非法", "M", "09:00", "", ErrClockInvalid},
		{"开始不早于结束", "M", "11:00", "11:00", ErrRangeInvalid},
		{"早于时段", "M", "07:00", "09:00", ErrOutsideWindow},
		{"晚于时段", "T", "16:00", "18:00", ErrOutsideWindow},
		{"重复块", "M", "09:00", "10:00", ErrDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := AddPrecise(base, tc.day, tc.start, tc.end, DefaultWindow)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.NotEmpty(t, ve.Message)
			assert.Equal(t, base, out)
		})
	}
}

func TestParseWindow(t *testing.T) {
	assert.Equal(t, Window{Start: 420, End: 1320}, ParseWindow("07:00", "22:00"))
	assert.Equal(t, DefaultWindow, ParseWindow("bad", "17:00"))
	assert.Equal(t, DefaultWindow, ParseWindow("17:00", "08:00"))
}

// ── 随机数据生成 ──

func randomBlock(rng *rand.Rand) Block {
	day := Day(rng.Intn(2)) // 集中在两天内以产生更多重叠
	start := 480 + rng.Intn(16)*30
	end := start + 30*(1+rng.Intn(6))
	return New(day, start, end)
}

func randomBlocks(rng *rand.Rand, n int) []Block {
	var out []Block
	for i := 0; i < n; i++ {
		out = Insert(out, randomBlock(rng))
	}
	return out
}
