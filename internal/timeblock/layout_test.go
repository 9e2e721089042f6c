package timeblock

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Empty(t *testing.T) {
	assert.Empty(t, Layout(nil))
}

func TestLayout_TwoOverlapping(t *testing.T) {
	blocks := []Block{
		New(Monday, hm(9, 0), hm(12, 0)),
		New(Monday, hm(10, 0), hm(11, 0)),
		New(Monday, hm(13, 0), hm(14, 0)),
	}
	got := Layout(blocks)
	require.Len(t, got, 3)

	assert.Equal(t, 0, got[0].Lane)
	assert.Equal(t, 1, got[1].Lane)
	assert.Equal(t, 2, got[0].LaneCount)
	assert.Equal(t, 2, got[1].LaneCount)
	assert.Equal(t, got[0].Cluster, got[1].Cluster)

	// 独立的第三块自成一簇
	assert.Equal(t, 0, got[2].Lane)
	assert.Equal(t, 1, got[2].LaneCount)
	assert.NotEqual(t, got[0].Cluster, got[2].Cluster)

	assert.InDelta(t, 50.0, got[1].Width(), 1e-9)
	assert.InDelta(t, 50.0, got[1].Left(), 1e-9)
}

func TestLayout_AdjacentBlocksShareLane(t *testing.T) {
	got := Layout([]Block{
		New(Monday, hm(9, 0), hm(10, 0)),
		New(Monday, hm(10, 0), hm(11, 0)),
	})
	// 端点相接不重叠：分属不同簇，各自单泳道
	assert.Equal(t, 1, got[0].LaneCount)
	assert.Equal(t, 1, got[1].LaneCount)
	assert.NotEqual(t, got[0].Cluster, got[1].Cluster)
}

func TestLayout_LaneReuseInsideCluster(t *testing.T) {
	// A[9-12] 与 B[9-10]、C[10-11] 均重叠；C 可复用 B 的泳道
	got := Layout([]Block{
		New(Monday, hm(9, 0), hm(12, 0)),
		New(Monday, hm(9, 0), hm(10, 0)),
		New(Monday, hm(10, 0), hm(11, 0)),
	})
	assert.Equal(t, 0, got[1].Lane, "B 结束更早排在前面")
	assert.Equal(t, 1, got[0].Lane)
	assert.Equal(t, 0, got[2].Lane)
	for _, p := range got {
		assert.Equal(t, 2, p.LaneCount)
	}
}

func TestLayout_TieBrokenByInputOrder(t *testing.T) {
	blocks := []Block{
		New(Tuesday, hm(9, 0), hm(10, 0)),
		New(Tuesday, hm(9, 0), hm(10, 0)),
		New(Tuesday, hm(9, 0), hm(10, 0)),
	}
	first := Layout(blocks)
	for i, p := range first {
		assert.Equal(t, i, p.Lane)
		assert.Equal(t, i, p.Index)
	}
	assert.Equal(t, first, Layout(blocks), "相同输入布局必须确定")
}

func TestLayout_DaysAreIndependent(t *testing.T) {
	got := LayoutWeek([]Block{
		New(Monday, hm(9, 0), hm(12, 0)),
		New(Tuesday, hm(9, 0), hm(12, 0)),
		New(Saturday, hm(18, 0), hm(22, 0)),
	})
	require.Len(t, got, 3)
	for _, ps := range got {
		require.Len(t, ps, 1)
		assert.Equal(t, 1, ps[0].LaneCount)
	}
}

func TestLayout_PackingMatchesMaxClique(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 300; iter++ {
		n := 1 + rng.Intn(9)
		blocks := make([]Block, n)
		for i := range blocks {
			start := 480 + rng.Intn(20)*30
			blocks[i] = New(Monday, start, start+30*(1+rng.Intn(5)))
		}
		got := Layout(blocks)

		// 同泳道的块互不重叠
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				if got[i].Cluster == got[j].Cluster && got[i].Lane == got[j].Lane {
					require.False(t, Overlaps(blocks[i], blocks[j]),
						"同泳道块重叠: %s %s", blocks[i], blocks[j])
				}
			}
		}

		// 泳道数 == 簇内最大团（暴力按端点计数）
		clusters := make(map[int][]int)
		for i, p := range got {
			clusters[p.Cluster] = append(clusters[p.Cluster], i)
		}
		for _, members := range clusters {
			clique := 0
			for _, i := range members {
				t0 := blocks[i].Start
				count := 0
				for _, j := range members {
					if blocks[j].Start <= t0 && t0 < blocks[j].End {
						count++
					}
				}
				if count > clique {
					clique = count
				}
			}
			maxLane := 0
			for _, i := range members {
				if got[i].Lane > maxLane {
					maxLane = got[i].Lane
				}
				require.Equal(t, clique, got[i].LaneCount)
			}
			require.Equal(t, clique-1, maxLane)
		}
	}
}
