package timeblock

import "sort"

// Placement 单个时间块的渲染布局
//
// 调用方按 width = 100%/LaneCount、left = Lane*width 划分横向空间。
// 布局结果是块列表的快照，块列表下一次编辑后即失效。
type Placement struct {
	Index     int   `json:"index"` // 在输入切片中的下标
	Block     Block `json:"block"`
	Lane      int   `json:"lane"`
	LaneCount int   `json:"lane_count"`
	Cluster   int   `json:"cluster"`
}

// Width 横向宽度百分比
func (p Placement) Width() float64 {
	if p.LaneCount <= 0 {
		return 100
	}
	return 100 / float64(p.LaneCount)
}

// Left 左侧偏移百分比
func (p Placement) Left() float64 {
	return float64(p.Lane) * p.Width()
}

// Layout 为同一天、来自多个任务的时间块分配泳道
//
// 两阶段：
//  1. 按 (start, end) 稳定排序后扫描，start >= 当前簇最大结束时间时开启新簇；
//  2. 簇内贪心：放入编号最小且 laneEnd <= start 的泳道，否则新开泳道。
//
// 对区间图该贪心着色是最优的，泳道数等于簇内最大团。
// 输入不要求同一天；不同天的块按天独立布局（见 LayoutWeek）。
// 返回结果与输入顺序一一对应。
func Layout(blocks []Block) []Placement {
	out := make([]Placement, len(blocks))
	if len(blocks) == 0 {
		return out
	}

	byDay := make(map[Day][]int)
	var days []Day
	for i, b := range blocks {
		if _, ok := byDay[b.Day]; !ok {
			days = append(days, b.Day)
		}
		byDay[b.Day] = append(byDay[b.Day], i)
	}

	cluster := 0
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	for _, d := range days {
		cluster = layoutDay(blocks, byDay[d], out, cluster)
	}
	return out
}

// layoutDay 布局一天内的块，返回下一个可用簇编号
func layoutDay(blocks []Block, idx []int, out []Placement, nextCluster int) int {
	order := append([]int(nil), idx...)
	// 稳定排序：开始时间相同按结束时间，再相同保持输入顺序
	sort.SliceStable(order, func(i, j int) bool {
		a, b := blocks[order[i]], blocks[order[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})

	var (
		members []int
		maxEnd  int
	)
	flush := func() {
		if len(members) == 0 {
			return
		}
		assignLanes(blocks, members, out, nextCluster)
		nextCluster++
		members = members[:0]
	}

	for _, i := range order {
		b := blocks[i]
		if len(members) > 0 && b.Start >= maxEnd {
			flush()
		}
		if len(members) == 0 || b.End > maxEnd {
			maxEnd = b.End
		}
		members = append(members, i)
	}
	flush()
	return nextCluster
}

// assignLanes 簇内贪心分配泳道
func assignLanes(blocks []Block, members []int, out []Placement, cluster int) {
	var laneEnds []int
	lanes := make([]int, len(members))
	for k, i := range members {
		b := blocks[i]
		lane := -1
		for l, end := range laneEnds {
			if end <= b.Start {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, b.End)
		} else {
			laneEnds[lane] = b.End
		}
		lanes[k] = lane
	}
	for k, i := range members {
		out[i] = Placement{
			Index:     i,
			Block:     blocks[i],
			Lane:      lanes[k],
			LaneCount: len(laneEnds),
			Cluster:   cluster,
		}
	}
}

// LayoutWeek 按星期分组的布局结果，键为 Day
func LayoutWeek(blocks []Block) map[Day][]Placement {
	result := make(map[Day][]Placement)
	for _, p := range Layout(blocks) {
		result[p.Block.Day] = append(result[p.Block.Day], p)
	}
	return result
}
