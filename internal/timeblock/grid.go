package timeblock

// DefaultCellMinutes 网格单元粒度（一小时）
const DefaultCellMinutes = 60

// Covered 区间 [start, end) 是否与当日任一块相交
func Covered(blocks []Block, day Day, start, end int) bool {
	probe := Block{Day: day, Start: start, End: end}
	for _, b := range blocks {
		if Overlaps(b, probe) {
			return true
		}
	}
	return false
}

// ToggleCell 切换一个网格单元
//
// 单元已被覆盖时执行 Remove（即使它属于更大的合并块，也会被拆开），否则执行 Insert。
func ToggleCell(blocks []Block, day Day, cellStart, cellMinutes int) []Block {
	if cellMinutes <= 0 {
		cellMinutes = DefaultCellMinutes
	}
	cell := Block{Day: day, Start: cellStart, End: cellStart + cellMinutes}
	if Covered(blocks, day, cell.Start, cell.End) {
		return Remove(blocks, cell)
	}
	return Insert(blocks, cell)
}

// GridRow 网格中的一行（一个时间单元）
type GridRow struct {
	Start   int    `json:"start_minutes"`
	End     int    `json:"end_minutes"`
	Label   string `json:"label"`
	Covered []bool `json:"covered"` // 与 Grid.Days 一一对应
}

// GridView 编辑网格的纯投影
type GridView struct {
	Days []Day     `json:"-"`
	Rows []GridRow `json:"rows"`
}

// Grid 由规范块列表推导网格覆盖状态
//
// 每次渲染都重新计算，不保存单元格状态，避免与块列表不一致。
func Grid(blocks []Block, w Window, cellMinutes int) GridView {
	if cellMinutes <= 0 {
		cellMinutes = DefaultCellMinutes
	}
	view := GridView{Days: Weekdays}
	for start := w.Start; start+cellMinutes <= w.End; start += cellMinutes {
		row := GridRow{
			Start:   start,
			End:     start + cellMinutes,
			Label:   FormatClock(start),
			Covered: make([]bool, len(view.Days)),
		}
		for i, d := range view.Days {
			row.Covered[i] = Covered(blocks, d, row.Start, row.End)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
