package timeblock

// WeeklyHours 每周总工时 Σ(end-start)/60
//
// 非法块（start >= end）贡献 0，不报错。
func WeeklyHours(blocks []Block) float64 {
	total := 0
	for _, b := range blocks {
		if b.End > b.Start {
			total += b.End - b.Start
		}
	}
	return float64(total) / 60
}
