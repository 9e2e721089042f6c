package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"faculty-schedules/backend/internal/dto"
	"faculty-schedules/backend/internal/lifecycle"
	"faculty-schedules/backend/internal/repository"
	"faculty-schedules/backend/internal/roster"
	"faculty-schedules/backend/internal/timeblock"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoWorkers    = errors.New("没有可导出的人员")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	sheetSummary  = "人员汇总"
	sheetSchedule = "周排班"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportRoster 导出人员周排班为 Excel；状态按参考点计算
	ExportRoster(ctx context.Context, department string, q dto.ReferenceQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	semesters SemesterService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, semesters SemesterService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, semesters: semesters, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster 导出人员周排班
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "人员汇总"：每人一行，状态、全部任务与进行中任务的工时/周薪
//   - Sheet "周排班"：每个任务一行，周一至周日各一列，单元格为当天时间段
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRoster(ctx context.Context, department string, q dto.ReferenceQuery) (*bytes.Buffer, string, error) {
	ref, info, err := s.semesters.ResolveReference(ctx, q)
	if err != nil {
		return nil, "", err
	}

	workers, _, err := s.repo.Worker.List(ctx, repository.WorkerFilter{Department: department})
	if err != nil {
		s.logger.Error("查询人员列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(workers) == 0 {
		return nil, "", ErrExportNoWorkers
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetSummary)
	f.SetActiveSheet(idx)
	f.NewSheet(sheetSchedule)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	// ── 人员汇总 ──
	summaryHeader := []string{"姓名", "部门", "状态", "周工时", "周薪", "进行中工时", "进行中周薪"}
	writeRow(f, sheetSummary, 1, summaryHeader)
	f.SetCellStyle(sheetSummary, "A1", cell(colName(len(summaryHeader)-1), 1), headerStyle)
	f.SetColWidth(sheetSummary, "A", "B", 18)
	f.SetColWidth(sheetSummary, "C", "G", 12)

	// ── 周排班 ──
	scheduleHeader := []string{"姓名", "任务", "状态", "时薪"}
	for _, d := range timeblock.AllDays {
		scheduleHeader = append(scheduleHeader, d.String())
	}
	scheduleHeader = append(scheduleHeader, "周工时", "周薪")
	writeRow(f, sheetSchedule, 1, scheduleHeader)
	f.SetCellStyle(sheetSchedule, "A1", cell(colName(len(scheduleHeader)-1), 1), headerStyle)
	f.SetColWidth(sheetSchedule, "A", "B", 18)
	f.SetColWidth(sheetSchedule, "E", colName(3+len(timeblock.AllDays)), 16)

	summaryRow, scheduleRow := 2, 2
	for i := range workers {
		w := toRosterWorker(&workers[i])
		all := roster.TotalsOf(w)
		active := roster.TotalsWhere(w, w.WithStatus(ref, lifecycle.Active))
		writeRow(f, sheetSummary, summaryRow, []interface{}{
			w.Name, workers[i].Department, w.Status(ref).String(),
			all.Hours, roster.RoundCents(all.Pay),
			active.Hours, roster.RoundCents(active.Pay),
		})
		f.SetCellStyle(sheetSummary, cell("E", summaryRow), cell("E", summaryRow), moneyStyle)
		f.SetCellStyle(sheetSummary, cell("G", summaryRow), cell("G", summaryRow), moneyStyle)
		summaryRow++

		for _, a := range w.Assignments {
			row := []interface{}{w.Name, a.Title, w.AssignmentStatus(a, ref).String(), roster.ParseRate(a.HourlyRate)}
			for _, d := range timeblock.AllDays {
				row = append(row, daySpans(a.Blocks, d))
			}
			row = append(row, a.WeeklyHours(), roster.RoundCents(roster.WeeklyPay(a)))
			writeRow(f, sheetSchedule, scheduleRow, row)
			scheduleRow++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, exportFilename(department, info), nil
}

// ── 辅助函数 ──

// daySpans 当天全部时间段，如 "09:00-12:00, 13:00-15:00"
func daySpans(blocks []timeblock.Block, d timeblock.Day) string {
	var spans []string
	for _, b := range timeblock.OnDay(timeblock.Sorted(blocks), d) {
		spans = append(spans, b.Span())
	}
	return strings.Join(spans, ", ")
}

func exportFilename(department string, info dto.ReferenceInfo) string {
	label := info.Name
	if label == "" {
		label = info.At
	}
	if label == "" {
		label = info.StartDate + "_" + info.EndDate
	}
	if department != "" {
		return fmt.Sprintf("排班表_%s_%s.xlsx", department, label)
	}
	return fmt.Sprintf("排班表_%s.xlsx", label)
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
