package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pipetrak/internal/report"
	"pipetrak/internal/service/progress"
)

type ReportBuilder interface {
	BuildProgressReport(ctx context.Context, projectID int64, dim report.Dimension, cfg report.SortConfig) (*progress.ProgressReportData, error)
	BuildDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) (*progress.DeltaReportData, error)
}

type GenerateExcelService struct {
	builder ReportBuilder
}

func NewGenerateService(builder ReportBuilder) *GenerateExcelService {
	return &GenerateExcelService{builder: builder}
}

// GenerateProgressExcel renders the progress report as an .xlsx workbook.
// Rows keep the caller's sort order; the grand total row is written last.
func (g *GenerateExcelService) GenerateProgressExcel(ctx context.Context, projectID int64, dim report.Dimension, cfg report.SortConfig) ([]byte, error) {
	data, err := g.builder.BuildProgressReport(ctx, projectID, dim, cfg)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Progress Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 2}},
	})

	categories := categoryNames(data.GrandTotal)

	headers := []string{dimensionLabel(dim), "Components", "With Activity", "MH Budget", "MH Earned"}
	headers = append(headers, categories...)
	headers = append(headers, "% Complete")
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	rowNum := 2
	for _, row := range data.Rows {
		writeGroupRow(f, sheet, rowNum, row, categories, false)
		rowNum++
	}

	// Grand total always closes the sheet.
	writeGroupRow(f, sheet, rowNum, data.GrandTotal, categories, true)
	f.SetCellStyle(sheet, cellName(1, rowNum), cellName(len(headers), rowNum), totalStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// GenerateDeltaExcel renders a delta report workbook, same layout with delta
// columns and sign-formatted values.
func (g *GenerateExcelService) GenerateDeltaExcel(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) ([]byte, error) {
	data, err := g.builder.BuildDeltaReport(ctx, projectID, dim, rng, cfg)
	if err != nil {
		return nil, fmt.Errorf("build delta report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Delta Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	var categories []string
	for _, c := range data.GrandTotal.Categories {
		categories = append(categories, c.Name)
	}

	headers := []string{dimensionLabel(dim), "With Activity", "MH Budget", "Delta MH"}
	headers = append(headers, categories...)
	headers = append(headers, "Delta %")
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	rowNum := 2
	rows := append(append([]report.DeltaRow{}, data.Rows...), data.GrandTotal)
	for _, row := range rows {
		col := 1
		f.SetCellValue(sheet, cellName(col, rowNum), row.Name)
		col++
		f.SetCellValue(sheet, cellName(col, rowNum), row.WithActivity)
		col++
		f.SetCellValue(sheet, cellName(col, rowNum), report.FormatManhours(row.MhBudget))
		col++
		text, _ := report.FormatDeltaManhours(row.DeltaMhEarned)
		f.SetCellValue(sheet, cellName(col, rowNum), text)
		col++
		for _, c := range row.Categories {
			catText, _ := report.FormatDeltaManhours(c.DeltaMhEarned)
			f.SetCellValue(sheet, cellName(col, rowNum), catText)
			col++
		}
		pctText, _ := report.FormatDeltaPercent(row.DeltaPct)
		f.SetCellValue(sheet, cellName(col, rowNum), pctText)
		rowNum++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeGroupRow(f *excelize.File, sheet string, rowNum int, row report.GroupRow, categories []string, grandTotal bool) {
	col := 1
	f.SetCellValue(sheet, cellName(col, rowNum), row.Name)
	col++
	f.SetCellValue(sheet, cellName(col, rowNum), row.Count)
	col++
	f.SetCellValue(sheet, cellName(col, rowNum), row.WithActivity)
	col++
	f.SetCellValue(sheet, cellName(col, rowNum), report.FormatManhours(row.MhBudget))
	col++
	f.SetCellValue(sheet, cellName(col, rowNum), report.FormatManhours(row.MhEarned))
	col++

	byName := make(map[string]report.CategoryRollup, len(row.Categories))
	for _, c := range row.Categories {
		byName[c.Name] = c
	}
	for _, name := range categories {
		f.SetCellValue(sheet, cellName(col, rowNum), report.FormatRowPercent(byName[name].MhPct))
		col++
	}

	// Grand total keeps one decimal; data rows round to whole percents.
	if grandTotal {
		f.SetCellValue(sheet, cellName(col, rowNum), report.FormatTotalPercent(row.MhPctComplete))
	} else {
		f.SetCellValue(sheet, cellName(col, rowNum), report.FormatRowPercent(row.MhPctComplete))
	}
}

func categoryNames(row report.GroupRow) []string {
	names := make([]string, 0, len(row.Categories))
	for _, c := range row.Categories {
		names = append(names, c.Name)
	}
	return names
}

func dimensionLabel(dim report.Dimension) string {
	switch dim {
	case report.DimensionArea:
		return "Area"
	case report.DimensionSystem:
		return "System"
	case report.DimensionTestPackage:
		return "Test Package"
	case report.DimensionWelder:
		return "Welder"
	default:
		return "Group"
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
