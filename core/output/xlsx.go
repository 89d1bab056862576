package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fencecost/internal/errors"
)

const xlsxMoneyFormat = "#,##0.00"

// XLSXFormatter renders the quote as a single-sheet workbook. Amounts are
// written as numbers so the sheet can be re-totalled.
type XLSXFormatter struct{}

// Format returns the format type
func (f *XLSXFormatter) Format() Format { return FormatXLSX }

// ContentType returns the MIME type
func (f *XLSXFormatter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension
func (f *XLSXFormatter) Extension() string { return "xlsx" }

// Render writes the workbook to w
func (f *XLSXFormatter) Render(w io.Writer, q *Quote) error {
	if err := validate(q); err != nil {
		return err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := "Quote"
	if q.Kind == KindPurchaseOrder {
		sheet = "Purchase Order"
	}
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return errors.Internal("set sheet name", err)
	}

	widths := map[string]float64{"A": 16, "B": 40, "C": 10, "D": 8, "E": 14, "F": 14}
	for c, width := range widths {
		if err := wb.SetColWidth(sheet, c, c, width); err != nil {
			return errors.Internal("set column width", err)
		}
	}

	titleStyle, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return errors.Internal("create title style", err)
	}
	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return errors.Internal("create header style", err)
	}
	moneyFormat := xlsxMoneyFormat
	moneyStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return errors.Internal("create money style", err)
	}
	totalStyle, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFormat})
	if err != nil {
		return errors.Internal("create total style", err)
	}

	wb.SetCellValue(sheet, "A1", q.Kind.Title())
	wb.SetCellStyle(sheet, "A1", "A1", titleStyle)

	r := 2
	meta := [][2]string{
		{"Generated", q.GeneratedAt.Format("2006-01-02 15:04")},
		{"Reference", q.ID},
		{"Customer", q.Customer},
		{"Project", q.Project},
		{"Currency", q.Currency.String()},
	}
	for _, kv := range meta {
		if kv[1] == "" {
			continue
		}
		wb.SetCellValue(sheet, cell("A", r), kv[0])
		wb.SetCellValue(sheet, cell("B", r), sanitizeCell(kv[1]))
		r++
	}
	r++

	headers := []string{"SKU", "Description", "Quantity", "Unit", "Unit Price", "Extended"}
	headerRow := r
	for i, h := range headers {
		name, _ := excelize.CoordinatesToCellName(i+1, r)
		wb.SetCellValue(sheet, name, h)
	}
	wb.SetCellStyle(sheet, cell("A", r), cell("F", r), headerStyle)
	r++

	b := q.Breakdown
	for _, line := range b.LineItems {
		wb.SetCellValue(sheet, cell("A", r), sanitizeCell(line.SKU))
		wb.SetCellValue(sheet, cell("B", r), sanitizeCell(line.Description))
		wb.SetCellValue(sheet, cell("C", r), line.Quantity.InexactFloat64())
		wb.SetCellValue(sheet, cell("D", r), sanitizeCell(line.Unit))
		wb.SetCellValue(sheet, cell("E", r), line.UnitPrice.InexactFloat64())
		wb.SetCellValue(sheet, cell("F", r), line.ExtendedPrice.InexactFloat64())
		wb.SetCellStyle(sheet, cell("E", r), cell("F", r), moneyStyle)
		r++
	}
	if err := wb.AutoFilter(sheet, fmt.Sprintf("A%d:F%d", headerRow, r-1), nil); err != nil {
		return errors.Internal("set auto filter", err)
	}
	r++

	totals := []struct {
		label string
		value float64
	}{
		{"Materials", b.MaterialsSubtotal.InexactFloat64()},
		{fmt.Sprintf("Labor (%s h x %s)", b.LaborHours.String(), b.LaborRate.StringFixed(2)), b.LaborTotal.InexactFloat64()},
		{"Subtotal", b.Subtotal.InexactFloat64()},
		{fmt.Sprintf("Margin (%s%%)", b.MarginPct.String()), b.MarginAmount.InexactFloat64()},
		{"TOTAL", b.Total.InexactFloat64()},
	}
	for i, t := range totals {
		wb.SetCellValue(sheet, cell("E", r), t.label)
		wb.SetCellValue(sheet, cell("F", r), t.value)
		style := moneyStyle
		if i == len(totals)-1 {
			style = totalStyle
		}
		wb.SetCellStyle(sheet, cell("F", r), cell("F", r), style)
		r++
	}

	if _, err := wb.WriteTo(w); err != nil {
		return errors.Internal("write workbook", err)
	}
	return nil
}

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

// sanitizeCell prevents text from being interpreted as a formula
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
