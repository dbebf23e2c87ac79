// Package export writes the quote comparison workbook of an enquiry.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"enquiry-admin-console/internal/models"
	"enquiry-admin-console/internal/quotes"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Quotes"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"Product", "Vendor", "Unit Price", "Delivery Date", "Valid Till",
	"Status", "Visible To Buyer", "Description", "Attachment",
}

// FileName is the download name of an enquiry's workbook.
func FileName(e models.Enquiry, now time.Time) string {
	return strings.ToLower(e.DisplayID(now)) + "-quotes.xlsx"
}

// QuotesWorkbook lays out one row per quote, grouped by product in the order
// the groups are given. Unit prices a float holds without loss are written as
// numbers.
func QuotesWorkbook(groups []quotes.Group) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	row := 2
	for _, g := range groups {
		for _, q := range g.Quotes {
			for col, value := range quoteRow(g.Name, q) {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(SheetName, cell, value)
			}
			row++
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(SheetName, "A", last, 18)
	f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	f.DeleteSheet("Sheet1")
	return f, nil
}

// Render builds the workbook and returns its bytes.
func Render(groups []quotes.Group) ([]byte, error) {
	f, err := QuotesWorkbook(groups)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func quoteRow(product string, q models.Quote) []any {
	var price any = q.UnitPrice
	if d, ok := quotes.UnitPrice(q); ok {
		// Prices that do not survive a float round trip stay as text.
		if v := d.InexactFloat64(); decimal.NewFromFloat(v).Equal(d) {
			price = v
		} else {
			price = d.String()
		}
	}
	visible := "No"
	if q.VisibleToClient {
		visible = "Yes"
	}
	return []any{
		product,
		q.VendorName(),
		price,
		formatDate(q.DeliveryDate),
		formatDate(q.ValidTill),
		q.QuoteStatus,
		visible,
		q.Description,
		q.Attachment,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
