// Package export writes ledger rows as CSV or XLSX downloads.
package export

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Row is one exported transaction.
type Row struct {
	Date        string  `csv:"date"`
	Type        string  `csv:"type"`
	Description string  `csv:"description"`
	Amount      float64 `csv:"amount"`
	OrderID     string  `csv:"order_id"`
	CreatedBy   string  `csv:"created_by"`
	ProofImage  string  `csv:"proof_image"`
}

var headers = []interface{}{"Date", "Type", "Description", "Amount", "Order", "Created by", "Proof image"}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes rows in format ("csv" or "xlsx").
func Write(format string, rows []Row) ([]byte, error) {
	switch format {
	case "", FormatCSV:
		return CSV(rows)
	case FormatXLSX:
		return XLSX("Transactions", rows, nil)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func CSV(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return nil, errors.Wrap(err, "marshal csv")
	}
	return buf.Bytes(), nil
}

// Summary is an optional key/value block written to its own sheet.
type Summary struct {
	Label string
	Value interface{}
}

// XLSX writes rows to a sheet named sheet, plus a "Summary" sheet when summary is given.
func XLSX(sheet string, rows []Row, summary []Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.Date, r.Type, r.Description, r.Amount, r.OrderID, r.CreatedBy, r.ProofImage}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "write row %d", i+2)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "C", "C", 40)

	if len(summary) > 0 {
		if _, err := f.NewSheet("Summary"); err != nil {
			return nil, errors.Wrap(err, "add summary sheet")
		}
		for i, s := range summary {
			values := []interface{}{s.Label, s.Value}
			if err := f.SetSheetRow("Summary", fmt.Sprintf("A%d", i+1), &values); err != nil {
				return nil, errors.Wrap(err, "write summary")
			}
		}
		_ = f.SetColWidth("Summary", "A", "A", 24)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}
