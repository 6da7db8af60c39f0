// Package bill renders customer bills as PDF documents.
package bill

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// Store is the shop header printed on every bill.
type Store struct {
	Name    string
	Address string
	Phone   string
}

// Line is one cart row. Amounts are in minor units.
type Line struct {
	Name      string
	Qty       int
	UnitPrice int64
	Total     int64
}

// Bill holds everything printed on a finalised order.
type Bill struct {
	Store     Store
	Currency  string
	InvoiceNo string
	Date      time.Time
	Customer  string
	Cashier   string
	Lines     []Line
	Total     int64
	Paid      int64
	Due       int64
	// Udhar is the customer's outstanding balance after this bill.
	Udhar int64
	// QRText is encoded in the footer; usually the public bill URL.
	QRText string
}

// Render produces the PDF bytes for b.
func Render(b *Bill) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, b.Store.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if b.Store.Address != "" {
		pdf.CellFormat(0, 5, b.Store.Address, "", 1, "C", false, 0, "")
	}
	if b.Store.Phone != "" {
		pdf.CellFormat(0, 5, "Tel: "+b.Store.Phone, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(64, 6, "Invoice: "+b.InvoiceNo, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, b.Date.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(64, 6, "Customer: "+b.Customer, "", 0, "L", false, 0, "")
	if b.Cashier != "" {
		pdf.CellFormat(0, 6, "Cashier: "+b.Cashier, "", 1, "R", false, 0, "")
	} else {
		pdf.Ln(6)
	}
	pdf.Ln(2)

	widths := []float64{62, 16, 25, 25}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Item", "Qty", "Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range b.Lines {
		pdf.CellFormat(widths[0], 6, l.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", l.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, amount(l.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, amount(l.Total), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	total := func(label string, v int64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, amount(v), "", 1, "R", false, 0, "")
	}
	total("Total ("+b.Currency+")", b.Total, true)
	total("Paid", b.Paid, false)
	total("Due", b.Due, false)
	if b.Udhar > 0 {
		total("Outstanding udhar", b.Udhar, false)
	}

	if b.QRText != "" {
		png, err := qrcode.Encode(b.QRText, qrcode.Medium, 256)
		if err != nil {
			return nil, errors.Wrap(err, "encode bill qr code")
		}
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.Ln(4)
		pdf.ImageOptions("qr", 54, pdf.GetY(), 30, 30, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 32)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for shopping with us", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render bill pdf")
	}
	return buf.Bytes(), nil
}

func amount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
