// Package receipt renders payment receipts and shop invoices as PDF.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const brand = "PetVerse"

type Payment struct {
	ReceiptID string
	PaidAt    time.Time
	PaidBy    string
	Kind      string
	Amount    decimal.Decimal
	Currency  string
	// Details are label/value rows describing what was paid for.
	Details [][2]string
}

type InvoiceLine struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type Invoice struct {
	OrderID  uint64
	IssuedAt time.Time
	Customer string
	Currency string
	Lines    []InvoiceLine
	Total    decimal.Decimal
}

func newDoc(title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(brand, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(currency string, d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currency, d.StringFixed(2))
}

func RenderPayment(p Payment) ([]byte, error) {
	pdf, tr := newDoc(brand + " Payment Receipt")

	rows := [][2]string{
		{"Receipt ID", p.ReceiptID},
		{"Date", p.PaidAt.Format("02 Jan 2006, 15:04")},
		{"Paid By", p.PaidBy},
		{"Payment Type", p.Kind},
		{"Amount", money(p.Currency, p.Amount)},
	}
	rows = append(rows, p.Details...)

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Thank you for choosing "+brand+".", "", 1, "C", false, 0, "")
	return output(pdf)
}

func RenderInvoice(inv Invoice) ([]byte, error) {
	pdf, tr := newDoc(fmt.Sprintf("%s Invoice #%d", brand, inv.OrderID))

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Customer: "+inv.Customer), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: "+inv.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{90, 35, 20, 45}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Product", "Price", "Qty", "Subtotal"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range inv.Lines {
		sub := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		pdf.CellFormat(widths[0], 8, tr(l.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, l.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 8, sub.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 9, money(inv.Currency, inv.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Thank you for shopping with "+brand+".", "", 1, "C", false, 0, "")
	return output(pdf)
}
