package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/config"
)

// Renderer produces the academy's receipt document: logo mark and receipt
// header up top, academy and student address blocks, a payment-method table,
// and a single-line items table with a total.
type Renderer struct {
	academyName    string
	academyAddress string
	academyCity    string
}

func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		academyName:    cfg.AcademyName,
		academyAddress: cfg.AcademyAddress,
		academyCity:    cfg.AcademyCity,
	}
}

func (r *Renderer) Render(f receipt.Fields) ([]byte, error) {
	p := gofpdf.New("P", "mm", "Letter", "")
	p.SetMargins(19, 19, 19)
	p.AddPage()

	// Logo mark: boxed "SJ PA" initials.
	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(24, 18, "SJ PA", "1", 0, "C", false, 0, "")

	// Receipt header, right-aligned.
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(0, 6, fmt.Sprintf("Receipt #: %s", f.ReceiptNumber), "", 2, "R", false, 0, "")
	p.CellFormat(0, 6, fmt.Sprintf("Paid on : %s", f.PaidOn.Format("Jan 02, 2006")), "", 1, "R", false, 0, "")
	p.Ln(10)

	// Academy block left, student block right.
	y := p.GetY()
	p.MultiCell(90, 6, fmt.Sprintf("%s\n%s\n%s", r.academyName, r.academyAddress, r.academyCity), "", "L", false)
	p.SetY(y)
	p.SetX(110)
	p.MultiCell(0, 6, fmt.Sprintf("%s\n%s", f.StudentName, f.StudentEmail), "", "R", false)
	p.Ln(10)

	// Payment method table.
	p.SetFillColor(237, 237, 237)
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(90, 8, "Payment Method", "B", 0, "L", true, 0, "")
	p.CellFormat(0, 8, "Check #", "B", 1, "R", true, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(90, 8, "E Transfer", "", 0, "L", false, 0, "")
	p.CellFormat(0, 8, "NA", "", 1, "R", false, 0, "")
	p.Ln(5)

	// Items table with total.
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(90, 8, "Item", "B", 0, "L", true, 0, "")
	p.CellFormat(0, 8, "Price", "B", 1, "R", true, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(90, 8, "Piano Class", "", 0, "L", false, 0, "")
	p.CellFormat(0, 8, fmt.Sprintf("$%.0f", f.Amount), "", 1, "R", false, 0, "")
	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(90, 8, "", "T", 0, "L", false, 0, "")
	p.CellFormat(0, 8, fmt.Sprintf("Total: $%.0f", f.Amount), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
