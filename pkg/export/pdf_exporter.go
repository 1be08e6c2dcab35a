package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter lays a Dataset out as a table on landscape A4. A weekly
// grid carries the time label plus one column per working day, so the
// wide orientation keeps cells readable.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const pdfTableWidth = 277.0

func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("dataset has no headers")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	// The time column gets less room, day columns share the rest evenly.
	timeWidth := pdfTableWidth * 0.12
	dayWidth := pdfTableWidth
	if n := len(data.Headers) - 1; n > 0 {
		dayWidth = (pdfTableWidth - timeWidth) / float64(n)
	} else {
		timeWidth = pdfTableWidth
	}
	width := func(i int) float64 {
		if i == 0 {
			return timeWidth
		}
		return dayWidth
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range data.Headers {
		pdf.CellFormat(width(i), 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for r, row := range data.Rows {
		fill := r%2 == 1
		pdf.SetFillColor(248, 248, 248)
		for i, h := range data.Headers {
			pdf.CellFormat(width(i), 7, clip(row[h], 40), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
