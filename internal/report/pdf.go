package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin   = 10.0
	pdfRowH     = 7.0
	pdfFontSize = 9.0
)

// WritePDF lays the report out on landscape A4 pages: title, range, metrics,
// then the rows as a bordered table whose header repeats on every page.
// Cells too wide for their column are cut with an ellipsis.
func (r *Report) WritePDF(w io.Writer) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(r.Schema.Title+" report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(max(len(r.Columns), 1))

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range r.Columns {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(c), colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(r.Schema.Title+" report"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s, %d %s", r.Range, len(r.Rows), plural(len(r.Rows), "entry", "entries"))), "", 1, "L", false, 0, "")
	for _, m := range r.Metrics {
		pdf.CellFormat(0, 6, tr(m.Title+": "+m.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(r.Rows) == 0 {
		pdf.CellFormat(0, 6, "No records in range.", "", 1, "L", false, 0, "")
	} else {
		pdf.SetHeaderFunc(header)
		header()
		for _, row := range r.Rows {
			for _, v := range row {
				pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(v), colW), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
