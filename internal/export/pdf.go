package export

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const pdfFont = "Helvetica"

// WritePDF renders r as a single-column A4 document.
func WritePDF(w io.Writer, r Report) error {
	return writePDF(w, r, true)
}

func writePDF(w io.Writer, r Report, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("safestride", false)
	pdf.SetCreationDate(r.Generated)
	pdf.SetModificationDate(r.Generated)

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if r.Footer != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			pdf.SetFont(pdfFont, "I", 8)
			pdf.SetTextColor(128, 128, 128)
			pdf.CellFormat(0, 10, tr(r.Footer), "", 0, "C", false, 0, "")
		})
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 20)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	if !r.Generated.IsZero() {
		pdf.SetFont(pdfFont, "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 6, "Generated: "+r.Generated.UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(8)

	for _, s := range r.Sections {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 8, tr(s.Heading), "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 11)
		for _, line := range s.Lines {
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	return pdf.Output(w)
}
