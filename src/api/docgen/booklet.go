// Package docgen renders a candidate's commitments as a PDF booklet.
package docgen

import (
	"bytes"

	"github.com/da-upm/participa/src/api/commitments"
	"github.com/da-upm/participa/src/api/sanitize"
	"github.com/go-pdf/fpdf"
)

// Builder turns a candidate's commitment entries into a binary document.
type Builder interface {
	Booklet(candidateName string, entries []commitments.BookletEntry) ([]byte, error)
}

type PDFBuilder struct{}

func NewPDFBuilder() PDFBuilder { return PDFBuilder{} }

func (PDFBuilder) Booklet(candidateName string, entries []commitments.BookletEntry) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Compromisos de "+candidateName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, "Compromisos electorales", "", "C", false)
	pdf.SetFont("Helvetica", "", 14)
	pdf.MultiCell(0, 8, candidateName, "", "C", false)
	pdf.Ln(6)

	for _, e := range entries {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, e.Title, "", "L", false)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, sanitize.Plain(e.Description), "", "L", false)
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, sanitize.Plain(e.Content), "", "L", false)
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
