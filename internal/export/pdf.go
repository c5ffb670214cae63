package export

import (
	"fmt"
	"io"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/go-pdf/fpdf"
)

const PDFContentType = "application/pdf"

// Геометрия страницы A4 в мм
const (
	pageHeight  = 297.0
	margin      = 20.0
	indent      = 25.0
	lineStep    = 8.0
	teamStep    = 6.0
	titleStep   = 12.0
	sectionStep = 7.0
)

func PDFFilename(id int) string {
	return fmt.Sprintf("fiche_ao_%d.pdf", id)
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

// line печатает строку и переносит на новую страницу у нижнего поля
func (p *pdfWriter) line(x float64, text string, step float64) {
	p.pdf.Text(x, p.y, p.tr(text))
	p.y += step
	if p.y > pageHeight-margin {
		p.pdf.AddPage()
		p.pdf.SetFont("Helvetica", "", 12)
		p.y = margin
	}
}

func renderTenderPDF(t *models.Tender) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(t.NomAO, true)
	pdf.AddPage()

	p := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), y: margin}

	pdf.SetFont("Helvetica", "B", 16)
	p.line(margin, "Fiche Appel d'Offres : "+t.NomAO, titleStep)

	pdf.SetFont("Helvetica", "", 12)
	for _, f := range tenderFields(t) {
		if f.value == "" {
			continue
		}
		p.line(margin, f.label+" : "+f.value, lineStep)
	}

	if len(t.EquipeProjet) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		p.line(margin, "Équipe projet :", sectionStep)
		pdf.SetFont("Helvetica", "", 12)
		for _, m := range t.EquipeProjet {
			p.line(indent, fmt.Sprintf("- %s (%s)", m.Nom, m.Role), teamStep)
		}
	}
	return pdf
}

// WriteTenderPDF печатает карточку тендера в формате A4
func WriteTenderPDF(w io.Writer, t *models.Tender) error {
	pdf := renderTenderPDF(t)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
