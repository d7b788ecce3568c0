package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"inspection-service/models"
)

// stampHeader draws the report header band at the top of the first page:
// logo (or text-only fallback), centered title, inspection id and date on
// the right. Returns the consumed height.
func (g *Generator) stampHeader(doc *fpdf.Fpdf, inspection models.InspectionRecord, logo *logoAsset) float64 {
	opts := g.opts

	doc.SetFillColor(31, 41, 55)
	doc.Rect(0, 0, opts.PageWidth, opts.HeaderHeight, "F")

	textX := opts.MarginLeft
	if logo != nil {
		logoY := (opts.HeaderHeight - opts.LogoHeight) / 2
		doc.RegisterImageOptionsReader("header-logo", fpdf.ImageOptions{ImageType: logo.imageType}, bytes.NewReader(logo.data))
		doc.ImageOptions("header-logo", opts.MarginLeft, logoY, opts.LogoWidth, opts.LogoHeight, false, fpdf.ImageOptions{}, 0, "")
		textX += opts.LogoWidth + 4
	}

	doc.SetFont("Helvetica", "B", 15)
	doc.SetTextColor(255, 255, 255)
	titleW := doc.GetStringWidth(opts.Title)
	doc.Text((opts.PageWidth-titleW)/2, opts.HeaderHeight/2+2, opts.Title)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(209, 213, 219)
	idLine := "Inspection " + inspection.ShortID()
	dateLine := inspection.InspectionDate.Format("2006-01-02 15:04")
	doc.Text(opts.PageWidth-opts.MarginRight-doc.GetStringWidth(idLine), opts.HeaderHeight/2-1, idLine)
	doc.Text(opts.PageWidth-opts.MarginRight-doc.GetStringWidth(dateLine), opts.HeaderHeight/2+4, dateLine)

	// The band starts at the physical page top, above the top margin.
	consumed := opts.HeaderHeight - opts.MarginTop
	if consumed < 0 {
		consumed = 0
	}
	return consumed + opts.ElementMargin
}

// footerFunc returns the per-page footer: inspection id on the left and
// "Page X of Y" on the right. The {nb} alias is substituted with the final
// page count in a second pass once assembly has finished, so every page ends
// up with the same total.
func (g *Generator) footerFunc(doc *fpdf.Fpdf, inspection models.InspectionRecord) func() {
	opts := g.opts
	return func() {
		footerTop := opts.PageHeight - opts.MarginBottom - opts.FooterHeight

		doc.SetDrawColor(229, 231, 235)
		doc.Line(opts.MarginLeft, footerTop, opts.PageWidth-opts.MarginRight, footerTop)

		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(107, 114, 128)
		doc.Text(opts.MarginLeft, footerTop+5, "Inspection "+inspection.ShortID())

		pageLabel := fmt.Sprintf("Page %d of {nb}", doc.PageNo())
		// GetStringWidth over the alias is close enough for right alignment;
		// the substituted count is at most a few digits.
		doc.Text(opts.PageWidth-opts.MarginRight-doc.GetStringWidth(pageLabel), footerTop+5, pageLabel)
	}
}

// drawSectionTitle draws a centered section heading and returns its height.
func (g *Generator) drawSectionTitle(doc *fpdf.Fpdf, cur *layoutCursor, title string) float64 {
	opts := g.opts

	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(31, 41, 55)
	titleW := doc.GetStringWidth(title)
	doc.Text(opts.MarginLeft+(opts.contentWidth()-titleW)/2, cur.y+4, title)

	return 7
}
