package report

import (
	"strings"

	"github.com/go-pdf/fpdf"

	"inspection-service/models"
)

const notSpecified = "NOT SPECIFIED"

// orNotSpecified substitutes the literal placeholder for blank values so the
// printed report never shows ambiguous empty space.
func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// renderInfoBlock draws the fixed-height two-column metadata card for one
// vehicle: client information on the left, vehicle information on the right.
// It does not participate in page-break decisions; the assembler starts
// every vehicle on a fresh page, so the block always fits.
func (g *Generator) renderInfoBlock(doc *fpdf.Fpdf, cur *layoutCursor, inspection models.InspectionRecord, vehicle models.VehicleRecord) float64 {
	opts := g.opts

	cardX := opts.MarginLeft
	cardW := opts.contentWidth()
	cardH := opts.InfoBlockH
	colW := cardW / 2

	doc.SetFillColor(203, 213, 225)
	doc.RoundedRect(cardX+opts.ShadowOffset, cur.y+opts.ShadowOffset, cardW, cardH, opts.CardRadius, "1234", "F")
	doc.SetFillColor(255, 255, 255)
	doc.SetDrawColor(229, 231, 235)
	doc.RoundedRect(cardX, cur.y, cardW, cardH, opts.CardRadius, "1234", "FD")

	// Column divider
	doc.SetDrawColor(229, 231, 235)
	doc.Line(cardX+colW, cur.y+opts.CardPadding, cardX+colW, cur.y+cardH-opts.CardPadding)

	leftX := cardX + opts.CardPadding
	rightX := cardX + colW + opts.CardPadding
	pillW := colW - 2*opts.CardPadding

	y := cur.y + opts.CardPadding

	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(17, 24, 39)
	doc.Text(leftX, y+4, "CLIENT INFORMATION")
	doc.Text(rightX, y+4, "VEHICLE INFORMATION")
	y += 8

	leftY := y
	leftY = g.drawInfoPill(doc, leftX, leftY, pillW, "Agent", orNotSpecified(inspection.AgentName), false)
	leftY = g.drawInfoPill(doc, leftX, leftY, pillW, "Insured", orNotSpecified(inspection.InsuredName), false)
	g.drawInfoPill(doc, leftX, leftY, pillW, "Policy Number", orNotSpecified(inspection.PolicyNumber), true)

	rightY := y
	rightY = g.drawInfoPill(doc, rightX, rightY, pillW, "Vehicle", orNotSpecified(vehicle.Description()), false)
	rightY = g.drawInfoPill(doc, rightX, rightY, pillW, "License Plate", orNotSpecified(vehicle.LicensePlate), true)
	g.drawInfoPill(doc, rightX, rightY, pillW, "Chassis Number", orNotSpecified(vehicle.ChassisNumber), false)

	return cardH
}

// drawInfoPill draws one label plus its value inside a small rounded pill
// background and returns the Y position for the next pill. Emphasized values
// render in the accent color.
func (g *Generator) drawInfoPill(doc *fpdf.Fpdf, x, y, width float64, label, value string, emphasized bool) float64 {
	const pillH = 7.0
	const labelH = 3.6

	doc.SetFont("Helvetica", "", 7)
	doc.SetTextColor(107, 114, 128)
	doc.Text(x, y+2.8, strings.ToUpper(label))

	doc.SetFillColor(243, 244, 246)
	doc.RoundedRect(x, y+labelH, width, pillH, 1.5, "1234", "F")

	if emphasized {
		doc.SetFont("Helvetica", "B", 9)
		doc.SetTextColor(37, 99, 235)
	} else {
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(17, 24, 39)
	}

	// Truncate rather than overflow the pill.
	text := value
	for doc.GetStringWidth(text) > width-4 && len(text) > 4 {
		text = text[:len(text)-4] + "..."
	}
	doc.Text(x+2, y+labelH+4.8, text)

	return y + labelH + pillH + 2.4
}
