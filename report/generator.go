package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/go-pdf/fpdf"

	"inspection-service/models"
)

// SkippedPhoto records one photo that could not be rendered. Per-photo
// failures never abort the document; they are collected here for
// diagnostics.
type SkippedPhoto struct {
	PhotoID  string               `json:"photo_id"`
	Category models.PhotoCategory `json:"category"`
	Reason   string               `json:"reason"`
}

// Result is the outcome of one render pass. PDF always holds a complete
// document: on total generation failure it contains a minimal fallback page
// describing the failure and Fallback is set, so callers always receive an
// artifact.
type Result struct {
	PDF      []byte
	Pages    int
	Skipped  []SkippedPhoto
	Fallback bool
	Err      error
}

// Generator renders inspection records into paginated PDF reports. It is
// stateless across calls; all per-render state lives in the layout cursor,
// created fresh for each Generate call.
type Generator struct {
	opts    Options
	logoURL string
}

// NewGenerator creates a report generator with the given layout options.
// logoURL is optional; an empty value skips the fetch and uses the drawn
// fallback badge.
func NewGenerator(opts Options, logoURL string) *Generator {
	return &Generator{
		opts:    opts,
		logoURL: logoURL,
	}
}

// Generate renders the inspection into a multi-page PDF. The pass is fully
// sequential: drawing is stateful and ordered, so photo cards are laid out
// one at a time against a single cursor. Every vehicle starts on a fresh
// page so its info block is never split from its gallery.
func (g *Generator) Generate(ctx context.Context, inspection models.InspectionRecord) Result {
	start := time.Now()
	opts := g.opts

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
	})
	doc.SetMargins(opts.MarginLeft, opts.MarginTop, opts.MarginRight)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(opts.Compress)
	doc.AliasNbPages("")
	doc.SetFooterFunc(g.footerFunc(doc, inspection))
	doc.AddPage()

	cursor := newLayoutCursor(opts, doc.AddPage)

	logo := g.loadLogo(ctx)
	cursor.advanceBy(g.stampHeader(doc, inspection, logo))

	var skipped []SkippedPhoto
	for i, vehicle := range inspection.Vehicles {
		if i > 0 {
			cursor.advancePage()
		}
		skipped = append(skipped, g.renderVehicle(doc, cursor, inspection, vehicle)...)
	}

	pages := doc.PageCount()

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		log.WithError(err).Errorf("Report generation failed for inspection %s", inspection.ID)
		return g.fallbackResult(inspection, err)
	}

	log.Infof("Generated report for inspection %s: %d pages, %d vehicles, %d skipped photos, %d bytes (in %s)",
		inspection.ID, pages, len(inspection.Vehicles), len(skipped), buf.Len(), time.Since(start))

	return Result{
		PDF:     buf.Bytes(),
		Pages:   pages,
		Skipped: skipped,
	}
}

// renderVehicle draws one vehicle's info block and photo gallery, deciding
// page breaks from the remaining space.
func (g *Generator) renderVehicle(doc *fpdf.Fpdf, cursor *layoutCursor, inspection models.InspectionRecord, vehicle models.VehicleRecord) []SkippedPhoto {
	opts := g.opts

	cursor.advanceBy(g.renderInfoBlock(doc, cursor, inspection, vehicle) + opts.ElementMargin)

	photos := vehicle.PhotosWithPayload()
	if len(photos) == 0 {
		return nil
	}

	cursor.advanceBy(g.drawSectionTitle(doc, cursor, "VEHICLE PHOTOS") + opts.ElementMargin/2)

	var skipped []SkippedPhoto
	for _, photo := range photos {
		estimated := g.estimatePhotoCardHeight(doc, photo)
		if !cursor.fits(estimated) {
			cursor.advancePage()
		}

		maxHeight := cursor.remaining() - opts.ElementMargin
		consumed, err := g.renderPhotoCard(doc, cursor, photo, maxHeight)
		if err != nil {
			log.WithError(err).Warnf("Skipping photo %s (%s) for vehicle %s", photo.ID, photo.Category, vehicle.ID)
			skipped = append(skipped, SkippedPhoto{
				PhotoID:  photo.ID,
				Category: photo.Category,
				Reason:   err.Error(),
			})
			continue
		}
		cursor.advanceBy(consumed + opts.ElementMargin)
	}
	return skipped
}

// fallbackResult produces the minimal one-page failure document so the
// caller still receives an artifact when the report itself cannot be built.
func (g *Generator) fallbackResult(inspection models.InspectionRecord, cause error) Result {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(g.opts.Compress)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(185, 28, 28)
	doc.Text(20, 40, "REPORT GENERATION FAILED")

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(17, 24, 39)
	doc.Text(20, 52, "Inspection "+inspection.ShortID())
	doc.SetXY(20, 60)
	doc.MultiCell(170, 5.5, fmt.Sprintf("The inspection report could not be generated: %v. Please retry, or contact support with the inspection id above.", cause), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		// Nothing more we can produce.
		return Result{Fallback: true, Err: fmt.Errorf("fallback document failed after %v: %w", cause, err)}
	}

	return Result{
		PDF:      buf.Bytes(),
		Pages:    1,
		Fallback: true,
		Err:      cause,
	}
}
