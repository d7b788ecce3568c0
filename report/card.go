package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	imgpkg "inspection-service/image"
	"inspection-service/models"
)

// photoFloor returns the legibility floor for the photo's category. Critical
// categories (VIN, registration, ID) must stay readable in print and get a
// larger minimum box.
func (o Options) photoFloor(category models.PhotoCategory) (float64, float64) {
	if category.Critical() {
		return o.MinCriticalPhotoW, o.MinCriticalPhotoH
	}
	return o.MinPhotoW, o.MinPhotoH
}

// photoBox computes the final render box for a photo with the given source
// dimensions under the card width and maxHeight constraints. The aspect
// ratio is always preserved. The box may exceed maxHeight when shrinking
// further would violate the legibility floor.
func (o Options) photoBox(category models.PhotoCategory, srcW, srcH int, availableWidth, maxHeight float64) (float64, float64) {
	aspect := 4.0 / 3.0
	if srcW > 0 && srcH > 0 {
		aspect = float64(srcW) / float64(srcH)
	}

	w := availableWidth
	h := w / aspect

	maxH := o.MaxPhotoH
	if maxHeight > 0 && maxHeight < maxH {
		maxH = maxHeight
	}
	if h > maxH {
		h = maxH
		w = h * aspect
	}

	// Scale back up to the floor if the height clamp pushed the image below
	// it. Exceeding maxHeight by the minimum necessary amount is preferred
	// over an illegible image.
	minW, minH := o.photoFloor(category)
	scale := 1.0
	if w < minW && minW/w > scale {
		scale = minW / w
	}
	if h < minH && minH/h > scale {
		scale = minH / h
	}
	w *= scale
	h *= scale

	// Never wider than the card interior.
	if w > availableWidth {
		w = availableWidth
		h = w / aspect
	}

	return w, h
}

// captionHeight returns the height of the wrapped caption block.
func captionHeight(doc *fpdf.Fpdf, opts Options, caption string, width float64) float64 {
	doc.SetFont("Helvetica", "B", opts.CaptionFontSize)
	lines := doc.SplitText(caption, width)
	if len(lines) == 0 {
		return opts.CaptionLineH
	}
	return float64(len(lines)) * opts.CaptionLineH
}

// estimatePhotoCardHeight is the conservative pre-check the assembler uses
// for its page-break decision, computed without re-encoding the image.
func (g *Generator) estimatePhotoCardHeight(doc *fpdf.Fpdf, photo *models.Photo) float64 {
	opts := g.opts
	interior := opts.contentWidth() - 2*opts.CardPadding

	srcW, srcH := 0, 0
	if raw, _, err := photo.DecodePayload(); err == nil {
		srcW, srcH, _ = imgpkg.Dimensions(raw)
	}

	_, imgH := opts.photoBox(photo.Category, srcW, srcH, interior, opts.MaxPhotoH)
	capH := captionHeight(doc, opts, photo.Caption(), interior)
	return imgH + capH + 3*opts.CardPadding
}

// renderPhotoCard draws one photo card (shadow, rounded card, re-encoded
// image, wrapped caption) at the cursor position and returns the consumed
// height. The image is re-encoded to its exact final render box.
func (g *Generator) renderPhotoCard(doc *fpdf.Fpdf, cur *layoutCursor, photo *models.Photo, maxHeight float64) (float64, error) {
	opts := g.opts

	raw, _, err := photo.DecodePayload()
	if err != nil {
		return 0, err
	}

	srcW, srcH, err := imgpkg.Dimensions(raw)
	if err != nil {
		return 0, fmt.Errorf("photo %s: %w", photo.ID, err)
	}

	cardX := opts.MarginLeft
	cardW := opts.contentWidth()
	interior := cardW - 2*opts.CardPadding

	capH := captionHeight(doc, opts, photo.Caption(), interior)
	maxImgH := maxHeight - capH - 3*opts.CardPadding
	imgW, imgH := opts.photoBox(photo.Category, srcW, srcH, interior, maxImgH)

	encoded, err := imgpkg.Reencode(raw, opts.pxForMM(imgW), opts.pxForMM(imgH), opts.JpegQuality)
	if err != nil {
		return 0, fmt.Errorf("photo %s: %w", photo.ID, err)
	}

	cardH := imgH + capH + 3*opts.CardPadding

	// Drop shadow, then the card itself.
	doc.SetFillColor(203, 213, 225)
	doc.RoundedRect(cardX+opts.ShadowOffset, cur.y+opts.ShadowOffset, cardW, cardH, opts.CardRadius, "1234", "F")
	doc.SetFillColor(255, 255, 255)
	doc.SetDrawColor(229, 231, 235)
	doc.RoundedRect(cardX, cur.y, cardW, cardH, opts.CardRadius, "1234", "FD")

	imgX := cardX + (cardW-imgW)/2
	imgY := cur.y + opts.CardPadding
	name := "photo-" + photo.ID
	doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPEG"}, bytes.NewReader(encoded))
	doc.ImageOptions(name, imgX, imgY, imgW, imgH, false, fpdf.ImageOptions{}, 0, "")

	doc.SetFont("Helvetica", "B", opts.CaptionFontSize)
	doc.SetTextColor(55, 65, 81)
	doc.SetXY(cardX+opts.CardPadding, imgY+imgH+opts.CardPadding)
	doc.MultiCell(interior, opts.CaptionLineH, photo.Caption(), "", "C", false)

	return cardH, nil
}
