// Package report renders a vehicle inspection record into a paginated PDF
// document: an info card per vehicle followed by a one-photo-per-row gallery,
// with a repeated header band and a "Page X of Y" footer on every page.
package report

// Options is the immutable layout configuration for one Generator. All
// lengths are millimeters on an A4-style page unless noted otherwise.
// Passing the options explicitly (instead of a package-level table) keeps the
// layout engine testable with alternate geometries.
type Options struct {
	// Page geometry
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
	FooterHeight float64 // band reserved at the bottom of every page

	// Header
	HeaderHeight float64
	LogoWidth    float64
	LogoHeight   float64
	Title        string

	// Cards
	CardPadding   float64
	CardRadius    float64
	ShadowOffset  float64
	ElementMargin float64 // vertical gap between stacked blocks
	InfoBlockH    float64 // fixed two-column info card height

	// Photo sizing. Critical categories (VIN, registration, ID) get a larger
	// legibility floor than generic photos.
	MinPhotoW         float64
	MinPhotoH         float64
	MinCriticalPhotoW float64
	MinCriticalPhotoH float64
	MaxPhotoH         float64

	// Text
	CaptionFontSize float64 // points
	CaptionLineH    float64

	// Image re-encoding
	JpegQuality int
	DPI         float64

	// Compress toggles PDF stream compression. Disabled in tests so the
	// page text can be asserted on directly.
	Compress bool
}

// DefaultOptions returns the production layout configuration (A4 portrait).
func DefaultOptions() Options {
	return Options{
		PageWidth:    210,
		PageHeight:   297,
		MarginLeft:   15,
		MarginRight:  15,
		MarginTop:    15,
		MarginBottom: 12,
		FooterHeight: 10,

		HeaderHeight: 26,
		LogoWidth:    22,
		LogoHeight:   16,
		Title:        "VEHICLE INSPECTION REPORT",

		CardPadding:   4,
		CardRadius:    2.5,
		ShadowOffset:  0.8,
		ElementMargin: 6,
		InfoBlockH:    52,

		MinPhotoW:         60,
		MinPhotoH:         45,
		MinCriticalPhotoW: 110,
		MinCriticalPhotoH: 75,
		MaxPhotoH:         120,

		CaptionFontSize: 9,
		CaptionLineH:    4.5,

		JpegQuality: 58,
		DPI:         150,

		Compress: true,
	}
}

// contentWidth returns the usable horizontal space between the margins.
func (o Options) contentWidth() float64 {
	return o.PageWidth - o.MarginLeft - o.MarginRight
}

// maxContentY returns the lowest Y the content area may reach before the
// footer band.
func (o Options) maxContentY() float64 {
	return o.PageHeight - o.MarginBottom - o.FooterHeight
}

// pxForMM converts a length in millimeters to pixels at the configured DPI,
// used to size re-encoded images to their exact render box.
func (o Options) pxForMM(mm float64) int {
	px := int(mm / 25.4 * o.DPI)
	if px < 1 {
		px = 1
	}
	return px
}
