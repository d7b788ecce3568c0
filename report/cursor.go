package report

// layoutCursor tracks the vertical position and page number of one render
// pass. Page breaks are never implicit: every advancePage call is an explicit
// decision by the assembler based on fits().
type layoutCursor struct {
	opts Options

	page int // 1-based
	y    float64

	// newPage issues a fresh physical page in the output document.
	newPage func()
}

func newLayoutCursor(opts Options, newPage func()) *layoutCursor {
	return &layoutCursor{
		opts:    opts,
		page:    1,
		y:       opts.MarginTop,
		newPage: newPage,
	}
}

// remaining returns the vertical space left before the footer band.
func (c *layoutCursor) remaining() float64 {
	return c.opts.maxContentY() - c.y
}

// fits reports whether a block of the given height fits on the current page.
func (c *layoutCursor) fits(height float64) bool {
	return height <= c.remaining()
}

// advancePage moves to the top of a fresh page.
func (c *layoutCursor) advancePage() {
	c.page++
	c.y = c.opts.MarginTop
	if c.newPage != nil {
		c.newPage()
	}
}

// advanceBy moves the cursor down after a block has been drawn.
func (c *layoutCursor) advanceBy(height float64) {
	c.y += height
}
