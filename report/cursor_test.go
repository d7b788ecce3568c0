package report

import (
	"testing"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Compress = false
	return opts
}

func TestLayoutCursor_FitsAndAdvance(t *testing.T) {
	opts := testOptions()

	pageBreaks := 0
	cur := newLayoutCursor(opts, func() { pageBreaks++ })

	if cur.page != 1 {
		t.Errorf("Expected cursor to start on page 1, got %d", cur.page)
	}
	if cur.y != opts.MarginTop {
		t.Errorf("Expected cursor to start at top margin %f, got %f", opts.MarginTop, cur.y)
	}

	usable := opts.maxContentY() - opts.MarginTop
	if got := cur.remaining(); got != usable {
		t.Errorf("Expected remaining %f on fresh page, got %f", usable, got)
	}

	if !cur.fits(usable) {
		t.Error("Expected block of exactly the usable height to fit")
	}
	if cur.fits(usable + 0.1) {
		t.Error("Expected block above the usable height not to fit")
	}

	cur.advanceBy(100)
	if got := cur.remaining(); got != usable-100 {
		t.Errorf("Expected remaining %f after advance, got %f", usable-100, got)
	}

	cur.advancePage()
	if cur.page != 2 {
		t.Errorf("Expected page 2 after advancePage, got %d", cur.page)
	}
	if cur.y != opts.MarginTop {
		t.Errorf("Expected cursor reset to top margin, got %f", cur.y)
	}
	if pageBreaks != 1 {
		t.Errorf("Expected exactly 1 physical page break, got %d", pageBreaks)
	}
}

// Page-break decisions must be deterministic: a fixed sequence of block
// heights always lands on the same pages.
func TestLayoutCursor_DeterministicBreaks(t *testing.T) {
	opts := testOptions()
	blocks := []float64{120, 90, 140, 30, 200, 60, 110, 45}

	layout := func() []int {
		cur := newLayoutCursor(opts, func() {})
		pages := make([]int, 0, len(blocks))
		for _, h := range blocks {
			if !cur.fits(h) {
				cur.advancePage()
			}
			pages = append(pages, cur.page)
			cur.advanceBy(h + opts.ElementMargin)
		}
		return pages
	}

	first := layout()
	for run := 0; run < 5; run++ {
		again := layout()
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("Run %d: block %d landed on page %d, expected page %d", run, i, again[i], first[i])
			}
		}
	}

	// Sanity: the sequence above cannot fit on one page.
	last := first[len(first)-1]
	if last < 2 {
		t.Errorf("Expected block sequence to span multiple pages, ended on page %d", last)
	}
}
