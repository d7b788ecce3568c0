package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

var logoHTTPClient = &http.Client{
	Timeout: 8 * time.Second,
}

// logoAsset is an image ready for embedding in the report header.
type logoAsset struct {
	data      []byte
	imageType string // "PNG" or "JPEG"
}

// loadLogo fetches the configured logo once per render. Failure is never
// fatal: it falls back to a locally drawn badge, and the header renders as
// text only if even that fails.
func (g *Generator) loadLogo(ctx context.Context) *logoAsset {
	if g.logoURL != "" {
		asset, err := fetchLogo(ctx, g.logoURL)
		if err == nil {
			return asset
		}
		log.WithError(err).Warnf("Failed to load logo from %s, using fallback badge", g.logoURL)
	}

	asset, err := drawLogoBadge(g.opts)
	if err != nil {
		log.WithError(err).Warn("Failed to draw fallback logo badge, header will be text only")
		return nil
	}
	return asset
}

// fetchLogo downloads the logo image and validates its content type.
func fetchLogo(ctx context.Context, url string) (*logoAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := logoHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch logo: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "png"):
		return &logoAsset{data: data, imageType: "PNG"}, nil
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return &logoAsset{data: data, imageType: "JPEG"}, nil
	}

	// Fall back to sniffing the magic bytes.
	if len(data) > 8 && data[0] == 0x89 && data[1] == 'P' {
		return &logoAsset{data: data, imageType: "PNG"}, nil
	}
	if len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return &logoAsset{data: data, imageType: "JPEG"}, nil
	}
	return nil, fmt.Errorf("unsupported logo content type %q", contentType)
}

// drawLogoBadge renders a simple badge with the report initials, used when
// no logo can be fetched.
func drawLogoBadge(opts Options) (*logoAsset, error) {
	w := opts.pxForMM(opts.LogoWidth)
	h := opts.pxForMM(opts.LogoHeight)

	dc := gg.NewContext(w, h)
	dc.SetRGB255(37, 99, 235)
	dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), float64(h)/6)
	dc.Fill()

	dc.SetRGB255(255, 255, 255)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(badgeInitials(opts.Title), float64(w)/2, float64(h)/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode logo badge: %w", err)
	}
	return &logoAsset{data: buf.Bytes(), imageType: "PNG"}, nil
}

// badgeInitials derives up to three initials from the report title.
func badgeInitials(title string) string {
	initials := ""
	for _, word := range strings.Fields(title) {
		initials += string(word[0])
		if len(initials) == 3 {
			break
		}
	}
	if initials == "" {
		return "IR"
	}
	return strings.ToUpper(initials)
}
