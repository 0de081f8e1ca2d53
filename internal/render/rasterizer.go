package render

import (
	"bytes"
	"fmt"
	"image/png"

	"pdf2image/internal/domain"
)

// Image is one fully rendered page, PNG-encoded, created fresh per page per
// invocation and never reused.
type Image struct {
	PageIndex int
	Width     int
	Height    int
	PNG       []byte
}

// Rasterizer renders single pages so that the longest edge does not exceed
// MaxEdgePixels, at the highest resolution that satisfies the bound.
type Rasterizer struct {
	DPI           int
	MaxEdgePixels int
}

// RenderPage produces exactly one Image for the page at index.
//
// The page is rendered at DPI first. If the longest edge exceeds
// MaxEdgePixels, the dpi is scaled down by maxEdge/longest (truncated to an
// integer) and the page is rendered once more at that resolution. There is
// no further correction: truncation biases toward slightly smaller images,
// and the second render is final even if rounding leaves the longest edge
// marginally over the bound.
func (r Rasterizer) RenderPage(src Source, index int) (Image, error) {
	if r.DPI <= 0 || r.MaxEdgePixels <= 0 {
		return Image{}, fmt.Errorf("%w: dpi=%d max_edge_pixels=%d", domain.ErrInvalidConfig, r.DPI, r.MaxEdgePixels)
	}

	img, err := src.ImageDPI(index, float64(r.DPI))
	if err != nil {
		return Image{}, fmt.Errorf("%w: page %d: %v", domain.ErrDecode, index, err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if longest := max(w, h); longest > r.MaxEdgePixels {
		ratio := float64(r.MaxEdgePixels) / float64(longest)
		adjusted := int(float64(r.DPI) * ratio)
		// A tiny bound can truncate the adjusted dpi all the way to 0;
		// clamp so the re-render stays valid.
		if adjusted < 1 {
			adjusted = 1
		}
		img, err = src.ImageDPI(index, float64(adjusted))
		if err != nil {
			return Image{}, fmt.Errorf("%w: page %d at %d dpi: %v", domain.ErrDecode, index, adjusted, err)
		}
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encode page %d: %w", index, err)
	}

	return Image{PageIndex: index, Width: w, Height: h, PNG: buf.Bytes()}, nil
}
