// Package render turns decoded PDF pages into bounded PNG images.
// Rasterization is backed by MuPDF via go-fitz; the Source interface keeps
// the engine swappable and the resolution-fit logic testable.
package render

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"pdf2image/internal/domain"
)

// Source is a decoded document: an ordered sequence of pages, each renderable
// at a chosen resolution. Implementations are read-only from the rasterizer's
// perspective.
type Source interface {
	NumPage() int
	ImageDPI(index int, dpi float64) (image.Image, error)
	Close() error
}

type document struct {
	doc *fitz.Document
}

// Open decodes raw PDF bytes into a Source. The caller owns the handle and
// must Close it.
func Open(data []byte) (Source, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return &document{doc: doc}, nil
}

func (d *document) NumPage() int { return d.doc.NumPage() }

func (d *document) ImageDPI(index int, dpi float64) (image.Image, error) {
	return d.doc.ImageDPI(index, dpi)
}

func (d *document) Close() error { return d.doc.Close() }
