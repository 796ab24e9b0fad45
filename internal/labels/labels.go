// Package labels renders shelf label barcodes.
package labels

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// Default barcode size in pixels.
const (
	DefaultWidth  = 360
	DefaultHeight = 80
)

// Barcode renders content as a Code 128 barcode scaled to width x height.
func Barcode(content string, width, height int) (barcode.Barcode, error) {
	if content == "" {
		return nil, fmt.Errorf("barcode content is empty")
	}
	bc, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("encoding barcode: %w", err)
	}
	// Scaling fails when the target is narrower than the symbol.
	width = max(width, bc.Bounds().Dx())
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("scaling barcode: %w", err)
	}
	return scaled, nil
}

// WritePNG writes a Code 128 barcode for content as PNG.
func WritePNG(w io.Writer, content string) error {
	bc, err := Barcode(content, DefaultWidth, DefaultHeight)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bc); err != nil {
		return fmt.Errorf("encoding barcode png: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
