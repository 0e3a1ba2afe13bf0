// Package barcodeimg renders a Barcode's code value as a Code128 PNG
// label, grounded on the boombuler/barcode dependency carried by
// Hola-to-network_logistics_problem's go.mod (that repo's own renderer
// lives behind a PDF/report generator this service doesn't need — only
// the Code128 encode step is adapted here).
package barcodeimg

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

const (
	labelWidth  = 300
	labelHeight = 100
)

// RenderPNG encodes codeValue as a Code128 barcode and returns PNG bytes.
func RenderPNG(codeValue string) ([]byte, error) {
	code, err := code128.Encode(codeValue)
	if err != nil {
		return nil, fmt.Errorf("barcodeimg: encode: %w", err)
	}

	scaled, err := barcode.Scale(code, labelWidth, labelHeight)
	if err != nil {
		return nil, fmt.Errorf("barcodeimg: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("barcodeimg: png encode: %w", err)
	}

	return buf.Bytes(), nil
}
