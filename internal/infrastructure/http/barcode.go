package http

import (
	"net/http"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/barcodeimg"
)

// BarcodeImageHandler renders a barcode's code value on demand (spec.md
// §6 "rendered images are produced on demand ... only code_value is
// persisted").
type BarcodeImageHandler struct {
	barcodes ports.BarcodeRepository
}

// NewBarcodeImageHandler constructs a BarcodeImageHandler.
func NewBarcodeImageHandler(barcodes ports.BarcodeRepository) *BarcodeImageHandler {
	return &BarcodeImageHandler{barcodes: barcodes}
}

// Image handles GET /barcodes/{code_value}/image.
func (h *BarcodeImageHandler) Image(w http.ResponseWriter, r *http.Request) {
	codeValue := r.PathValue("code_value")

	bc, err := h.barcodes.FindByCodeValue(r.Context(), codeValue)
	if err != nil {
		writeError(w, err)
		return
	}
	if !bc.Active() {
		writeError(w, ports.ErrNotFound)
		return
	}

	png, err := barcodeimg.RenderPNG(bc.CodeValue())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
