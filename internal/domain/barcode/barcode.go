// Package barcode models the 1:1 physical identifier printed on a parcel.
package barcode

import (
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyCodeValue is returned when constructing a Barcode with a blank
// code value.
var ErrEmptyCodeValue = errors.New("barcode: code_value must not be empty")

// Barcode is 1:1 with an Order. Rendered images are produced on demand
// (spec.md §6) — only the opaque code value is persisted.
type Barcode struct {
	id        uuid.UUID
	orderID   uuid.UUID
	codeValue string
	active    bool
}

// New validates and constructs a Barcode.
func New(id, orderID uuid.UUID, codeValue string) (*Barcode, error) {
	if codeValue == "" {
		return nil, ErrEmptyCodeValue
	}

	return &Barcode{id: id, orderID: orderID, codeValue: codeValue, active: true}, nil
}

func (b *Barcode) ID() uuid.UUID      { return b.id }
func (b *Barcode) OrderID() uuid.UUID { return b.orderID }
func (b *Barcode) CodeValue() string  { return b.codeValue }
func (b *Barcode) Active() bool       { return b.active }

// Deactivate marks the barcode inactive (e.g. the order was cancelled).
// An inactive barcode's code_value fails scan lookups (BarcodeNotFound).
func (b *Barcode) Deactivate() { b.active = false }

// GenerateCodeValue produces a globally-unique, Code128-printable code
// value for a new barcode.
func GenerateCodeValue() string {
	return "PCL-" + uuid.New().String()
}
