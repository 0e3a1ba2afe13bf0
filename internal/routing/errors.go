package routing

import "errors"

// Failure kinds from spec.md §4.2.
var (
	ErrAddressNotFound = errors.New("routing: address not found")
	ErrNoRoute         = errors.New("routing: no route between points")
	ErrUpstream        = errors.New("routing: upstream error")
)
