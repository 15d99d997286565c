package pricing

import "errors"

var (
	// ErrNotFound indicates the product (or its rule set) does not exist.
	// Surfaced to the caller as "product not found"; never retried.
	ErrNotFound = errors.New("product not found")

	// ErrTransient indicates a data-store connectivity or timeout failure.
	// The caller may retry the repository call; this package never does.
	ErrTransient = errors.New("pricing data temporarily unavailable")

	// ErrInvalidSelection indicates a structurally invalid selection reached
	// the resolver. Upstream normalization should make this unreachable.
	ErrInvalidSelection = errors.New("invalid selection")
)
