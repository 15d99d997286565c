package db

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atelierhq/atelier/internal/pricing"
)

var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// classify maps driver errors onto the pricing error taxonomy: missing rows
// become ErrNotFound, connectivity and timeout failures become ErrTransient
// so callers know a retry may help. Anything else is wrapped as-is.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", pricing.ErrNotFound, what)
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %s: %v", pricing.ErrTransient, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.Timeout(err)
}
