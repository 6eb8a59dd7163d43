package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/tasksync/internal/gateway"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed")
}

// wrapErr keeps gateway sentinels and context errors, and marks a closed database as
// unavailable.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, gateway.ErrPermissionDenied),
		errors.Is(err, gateway.ErrInvalidArgument),
		errors.Is(err, gateway.ErrUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case isClosed(err):
		return fmt.Errorf("%s: %w: %v", op, gateway.ErrUnavailable, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
