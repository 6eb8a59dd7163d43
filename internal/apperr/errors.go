package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rpggio/tasksync/internal/gateway"
)

var (
	// ErrValidation indicates caller-supplied data violates a required shape.
	ErrValidation = errors.New("validation error")
	// ErrUnauthenticated indicates no principal is signed in.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied indicates the gateway rejected the call for authorization reasons.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound indicates the target document doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrNetwork indicates a connectivity failure reaching the gateway.
	ErrNetwork = errors.New("network error")
	// ErrSubscription indicates the live snapshot stream itself failed.
	ErrSubscription = errors.New("subscription error")
	// ErrUnknown covers failures outside the taxonomy.
	ErrUnknown = errors.New("unknown error")
)

// Error carries a taxonomy kind, the failed operation and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an Error of the given kind.
func New(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Validation builds a validation error with a formatted reason.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// FromGateway maps a raw gateway error onto the taxonomy. Every entity type reports
// failures through this function.
func FromGateway(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf classifies an arbitrary error into one of the taxonomy sentinels.
func KindOf(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	var netErr net.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gateway.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, gateway.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, gateway.ErrInvalidArgument):
		return ErrValidation
	case errors.Is(err, gateway.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return ErrNetwork
	default:
		return ErrUnknown
	}
}

// Is reports whether err belongs to the given kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
