package apperr

import "errors"

// Message returns the user-facing notification for a failed action. Each kind has its own
// wording so a failure is never presented as a generic or silent outcome.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "Some of the entered data is invalid. Check the highlighted fields and try again."
	case errors.Is(err, ErrUnauthenticated):
		return "You are signed out. Sign in again to continue."
	case errors.Is(err, ErrPermissionDenied):
		return "You don't have permission to change this item."
	case errors.Is(err, ErrNotFound):
		return "This item no longer exists. It may have been deleted elsewhere."
	case errors.Is(err, ErrNetwork):
		return "Couldn't reach the server. Check your connection and try again."
	case errors.Is(err, ErrSubscription):
		return "Live updates are unavailable right now. The data shown may be out of date."
	default:
		return "Something went wrong. Please try again."
	}
}

// Code returns a stable machine-readable code for the error's kind.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrNetwork):
		return "NETWORK_ERROR"
	case errors.Is(err, ErrSubscription):
		return "SUBSCRIPTION_ERROR"
	default:
		return "UNKNOWN"
	}
}
