package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/tasksync/internal/apperr"
)

// ErrNotReady indicates the store has no live snapshot yet.
var ErrNotReady = errors.New("snapshot not ready")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps application errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	apiErr := &APIError{Code: apperr.Code(err), Message: apperr.Message(err), Details: err.Error()}
	switch {
	case errors.Is(err, ErrNotReady):
		apiErr.Code = "NOT_READY"
		apiErr.Message = "The live snapshot is not available yet."
		apiErr.RecoveryHint = "Sign in with sign_in, then retry shortly"
	case errors.Is(err, apperr.ErrValidation):
		apiErr.RecoveryHint = "Fix the arguments named in details"
	case errors.Is(err, apperr.ErrUnauthenticated):
		apiErr.RecoveryHint = "Call sign_in with a valid token"
	case errors.Is(err, apperr.ErrPermissionDenied):
		apiErr.RecoveryHint = "Only the owner can change this item"
	case errors.Is(err, apperr.ErrNotFound):
		apiErr.RecoveryHint = "List again; the item may have been deleted"
	case errors.Is(err, apperr.ErrNetwork):
		apiErr.RecoveryHint = "Retry the call"
	case errors.Is(err, apperr.ErrSubscription):
		apiErr.RecoveryHint = "Sign out and sign in again to resubscribe"
	}
	return apiErr
}
