package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/task"
)

// Problem is the error body of every failed request.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// SideEffect reports a dependent step that failed after the primary write succeeded.
type SideEffect struct {
	Step    string `json:"step"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error Problem `json:"error"`
}

type mutationResponse struct {
	ID         string      `json:"id,omitempty"`
	SideEffect *SideEffect `json:"sideEffect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: Problem{Code: code, Message: message}})
}

// writeError maps the application taxonomy to HTTP.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: problemFor(err)})
}

func problemFor(err error) Problem {
	return Problem{Code: apperr.Code(err), Message: apperr.Message(err), Detail: err.Error()}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrNetwork), errors.Is(err, apperr.ErrSubscription):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeMutation reports a successful primary write. A *task.SideEffectError is not a
// failure of the request; it is returned next to the id.
func writeMutation(w http.ResponseWriter, status int, id string, err error) {
	var side *task.SideEffectError
	switch {
	case err == nil:
		writeJSON(w, status, mutationResponse{ID: id})
	case errors.As(err, &side):
		writeJSON(w, status, mutationResponse{ID: id, SideEffect: &SideEffect{
			Step:    side.Step,
			Code:    "SIDE_EFFECT_FAILED",
			Message: side.Message(),
		}})
	default:
		writeError(w, err)
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.ErrValidation, "decode request", fmt.Errorf("invalid JSON body: %w", err))
	}
	return nil
}
