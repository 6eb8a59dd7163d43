package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/stretchr/testify/require"
)

func TestFromGateway_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", gateway.ErrNotFound, apperr.ErrNotFound},
		{"wrapped not found", fmt.Errorf("update: %w", gateway.ErrNotFound), apperr.ErrNotFound},
		{"permission", gateway.ErrPermissionDenied, apperr.ErrPermissionDenied},
		{"unavailable", gateway.ErrUnavailable, apperr.ErrNetwork},
		{"deadline", context.DeadlineExceeded, apperr.ErrNetwork},
		{"invalid argument", gateway.ErrInvalidArgument, apperr.ErrValidation},
		{"other", errors.New("boom"), apperr.ErrUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := apperr.FromGateway("tasks.update", tc.err)
			require.ErrorIs(t, err, tc.kind)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFromGateway_KeepsExistingKind(t *testing.T) {
	original := apperr.New(apperr.ErrUnauthenticated, "tasks.create", nil)
	err := apperr.FromGateway("tasks.create", fmt.Errorf("wrapped: %w", original))
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	require.NotErrorIs(t, err, apperr.ErrUnknown)
}

func TestFromGateway_Nil(t *testing.T) {
	require.NoError(t, apperr.FromGateway("op", nil))
}

func TestMessage_DistinctPerKind(t *testing.T) {
	kinds := []error{
		apperr.ErrValidation,
		apperr.ErrUnauthenticated,
		apperr.ErrPermissionDenied,
		apperr.ErrNotFound,
		apperr.ErrNetwork,
		apperr.ErrSubscription,
		apperr.ErrUnknown,
	}

	seen := map[string]bool{}
	codes := map[string]bool{}
	for _, kind := range kinds {
		msg := apperr.Message(apperr.New(kind, "op", nil))
		require.NotEmpty(t, msg)
		require.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true

		code := apperr.Code(apperr.New(kind, "op", nil))
		require.False(t, codes[code], "duplicate code %q", code)
		codes[code] = true
	}
}

func TestError_String(t *testing.T) {
	err := apperr.Validation("tasks.create", "title is required")
	require.Equal(t, "tasks.create: validation error: title is required", err.Error())
}
