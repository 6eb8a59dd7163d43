package identity

import (
	"context"
	"errors"
	"time"

	"github.com/rpggio/tasksync/internal/stream"
)

var (
	// ErrInvalidToken indicates a token that failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrProfileNotFound indicates the principal has no profile document.
	ErrProfileNotFound = errors.New("profile not found")
)

// Principal is the authenticated identity of the current session.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Profile is the per-principal document holding the visibility role.
type Profile struct {
	PrincipalID string    `json:"principal_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Well-known roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Signal emits the current principal (nil when signed out) immediately on Observe and
// then on every change.
type Signal interface {
	Observe() *stream.Subscription[*Principal]
	Current(ctx context.Context) (*Principal, error)
}

// ProfileLookup reads a principal's profile.
type ProfileLookup interface {
	GetProfile(ctx context.Context, principalID string) (*Profile, error)
}
