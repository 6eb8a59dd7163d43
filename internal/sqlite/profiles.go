package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/tasksync/internal/identity"
)

// ProfileRepository implements identity.ProfileLookup for SQLite
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfile retrieves a principal's profile
func (r *ProfileRepository) GetProfile(ctx context.Context, principalID string) (*identity.Profile, error) {
	query := `
		SELECT principal_id, role, COALESCE(display_name, ''), updated_at
		FROM profiles
		WHERE principal_id = ?
	`

	var p identity.Profile
	err := r.db.QueryRowContext(ctx, query, principalID).Scan(
		&p.PrincipalID,
		&p.Role,
		&p.DisplayName,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, identity.ErrProfileNotFound
	}
	if err != nil {
		return nil, wrapErr("get profile", err)
	}
	return &p, nil
}

// SetProfile creates or replaces a profile
func (r *ProfileRepository) SetProfile(ctx context.Context, p *identity.Profile) error {
	if strings.TrimSpace(p.PrincipalID) == "" || strings.TrimSpace(p.Role) == "" {
		return fmt.Errorf("principal id and role are required")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO profiles (principal_id, role, display_name, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal_id) DO UPDATE SET
			role = excluded.role,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, p.PrincipalID, p.Role, p.DisplayName, p.UpdatedAt); err != nil {
		return wrapErr("set profile", err)
	}
	return nil
}

// ListProfiles returns every profile ordered by principal id
func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]identity.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT principal_id, role, COALESCE(display_name, ''), updated_at
		FROM profiles
		ORDER BY principal_id
	`)
	if err != nil {
		return nil, wrapErr("list profiles", err)
	}
	defer rows.Close()

	var profiles []identity.Profile
	for rows.Next() {
		var p identity.Profile
		if err := rows.Scan(&p.PrincipalID, &p.Role, &p.DisplayName, &p.UpdatedAt); err != nil {
			return nil, wrapErr("scan profile", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
