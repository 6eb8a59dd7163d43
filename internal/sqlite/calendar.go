package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rpggio/tasksync/internal/domain/calendar"
)

// CalendarRepository implements calendar.Integration on the calendar_events table
type CalendarRepository struct {
	db  *DB
	now func() time.Time
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *DB) *CalendarRepository {
	return &CalendarRepository{db: db, now: time.Now}
}

// CreateEvent stores a new event and returns its id
func (r *CalendarRepository) CreateEvent(ctx context.Context, ownerID string, in calendar.EventInput) (string, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(in.TaskID) == "" {
		return "", fmt.Errorf("owner and task are required")
	}
	id := ulid.Make().String()
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, owner_id, task_id, title, description, start_at, all_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, ownerID, in.TaskID, in.Title, in.Description, in.Start.UTC(), in.AllDay, now, now)
	if err != nil {
		return "", wrapErr("create calendar event", err)
	}
	return id, nil
}

// UpdateEvent replaces an event's details
func (r *CalendarRepository) UpdateEvent(ctx context.Context, ownerID, eventID string, in calendar.EventInput) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_events
		SET title = ?, description = ?, start_at = ?, all_day = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, in.Title, in.Description, in.Start.UTC(), in.AllDay, r.now().UTC(), eventID, ownerID)
	if err != nil {
		return wrapErr("update calendar event", err)
	}
	return requireAffected(res, eventID)
}

// DeleteEvent removes an event
func (r *CalendarRepository) DeleteEvent(ctx context.Context, ownerID, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ? AND owner_id = ?`, eventID, ownerID)
	if err != nil {
		return wrapErr("delete calendar event", err)
	}
	return requireAffected(res, eventID)
}

// GetEvent retrieves an event by id
func (r *CalendarRepository) GetEvent(ctx context.Context, ownerID, eventID string) (*calendar.Event, error) {
	var ev calendar.Event
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, task_id, title, COALESCE(description, ''), start_at, all_day, created_at, updated_at
		FROM calendar_events
		WHERE id = ? AND owner_id = ?
	`, eventID, ownerID).Scan(
		&ev.ID, &ev.OwnerID, &ev.TaskID, &ev.Title, &ev.Description,
		&ev.Start, &ev.AllDay, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, calendar.ErrEventNotFound
	}
	if err != nil {
		return nil, wrapErr("get calendar event", err)
	}
	return &ev, nil
}

// ListEvents returns an owner's events in start order
func (r *CalendarRepository) ListEvents(ctx context.Context, ownerID string) ([]calendar.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, task_id, title, COALESCE(description, ''), start_at, all_day, created_at, updated_at
		FROM calendar_events
		WHERE owner_id = ?
		ORDER BY start_at, id
	`, ownerID)
	if err != nil {
		return nil, wrapErr("list calendar events", err)
	}
	defer rows.Close()

	var events []calendar.Event
	for rows.Next() {
		var ev calendar.Event
		if err := rows.Scan(
			&ev.ID, &ev.OwnerID, &ev.TaskID, &ev.Title, &ev.Description,
			&ev.Start, &ev.AllDay, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, wrapErr("scan calendar event", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func requireAffected(res sql.Result, eventID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("read affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", eventID, calendar.ErrEventNotFound)
	}
	return nil
}
