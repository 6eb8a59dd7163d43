// Package calendar describes the external calendar integration that task workflows
// push side effects to.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound is returned when the referenced event doesn't exist.
var ErrEventNotFound = errors.New("calendar event not found")

// Event is a calendar entry mirrored from a task.
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInput is the caller-controlled part of an event.
type EventInput struct {
	TaskID      string
	Title       string
	Description string
	Start       time.Time
	AllDay      bool
}

// Integration creates, updates and deletes remote calendar events.
type Integration interface {
	CreateEvent(ctx context.Context, ownerID string, in EventInput) (string, error)
	UpdateEvent(ctx context.Context, ownerID, eventID string, in EventInput) error
	DeleteEvent(ctx context.Context, ownerID, eventID string) error
}
