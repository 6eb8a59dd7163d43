// Package entity holds the fields and decoding helpers shared by every synchronized entity.
package entity

import "time"

// Status is the closed workflow enumeration shared by tasks and projects.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusDone}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Rank returns the workflow position of s, or len(Statuses) for unknown values.
func (s Status) Rank() int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return len(Statuses)
}

// Base carries the fields every entity has. Invalid lists fields whose stored value could
// not be decoded; such fields hold their zero value instead.
type Base struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Invalid   []string  `json:"invalid,omitempty"`
}

// Key returns the entity id.
func (b Base) Key() string {
	return b.ID
}

// IsValid reports whether every field decoded cleanly.
func (b Base) IsValid() bool {
	return len(b.Invalid) == 0
}
