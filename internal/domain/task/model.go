package task

import (
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
)

// Collection is the gateway collection tasks live in.
const Collection = "tasks"

// Importance is the closed priority enumeration.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Importances lists every importance from lowest to highest.
var Importances = []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh}

// Valid reports whether i is a known importance.
func (i Importance) Valid() bool {
	return i.Rank() < len(Importances)
}

// Rank orders importances from lowest; unknown values rank last.
func (i Importance) Rank() int {
	for n, known := range Importances {
		if i == known {
			return n
		}
	}
	return len(Importances)
}

// Task is a unit of work. ProjectID is the only authoritative project link.
type Task struct {
	entity.Base
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Status          entity.Status `json:"status"`
	Importance      Importance    `json:"importance"`
	ProjectID       string        `json:"projectId,omitempty"`
	CategoryID      string        `json:"categoryId,omitempty"`
	DueDate         *time.Time    `json:"dueDate,omitempty"`
	Members         []string      `json:"members,omitempty"`
	CalendarEventID string        `json:"calendarEventId,omitempty"`
}

// CreateRequest holds the caller-controlled fields of a new task.
type CreateRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      entity.Status `json:"status,omitempty"`
	Importance  Importance    `json:"importance,omitempty"`
	ProjectID   string        `json:"projectId,omitempty"`
	CategoryID  string        `json:"categoryId,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Members     []string      `json:"members,omitempty"`
}

// UpdateRequest changes the non-nil fields. ClearDueDate removes the due date.
type UpdateRequest struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Status       *entity.Status `json:"status,omitempty"`
	Importance   *Importance    `json:"importance,omitempty"`
	ProjectID    *string        `json:"projectId,omitempty"`
	CategoryID   *string        `json:"categoryId,omitempty"`
	DueDate      *time.Time     `json:"dueDate,omitempty"`
	ClearDueDate bool           `json:"clearDueDate,omitempty"`
	Members      []string       `json:"members,omitempty"`
}

// Draft converts the request into a task ready for the store.
func (r CreateRequest) Draft() Task {
	return Task{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Importance:  r.Importance,
		ProjectID:   r.ProjectID,
		CategoryID:  r.CategoryID,
		DueDate:     r.DueDate,
		Members:     r.Members,
	}
}

// Patch converts the request into a partial body.
func (r UpdateRequest) Patch() map[string]any {
	patch := map[string]any{}
	if r.Title != nil {
		patch["title"] = *r.Title
	}
	if r.Description != nil {
		patch["description"] = *r.Description
	}
	if r.Status != nil {
		patch["status"] = string(*r.Status)
	}
	if r.Importance != nil {
		patch["importance"] = string(*r.Importance)
	}
	if r.ProjectID != nil {
		patch["projectId"] = *r.ProjectID
	}
	if r.CategoryID != nil {
		patch["categoryId"] = *r.CategoryID
	}
	if r.ClearDueDate {
		patch["dueDate"] = nil
	} else if r.DueDate != nil {
		patch["dueDate"] = entity.TimeValue(r.DueDate)
	}
	if r.Members != nil {
		patch["members"] = r.Members
	}
	return patch
}

// TouchesCalendar reports whether the update changes anything a calendar event mirrors.
func (r UpdateRequest) TouchesCalendar() bool {
	return r.Title != nil || r.Description != nil || r.DueDate != nil || r.ClearDueDate
}
