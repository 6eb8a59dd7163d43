// Package views derives read models from store snapshots. Every function here is pure:
// the same snapshot and parameters always yield the same result, and inputs are never
// modified.
package views

import (
	"slices"
	"strings"
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/domain/task"
)

// SortKey names a task ordering.
type SortKey string

const (
	SortByTitle      SortKey = "title"
	SortByDueDate    SortKey = "dueDate"
	SortByImportance SortKey = "importance"
	SortByStatus     SortKey = "status"
	SortByCreatedAt  SortKey = "createdAt"
	SortByUpdatedAt  SortKey = "updatedAt"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{SortByTitle, SortByDueDate, SortByImportance, SortByStatus, SortByCreatedAt, SortByUpdatedAt}

// Valid reports whether k is a supported key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// TaskFilter selects tasks. Empty fields don't constrain.
type TaskFilter struct {
	Statuses    []entity.Status   `json:"statuses,omitempty"`
	Importances []task.Importance `json:"importances,omitempty"`
	// ProjectID set to "" selects tasks without a project; nil doesn't constrain.
	ProjectID  *string `json:"projectId,omitempty"`
	CategoryID string  `json:"categoryId,omitempty"`
	Member     string  `json:"member,omitempty"`
	Search     string  `json:"search,omitempty"`
}

// FilterTasks returns the tasks matching f, in input order.
func FilterTasks(tasks []task.Task, f TaskFilter) []task.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
			continue
		}
		if len(f.Importances) > 0 && !slices.Contains(f.Importances, t.Importance) {
			continue
		}
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if f.Member != "" && !slices.Contains(t.Members, f.Member) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTasks returns a sorted copy. desc reverses the key only; ties are always broken by
// createdAt ascending, then id. Tasks without a due date sort last by dueDate either way.
func SortTasks(tasks []task.Task, key SortKey, desc bool) []task.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b task.Task) int {
		c := compareBy(key, a, b)
		if c != 0 {
			if desc && !(key == SortByDueDate && (a.DueDate == nil || b.DueDate == nil)) {
				return -c
			}
			return c
		}
		return tieBreak(a.Base, b.Base)
	})
	return out
}

func compareBy(key SortKey, a, b task.Task) int {
	switch key {
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByDueDate:
		return compareOptionalTime(a.DueDate, b.DueDate)
	case SortByImportance:
		return a.Importance.Rank() - b.Importance.Rank()
	case SortByStatus:
		return a.Status.Rank() - b.Status.Rank()
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func tieBreak(a, b entity.Base) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Column is one status lane of a board.
type Column struct {
	Status entity.Status `json:"status"`
	Tasks  []task.Task   `json:"tasks"`
}

// Board groups tasks into one column per status, in workflow order. Every status gets a
// column even when empty. Within a column tasks keep input order.
func Board(tasks []task.Task) []Column {
	columns := make([]Column, len(entity.Statuses))
	for i, status := range entity.Statuses {
		columns[i] = Column{Status: status, Tasks: []task.Task{}}
	}
	for _, t := range tasks {
		i := t.Status.Rank()
		if i >= len(columns) {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}

// Day is one calendar date with the tasks due on it.
type Day struct {
	Date  string      `json:"date"`
	Tasks []task.Task `json:"tasks"`
}

// CalendarDays groups tasks by due date as seen in loc, in date order. Tasks without a due
// date are left out. A nil loc means UTC.
func CalendarDays(tasks []task.Task, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	due := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate != nil {
			due = append(due, t)
		}
	}
	due = SortTasks(due, SortByDueDate, false)

	var days []Day
	for _, t := range due {
		date := t.DueDate.In(loc).Format(time.DateOnly)
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Tasks = append(days[n-1].Tasks, t)
			continue
		}
		days = append(days, Day{Date: date, Tasks: []task.Task{t}})
	}
	return days
}
