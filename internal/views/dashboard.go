package views

import (
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/domain/task"
)

// Summary aggregates a task snapshot.
type Summary struct {
	Total        int                     `json:"total"`
	ByStatus     map[entity.Status]int   `json:"byStatus"`
	ByImportance map[task.Importance]int `json:"byImportance"`
	Overdue      int                     `json:"overdue"`
	DueToday     int                     `json:"dueToday"`
	Invalid      int                     `json:"invalid"`
	// Completion is done tasks over all tasks, 0 for an empty snapshot.
	Completion float64 `json:"completion"`
}

// Dashboard summarizes tasks as of now. A task is overdue when its due date is before now
// and it isn't done; due today compares calendar dates in now's location.
func Dashboard(tasks []task.Task, now time.Time) Summary {
	s := Summary{
		Total:        len(tasks),
		ByStatus:     make(map[entity.Status]int, len(entity.Statuses)),
		ByImportance: make(map[task.Importance]int, len(task.Importances)),
	}
	for _, status := range entity.Statuses {
		s.ByStatus[status] = 0
	}
	for _, importance := range task.Importances {
		s.ByImportance[importance] = 0
	}

	today := now.Format(time.DateOnly)
	for _, t := range tasks {
		s.ByStatus[t.Status]++
		s.ByImportance[t.Importance]++
		if !t.IsValid() {
			s.Invalid++
		}
		if t.DueDate == nil || t.Status == entity.StatusDone {
			continue
		}
		if t.DueDate.Before(now) {
			s.Overdue++
		}
		if t.DueDate.In(now.Location()).Format(time.DateOnly) == today {
			s.DueToday++
		}
	}
	if s.Total > 0 {
		s.Completion = float64(s.ByStatus[entity.StatusDone]) / float64(s.Total)
	}
	return s
}
