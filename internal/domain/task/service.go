// Package task implements tasks: the entity, its document codec and the workflows that
// chain calendar side effects to task writes.
package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/calendar"
	"github.com/rpggio/tasksync/internal/identity"
)

// Service handles task mutations.
type Service struct {
	tasks    Store
	calendar calendar.Integration
	identity identity.Signal
	logger   *slog.Logger
}

// NewService creates a task service. cal may be nil when no calendar is configured.
func NewService(tasks Store, cal calendar.Integration, signal identity.Signal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tasks: tasks, calendar: cal, identity: signal, logger: logger}
}

// Create writes a task.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	return s.tasks.Create(ctx, req.Draft())
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) error {
	return s.tasks.Update(ctx, id, req.Patch())
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// CreateWithCalendar writes the task and then, when it has a due date, creates a calendar
// event and records its id on the task. A calendar failure is returned as a
// *SideEffectError together with the task id.
func (s *Service) CreateWithCalendar(ctx context.Context, req CreateRequest) (string, error) {
	id, err := s.Create(ctx, req)
	if err != nil {
		return "", err
	}
	if req.DueDate == nil || s.calendar == nil {
		return id, nil
	}

	owner, err := s.ownerID(ctx)
	if err != nil {
		return id, s.sideEffect(id, StepCreateEvent, err)
	}
	eventID, err := s.calendar.CreateEvent(ctx, owner, calendar.EventInput{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		Start:       *req.DueDate,
		AllDay:      isMidnight(*req.DueDate),
	})
	if err != nil {
		return id, s.sideEffect(id, StepCreateEvent, apperr.FromGateway("calendar.create", err))
	}
	if err := s.tasks.Update(ctx, id, map[string]any{"calendarEventId": eventID}); err != nil {
		return id, s.sideEffect(id, StepLinkEvent, err)
	}
	return id, nil
}

// UpdateWithCalendar applies the update and then brings the linked calendar event in line:
// it is updated, removed when the due date is cleared, or created when a due date is first set.
func (s *Service) UpdateWithCalendar(ctx context.Context, id string, req UpdateRequest) error {
	before, known := s.tasks.GetByID(id)
	if err := s.Update(ctx, id, req); err != nil {
		return err
	}
	if s.calendar == nil || !req.TouchesCalendar() || !known {
		return nil
	}

	owner, err := s.ownerID(ctx)
	if err != nil {
		return s.sideEffect(id, StepUpdateEvent, err)
	}
	after := applyUpdate(before, req)

	switch {
	case before.CalendarEventID != "" && after.DueDate == nil:
		if err := s.calendar.DeleteEvent(ctx, owner, before.CalendarEventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			return s.sideEffect(id, StepDeleteEvent, apperr.FromGateway("calendar.delete", err))
		}
		if err := s.tasks.Update(ctx, id, map[string]any{"calendarEventId": ""}); err != nil {
			return s.sideEffect(id, StepLinkEvent, err)
		}
	case before.CalendarEventID != "":
		if err := s.calendar.UpdateEvent(ctx, owner, before.CalendarEventID, eventInput(id, after)); err != nil {
			return s.sideEffect(id, StepUpdateEvent, apperr.FromGateway("calendar.update", err))
		}
	case after.DueDate != nil:
		eventID, err := s.calendar.CreateEvent(ctx, owner, eventInput(id, after))
		if err != nil {
			return s.sideEffect(id, StepCreateEvent, apperr.FromGateway("calendar.create", err))
		}
		if err := s.tasks.Update(ctx, id, map[string]any{"calendarEventId": eventID}); err != nil {
			return s.sideEffect(id, StepLinkEvent, err)
		}
	}
	return nil
}

// DeleteWithCalendar removes the task and then its calendar event, if it has one.
func (s *Service) DeleteWithCalendar(ctx context.Context, id string) error {
	before, known := s.tasks.GetByID(id)
	if err := s.Delete(ctx, id); err != nil {
		return err
	}
	if s.calendar == nil || !known || before.CalendarEventID == "" {
		return nil
	}
	owner, err := s.ownerID(ctx)
	if err != nil {
		return s.sideEffect(id, StepDeleteEvent, err)
	}
	if err := s.calendar.DeleteEvent(ctx, owner, before.CalendarEventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
		return s.sideEffect(id, StepDeleteEvent, apperr.FromGateway("calendar.delete", err))
	}
	return nil
}

func (s *Service) ownerID(ctx context.Context) (string, error) {
	p, err := s.identity.Current(ctx)
	if err != nil {
		return "", apperr.New(apperr.ErrUnknown, "calendar", err)
	}
	if p == nil {
		return "", apperr.New(apperr.ErrUnauthenticated, "calendar", nil)
	}
	return p.ID, nil
}

func (s *Service) sideEffect(taskID, step string, err error) error {
	s.logger.Warn("task side effect failed", "task_id", taskID, "step", step, "error", err)
	return &SideEffectError{TaskID: taskID, Step: step, Err: err}
}

func applyUpdate(t Task, req UpdateRequest) Task {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.ClearDueDate {
		t.DueDate = nil
	} else if req.DueDate != nil {
		due := *req.DueDate
		t.DueDate = &due
	}
	return t
}

func eventInput(id string, t Task) calendar.EventInput {
	in := calendar.EventInput{TaskID: id, Title: t.Title, Description: t.Description}
	if t.DueDate != nil {
		in.Start = *t.DueDate
		in.AllDay = isMidnight(*t.DueDate)
	}
	return in
}

func isMidnight(t time.Time) bool {
	h, m, sec := t.Clock()
	return h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0
}
