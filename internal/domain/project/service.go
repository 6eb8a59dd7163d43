// Package project implements projects. A project never maintains its own task list;
// task membership is read from the task store.
package project

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/entity"
)

// Service handles project operations.
type Service struct {
	projects Store
	logger   *slog.Logger
}

// NewService creates a new project service.
func NewService(projects Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{projects: projects, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      entity.Status `json:"status,omitempty"`
	Members     []string      `json:"members,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
}

// UpdateRequest changes the non-nil fields.
type UpdateRequest struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Status       *entity.Status `json:"status,omitempty"`
	Members      []string       `json:"members,omitempty"`
	DueDate      *time.Time     `json:"dueDate,omitempty"`
	ClearDueDate bool           `json:"clearDueDate,omitempty"`
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", apperr.New(apperr.ErrValidation, Collection+".create", ErrNameRequired)
	}
	return s.projects.Create(ctx, Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		Members:     req.Members,
		DueDate:     req.DueDate,
	})
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) error {
	patch := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return apperr.New(apperr.ErrValidation, Collection+".update", ErrNameRequired)
		}
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if req.Members != nil {
		patch["members"] = req.Members
	}
	if req.ClearDueDate {
		patch["dueDate"] = nil
	} else if req.DueDate != nil {
		patch["dueDate"] = entity.TimeValue(req.DueDate)
	}
	return s.projects.Update(ctx, id, patch)
}

// Delete removes a project. Tasks that point at it keep their projectId and simply stop
// matching any project.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// Get returns a project from the last published snapshot.
func (s *Service) Get(id string) (Project, error) {
	p, ok := s.projects.GetByID(id)
	if !ok {
		return Project{}, apperr.New(apperr.ErrNotFound, Collection+".get", nil)
	}
	return p, nil
}
