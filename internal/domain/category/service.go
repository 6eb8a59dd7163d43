package category

import (
	"context"
	"log/slog"
	"strings"
)

// Store is the category entity store.
type Store interface {
	Create(ctx context.Context, draft Category) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	GetByID(id string) (Category, bool)
}

// Service handles category operations.
type Service struct {
	categories Store
	logger     *slog.Logger
}

// NewService creates a new category service.
func NewService(categories Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{categories: categories, logger: logger}
}

// CreateRequest defines category creation inputs.
type CreateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UpdateRequest changes the non-nil fields.
type UpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Create creates a category.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	return s.categories.Create(ctx, Category{
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToLower(strings.TrimSpace(req.Color)),
	})
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) error {
	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		patch["color"] = strings.ToLower(strings.TrimSpace(*req.Color))
	}
	return s.categories.Update(ctx, id, patch)
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}
