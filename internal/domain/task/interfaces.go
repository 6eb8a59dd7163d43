package task

import (
	"context"
)

// Store is the task entity store.
type Store interface {
	Create(ctx context.Context, draft Task) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	GetByID(id string) (Task, bool)
}
