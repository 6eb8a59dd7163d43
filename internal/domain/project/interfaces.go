package project

import "context"

// Store is the project entity store.
type Store interface {
	Create(ctx context.Context, draft Project) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	GetByID(id string) (Project, bool)
}
