package mocks

import (
	"context"

	"github.com/rpggio/tasksync/internal/domain/category"
	"github.com/rpggio/tasksync/internal/domain/comment"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a mock for task.Store.
type TaskStore struct {
	mock.Mock
}

func (m *TaskStore) Create(ctx context.Context, draft task.Task) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

func (m *TaskStore) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *TaskStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskStore) GetByID(id string) (task.Task, bool) {
	args := m.Called(id)
	return args.Get(0).(task.Task), args.Bool(1)
}

// ProjectStore is a mock for project.Store.
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) Create(ctx context.Context, draft project.Project) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

func (m *ProjectStore) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *ProjectStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectStore) GetByID(id string) (project.Project, bool) {
	args := m.Called(id)
	return args.Get(0).(project.Project), args.Bool(1)
}

// CategoryStore is a mock for category.Store.
type CategoryStore struct {
	mock.Mock
}

func (m *CategoryStore) Create(ctx context.Context, draft category.Category) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

func (m *CategoryStore) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *CategoryStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CategoryStore) GetByID(id string) (category.Category, bool) {
	args := m.Called(id)
	return args.Get(0).(category.Category), args.Bool(1)
}

// CommentStore is a mock for comment.Store.
type CommentStore struct {
	mock.Mock
}

func (m *CommentStore) Create(ctx context.Context, draft comment.Comment) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

func (m *CommentStore) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *CommentStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CommentStore) GetByID(id string) (comment.Comment, bool) {
	args := m.Called(id)
	return args.Get(0).(comment.Comment), args.Bool(1)
}
