package mocks

import (
	"context"

	"github.com/rpggio/tasksync/internal/domain/calendar"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/stretchr/testify/mock"
)

// Collection is a mock for gateway.Collection.
type Collection struct {
	mock.Mock
}

func (m *Collection) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *Collection) Subscribe(ctx context.Context, filter gateway.Filter, onSnapshot gateway.SnapshotFunc, onError gateway.ErrorFunc) (func(), error) {
	args := m.Called(ctx, filter, onSnapshot, onError)
	if unsubscribe, ok := args.Get(0).(func()); ok {
		return unsubscribe, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) Add(ctx context.Context, body map[string]any) (string, error) {
	args := m.Called(ctx, body)
	return args.String(0), args.Error(1)
}

func (m *Collection) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *Collection) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Collection) GetOnce(ctx context.Context, id string) (*gateway.Document, error) {
	args := m.Called(ctx, id)
	if doc, ok := args.Get(0).(*gateway.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) QueryOnce(ctx context.Context, filter gateway.Filter) ([]gateway.Document, error) {
	args := m.Called(ctx, filter)
	if docs, ok := args.Get(0).([]gateway.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProfileLookup is a mock for identity.ProfileLookup.
type ProfileLookup struct {
	mock.Mock
}

func (m *ProfileLookup) GetProfile(ctx context.Context, principalID string) (*identity.Profile, error) {
	args := m.Called(ctx, principalID)
	if profile, ok := args.Get(0).(*identity.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

// CalendarIntegration is a mock for calendar.Integration.
type CalendarIntegration struct {
	mock.Mock
}

func (m *CalendarIntegration) CreateEvent(ctx context.Context, ownerID string, in calendar.EventInput) (string, error) {
	args := m.Called(ctx, ownerID, in)
	return args.String(0), args.Error(1)
}

func (m *CalendarIntegration) UpdateEvent(ctx context.Context, ownerID, eventID string, in calendar.EventInput) error {
	args := m.Called(ctx, ownerID, eventID, in)
	return args.Error(0)
}

func (m *CalendarIntegration) DeleteEvent(ctx context.Context, ownerID, eventID string) error {
	args := m.Called(ctx, ownerID, eventID)
	return args.Error(0)
}
