package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/timestamp"
)

// FieldID is the entity id. It is never stored in a body.
const FieldID = "id"

var reservedFields = []string{FieldID, gateway.FieldOwnerID, gateway.FieldCreatedAt, gateway.FieldUpdatedAt}

// Create validates the draft, stamps owner and timestamps and writes it through the
// gateway. The new entity shows up in a later snapshot, not synchronously.
func (s *Store[T]) Create(ctx context.Context, draft T) (string, error) {
	op := s.name + ".create"
	p, err := s.requirePrincipal(ctx, op)
	if err != nil {
		return "", err
	}
	body, err := s.codec.Encode(draft)
	if err != nil {
		return "", validationError(op, err)
	}
	for _, field := range reservedFields {
		delete(body, field)
	}
	now := gateway.NewTimestamp(timestamp.Canonical(s.opts.Now()))
	body[gateway.FieldOwnerID] = p.ID
	body[gateway.FieldCreatedAt] = now
	body[gateway.FieldUpdatedAt] = now

	id, err := s.collection.Add(s.callerContext(ctx, p), body)
	if err != nil {
		s.logger.Warn("create failed", "error", err)
		return "", apperr.FromGateway(op, err)
	}
	s.logger.Debug("document created", "id", id)
	return id, nil
}

// Update writes a partial update and rewrites updatedAt. id, ownerId, createdAt and
// updatedAt can't be patched.
func (s *Store[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	op := s.name + ".update"
	p, err := s.requirePrincipal(ctx, op)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(op, "id is required")
	}
	if len(patch) == 0 {
		return apperr.Validation(op, "no fields to update")
	}
	for _, field := range reservedFields {
		if _, ok := patch[field]; ok {
			return apperr.Validation(op, "field %q can't be updated", field)
		}
	}
	if err := s.codec.ValidatePatch(patch); err != nil {
		return validationError(op, err)
	}

	body := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	body[gateway.FieldUpdatedAt] = gateway.NewTimestamp(timestamp.Canonical(s.opts.Now()))

	if err := s.collection.Update(s.callerContext(ctx, p), id, body); err != nil {
		s.logger.Warn("update failed", "id", id, "error", err)
		return apperr.FromGateway(op, err)
	}
	s.logger.Debug("document updated", "id", id)
	return nil
}

// Delete removes the document through the gateway.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	op := s.name + ".delete"
	p, err := s.requirePrincipal(ctx, op)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(op, "id is required")
	}
	if err := s.collection.Delete(s.callerContext(ctx, p), id); err != nil {
		s.logger.Warn("delete failed", "id", id, "error", err)
		return apperr.FromGateway(op, err)
	}
	s.logger.Debug("document deleted", "id", id)
	return nil
}

func (s *Store[T]) requirePrincipal(ctx context.Context, op string) (*identity.Principal, error) {
	p, err := s.identity.Current(ctx)
	if err != nil {
		return nil, apperr.New(apperr.ErrUnknown, op, fmt.Errorf("reading identity: %w", err))
	}
	if p == nil {
		return nil, apperr.New(apperr.ErrUnauthenticated, op, nil)
	}
	return p, nil
}

func (s *Store[T]) callerContext(ctx context.Context, p *identity.Principal) context.Context {
	s.mu.Lock()
	elevated := s.principal != nil && s.principal.ID == p.ID && s.elevatedScope
	s.mu.Unlock()
	return gateway.WithCaller(ctx, gateway.Caller{ID: p.ID, Elevated: elevated})
}

func validationError(op string, err error) error {
	if apperr.Is(err, apperr.ErrValidation) {
		return err
	}
	return apperr.New(apperr.ErrValidation, op, err)
}
