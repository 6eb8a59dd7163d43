package comment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/identity"
)

// Store is the comment entity store.
type Store interface {
	Create(ctx context.Context, draft Comment) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	GetByID(id string) (Comment, bool)
}

// Service handles comment operations.
type Service struct {
	comments Store
	identity identity.Signal
	logger   *slog.Logger
}

// NewService creates a new comment service.
func NewService(comments Store, signal identity.Signal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{comments: comments, identity: signal, logger: logger}
}

// AddRequest defines a new comment or reply.
type AddRequest struct {
	TaskID   string  `json:"taskId"`
	ParentID *string `json:"parentId,omitempty"`
	Text     string  `json:"text"`
}

// Add posts a comment. A reply must target a top-level comment on the same task, as
// known from the last published snapshot.
func (s *Service) Add(ctx context.Context, req AddRequest) (string, error) {
	op := Collection + ".create"
	draft := Comment{
		TaskID:   strings.TrimSpace(req.TaskID),
		ParentID: req.ParentID,
		Text:     req.Text,
	}
	if draft.IsReply() {
		parent, ok := s.comments.GetByID(*draft.ParentID)
		switch {
		case !ok:
			return "", apperr.New(apperr.ErrValidation, op, ErrParentNotFound)
		case parent.IsReply():
			return "", apperr.New(apperr.ErrValidation, op, ErrNestedReply)
		case parent.TaskID != draft.TaskID:
			return "", apperr.New(apperr.ErrValidation, op, ErrParentTaskMismatch)
		}
	}
	if p, err := s.identity.Current(ctx); err == nil && p != nil {
		draft.AuthorName = authorName(p)
	}
	return s.comments.Create(ctx, draft)
}

// Edit replaces the comment text.
func (s *Service) Edit(ctx context.Context, id, text string) error {
	return s.comments.Update(ctx, id, map[string]any{"text": text})
}

// Delete removes a comment. Its replies are kept and surface as top-level comments.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}

func authorName(p *identity.Principal) string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return p.ID
	}
}
