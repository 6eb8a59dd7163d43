package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/tasksync/internal/stream"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// Session is the process-wide identity signal backed by signed tokens.
type Session struct {
	verifier TokenVerifier
	logger   *slog.Logger

	mu      sync.Mutex
	current *Principal
	subject *stream.Subject[*Principal]
}

// NewSession creates a signed-out session.
func NewSession(verifier TokenVerifier, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		verifier: verifier,
		logger:   logger,
		subject:  stream.NewSubject[*Principal](),
	}
	s.subject.Publish(nil)
	return s
}

// Observe emits the current principal immediately, then every change.
func (s *Session) Observe() *stream.Subscription[*Principal] {
	return s.subject.Subscribe()
}

// Current returns the signed-in principal or nil.
func (s *Session) Current(_ context.Context) (*Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePrincipal(s.current), nil
}

// SignIn verifies the token and emits its principal.
func (s *Session) SignIn(_ context.Context, token string) (*Principal, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("%w: no verifier configured", ErrInvalidToken)
	}
	p, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Warn("sign-in rejected", "error", err)
		return nil, err
	}
	s.set(p)
	s.logger.Info("signed in", "principal", p.ID)
	return clonePrincipal(p), nil
}

// Refresh re-verifies a renewed token. The principal is re-emitted even when unchanged,
// matching identity providers that signal on every token refresh.
func (s *Session) Refresh(ctx context.Context, token string) (*Principal, error) {
	return s.SignIn(ctx, token)
}

// SignOut emits the absence of a principal.
func (s *Session) SignOut() {
	s.set(nil)
	s.logger.Info("signed out")
}

// Set emits p directly, bypassing token verification. Used for trusted local wiring.
func (s *Session) Set(p *Principal) {
	s.set(p)
}

// Close ends all observers.
func (s *Session) Close() {
	s.subject.Close()
}

func (s *Session) set(p *Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = clonePrincipal(p)
	s.subject.Publish(clonePrincipal(p))
}

func clonePrincipal(p *Principal) *Principal {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
