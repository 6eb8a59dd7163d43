package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/stream"
)

// Store is the single authoritative, normalized view of one collection for the signed-in
// principal. Only the gateway subscription writes the published snapshot; mutations go
// to the gateway and come back through it.
type Store[T Keyed] struct {
	name       string
	collection gateway.Collection
	codec      Codec[T]
	identity   identity.Signal
	profiles   identity.ProfileLookup
	logger     *slog.Logger
	opts       Options
	elevated   map[string]bool

	subject *stream.Subject[Update[T]]

	mu            sync.Mutex
	started       bool
	cancel        context.CancelFunc
	identitySub   *stream.Subscription[*identity.Principal]
	done          chan struct{}
	state         State
	principal     *identity.Principal
	elevatedScope bool
	owner         string
	generation    uint64
	unsubscribe   func()
	lastSeq       uint64
	hasSeq        bool
	drain         Timer
	current       Update[T]
	published     bool
	index         map[string]int
}

// New creates an unsubscribed store. profiles may be nil, in which case every principal
// sees only its own documents.
func New[T Keyed](
	collection gateway.Collection,
	codec Codec[T],
	signal identity.Signal,
	profiles identity.ProfileLookup,
	opts Options,
	logger *slog.Logger,
) *Store[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts = opts.withDefaults()
	elevated := make(map[string]bool, len(opts.ElevatedRoles))
	for _, role := range opts.ElevatedRoles {
		elevated[role] = true
	}
	name := collection.Name()
	return &Store[T]{
		name:       name,
		collection: collection,
		codec:      codec,
		identity:   signal,
		profiles:   profiles,
		logger:     logger.With("collection", name),
		opts:       opts,
		elevated:   elevated,
		subject:    stream.NewSubject[Update[T]](),
		index:      map[string]int{},
	}
}

// Name returns the collection name.
func (s *Store[T]) Name() string {
	return s.name
}

// Start begins following the identity signal.
func (s *Store[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.identitySub = s.identity.Observe()
	s.done = make(chan struct{})
	go s.run(runCtx, s.identitySub, s.done)
	return nil
}

// Stop closes the gateway subscription and stops following identity. The published
// snapshot is left as is.
func (s *Store[T]) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	cancel, sub, done := s.cancel, s.identitySub, s.done
	s.mu.Unlock()

	cancel()
	sub.Unsubscribe()
	<-done

	s.mu.Lock()
	s.generation++
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	if s.drain != nil {
		s.drain.Stop()
		s.drain = nil
	}
	s.state = StateUnsubscribed
	s.principal = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.logger.Debug("store stopped")
	return nil
}

// Observe delivers the latest update immediately, if one was published, then every
// update in publish order.
func (s *Store[T]) Observe() *stream.Subscription[Update[T]] {
	return s.subject.Subscribe()
}

// Snapshot returns the last published update.
func (s *Store[T]) Snapshot() (Update[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.published
}

// GetByID looks id up in the last published snapshot only.
func (s *Store[T]) GetByID(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.current.Items[i], true
}

// State returns the lifecycle state.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns the principal the store is subscribed for, or nil.
func (s *Store[T]) Principal() *identity.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

func (s *Store[T]) run(ctx context.Context, sub *stream.Subscription[*identity.Principal], done chan struct{}) {
	defer close(done)
	for {
		select {
		case p, ok := <-sub.C():
			if !ok {
				return
			}
			if p == nil {
				s.signedOut()
			} else {
				s.signedIn(ctx, p)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store[T]) signedIn(ctx context.Context, p *identity.Principal) {
	s.mu.Lock()
	if (s.state == StateSubscribing || s.state == StateLive) && s.principal != nil && s.principal.ID == p.ID {
		s.mu.Unlock()
		return
	}
	if s.drain != nil {
		s.drain.Stop()
		s.drain = nil
	}
	previous := s.unsubscribe
	s.unsubscribe = nil
	s.generation++
	gen := s.generation
	s.state = StateSubscribing
	principal := *p
	s.principal = &principal
	s.elevatedScope = false
	s.hasSeq = false
	s.lastSeq = 0
	if s.owner != "" && s.owner != p.ID {
		s.logger.Info("principal changed, clearing snapshot")
		s.owner = ""
		s.publishLocked(make([]T, 0), nil)
	}
	s.mu.Unlock()

	if previous != nil {
		previous()
	}

	elevated := s.resolveScope(ctx, p.ID)
	filter := gateway.Where(gateway.FieldOwnerID, p.ID)
	if elevated {
		filter = gateway.Filter{}
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.elevatedScope = elevated
	s.mu.Unlock()

	subCtx := gateway.WithCaller(ctx, gateway.Caller{ID: p.ID, Elevated: elevated})
	unsubscribe, err := s.collection.Subscribe(subCtx, filter,
		func(snap gateway.Snapshot) { s.applySnapshot(gen, snap) },
		func(err error) { s.streamFailed(gen, err) },
	)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		return
	}
	if err != nil {
		s.state = StateUnsubscribed
		s.principal = nil
		s.logger.Error("opening subscription failed", "principal", p.ID, "error", err)
		s.publishLocked(s.current.Items, apperr.New(apperr.ErrSubscription, s.name+".subscribe", err))
		s.mu.Unlock()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	s.logger.Debug("subscription opened", "principal", p.ID, "elevated", elevated, "generation", gen)
}

func (s *Store[T]) signedOut() {
	s.mu.Lock()
	s.principal = nil
	draining := s.state == StateSubscribing || s.state == StateLive ||
		(s.state == StateUnsubscribed && s.owner != "")
	if !draining {
		s.mu.Unlock()
		return
	}
	s.generation++
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.state = StateDrainingOnSignOut
	token := s.generation
	s.drain = s.opts.AfterFunc(s.opts.GraceWindow, func() { s.drainElapsed(token) })
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.logger.Debug("signed out, draining", "grace", s.opts.GraceWindow)
}

func (s *Store[T]) drainElapsed(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDrainingOnSignOut || s.generation != token {
		return
	}
	s.drain = nil
	s.state = StateUnsubscribed
	s.owner = ""
	s.publishLocked(make([]T, 0), nil)
	s.logger.Debug("grace window elapsed, snapshot cleared")
}

func (s *Store[T]) resolveScope(ctx context.Context, principalID string) bool {
	if s.profiles == nil || len(s.elevated) == 0 {
		return false
	}
	profile, err := s.profiles.GetProfile(ctx, principalID)
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) || errors.Is(err, gateway.ErrNotFound) {
			s.logger.Debug("no profile, using own scope", "principal", principalID)
		} else {
			s.logger.Warn("profile lookup failed, using own scope", "principal", principalID, "error", err)
		}
		return false
	}
	return profile != nil && s.elevated[profile.Role]
}

func (s *Store[T]) applySnapshot(gen uint64, snap gateway.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding snapshot from closed subscription", "generation", gen, "current", s.generation)
		return
	}
	if s.state != StateSubscribing && s.state != StateLive {
		return
	}
	if s.hasSeq && snap.Seq <= s.lastSeq {
		s.logger.Debug("discarding out of order snapshot", "seq", snap.Seq, "last", s.lastSeq)
		return
	}
	s.hasSeq = true
	s.lastSeq = snap.Seq

	items := make([]T, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		item, invalid := s.codec.Decode(doc)
		if len(invalid) > 0 {
			s.logger.Warn("document has invalid fields", "id", doc.ID, "fields", invalid)
		}
		items = append(items, item)
	}
	if s.state == StateSubscribing {
		s.logger.Info("subscription live", "principal", s.principal.ID, "documents", len(items))
	}
	s.state = StateLive
	s.owner = s.principal.ID
	s.publishLocked(items, nil)
}

func (s *Store[T]) streamFailed(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.generation++
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.state = StateUnsubscribed
	s.principal = nil
	s.logger.Error("subscription failed", "error", err)
	s.publishLocked(s.current.Items, apperr.New(apperr.ErrSubscription, s.name+".observe", err))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store[T]) publishLocked(items []T, err error) {
	if items == nil {
		items = make([]T, 0)
	}
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.Key()] = i
	}
	s.current = Update[T]{Items: items, Version: s.current.Version + 1, Err: err}
	s.published = true
	s.index = index
	s.subject.Publish(s.current)
}
