package store_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/stretchr/testify/require"
)

type note struct {
	entity.Base
	Title  string
	Status string
}

type noteCodec struct{}

func (noteCodec) Decode(doc gateway.Document) (note, []string) {
	d := entity.NewDecoder(doc.Body)
	n := note{
		Base:   d.Base(doc.ID),
		Title:  d.String("title"),
		Status: d.Enum("status", []string{"open", "closed"}, "open"),
	}
	n.Invalid = d.Invalid()
	return n, n.Invalid
}

func (noteCodec) Encode(draft note) (map[string]any, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	status := draft.Status
	if status == "" {
		status = "open"
	}
	return map[string]any{"title": draft.Title, "status": status}, nil
}

func (noteCodec) ValidatePatch(patch map[string]any) error {
	for k, v := range patch {
		switch k {
		case "title":
		case "status":
			if v != "open" && v != "closed" {
				return fmt.Errorf("invalid status %v", v)
			}
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

// memoryCollection is an in-memory gateway with synchronous snapshot delivery.
type memoryCollection struct {
	mu      sync.Mutex
	docs    map[string]map[string]any
	order   []string
	seq     uint64
	nextID  int
	subs    []*memorySub
	open    int
	maxOpen int
	calls   []gateway.Caller

	subscribeErr error
	writeErr     error
}

type memorySub struct {
	filter     gateway.Filter
	onSnapshot gateway.SnapshotFunc
	onError    gateway.ErrorFunc
	closed     bool
}

func newMemoryCollection() *memoryCollection {
	return &memoryCollection{docs: map[string]map[string]any{}}
}

func (c *memoryCollection) Name() string { return "notes" }

func (c *memoryCollection) Subscribe(_ context.Context, filter gateway.Filter, onSnapshot gateway.SnapshotFunc, onError gateway.ErrorFunc) (func(), error) {
	c.mu.Lock()
	if c.subscribeErr != nil {
		err := c.subscribeErr
		c.mu.Unlock()
		return nil, err
	}
	sub := &memorySub{filter: filter, onSnapshot: onSnapshot, onError: onError}
	c.subs = append(c.subs, sub)
	c.open++
	if c.open > c.maxOpen {
		c.maxOpen = c.open
	}
	snap := c.snapshotLocked(sub)
	c.mu.Unlock()

	onSnapshot(snap)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !sub.closed {
			sub.closed = true
			c.open--
		}
	}, nil
}

func (c *memoryCollection) Add(ctx context.Context, body map[string]any) (string, error) {
	c.mu.Lock()
	if c.writeErr != nil {
		c.mu.Unlock()
		return "", c.writeErr
	}
	c.recordCaller(ctx)
	c.nextID++
	id := fmt.Sprintf("n%d", c.nextID)
	c.docs[id] = copyBody(body)
	c.order = append(c.order, id)
	c.mu.Unlock()
	c.broadcast()
	return id, nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, patch map[string]any) error {
	c.mu.Lock()
	if c.writeErr != nil {
		c.mu.Unlock()
		return c.writeErr
	}
	c.recordCaller(ctx)
	doc, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return gateway.ErrNotFound
	}
	for k, v := range patch {
		doc[k] = v
	}
	c.mu.Unlock()
	c.broadcast()
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.writeErr != nil {
		c.mu.Unlock()
		return c.writeErr
	}
	c.recordCaller(ctx)
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return gateway.ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.broadcast()
	return nil
}

func (c *memoryCollection) GetOnce(_ context.Context, id string) (*gateway.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return &gateway.Document{ID: id, Body: copyBody(doc)}, nil
}

func (c *memoryCollection) QueryOnce(_ context.Context, filter gateway.Filter) ([]gateway.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchingLocked(filter), nil
}

// put inserts a raw document as another client would, bypassing the store.
func (c *memoryCollection) put(id string, body map[string]any) {
	c.mu.Lock()
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = copyBody(body)
	c.mu.Unlock()
	c.broadcast()
}

func (c *memoryCollection) fail(err error) {
	c.mu.Lock()
	var targets []*memorySub
	for _, sub := range c.subs {
		if !sub.closed {
			targets = append(targets, sub)
		}
	}
	c.mu.Unlock()
	for _, sub := range targets {
		sub.onError(err)
	}
}

func (c *memoryCollection) lastSub() *memorySub {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) == 0 {
		return nil
	}
	return c.subs[len(c.subs)-1]
}

func (c *memoryCollection) subCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *memoryCollection) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *memoryCollection) maxOpenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxOpen
}

func (c *memoryCollection) lastCaller() gateway.Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

func (c *memoryCollection) body(id string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyBody(c.docs[id])
}

func (c *memoryCollection) nextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *memoryCollection) recordCaller(ctx context.Context) {
	caller, _ := gateway.CallerFromContext(ctx)
	c.calls = append(c.calls, caller)
}

func (c *memoryCollection) broadcast() {
	c.mu.Lock()
	type delivery struct {
		sub  *memorySub
		snap gateway.Snapshot
	}
	var deliveries []delivery
	for _, sub := range c.subs {
		if !sub.closed {
			deliveries = append(deliveries, delivery{sub: sub, snap: c.snapshotLocked(sub)})
		}
	}
	c.mu.Unlock()
	for _, d := range deliveries {
		d.sub.onSnapshot(d.snap)
	}
}

func (c *memoryCollection) snapshotLocked(sub *memorySub) gateway.Snapshot {
	c.seq++
	return gateway.Snapshot{Seq: c.seq, Documents: c.matchingLocked(sub.filter)}
}

func (c *memoryCollection) matchingLocked(filter gateway.Filter) []gateway.Document {
	docs := make([]gateway.Document, 0, len(c.order))
	for _, id := range c.order {
		body := c.docs[id]
		if filter.Matches(body) {
			docs = append(docs, gateway.Document{ID: id, Body: copyBody(body)})
		}
	}
	return docs
}

func copyBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	return out
}

// manualClock hands out timers that only fire when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) store.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fire runs every pending timer.
func (c *manualClock) fire() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fireStale runs every timer, including stopped ones, as a late time.AfterFunc would.
func (c *manualClock) fireStale() {
	c.mu.Lock()
	all := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range all {
		t.f()
	}
}

type harness struct {
	collection *memoryCollection
	session    *identity.Session
	clock      *manualClock
	store      *store.Store[note]
	now        time.Time
}

func newHarness(t *testing.T, profiles identity.ProfileLookup, roles ...string) *harness {
	t.Helper()
	h := &harness{
		collection: newMemoryCollection(),
		session:    identity.NewSession(nil, nil),
		clock:      &manualClock{},
		now:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.store = store.New[note](h.collection, noteCodec{}, h.session, profiles, store.Options{
		GraceWindow:   500 * time.Millisecond,
		ElevatedRoles: roles,
		AfterFunc:     h.clock.AfterFunc,
		Now:           func() time.Time { return h.now },
	}, nil)
	require.NoError(t, h.store.Start(context.Background()))
	t.Cleanup(func() {
		_ = h.store.Stop()
		h.session.Close()
	})
	return h
}

func (h *harness) signIn(t *testing.T, id string) {
	t.Helper()
	h.session.Set(&identity.Principal{ID: id})
}

func (h *harness) waitState(t *testing.T, want store.State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.store.State() == want }, time.Second, 5*time.Millisecond,
		"state never became %s (is %s)", want, h.store.State())
}
