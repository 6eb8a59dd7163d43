package sqlite

import (
	"context"
	"sync"

	"github.com/rpggio/tasksync/internal/gateway"
)

// hub tracks a change sequence per collection and wakes the subscriptions watching it.
type hub struct {
	mu     sync.Mutex
	seq    map[string]uint64
	subs   map[string]map[*subscription]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{
		seq:  map[string]uint64{},
		subs: map[string]map[*subscription]struct{}{},
	}
}

// bump records a committed write and wakes every subscription on the collection.
func (h *hub) bump(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq[collection]++
	for sub := range h.subs[collection] {
		sub.wakeUp()
	}
}

func (h *hub) current(collection string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq[collection]
}

func (h *hub) add(sub *subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.subs[sub.collection] == nil {
		h.subs[sub.collection] = map[*subscription]struct{}{}
	}
	h.subs[sub.collection][sub] = struct{}{}
	return true
}

func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[sub.collection], sub)
}

func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	var all []*subscription
	for _, subs := range h.subs {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.subs = map[string]map[*subscription]struct{}{}
	h.mu.Unlock()

	for _, sub := range all {
		sub.stop()
	}
}

func (h *hub) count(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// subscription re-queries its collection on every wake-up and delivers full snapshots
// from a single goroutine, so deliveries are ordered. Wake-ups that arrive while a query
// runs are coalesced into one, and a wake-up for a sequence already delivered is dropped,
// so Seq strictly increases across deliveries. After stop, at most the in-flight callback
// still runs.
type subscription struct {
	collection string
	query      func(ctx context.Context) ([]gateway.Document, error)
	seq        func() uint64
	onSnapshot gateway.SnapshotFunc
	onError    gateway.ErrorFunc

	wake chan struct{}
	done chan struct{}
	once sync.Once

	// Owned by run.
	last      uint64
	delivered bool
}

func (s *subscription) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscription) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) run(ctx context.Context) {
	s.wakeUp()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		seq := s.seq()
		if s.delivered && seq <= s.last {
			continue
		}
		docs, err := s.query(ctx)
		if s.stopped() {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.onError(err)
			return
		}
		s.last, s.delivered = seq, true
		s.onSnapshot(gateway.Snapshot{Seq: seq, Documents: docs})
	}
}
