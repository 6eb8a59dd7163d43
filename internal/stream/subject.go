// Package stream provides an ordered broadcast subject: every subscriber receives
// published values in publish order, and a new subscriber first receives the latest
// value (not history).
package stream

import "sync"

// Subject fans published values out to its subscriptions.
type Subject[T any] struct {
	mu        sync.Mutex
	subs      map[*Subscription[T]]struct{}
	latest    T
	hasLatest bool
	closed    bool
}

// NewSubject creates an empty subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Publish delivers v to every current subscription and records it as the latest value.
// Publish never blocks on a slow subscriber.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = v
	s.hasLatest = true
	for sub := range s.subs {
		sub.enqueue(v)
	}
}

// Latest returns the most recently published value.
func (s *Subject[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// Subscribe registers a new subscription. If a value was published before, it is the
// first value the subscription receives.
func (s *Subject[T]) Subscribe() *Subscription[T] {
	sub := newSubscription[T](s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.close()
		return sub
	}
	if s.hasLatest {
		sub.enqueue(s.latest)
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Len returns the number of live subscriptions.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription; later publishes are ignored.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[*Subscription[T]]struct{})
	s.closed = true
	s.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
}

func (s *Subject[T]) remove(sub *Subscription[T]) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// Subscription is one subscriber's ordered view of a subject.
type Subscription[T any] struct {
	subject *Subject[T]
	out     chan T

	mu     sync.Mutex
	queue  []T
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	exited chan struct{}
}

func newSubscription[T any](subject *Subject[T]) *Subscription[T] {
	sub := &Subscription[T]{
		subject: subject,
		out:     make(chan T),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go sub.pump()
	return sub
}

// C returns the channel values are delivered on. It is closed after Unsubscribe.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Unsubscribe detaches the subscription. No value is delivered after it returns.
func (s *Subscription[T]) Unsubscribe() {
	s.subject.remove(s)
	s.close()
	<-s.exited
}

// Done is closed once the subscription has ended.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) enqueue(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.exited)
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}
