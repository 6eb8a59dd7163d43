package views

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/stream"
)

// Source is anything publishing store updates, usually a *store.Store.
type Source[T any] interface {
	Observe() *stream.Subscription[store.Update[T]]
}

// Result is one recomputed projection. Versions are the source versions it was derived
// from. A non-nil Err reports a failed source; Value then holds the last good projection.
type Result[R any] struct {
	Value    R
	Versions [2]uint64
	Err      error
}

// Joined recomputes a projection of two sources whenever either publishes.
type Joined[R any] struct {
	subject *stream.Subject[Result[R]]
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Join2 starts following a and b. The projection first runs once both sources have
// published; from then on every publish of either recomputes it.
func Join2[A, B, R any](ctx context.Context, a Source[A], b Source[B], project func([]A, []B) R, logger *slog.Logger) *Joined[R] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(ctx)
	j := &Joined[R]{
		subject: stream.NewSubject[Result[R]](),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	subA, subB := a.Observe(), b.Observe()
	go func() {
		defer close(j.done)
		defer subA.Unsubscribe()
		defer subB.Unsubscribe()

		var (
			lastA        store.Update[A]
			lastB        store.Update[B]
			haveA, haveB bool
			value        R
		)
		for {
			select {
			case u, ok := <-subA.C():
				if !ok {
					return
				}
				lastA, haveA = u, true
			case u, ok := <-subB.C():
				if !ok {
					return
				}
				lastB, haveB = u, true
			case <-ctx.Done():
				return
			}
			if !haveA || !haveB {
				continue
			}

			versions := [2]uint64{lastA.Version, lastB.Version}
			if err := firstErr(lastA.Err, lastB.Err); err != nil {
				logger.Debug("join source failed", "error", err)
				j.subject.Publish(Result[R]{Value: value, Versions: versions, Err: err})
				continue
			}
			value = project(lastA.Items, lastB.Items)
			j.subject.Publish(Result[R]{Value: value, Versions: versions})
		}
	}()
	return j
}

// Observe returns the latest result, if any, then every later one.
func (j *Joined[R]) Observe() *stream.Subscription[Result[R]] {
	return j.subject.Subscribe()
}

// Latest returns the most recent result.
func (j *Joined[R]) Latest() (Result[R], bool) {
	return j.subject.Latest()
}

// Close stops following the sources and ends every observer.
func (j *Joined[R]) Close() {
	j.once.Do(func() {
		j.cancel()
		<-j.done
		j.subject.Close()
	})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
