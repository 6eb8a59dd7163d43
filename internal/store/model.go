// Package store mirrors a remote collection into an observable, identity-scoped snapshot.
package store

import (
	"errors"
	"time"

	"github.com/rpggio/tasksync/internal/gateway"
)

var (
	// ErrAlreadyStarted is returned by Start on a running store.
	ErrAlreadyStarted = errors.New("store already started")
	// ErrNotStarted is returned by Stop on a store that isn't running.
	ErrNotStarted = errors.New("store not started")
)

// DefaultGraceWindow is how long a signed-out store keeps its snapshot.
const DefaultGraceWindow = 750 * time.Millisecond

// State is the subscription lifecycle state.
type State int

const (
	StateUnsubscribed State = iota
	StateSubscribing
	StateLive
	StateDrainingOnSignOut
)

func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	case StateDrainingOnSignOut:
		return "draining"
	default:
		return "unknown"
	}
}

// Keyed is satisfied by every entity through its embedded base.
type Keyed interface {
	Key() string
}

// Update is one published value. Items is always a complete replacement. A non-nil Err
// reports that the live stream failed; Items then still holds the last known data.
type Update[T any] struct {
	Items   []T
	Version uint64
	Err     error
}

// Codec converts between an entity type and raw document bodies.
type Codec[T any] interface {
	// Decode normalizes a raw document. Fields it could not decode are returned by name;
	// the entity is still usable.
	Decode(doc gateway.Document) (T, []string)
	// Encode validates a draft and returns its body, without id, owner or timestamps.
	Encode(draft T) (map[string]any, error)
	// ValidatePatch checks caller-supplied fields of a partial update.
	ValidatePatch(patch map[string]any) error
}

// Timer is the handle returned by Options.AfterFunc.
type Timer interface {
	Stop() bool
}

// Options tunes a store.
type Options struct {
	// GraceWindow delays clearing the snapshot after sign-out. Zero means DefaultGraceWindow.
	GraceWindow time.Duration
	// ElevatedRoles see every document instead of only their own.
	ElevatedRoles []string
	// AfterFunc schedules f after d. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) Timer
	// Now supplies mutation timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.GraceWindow <= 0 {
		o.GraceWindow = DefaultGraceWindow
	}
	if o.AfterFunc == nil {
		o.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
