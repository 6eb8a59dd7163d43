package gateway

import (
	"context"
	"reflect"
	"time"
)

// Document is a stored body keyed by its id. The id is never part of the body.
type Document struct {
	ID   string
	Body map[string]any
}

// Snapshot is a complete, point-in-time view of the documents matching a subscription.
// Seq increases monotonically per collection.
type Snapshot struct {
	Seq       uint64
	Documents []Document
}

// Clause is a single field equality condition.
type Clause struct {
	Field string
	Value any
}

// Filter is a conjunction of clauses. The zero Filter matches everything.
type Filter struct {
	Clauses []Clause
}

// Where starts a filter with one equality clause.
func Where(field string, value any) Filter {
	return Filter{Clauses: []Clause{{Field: field, Value: value}}}
}

// And returns a copy of f with one more clause.
func (f Filter) And(field string, value any) Filter {
	clauses := make([]Clause, 0, len(f.Clauses)+1)
	clauses = append(clauses, f.Clauses...)
	clauses = append(clauses, Clause{Field: field, Value: value})
	return Filter{Clauses: clauses}
}

// IsZero reports whether the filter is unfiltered.
func (f Filter) IsZero() bool {
	return len(f.Clauses) == 0
}

// Matches evaluates the filter against a document body.
func (f Filter) Matches(body map[string]any) bool {
	for _, clause := range f.Clauses {
		value, ok := body[clause.Field]
		if !ok || !reflect.DeepEqual(value, clause.Value) {
			return false
		}
	}
	return true
}

// Timestamp is the backend's native seconds/nanoseconds pair.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// NewTimestamp converts t into the backend pair.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time converts the pair back into a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds)).UTC()
}

// Caller identifies who is issuing a gateway call, for authorization.
type Caller struct {
	ID       string
	Elevated bool
}

type callerKey struct{}

// WithCaller attaches the caller to ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller attached to ctx, if present.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

// Well-known body fields shared by every collection.
const (
	FieldOwnerID   = "ownerId"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)
