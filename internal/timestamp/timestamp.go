// Package timestamp coerces the wire shapes a timestamp can arrive in into the single
// canonical in-memory form: a UTC time.Time without a monotonic clock reading.
package timestamp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rpggio/tasksync/internal/gateway"
)

var (
	// ErrMissing indicates the field was absent or null.
	ErrMissing = errors.New("timestamp missing")
	// ErrUnrecognized indicates a value that matches none of the accepted shapes.
	ErrUnrecognized = errors.New("unrecognized timestamp shape")
)

// Shape tags the wire representation of a timestamp value.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeMissing
	ShapeCanonical
	ShapeInstant
	ShapePair
	ShapeISO
)

func (s Shape) String() string {
	switch s {
	case ShapeMissing:
		return "missing"
	case ShapeCanonical:
		return "canonical"
	case ShapeInstant:
		return "instant"
	case ShapePair:
		return "seconds/nanoseconds"
	case ShapeISO:
		return "iso-string"
	default:
		return "unknown"
	}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// Canonical converts t into canonical form.
func Canonical(t time.Time) time.Time {
	return t.Round(0).UTC()
}

// IsCanonical reports whether t is already in canonical form.
func IsCanonical(t time.Time) bool {
	return t.Location() == time.UTC && t == t.Round(0)
}

// Classify reports which wire shape v has.
func Classify(v any) Shape {
	switch val := v.(type) {
	case nil:
		return ShapeMissing
	case time.Time:
		if IsCanonical(val) {
			return ShapeCanonical
		}
		return ShapeInstant
	case *time.Time:
		if val == nil {
			return ShapeMissing
		}
		return ShapeInstant
	case gateway.Timestamp:
		return ShapePair
	case *gateway.Timestamp:
		if val == nil {
			return ShapeMissing
		}
		return ShapePair
	case map[string]any:
		if _, _, ok := pairFields(val); ok {
			return ShapePair
		}
		return ShapeUnknown
	case string:
		if _, ok := parseISO(val); ok {
			return ShapeISO
		}
		return ShapeUnknown
	default:
		return ShapeUnknown
	}
}

// Normalize coerces v into canonical form. Normalizing a canonical value returns it
// unchanged. A missing value returns ErrMissing and an unrecognized one ErrUnrecognized;
// neither is ever replaced by the current time.
func Normalize(v any) (time.Time, error) {
	switch Classify(v) {
	case ShapeCanonical:
		return v.(time.Time), nil
	case ShapeInstant:
		switch val := v.(type) {
		case time.Time:
			return Canonical(val), nil
		case *time.Time:
			return Canonical(*val), nil
		}
	case ShapePair:
		switch val := v.(type) {
		case gateway.Timestamp:
			return fromPair(val.Seconds, int64(val.Nanoseconds))
		case *gateway.Timestamp:
			return fromPair(val.Seconds, int64(val.Nanoseconds))
		case map[string]any:
			seconds, nanos, _ := pairFields(val)
			return fromPair(seconds, nanos)
		}
	case ShapeISO:
		t, _ := parseISO(v.(string))
		return Canonical(t), nil
	case ShapeMissing:
		return time.Time{}, ErrMissing
	case ShapeUnknown:
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrUnrecognized, v)
}

// NormalizeOptional treats a missing value as "no timestamp" rather than an error.
func NormalizeOptional(v any) (*time.Time, error) {
	t, err := Normalize(v)
	if errors.Is(err, ErrMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fromPair(seconds, nanos int64) (time.Time, error) {
	if nanos < 0 || nanos >= int64(time.Second) {
		return time.Time{}, fmt.Errorf("%w: nanoseconds out of range: %d", ErrUnrecognized, nanos)
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

// pairFields accepts {seconds, nanoseconds} and the serialized {_seconds, _nanoseconds} form.
func pairFields(m map[string]any) (int64, int64, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		rawSeconds, ok := m[keys[0]]
		if !ok {
			continue
		}
		seconds, ok := toInt64(rawSeconds)
		if !ok {
			return 0, 0, false
		}
		var nanos int64
		if rawNanos, ok := m[keys[1]]; ok {
			if nanos, ok = toInt64(rawNanos); !ok {
				return 0, 0, false
			}
		}
		return seconds, nanos, true
	}
	return 0, 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
