package entity

import (
	"errors"
	"time"

	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/timestamp"
)

// Decoder reads typed fields out of a raw document body and records every field it
// had to fall back on.
type Decoder struct {
	body    map[string]any
	invalid []string
}

// NewDecoder wraps a raw body.
func NewDecoder(body map[string]any) *Decoder {
	if body == nil {
		body = map[string]any{}
	}
	return &Decoder{body: body}
}

// Base decodes the shared fields and attaches the document id.
func (d *Decoder) Base(id string) Base {
	return Base{
		ID:        id,
		OwnerID:   d.String(gateway.FieldOwnerID),
		CreatedAt: d.RequiredTime(gateway.FieldCreatedAt),
		UpdatedAt: d.RequiredTime(gateway.FieldUpdatedAt),
	}
}

// String returns a string field. Missing and null give "". Any other type is flagged.
func (d *Decoder) String(field string) string {
	switch v := d.body[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		d.flag(field)
		return ""
	}
}

// OptionalString returns nil for a missing or null field.
func (d *Decoder) OptionalString(field string) *string {
	switch v := d.body[field].(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		d.flag(field)
		return nil
	}
}

// Strings returns a list of strings, skipping and flagging non-string members.
func (d *Decoder) Strings(field string) []string {
	switch v := d.body[field].(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				d.flag(field)
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		d.flag(field)
		return nil
	}
}

// Enum returns the field if it is one of allowed, def when missing, and def plus a flag
// for anything else.
func (d *Decoder) Enum(field string, allowed []string, def string) string {
	raw, ok := d.body[field]
	if !ok || raw == nil {
		return def
	}
	s, ok := raw.(string)
	if ok {
		for _, a := range allowed {
			if s == a {
				return s
			}
		}
	}
	d.flag(field)
	return def
}

// RequiredTime returns a canonical timestamp. A missing or unrecognized value is flagged
// and yields the zero time, never the current time.
func (d *Decoder) RequiredTime(field string) time.Time {
	t, err := timestamp.Normalize(d.body[field])
	if err != nil {
		d.flag(field)
		return time.Time{}
	}
	return t
}

// OptionalTime returns nil for a missing value and flags an unrecognized one.
func (d *Decoder) OptionalTime(field string) *time.Time {
	t, err := timestamp.NormalizeOptional(d.body[field])
	if err != nil {
		if errors.Is(err, timestamp.ErrUnrecognized) {
			d.flag(field)
		}
		return nil
	}
	return t
}

// Invalid returns the flagged fields in decode order.
func (d *Decoder) Invalid() []string {
	return d.invalid
}

func (d *Decoder) flag(field string) {
	for _, f := range d.invalid {
		if f == field {
			return
		}
	}
	d.invalid = append(d.invalid, field)
}

// TimeValue encodes an optional time in the backend's native form.
func TimeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return gateway.NewTimestamp(timestamp.Canonical(*t))
}
