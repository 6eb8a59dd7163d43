package timestamp_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/rpggio/tasksync/internal/timestamp"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AllShapesAgree(t *testing.T) {
	instant := time.Date(2024, 3, 9, 14, 30, 15, 123456789, time.FixedZone("CET", 3600))
	want := timestamp.Canonical(instant)

	inputs := map[string]any{
		"native instant":      instant,
		"pointer instant":     &instant,
		"pair struct":         gateway.NewTimestamp(instant),
		"pair map":            map[string]any{"seconds": float64(instant.Unix()), "nanoseconds": float64(instant.Nanosecond())},
		"serialized pair map": map[string]any{"_seconds": json.Number("1709991015"), "_nanoseconds": json.Number("123456789")},
		"iso string":          instant.Format(time.RFC3339Nano),
		"canonical":           want,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := timestamp.Normalize(input)
			require.NoError(t, err)
			require.True(t, want.Equal(got), "got %v want %v", got, want)
			require.True(t, timestamp.IsCanonical(got))
		})
	}
}

func TestNormalize_CanonicalIsNoOp(t *testing.T) {
	canonical := timestamp.Canonical(time.Now())
	got, err := timestamp.Normalize(canonical)
	require.NoError(t, err)
	require.Equal(t, canonical, got)

	again, err := timestamp.Normalize(got)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestClassify(t *testing.T) {
	local := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("X", -7200))
	require.Equal(t, timestamp.ShapeInstant, timestamp.Classify(local))
	require.Equal(t, timestamp.ShapeInstant, timestamp.Classify(time.Now()))
	require.Equal(t, timestamp.ShapeCanonical, timestamp.Classify(timestamp.Canonical(local)))
	require.Equal(t, timestamp.ShapePair, timestamp.Classify(gateway.Timestamp{Seconds: 1}))
	require.Equal(t, timestamp.ShapeISO, timestamp.Classify("2024-01-01"))
	require.Equal(t, timestamp.ShapeMissing, timestamp.Classify(nil))
	require.Equal(t, timestamp.ShapeUnknown, timestamp.Classify("yesterday"))
	require.Equal(t, timestamp.ShapeUnknown, timestamp.Classify(42))
	require.Equal(t, timestamp.ShapeUnknown, timestamp.Classify(map[string]any{"seconds": "x"}))
}

func TestNormalize_UnrecognizedNeverBecomesNow(t *testing.T) {
	for _, input := range []any{"not a date", true, []any{1, 2}, map[string]any{"foo": 1}, 1.5} {
		got, err := timestamp.Normalize(input)
		require.ErrorIs(t, err, timestamp.ErrUnrecognized)
		require.True(t, got.IsZero())
	}
}

func TestNormalize_Missing(t *testing.T) {
	_, err := timestamp.Normalize(nil)
	require.ErrorIs(t, err, timestamp.ErrMissing)

	opt, err := timestamp.NormalizeOptional(nil)
	require.NoError(t, err)
	require.Nil(t, opt)
}

func TestNormalize_PairOutOfRange(t *testing.T) {
	_, err := timestamp.Normalize(map[string]any{"seconds": 10, "nanoseconds": int64(time.Second)})
	require.ErrorIs(t, err, timestamp.ErrUnrecognized)
}

func TestNormalize_PairSecondsBeyondInt64(t *testing.T) {
	for name, input := range map[string]map[string]any{
		"float above":       {"seconds": 1e19},
		"float at 2^63":     {"seconds": 9.3e18},
		"float below":       {"_seconds": -1e19},
		"json number above": {"_seconds": json.Number("10000000000000000000")},
	} {
		require.Equal(t, timestamp.ShapeUnknown, timestamp.Classify(input), name)
		got, err := timestamp.Normalize(input)
		require.ErrorIs(t, err, timestamp.ErrUnrecognized, name)
		require.True(t, got.IsZero(), name)
	}
}

func TestNormalize_ISOWithoutZoneIsUTC(t *testing.T) {
	got, err := timestamp.Normalize("2024-05-01T08:00:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), got)
}
