package entity_test

import (
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Base(t *testing.T) {
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	d := entity.NewDecoder(map[string]any{
		"ownerId":   "user-1",
		"createdAt": gateway.NewTimestamp(created),
		"updatedAt": created.Format(time.RFC3339),
	})

	base := d.Base("doc-1")
	require.Equal(t, "doc-1", base.ID)
	require.Equal(t, "user-1", base.OwnerID)
	require.Equal(t, created, base.CreatedAt)
	require.Equal(t, created, base.UpdatedAt)
	require.Empty(t, d.Invalid())
}

func TestDecoder_InvalidTimestampIsFlaggedNotNow(t *testing.T) {
	d := entity.NewDecoder(map[string]any{
		"ownerId":   "user-1",
		"createdAt": "last tuesday",
	})

	base := d.Base("doc-1")
	require.True(t, base.CreatedAt.IsZero())
	require.True(t, base.UpdatedAt.IsZero())
	require.Equal(t, []string{"createdAt", "updatedAt"}, d.Invalid())
}

func TestDecoder_TypeMismatchesAreFlagged(t *testing.T) {
	d := entity.NewDecoder(map[string]any{
		"projectId": float64(7),
		"members":   []any{"a", 3, "b"},
		"status":    "archived",
		"dueDate":   true,
	})

	require.Equal(t, "", d.String("projectId"))
	require.Equal(t, []string{"a", "b"}, d.Strings("members"))
	require.Equal(t, "not-started", d.Enum("status", []string{"not-started", "done"}, "not-started"))
	require.Nil(t, d.OptionalTime("dueDate"))
	require.Equal(t, []string{"projectId", "members", "status", "dueDate"}, d.Invalid())
}

func TestDecoder_MissingFieldsUseDefaults(t *testing.T) {
	d := entity.NewDecoder(nil)

	require.Equal(t, "", d.String("title"))
	require.Nil(t, d.OptionalString("parentId"))
	require.Nil(t, d.OptionalTime("dueDate"))
	require.Equal(t, "medium", d.Enum("importance", []string{"low", "medium", "high"}, "medium"))
	require.Empty(t, d.Invalid())
}

func TestStatus(t *testing.T) {
	require.True(t, entity.StatusDone.Valid())
	require.False(t, entity.Status("archived").Valid())
	require.Less(t, entity.StatusNotStarted.Rank(), entity.StatusInProgress.Rank())
	require.Equal(t, len(entity.Statuses), entity.Status("archived").Rank())
}
