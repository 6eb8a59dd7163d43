package sqlite

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/gateway"
	"github.com/stretchr/testify/require"
)

func seqs(r *snapshotRecorder) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Seq
	}
	return out
}

func TestSubscription_DropsWakeUpsForDeliveredSeq(t *testing.T) {
	var current atomic.Uint64
	var queries atomic.Int32
	rec := &snapshotRecorder{}
	sub := &subscription{
		collection: "tasks",
		query: func(context.Context) ([]gateway.Document, error) {
			queries.Add(1)
			return nil, nil
		},
		seq:        current.Load,
		onSnapshot: rec.onSnapshot,
		onError:    rec.onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.run(ctx)
	defer sub.stop()

	require.Eventually(t, func() bool { return len(seqs(rec)) == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 3; i++ {
		sub.wakeUp()
	}
	current.Store(2)
	sub.wakeUp()
	require.Eventually(t, func() bool {
		got := seqs(rec)
		return len(got) > 0 && got[len(got)-1] == 2
	}, time.Second, time.Millisecond)

	for i := 0; i < 3; i++ {
		sub.wakeUp()
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, []uint64{0, 2}, seqs(rec))
	require.Equal(t, 0, rec.errCount())
	require.LessOrEqual(t, queries.Load(), int32(2), "a stale wake-up does not re-query")
}

func TestCollection_EachSeqDeliveredOnce(t *testing.T) {
	docs := NewDocumentStore(NewTestDB(t), nil)
	tasks := docs.Collection("tasks")
	ctx := as("user-1", false)

	rec := &snapshotRecorder{}
	unsubscribe, err := tasks.Subscribe(ctx, gateway.Where("ownerId", "user-1"), rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		_, err := tasks.Add(ctx, map[string]any{"ownerId": "user-1", "n": i})
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		s, _ := rec.last()
		return len(s.Documents) == 5
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	got := seqs(rec)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i], got[i-1], "seqs %v", got)
	}
}
