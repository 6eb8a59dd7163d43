package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/stream"
	"github.com/rpggio/tasksync/internal/timestamp"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	db       *DB
	docs     *DocumentStore
	session  *identity.Session
	profiles *ProfileRepository
	tasks    *store.Store[task.Task]
}

func newSyncFixture(t *testing.T, grace time.Duration) *syncFixture {
	t.Helper()
	db := NewTestDB(t)
	f := &syncFixture{
		db:       db,
		docs:     NewDocumentStore(db, nil),
		session:  identity.NewSession(nil, nil),
		profiles: NewProfileRepository(db),
	}
	f.tasks = store.New[task.Task](f.docs.Collection(task.Collection), task.Codec{}, f.session, f.profiles,
		store.Options{GraceWindow: grace, ElevatedRoles: []string{identity.RoleAdmin}}, nil)
	require.NoError(t, f.tasks.Start(context.Background()))
	t.Cleanup(func() {
		f.tasks.Stop()
		f.docs.Close()
		f.session.Close()
	})
	return f
}

func (f *syncFixture) signIn(t *testing.T, id string) {
	t.Helper()
	f.session.Set(&identity.Principal{ID: id})
	require.Eventually(t, func() bool {
		p := f.tasks.Principal()
		return f.tasks.State() == store.StateLive && p != nil && p.ID == id
	}, 2*time.Second, 5*time.Millisecond)
}

func waitUpdate(t *testing.T, sub *stream.Subscription[store.Update[task.Task]], match func(store.Update[task.Task]) bool) []store.Update[task.Task] {
	t.Helper()
	var seen []store.Update[task.Task]
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-sub.C():
			seen = append(seen, u)
			if match(u) {
				return seen
			}
		case <-deadline:
			t.Fatalf("timed out after %d updates", len(seen))
			return seen
		}
	}
}

func TestSync_SignInThenCreate(t *testing.T) {
	f := newSyncFixture(t, time.Second)
	f.signIn(t, "user-1")

	sub := f.tasks.Observe()
	defer sub.Unsubscribe()

	ctx := context.Background()
	id, err := f.tasks.Create(ctx, task.CreateRequest{Title: "Write report"}.Draft())
	require.NoError(t, err)

	waitUpdate(t, sub, func(u store.Update[task.Task]) bool { return len(u.Items) == 1 })

	got, ok := f.tasks.GetByID(id)
	require.True(t, ok)
	require.Equal(t, "Write report", got.Title)
	require.Equal(t, "user-1", got.OwnerID)
	require.Equal(t, task.ImportanceMedium, got.Importance)
	require.Empty(t, got.Invalid)
	require.True(t, timestamp.IsCanonical(got.CreatedAt))
	require.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestSync_UpdateRaceConverges(t *testing.T) {
	f := newSyncFixture(t, time.Second)
	f.signIn(t, "user-1")
	ctx := context.Background()

	id, err := f.tasks.Create(ctx, task.CreateRequest{Title: "race"}.Draft())
	require.NoError(t, err)

	errs := make(chan error, 2)
	for _, title := range []string{"first", "second"} {
		go func(title string) {
			errs <- f.tasks.Update(ctx, id, map[string]any{"title": title})
		}(title)
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	doc, err := f.docs.Collection(task.Collection).GetOnce(callerCtx("user-1"), id)
	require.NoError(t, err)
	remote := doc.Body["title"]

	require.Eventually(t, func() bool {
		got, ok := f.tasks.GetByID(id)
		return ok && got.Title == remote
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSync_OtherOwnersAreInvisible(t *testing.T) {
	f := newSyncFixture(t, time.Second)
	other := f.docs.Collection(task.Collection)
	_, err := other.Add(callerCtx("user-2"), map[string]any{"ownerId": "user-2", "title": "theirs", "status": "done", "importance": "low"})
	require.NoError(t, err)

	f.signIn(t, "user-1")
	snap, ok := f.tasks.Snapshot()
	require.True(t, ok)
	require.Empty(t, snap.Items)

	err = f.tasks.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSync_AdminProfileSeesEverything(t *testing.T) {
	f := newSyncFixture(t, time.Second)
	require.NoError(t, f.profiles.SetProfile(context.Background(), &identity.Profile{PrincipalID: "admin", Role: identity.RoleAdmin}))
	_, err := f.docs.Collection(task.Collection).Add(callerCtx("user-2"), map[string]any{"ownerId": "user-2", "title": "theirs"})
	require.NoError(t, err)

	f.signIn(t, "admin")
	require.Eventually(t, func() bool {
		snap, ok := f.tasks.Snapshot()
		return ok && len(snap.Items) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSync_GraceWindowKeepsSnapshot(t *testing.T) {
	f := newSyncFixture(t, 5*time.Second)
	f.signIn(t, "user-1")
	_, err := f.tasks.Create(context.Background(), task.CreateRequest{Title: "kept"}.Draft())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, _ := f.tasks.Snapshot()
		return len(snap.Items) == 1
	}, 2*time.Second, 5*time.Millisecond)

	sub := f.tasks.Observe()
	defer sub.Unsubscribe()

	f.session.SignOut()
	require.Eventually(t, func() bool { return f.tasks.State() == store.StateDrainingOnSignOut }, time.Second, 5*time.Millisecond)
	f.signIn(t, "user-1")

	// Let the new subscription deliver before checking what was published.
	time.Sleep(50 * time.Millisecond)
	for done := false; !done; {
		select {
		case u := <-sub.C():
			require.Len(t, u.Items, 1, "snapshot flashed empty during grace window")
		default:
			done = true
		}
	}
}

func TestSync_SignOutClearsAfterGrace(t *testing.T) {
	f := newSyncFixture(t, 30*time.Millisecond)
	f.signIn(t, "user-1")
	_, err := f.tasks.Create(context.Background(), task.CreateRequest{Title: "gone"}.Draft())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, _ := f.tasks.Snapshot()
		return len(snap.Items) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.session.SignOut()
	require.Eventually(t, func() bool {
		snap, _ := f.tasks.Snapshot()
		return f.tasks.State() == store.StateUnsubscribed && len(snap.Items) == 0
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 0, f.docs.Collection(task.Collection).SubscriberCount())
}
