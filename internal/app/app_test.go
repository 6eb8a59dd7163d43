package app

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/tasksync/internal/domain/activity"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	a := New(db, nil, Options{Store: store.Options{GraceWindow: 50 * time.Millisecond}, MemoTTL: time.Minute}, nil)
	t.Cleanup(func() {
		a.Close()
		db.Close()
	})
	return a
}

func signIn(t *testing.T, a *App, id string) {
	t.Helper()
	a.Session.Set(&identity.Principal{ID: id})
	require.Eventually(t, func() bool {
		return a.Tasks.State() == store.StateLive && a.Projects.State() == store.StateLive &&
			a.Comments.State() == store.StateLive
	}, 2*time.Second, 5*time.Millisecond)
}

func TestApp_StartTwice(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Start(context.Background()))
	require.ErrorIs(t, a.Start(context.Background()), store.ErrAlreadyStarted)
}

func TestApp_TaskCountsBeforeStart(t *testing.T) {
	a := newTestApp(t)
	counts, err := a.TaskCounts()
	require.NoError(t, err)
	require.Empty(t, counts)
}

func TestApp_DashboardMemoizedPerVersionAndMinute(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Start(context.Background()))
	signIn(t, a, "user-1")

	ctx := context.Background()
	_, err := a.TaskService.Create(ctx, task.CreateRequest{Title: "one"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, ok := a.Tasks.Snapshot()
		return ok && len(snap.Items) == 1
	}, 2*time.Second, 5*time.Millisecond)

	now := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	first, err := a.Dashboard(now)
	require.NoError(t, err)
	require.Equal(t, 1, first.Total)

	_, err = a.Dashboard(now.Add(30 * time.Second))
	require.NoError(t, err)
	require.Equal(t, 1, a.dashboards.Len(), "same version and minute reuse the summary")

	_, err = a.Dashboard(now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, a.dashboards.Len())

	_, err = a.Dashboard(now.In(time.FixedZone("UTC+9", 9*3600)))
	require.NoError(t, err)
	require.Equal(t, 3, a.dashboards.Len(), "the zone is part of the key")
}

func TestApp_TaskCountsAndActivity(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Start(context.Background()))
	signIn(t, a, "user-1")

	ctx := context.Background()
	projectID, err := a.ProjectService.Create(ctx, project.CreateRequest{Name: "Launch"})
	require.NoError(t, err)
	_, err = a.TaskService.Create(ctx, task.CreateRequest{Title: "in project", ProjectID: projectID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		counts, err := a.TaskCounts()
		return err == nil && counts[projectID] == 1
	}, 2*time.Second, 5*time.Millisecond)

	feed, err := a.Activity(activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, feed, 2)

	kind := activity.TypeProjectCreated
	feed, err = a.Activity(activity.ListActivityOptions{ActivityType: &kind})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, projectID, feed[0].EntityID)
}
