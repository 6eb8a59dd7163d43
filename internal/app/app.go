// Package app assembles the synchronization core: one identity session, the SQLite
// gateway, one store per entity type, the domain services and the live derived views.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/tasksync/internal/domain/activity"
	"github.com/rpggio/tasksync/internal/domain/category"
	"github.com/rpggio/tasksync/internal/domain/comment"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/views"
)

// Options configures an App.
type Options struct {
	Store   store.Options
	MemoTTL time.Duration
}

// App owns the stores and services for one local session.
type App struct {
	Session   *identity.Session
	Profiles  *sqlite.ProfileRepository
	Calendar  *sqlite.CalendarRepository
	Documents *sqlite.DocumentStore

	Tasks      *store.Store[task.Task]
	Projects   *store.Store[project.Project]
	Categories *store.Store[category.Category]
	Comments   *store.Store[comment.Comment]

	TaskService     *task.Service
	ProjectService  *project.Service
	CategoryService *category.Service
	CommentService  *comment.Service

	logger     *slog.Logger
	dashboards *views.Memo[dashboardKey, views.Summary]
	taskCounts *views.Joined[map[string]int]
	started    bool
}

type dashboardKey struct {
	version uint64
	minute  int64
	zone    string
}

// New wires an App over db. verifier checks sign-in tokens; it may be nil when only
// trusted Session.Set sign-ins are used.
func New(db *sqlite.DB, verifier identity.TokenVerifier, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &App{
		Session:   identity.NewSession(verifier, logger.With("component", "identity")),
		Profiles:  sqlite.NewProfileRepository(db),
		Calendar:  sqlite.NewCalendarRepository(db),
		Documents: sqlite.NewDocumentStore(db, logger.With("component", "gateway")),
		logger:    logger,
	}

	storeLogger := logger.With("component", "store")
	a.Tasks = store.New[task.Task](a.Documents.Collection(task.Collection), task.Codec{}, a.Session, a.Profiles, opts.Store, storeLogger)
	a.Projects = store.New[project.Project](a.Documents.Collection(project.Collection), project.Codec{}, a.Session, a.Profiles, opts.Store, storeLogger)
	a.Categories = store.New[category.Category](a.Documents.Collection(category.Collection), category.Codec{}, a.Session, a.Profiles, opts.Store, storeLogger)
	a.Comments = store.New[comment.Comment](a.Documents.Collection(comment.Collection), comment.Codec{}, a.Session, a.Profiles, opts.Store, storeLogger)

	a.TaskService = task.NewService(a.Tasks, a.Calendar, a.Session, logger)
	a.ProjectService = project.NewService(a.Projects, logger)
	a.CategoryService = category.NewService(a.Categories, logger)
	a.CommentService = comment.NewService(a.Comments, a.Session, logger)

	a.dashboards = views.NewMemo[dashboardKey, views.Summary](opts.MemoTTL, 256)
	return a
}

// Start begins following identity in every store.
func (a *App) Start(ctx context.Context) error {
	if a.started {
		return store.ErrAlreadyStarted
	}
	starters := []interface{ Start(context.Context) error }{a.Tasks, a.Projects, a.Categories, a.Comments}
	for _, s := range starters {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start store: %w", err)
		}
	}
	a.taskCounts = views.Join2(ctx, a.Projects, a.Tasks, views.TaskCountByProject, a.logger.With("component", "views"))
	a.started = true
	return nil
}

// Close stops every store and ends all observers. The database is left open.
func (a *App) Close() {
	if a.started {
		a.taskCounts.Close()
		for _, s := range []interface{ Stop() error }{a.Tasks, a.Projects, a.Categories, a.Comments} {
			if err := s.Stop(); err != nil && !errors.Is(err, store.ErrNotStarted) {
				a.logger.Warn("stop store", "error", err)
			}
		}
		a.started = false
	}
	a.dashboards.Close()
	a.Documents.Close()
	a.Session.Close()
}

// Dashboard summarizes the current task snapshot as of now. Results are memoized per
// snapshot version and minute. A broken task stream is reported alongside the summary
// of the last known tasks.
func (a *App) Dashboard(now time.Time) (views.Summary, error) {
	snap, _ := a.Tasks.Snapshot()
	key := dashboardKey{version: snap.Version, minute: now.Unix() / 60, zone: now.Location().String()}
	summary := a.dashboards.Get(key, func() views.Summary {
		return views.Dashboard(snap.Items, now)
	})
	return summary, snap.Err
}

// TaskCounts returns the live task count per project.
func (a *App) TaskCounts() (map[string]int, error) {
	if a.taskCounts == nil {
		return map[string]int{}, nil
	}
	latest, ok := a.taskCounts.Latest()
	if !ok {
		return map[string]int{}, nil
	}
	return latest.Value, latest.Err
}

// Activity lists recent changes across tasks, projects and comments. The first broken
// stream's error is returned with the feed built from the last known snapshots.
func (a *App) Activity(opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	tasks, _ := a.Tasks.Snapshot()
	projects, _ := a.Projects.Snapshot()
	comments, _ := a.Comments.Snapshot()
	feed := activity.Feed(activity.Sources{
		Tasks:    tasks.Items,
		Projects: projects.Items,
		Comments: comments.Items,
	}, opts)
	return feed, errors.Join(tasks.Err, projects.Err, comments.Err)
}
