package transport

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/tasksync/internal/app"
	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/activity"
	"github.com/rpggio/tasksync/internal/domain/category"
	"github.com/rpggio/tasksync/internal/domain/comment"
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/timestamp"
	"github.com/rpggio/tasksync/internal/views"
)

// Server wires HTTP handlers over the synchronization core.
type Server struct {
	core   *app.App
	logger *slog.Logger
	now    func() time.Time
}

// NewServer creates the HTTP router. Every /v1 route except session sign-in and lookup
// requires a bearer token for the signed-in principal.
func NewServer(core *app.App, verifier identity.TokenVerifier, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{core: core, logger: logger, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", srv.handleSignIn)
		r.Get("/session", srv.handleGetSession)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(verifier, core.Session))

			r.Delete("/session", srv.handleSignOut)
			r.Get("/dashboard", srv.handleDashboard)
			r.Get("/activity", srv.handleActivity)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", srv.handleListTasks)
				r.Post("/", srv.handleCreateTask)
				r.Get("/board", srv.handleBoard)
				r.Get("/calendar", srv.handleCalendar)
				r.Get("/stream", streamHandler[task.Task](core.Tasks, logger))
				r.Patch("/{id}", srv.handleUpdateTask)
				r.Delete("/{id}", srv.handleDeleteTask)
				r.Get("/{id}/comments", srv.handleCommentThreads)
			})
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", srv.handleListProjects)
				r.Post("/", srv.handleCreateProject)
				r.Get("/task-counts", srv.handleTaskCounts)
				r.Get("/progress", srv.handleProjectProgress)
				r.Get("/stream", streamHandler[project.Project](core.Projects, logger))
				r.Patch("/{id}", srv.handleUpdateProject)
				r.Delete("/{id}", srv.handleDeleteProject)
			})
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", listHandler[category.Category](core.Categories))
				r.Post("/", srv.handleCreateCategory)
				r.Get("/stream", streamHandler[category.Category](core.Categories, logger))
				r.Patch("/{id}", srv.handleUpdateCategory)
				r.Delete("/{id}", srv.handleDeleteCategory)
			})
			r.Route("/comments", func(r chi.Router) {
				r.Get("/", listHandler[comment.Comment](core.Comments))
				r.Post("/", srv.handleAddComment)
				r.Get("/stream", streamHandler[comment.Comment](core.Comments, logger))
				r.Patch("/{id}", srv.handleEditComment)
				r.Delete("/{id}", srv.handleDeleteComment)
			})
		})
	})

	return r
}

// MountMCP serves an MCP handler at /mcp behind the same bearer-token check as /v1.
func MountMCP(r chi.Router, handler http.Handler, verifier identity.TokenVerifier, session identity.Signal) {
	authed := r.With(AuthMiddleware(verifier, session))
	authed.Handle("/mcp", handler)
	authed.Handle("/mcp/*", handler)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type sessionResponse struct {
	Principal *identity.Principal `json:"principal"`
	State     string              `json:"state"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeProblem(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
		return
	}
	p, err := s.core.Session.SignIn(r.Context(), token)
	if err != nil {
		writeProblem(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid bearer token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Principal: p, State: s.core.Tasks.State().String()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	p, _ := s.core.Session.Current(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{Principal: p, State: s.core.Tasks.State().String()})
}

func (s *Server) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	s.core.Session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

type listResponse[T any] struct {
	Items   []T    `json:"items"`
	Version uint64 `json:"version"`
}

type snapshotSource[T any] interface {
	Snapshot() (store.Update[T], bool)
	State() store.State
}

// snapshot writes the failure response and returns false when no trustworthy snapshot
// exists. An empty list is only ever served for a live, empty collection.
func snapshot[T any](w http.ResponseWriter, src snapshotSource[T]) (store.Update[T], bool) {
	u, ok := src.Snapshot()
	if u.Err != nil {
		writeError(w, u.Err)
		return u, false
	}
	if !ok || src.State() != store.StateLive {
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusServiceUnavailable, "NOT_READY", "the live snapshot is not available yet")
		return u, false
	}
	return u, true
}

func listHandler[T any](src snapshotSource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		u, ok := snapshot(w, src)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, listResponse[T]{Items: u.Items, Version: u.Version})
	}
}

// Tasks

func taskFilter(r *http.Request) views.TaskFilter {
	q := r.URL.Query()
	f := views.TaskFilter{
		CategoryID: q.Get("category"),
		Member:     q.Get("member"),
		Search:     q.Get("search"),
	}
	for _, v := range splitParam(q["status"]) {
		f.Statuses = append(f.Statuses, entity.Status(v))
	}
	for _, v := range splitParam(q["importance"]) {
		f.Importances = append(f.Importances, task.Importance(v))
	}
	if q.Has("project") {
		projectID := q.Get("project")
		f.ProjectID = &projectID
	}
	return f
}

func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := snapshot[task.Task](w, s.core.Tasks)
	if !ok {
		return
	}
	key := views.SortByCreatedAt
	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		key = views.SortKey(sortBy)
		if !key.Valid() {
			writeProblem(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown sort key "+sortBy)
			return
		}
	}
	desc, _ := strconv.ParseBool(r.URL.Query().Get("desc"))
	items := views.SortTasks(views.FilterTasks(u.Items, taskFilter(r)), key, desc)
	writeJSON(w, http.StatusOK, listResponse[task.Task]{Items: items, Version: u.Version})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	u, ok := snapshot[task.Task](w, s.core.Tasks)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.Board(views.FilterTasks(u.Items, taskFilter(r))))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown time zone "+tz)
			return
		}
		loc = l
	}
	u, ok := snapshot[task.Task](w, s.core.Tasks)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.CalendarDays(views.FilterTasks(u.Items, taskFilter(r)), loc))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req task.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.core.TaskService.CreateWithCalendar(r.Context(), req)
	writeMutation(w, http.StatusCreated, id, err)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req task.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.TaskService.UpdateWithCalendar(r.Context(), id, req))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.TaskService.DeleteWithCalendar(r.Context(), id))
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	if _, ok := snapshot[task.Task](w, s.core.Tasks); !ok {
		return
	}
	summary, err := s.core.Dashboard(s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{OwnerID: q.Get("owner")}
	if v := q.Get("since"); v != "" {
		since, err := timestamp.Normalize(v)
		if err != nil {
			writeError(w, apperr.Validation("activity", "since: %v", err))
			return
		}
		opts.Since = &since
	}
	if v := q.Get("type"); v != "" {
		kind, err := activity.ParseType(v)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.ActivityType = &kind
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, apperr.Validation("activity", "limit must be a non-negative integer"))
			return
		}
		opts.Limit = n
	}
	if _, ok := snapshot[task.Task](w, s.core.Tasks); !ok {
		return
	}
	if _, ok := snapshot[project.Project](w, s.core.Projects); !ok {
		return
	}
	if _, ok := snapshot[comment.Comment](w, s.core.Comments); !ok {
		return
	}
	feed, err := s.core.Activity(opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": feed})
}

// Projects

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	u, ok := snapshot[project.Project](w, s.core.Projects)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := views.ProjectFilter{Member: q.Get("member"), Search: q.Get("search")}
	for _, v := range splitParam(q["status"]) {
		f.Statuses = append(f.Statuses, entity.Status(v))
	}
	writeJSON(w, http.StatusOK, listResponse[project.Project]{Items: views.FilterProjects(u.Items, f), Version: u.Version})
}

func (s *Server) handleTaskCounts(w http.ResponseWriter, _ *http.Request) {
	if _, ok := snapshot[project.Project](w, s.core.Projects); !ok {
		return
	}
	if _, ok := snapshot[task.Task](w, s.core.Tasks); !ok {
		return
	}
	counts, err := s.core.TaskCounts()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleProjectProgress(w http.ResponseWriter, _ *http.Request) {
	projects, ok := snapshot[project.Project](w, s.core.Projects)
	if !ok {
		return
	}
	tasks, ok := snapshot[task.Task](w, s.core.Tasks)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.ProjectProgress(projects.Items, tasks.Items))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.core.ProjectService.Create(r.Context(), req)
	writeMutation(w, http.StatusCreated, id, err)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.ProjectService.Update(r.Context(), id, req))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.ProjectService.Delete(r.Context(), id))
}

// Categories

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req category.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.core.CategoryService.Create(r.Context(), req)
	writeMutation(w, http.StatusCreated, id, err)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req category.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.CategoryService.Update(r.Context(), id, req))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.CategoryService.Delete(r.Context(), id))
}

// Comments

func (s *Server) handleCommentThreads(w http.ResponseWriter, r *http.Request) {
	u, ok := snapshot[comment.Comment](w, s.core.Comments)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.CommentThreads(u.Items, chi.URLParam(r, "id")))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req comment.AddRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.core.CommentService.Add(r.Context(), req)
	writeMutation(w, http.StatusCreated, id, err)
}

type editCommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	var req editCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.CommentService.Edit(r.Context(), id, req.Text))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeMutation(w, http.StatusOK, id, s.core.CommentService.Delete(r.Context(), id))
}
