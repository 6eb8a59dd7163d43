package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
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

type tools struct {
	app    *app.App
	now    func() time.Time
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *tools) {
	// Identity
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "whoami", Description: "Show the signed-in principal and the snapshot state"}, t.whoami)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "sign_in", Description: "Sign in with a bearer token"}, t.signIn)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "sign_out", Description: "Sign out; snapshots clear after the grace window"}, t.signOut)

	// Tasks
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_tasks", Description: "List visible tasks, filtered and sorted"}, t.listTasks)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "task_board", Description: "Group visible tasks into one column per status"}, t.taskBoard)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_task", Description: "Create a task and its calendar event when it has a due date"}, t.createTask)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_task", Description: "Change the given fields of a task"}, t.updateTask)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_task", Description: "Delete a task and its calendar event"}, t.deleteTask)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "dashboard", Description: "Summarize visible tasks by status, importance and due date"}, t.dashboard)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "recent_activity", Description: "Latest change of each visible task, project and comment, newest first"}, t.recentActivity)

	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_projects", Description: "List visible projects"}, t.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_project", Description: "Create a project"}, t.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_project", Description: "Change the given fields of a project"}, t.updateProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_project", Description: "Delete a project; its tasks keep their project_id"}, t.deleteProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "project_task_counts", Description: "Count tasks per project from each task's project_id"}, t.projectTaskCounts)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "project_progress", Description: "Done and total task counts per project"}, t.projectProgress)

	// Categories
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_categories", Description: "List visible categories"}, t.listCategories)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_category", Description: "Create a category"}, t.createCategory)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_category", Description: "Rename or recolor a category"}, t.updateCategory)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_category", Description: "Delete a category"}, t.deleteCategory)

	// Comments
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_comments", Description: "Comment threads of one task, oldest first"}, t.listComments)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "add_comment", Description: "Comment on a task or reply to a top-level comment"}, t.addComment)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "edit_comment", Description: "Replace a comment's text"}, t.editComment)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_comment", Description: "Delete a comment"}, t.deleteComment)
}

// Result helpers

type mutationOutput struct {
	ID         string      `json:"id,omitempty"`
	SideEffect *sideEffect `json:"side_effect,omitempty"`
}

type sideEffect struct {
	Step    string `json:"step"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorOutput struct {
	Error *APIError `json:"error"`
}

type listOutput[T any] struct {
	Items   []T    `json:"items"`
	Version uint64 `json:"version"`
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) (*sdkmcp.CallToolResult, any, error) {
	data, marshalErr := json.Marshal(errorOutput{Error: MapError(err)})
	if marshalErr != nil {
		return nil, nil, marshalErr
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// mutationResult reports a completed primary write. A side-effect failure is returned
// next to the id, not as a tool error.
func mutationResult(id string, err error) (*sdkmcp.CallToolResult, any, error) {
	var side *task.SideEffectError
	switch {
	case err == nil:
		return jsonResult(mutationOutput{ID: id})
	case errors.As(err, &side):
		return jsonResult(mutationOutput{ID: id, SideEffect: &sideEffect{
			Step:    side.Step,
			Code:    "SIDE_EFFECT_FAILED",
			Message: side.Message(),
		}})
	default:
		return errorResult(err)
	}
}

type snapshotSource[T any] interface {
	Snapshot() (store.Update[T], bool)
	State() store.State
}

// liveSnapshot returns the current snapshot, or an error when it can't be trusted as
// complete. A broken stream reports its error; a store still loading reports ErrNotReady.
func liveSnapshot[T any](src snapshotSource[T]) (store.Update[T], error) {
	u, ok := src.Snapshot()
	if u.Err != nil {
		return u, u.Err
	}
	if !ok || src.State() != store.StateLive {
		return u, ErrNotReady
	}
	return u, nil
}

func parseDate(op, field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := timestamp.Normalize(*value)
	if err != nil {
		return nil, apperr.Validation(op, "%s: %v", field, err)
	}
	return &t, nil
}

func statuses(op string, values []string) ([]entity.Status, error) {
	out := make([]entity.Status, 0, len(values))
	for _, v := range values {
		s := entity.Status(v)
		if !s.Valid() {
			return nil, apperr.Validation(op, "unknown status %q", v)
		}
		out = append(out, s)
	}
	return out, nil
}

func statusPtr(op string, value *string) (*entity.Status, error) {
	if value == nil {
		return nil, nil
	}
	s := entity.Status(*value)
	if !s.Valid() {
		return nil, apperr.Validation(op, "unknown status %q", *value)
	}
	return &s, nil
}

// Identity

type emptyInput struct{}

type whoamiOutput struct {
	Principal *identity.Principal `json:"principal"`
	State     string              `json:"state"`
}

func (t *tools) whoami(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.app.Session.Current(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(whoamiOutput{Principal: p, State: t.app.Tasks.State().String()})
}

type signInInput struct {
	Token string `json:"token" jsonschema:"bearer token issued for the principal"`
}

func (t *tools) signIn(ctx context.Context, _ *sdkmcp.CallToolRequest, in signInInput) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.app.Session.SignIn(ctx, in.Token)
	if err != nil {
		return errorResult(apperr.New(apperr.ErrUnauthenticated, "session.signIn", err))
	}
	t.logger.Info("signed in over mcp", "principal_id", p.ID)
	return jsonResult(whoamiOutput{Principal: p, State: t.app.Tasks.State().String()})
}

func (t *tools) signOut(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
	t.app.Session.SignOut()
	return jsonResult(whoamiOutput{State: t.app.Tasks.State().String()})
}

// Tasks

type taskFilterInput struct {
	Status     []string `json:"status,omitempty" jsonschema:"keep tasks with any of these statuses"`
	Importance []string `json:"importance,omitempty" jsonschema:"keep tasks with any of these importances"`
	ProjectID  *string  `json:"project_id,omitempty" jsonschema:"keep tasks of this project; empty string selects tasks without a project"`
	CategoryID string   `json:"category_id,omitempty" jsonschema:"keep tasks of this category"`
	Member     string   `json:"member,omitempty" jsonschema:"keep tasks listing this member"`
	Search     string   `json:"search,omitempty" jsonschema:"case-insensitive text in title or description"`
}

func (in taskFilterInput) filter(op string) (views.TaskFilter, error) {
	st, err := statuses(op, in.Status)
	if err != nil {
		return views.TaskFilter{}, err
	}
	f := views.TaskFilter{
		Statuses:   st,
		ProjectID:  in.ProjectID,
		CategoryID: in.CategoryID,
		Member:     in.Member,
		Search:     in.Search,
	}
	for _, v := range in.Importance {
		i := task.Importance(v)
		if !i.Valid() {
			return views.TaskFilter{}, apperr.Validation(op, "unknown importance %q", v)
		}
		f.Importances = append(f.Importances, i)
	}
	return f, nil
}

type listTasksInput struct {
	Status     []string `json:"status,omitempty"`
	Importance []string `json:"importance,omitempty"`
	ProjectID  *string  `json:"project_id,omitempty"`
	CategoryID string   `json:"category_id,omitempty"`
	Member     string   `json:"member,omitempty"`
	Search     string   `json:"search,omitempty"`
	Sort       string   `json:"sort,omitempty" jsonschema:"title, dueDate, importance, status, createdAt or updatedAt"`
	Desc       bool     `json:"desc,omitempty" jsonschema:"sort descending"`
}

func (in listTasksInput) filter(op string) (views.TaskFilter, error) {
	return taskFilterInput{
		Status:     in.Status,
		Importance: in.Importance,
		ProjectID:  in.ProjectID,
		CategoryID: in.CategoryID,
		Member:     in.Member,
		Search:     in.Search,
	}.filter(op)
}

func (t *tools) listTasks(_ context.Context, _ *sdkmcp.CallToolRequest, in listTasksInput) (*sdkmcp.CallToolResult, any, error) {
	const op = "tasks.list"
	u, err := liveSnapshot[task.Task](t.app.Tasks)
	if err != nil {
		return errorResult(err)
	}
	f, err := in.filter(op)
	if err != nil {
		return errorResult(err)
	}
	key := views.SortByCreatedAt
	if in.Sort != "" {
		key = views.SortKey(in.Sort)
		if !key.Valid() {
			return errorResult(apperr.Validation(op, "unknown sort key %q", in.Sort))
		}
	}
	items := views.SortTasks(views.FilterTasks(u.Items, f), key, in.Desc)
	return jsonResult(listOutput[task.Task]{Items: items, Version: u.Version})
}

func (t *tools) taskBoard(_ context.Context, _ *sdkmcp.CallToolRequest, in taskFilterInput) (*sdkmcp.CallToolResult, any, error) {
	u, err := liveSnapshot[task.Task](t.app.Tasks)
	if err != nil {
		return errorResult(err)
	}
	f, err := in.filter("tasks.board")
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(views.Board(views.FilterTasks(u.Items, f)))
}

type createTaskInput struct {
	Title       string   `json:"title" jsonschema:"task title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty" jsonschema:"not-started, in-progress or done"`
	Importance  string   `json:"importance,omitempty" jsonschema:"low, medium or high"`
	ProjectID   string   `json:"project_id,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	DueDate     *string  `json:"due_date,omitempty" jsonschema:"RFC 3339 instant or YYYY-MM-DD"`
	Members     []string `json:"members,omitempty"`
}

func (t *tools) createTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in createTaskInput) (*sdkmcp.CallToolResult, any, error) {
	due, err := parseDate(task.Collection+".create", "due_date", in.DueDate)
	if err != nil {
		return errorResult(err)
	}
	id, err := t.app.TaskService.CreateWithCalendar(ctx, task.CreateRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.Status(in.Status),
		Importance:  task.Importance(in.Importance),
		ProjectID:   in.ProjectID,
		CategoryID:  in.CategoryID,
		DueDate:     due,
		Members:     in.Members,
	})
	return mutationResult(id, err)
}

type updateTaskInput struct {
	ID           string   `json:"id" jsonschema:"task id"`
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Importance   *string  `json:"importance,omitempty"`
	ProjectID    *string  `json:"project_id,omitempty"`
	CategoryID   *string  `json:"category_id,omitempty"`
	DueDate      *string  `json:"due_date,omitempty"`
	ClearDueDate bool     `json:"clear_due_date,omitempty" jsonschema:"remove the due date"`
	Members      []string `json:"members,omitempty" jsonschema:"replaces the member list"`
}

func (t *tools) updateTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateTaskInput) (*sdkmcp.CallToolResult, any, error) {
	const op = task.Collection + ".update"
	due, err := parseDate(op, "due_date", in.DueDate)
	if err != nil {
		return errorResult(err)
	}
	status, err := statusPtr(op, in.Status)
	if err != nil {
		return errorResult(err)
	}
	req := task.UpdateRequest{
		Title:        in.Title,
		Description:  in.Description,
		Status:       status,
		ProjectID:    in.ProjectID,
		CategoryID:   in.CategoryID,
		DueDate:      due,
		ClearDueDate: in.ClearDueDate,
		Members:      in.Members,
	}
	if in.Importance != nil {
		importance := task.Importance(*in.Importance)
		req.Importance = &importance
	}
	return mutationResult(in.ID, t.app.TaskService.UpdateWithCalendar(ctx, in.ID, req))
}

type idInput struct {
	ID string `json:"id"`
}

func (t *tools) deleteTask(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.TaskService.DeleteWithCalendar(ctx, in.ID))
}

type dashboardInput struct {
	TZ string `json:"tz,omitempty" jsonschema:"IANA time zone deciding what counts as today; defaults to UTC"`
}

func (t *tools) dashboard(_ context.Context, _ *sdkmcp.CallToolRequest, in dashboardInput) (*sdkmcp.CallToolResult, any, error) {
	loc := time.UTC
	if in.TZ != "" {
		l, err := time.LoadLocation(in.TZ)
		if err != nil {
			return errorResult(apperr.Validation("dashboard", "unknown time zone %q", in.TZ))
		}
		loc = l
	}
	if _, err := liveSnapshot[task.Task](t.app.Tasks); err != nil {
		return errorResult(err)
	}
	summary, err := t.app.Dashboard(t.now().In(loc))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(summary)
}

type recentActivityInput struct {
	Since string `json:"since,omitempty" jsonschema:"only changes at or after this time"`
	Owner string `json:"owner,omitempty" jsonschema:"only entities owned by this principal id"`
	Type  string `json:"type,omitempty" jsonschema:"only this activity type, e.g. task_completed"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum entries; defaults to 20"`
}

func (t *tools) recentActivity(_ context.Context, _ *sdkmcp.CallToolRequest, in recentActivityInput) (*sdkmcp.CallToolResult, any, error) {
	since, err := parseDate("activity", "since", &in.Since)
	if err != nil {
		return errorResult(err)
	}
	opts := activity.ListActivityOptions{Since: since, OwnerID: in.Owner, Limit: in.Limit}
	if in.Type != "" {
		kind, err := activity.ParseType(in.Type)
		if err != nil {
			return errorResult(err)
		}
		opts.ActivityType = &kind
	}
	if err := allLive(t.app); err != nil {
		return errorResult(err)
	}
	feed, err := t.app.Activity(opts)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"items": feed})
}

func allLive(a *app.App) error {
	if _, err := liveSnapshot[task.Task](a.Tasks); err != nil {
		return err
	}
	if _, err := liveSnapshot[project.Project](a.Projects); err != nil {
		return err
	}
	_, err := liveSnapshot[comment.Comment](a.Comments)
	return err
}

// Projects

type listProjectsInput struct {
	Status []string `json:"status,omitempty"`
	Member string   `json:"member,omitempty"`
	Search string   `json:"search,omitempty"`
}

func (t *tools) listProjects(_ context.Context, _ *sdkmcp.CallToolRequest, in listProjectsInput) (*sdkmcp.CallToolResult, any, error) {
	u, err := liveSnapshot[project.Project](t.app.Projects)
	if err != nil {
		return errorResult(err)
	}
	st, err := statuses("projects.list", in.Status)
	if err != nil {
		return errorResult(err)
	}
	items := views.FilterProjects(u.Items, views.ProjectFilter{Statuses: st, Member: in.Member, Search: in.Search})
	return jsonResult(listOutput[project.Project]{Items: items, Version: u.Version})
}

type createProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Members     []string `json:"members,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
}

func (t *tools) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in createProjectInput) (*sdkmcp.CallToolResult, any, error) {
	due, err := parseDate(project.Collection+".create", "due_date", in.DueDate)
	if err != nil {
		return errorResult(err)
	}
	id, err := t.app.ProjectService.Create(ctx, project.CreateRequest{
		Name:        in.Name,
		Description: in.Description,
		Status:      entity.Status(in.Status),
		Members:     in.Members,
		DueDate:     due,
	})
	return mutationResult(id, err)
}

type updateProjectInput struct {
	ID           string   `json:"id"`
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Members      []string `json:"members,omitempty"`
	DueDate      *string  `json:"due_date,omitempty"`
	ClearDueDate bool     `json:"clear_due_date,omitempty"`
}

func (t *tools) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateProjectInput) (*sdkmcp.CallToolResult, any, error) {
	const op = project.Collection + ".update"
	due, err := parseDate(op, "due_date", in.DueDate)
	if err != nil {
		return errorResult(err)
	}
	status, err := statusPtr(op, in.Status)
	if err != nil {
		return errorResult(err)
	}
	return mutationResult(in.ID, t.app.ProjectService.Update(ctx, in.ID, project.UpdateRequest{
		Name:         in.Name,
		Description:  in.Description,
		Status:       status,
		Members:      in.Members,
		DueDate:      due,
		ClearDueDate: in.ClearDueDate,
	}))
}

func (t *tools) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.ProjectService.Delete(ctx, in.ID))
}

func (t *tools) projectTaskCounts(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
	if _, err := liveSnapshot[project.Project](t.app.Projects); err != nil {
		return errorResult(err)
	}
	if _, err := liveSnapshot[task.Task](t.app.Tasks); err != nil {
		return errorResult(err)
	}
	counts, err := t.app.TaskCounts()
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(counts)
}

func (t *tools) projectProgress(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
	projects, err := liveSnapshot[project.Project](t.app.Projects)
	if err != nil {
		return errorResult(err)
	}
	tasks, err := liveSnapshot[task.Task](t.app.Tasks)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(views.ProjectProgress(projects.Items, tasks.Items))
}

// Categories

func (t *tools) listCategories(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, any, error) {
	u, err := liveSnapshot[category.Category](t.app.Categories)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(listOutput[category.Category]{Items: u.Items, Version: u.Version})
}

type createCategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty" jsonschema:"hex color such as #ff8800"`
}

func (t *tools) createCategory(ctx context.Context, _ *sdkmcp.CallToolRequest, in createCategoryInput) (*sdkmcp.CallToolResult, any, error) {
	id, err := t.app.CategoryService.Create(ctx, category.CreateRequest{Name: in.Name, Color: in.Color})
	return mutationResult(id, err)
}

type updateCategoryInput struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (t *tools) updateCategory(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateCategoryInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.CategoryService.Update(ctx, in.ID, category.UpdateRequest{Name: in.Name, Color: in.Color}))
}

func (t *tools) deleteCategory(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.CategoryService.Delete(ctx, in.ID))
}

// Comments

type listCommentsInput struct {
	TaskID string `json:"task_id"`
}

func (t *tools) listComments(_ context.Context, _ *sdkmcp.CallToolRequest, in listCommentsInput) (*sdkmcp.CallToolResult, any, error) {
	u, err := liveSnapshot[comment.Comment](t.app.Comments)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(views.CommentThreads(u.Items, in.TaskID))
}

type addCommentInput struct {
	TaskID   string  `json:"task_id"`
	ParentID *string `json:"parent_id,omitempty" jsonschema:"top-level comment being answered"`
	Text     string  `json:"text"`
}

func (t *tools) addComment(ctx context.Context, _ *sdkmcp.CallToolRequest, in addCommentInput) (*sdkmcp.CallToolResult, any, error) {
	id, err := t.app.CommentService.Add(ctx, comment.AddRequest{TaskID: in.TaskID, ParentID: in.ParentID, Text: in.Text})
	return mutationResult(id, err)
}

type editCommentInput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (t *tools) editComment(ctx context.Context, _ *sdkmcp.CallToolRequest, in editCommentInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.CommentService.Edit(ctx, in.ID, in.Text))
}

func (t *tools) deleteComment(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, any, error) {
	return mutationResult(in.ID, t.app.CommentService.Delete(ctx, in.ID))
}
