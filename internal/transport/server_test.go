package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rpggio/tasksync/internal/app"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	core   *app.App
	tokens *identity.Tokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	tokens, err := identity.NewTokens("test-secret", "tasksync", time.Hour)
	require.NoError(t, err)

	core := app.New(db, tokens, app.Options{Store: store.Options{
		GraceWindow:   50 * time.Millisecond,
		ElevatedRoles: []string{identity.RoleAdmin},
	}}, nil)
	require.NoError(t, core.Start(context.Background()))

	server := httptest.NewServer(NewServer(core, tokens, nil))
	t.Cleanup(func() {
		server.Close()
		core.Close()
		db.Close()
	})
	return &testEnv{server: server, core: core, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, id string) string {
	t.Helper()
	token, err := e.tokens.Issue(identity.Principal{ID: id, Email: id + "@example.com"})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// signIn signs id in and waits for the task store to go live.
func (e *testEnv) signIn(t *testing.T, id string) string {
	t.Helper()
	token := e.token(t, id)
	resp := e.do(t, http.MethodPost, "/v1/session", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		return e.core.Tasks.State() == store.StateLive && e.core.Projects.State() == store.StateLive &&
			e.core.Categories.State() == store.StateLive && e.core.Comments.State() == store.StateLive
	}, 2*time.Second, 5*time.Millisecond)
	return token
}

// getJSON fetches path without failing the test, for use inside require.Eventually.
func (e *testEnv) getJSON(path, token string, v any) bool {
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(v) == nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHTTPServer_Health(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_Session(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/v1/session", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, decode[sessionResponse](t, resp).Principal)

	resp = env.do(t, http.MethodPost, "/v1/session", "not-a-token", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := env.signIn(t, "user-1")
	resp = env.do(t, http.MethodGet, "/v1/session", "", "")
	session := decode[sessionResponse](t, resp)
	require.Equal(t, "user-1", session.Principal.ID)
	require.Equal(t, "live", session.State)

	resp = env.do(t, http.MethodDelete, "/v1/session", token, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	p, err := env.core.Session.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestHTTPServer_RequiresTokenForSignedInPrincipal(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/v1/tasks", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/v1/tasks", env.token(t, "user-1"), "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "no session yet")

	env.signIn(t, "user-1")
	resp = env.do(t, http.MethodGet, "/v1/tasks", env.token(t, "user-2"), "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHTTPServer_CreateAndListTasks(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "user-1")

	resp := env.do(t, http.MethodGet, "/v1/tasks", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	empty := decode[listResponse[task.Task]](t, resp)
	require.NotNil(t, empty.Items)
	require.Empty(t, empty.Items)

	resp = env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"Write report","importance":"high"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[mutationResponse](t, resp)
	require.NotEmpty(t, created.ID)
	require.Nil(t, created.SideEffect)

	require.Eventually(t, func() bool {
		_, ok := env.core.Tasks.GetByID(created.ID)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	resp = env.do(t, http.MethodGet, "/v1/tasks?importance=high&sort=title", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[listResponse[task.Task]](t, resp)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Write report", list.Items[0].Title)
	require.Equal(t, "user-1", list.Items[0].OwnerID)

	resp = env.do(t, http.MethodGet, "/v1/tasks?sort=bogus", token, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "user-1")

	resp := env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "VALIDATION_ERROR", decode[errorResponse](t, resp).Error.Code)

	resp = env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"x","unknown":true}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/v1/tasks/missing", token, `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	problem := decode[errorResponse](t, resp).Error
	require.Equal(t, "NOT_FOUND", problem.Code)
	require.NotEmpty(t, problem.Message)

	resp = env.do(t, http.MethodDelete, "/v1/projects/missing", token, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_TaskCountsUseTaskProjectID(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "user-1")

	resp := env.do(t, http.MethodPost, "/v1/projects", token, `{"name":"Launch"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := decode[mutationResponse](t, resp).ID

	for _, title := range []string{"a", "b"} {
		resp = env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"`+title+`","projectId":"`+projectID+`"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp = env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"loose"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Eventually(t, func() bool {
		var counts map[string]int
		return env.getJSON("/v1/projects/task-counts", token, &counts) &&
			counts[projectID] == 2 && len(counts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = env.do(t, http.MethodGet, "/v1/dashboard", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_Activity(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "user-1")

	resp := env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"Write report"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := decode[mutationResponse](t, resp).ID
	require.Eventually(t, func() bool {
		_, ok := env.core.Tasks.GetByID(taskID)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	resp = env.do(t, http.MethodPost, "/v1/comments", token, `{"taskId":"`+taskID+`","text":"first"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	type feed struct {
		Items []struct {
			Type     string `json:"type"`
			EntityID string `json:"entityId"`
		} `json:"items"`
	}
	var got feed
	require.Eventually(t, func() bool {
		return env.getJSON("/v1/activity", token, &got) && len(got.Items) == 2
	}, 2*time.Second, 10*time.Millisecond)

	var kinds []string
	for _, item := range got.Items {
		kinds = append(kinds, item.Type)
	}
	require.ElementsMatch(t, []string{"task_created", "comment_added"}, kinds)

	require.True(t, env.getJSON("/v1/activity?type=task_created", token, &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, taskID, got.Items[0].EntityID)

	resp = env.do(t, http.MethodGet, "/v1/activity?type=bogus", token, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/v1/activity?limit=-1", token, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/v1/activity?since=yesterday", token, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Stream(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn(t, "user-1")

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/tasks/stream"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	ws, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer ws.Close()

	var first StreamMessage[task.Task]
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, ws.ReadJSON(&first))
	require.Empty(t, first.Items)
	require.Nil(t, first.Error)

	created := env.do(t, http.MethodPost, "/v1/tasks", token, `{"title":"pushed"}`)
	require.Equal(t, http.StatusCreated, created.StatusCode)

	var next StreamMessage[task.Task]
	require.NoError(t, ws.ReadJSON(&next))
	require.Len(t, next.Items, 1)
	require.Equal(t, "pushed", next.Items[0].Title)
	require.Greater(t, next.Version, first.Version)
}
