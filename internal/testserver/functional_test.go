package testserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/domain/task"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/testserver"
	"github.com/stretchr/testify/require"
)

type taskList struct {
	Items   []task.Task `json:"items"`
	Version uint64      `json:"version"`
}

// listTasks fetches /v1/tasks without failing the test, for use inside require.Eventually.
func listTasks(ts *testserver.TestServer, token string) (taskList, bool) {
	var list taskList
	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+"/v1/tasks?sort=title", nil)
	if err != nil {
		return list, false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return list, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return list, false
	}
	return list, json.NewDecoder(resp.Body).Decode(&list) == nil
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	require.False(t, res.IsError, "tool error: %s", text.Text)
	return json.RawMessage(text.Text)
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t)

	resp := ts.Do(t, http.MethodPost, "/mcp", "", `{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.Do(t, http.MethodPost, "/mcp", ts.Token(t, "user-1"), `{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "nobody signed in yet")

	ts.SignIn(t, "user-1")
	resp = ts.Do(t, http.MethodGet, "/v1/tasks", ts.Token(t, "user-2"), "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFunctional_MCPWritesAreVisibleOverHTTP(t *testing.T) {
	ts := testserver.New(t)
	token := ts.SignIn(t, "user-1")
	session := ts.MCPClient(t, token)

	var who struct {
		Principal *identity.Principal `json:"principal"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "whoami", map[string]any{}), &who))
	require.Equal(t, "user-1", who.Principal.ID)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "create_task", map[string]any{
		"title":    "Ship it",
		"due_date": "2024-06-01T09:30:00+02:00",
	}), &created))

	var list taskList
	require.Eventually(t, func() bool {
		var ok bool
		list, ok = listTasks(ts, token)
		return ok && len(list.Items) == 1 && list.Items[0].CalendarEventID != ""
	}, 2*time.Second, 10*time.Millisecond)

	got := list.Items[0]
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC), *got.DueDate)
	require.Equal(t, time.UTC, got.CreatedAt.Location())

	event, err := ts.App.Calendar.GetEvent(context.Background(), "user-1", got.CalendarEventID)
	require.NoError(t, err)
	require.Equal(t, created.ID, event.TaskID)
}

func TestFunctional_VisibilityFollowsRole(t *testing.T) {
	ts := testserver.New(t)
	ts.SetRole(t, "boss", identity.RoleAdmin)

	owner := ts.SignIn(t, "user-1")
	resp := ts.Do(t, http.MethodPost, "/v1/tasks", owner, `{"title":"private"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Eventually(t, func() bool {
		list, ok := listTasks(ts, owner)
		return ok && len(list.Items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	other := ts.SignIn(t, "user-2")
	list, ok := listTasks(ts, other)
	require.True(t, ok)
	require.Empty(t, list.Items, "a member never sees another owner's tasks")

	admin := ts.SignIn(t, "boss")
	require.Eventually(t, func() bool {
		list, ok := listTasks(ts, admin)
		return ok && len(list.Items) == 1 && list.Items[0].OwnerID == "user-1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFunctional_SignOutKeepsDataForGraceWindow(t *testing.T) {
	ts := testserver.New(t)
	token := ts.SignIn(t, "user-1")

	resp := ts.Do(t, http.MethodPost, "/v1/tasks", token, `{"title":"keep me"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Eventually(t, func() bool {
		list, ok := listTasks(ts, token)
		return ok && len(list.Items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = ts.Do(t, http.MethodDelete, "/v1/session", token, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	snap, ok := ts.App.Tasks.Snapshot()
	require.True(t, ok)
	require.Len(t, snap.Items, 1, "no empty flash right after sign-out")

	require.Eventually(t, func() bool {
		snap, ok := ts.App.Tasks.Snapshot()
		return ok && len(snap.Items) == 0
	}, 2*time.Second, 10*time.Millisecond)

	resp = ts.Do(t, http.MethodGet, "/v1/tasks", token, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
