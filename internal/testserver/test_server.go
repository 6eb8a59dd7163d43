// Package testserver runs the complete daemon stack in-process for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/app"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/mcp"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/transport"
	"github.com/stretchr/testify/require"
)

// GraceWindow is the sign-out grace window the test stack runs with.
const GraceWindow = 100 * time.Millisecond

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	App    *app.App
	Tokens *identity.Tokens
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	tokens, err := identity.NewTokens("test-secret", "tasksync", time.Hour)
	require.NoError(t, err)

	core := app.New(db, tokens, app.Options{Store: store.Options{
		GraceWindow:   GraceWindow,
		ElevatedRoles: []string{identity.RoleAdmin},
	}}, nil)
	require.NoError(t, core.Start(context.Background()))

	router := transport.NewServer(core, tokens, nil)
	transport.MountMCP(router, mcp.NewHTTPHandler(mcp.NewServer(mcp.Config{App: core})), tokens, core.Session)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		core.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, App: core, Tokens: tokens}
}

// Token issues a bearer token for id.
func (ts *TestServer) Token(t *testing.T, id string) string {
	t.Helper()
	token, err := ts.Tokens.Issue(identity.Principal{ID: id, Email: id + "@example.com"})
	require.NoError(t, err)
	return token
}

// Do sends an authenticated request; token may be empty.
func (ts *TestServer) Do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.Server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// SignIn signs id in over HTTP and waits until every store is live.
func (ts *TestServer) SignIn(t *testing.T, id string) string {
	t.Helper()
	token := ts.Token(t, id)
	resp := ts.Do(t, http.MethodPost, "/v1/session", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		return liveFor(ts.App.Tasks, id) && liveFor(ts.App.Projects, id) &&
			liveFor(ts.App.Categories, id) && liveFor(ts.App.Comments, id)
	}, 2*time.Second, 5*time.Millisecond)
	return token
}

func liveFor(s interface {
	State() store.State
	Principal() *identity.Principal
}, id string) bool {
	p := s.Principal()
	return p != nil && p.ID == id && s.State() == store.StateLive
}

// SetRole stores id's profile with role.
func (ts *TestServer) SetRole(t *testing.T, id, role string) {
	t.Helper()
	require.NoError(t, ts.App.Profiles.SetProfile(context.Background(), &identity.Profile{PrincipalID: id, Role: role}))
}

// MCPClient connects an MCP client to /mcp over streamable HTTP using token.
func (ts *TestServer) MCPClient(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()
	clientTransport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: token, base: http.DefaultTransport}},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
