package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tasksync mirrors one signed-in user's tasks, projects, categories and comments.

Core concepts:
- Principal: the signed-in identity. Nothing is readable or writable while signed out.
- Snapshot: the complete, live list of one entity type visible to the principal.
  Lists are never partial; an empty list means the collection is empty.
- Visibility: members see what they own; admins see everything.
- A task's project_id is the only authoritative project link. Counts are derived from it.

Workflow:
1) whoami. If no principal, call sign_in with a token.
2) Read with list_tasks / task_board / list_projects / project_task_counts / dashboard.
3) Write with create_* / update_* / delete_*. Writes show up in the next list call.
4) A task write may report side_effect when its calendar event could not be updated.
   The task itself was saved; do not retry the task write.

Errors carry a code and a recovery_hint. NOT_READY means the snapshot is still loading.

Docs:
- tasksync://docs/index
- tasksync://docs/errors
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tasksync://docs/index",
		Name:        "docs_index",
		Title:       "tasksync docs index",
		Description: "Entities, fields and tools.",
		Content: `# tasksync

## Entities

- **Task**: title, description, status (not-started | in-progress | done), importance (low | medium | high),
  projectId, categoryId, dueDate, members.
- **Project**: name, description, status, members, dueDate. Its task list is derived from task.projectId.
- **Category**: name, color.
- **Comment**: taskId, text, optional parentId. Replies nest one level.

Every entity carries id, ownerId, createdAt and updatedAt. Timestamps are RFC 3339 UTC.
Entities whose stored fields could not be decoded list them under invalid.

Tool arguments use snake_case (project_id, due_date). Dates accept RFC 3339 or YYYY-MM-DD.

## Tools

| Tool | Purpose |
|------|---------|
| whoami / sign_in / sign_out | identity |
| list_tasks / task_board / create_task / update_task / delete_task | tasks |
| list_projects / create_project / update_project / delete_project | projects |
| project_task_counts / project_progress | derived project views |
| list_categories / create_category / update_category / delete_category | categories |
| list_comments / add_comment / edit_comment / delete_comment | comments |
| dashboard | task summary |
| recent_activity | latest change per task, project and comment |
`,
	},
	{
		URI:         "tasksync://docs/errors",
		Name:        "docs_errors",
		Title:       "tasksync error codes",
		Description: "Error codes and how to recover.",
		Content: `# Error codes

| Code | Meaning | Recovery |
|------|---------|----------|
| VALIDATION_ERROR | arguments rejected before any write | fix the named field |
| UNAUTHENTICATED | nobody is signed in | sign_in |
| PERMISSION_DENIED | the item belongs to someone else | none |
| NOT_FOUND | the item was deleted | list again |
| NETWORK_ERROR | storage unreachable | retry |
| SUBSCRIPTION_ERROR | the live stream failed; data may be stale | sign out and in |
| NOT_READY | snapshot still loading | retry shortly |
| UNKNOWN | anything else | report it |

A write that succeeded but whose calendar step failed returns the id plus side_effect.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
