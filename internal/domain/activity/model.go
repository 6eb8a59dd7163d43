package activity

import "time"

// ActivityType represents the kind of change an entry describes.
type ActivityType string

const (
	TypeTaskCreated    ActivityType = "task_created"
	TypeTaskUpdated    ActivityType = "task_updated"
	TypeTaskCompleted  ActivityType = "task_completed"
	TypeProjectCreated ActivityType = "project_created"
	TypeProjectUpdated ActivityType = "project_updated"
	TypeCommentAdded   ActivityType = "comment_added"
	TypeCommentEdited  ActivityType = "comment_edited"
)

// ActivityEntry is one line of the recent-activity feed. Entries are derived from the
// current snapshots, so only the latest change of each entity appears.
type ActivityEntry struct {
	ActivityType ActivityType `json:"type"`
	EntityID     string       `json:"entityId"`
	OwnerID      string       `json:"ownerId"`
	TaskID       string       `json:"taskId,omitempty"`
	Summary      string       `json:"summary"`
	At           time.Time    `json:"at"`
}
