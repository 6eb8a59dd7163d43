// Package comment implements task comments with single-level replies.
package comment

import (
	"errors"

	"github.com/rpggio/tasksync/internal/domain/entity"
)

// Collection is the gateway collection comments live in.
const Collection = "comments"

var (
	// ErrParentNotFound indicates a reply to a comment that isn't in the snapshot.
	ErrParentNotFound = errors.New("parent comment not found")
	// ErrNestedReply indicates a reply to a reply.
	ErrNestedReply = errors.New("replies can't be nested")
	// ErrParentTaskMismatch indicates a reply on a different task than its parent.
	ErrParentTaskMismatch = errors.New("parent comment belongs to another task")
)

// Comment is a note on a task. A nil ParentID marks a top-level comment.
type Comment struct {
	entity.Base
	TaskID     string  `json:"taskId"`
	ParentID   *string `json:"parentId"`
	Text       string  `json:"text"`
	AuthorName string  `json:"authorName,omitempty"`
}

// IsReply reports whether c answers another comment.
func (c Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}
