// Package activity derives a recent-activity feed from the live entity snapshots.
package activity

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rpggio/tasksync/internal/apperr"
	"github.com/rpggio/tasksync/internal/domain/comment"
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
)

// Sources holds the snapshots the feed is built from. Any of them may be empty.
type Sources struct {
	Tasks    []task.Task
	Projects []project.Project
	Comments []comment.Comment
}

// Feed lists the latest change of every entity, newest first. Ties are broken by
// entity id. Entities without a valid updatedAt are left out.
func Feed(src Sources, opts ListActivityOptions) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(src.Tasks)+len(src.Projects)+len(src.Comments))

	for _, t := range src.Tasks {
		kind := TypeTaskUpdated
		switch {
		case created(t.Base):
			kind = TypeTaskCreated
		case t.Status == entity.StatusDone:
			kind = TypeTaskCompleted
		}
		entries = append(entries, entry(kind, t.Base, "", t.Title))
	}
	for _, p := range src.Projects {
		kind := TypeProjectUpdated
		if created(p.Base) {
			kind = TypeProjectCreated
		}
		entries = append(entries, entry(kind, p.Base, "", p.Name))
	}
	for _, c := range src.Comments {
		kind := TypeCommentEdited
		if created(c.Base) {
			kind = TypeCommentAdded
		}
		entries = append(entries, entry(kind, c.Base, c.TaskID, excerpt(c.Text, 80)))
	}

	entries = slices.DeleteFunc(entries, func(e ActivityEntry) bool {
		return !opts.matches(e)
	})
	slices.SortFunc(entries, func(a, b ActivityEntry) int {
		if c := b.At.Compare(a.At); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID, b.EntityID)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (o ListActivityOptions) matches(e ActivityEntry) bool {
	if e.At.IsZero() {
		return false
	}
	if o.Since != nil && e.At.Before(*o.Since) {
		return false
	}
	if o.OwnerID != "" && e.OwnerID != o.OwnerID {
		return false
	}
	if o.ActivityType != nil && e.ActivityType != *o.ActivityType {
		return false
	}
	return true
}

// created reports whether the entity has not changed since it was written.
func created(b entity.Base) bool {
	return !b.UpdatedAt.After(b.CreatedAt)
}

func entry(kind ActivityType, b entity.Base, taskID, label string) ActivityEntry {
	return ActivityEntry{
		ActivityType: kind,
		EntityID:     b.ID,
		OwnerID:      b.OwnerID,
		TaskID:       taskID,
		Summary:      summary(kind, label),
		At:           b.UpdatedAt,
	}
}

func summary(kind ActivityType, label string) string {
	switch kind {
	case TypeTaskCreated:
		return fmt.Sprintf("created task %q", label)
	case TypeTaskCompleted:
		return fmt.Sprintf("completed task %q", label)
	case TypeTaskUpdated:
		return fmt.Sprintf("updated task %q", label)
	case TypeProjectCreated:
		return fmt.Sprintf("created project %q", label)
	case TypeProjectUpdated:
		return fmt.Sprintf("updated project %q", label)
	case TypeCommentAdded:
		return fmt.Sprintf("commented %q", label)
	default:
		return fmt.Sprintf("edited comment %q", label)
	}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// ParseType checks a feed type name.
func ParseType(s string) (ActivityType, error) {
	t := ActivityType(s)
	switch t {
	case TypeTaskCreated, TypeTaskUpdated, TypeTaskCompleted, TypeProjectCreated,
		TypeProjectUpdated, TypeCommentAdded, TypeCommentEdited:
		return t, nil
	}
	return "", apperr.Validation("activity.type", "unknown activity type %q", s)
}
