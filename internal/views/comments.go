package views

import (
	"slices"

	"github.com/rpggio/tasksync/internal/domain/comment"
)

// Thread is a top-level comment with its replies, oldest first.
type Thread struct {
	Comment comment.Comment   `json:"comment"`
	Replies []comment.Comment `json:"replies"`
}

// CommentThreads builds the threads of one task, oldest first. A reply whose parent is
// missing from the snapshot, or is itself a reply, is shown as a top-level comment so
// that nothing disappears.
func CommentThreads(comments []comment.Comment, taskID string) []Thread {
	byID := make(map[string]comment.Comment, len(comments))
	var own []comment.Comment
	for _, c := range comments {
		if c.TaskID != taskID {
			continue
		}
		own = append(own, c)
		byID[c.ID] = c
	}
	slices.SortStableFunc(own, func(a, b comment.Comment) int {
		return tieBreak(a.Base, b.Base)
	})

	threads := []Thread{}
	position := map[string]int{}
	var replies []comment.Comment
	for _, c := range own {
		if c.IsReply() {
			if parent, ok := byID[*c.ParentID]; ok && !parent.IsReply() {
				replies = append(replies, c)
				continue
			}
		}
		position[c.ID] = len(threads)
		threads = append(threads, Thread{Comment: c, Replies: []comment.Comment{}})
	}
	for _, r := range replies {
		i := position[*r.ParentID]
		threads[i].Replies = append(threads[i].Replies, r)
	}
	return threads
}
