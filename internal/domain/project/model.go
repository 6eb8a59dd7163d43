package project

import (
	"time"

	"github.com/rpggio/tasksync/internal/domain/entity"
)

// Collection is the gateway collection projects live in.
const Collection = "projects"

// Project groups tasks. Tasks is a denormalized hint only; membership is decided by each
// task's projectId.
type Project struct {
	entity.Base
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      entity.Status `json:"status"`
	Members     []string      `json:"members,omitempty"`
	Tasks       []string      `json:"tasks,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
}
