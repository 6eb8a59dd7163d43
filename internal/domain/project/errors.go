package project

import "errors"

var (
	// ErrNameRequired indicates a project without a name.
	ErrNameRequired = errors.New("project name is required")
	// ErrTasksReadOnly indicates an attempt to write the cached tasks list.
	ErrTasksReadOnly = errors.New("project tasks are derived from task.projectId and can't be written")
)
