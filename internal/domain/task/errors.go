package task

import "fmt"

// SideEffectError reports that the task write succeeded but a dependent calendar step
// failed. The task write is not rolled back.
type SideEffectError struct {
	TaskID string
	Step   string
	Err    error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("task %s saved, but %s failed: %v", e.TaskID, e.Step, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// Message is the user-facing notification for the failed step.
func (e *SideEffectError) Message() string {
	return fmt.Sprintf("The task was saved, but we couldn't %s. You can retry from the task.", e.Step)
}

// Steps reported by SideEffectError.
const (
	StepCreateEvent = "create the calendar event"
	StepUpdateEvent = "update the calendar event"
	StepDeleteEvent = "delete the calendar event"
	StepLinkEvent   = "link the calendar event to the task"
)
