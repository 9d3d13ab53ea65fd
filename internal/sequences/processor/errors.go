package processor

import (
	"errors"
	"fmt"
)

// Enrollment and advancement errors. Step-level failures (template, contact
// info, assignee, send) are non-fatal: the assignment stays where it is and
// is retried on the next tick until the bounded attempt limit pauses it.
var (
	// ErrAlreadyEnrolled rejects a second active enrollment of the same
	// lead into the same sequence.
	ErrAlreadyEnrolled = errors.New("lead is already enrolled in this sequence")

	// ErrStaleAssignment means another worker advanced the assignment
	// between read and write; the caller must not retry the step.
	ErrStaleAssignment = errors.New("assignment was advanced concurrently")

	// ErrSequenceInactive rejects enrollment into a deactivated sequence.
	ErrSequenceInactive = errors.New("sequence is not active")

	// ErrTemplateNotFound means the step references a missing template.
	ErrTemplateNotFound = errors.New("message template not found")

	// ErrMissingContactInfo means the lead lacks the address or number the
	// step's channel requires.
	ErrMissingContactInfo = errors.New("lead is missing contact info for this channel")

	// ErrAssigneeNotFound means no user could be resolved for a task step.
	ErrAssigneeNotFound = errors.New("no assignee available for task step")
)

// SendError wraps a transport failure from the email or SMS gateway.
type SendError struct {
	Channel string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s send failed: %v", e.Channel, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
