package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrTaskNotFound indicates the task identifier does not resolve.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnauthorized indicates the caller may not perform the operation on an existing task.
	ErrUnauthorized = errors.New("not authorized for this task")
	// ErrAssigneeNotFound indicates the assignment email does not resolve to a user.
	ErrAssigneeNotFound = errors.New("assigned user not found")
	// ErrCreatorNotFound indicates the caller no longer resolves to a user.
	ErrCreatorNotFound = errors.New("creator not found")
)

var (
	ErrTitleRequired = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidStatus = fmt.Errorf("%w: status must be pending or completed", ErrValidation)
	ErrEmptyPatch    = fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
)

// kinds is ordered: the first match wins.
var kinds = []error{
	ErrAssigneeNotFound,
	ErrCreatorNotFound,
	ErrTaskNotFound,
	ErrUnauthorized,
	ErrValidation,
}

// Classify maps err to one of the task error kinds. Errors returned through a
// request-reply service lose their chain, so the message is matched as well.
// It returns nil for errors outside the taxonomy (storage failures and the like).
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	msg := err.Error()
	for _, kind := range kinds {
		if strings.Contains(msg, kind.Error()) {
			return kind
		}
	}
	return nil
}
