package task

// Operation is an action a caller attempts on a task.
type Operation string

const (
	OpRead         Operation = "read"
	OpUpdate       Operation = "update"
	OpDelete       Operation = "delete"
	OpToggleStatus Operation = "toggleStatus"
	OpListMine     Operation = "listMine"
	OpListAssigned Operation = "listAssigned"
)

// Authorize decides whether callerID may perform op on t, based only on the
// caller's relationship to the task. It performs no lookups.
//
// List operations are scoped by query filter rather than per record and are
// always allowed; t may be nil for them. For every other operation a nil task
// yields ErrTaskNotFound, and a denial yields ErrUnauthorized.
func Authorize(callerID string, t *Task, op Operation) error {
	switch op {
	case OpListMine, OpListAssigned:
		return nil
	}

	if t == nil {
		return ErrTaskNotFound
	}

	var allowed bool
	switch op {
	case OpUpdate, OpDelete:
		allowed = t.IsCreator(callerID)
	case OpToggleStatus, OpRead:
		allowed = t.IsCreator(callerID) || t.IsAssignee(callerID)
	}

	if !allowed {
		return ErrUnauthorized
	}
	return nil
}
