package task

import (
	"errors"
	"fmt"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestAuthorize(t *testing.T) {
	assigned := &Task{ID: "t1", CreatedBy: "alice", AssignedTo: strPtr("bob"), Status: StatusPending}
	unassigned := &Task{ID: "t2", CreatedBy: "alice", Status: StatusPending}

	tests := []struct {
		name    string
		caller  string
		task    *Task
		op      Operation
		wantErr error
	}{
		{name: "creator updates", caller: "alice", task: assigned, op: OpUpdate},
		{name: "creator deletes", caller: "alice", task: assigned, op: OpDelete},
		{name: "creator toggles", caller: "alice", task: assigned, op: OpToggleStatus},
		{name: "creator reads", caller: "alice", task: assigned, op: OpRead},
		{name: "assignee toggles", caller: "bob", task: assigned, op: OpToggleStatus},
		{name: "assignee reads", caller: "bob", task: assigned, op: OpRead},
		{name: "assignee cannot update", caller: "bob", task: assigned, op: OpUpdate, wantErr: ErrUnauthorized},
		{name: "assignee cannot delete", caller: "bob", task: assigned, op: OpDelete, wantErr: ErrUnauthorized},
		{name: "third party cannot toggle", caller: "carol", task: assigned, op: OpToggleStatus, wantErr: ErrUnauthorized},
		{name: "third party cannot read", caller: "carol", task: assigned, op: OpRead, wantErr: ErrUnauthorized},
		{name: "third party cannot delete", caller: "carol", task: assigned, op: OpDelete, wantErr: ErrUnauthorized},
		{name: "no assignee means nobody else toggles", caller: "bob", task: unassigned, op: OpToggleStatus, wantErr: ErrUnauthorized},
		{name: "empty caller never matches", caller: "", task: unassigned, op: OpRead, wantErr: ErrUnauthorized},
		{name: "missing task is not found", caller: "alice", task: nil, op: OpUpdate, wantErr: ErrTaskNotFound},
		{name: "list mine always allowed", caller: "carol", task: nil, op: OpListMine},
		{name: "list assigned always allowed", caller: "carol", task: nil, op: OpListAssigned},
		{name: "unknown operation denied", caller: "alice", task: assigned, op: Operation("archive"), wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.task, tt.op)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authorize() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatus_ToggleIsInvolution(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusCompleted} {
		if got := s.Toggled().Toggled(); got != s {
			t.Errorf("%q toggled twice = %q", s, got)
		}
		if s.Toggled() == s {
			t.Errorf("%q toggled once did not change", s)
		}
	}
}

func TestCounterpart(t *testing.T) {
	tests := []struct {
		name   string
		task   *Task
		caller string
		want   string
	}{
		{name: "creator sees assignee", task: &Task{CreatedBy: "a", AssignedTo: strPtr("b")}, caller: "a", want: "b"},
		{name: "assignee sees creator", task: &Task{CreatedBy: "a", AssignedTo: strPtr("b")}, caller: "b", want: "a"},
		{name: "no assignee", task: &Task{CreatedBy: "a"}, caller: "a", want: ""},
		{name: "self assigned", task: &Task{CreatedBy: "a", AssignedTo: strPtr("a")}, caller: "a", want: ""},
		{name: "stranger", task: &Task{CreatedBy: "a", AssignedTo: strPtr("b")}, caller: "c", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Counterpart(tt.caller); got != tt.want {
				t.Errorf("Counterpart(%q) = %q, want %q", tt.caller, got, tt.want)
			}
		})
	}
}

func TestPatch_Validate(t *testing.T) {
	blank := "   "
	title := "New title"
	bad := Status("archived")
	done := StatusCompleted

	tests := []struct {
		name    string
		patch   Patch
		wantErr error
	}{
		{name: "title only", patch: Patch{Title: &title}},
		{name: "status only", patch: Patch{Status: &done}},
		{name: "blank title", patch: Patch{Title: &blank}, wantErr: ErrTitleRequired},
		{name: "unknown status", patch: Patch{Status: &bad}, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v should be a validation error", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "wrapped sentinel", err: fmt.Errorf("update-task: %w", ErrUnauthorized), want: ErrUnauthorized},
		{name: "title required is validation", err: ErrTitleRequired, want: ErrValidation},
		{name: "flattened message", err: errors.New("service call failed: task not found"), want: ErrTaskNotFound},
		{name: "flattened assignee", err: errors.New("create-task: assigned user not found"), want: ErrAssigneeNotFound},
		{name: "storage failure", err: errors.New("database is locked"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
