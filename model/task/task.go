package task

import (
	"context"
	"fmt"
	"reflect"
)

// Body is the unit of work a scheduler runs on behalf of the registry.
// Bodies must honour ctx cancellation to be stoppable.
type Body func(ctx context.Context) error

// Task couples a logical name with the body that performs the work.  The name
// groups related runs in the registry; it does not have to be unique.
type Task struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Body Body   `json:"-" yaml:"-"`
}

// New creates a task definition.
func New(name string, body Body) *Task {
	return &Task{Name: name, Body: body}
}

// Ident returns the task's logical name.  When no name was assigned it derives
// a stable label from the body's function identity so that repeated starts of
// the same body share a name.  Ident never fails.
func (t *Task) Ident() string {
	if t == nil {
		return ""
	}
	if t.Name != "" {
		return t.Name
	}
	if t.Body == nil {
		return ""
	}
	return fmt.Sprintf("func-%x", reflect.ValueOf(t.Body).Pointer())
}
