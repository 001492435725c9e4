package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskly/model/task"
)

func TestService_Register(t *testing.T) {
	noop := func(_ context.Context) error { return nil }

	testCases := []struct {
		description string
		task        *task.Task
		expectErr   bool
	}{
		{
			description: "named task registers",
			task:        task.New("backup", noop),
		},
		{
			description: "anonymous task registers under derived name",
			task:        &task.Task{Body: noop},
		},
		{
			description: "nil task is rejected",
			task:        nil,
			expectErr:   true,
		},
		{
			description: "body-less task is rejected",
			task:        &task.Task{Name: "empty"},
			expectErr:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			service := New()
			err := service.Register(testCase.task)
			if testCase.expectErr {
				assert.Error(t, err)
				assert.Equal(t, 0, service.Size())
				return
			}
			require.NoError(t, err)
			assert.Same(t, testCase.task, service.Lookup(testCase.task.Ident()))
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	noop := func(_ context.Context) error { return nil }
	service := New(task.New("backup", noop))

	err := service.Register(task.New("backup", noop))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, service.Size())
}

func TestService_Names(t *testing.T) {
	noop := func(_ context.Context) error { return nil }
	service := New(
		task.New("cleanup", noop),
		task.New("backup", noop),
		task.New("report", noop),
	)

	assert.Equal(t, []string{"backup", "cleanup", "report"}, service.Names())
	assert.Nil(t, service.Lookup("missing"))
}
