package taskly_test

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/embed"
	"github.com/viant/taskly"
)

//go:embed testdata/*
var configFS embed.FS

func TestLoadConfig(t *testing.T) {
	t.Setenv("TASKLY_HISTORY_DSN", "file::memory:?cache=shared")
	testCases := []struct {
		description string
		URL         string
		expect      *taskly.Config
		expectError bool
	}{
		{
			description: "full document with env expansion",
			URL:         "embed:///testdata/config.yaml",
			expect: &taskly.Config{
				History: taskly.HistoryConfig{
					Enabled:    true,
					MaxEntries: 25,
					Backend:    taskly.HistoryBackendSQLite,
					DSN:        "file::memory:?cache=shared",
				},
				Scheduler: taskly.SchedulerConfig{ShutdownTimeoutMs: 2500},
			},
		},
		{
			description: "unset fields keep defaults",
			URL:         "embed:///testdata/minimal.yaml",
			expect: &taskly.Config{
				History: taskly.HistoryConfig{
					Enabled:    true,
					MaxEntries: taskly.DefaultConfig().History.MaxEntries,
					Backend:    taskly.HistoryBackendMemory,
				},
				Scheduler: taskly.SchedulerConfig{ShutdownTimeoutMs: 5000},
			},
		},
		{
			description: "unknown backend fails validation",
			URL:         "embed:///testdata/invalid.yaml",
			expectError: true,
		},
		{
			description: "missing document",
			URL:         "embed:///testdata/absent.yaml",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := taskly.LoadConfig(context.Background(), testCase.URL, &configFS)
			if testCase.expectError {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.EqualValues(t, testCase.expect, actual)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		config      *taskly.Config
		expectError bool
	}{
		{
			description: "defaults are valid",
			config:      taskly.DefaultConfig(),
		},
		{
			description: "nil config is valid",
		},
		{
			description: "disabled history skips retention checks",
			config: &taskly.Config{
				History: taskly.HistoryConfig{Backend: "cassandra"},
			},
		},
		{
			description: "enabled history needs a positive bound",
			config: &taskly.Config{
				History: taskly.HistoryConfig{Enabled: true},
			},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := testCase.config.Validate()
			if testCase.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
