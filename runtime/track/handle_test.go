package track

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskly/internal/clock"
)

func TestHandle_Lifecycle(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Second)

	clock.NowFunc = func() time.Time { return started }
	defer func() { clock.NowFunc = time.Now }()

	owner := NewOwner("session-1")
	handle := New("download", owner)

	require.NotEmpty(t, handle.ID())
	assert.Equal(t, "download", handle.Name())
	assert.True(t, owner.Equal(handle.Owner()))
	assert.Equal(t, started, handle.StartedAt())
	assert.Equal(t, RunStateRunning, handle.State())
	assert.True(t, handle.Running())
	assert.False(t, handle.Ended())

	// running <=> no end time
	assert.Nil(t, handle.EndedAt())

	clock.NowFunc = func() time.Time { return ended }
	handle.End()

	assert.True(t, handle.Ended())
	assert.False(t, handle.Running())
	require.NotNil(t, handle.EndedAt())
	assert.Equal(t, ended, *handle.EndedAt())
	assert.Equal(t, 45*time.Second, handle.Elapsed())

	// the transition is monotone; a second End keeps the original end time
	clock.NowFunc = func() time.Time { return ended.Add(time.Hour) }
	handle.End()
	assert.Equal(t, ended, *handle.EndedAt())
}

func TestHandle_Bind(t *testing.T) {
	handle := New("upload", NewOwner("session-1"))
	assert.Empty(t, handle.Ref())

	handle.Bind("ref-1")
	assert.EqualValues(t, "ref-1", handle.Ref())

	// only the first bind sticks
	handle.Bind("ref-2")
	assert.EqualValues(t, "ref-1", handle.Ref())
}

func TestHandle_WaitAndSettle(t *testing.T) {
	handle := New("upload", NewOwner("session-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, handle.Wait(ctx))

	handle.End()
	handle.Settle()
	handle.Settle() // idempotent

	assert.NoError(t, handle.Wait(context.Background()))
	select {
	case <-handle.Done():
	default:
		t.Fatal("done channel not closed after Settle")
	}
}

func TestHandle_Snapshot(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	owner := NewOwner("session-1")
	handle := New("download", owner)

	snapshot := handle.Snapshot()
	assert.Equal(t, handle.ID(), snapshot.ID)
	assert.Equal(t, "download", snapshot.Name)
	assert.Equal(t, RunStateRunning, snapshot.State)
	assert.Nil(t, snapshot.EndedAt)

	// the snapshot owner is a copy, not the live reference
	require.NotNil(t, snapshot.Owner)
	assert.Equal(t, owner.ID, snapshot.Owner.ID)
	snapshot.Owner.Label = "mutated"
	assert.Equal(t, "session-1", handle.Owner().Label)

	handle.End()
	snapshot = handle.Snapshot()
	assert.Equal(t, RunStateEnded, snapshot.State)
	require.NotNil(t, snapshot.EndedAt)
	assert.Equal(t, now, *snapshot.EndedAt)
}

func TestRestore(t *testing.T) {
	startedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(time.Minute)

	handle := Restore("run-1", "download", &Owner{ID: "o-1", Label: "session"}, startedAt, endedAt)

	assert.Equal(t, "run-1", handle.ID())
	assert.True(t, handle.Ended())
	require.NotNil(t, handle.EndedAt())
	assert.Equal(t, endedAt, *handle.EndedAt())

	// restored handles are already settled
	assert.NoError(t, handle.Wait(context.Background()))
}

func TestOwner_Equal(t *testing.T) {
	a := NewOwner("a")
	b := NewOwner("b")
	aAlias := &Owner{ID: a.ID, Label: "alias"}

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(aAlias))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	var nilOwner *Owner
	assert.False(t, nilOwner.Equal(a))
	assert.False(t, nilOwner.Equal(nil))
}
