package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/service/history"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ended(id, name string, owner *track.Owner, endOffset time.Duration) *track.Handle {
	return track.Restore(id, name, owner, base, base.Add(endOffset))
}

func ids(handles []*track.Handle) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.ID())
	}
	return out
}

func newTestService(t *testing.T, options ...Option) *Service {
	service, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func TestService_Append_Bound(t *testing.T) {
	owner := track.NewOwner("session")
	ctx := context.Background()
	service := newTestService(t, WithMaxEntries(2))

	for _, run := range []*track.Handle{
		ended("t1", "one", owner, time.Second),
		ended("t2", "two", owner, 2*time.Second),
	} {
		evicted, err := service.Append(ctx, run)
		require.NoError(t, err)
		assert.Empty(t, evicted)
	}

	evicted, err := service.Append(ctx, ended("t3", "three", owner, 3*time.Second))
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "t1", evicted[0].ID())
	assert.True(t, evicted[0].Ended())

	kept, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3"}, ids(kept))

	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_Append_EvictsOldestEnded(t *testing.T) {
	owner := track.NewOwner("session")
	ctx := context.Background()
	service := newTestService(t, WithMaxEntries(2))

	// t2 ends before t1 despite being inserted later
	for _, run := range []*track.Handle{
		ended("t1", "one", owner, 3*time.Second),
		ended("t2", "two", owner, time.Second),
	} {
		_, err := service.Append(ctx, run)
		require.NoError(t, err)
	}

	evicted, err := service.Append(ctx, ended("t3", "three", owner, 2*time.Second))
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "t2", evicted[0].ID())

	kept, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, ids(kept))
}

func TestService_Append_TieBreakByInsertion(t *testing.T) {
	owner := track.NewOwner("session")
	ctx := context.Background()
	service := newTestService(t, WithMaxEntries(2))

	for _, run := range []*track.Handle{
		ended("t1", "one", owner, time.Second),
		ended("t2", "two", owner, time.Second),
	} {
		_, err := service.Append(ctx, run)
		require.NoError(t, err)
	}

	evicted, err := service.Append(ctx, ended("t3", "three", owner, time.Second))
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "t1", evicted[0].ID())
}

func TestService_Append_Invalid(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Append(ctx, nil)
	assert.True(t, errors.Is(err, history.ErrNilHandle))

	running := track.New("download", track.NewOwner("session"))
	_, err = service.Append(ctx, running)
	assert.True(t, errors.Is(err, history.ErrStillRunning))
}

func TestService_Queries(t *testing.T) {
	alice := track.NewOwner("alice")
	bob := track.NewOwner("bob")
	ctx := context.Background()
	service := newTestService(t)

	for _, run := range []*track.Handle{
		ended("a1", "download", alice, time.Second),
		ended("b1", "download", bob, 2*time.Second),
		ended("a2", "upload", alice, 3*time.Second),
	} {
		_, err := service.Append(ctx, run)
		require.NoError(t, err)
	}

	byName, err := service.ByName(ctx, "download")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1"}, ids(byName))

	byOwner, err := service.ByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids(byOwner))

	all, err := service.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "b1", "a2"}, ids(all))

	// restored attributes survive the round trip
	restored := all[0]
	assert.Equal(t, "download", restored.Name())
	require.NotNil(t, restored.Owner())
	assert.Equal(t, alice.ID, restored.Owner().ID)
	assert.Equal(t, "alice", restored.Owner().Label)
	require.NotNil(t, restored.EndedAt())
	assert.True(t, restored.EndedAt().Equal(base.Add(time.Second)))
	assert.True(t, restored.StartedAt().Equal(base))
}

func TestService_Clear(t *testing.T) {
	alice := track.NewOwner("alice")
	bob := track.NewOwner("bob")
	ctx := context.Background()
	service := newTestService(t)

	for _, run := range []*track.Handle{
		ended("a1", "download", alice, time.Second),
		ended("b1", "download", bob, 2*time.Second),
	} {
		_, err := service.Append(ctx, run)
		require.NoError(t, err)
	}

	require.NoError(t, service.ClearByOwner(ctx, alice.ID))
	remaining, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, ids(remaining))

	require.NoError(t, service.Clear(ctx))
	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
