package registry

import (
	"context"

	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/runtime/track/selector"
)

// Select returns the runs matching a selector expression, live runs first and
// retained completed runs after.  Expressions constrain by task name, owner
// (ID or label) and state, e.g. "name:download state:running".
func (s *Service) Select(ctx context.Context, expr string) ([]*track.Handle, error) {
	criteria, err := selector.Parse(expr)
	if err != nil {
		return nil, err
	}

	var ret []*track.Handle
	if criteria.State == "" || criteria.State == selector.StateRunning {
		for _, handle := range s.Running() {
			if criteria.Matches(subjectOf(handle)) {
				ret = append(ret, handle)
			}
		}
	}
	if criteria.State == "" || criteria.State == selector.StateEnded {
		completed, err := s.completedFor(ctx, criteria)
		if err != nil {
			return nil, err
		}
		for _, handle := range completed {
			if criteria.Matches(subjectOf(handle)) {
				ret = append(ret, handle)
			}
		}
	}
	return ret, nil
}

// completedFor narrows the history scan to the name bucket when the criteria
// pin a name.
func (s *Service) completedFor(ctx context.Context, criteria *selector.Criteria) ([]*track.Handle, error) {
	if s.history == nil {
		return nil, nil
	}
	if criteria.Name != "" {
		return s.history.ByName(ctx, criteria.Name)
	}
	return s.history.List(ctx)
}

func subjectOf(handle *track.Handle) selector.Subject {
	subject := selector.Subject{
		Name:  handle.Name(),
		State: selector.StateRunning,
	}
	if handle.Ended() {
		subject.State = selector.StateEnded
	}
	if owner := handle.Owner(); owner != nil {
		subject.OwnerID = owner.ID
		subject.OwnerLabel = owner.Label
	}
	return subject
}
