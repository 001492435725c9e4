package event

import (
	"context"
	"time"

	"github.com/viant/taskly/service/messaging"
)

// Publisher carries typed events over a vendor queue.  When bound to a
// fan-out queue it mirrors every published event there as an untyped copy.
type Publisher[T any] struct {
	queue  messaging.Queue[Event[T]]
	fanout messaging.Queue[Event[any]]
}

// NewPublisher wraps queue with a typed publisher.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish stamps the event and hands it to the queue.  The fan-out mirror is
// best effort; delivery to the typed queue decides the outcome.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = time.Now()
	p.mirror(ctx, event)
	return p.queue.Publish(ctx, event)
}

func (p *Publisher[T]) mirror(ctx context.Context, event *Event[T]) {
	if p.fanout == nil {
		return
	}
	mirrored := &Event[any]{
		Context:   event.Context,
		CreatedAt: event.CreatedAt,
		Metadata:  event.Metadata,
		Data:      event.Data,
	}
	_ = p.fanout.Publish(ctx, mirrored)
}

// Consume takes the next event off the queue, acknowledging it immediately.
// A nil event with a nil error means the queue is empty.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	message, err := p.queue.Consume(ctx)
	if err != nil || message == nil {
		return nil, err
	}
	if err := message.Ack(); err != nil {
		return nil, err
	}
	return message.T(), nil
}
