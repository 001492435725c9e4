package event

import (
	"context"
	"log"
	"time"
)

// pollInterval paces the delivery loop when the underlying queue reports
// empty instead of blocking.
const pollInterval = 20 * time.Millisecond

// Listener consumes typed events on a background goroutine and hands each
// one to its handler.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener couples publisher with handler; call Start to begin delivery.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the delivery loop.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start delivers events to the handler until Stop is called.  Consumption
// errors other than the listener's own cancellation are logged and delivery
// keeps going.
func (l *Listener[T]) Start() {
	go func() {
		for {
			event, err := l.publisher.Consume(l.ctx)
			if l.ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("event: failed to consume: %v", err)
				continue
			}
			if event == nil {
				select {
				case <-l.ctx.Done():
					return
				case <-time.After(pollInterval):
				}
				continue
			}
			l.handler(event)
		}
	}()
}
