package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/taskly/service/messaging"
)

// ErrSettled is returned when a message is acknowledged or rejected twice.
var ErrSettled = errors.New("memory: message already settled")

// Config controls queue capacity and redelivery.
type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	DeadLetter  bool
	QueueBuffer int
}

// DefaultConfig returns the defaults applied when a field is left unset.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 100,
	}
}

// Queue is a channel-backed messaging.Queue for in-process delivery.
type Queue[T any] struct {
	config  Config
	pending chan *Message[T]

	deadMux sync.Mutex
	dead    []*Message[T]
}

// NewQueue creates an in-process queue with the configured buffer.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		config:  config,
		pending: make(chan *Message[T], config.QueueBuffer),
	}
}

// Publish enqueues payload, blocking while the buffer is full.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case q.pending <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case message := <-q.pending:
		return message, nil
	}
}

// Size returns the number of buffered messages awaiting consumption.
func (q *Queue[T]) Size() int {
	return len(q.pending)
}

// DLQSize returns the number of messages parked on the dead letter queue.
func (q *Queue[T]) DLQSize() int {
	q.deadMux.Lock()
	defer q.deadMux.Unlock()
	return len(q.dead)
}

// redeliver schedules a fresh delivery of m after the retry delay.  A full
// buffer parks the redelivery instead of blocking the timer goroutine.
func (q *Queue[T]) redeliver(m *Message[T]) {
	next := &Message[T]{
		id:        m.id,
		payload:   m.payload,
		queue:     q,
		attempt:   m.attempt + 1,
		createdAt: time.Now(),
	}
	time.AfterFunc(q.config.RetryDelay, func() {
		select {
		case q.pending <- next:
		default:
			q.park(next)
		}
	})
}

func (q *Queue[T]) park(m *Message[T]) {
	q.deadMux.Lock()
	q.dead = append(q.dead, m)
	q.deadMux.Unlock()
}

// Message is a single in-flight delivery.  Ack and Nack settle it exactly
// once.
type Message[T any] struct {
	id        string
	payload   T
	queue     *Queue[T]
	attempt   int
	createdAt time.Time

	mux     sync.Mutex
	settled bool
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack marks the message as successfully processed.
func (m *Message[T]) Ack() error {
	return m.settle()
}

// Nack reports a processing failure.  Under the retry limit the message is
// redelivered after the configured delay; beyond it the message is parked on
// the dead letter queue when one is enabled.
func (m *Message[T]) Nack(err error) error {
	if settleErr := m.settle(); settleErr != nil {
		return settleErr
	}
	if m.attempt < m.queue.config.MaxRetries {
		m.queue.redeliver(m)
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.park(m)
	}
	return nil
}

func (m *Message[T]) settle() error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.settled {
		return ErrSettled
	}
	m.settled = true
	return nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
