package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/taskly/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	// MessageStatePending indicates a message is waiting to be processed
	MessageStatePending MessageState = "pending"

	// MessageStateProcessing indicates a message is being processed
	MessageStateProcessing MessageState = "processing"

	// MessageStateCompleted indicates a message was successfully processed
	MessageStateCompleted MessageState = "completed"

	// MessageStateFailed indicates a message failed processing
	MessageStateFailed MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mux       sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// ErrSettled is returned when a message is acknowledged or rejected twice.
var ErrSettled = errors.New("fs: message already settled")

// Ack acknowledges that the message was processed successfully
func (m *Message[T]) Ack() error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.processed {
		return ErrSettled
	}

	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.completeMessage(context.Background(), m)
}

// Nack indicates that the message processing failed
func (m *Message[T]) Nack(err error) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.processed {
		return ErrSettled
	}

	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	return m.queue.failMessage(context.Background(), m)
}

// Config holds configuration for filesystem queue
type Config struct {
	BasePath   string        // Base directory for queue files
	MaxRetries int           // Maximum number of retry attempts
	RetryDelay time.Duration // Delay between retries
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/taskly/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Queue implements a filesystem-based messaging.Queue.  Messages move between
// state directories (pending, processing, completed, failed, dlq) as they are
// consumed and acknowledged.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mux           sync.Mutex
}

// NewQueue creates a new filesystem-based queue
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}

	dirs := []string{
		q.pendingDir,
		q.processingDir,
		q.completedDir,
		q.failedDir,
		q.dlqDir,
	}

	ctx := context.Background()
	for _, dir := range dirs {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return q, nil
}

// Publish adds a new message to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Retries:   0,
		queue:     q,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	filePath := path.Join(q.pendingDir, q.messageFilename(message.CreatedAt, message.ID))
	return q.uploadMessage(ctx, filePath, data)
}

// Consume retrieves a single message from the queue.  Failed messages
// eligible for retry take precedence over pending ones; when neither exists
// Consume returns (nil, nil).
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	retryMessage, err := q.checkFailedMessages(ctx)
	if err != nil {
		return nil, err
	}
	if retryMessage != nil {
		return retryMessage, nil
	}

	q.mux.Lock()
	defer q.mux.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}

	pendingFiles := filterMessageFiles(objects)
	if len(pendingFiles) == 0 {
		return nil, nil
	}

	// Process the oldest message (by filename prefix)
	obj := pendingFiles[0]

	message, err := q.readMessageFromURL(ctx, obj.URL())
	if err != nil {
		// Move the unreadable message aside so it does not wedge the queue
		destURL := path.Join(q.failedDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err := q.moveToProcessing(ctx, obj, message); err != nil {
		return nil, err
	}
	return message, nil
}

// checkFailedMessages looks for failed messages eligible for retry
func (q *Queue[T]) checkFailedMessages(ctx context.Context) (*Message[T], error) {
	q.mux.Lock()
	defer q.mux.Unlock()

	objects, err := q.fs.List(ctx, q.failedDir, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list failed messages: %w", err)
	}

	failedFiles := filterMessageFiles(objects)
	if len(failedFiles) == 0 {
		return nil, nil
	}

	obj := failedFiles[0]

	message, err := q.readMessageFromURL(ctx, obj.URL())
	if err != nil {
		destURL := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}

	if message.Retries > q.config.MaxRetries {
		destURL := path.Join(q.dlqDir, obj.Name())
		if err := q.fs.Move(ctx, obj.URL(), destURL); err != nil {
			return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
		}
		return nil, nil
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err := q.moveToProcessing(ctx, obj, message); err != nil {
		return nil, err
	}
	return message, nil
}

// moveToProcessing writes the updated message into the processing directory
// and removes the source object.  Upload happens first so a crash between the
// two steps duplicates a message rather than losing it.
func (q *Queue[T]) moveToProcessing(ctx context.Context, obj storage.Object, message *Message[T]) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal updated message: %w", err)
	}
	processingPath := path.Join(q.processingDir, obj.Name())
	if err := q.uploadMessage(ctx, processingPath, data); err != nil {
		return fmt.Errorf("failed to move message to processing directory: %w", err)
	}
	if err := q.fs.Delete(ctx, obj.URL()); err != nil {
		return fmt.Errorf("failed to delete message from %s: %w", obj.URL(), err)
	}
	return nil
}

// completeMessage moves a message to the completed directory
func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	q.mux.Lock()
	defer q.mux.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal completed message: %w", err)
	}

	filename := q.messageFilename(m.CreatedAt, m.ID)
	completedPath := path.Join(q.completedDir, filename)
	processingPath := path.Join(q.processingDir, filename)

	if err := q.uploadMessage(ctx, completedPath, data); err != nil {
		return fmt.Errorf("failed to write message to completed directory: %w", err)
	}

	if exists, _ := q.fs.Exists(ctx, processingPath); exists {
		if err := q.fs.Delete(ctx, processingPath); err != nil {
			return fmt.Errorf("failed to delete message from processing directory: %w", err)
		}
	}
	return nil
}

// failMessage handles a failed message (retry or move to DLQ)
func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	q.mux.Lock()
	defer q.mux.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal failed message: %w", err)
	}

	filename := q.messageFilename(m.CreatedAt, m.ID)
	processingPath := path.Join(q.processingDir, filename)

	if m.Retries > q.config.MaxRetries {
		dlqPath := path.Join(q.dlqDir, filename)
		if err := q.uploadMessage(ctx, dlqPath, data); err != nil {
			return fmt.Errorf("failed to write message to DLQ: %w", err)
		}
	} else {
		failedPath := path.Join(q.failedDir, filename)
		if err := q.uploadMessage(ctx, failedPath, data); err != nil {
			return fmt.Errorf("failed to write message to failed directory: %w", err)
		}
	}

	if exists, _ := q.fs.Exists(ctx, processingPath); exists {
		if err := q.fs.Delete(ctx, processingPath); err != nil {
			return fmt.Errorf("failed to delete message from processing directory: %w", err)
		}
	}
	return nil
}

// filterMessageFiles keeps only the .json message objects from a listing.
func filterMessageFiles(objects []storage.Object) []storage.Object {
	var files []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			files = append(files, obj)
		}
	}
	return files
}

// messageFilename derives the message's object name.  The zero-padded
// nanosecond prefix makes lexical listing order match publish order.
func (q *Queue[T]) messageFilename(createdAt time.Time, id string) string {
	return fmt.Sprintf("%020d-%s.json", createdAt.UnixNano(), id)
}

// uploadMessage abstracts the common operation of uploading message data
func (q *Queue[T]) uploadMessage(ctx context.Context, path string, data []byte) error {
	return q.fs.Upload(ctx, path, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

// readMessageFromURL abstracts the common operation of reading and unmarshaling a message
func (q *Queue[T]) readMessageFromURL(ctx context.Context, url string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", url, err)
	}

	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", url, err)
	}
	return &message, nil
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
