package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type notice struct {
	TaskID string
	Kind   string
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[notice](config)

	ctx := context.Background()
	payload := notice{TaskID: "t-1", Kind: "task.started"}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload.TaskID, msgData.TaskID)
	assert.Equal(t, payload.Kind, msgData.Kind)

	err = message.Ack()
	assert.NoError(t, err)

	// double ack should error
	err = message.Ack()
	assert.Error(t, err)
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[notice](config)

	ctx := context.Background()
	payload := notice{TaskID: "retry", Kind: "task.stopped"}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)

	// Nack requeues after the retry delay
	err = message.Nack(nil)
	assert.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, queue.Size())

	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)

	// Exceeding the retry limit lands in the DLQ
	err = message.Nack(fmt.Errorf("still failing"))
	assert.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueueConcurrency(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[notice](config)

	ctx := context.Background()
	producers := 8
	perProducer := 10

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				payload := notice{TaskID: fmt.Sprintf("p%d-m%d", id, j), Kind: "task.completed"}
				assert.NoError(t, queue.Publish(ctx, &payload))
			}
		}(i)
	}
	wg.Wait()

	consumed := 0
	for i := 0; i < producers*perProducer; i++ {
		message, err := queue.Consume(ctx)
		assert.NoError(t, err)
		assert.NoError(t, message.Ack())
		consumed++
	}
	assert.Equal(t, producers*perProducer, consumed)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[notice](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := notice{TaskID: "test"}
	err := queue.Publish(ctx, &payload)
	assert.Error(t, err)

	ctxWithTimeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err = queue.Consume(ctxWithTimeout)
	assert.Error(t, err)

	// queue stays usable after a cancelled call
	emptyCtx := context.Background()
	err = queue.Publish(emptyCtx, &payload)
	assert.NoError(t, err)

	message, err := queue.Consume(emptyCtx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
