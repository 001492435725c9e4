// Package messaging defines the queue abstraction lifecycle notifications
// travel over.  Vendors under this package provide in-process and filesystem
// transports; applications can plug their own by implementing Queue.
package messaging

import (
	"context"
)

// Vendor names a queue transport.
type Vendor string

// Supported vendors.
const (
	VendorMemory Vendor = "memory"
	VendorFs     Vendor = "fs"
)

// Queue carries messages of one payload type.
type Queue[T any] interface {
	// Publish enqueues a new message with the given payload.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a single delivery taken off a queue.  Exactly one of Ack or
// Nack settles it.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing.
	Ack() error

	// Nack reports failed processing; the vendor decides between redelivery
	// and dead-lettering.
	Nack(err error) error
}
