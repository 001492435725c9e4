package event

import "time"

// Context identifies the run a notification is about.  It is carried by every
// event regardless of the payload type.
type Context struct {
	TaskID      string `json:"taskID"`
	TaskName    string `json:"taskName"`
	OwnerID     string `json:"ownerID,omitempty"`
	OwnerLabel  string `json:"ownerLabel,omitempty"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event is the envelope delivered to listeners: the run context, a creation
// timestamp stamped at publish time, free-form metadata and a typed payload.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent wraps data in an envelope bound to the given run context.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
