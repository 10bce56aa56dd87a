package api

import "github.com/ssargent/mmqueue/pkg/queue"

// APIResponse represents a standard API response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ElementRequest carries an element to enqueue. Payloads shorter than
// the slot size are zero-padded; longer ones are rejected.
type ElementRequest struct {
	Element []byte `json:"element"` // base64 in JSON
}

// ElementResponse carries an element handed back by dequeue or peek.
type ElementResponse struct {
	Element []byte `json:"element"`
}

// StatsResponse reports the queue's state.
type StatsResponse struct {
	Size           int64  `json:"size"`
	Capacity       int    `json:"capacity"`
	SlotSize       int    `json:"slot_size"`
	SchemaID       uint64 `json:"schema_id"`
	IsEmpty        bool   `json:"is_empty"`
	IsFull         bool   `json:"is_full"`
	BusyIterations int64  `json:"busy_iterations"`
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// IQueue defines the queue operations the API surface needs.
type IQueue interface {
	Enqueue(payload []byte) error
	Dequeue() ([]byte, error)
	Peek() ([]byte, error)
	Stats() queue.Stats
	Size() int64
	IsEmpty() bool
	IsFull() bool
	SlotSize() int
}
