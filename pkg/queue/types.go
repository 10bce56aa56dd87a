package queue

// Options tunes Open beyond the path.
type Options struct {
	// SchemaID, when nonzero, must equal the schema id recorded in the
	// file or Open fails with format.ErrSchemaMismatch.
	SchemaID uint64
}

// Stats is a point-in-time snapshot of a queue's state.
type Stats struct {
	Size           int64
	Capacity       int
	SlotSize       int
	SchemaID       uint64
	BusyIterations int64
}

// Errors. Full and Empty are ordinary outcomes of enqueue and dequeue,
// not failures; Closed means the queue has been shut down.
var (
	ErrFull   = &QueueError{"queue is full"}
	ErrEmpty  = &QueueError{"queue is empty"}
	ErrClosed = &QueueError{"queue is closed"}
)

// QueueError represents a queue operation error.
type QueueError struct {
	Message string
}

func (e *QueueError) Error() string {
	return e.Message
}
