// Package queue implements the concurrent ring-buffer engine over a
// memory-mapped queue file.
//
// The data region handed over by pkg/queuefile starts with a 32-byte
// control block persisting head, tail and size, followed by capacity
// fixed-width slots. Producers claim strictly increasing sequence
// numbers, write their slot without contention, and then publish in
// claim order through a single cursor, so the persisted tail and size
// always describe a prefix of the logical queue. Consumers mirror the
// scheme with their own sequence counter.
//
// A crash between slot write and publication leaves the control block
// describing the queue without the unpublished element, which is a
// loadable state: reopening resumes from the persisted triple.
package queue

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ssargent/mmqueue/pkg/codec"
	"github.com/ssargent/mmqueue/pkg/format"
	"github.com/ssargent/mmqueue/pkg/queuefile"
)

// Control block layout, relative to the start of the data region.
const (
	headPos = 0
	tailPos = 8
	sizePos = 16

	// slotBase is where the slot region begins.
	slotBase = int64(format.ControlBlockSize)
)

// Queue is a bounded FIFO over a mapped queue file. It is safe for
// concurrent use by multiple producers and consumers in one process;
// cross-process access is coordinated through the mapped control block
// and tolerated by the protocol, but unverified.
type Queue struct {
	qf  *queuefile.QueueFile
	buf []byte // mapped data region: control block + slots

	capacity  int
	slotSize  int
	ringBytes int64 // capacity * slotSize

	// Open-time snapshots of the control block. Slot offsets for this
	// session's sequences are derived from these, never from the live
	// mapped values.
	initialHead int64
	initialTail int64
	initialSize int64

	enqueueSeq atomic.Int64 // claims issued to producers this session
	dequeueSeq atomic.Int64 // claims issued to consumers this session
	cursor     atomic.Int64 // highest fully published enqueue claim
	busyIters  atomic.Int64 // spins on the publication barrier

	// sizeMu guards the paired update of the in-memory size and its
	// mapped copy, and the mapped head/tail words.
	sizeMu sync.Mutex
	size   atomic.Int64

	closed atomic.Bool
}

// Open opens an existing queue file and reconstitutes the queue state
// from its control block.
func Open(path string, opts Options) (*Queue, error) {
	qf, err := queuefile.Open(path)
	if err != nil {
		return nil, err
	}

	if opts.SchemaID != 0 && qf.SchemaID() != opts.SchemaID {
		detail := fmt.Sprintf("file has schema id %d, caller expects %d", qf.SchemaID(), opts.SchemaID)
		qf.Close()
		return nil, &format.FormatError{Kind: format.KindSchemaMismatch, Detail: detail}
	}

	return attach(qf)
}

// Create creates (or, per queuefile.Create, compatibly reopens) a
// queue file and attaches to it.
func Create(path string, geom queuefile.Geometry, overwrite bool) (*Queue, error) {
	qf, err := queuefile.Create(path, geom, overwrite)
	if err != nil {
		return nil, err
	}
	return attach(qf)
}

// attach builds the in-memory queue state from the mapped control
// block.
func attach(qf *queuefile.QueueFile) (*Queue, error) {
	q := &Queue{
		qf:        qf,
		buf:       qf.DataBuffer(),
		capacity:  qf.Capacity(),
		slotSize:  qf.SlotSize(),
		ringBytes: int64(qf.Capacity()) * int64(qf.SlotSize()),
	}

	var err error
	if q.initialHead, err = q.readOffsetWord(headPos, "head"); err != nil {
		qf.Close()
		return nil, err
	}
	if q.initialTail, err = q.readOffsetWord(tailPos, "tail"); err != nil {
		qf.Close()
		return nil, err
	}

	size := codec.Int64(q.buf, sizePos)
	if size>>32 != 0 {
		qf.Close()
		return nil, &format.FormatError{Kind: format.KindInvalidFormat,
			Detail: fmt.Sprintf("control block size %#x has nonzero upper bytes", size)}
	}
	if size < 0 || size > int64(q.capacity) {
		qf.Close()
		return nil, &format.FormatError{Kind: format.KindInvalidFormat,
			Detail: fmt.Sprintf("control block size %d outside [0, %d]", size, q.capacity)}
	}

	q.initialSize = size
	q.size.Store(size)

	return q, nil
}

// readOffsetWord reads a persisted head or tail word and applies the
// uninitialised-zero convention. Words with nonzero upper bytes or
// offsets outside the slot region are rejected.
func (q *Queue) readOffsetWord(pos int, name string) (int64, error) {
	v := codec.Int64(q.buf, pos)
	if v>>32 != 0 {
		return 0, &format.FormatError{Kind: format.KindInvalidFormat,
			Detail: fmt.Sprintf("control block %s %#x has nonzero upper bytes", name, v)}
	}
	if v == 0 {
		return slotBase, nil
	}
	if v < slotBase || v >= slotBase+q.ringBytes || (v-slotBase)%int64(q.slotSize) != 0 {
		return 0, &format.FormatError{Kind: format.KindInvalidFormat,
			Detail: fmt.Sprintf("control block %s %d not aligned to a slot", name, v)}
	}
	return v, nil
}

// producerSlot returns the byte offset of the slot for enqueue claim
// number claim (1-indexed).
func (q *Queue) producerSlot(claim int64) int64 {
	return slotBase + (q.initialTail-slotBase+(claim-1)*int64(q.slotSize))%q.ringBytes
}

// consumerSlot returns the byte offset of the slot for dequeue claim
// number claim (1-indexed).
func (q *Queue) consumerSlot(claim int64) int64 {
	return slotBase + (q.initialHead-slotBase+(claim-1)*int64(q.slotSize))%q.ringBytes
}

// Enqueue appends one element. The payload must be exactly one slot
// long; use the element bridge in pkg/codec to produce it. Returns
// ErrFull when admission fails; the attempt leaves no trace.
func (q *Queue) Enqueue(payload []byte) error {
	if q.closed.Load() {
		return ErrClosed
	}
	if len(payload) != q.slotSize {
		return fmt.Errorf("queue: payload is %d bytes, slot size is %d", len(payload), q.slotSize)
	}

	// Claim a sequence number, folding the admission check into the
	// claim itself: a rejected attempt never claims, so there is
	// nothing to revoke. The in-flight fill counts committed elements
	// plus every claim not yet published, including ours.
	var claim int64
	for {
		seq := q.enqueueSeq.Load()
		claim = seq + 1
		if q.size.Load()+claim-q.cursor.Load() > int64(q.capacity) {
			return ErrFull
		}
		if q.enqueueSeq.CompareAndSwap(seq, claim) {
			break
		}
	}

	// Write the slot. Distinct claims map to distinct slots, so this
	// needs no coordination.
	off := q.producerSlot(claim)
	copy(q.buf[off:off+int64(q.slotSize)], payload)

	// Publication barrier: control-block updates happen in claim
	// order, so tail advances past earlier slots before ours is
	// recorded and size stays monotone in claim order.
	for q.cursor.Load() != claim-1 {
		q.busyIters.Add(1)
		runtime.Gosched()
	}

	q.sizeMu.Lock()
	newTail := slotBase + (off-slotBase+int64(q.slotSize))%q.ringBytes
	codec.PutInt64(q.buf, tailPos, newTail)
	n := q.size.Add(1)
	codec.PutInt64(q.buf, sizePos, n)
	q.sizeMu.Unlock()

	q.cursor.Store(claim)

	return nil
}

// Dequeue removes and returns the oldest element. Returns ErrEmpty
// when nothing published (or present at open time) remains unclaimed.
func (q *Queue) Dequeue() ([]byte, error) {
	if q.closed.Load() {
		return nil, ErrClosed
	}

	// Claim with the availability check folded in: consumers may drain
	// at most what producers have published plus the elements already
	// present at open time.
	var claim int64
	for {
		seq := q.dequeueSeq.Load()
		claim = seq + 1
		if q.cursor.Load()+q.initialSize-claim < 0 {
			return nil, ErrEmpty
		}
		if q.dequeueSeq.CompareAndSwap(seq, claim) {
			break
		}
	}

	off := q.consumerSlot(claim)
	out := make([]byte, q.slotSize)
	copy(out, q.buf[off:off+int64(q.slotSize)])

	q.sizeMu.Lock()
	head := codec.Int64(q.buf, headPos)
	if head == 0 {
		head = slotBase
	}
	newHead := slotBase + (head-slotBase+int64(q.slotSize))%q.ringBytes
	codec.PutInt64(q.buf, headPos, newHead)
	n := q.size.Add(-1)
	codec.PutInt64(q.buf, sizePos, n)
	q.sizeMu.Unlock()

	return out, nil
}

// Peek returns the element at the head without removing it. The slot
// is addressed through the mapped head, so concurrent dequeues are
// observed.
func (q *Queue) Peek() ([]byte, error) {
	if q.closed.Load() {
		return nil, ErrClosed
	}

	q.sizeMu.Lock()
	defer q.sizeMu.Unlock()

	if q.size.Load() == 0 {
		return nil, ErrEmpty
	}

	head := codec.Int64(q.buf, headPos)
	if head == 0 {
		head = slotBase
	}

	out := make([]byte, q.slotSize)
	copy(out, q.buf[head:head+int64(q.slotSize)])

	return out, nil
}

// Size returns the current element count.
func (q *Queue) Size() int64 {
	return q.size.Load()
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue) IsEmpty() bool {
	return q.size.Load() == 0
}

// IsFull reports whether the queue is at capacity.
func (q *Queue) IsFull() bool {
	return q.size.Load() >= int64(q.capacity)
}

// Capacity returns the maximum number of elements.
func (q *Queue) Capacity() int {
	return q.capacity
}

// SlotSize returns the byte size of one element slot.
func (q *Queue) SlotSize() int {
	return q.slotSize
}

// SchemaID returns the schema id recorded in the file.
func (q *Queue) SchemaID() uint64 {
	return q.qf.SchemaID()
}

// BusyIterations returns the number of spins on the publication
// barrier since open. Diagnostic only.
func (q *Queue) BusyIterations() int64 {
	return q.busyIters.Load()
}

// Stats returns a snapshot of the queue's state.
func (q *Queue) Stats() Stats {
	return Stats{
		Size:           q.size.Load(),
		Capacity:       q.capacity,
		SlotSize:       q.slotSize,
		SchemaID:       q.qf.SchemaID(),
		BusyIterations: q.busyIters.Load(),
	}
}

// File returns the underlying container, for diagnostics.
func (q *Queue) File() *queuefile.QueueFile {
	return q.qf
}

// Flush forces the mapped region to disk.
func (q *Queue) Flush() error {
	if q.closed.Load() {
		return ErrClosed
	}
	return q.qf.Flush()
}

// Close flushes the mapping and releases the file. Operations after
// Close return ErrClosed.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	return q.qf.Close()
}
