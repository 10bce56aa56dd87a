// Package queuefile owns the lifecycle of a single MMQF container: it
// opens or creates the file through pkg/format, maps the data region
// into memory, and hands the ring engine a mutable byte view.
//
// The mapping is MAP_SHARED over the whole file, so writes through the
// view are visible process-wide immediately and reach disk whenever
// the OS writes the pages back. Flush forces a synchronous writeback.
package queuefile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/ssargent/mmqueue/pkg/format"
)

// Geometry fixes a queue's shape at creation time. None of the fields
// can change once the file exists.
type Geometry struct {
	SchemaID uint64 // opaque identifier of the element schema
	Capacity int    // maximum number of elements
	SlotSize int    // bytes per element slot
}

func (g Geometry) validate() error {
	if g.Capacity <= 0 {
		return fmt.Errorf("queuefile: capacity must be positive, got %d", g.Capacity)
	}
	if g.SlotSize <= 0 {
		return fmt.Errorf("queuefile: slot size must be positive, got %d", g.SlotSize)
	}
	return nil
}

// QueueFile is an open MMQF container with its data region mapped.
type QueueFile struct {
	file       *os.File
	path       string
	version    byte
	dataOffset int
	schemaID   uint64
	capacity   int
	slotSize   int
	length     int64
	mapped     []byte // whole-file mapping; mmap offsets must be page-aligned
	data       []byte // mapped[dataOffset:], the control block + slots
}

// Open opens an existing queue file. The file is validated, its
// geometry cached, and the data region mapped read/write.
func Open(path string) (*QueueFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("queuefile: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("queuefile: open %s: %w", path, err)
	}

	if err := format.Validate(f); err != nil {
		f.Close()
		return nil, err
	}

	return finishOpen(f, path)
}

// Create creates a queue file with the given geometry, or opens an
// existing one. If the file exists and overwrite is false, it is
// validated and its on-disk capacity and slot size must equal the
// requested ones; otherwise Create fails with ErrGeometryMismatch.
// With overwrite true an existing file is clobbered.
func Create(path string, geom Geometry, overwrite bool) (*QueueFile, error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return openCompatible(path, geom)
		}
	}

	f, err := format.Create(path, geom.SchemaID, geom.SlotSize, geom.Capacity)
	if err != nil {
		return nil, err
	}

	return finishOpen(f, path)
}

// CreateExclusive creates a queue file, failing with ErrAlreadyExists
// if the path is taken.
func CreateExclusive(path string, geom Geometry) (*QueueFile, error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		return nil, &format.FormatError{Kind: format.KindAlreadyExists, Detail: path}
	}

	f, err := format.Create(path, geom.SchemaID, geom.SlotSize, geom.Capacity)
	if err != nil {
		return nil, err
	}

	return finishOpen(f, path)
}

// openCompatible opens an existing file and requires its geometry to
// match the requested one.
func openCompatible(path string, geom Geometry) (*QueueFile, error) {
	qf, err := Open(path)
	if err != nil {
		return nil, err
	}

	if qf.capacity != geom.Capacity || qf.slotSize != geom.SlotSize {
		detail := fmt.Sprintf("%s has capacity=%d slot_size=%d, requested capacity=%d slot_size=%d",
			path, qf.capacity, qf.slotSize, geom.Capacity, geom.SlotSize)
		qf.Close()
		return nil, &format.FormatError{Kind: format.KindGeometryMismatch, Detail: detail}
	}

	return qf, nil
}

// finishOpen caches the geometry fields and maps the file. The header
// has already been written or validated.
func finishOpen(f *os.File, path string) (*QueueFile, error) {
	qf := &QueueFile{file: f, path: path}

	var err error
	if qf.version, err = format.FileVersion(f); err != nil {
		f.Close()
		return nil, err
	}
	if qf.dataOffset, err = format.FileDataOffset(f); err != nil {
		f.Close()
		return nil, err
	}
	if qf.schemaID, err = format.FileSchemaID(f); err != nil {
		f.Close()
		return nil, err
	}
	if qf.capacity, err = format.FileCapacity(f); err != nil {
		f.Close()
		return nil, err
	}
	if qf.slotSize, err = format.FileSlotSize(f); err != nil {
		f.Close()
		return nil, err
	}
	if qf.length, err = format.FileLength(f); err != nil {
		f.Close()
		return nil, err
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(qf.length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("queuefile: mmap %s: %w", path, err)
	}

	qf.mapped = mapped
	qf.data = mapped[qf.dataOffset:]

	return qf, nil
}

// DataBuffer returns the mutable mapped view of the data region: the
// 32-byte control block followed by the element slots. The slice stays
// valid until Close.
func (qf *QueueFile) DataBuffer() []byte {
	return qf.data
}

// Flush synchronously writes dirty mapped pages back to disk.
func (qf *QueueFile) Flush() error {
	if qf.mapped == nil {
		return nil
	}
	if err := unix.Msync(qf.mapped, unix.MS_SYNC); err != nil {
		return fmt.Errorf("queuefile: msync %s: %w", qf.path, err)
	}
	return nil
}

// Close flushes and releases the mapping, then closes the file. The
// data buffer must not be used afterwards.
func (qf *QueueFile) Close() error {
	if qf.mapped != nil {
		if err := unix.Msync(qf.mapped, unix.MS_SYNC); err != nil {
			unix.Munmap(qf.mapped)
			qf.mapped = nil
			qf.file.Close()
			return fmt.Errorf("queuefile: msync %s: %w", qf.path, err)
		}
		if err := unix.Munmap(qf.mapped); err != nil {
			qf.mapped = nil
			qf.file.Close()
			return fmt.Errorf("queuefile: munmap %s: %w", qf.path, err)
		}
		qf.mapped = nil
		qf.data = nil
	}

	return qf.file.Close()
}

// Path returns the file path.
func (qf *QueueFile) Path() string { return qf.path }

// Version returns the file format version.
func (qf *QueueFile) Version() byte { return qf.version }

// DataOffset returns the byte offset of the data region.
func (qf *QueueFile) DataOffset() int { return qf.dataOffset }

// SchemaID returns the schema id recorded at creation.
func (qf *QueueFile) SchemaID() uint64 { return qf.schemaID }

// Capacity returns the maximum number of elements.
func (qf *QueueFile) Capacity() int { return qf.capacity }

// SlotSize returns the byte size of one element slot.
func (qf *QueueFile) SlotSize() int { return qf.slotSize }

// Length returns the total file size in bytes.
func (qf *QueueFile) Length() int64 { return qf.length }

// String renders the container's identity and geometry.
func (qf *QueueFile) String() string {
	return fmt.Sprintf("[ Memory Mapped Queue File ]\n\tFile path=%s\n\tVersion=%d\n\tSchema ID=%d\n\tCapacity=%d\n\tSlot Size=%d\n\tOffset to data=%d",
		qf.path, qf.version, qf.schemaID, qf.capacity, qf.slotSize, qf.dataOffset)
}
