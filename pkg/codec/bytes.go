package codec

import (
	"encoding/binary"
	"fmt"
)

// BoundsError reports an integer access outside the target buffer.
// It is raised via panic: an out-of-range offset means the caller's
// arithmetic is broken, not that the queue is in a bad state.
type BoundsError struct {
	Offset int
	Width  int
	Length int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("codec: %d-byte access at offset %d out of range for buffer of %d bytes", e.Width, e.Offset, e.Length)
}

// checkBounds panics with a *BoundsError unless [off, off+width) lies
// inside buf.
func checkBounds(buf []byte, off, width int) {
	if off < 0 || width < 0 || off+width > len(buf) {
		panic(&BoundsError{Offset: off, Width: width, Length: len(buf)})
	}
}

// Int16 reads a little-endian signed 16-bit integer at off.
func Int16(buf []byte, off int) int16 {
	checkBounds(buf, off, 2)
	return int16(binary.LittleEndian.Uint16(buf[off:]))
}

// PutInt16 writes a little-endian signed 16-bit integer at off.
func PutInt16(buf []byte, off int, v int16) {
	checkBounds(buf, off, 2)
	binary.LittleEndian.PutUint16(buf[off:], uint16(v))
}

// Int32 reads a little-endian signed 32-bit integer at off.
func Int32(buf []byte, off int) int32 {
	checkBounds(buf, off, 4)
	return int32(binary.LittleEndian.Uint32(buf[off:]))
}

// PutInt32 writes a little-endian signed 32-bit integer at off.
func PutInt32(buf []byte, off int, v int32) {
	checkBounds(buf, off, 4)
	binary.LittleEndian.PutUint32(buf[off:], uint32(v))
}

// Int64 reads a little-endian signed 64-bit integer at off.
func Int64(buf []byte, off int) int64 {
	checkBounds(buf, off, 8)
	return int64(binary.LittleEndian.Uint64(buf[off:]))
}

// PutInt64 writes a little-endian signed 64-bit integer at off.
func PutInt64(buf []byte, off int, v int64) {
	checkBounds(buf, off, 8)
	binary.LittleEndian.PutUint64(buf[off:], uint64(v))
}

// Uint64 reads a little-endian unsigned 64-bit integer at off.
func Uint64(buf []byte, off int) uint64 {
	checkBounds(buf, off, 8)
	return binary.LittleEndian.Uint64(buf[off:])
}

// PutUint64 writes a little-endian unsigned 64-bit integer at off.
func PutUint64(buf []byte, off int, v uint64) {
	checkBounds(buf, off, 8)
	binary.LittleEndian.PutUint64(buf[off:], v)
}
