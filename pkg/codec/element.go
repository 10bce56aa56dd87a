package codec

import (
	"encoding/binary"
	"fmt"
)

// ElementCodec converts application values into fixed-width byte slots
// and back. The queue guarantees buf is exactly the slot size on both
// paths; implementations that encode fewer bytes must zero the rest.
type ElementCodec[T any] interface {
	// ToBytes encodes v into buf. buf is exactly slot-size bytes long.
	ToBytes(v T, buf []byte) error

	// FromBytes decodes a value from buf.
	FromBytes(buf []byte) (T, error)
}

// Int64Codec stores one little-endian int64 per slot. The slot size
// must be at least 8 bytes; extra bytes are zeroed.
type Int64Codec struct{}

// Int64SlotSize is the minimum slot size Int64Codec requires.
const Int64SlotSize = 8

// ToBytes writes v into the first 8 bytes of buf and zeroes the rest.
func (Int64Codec) ToBytes(v int64, buf []byte) error {
	if len(buf) < Int64SlotSize {
		return fmt.Errorf("codec: slot of %d bytes too small for int64", len(buf))
	}
	binary.LittleEndian.PutUint64(buf, uint64(v))
	for i := Int64SlotSize; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// FromBytes reads an int64 from the first 8 bytes of buf.
func (Int64Codec) FromBytes(buf []byte) (int64, error) {
	if len(buf) < Int64SlotSize {
		return 0, fmt.Errorf("codec: slot of %d bytes too small for int64", len(buf))
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// RawCodec passes byte payloads through unchanged, zero-padding short
// ones. Payloads longer than the slot are rejected.
type RawCodec struct{}

// ToBytes copies v into buf, zero-padding the remainder.
func (RawCodec) ToBytes(v []byte, buf []byte) error {
	if len(v) > len(buf) {
		return fmt.Errorf("codec: payload of %d bytes exceeds slot of %d bytes", len(v), len(buf))
	}
	n := copy(buf, v)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// FromBytes returns a copy of the full slot contents.
func (RawCodec) FromBytes(buf []byte) ([]byte, error) {
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// PadSlot returns payload extended with zeroes to slotSize. It errors
// if the payload is already longer than the slot.
func PadSlot(payload []byte, slotSize int) ([]byte, error) {
	if len(payload) > slotSize {
		return nil, fmt.Errorf("codec: payload of %d bytes exceeds slot of %d bytes", len(payload), slotSize)
	}
	out := make([]byte, slotSize)
	copy(out, payload)
	return out, nil
}
