// Package codec provides the byte-level primitives for mmqueue.
//
// Two concerns live here:
//
//   - Fixed-width integer access: reading and writing little-endian
//     16/32/64-bit integers at arbitrary offsets inside a byte region.
//     The header fields and control-block words of a queue file go
//     through these helpers. Slot contents are written by the element
//     codecs, which also use little-endian order.
//
//   - The element bridge: converting application values to and from
//     fixed-width slots. The queue core treats slot contents as opaque
//     bytes; an ElementCodec is the only component that knows what the
//     bytes mean.
//
// # Offsets and bounds
//
// All integer accessors take an explicit offset into the buffer. An
// offset that would read or write past either end of the buffer is a
// programmer error, not a runtime condition: the accessors panic with a
// *BoundsError rather than returning one. Callers that compute offsets
// from untrusted input must range-check before calling.
//
// # Element codecs
//
// ElementCodec is generic over the application value type. ToBytes is
// always handed a buffer of exactly the queue's slot size; encodings
// narrower than the slot must zero-pad, which PadSlot does for raw
// byte payloads. Int64Codec is the canonical implementation, storing a
// single little-endian int64 per slot.
package codec
