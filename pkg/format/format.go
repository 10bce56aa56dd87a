// Package format implements the MMQF on-disk container format.
//
// All values are little-endian:
//
//	+00 8B magic value [NUL M M Q F ETX SUB \n]
//	+08 1B version (currently 0)
//	+09 4B CRC-32 checksum of the header bytes that follow
//	+13 8B length of the file
//	+21 8B schema id of the stored elements
//	+29 4B capacity of the queue
//	+33 4B slot size of one element
//	+37 2B offset to data
//	+39 .. data region (32-byte control block, then capacity slots)
//
// The CRC covers bytes 13 through 38: everything that describes the
// queue's geometry and identity. Magic and version sit outside the
// window so a reader can identify the file before trusting it.
package format

import (
	"hash/crc32"
	"os"

	"golang.org/x/sys/unix"

	"github.com/ssargent/mmqueue/pkg/codec"
)

// FileExtension is the conventional extension for queue files.
const FileExtension = "mmqf"

// Magic identifies an MMQF file.
var Magic = [8]byte{0x00, 0x4D, 0x4D, 0x51, 0x46, 0x03, 0x1A, 0x0A}

// Version is the current format version; MinSupportedVersion is the
// oldest version this code still reads.
const (
	Version             byte = 0x00
	MinSupportedVersion byte = 0x00
)

// Header field positions and sizes.
const (
	posMagic    = 0
	sizMagic    = 8
	posVersion  = 8
	sizVersion  = 1
	posChecksum = 9
	sizChecksum = 4
	posLength   = 13
	sizLength   = 8
	posSchemaID = 21
	sizSchemaID = 8
	posCapacity = 29
	sizCapacity = 4
	posSlotSize = 33
	sizSlotSize = 4
	posDataOff  = 37
	sizDataOff  = 2

	// DataOffset is where the data region begins in version 0.
	DataOffset = sizMagic + sizVersion + sizChecksum + sizLength +
		sizSchemaID + sizCapacity + sizSlotSize + sizDataOff

	// ControlBlockSize is the reserved prefix of the data region that
	// persists head, tail and size.
	ControlBlockSize = 32
)

// DataRegionSize returns the byte size of the data region for the
// given geometry.
func DataRegionSize(slotSize, capacity int) int64 {
	return int64(slotSize)*int64(capacity) + ControlBlockSize
}

// FileSize returns the total file size for the given geometry.
func FileSize(slotSize, capacity int) int64 {
	return DataOffset + DataRegionSize(slotSize, capacity)
}

// Create writes a fresh MMQF header to path, sizing the file for the
// given geometry, and returns the open read/write handle. An existing
// file at path is overwritten. An exclusive advisory lock is held for
// the duration of header writing; if another process holds the lock,
// Create fails with ErrLockUnavailable.
func Create(path string, schemaID uint64, slotSize, capacity int) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errorf(KindIO, "open %s: %v", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, errorf(KindLockUnavailable, "%s is locked by another process", path)
		}
		return nil, errorf(KindIO, "lock %s: %v", path, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	// Drop any previous contents so the data region starts zeroed.
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, errorf(KindIO, "truncate %s: %v", path, err)
	}
	length := FileSize(slotSize, capacity)
	if err := f.Truncate(length); err != nil {
		f.Close()
		return nil, errorf(KindIO, "truncate %s: %v", path, err)
	}

	header := make([]byte, DataOffset)
	copy(header[posMagic:], Magic[:])
	header[posVersion] = Version
	codec.PutInt64(header, posLength, length)
	codec.PutUint64(header, posSchemaID, schemaID)
	codec.PutInt32(header, posCapacity, int32(capacity))
	codec.PutInt32(header, posSlotSize, int32(slotSize))
	codec.PutInt16(header, posDataOff, int16(DataOffset))

	crc := crc32.ChecksumIEEE(header[posLength:DataOffset])
	codec.PutInt32(header, posChecksum, int32(crc))

	if _, err := f.WriteAt(header, 0); err != nil {
		f.Close()
		return nil, errorf(KindIO, "write header %s: %v", path, err)
	}

	return f, nil
}

// Validate checks that f is a well-formed MMQF file this code can
// read. Checks run in order: magic, version window, header CRC, and
// recorded length against the filesystem length. The file offset is
// not used; all reads are positional.
func Validate(f *os.File) error {
	header, err := readHeader(f)
	if err != nil {
		return err
	}

	for i := 0; i < sizMagic; i++ {
		if header[posMagic+i] != Magic[i] {
			return errorf(KindInvalidFormat, "magic value does not match at byte %d", i)
		}
	}

	v := header[posVersion]
	if v < MinSupportedVersion || v > Version {
		return errorf(KindVersionUnsupported, "version %d outside supported range [%d, %d]", v, MinSupportedVersion, Version)
	}

	stored := uint32(codec.Int32(header, posChecksum))
	computed := crc32.ChecksumIEEE(header[posLength:DataOffset])
	if stored != computed {
		return errorf(KindChecksumMismatch, "stored %08x, computed %08x", stored, computed)
	}

	stat, err := f.Stat()
	if err != nil {
		return errorf(KindIO, "stat: %v", err)
	}
	if recorded := codec.Int64(header, posLength); recorded != stat.Size() {
		return errorf(KindFileTruncated, "header records %d bytes, file has %d", recorded, stat.Size())
	}

	return nil
}

// The accessors below do not re-validate; call Validate first.

// FileVersion returns the format version byte.
func FileVersion(f *os.File) (byte, error) {
	var b [1]byte
	if _, err := f.ReadAt(b[:], posVersion); err != nil {
		return 0, errorf(KindIO, "read version: %v", err)
	}
	return b[0], nil
}

// FileDataOffset returns the byte offset of the data region.
func FileDataOffset(f *os.File) (int, error) {
	var b [sizDataOff]byte
	if _, err := f.ReadAt(b[:], posDataOff); err != nil {
		return 0, errorf(KindIO, "read data offset: %v", err)
	}
	return int(codec.Int16(b[:], 0)), nil
}

// FileSchemaID returns the schema id recorded at creation.
func FileSchemaID(f *os.File) (uint64, error) {
	var b [sizSchemaID]byte
	if _, err := f.ReadAt(b[:], posSchemaID); err != nil {
		return 0, errorf(KindIO, "read schema id: %v", err)
	}
	return codec.Uint64(b[:], 0), nil
}

// FileCapacity returns the maximum number of elements.
func FileCapacity(f *os.File) (int, error) {
	var b [sizCapacity]byte
	if _, err := f.ReadAt(b[:], posCapacity); err != nil {
		return 0, errorf(KindIO, "read capacity: %v", err)
	}
	return int(codec.Int32(b[:], 0)), nil
}

// FileSlotSize returns the byte size of one element slot.
func FileSlotSize(f *os.File) (int, error) {
	var b [sizSlotSize]byte
	if _, err := f.ReadAt(b[:], posSlotSize); err != nil {
		return 0, errorf(KindIO, "read slot size: %v", err)
	}
	return int(codec.Int32(b[:], 0)), nil
}

// FileLength returns the total file size recorded in the header.
func FileLength(f *os.File) (int64, error) {
	var b [sizLength]byte
	if _, err := f.ReadAt(b[:], posLength); err != nil {
		return 0, errorf(KindIO, "read length: %v", err)
	}
	return codec.Int64(b[:], 0), nil
}

// readHeader reads the fixed v0 header.
func readHeader(f *os.File) ([]byte, error) {
	header := make([]byte, DataOffset)
	n, err := f.ReadAt(header, 0)
	if err != nil && n < DataOffset {
		return nil, errorf(KindInvalidFormat, "cannot read %d-byte header: %v", DataOffset, err)
	}
	return header, nil
}
