package format

import (
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mmqueue/pkg/codec"
)

func createTestFile(t *testing.T, schemaID uint64, slotSize, capacity int) (string, *os.File) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "queue.mmqf")
	f, err := Create(path, schemaID, slotSize, capacity)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return path, f
}

func TestCreate_HeaderRoundTrip(t *testing.T) {
	_, f := createTestFile(t, 42, 16, 100)

	require.NoError(t, Validate(f))

	version, err := FileVersion(f)
	require.NoError(t, err)
	assert.Equal(t, Version, version)

	schemaID, err := FileSchemaID(f)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), schemaID)

	capacity, err := FileCapacity(f)
	require.NoError(t, err)
	assert.Equal(t, 100, capacity)

	slotSize, err := FileSlotSize(f)
	require.NoError(t, err)
	assert.Equal(t, 16, slotSize)

	dataOffset, err := FileDataOffset(f)
	require.NoError(t, err)
	assert.Equal(t, DataOffset, dataOffset)

	length, err := FileLength(f)
	require.NoError(t, err)
	assert.Equal(t, FileSize(16, 100), length)

	stat, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, length, stat.Size())
}

func TestCreate_FileSizeIncludesControlBlock(t *testing.T) {
	assert.Equal(t, int64(39+32+4*4), FileSize(4, 4))
	assert.Equal(t, int64(39+32+2*8), FileSize(8, 2))
}

func TestValidate_MagicMismatch(t *testing.T) {
	path, f := createTestFile(t, 1, 4, 4)
	f.Close()

	corruptByte(t, path, 1, 'X')

	reopened := openTestFile(t, path)
	err := Validate(reopened)
	assert.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
}

func TestValidate_ChecksumSensitivity(t *testing.T) {
	// Flipping any single bit of the covered window must be caught.
	for off := posLength; off < DataOffset; off++ {
		for bit := 0; bit < 8; bit++ {
			path, f := createTestFile(t, 77, 8, 16)
			f.Close()

			flipBit(t, path, int64(off), bit)

			reopened := openTestFile(t, path)
			err := Validate(reopened)
			// The CRC check runs before the length check, so every
			// flip in the window surfaces as a checksum mismatch.
			if !errors.Is(err, ErrChecksumMismatch) {
				t.Fatalf("offset %d bit %d: expected checksum mismatch, got %v", off, bit, err)
			}
			reopened.Close()
		}
	}
}

func TestValidate_CapacityByteFlip(t *testing.T) {
	path, f := createTestFile(t, 42, 4, 4)
	f.Close()

	corruptByte(t, path, posCapacity, 0xFF)

	reopened := openTestFile(t, path)
	err := Validate(reopened)
	assert.True(t, errors.Is(err, ErrChecksumMismatch), "got %v", err)
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	path, f := createTestFile(t, 1, 4, 4)
	f.Close()

	// Version sits outside the CRC window, so the CRC stays correct.
	corruptByte(t, path, posVersion, 0xFF)

	reopened := openTestFile(t, path)
	err := Validate(reopened)
	assert.True(t, errors.Is(err, ErrVersionUnsupported), "got %v", err)
}

func TestValidate_TruncatedFile(t *testing.T) {
	path, f := createTestFile(t, 1, 4, 4)
	f.Close()

	fw, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	require.NoError(t, fw.Truncate(FileSize(4, 4)-1))
	fw.Close()

	reopened := openTestFile(t, path)
	err = Validate(reopened)
	assert.True(t, errors.Is(err, ErrFileTruncated), "got %v", err)
}

func TestValidate_HeaderTooShort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stub.mmqf")
	require.NoError(t, os.WriteFile(path, Magic[:4], 0600))

	f := openTestFile(t, path)
	err := Validate(f)
	assert.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
}

func TestValidate_HandcraftedHeader(t *testing.T) {
	// Build a header by hand to pin the byte layout.
	header := make([]byte, DataOffset)
	copy(header, Magic[:])
	header[posVersion] = 0x00
	codec.PutInt64(header, posLength, FileSize(4, 2))
	codec.PutUint64(header, posSchemaID, 7)
	codec.PutInt32(header, posCapacity, 2)
	codec.PutInt32(header, posSlotSize, 4)
	codec.PutInt16(header, posDataOff, int16(DataOffset))
	codec.PutInt32(header, posChecksum, int32(crc32.ChecksumIEEE(header[posLength:DataOffset])))

	path := filepath.Join(t.TempDir(), "handmade.mmqf")
	body := make([]byte, FileSize(4, 2))
	copy(body, header)
	require.NoError(t, os.WriteFile(path, body, 0600))

	f := openTestFile(t, path)
	assert.NoError(t, Validate(f))

	schemaID, err := FileSchemaID(f)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), schemaID)
}

func TestFormatError_Sentinels(t *testing.T) {
	err := errorf(KindChecksumMismatch, "stored %08x", 0xabcd)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
	assert.False(t, errors.Is(err, ErrInvalidFormat))
	assert.Contains(t, err.Error(), "checksum")
}

func openTestFile(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func corruptByte(t *testing.T, path string, off int64, b byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteAt([]byte{b}, off)
	require.NoError(t, err)
}

func flipBit(t *testing.T, path string, off int64, bit int) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	defer f.Close()

	var b [1]byte
	_, err = f.ReadAt(b[:], off)
	require.NoError(t, err)
	b[0] ^= 1 << bit
	_, err = f.WriteAt(b[:], off)
	require.NoError(t, err)
}
