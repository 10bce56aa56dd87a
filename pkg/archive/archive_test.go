package archive

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mmqueue/pkg/queue"
	"github.com/ssargent/mmqueue/pkg/queuefile"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_PutGetRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	id, err := a.Put([]byte("element"))
	require.NoError(t, err)

	got, err := a.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("element"), got)

	require.NoError(t, a.Delete(id))
	_, err = a.Get(id)
	assert.Error(t, err)
}

func TestArchive_Drain(t *testing.T) {
	a := openTestArchive(t)

	qpath := filepath.Join(t.TempDir(), "q.mmqf")
	q, err := queue.Create(qpath, queuefile.Geometry{SchemaID: 1, Capacity: 8, SlotSize: 4}, true)
	require.NoError(t, err)
	defer q.Close()

	for i := uint32(0); i < 5; i++ {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, i)
		require.NoError(t, q.Enqueue(b))
	}

	n, err := a.Drain(q)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, q.IsEmpty())

	// Keys iterate in insertion order, so the archive preserves the
	// drain order.
	keys, err := a.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 5)

	for i, id := range keys {
		data, err := a.Get(id)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(data))
	}
}

func TestArchive_DrainEmptyQueue(t *testing.T) {
	a := openTestArchive(t)

	qpath := filepath.Join(t.TempDir(), "q.mmqf")
	q, err := queue.Create(qpath, queuefile.Geometry{SchemaID: 1, Capacity: 2, SlotSize: 4}, true)
	require.NoError(t, err)
	defer q.Close()

	n, err := a.Drain(q)
	require.NoError(t, err)
	assert.Zero(t, n)
}
