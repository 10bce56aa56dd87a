package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/mmqueue/pkg/queuefile"
)

func TestCreateCommand(t *testing.T) {
	qp := filepath.Join(t.TempDir(), "q.mmqf")

	rootCmd.SetArgs([]string{"create", "-q", qp, "--capacity", "4", "--slot-size", "8", "--schema-id", "5"})
	require.NoError(t, rootCmd.Execute())

	qf, err := queuefile.Open(qp)
	require.NoError(t, err)
	defer qf.Close()

	assert.Equal(t, 4, qf.Capacity())
	assert.Equal(t, 8, qf.SlotSize())
	assert.Equal(t, uint64(5), qf.SchemaID())
}

func TestEnqueueCommand(t *testing.T) {
	qp := filepath.Join(t.TempDir(), "q.mmqf")

	rootCmd.SetArgs([]string{"create", "-q", qp, "--capacity", "4", "--slot-size", "8", "--schema-id", "5"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"enqueue", "-q", qp, "--int", "42"})
	require.NoError(t, rootCmd.Execute())

	qf, err := queuefile.Open(qp)
	require.NoError(t, err)
	defer qf.Close()

	// One committed element in the control block.
	buf := qf.DataBuffer()
	assert.Equal(t, byte(1), buf[16])
}
