package ra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRollback(t *testing.T) {
	b := openTestBase(t)

	c, err := b.ReadCounts()
	require.NoError(t, err)
	_, err = c.Add(1)
	require.NoError(t, err)
	require.NoError(t, b.WriteCounts(c))
	_, _, err = b.AppendText([]byte("kept"))
	require.NoError(t, err)

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(BlockSize), snap.TextSize)

	_, err = c.Add(2)
	require.NoError(t, err)
	require.NoError(t, b.WriteCounts(c))
	_, _, err = b.AppendText([]byte("lost"))
	require.NoError(t, err)
	require.NoError(t, b.AppendIndex(IndexEntry{MsgNum: 2, Board: 2}))
	require.NoError(t, b.AppendRecipient("All"))
	_, err = b.AppendHeader(sampleHeader(2))
	require.NoError(t, err)

	require.NoError(t, b.Rollback(snap))

	st, err := b.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), st.Counts.Highest)
	assert.Equal(t, uint16(0), st.Counts.Board[1])
	assert.Equal(t, 1, st.Blocks)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 0, st.Recipients)
	assert.Equal(t, 0, st.Headers)

	require.ErrorIs(t, b.Rollback(&Snapshot{}), ErrCorruptRecord)
}
