package ra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBase(t *testing.T) *Base {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, Create(root))
	b, err := Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func sizeOf(t *testing.T, root, name string) int64 {
	t.Helper()
	st, err := os.Stat(filepath.Join(root, name))
	require.NoError(t, err)
	return st.Size()
}

func TestCreateLayout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Create(root))

	assert.Equal(t, int64(CountsSize), sizeOf(t, root, CountsFile))
	for _, name := range []string{IndexFile, RecipientFile, HeaderFile, TextFile} {
		assert.Equal(t, int64(0), sizeOf(t, root, name), name)
	}

	require.ErrorIs(t, Create(root), ErrBaseExists)
}

func TestOpenMissingFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Create(root))
	require.NoError(t, os.Remove(filepath.Join(root, TextFile)))

	_, err := Open(root)
	require.ErrorIs(t, err, ErrBaseOpen)

	// a failed Open must not leave the lock behind
	_, err = os.Stat(filepath.Join(root, LockFile))
	assert.True(t, os.IsNotExist(err))
}

func TestClosedBase(t *testing.T) {
	b := openTestBase(t)
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.checkOpen(), ErrBaseNotOpen)

	_, err := b.ReadCounts()
	require.ErrorIs(t, err, ErrBaseNotOpen)
}

func TestCountsRoundTrip(t *testing.T) {
	b := openTestBase(t)

	c, err := b.ReadCounts()
	require.NoError(t, err)
	assert.Equal(t, Counts{}, *c)

	num, err := c.Add(3)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), num)
	num, err = c.Add(200)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), num)
	require.NoError(t, b.WriteCounts(c))

	got, err := b.ReadCounts()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), got.Highest)
	assert.Equal(t, uint16(2), got.Total)
	assert.Equal(t, uint16(0), got.Lowest)
	assert.Equal(t, uint16(1), got.Board[2])
	assert.Equal(t, uint16(1), got.Board[199])
	assert.Equal(t, int64(CountsSize), sizeOf(t, b.Root, CountsFile))

	raw, err := os.ReadFile(filepath.Join(b.Root, CountsFile))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 2, 0, 2, 0}, raw[:6])
	assert.Equal(t, []byte{1, 0}, raw[6+2*2:6+2*3])
}

func TestCountsAddLimits(t *testing.T) {
	var c Counts
	_, err := c.Add(0)
	require.ErrorIs(t, err, ErrInvalidBoard)
	_, err = c.Add(MaxBoards + 1)
	require.ErrorIs(t, err, ErrInvalidBoard)

	c.Highest = 0xFFFF
	_, err = c.Add(1)
	require.ErrorIs(t, err, ErrBaseFull)
	assert.Equal(t, uint16(0), c.Total, "counts untouched on failure")
}

func TestIndexAndRecipient(t *testing.T) {
	b := openTestBase(t)

	require.NoError(t, b.AppendIndex(IndexEntry{MsgNum: 0x0102, Board: 7}))
	require.NoError(t, b.AppendIndex(IndexEntry{MsgNum: 2, Board: 1}))
	require.NoError(t, b.AppendRecipient("Sysop"))
	require.NoError(t, b.AppendRecipient("A name that is much longer than thirty five bytes"))

	e, err := b.ReadIndex(0)
	require.NoError(t, err)
	assert.Equal(t, IndexEntry{MsgNum: 0x0102, Board: 7}, e)

	raw, err := os.ReadFile(filepath.Join(b.Root, IndexFile))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 7, 2, 0, 1}, raw)

	name, err := b.ReadRecipient(0)
	require.NoError(t, err)
	assert.Equal(t, "Sysop", name)
	name, err = b.ReadRecipient(1)
	require.NoError(t, err)
	assert.Len(t, name, 35)

	assert.Equal(t, int64(2*RecipientRecordSize), sizeOf(t, b.Root, RecipientFile))

	_, err = b.ReadIndex(5)
	require.Error(t, err)
}

func TestAppendRecordOverwritesTornTail(t *testing.T) {
	b := openTestBase(t)
	require.NoError(t, b.AppendIndex(IndexEntry{MsgNum: 1, Board: 1}))

	// simulate a crash mid-write
	_, err := b.idx.WriteAt([]byte{0xEE}, IndexRecordSize)
	require.NoError(t, err)

	require.NoError(t, b.AppendIndex(IndexEntry{MsgNum: 2, Board: 1}))
	assert.Equal(t, int64(2*IndexRecordSize), sizeOf(t, b.Root, IndexFile))
	e, err := b.ReadIndex(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), e.MsgNum)
}

func TestTextBlocks(t *testing.T) {
	tests := []struct {
		size   int
		blocks int
	}{
		{0, 0},
		{1, 1},
		{254, 1},
		{255, 1},
		{256, 2},
		{510, 2},
		{511, 3},
	}
	for _, tt := range tests {
		b := openTestBase(t)
		body := bytes.Repeat([]byte{'x'}, tt.size)
		if tt.size > 0 {
			body[tt.size-1] = 0x8d
		}

		start, count, err := b.AppendText(body)
		require.NoError(t, err, "size %d", tt.size)
		assert.Equal(t, 0, start)
		assert.Equal(t, tt.blocks, count, "size %d", tt.size)
		assert.Equal(t, int64(tt.blocks*BlockSize), sizeOf(t, b.Root, TextFile))

		got, err := b.ReadText(start, count)
		require.NoError(t, err)
		if tt.size == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, body, got, "size %d", tt.size)
	}
}

func TestTextBlockLayout(t *testing.T) {
	b := openTestBase(t)
	_, _, err := b.AppendText([]byte("first"))
	require.NoError(t, err)

	start, count, err := b.AppendText(bytes.Repeat([]byte{'y'}, 300))
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, count)

	raw, err := os.ReadFile(filepath.Join(b.Root, TextFile))
	require.NoError(t, err)
	require.Len(t, raw, 3*BlockSize)
	assert.Equal(t, byte(5), raw[0])
	assert.Equal(t, "first", string(raw[1:6]))
	assert.Equal(t, byte(0), raw[6], "blocks are NUL padded")
	assert.Equal(t, byte(255), raw[BlockSize])
	assert.Equal(t, byte(45), raw[2*BlockSize])

	_, err = b.ReadText(2, 5)
	require.ErrorIs(t, err, ErrCorruptRecord)
}
