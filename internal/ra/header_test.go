package ra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeader(num uint16) *Header {
	h := &Header{
		MsgNum:     num,
		StartBlock: 4,
		NumBlocks:  2,
		DestNet:    104,
		DestNode:   56,
		OrigNet:    102,
		OrigNode:   901,
		DestZone:   1,
		OrigZone:   1,
		MsgAttr:    MsgNetmail | MsgPrivate,
		NetAttr:    NetCrashMail,
		Board:      2,
	}
	h.SetPostTime("12:34")
	h.SetPostDate("01-01-92")
	h.SetTo("Sysop")
	h.SetFrom("Fredric Rice")
	h.SetSubject("Hello")
	return h
}

func TestHeaderEncodedLayout(t *testing.T) {
	raw := EncodeHeader(sampleHeader(9))
	require.Len(t, raw, HeaderRecordSize)

	assert.Equal(t, []byte{9, 0}, raw[0:2])
	assert.Equal(t, byte(1), raw[20], "dest zone")
	assert.Equal(t, byte(MsgNetmail|MsgPrivate), raw[24])
	assert.Equal(t, byte(NetCrashMail), raw[25])
	assert.Equal(t, byte(2), raw[26], "board")
	assert.Equal(t, byte(5), raw[27])
	assert.Equal(t, "12:34", string(raw[28:33]))
	assert.Equal(t, byte(8), raw[33])
	assert.Equal(t, "01-01-92", string(raw[34:42]))
	assert.Equal(t, byte(5), raw[42])
	assert.Equal(t, "Sysop", string(raw[43:48]))
	assert.Equal(t, byte(12), raw[78])
	assert.Equal(t, byte(5), raw[114])
	assert.Equal(t, "Hello", string(raw[115:120]))

	h, err := DecodeHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sysop", h.To())
	assert.Equal(t, "Fredric Rice", h.From())
	assert.Equal(t, "Hello", h.Subject())
	assert.Equal(t, "12:34", h.PostTime())
	assert.Equal(t, "01-01-92", h.PostDate())
}

func TestHeaderStringTruncation(t *testing.T) {
	h := &Header{}
	h.SetTo("0123456789012345678901234567890123456789")
	assert.Equal(t, uint8(35), h.ToLen)
	h.SetTo("ab")
	assert.Equal(t, "ab", h.To())
	assert.Equal(t, byte(0), h.ToBuf[2])

	// a length byte larger than the buffer is clamped on read
	h.SubjectLen = 200
	assert.Len(t, h.Subject(), 72)
}

func TestAppendAndReadHeader(t *testing.T) {
	b := openTestBase(t)

	pos, err := b.AppendHeader(sampleHeader(1))
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	pos, err = b.AppendHeader(sampleHeader(2))
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	n, err := b.HeaderCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	h, err := b.ReadHeader(1)
	require.NoError(t, err)
	assert.Equal(t, *sampleHeader(2), *h)
}

func TestForEachHeaderRewritesChanges(t *testing.T) {
	b := openTestBase(t)
	for i := uint16(1); i <= 3; i++ {
		_, err := b.AppendHeader(sampleHeader(i))
		require.NoError(t, err)
	}
	before, err := os.ReadFile(filepath.Join(b.Root, HeaderFile))
	require.NoError(t, err)

	var seen []uint16
	err = b.ForEachHeader(func(pos int, h *Header) Action {
		seen = append(seen, h.MsgNum)
		if pos == 1 {
			h.MsgAttr |= MsgDeleted
		}
		return Continue
	})
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3}, seen)

	after, err := os.ReadFile(filepath.Join(b.Root, HeaderFile))
	require.NoError(t, err)
	assert.Equal(t, before[:HeaderRecordSize], after[:HeaderRecordSize])
	assert.Equal(t, before[2*HeaderRecordSize:], after[2*HeaderRecordSize:])

	h, err := b.ReadHeader(1)
	require.NoError(t, err)
	assert.NotZero(t, h.MsgAttr&MsgDeleted)
}

func TestForEachHeaderStopAndTornTail(t *testing.T) {
	b := openTestBase(t)
	for i := uint16(1); i <= 3; i++ {
		_, err := b.AppendHeader(sampleHeader(i))
		require.NoError(t, err)
	}

	count := 0
	require.NoError(t, b.ForEachHeader(func(pos int, h *Header) Action {
		count++
		return Stop
	}))
	assert.Equal(t, 1, count)

	_, err := b.hdr.WriteAt([]byte{1, 2, 3}, 3*HeaderRecordSize)
	require.NoError(t, err)

	count = 0
	require.NoError(t, b.ForEachHeader(func(pos int, h *Header) Action {
		count++
		return Continue
	}))
	assert.Equal(t, 3, count, "partial trailing record ends iteration")
}
