package journal

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/ra"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestBeginCommit(t *testing.T) {
	j := openJournal(t)

	e, err := j.Pending()
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, j.Begin(Entry{Run: "r1", Source: "/fd/1.MSG", OrigCost: 5,
		Snapshot: &ra.Snapshot{Counts: make([]byte, ra.CountsSize), TextSize: 512}}))

	e, err = j.Pending()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "/fd/1.MSG", e.Source)
	assert.Equal(t, int16(5), e.OrigCost)
	assert.Equal(t, int64(512), e.Snapshot.TextSize)
	assert.False(t, e.CreatedAt.IsZero())

	require.NoError(t, j.Commit())
	e, err = j.Pending()
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	require.NoError(t, j.Begin(Entry{}))
	require.NoError(t, j.Commit())
	require.NoError(t, j.RecordRun(Run{}))
	e, err := j.Pending()
	require.NoError(t, err)
	assert.Nil(t, e)
	require.NoError(t, j.Close())
}

func TestClosedJournal(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.ErrorIs(t, j.Begin(Entry{}), ErrJournalClosed)
}

func TestRecoverRollsBack(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ra.Create(root))
	base, err := ra.Open(root)
	require.NoError(t, err)
	defer base.Close()

	src := filepath.Join(t.TempDir(), "1.MSG")
	m := &ftn.Message{Cost: 3}
	ftn.SetField(m.From[:], "Sysop")
	require.NoError(t, ftn.CreateFile(src, m, bytes.NewReader([]byte("body"))))

	j := openJournal(t)
	snap, err := base.Snapshot()
	require.NoError(t, err)
	require.NoError(t, j.Begin(Entry{Run: "r1", Source: src, OrigCost: m.Cost, Snapshot: snap}))

	// the toss gets as far as marking the source and two appends
	m.MarkTossed()
	require.NoError(t, ftn.RewriteHeader(src, m))
	_, _, err = base.AppendText([]byte("body"))
	require.NoError(t, err)
	require.NoError(t, base.AppendIndex(ra.IndexEntry{MsgNum: 1, Board: 1}))

	logger, hook := test.NewNullLogger()
	done, err := j.Recover(base, logger)
	require.NoError(t, err)
	assert.True(t, done)
	assert.NotEmpty(t, hook.Entries)

	st, err := base.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Blocks)
	assert.Equal(t, 0, st.Index)

	got, _, err := ftn.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, int16(3), got.Cost)
	assert.False(t, got.IsTossed())

	e, err := j.Pending()
	require.NoError(t, err)
	assert.Nil(t, e)

	done, err = j.Recover(base, logger)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecoverMissingSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ra.Create(root))
	base, err := ra.Open(root)
	require.NoError(t, err)
	defer base.Close()

	j := openJournal(t)
	snap, err := base.Snapshot()
	require.NoError(t, err)
	require.NoError(t, j.Begin(Entry{Source: filepath.Join(root, "gone.MSG"), Snapshot: snap}))

	logger, _ := test.NewNullLogger()
	done, err := j.Recover(base, logger)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRunsHistory(t *testing.T) {
	j := openJournal(t)
	for i := 0; i < historyLimit+5; i++ {
		require.NoError(t, j.RecordRun(Run{ID: fmt.Sprintf("run-%d", i), Inbound: i}))
	}

	runs, err := j.Runs(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, fmt.Sprintf("run-%d", historyLimit+4), runs[0].ID)
	assert.Equal(t, historyLimit+2, runs[2].Inbound)

	all, err := j.Runs(1000)
	require.NoError(t, err)
	assert.Len(t, all, historyLimit)
	assert.Equal(t, "run-5", all[len(all)-1].ID)
}
