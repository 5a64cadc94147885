package ra

import (
	"fmt"
	"os"
)

// Snapshot records the size of every append-only file plus the raw counts
// record, enough to undo a run that died part way through.
type Snapshot struct {
	Counts        []byte `json:"counts"`
	IndexSize     int64  `json:"index_size"`
	RecipientSize int64  `json:"recipient_size"`
	HeaderSize    int64  `json:"header_size"`
	TextSize      int64  `json:"text_size"`
}

// Stats summarizes a base for reporting.
type Stats struct {
	Counts     Counts
	Index      int
	Recipients int
	Headers    int
	Blocks     int
}

func fileSize(f *os.File) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrStorageSeek, f.Name(), err)
	}
	return st.Size(), nil
}

// Snapshot captures the current file sizes and counts record.
func (b *Base) Snapshot() (*Snapshot, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	s := &Snapshot{Counts: make([]byte, CountsSize)}
	if err := readRecord(b.info, s.Counts, 0); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, CountsFile, err)
	}
	for _, p := range []struct {
		f   *os.File
		dst *int64
	}{
		{b.idx, &s.IndexSize},
		{b.toidx, &s.RecipientSize},
		{b.hdr, &s.HeaderSize},
		{b.txt, &s.TextSize},
	} {
		n, err := fileSize(p.f)
		if err != nil {
			return nil, err
		}
		*p.dst = n
	}
	return s, nil
}

// Rollback truncates the append-only files back to the snapshot sizes and
// restores the counts record. Header rewrites made since the snapshot are
// not undone.
func (b *Base) Rollback(s *Snapshot) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if len(s.Counts) != CountsSize {
		return fmt.Errorf("%w: snapshot counts is %d bytes", ErrCorruptRecord, len(s.Counts))
	}
	for _, p := range []struct {
		f    *os.File
		size int64
	}{
		{b.idx, s.IndexSize},
		{b.toidx, s.RecipientSize},
		{b.hdr, s.HeaderSize},
		{b.txt, s.TextSize},
	} {
		cur, err := fileSize(p.f)
		if err != nil {
			return err
		}
		if cur <= p.size {
			continue
		}
		if err := p.f.Truncate(p.size); err != nil {
			return fmt.Errorf("%w: truncate %s: %v", ErrStorageWrite, p.f.Name(), err)
		}
	}
	if _, err := b.info.WriteAt(s.Counts, 0); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, CountsFile, err)
	}
	return nil
}

// Stats reads the counts record and the record totals of each file.
func (b *Base) Stats() (*Stats, error) {
	c, err := b.ReadCounts()
	if err != nil {
		return nil, err
	}
	st := &Stats{Counts: *c}
	for _, p := range []struct {
		f    *os.File
		size int64
		dst  *int
	}{
		{b.idx, IndexRecordSize, &st.Index},
		{b.toidx, RecipientRecordSize, &st.Recipients},
		{b.hdr, HeaderRecordSize, &st.Headers},
		{b.txt, BlockSize, &st.Blocks},
	} {
		n, err := recordCount(p.f, p.size)
		if err != nil {
			return nil, err
		}
		*p.dst = int(n)
	}
	return st, nil
}
