package ra

import (
	"encoding/binary"
	"fmt"
)

// IndexEntry is one MSGIDX.BBS record.
type IndexEntry struct {
	MsgNum uint16
	Board  uint8
}

// AppendIndex appends a message number / board pair.
func (b *Base) AppendIndex(e IndexEntry) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	var rec [IndexRecordSize]byte
	binary.LittleEndian.PutUint16(rec[0:2], e.MsgNum)
	rec[2] = e.Board
	_, err := appendRecord(b.idx, IndexRecordSize, rec[:])
	return err
}

// ReadIndex returns the entry at pos.
func (b *Base) ReadIndex(pos int) (IndexEntry, error) {
	if err := b.checkOpen(); err != nil {
		return IndexEntry{}, err
	}
	var rec [IndexRecordSize]byte
	if err := readRecord(b.idx, rec[:], int64(pos)*IndexRecordSize); err != nil {
		return IndexEntry{}, fmt.Errorf("%s %d: %w", IndexFile, pos, err)
	}
	return IndexEntry{MsgNum: binary.LittleEndian.Uint16(rec[0:2]), Board: rec[2]}, nil
}

// AppendRecipient appends a length-prefixed recipient name, truncated to 35
// bytes.
func (b *Base) AppendRecipient(name string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	var rec [RecipientRecordSize]byte
	rec[0] = uint8(copy(rec[1:], name))
	_, err := appendRecord(b.toidx, RecipientRecordSize, rec[:])
	return err
}

// ReadRecipient returns the recipient name at pos.
func (b *Base) ReadRecipient(pos int) (string, error) {
	if err := b.checkOpen(); err != nil {
		return "", err
	}
	var rec [RecipientRecordSize]byte
	if err := readRecord(b.toidx, rec[:], int64(pos)*RecipientRecordSize); err != nil {
		return "", fmt.Errorf("%s %d: %w", RecipientFile, pos, err)
	}
	return pstring(rec[0], rec[1:]), nil
}
