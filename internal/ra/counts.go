package ra

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Counts is the MSGINFO.BBS record.
type Counts struct {
	Lowest  uint16
	Highest uint16
	Total   uint16
	Board   [MaxBoards]uint16
}

// Add records one more message on board (1-based) and returns the new
// message number.
func (c *Counts) Add(board int) (uint16, error) {
	if board < 1 || board > MaxBoards {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBoard, board)
	}
	if c.Highest == 0xFFFF || c.Total == 0xFFFF || c.Board[board-1] == 0xFFFF {
		return 0, ErrBaseFull
	}
	c.Highest++
	c.Total++
	c.Board[board-1]++
	return c.Highest, nil
}

// ReadCounts reads the counts record.
func (b *Base) ReadCounts() (*Counts, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	buf := make([]byte, CountsSize)
	if err := readRecord(b.info, buf, 0); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, CountsFile, err)
	}
	c := &Counts{}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, CountsFile, err)
	}
	return c, nil
}

// WriteCounts rewrites the counts record in place.
func (b *Base) WriteCounts(c *Counts) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.Grow(CountsSize)
	_ = binary.Write(&buf, binary.LittleEndian, c)
	if _, err := b.info.WriteAt(buf.Bytes(), 0); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, CountsFile, err)
	}
	return nil
}
