package ra

import (
	"errors"
	"fmt"
	"io"
)

// BlocksFor returns how many text blocks a body of n bytes occupies.
func BlocksFor(n int) int {
	return (n + BlockPayload - 1) / BlockPayload
}

// AppendText splits body into 255-byte chunks and appends one block per
// chunk in a single write. It returns the first block number and the block
// count. An empty body writes nothing and returns count 0.
func (b *Base) AppendText(body []byte) (start, count int, err error) {
	if err := b.checkOpen(); err != nil {
		return 0, 0, err
	}
	n, err := recordCount(b.txt, BlockSize)
	if err != nil {
		return 0, 0, err
	}
	count = BlocksFor(len(body))
	if n+int64(count) > MaxBlocks {
		return 0, 0, fmt.Errorf("%w: text file holds %d blocks", ErrBaseFull, n)
	}
	if count == 0 {
		return int(n), 0, nil
	}

	buf := make([]byte, count*BlockSize)
	for i := 0; i < count; i++ {
		chunk := body[i*BlockPayload:]
		if len(chunk) > BlockPayload {
			chunk = chunk[:BlockPayload]
		}
		blk := buf[i*BlockSize : (i+1)*BlockSize]
		blk[0] = uint8(len(chunk))
		copy(blk[1:], chunk)
	}
	if _, err := b.txt.WriteAt(buf, n*BlockSize); err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrStorageWrite, TextFile, err)
	}
	return int(n), count, nil
}

// ReadText reassembles count blocks starting at start.
func (b *Base) ReadText(start, count int) ([]byte, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]byte, count*BlockSize)
	if err := readRecord(b.txt, buf, int64(start)*BlockSize); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrCorruptRecord
		}
		return nil, fmt.Errorf("%s blocks %d+%d: %w", TextFile, start, count, err)
	}

	out := make([]byte, 0, count*BlockPayload)
	for i := 0; i < count; i++ {
		blk := buf[i*BlockSize : (i+1)*BlockSize]
		n := int(blk[0])
		if n > BlockPayload {
			n = BlockPayload
		}
		out = append(out, blk[1:1+n]...)
	}
	return out, nil
}
