package ra

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is one 187-byte MSGHDR.BBS record. String fields are Pascal style:
// a length byte followed by a fixed buffer.
type Header struct {
	MsgNum     uint16
	PrevReply  uint16
	NextReply  uint16
	TimesRead  uint16
	StartBlock uint16
	NumBlocks  uint16
	DestNet    uint16
	DestNode   uint16
	OrigNet    uint16
	OrigNode   uint16
	DestZone   uint8
	OrigZone   uint8
	Cost       uint16
	MsgAttr    MsgAttr
	NetAttr    NetAttr
	Board      uint8

	PostTimeLen uint8
	PostTimeBuf [5]byte
	PostDateLen uint8
	PostDateBuf [8]byte
	ToLen       uint8
	ToBuf       [35]byte
	FromLen     uint8
	FromBuf     [35]byte
	SubjectLen  uint8
	SubjectBuf  [72]byte
}

// Action tells ForEachHeader whether to keep going.
type Action int

const (
	Continue Action = iota
	Stop
)

func pstring(n uint8, buf []byte) string {
	if int(n) > len(buf) {
		n = uint8(len(buf))
	}
	return string(buf[:n])
}

func setPString(n *uint8, buf []byte, s string) {
	for i := range buf {
		buf[i] = 0
	}
	*n = uint8(copy(buf, s))
}

func (h *Header) PostTime() string { return pstring(h.PostTimeLen, h.PostTimeBuf[:]) }
func (h *Header) PostDate() string { return pstring(h.PostDateLen, h.PostDateBuf[:]) }
func (h *Header) To() string       { return pstring(h.ToLen, h.ToBuf[:]) }
func (h *Header) From() string     { return pstring(h.FromLen, h.FromBuf[:]) }
func (h *Header) Subject() string  { return pstring(h.SubjectLen, h.SubjectBuf[:]) }

func (h *Header) SetPostTime(s string) { setPString(&h.PostTimeLen, h.PostTimeBuf[:], s) }
func (h *Header) SetPostDate(s string) { setPString(&h.PostDateLen, h.PostDateBuf[:], s) }
func (h *Header) SetTo(s string)       { setPString(&h.ToLen, h.ToBuf[:], s) }
func (h *Header) SetFrom(s string)     { setPString(&h.FromLen, h.FromBuf[:], s) }
func (h *Header) SetSubject(s string)  { setPString(&h.SubjectLen, h.SubjectBuf[:], s) }

// EncodeHeader serializes h into its on-disk form.
func EncodeHeader(h *Header) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderRecordSize)
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// DecodeHeader parses one header record.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderRecordSize {
		return nil, fmt.Errorf("%w: header is %d bytes", ErrCorruptRecord, len(data))
	}
	h := &Header{}
	if err := binary.Read(bytes.NewReader(data[:HeaderRecordSize]), binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return h, nil
}

// AppendHeader appends h and returns its zero-based record position.
func (b *Base) AppendHeader(h *Header) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	pos, err := appendRecord(b.hdr, HeaderRecordSize, EncodeHeader(h))
	return int(pos), err
}

// ReadHeader returns the header at pos.
func (b *Base) ReadHeader(pos int) (*Header, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderRecordSize)
	if err := readRecord(b.hdr, buf, int64(pos)*HeaderRecordSize); err != nil {
		return nil, fmt.Errorf("%s %d: %w", HeaderFile, pos, err)
	}
	return DecodeHeader(buf)
}

// HeaderCount returns the number of whole header records.
func (b *Base) HeaderCount() (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	n, err := recordCount(b.hdr, HeaderRecordSize)
	return int(n), err
}

// ForEachHeader visits headers in file order. If fn changes the header it is
// written back to the same record before the next one is read. Iteration
// ends at end of file, at a torn trailing record, or when fn returns Stop.
func (b *Base) ForEachHeader(fn func(pos int, h *Header) Action) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	raw := make([]byte, HeaderRecordSize)
	for pos := 0; ; pos++ {
		off := int64(pos) * HeaderRecordSize
		err := readRecord(b.hdr, raw, off)
		if errors.Is(err, io.EOF) || errors.Is(err, ErrCorruptRecord) {
			return nil
		}
		if err != nil {
			return err
		}

		h, err := DecodeHeader(raw)
		if err != nil {
			return err
		}
		action := fn(pos, h)

		if enc := EncodeHeader(h); !bytes.Equal(enc, raw) {
			if _, err := b.hdr.WriteAt(enc, off); err != nil {
				return fmt.Errorf("%w: %s %d: %v", ErrStorageWrite, HeaderFile, pos, err)
			}
		}
		if action == Stop {
			return nil
		}
	}
}
