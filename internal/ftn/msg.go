// Package ftn implements the FTS-0001 stored message format (*.MSG): one
// message per file, a fixed 190-byte header followed by the message text.
package ftn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the fixed size of a stored message header.
const HeaderSize = 190

// TossedCost is written into the cost field of a message once it has been
// moved into the message base. Any cost at or above TossedThreshold is
// treated as already moved.
const (
	TossedCost      = 43
	TossedThreshold = 42
)

// Field widths, including the NUL terminator.
const (
	FromLen    = 36
	ToLen      = 36
	SubjectLen = 72
	DateLen    = 20
)

// Errors
var (
	ErrCorruptRecord = errors.New("ftn: corrupt or truncated message header")
	ErrOpenMessage   = errors.New("ftn: cannot open message file")
	ErrReadMessage   = errors.New("ftn: cannot read message file")
	ErrWriteMessage  = errors.New("ftn: cannot write message file")
)

// Attr is the 16-bit stored message attribute word.
type Attr uint16

// Stored message attribute flags (FTS-0001).
const (
	AttrPrivate       Attr = 0x0001
	AttrCrash         Attr = 0x0002
	AttrRead          Attr = 0x0004
	AttrSent          Attr = 0x0008
	AttrFileAttach    Attr = 0x0010
	AttrForward       Attr = 0x0020 // in transit
	AttrOrphan        Attr = 0x0040
	AttrKill          Attr = 0x0080
	AttrLocal         Attr = 0x0100
	AttrHold          Attr = 0x0200
	AttrReserved1     Attr = 0x0400
	AttrFileRequest   Attr = 0x0800
	AttrReturnReceipt Attr = 0x1000 // return receipt requested
	AttrIsReceipt     Attr = 0x2000
	AttrAuditRequest  Attr = 0x4000
	AttrUpdateRequest Attr = 0x8000
)

// Message is the on-disk stored message header. The field order and widths
// match the file layout exactly, so the struct can be read and written with
// encoding/binary. String fields are NUL padded CP437.
type Message struct {
	From      [FromLen]byte
	To        [ToLen]byte
	Subject   [SubjectLen]byte
	DateTime  [DateLen]byte
	TimesRead uint16
	DestNode  uint16
	OrigNode  uint16
	Cost      int16
	OrigNet   uint16
	DestNet   uint16
	DestZone  uint16
	OrigZone  uint16
	DestPoint uint16
	OrigPoint uint16
	ReplyTo   uint16
	Attr      Attr
	NextReply uint16
}

// Sender returns the From field up to its NUL terminator.
func (m *Message) Sender() string { return Field(m.From[:]) }

// Recipient returns the To field up to its NUL terminator.
func (m *Message) Recipient() string { return Field(m.To[:]) }

// Title returns the Subject field up to its NUL terminator.
func (m *Message) Title() string { return Field(m.Subject[:]) }

// Date returns the textual date field.
func (m *Message) Date() string { return Field(m.DateTime[:]) }

// Origin returns the originating address.
func (m *Message) Origin() Address {
	return Address{Zone: int(m.OrigZone), Net: int(m.OrigNet), Node: int(m.OrigNode), Point: int(m.OrigPoint)}
}

// Destination returns the destination address.
func (m *Message) Destination() Address {
	return Address{Zone: int(m.DestZone), Net: int(m.DestNet), Node: int(m.DestNode), Point: int(m.DestPoint)}
}

// IsTossed reports whether the message carries the transferred marker.
func (m *Message) IsTossed() bool { return m.Cost >= TossedThreshold }

// MarkTossed sets the transferred marker.
func (m *Message) MarkTossed() { m.Cost = TossedCost }

// Field returns b up to (not including) the first NUL byte.
func Field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// SetField copies s into dst, truncating at the field width, and zero fills
// the rest. A value that fills the field has no NUL, which Field accepts.
func SetField(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Decode parses a stored message header from data and returns the message
// and the offset at which the text body begins.
func Decode(data []byte) (*Message, int, error) {
	if len(data) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes, need %d", ErrCorruptRecord, len(data), HeaderSize)
	}
	m := &Message{}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, m); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return m, HeaderSize, nil
}

// Encode returns the fixed header bytes for m. The body is not included.
func Encode(m *Message) []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	// Writes to a bytes.Buffer cannot fail for a fixed-size struct.
	_ = binary.Write(&buf, binary.LittleEndian, m)
	return buf.Bytes()
}

// ReadFile reads the message at path and returns its header and body.
func ReadFile(path string) (*Message, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrOpenMessage, path, err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrReadMessage, path, err)
	}
	m, off, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, data[off:], nil
}

// RewriteHeader overwrites only the header bytes of an existing message
// file. The body is left untouched.
func RewriteHeader(path string, m *Message) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOpenMessage, path, err)
	}
	if _, err := f.WriteAt(Encode(m), 0); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrWriteMessage, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteMessage, path, err)
	}
	return nil
}

// CreateFile writes a new message file containing the header for m followed
// by everything read from body. It refuses to overwrite an existing file.
// On any failure the partially written file is removed.
func CreateFile(path string, m *Message, body io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteMessage, path, err)
	}

	fail := func(err error) error {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", ErrWriteMessage, path, err)
	}

	if _, err := f.Write(Encode(m)); err != nil {
		return fail(err)
	}
	if _, err := io.Copy(f, body); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %s: %v", ErrWriteMessage, path, err)
	}
	return nil
}
