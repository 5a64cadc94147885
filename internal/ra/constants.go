// Package ra implements the RemoteAccess / QuickBBS message base: five
// fixed-name files that together form one append-only store.
//
//	MSGINFO.BBS   counts record, rewritten in place
//	MSGIDX.BBS    message number / board pairs
//	MSGTOIDX.BBS  recipient names, parallel to MSGIDX.BBS
//	MSGHDR.BBS    187-byte header records
//	MSGTXT.BBS    256-byte text blocks
package ra

import "errors"

// File names relative to the message base root.
const (
	CountsFile    = "MSGINFO.BBS"
	IndexFile     = "MSGIDX.BBS"
	RecipientFile = "MSGTOIDX.BBS"
	HeaderFile    = "MSGHDR.BBS"
	TextFile      = "MSGTXT.BBS"
	LockFile      = "FDBRIDGE.BSY"
)

// Record sizes on disk.
const (
	MaxBoards           = 200
	CountsSize          = 6 + 2*MaxBoards // 406
	IndexRecordSize     = 3
	RecipientRecordSize = 36
	HeaderRecordSize    = 187
	BlockSize           = 256
	BlockPayload        = BlockSize - 1
	MaxBlocks           = 0xFFFF
)

// MsgAttr is the header's message attribute byte.
type MsgAttr uint8

// Message attribute flags.
const (
	MsgDeleted     MsgAttr = 0x01
	MsgUnmovedNet  MsgAttr = 0x02
	MsgNetmail     MsgAttr = 0x04
	MsgPrivate     MsgAttr = 0x08
	MsgReceived    MsgAttr = 0x10
	MsgUnmovedEcho MsgAttr = 0x20
	MsgLocal       MsgAttr = 0x40
	MsgReserved    MsgAttr = 0x80
)

// NetAttr is the header's network attribute byte.
type NetAttr uint8

// Network attribute flags.
const (
	NetKillSent        NetAttr = 0x01
	NetSentOK          NetAttr = 0x02
	NetFileAttach      NetAttr = 0x04
	NetCrashMail       NetAttr = 0x08
	NetRequestReceipt  NetAttr = 0x10
	NetAuditRequest    NetAttr = 0x20
	NetIsReturnReceipt NetAttr = 0x40
	NetReserved        NetAttr = 0x80
)

// Sentinel errors
var (
	ErrBaseOpen      = errors.New("ra: cannot open message base")
	ErrBaseExists    = errors.New("ra: message base already exists")
	ErrBaseNotOpen   = errors.New("ra: message base not open")
	ErrLocked        = errors.New("ra: message base is locked")
	ErrCorruptRecord = errors.New("ra: corrupt or truncated record")
	ErrStorageRead   = errors.New("ra: read failed")
	ErrStorageWrite  = errors.New("ra: write failed")
	ErrStorageSeek   = errors.New("ra: seek failed")
	ErrBaseFull      = errors.New("ra: message base full")
	ErrInvalidBoard  = errors.New("ra: invalid board number")
)
