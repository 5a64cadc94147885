package tosser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/attr"
	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/journal"
	"github.com/stlalpha/fdbridge/internal/logging"
	"github.com/stlalpha/fdbridge/internal/ra"
)

// Post time and date written when a message's own date cannot be parsed.
const (
	unknownPostTime = "00:00"
	unknownPostDate = "00-00-00"
)

func excluded(sender string) bool {
	return len(sender) >= len(ExcludedSender) &&
		strings.EqualFold(sender[:len(ExcludedSender)], ExcludedSender)
}

// processInbound tosses every untossed *.MSG in every area into the base.
// counts is the in-memory copy of the counts record and is kept current.
func (t *Tosser) processInbound(base *ra.Base, counts *ra.Counts, log logrus.FieldLogger, res *TossResult) error {
	for _, a := range t.areas.Areas() {
		names, err := ftn.ListMessages(a.Dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.WithField("dir", a.Dir).Warn("area directory does not exist")
				continue
			}
			return fmt.Errorf("%w: %s: %v", area.ErrConfiguration, a.Dir, err)
		}
		if len(names) == 0 {
			logging.Debug("no messages in %s", a.Dir)
			continue
		}
		log.WithFields(logrus.Fields{"area": a.Tag, "dir": a.Dir}).Info("looking at area")
		keepLock(base, log)

		for _, name := range names {
			if err := t.examine(base, counts, a, filepath.Join(a.Dir, name), log, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// keepLock refreshes the base lock so a long pass is not mistaken for a
// stale one by another process.
func keepLock(base *ra.Base, log logrus.FieldLogger) {
	if err := base.Touch(); err != nil {
		log.WithError(err).Warn("message base lock not refreshed")
	}
}

// examine decides whether one file is tossed. Only base or source write
// failures come back as errors.
func (t *Tosser) examine(base *ra.Base, counts *ra.Counts, a area.Area, path string, log logrus.FieldLogger, res *TossResult) error {
	msg, body, err := ftn.ReadFile(path)
	if err != nil {
		if errors.Is(err, ftn.ErrCorruptRecord) {
			log.WithError(err).WithField("file", path).Warn("skipping unreadable message")
			res.Corrupt++
			t.metrics.Skip("corrupt")
			return nil
		}
		return err
	}

	switch {
	case msg.IsTossed():
		logging.Debug("%s already tossed (cost %d)", path, msg.Cost)
		res.AlreadyTossed++
		t.metrics.Skip("tossed")
		return nil
	case excluded(msg.Sender()):
		logging.Debug("%s is from %s, not tossed", path, ftn.Display(msg.Sender()))
		res.Excluded++
		t.metrics.Skip("excluded")
		return nil
	}

	if err := t.tossMessage(base, counts, a, path, msg, body, log); err != nil {
		return err
	}
	res.MessagesImported++
	t.metrics.TossedInbound()

	if t.opts.Delete {
		if err := os.Remove(path); err != nil {
			log.WithError(err).WithField("file", path).Warn("tossed message not deleted")
		}
	}
	return nil
}

// tossMessage appends one message to the base. The source is marked before
// anything is appended; with a journal the whole sequence can be undone on
// the next start.
func (t *Tosser) tossMessage(base *ra.Base, counts *ra.Counts, a area.Area, path string, msg *ftn.Message, body []byte, log logrus.FieldLogger) error {
	if t.journal != nil {
		snap, err := base.Snapshot()
		if err != nil {
			return err
		}
		if err := t.journal.Begin(journal.Entry{
			Run:      runID(log),
			Source:   path,
			OrigCost: msg.Cost,
			Snapshot: snap,
		}); err != nil {
			return err
		}
	}

	msg.MarkTossed()
	if err := ftn.RewriteHeader(path, msg); err != nil {
		return err
	}

	start, count, err := base.AppendText(body)
	if err != nil {
		return err
	}

	next := *counts
	num, err := next.Add(a.Tag)
	if err != nil {
		return err
	}
	if err := base.WriteCounts(&next); err != nil {
		return err
	}
	*counts = next

	if err := base.AppendIndex(ra.IndexEntry{MsgNum: num, Board: uint8(a.Tag)}); err != nil {
		return err
	}
	if err := base.AppendRecipient(msg.Recipient()); err != nil {
		return err
	}

	h := inboundHeader(msg, num, start, count, a.Tag)
	if h.PostDate() == unknownPostDate {
		log.WithFields(logrus.Fields{"file": path, "date": msg.Date()}).Warn("unparseable message date")
	}
	if _, err := base.AppendHeader(h); err != nil {
		return err
	}

	if err := t.journal.Commit(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file":    path,
		"board":   a.Tag,
		"msgnum":  num,
		"from":    ftn.Display(msg.Sender()),
		"subject": ftn.Display(msg.Title()),
	}).Info("tossed to board")
	return nil
}

// inboundHeader builds the base header for a stored message. The area-kind
// bits stay clear: the message is already where it belongs.
func inboundHeader(msg *ftn.Message, num uint16, start, count, tag int) *ra.Header {
	h := &ra.Header{
		MsgNum:     num,
		PrevReply:  msg.ReplyTo,
		NextReply:  msg.NextReply,
		StartBlock: uint16(start),
		NumBlocks:  uint16(count),
		DestNet:    msg.DestNet,
		DestNode:   msg.DestNode,
		OrigNet:    msg.OrigNet,
		OrigNode:   msg.OrigNode,
		DestZone:   uint8(msg.DestZone),
		OrigZone:   uint8(msg.OrigZone),
		Board:      uint8(tag),
	}
	h.MsgAttr, h.NetAttr = attr.FTNToRA(msg.Attr)

	postTime, postDate, err := ftn.ParseDate(msg.Date())
	if err != nil {
		postTime, postDate = unknownPostTime, unknownPostDate
	}
	h.SetPostTime(postTime)
	h.SetPostDate(postDate)
	h.SetTo(msg.Recipient())
	h.SetFrom(msg.Sender())
	h.SetSubject(msg.Title())
	return h
}

func runID(log logrus.FieldLogger) string {
	if e, ok := log.(*logrus.Entry); ok {
		if id, ok := e.Data["run"].(string); ok {
			return id
		}
	}
	return ""
}
