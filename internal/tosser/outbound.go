package tosser

import (
	"bytes"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stlalpha/fdbridge/internal/attr"
	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/logging"
	"github.com/stlalpha/fdbridge/internal/ra"
)

// selection is why a header was picked for export.
type selection int

const (
	notSelected selection = iota
	selectedEcho
	selectedNetmail
	selectedRescan
)

func (s selection) String() string {
	switch s {
	case selectedEcho:
		return "echo"
	case selectedNetmail:
		return "net"
	case selectedRescan:
		return "rescan"
	}
	return "none"
}

// selectHeader applies the export rules: unmoved echo mail, then netmail,
// then a rescan match on the sender. Deleted headers are not rescanned.
func selectHeader(h *ra.Header, rescan string) selection {
	switch {
	case h.MsgAttr&ra.MsgUnmovedEcho != 0:
		return selectedEcho
	case h.MsgAttr&ra.MsgNetmail != 0:
		return selectedNetmail
	case rescan != "" && h.MsgAttr&ra.MsgDeleted == 0 && strings.EqualFold(h.From(), rescan):
		return selectedRescan
	}
	return notSelected
}

// outboundMessage builds the *.MSG header for h. The message is born marked
// so the inbound pass never brings it back.
func outboundMessage(h *ra.Header) (*ftn.Message, error) {
	date, err := ftn.FormatDate(h.PostDate(), h.PostTime())
	if err != nil {
		return nil, err
	}
	m := &ftn.Message{
		DestNode: h.DestNode,
		OrigNode: h.OrigNode,
		OrigNet:  h.OrigNet,
		DestNet:  h.DestNet,
		DestZone: uint16(h.DestZone),
		OrigZone: uint16(h.OrigZone),
		Attr:     attr.RAToFTN(h.MsgAttr, h.NetAttr),
	}
	ftn.SetField(m.From[:], h.From())
	ftn.SetField(m.To[:], h.To())
	ftn.SetField(m.Subject[:], h.Subject())
	ftn.SetField(m.DateTime[:], date)
	m.MarkTossed()
	return m, nil
}

// nextNumber caches the highest message number of the directory the last
// candidate went to.
type nextNumber struct {
	dir  string
	high int
}

func (n *nextNumber) next(dir string) (int, error) {
	if n.dir != dir {
		high, err := ftn.HighestNumber(dir)
		if err != nil {
			n.dir = ""
			return 0, err
		}
		n.dir, n.high = dir, high
	}
	return n.high + 1, nil
}

func (n *nextNumber) used(num int) { n.high = num }

func (n *nextNumber) reset() { n.dir = "" }

// lockRefreshEvery is how many headers the outbound pass reads between lock
// refreshes.
const lockRefreshEvery = 512

// processOutbound walks every header once and exports the selected ones.
// A candidate that cannot be written is abandoned and left selected for the
// next run; only a failed header rewrite stops the pass.
func (t *Tosser) processOutbound(base *ra.Base, log logrus.FieldLogger, res *TossResult) error {
	if t.opts.RescanName != "" {
		log.WithField("name", t.opts.RescanName).Info("re-scanning for mail")
	}

	var numbers nextNumber
	abandon := func(h *ra.Header, err error, fields logrus.Fields) ra.Action {
		log.WithError(err).WithFields(fields).WithField("msgnum", h.MsgNum).Error("message not tossed to *.MSG format")
		res.Abandoned++
		t.metrics.Abandon()
		return ra.Continue
	}

	return base.ForEachHeader(func(pos int, h *ra.Header) ra.Action {
		if pos%lockRefreshEvery == 0 {
			keepLock(base, log)
		}
		why := selectHeader(h, t.opts.RescanName)
		logging.Debug("header %d board %d selected=%s attr=%#02x", pos, h.Board, why, uint8(h.MsgAttr))
		if why == notSelected {
			return ra.Continue
		}

		a, ok := t.areas.ByTag(int(h.Board))
		if !ok {
			logging.Debug("message for board %d ignored", h.Board)
			res.Rejected++
			return ra.Continue
		}

		num, err := numbers.next(a.Dir)
		if err != nil {
			return abandon(h, err, logrus.Fields{"dir": a.Dir})
		}
		path := ftn.MessagePath(a.Dir, num)
		fields := logrus.Fields{"board": a.Tag, "file": path, "kind": why.String()}

		msg, err := outboundMessage(h)
		if err != nil {
			return abandon(h, err, fields)
		}
		body, err := base.ReadText(int(h.StartBlock), int(h.NumBlocks))
		if err != nil {
			return abandon(h, err, fields)
		}
		if err := ftn.CreateFile(path, msg, bytes.NewReader(body)); err != nil {
			numbers.reset()
			return abandon(h, err, fields)
		}
		numbers.used(num)

		switch why {
		case selectedEcho:
			h.MsgAttr &^= ra.MsgUnmovedEcho
		case selectedNetmail:
			h.MsgAttr &^= ra.MsgNetmail
		}
		if t.opts.Kill {
			h.MsgAttr |= ra.MsgDeleted
		}

		res.MessagesExported++
		t.metrics.TossedOutbound()
		log.WithFields(fields).WithFields(logrus.Fields{
			"msgnum": h.MsgNum,
			"from":   ftn.Display(h.From()),
		}).Info("tossed to *.MSG")
		return ra.Continue
	})
}
