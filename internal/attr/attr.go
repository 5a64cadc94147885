// Package attr maps message attributes between the FTN *.MSG word and the
// two attribute bytes of a message base header.
package attr

import (
	"github.com/stlalpha/fdbridge/internal/ftn"
	"github.com/stlalpha/fdbridge/internal/ra"
)

type msgRule struct {
	ftn ftn.Attr
	msg ra.MsgAttr
}

type netRule struct {
	ftn ftn.Attr
	net ra.NetAttr
}

var msgRules = []msgRule{
	{ftn.AttrPrivate, ra.MsgPrivate},
	{ftn.AttrRead, ra.MsgReceived},
	{ftn.AttrLocal, ra.MsgLocal},
}

var netRules = []netRule{
	{ftn.AttrCrash, ra.NetCrashMail},
	{ftn.AttrSent, ra.NetSentOK},
	{ftn.AttrFileAttach, ra.NetFileAttach},
	{ftn.AttrKill, ra.NetKillSent},
	{ftn.AttrReturnReceipt, ra.NetRequestReceipt},
	{ftn.AttrIsReceipt, ra.NetIsReturnReceipt},
	{ftn.AttrAuditRequest, ra.NetAuditRequest},
}

// FTNToRA translates an FTN attribute word. Bits with no counterpart
// (forward, orphan, hold, file and update requests) are dropped. The caller
// adds the area-kind bits.
func FTNToRA(a ftn.Attr) (ra.MsgAttr, ra.NetAttr) {
	var m ra.MsgAttr
	var n ra.NetAttr
	for _, r := range msgRules {
		if a&r.ftn != 0 {
			m |= r.msg
		}
	}
	for _, r := range netRules {
		if a&r.ftn != 0 {
			n |= r.net
		}
	}
	return m, n
}

// RAToFTN is the reverse mapping. The result always carries Local since
// anything exported from the base originated here.
func RAToFTN(m ra.MsgAttr, n ra.NetAttr) ftn.Attr {
	a := ftn.AttrLocal
	for _, r := range msgRules {
		if m&r.msg != 0 {
			a |= r.ftn
		}
	}
	for _, r := range netRules {
		if n&r.net != 0 {
			a |= r.ftn
		}
	}
	return a
}
