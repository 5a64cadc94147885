package ftn

import "golang.org/x/text/encoding/charmap"

// Display decodes a CP437 name or subject for log output. Stored bytes are
// never converted; this is for humans only.
func Display(s string) string {
	out, err := charmap.CodePage437.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}
