package area

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Routing file names searched by Find.
const (
	LegacyFile = "FDTORA.CFG"
	JSON5File  = "fdbridge.json5"
)

type fileConfig struct {
	Root  string `json:"root"`
	Areas []Area `json:"areas"`
}

// ParseLegacy reads the FDTORA.CFG text format. Leading whitespace is
// skipped; lines that are then two characters or shorter, or start with
// ';', are ignored. The first remaining line is the message base root and
// every later line is "directory<space or tab>tag". A line with no tag
// field is ignored.
func ParseLegacy(r io.Reader) (string, []Area, error) {
	var root string
	var defs []Area

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimLeft(sc.Text(), " \t")
		line = strings.TrimRight(line, "\r")
		if len(line) <= 2 || line[0] == ';' {
			continue
		}
		if root == "" {
			root = strings.TrimRight(line, " \t")
			continue
		}

		cut := strings.IndexAny(line, " \t")
		if cut < 0 {
			continue
		}
		dir := line[:cut]
		tag := leadingTag(strings.TrimLeft(line[cut:], " \t"))
		if tag < 0 {
			return "", nil, fmt.Errorf("%w: line %d: bad tag in %q", ErrConfiguration, lineNo, line)
		}
		defs = append(defs, Area{Dir: dir, Tag: tag})
	}
	if err := sc.Err(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if root == "" {
		return "", nil, fmt.Errorf("%w: no message base root", ErrConfiguration)
	}
	return root, defs, nil
}

// leadingTag parses the digits at the start of s. No digits reads as 0,
// which New treats as an unroutable area; -1 means the value overflowed.
func leadingTag(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return -1
	}
	return n
}

// ParseJSON5 reads the JSON5 routing format:
//
//	{ root: "/bbs/ra", areas: [ { dir: "/fd/echo1", tag: 1 } ] }
func ParseJSON5(data []byte) (string, []Area, error) {
	var c fileConfig
	if err := json5.Unmarshal(data, &c); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if c.Root == "" {
		return "", nil, fmt.Errorf("%w: no message base root", ErrConfiguration)
	}
	return c.Root, c.Areas, nil
}

// LoadFile parses path in the format its extension implies and builds a
// registry from it.
func LoadFile(path string, log logrus.FieldLogger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, path, err)
	}

	var root string
	var defs []Area
	if strings.EqualFold(filepath.Ext(path), ".json5") || strings.EqualFold(filepath.Ext(path), ".json") {
		root, defs, err = ParseJSON5(data)
	} else {
		root, defs, err = ParseLegacy(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(root, defs, log)
}

// Find returns the routing file in dir, preferring the JSON5 form. An empty
// dir means the working directory.
func Find(dir string) (string, error) {
	for _, name := range []string{JSON5File, LegacyFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no %s or %s in %q", ErrNotFound, JSON5File, LegacyFile, dir)
}
