package ftn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the stored message file extension.
const Ext = ".msg"

// IsMessageName reports whether name looks like a stored message file.
func IsMessageName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

// ListMessages returns the names of all stored message files in dir, in the
// order the directory read returns them (lexical).
func ListMessages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ftn: read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsMessageName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// HighestNumber returns the largest numeric file stem among the stored
// messages in dir, or 0 if there are none. Stems are read like atoi: leading
// digits only, so "12.MSG" is 12 and "ABC.MSG" is 0.
func HighestNumber(dir string) (int, error) {
	names, err := ListMessages(dir)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, name := range names {
		if n := leadingInt(name); n > highest {
			highest = n
		}
	}
	return highest, nil
}

// MessagePath returns the path of message number n in dir.
func MessagePath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.MSG", n))
}

func leadingInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			break
		}
	}
	return n
}
