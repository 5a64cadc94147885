package commands

import "strings"

// legacySwitches maps the old slash switches to flags. A switch matches
// when its text starts with the name, ignoring case: /DELETEALL is /delete.
var legacySwitches = []struct {
	name string
	flag string
}{
	{"delete", "--delete"},
	{"kill", "--kill"},
	{"sin", "--skip-inbound"},
	{"sout", "--skip-outbound"},
	{"scan", "--scan"},
	{"diag", "--diag"},
}

// TranslateLegacy rewrites an old style command line into a toss command.
// No arguments at all is a plain toss. If the first argument is a slash
// switch, every slash switch is translated and anything unknown, including
// non-switch arguments, is ignored. Other command lines pass through.
func TranslateLegacy(args []string) []string {
	if len(args) == 0 {
		return []string{"toss"}
	}
	if !strings.HasPrefix(args[0], "/") {
		return args
	}

	out := []string{"toss"}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "/") {
			continue
		}
		body := strings.ToLower(strings.TrimSpace(arg[1:]))
		for _, sw := range legacySwitches {
			if strings.HasPrefix(body, sw.name) {
				out = append(out, sw.flag)
				break
			}
		}
	}
	return out
}
