package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stlalpha/fdbridge/internal/tosser"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle   = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("7"))
	valueStyle = lipgloss.NewStyle().Align(lipgloss.Right).Width(6)
	warnStyle  = valueStyle.Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Summary renders the end-of-run report.
func Summary(res tosser.TossResult) string {
	row := func(label string, n int, warn bool) string {
		vs := valueStyle
		if warn && n > 0 {
			vs = warnStyle
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(label), vs.Render(fmt.Sprint(n)))
	}

	lines := []string{
		titleStyle.Render("fdbridge run " + shortID(res.RunID)),
		row("Tossed in", res.MessagesImported, false),
		row("Tossed out", res.MessagesExported, false),
		row("Already tossed", res.AlreadyTossed, false),
		row("Excluded", res.Excluded, false),
		row("Corrupt", res.Corrupt, true),
		row("Rejected", res.Rejected, true),
		row("Abandoned", res.Abandoned, true),
	}
	if res.Recovered {
		lines = append(lines, warnStyle.UnsetWidth().Render("interrupted toss rolled back"))
	}
	for _, e := range res.Errors {
		lines = append(lines, errStyle.Render(e))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
