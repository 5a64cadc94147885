// Package prompt holds the console interaction of a toss run: asking for
// the rescan name and rendering the end-of-run summary.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// NameLimit is the longest sender name a message base header can hold.
const NameLimit = 35

// ErrCancelled is returned when the operator escapes out of the prompt.
var ErrCancelled = errors.New("prompt: cancelled")

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type rescanModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newRescanModel() rescanModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "sender name"
	ti.CharLimit = NameLimit
	ti.Width = NameLimit
	ti.Focus()
	return rescanModel{input: ti}
}

func (m rescanModel) Init() tea.Cmd { return textinput.Blink }

func (m rescanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m rescanModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return labelStyle.Render("Enter name to re-scan for") + "\n" +
		m.input.View() + "\n" +
		hintStyle.Render("enter to accept, esc to skip") + "\n"
}

// Value is the entered name, trimmed and upper-cased.
func (m rescanModel) Value() string {
	return strings.ToUpper(strings.TrimSpace(m.input.Value()))
}

// RescanName asks for the sender name to re-scan for. On a terminal it runs
// an inline text input; otherwise it reads one line from in. The result is
// upper-cased; an empty result means no rescan.
func RescanName(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p := tea.NewProgram(newRescanModel(), tea.WithInput(f), tea.WithOutput(out))
		final, err := p.Run()
		if err != nil {
			return "", fmt.Errorf("prompt: %w", err)
		}
		m := final.(rescanModel)
		if m.cancelled {
			return "", ErrCancelled
		}
		return m.Value(), nil
	}
	return readLine(in, out)
}

func readLine(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter name to re-scan for: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("prompt: %w", err)
	}
	name := strings.ToUpper(strings.TrimSpace(line))
	if len(name) > NameLimit {
		name = name[:NameLimit]
	}
	return name, nil
}
