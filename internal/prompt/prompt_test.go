package prompt

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stlalpha/fdbridge/internal/tosser"
)

func TestRescanNameFromPipe(t *testing.T) {
	var out bytes.Buffer
	name, err := RescanName(strings.NewReader("  john doe \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "JOHN DOE", name)
	assert.Contains(t, out.String(), "re-scan")
}

func TestRescanNameNoNewline(t *testing.T) {
	name, err := RescanName(strings.NewReader("sysop"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "SYSOP", name)

	name, err = RescanName(strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestRescanNameTruncated(t *testing.T) {
	name, err := RescanName(strings.NewReader(strings.Repeat("x", 50)+"\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, name, NameLimit)
}

func typeInto(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestRescanModelEnter(t *testing.T) {
	var m tea.Model = newRescanModel()
	m = typeInto(m, "jane")
	assert.Contains(t, m.View(), "jane")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	rm := m.(rescanModel)
	assert.True(t, rm.done)
	assert.False(t, rm.cancelled)
	assert.Equal(t, "JANE", rm.Value())
	assert.Empty(t, rm.View())
}

func TestRescanModelEscape(t *testing.T) {
	var m tea.Model = newRescanModel()
	m = typeInto(m, "abc")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.(rescanModel).cancelled)
}

func TestSummary(t *testing.T) {
	out := Summary(tosser.TossResult{
		RunID:            "0123456789abcdef",
		MessagesImported: 3,
		MessagesExported: 2,
		Abandoned:        1,
		Recovered:        true,
		Errors:           []string{"outbound: ra: write failed"},
	})
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "89abcdef")
	assert.Contains(t, out, "Tossed in")
	assert.Contains(t, out, "Abandoned")
	assert.Contains(t, out, "rolled back")
	assert.Contains(t, out, "outbound: ra: write failed")
}
