package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultScrollback is the number of lines a Terminal keeps.
const DefaultScrollback = 5000

// Terminal is a scrolling viewport of received lines. It keeps the raw
// messages so the whole history can be re-rendered when the display mode
// changes.
type Terminal struct {
	viewport   viewport.Model
	formatter  *LineFormatter
	lines      []LineMsg
	scrollback int
}

func NewTerminal(width, height int, mode DisplayMode) *Terminal {
	return &Terminal{
		viewport:   viewport.New(width, height),
		formatter:  NewLineFormatter(mode),
		scrollback: DefaultScrollback,
	}
}

func (t *Terminal) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) SetScrollback(n int) {
	if n > 0 {
		t.scrollback = n
		t.trim()
	}
}

// Add appends a line and follows the output.
func (t *Terminal) Add(msg LineMsg) {
	t.lines = append(t.lines, msg)
	t.trim()
	t.Refresh()
}

func (t *Terminal) Lines() []LineMsg {
	return t.lines
}

func (t *Terminal) Clear() {
	t.lines = nil
	t.viewport.SetContent("")
}

// Refresh re-renders every kept line with the current display mode.
func (t *Terminal) Refresh() {
	t.viewport.SetContent(strings.Join(t.formatter.FormatAll(t.lines), "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
	t.Refresh()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
	t.Refresh()
}

func (t *Terminal) ToggleTimestamps() {
	t.formatter.ToggleTimestamps()
	t.Refresh()
}

func (t *Terminal) Mode() DisplayMode {
	return t.formatter.Mode()
}

func (t *Terminal) trim() {
	if over := len(t.lines) - t.scrollback; over > 0 {
		t.lines = append([]LineMsg(nil), t.lines[over:]...)
	}
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only pass certain message types to viewport to prevent it from consuming our key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t.viewport, cmd
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
