package models

import (
	"fmt"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/allbin/go-serialstream/internal/tui/components"
	"github.com/allbin/go-serialstream/internal/tui/keys"
	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PortHandle is the part of a port the monitor touches from the UI
// goroutine. Reading is done elsewhere.
type PortHandle interface {
	Stats() serial.Stats
	FlushInput() error
}

// ConnectedMsg is sent once the port is open.
type ConnectedMsg struct {
	Port PortHandle
}

// StoppedMsg is sent when the reader ends. Err is nil after a clean close.
type StoppedMsg struct {
	Err error
}

type flushedMsg struct {
	err error
}

type tickMsg time.Time

// StatsInterval is how often the status bar counters are refreshed.
const StatsInterval = time.Second

// Monitor is the Bubble Tea model of the line monitor.
type Monitor struct {
	port      PortHandle
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.MonitorKeys
	ready     bool
	quitting  bool
	now       func() time.Time
}

func NewMonitor(portPath string, baud int, timeout time.Duration, mode components.DisplayMode) *Monitor {
	return &Monitor{
		terminal:  components.NewTerminal(80, 20, mode),
		statusBar: components.NewStatusBar(portPath, baud, timeout),
		help:      help.New(),
		keys:      keys.NewMonitorKeys(),
		now:       time.Now,
	}
}

func (m *Monitor) Terminal() *components.Terminal {
	return m.terminal
}

func (m *Monitor) StatusBar() *components.StatusBar {
	return m.statusBar
}

func (m *Monitor) Quitting() bool {
	return m.quitting
}

func (m *Monitor) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(StatsInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is single line
		m.terminal.SetSize(msg.Width, msg.Height-1)
		m.statusBar.SetWidth(msg.Width)
		m.ready = true

	case ConnectedMsg:
		m.port = msg.Port
		m.statusBar.SetConnected()

	case StoppedMsg:
		m.statusBar.SetStopped(msg.Err)
		m.refreshStats()

	case components.LineMsg:
		m.terminal.Add(msg)

	case flushedMsg:
		if msg.err != nil {
			m.statusBar.SetNotice(fmt.Sprintf("flush failed: %v", msg.err))
		} else {
			m.statusBar.SetNotice("input flushed")
		}

	case tickMsg:
		m.refreshStats()
		cmds = append(cmds, tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
			m.statusBar.SetNotice("")

		case key.Matches(msg, m.keys.Flush):
			if cmd := m.flush(); cmd != nil {
				cmds = append(cmds, cmd)
			}

		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()

		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()

		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.terminal.ToggleTimestamps()
		}
	}

	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// flush discards pending input off the UI goroutine.
func (m *Monitor) flush() tea.Cmd {
	port := m.port
	if port == nil || m.statusBar.Status() != styles.StatusConnected {
		return nil
	}
	return func() tea.Msg {
		return flushedMsg{err: port.FlushInput()}
	}
}

func (m *Monitor) refreshStats() {
	if m.port != nil {
		m.statusBar.SetStats(m.port.Stats())
	}
}

func (m *Monitor) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.terminal.View()
	}

	statusBar := m.statusBar.View(m.now().Format("15:04:05"))
	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			styles.HelpStyle.Render(m.help.View(m.keys)),
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}
