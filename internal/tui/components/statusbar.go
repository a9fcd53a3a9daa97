package components

import (
	"fmt"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/allbin/go-serialstream/internal/tui/colors"
	"github.com/allbin/go-serialstream/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	portPath string
	baud     int
	timeout  time.Duration
	status   styles.StatusType
	err      error
	notice   string
	stats    serial.Stats
	width    int
}

func NewStatusBar(portPath string, baud int, timeout time.Duration) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		baud:     baud,
		timeout:  timeout,
		status:   styles.StatusConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnected() {
	sb.status = styles.StatusConnected
	sb.err = nil
}

// SetStopped records why the reader ended; nil means a clean close.
func (sb *StatusBar) SetStopped(err error) {
	if err != nil {
		sb.status = styles.StatusFailed
		sb.err = err
		return
	}
	sb.status = styles.StatusClosed
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) Err() error {
	return sb.err
}

// SetNotice shows a short transient message such as a flush result.
func (sb *StatusBar) SetNotice(notice string) {
	sb.notice = notice
}

func (sb *StatusBar) SetStats(stats serial.Stats) {
	sb.stats = stats
}

func (sb *StatusBar) indicator() string {
	style := styles.GetStatusStyle(sb.status)
	switch sb.status {
	case styles.StatusConnected:
		return style.Render("●")
	case styles.StatusConnecting:
		return style.Render("○")
	case styles.StatusFailed:
		return style.Render("✗")
	default:
		return style.Render("○")
	}
}

// View renders the single-line status bar.
func (sb *StatusBar) View(timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(colors.Blue).
		Bold(true).
		Padding(0, 1).
		Render("MONITOR")

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftParts := []string{mode, port, sb.indicator()}
	switch {
	case sb.err != nil:
		leftParts = append(leftParts, lipgloss.NewStyle().
			Foreground(colors.Red).
			Padding(0, 1).
			Render(sb.err.Error()))
	case sb.notice != "":
		leftParts = append(leftParts, styles.NoticeStyle.
			Padding(0, 1).
			Render(sb.notice))
	}
	leftParts = append(leftParts, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, leftParts...)

	timeout := "∞"
	if sb.timeout > 0 {
		timeout = sb.timeout.String()
	}
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("⚡ %d 8N1 ⏱ %s  rx %d  to %d",
			sb.baud, timeout, sb.stats.BytesRead, sb.stats.ReadTimeouts))

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
