package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialstream/internal/tui/styles"
)

// LineMsg carries one delimiter-terminated line read from the port.
type LineMsg struct {
	Timestamp time.Time
	Line      string
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

// LineFormatter renders LineMsgs according to a DisplayMode.
type LineFormatter struct {
	mode DisplayMode
}

func NewLineFormatter(mode DisplayMode) *LineFormatter {
	return &LineFormatter{mode: mode}
}

func (f *LineFormatter) Mode() DisplayMode {
	return f.mode
}

func (f *LineFormatter) Format(msg LineMsg) string {
	var parts []string

	if f.mode.ShowASCII {
		parts = append(parts, styles.LineStyle.Render(Printable(msg.Line)))
	}
	if f.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("% X", []byte(msg.Line)))
	}
	// Both views off still shows that something arrived
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d bytes", len(msg.Line)))
	}

	line := strings.Join(parts, "  ")
	if !f.mode.ShowTimestamps {
		return line
	}
	ts := styles.TimestampStyle.Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))
	return ts + " " + line
}

func (f *LineFormatter) FormatAll(msgs []LineMsg) []string {
	formatted := make([]string, len(msgs))
	for i, msg := range msgs {
		formatted[i] = f.Format(msg)
	}
	return formatted
}

func (f *LineFormatter) ToggleHex() {
	f.mode.ShowHex = !f.mode.ShowHex
}

func (f *LineFormatter) ToggleASCII() {
	f.mode.ShowASCII = !f.mode.ShowASCII
}

func (f *LineFormatter) ToggleTimestamps() {
	f.mode.ShowTimestamps = !f.mode.ShowTimestamps
}

// Printable replaces control and non-ASCII bytes with dots so raw device
// output cannot inject terminal escape sequences.
func Printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
