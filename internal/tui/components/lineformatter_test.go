package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var stamp = time.Date(2025, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

func TestPrintable(t *testing.T) {
	assert.Equal(t, "ok..", Printable("ok\r\n"))
	assert.Equal(t, ".[31m", Printable("\x1b[31m"))
	assert.Equal(t, "..", Printable("\xc3\xa9"))
	assert.Equal(t, "", Printable(""))
}

func TestFormatModes(t *testing.T) {
	msg := LineMsg{Timestamp: stamp, Line: "AT\r\n"}

	tests := []struct {
		name    string
		mode    DisplayMode
		want    []string
		notWant []string
	}{
		{
			name:    "ascii only",
			mode:    DisplayMode{ShowASCII: true},
			want:    []string{"AT.."},
			notWant: []string{"41 54", "12:30:45"},
		},
		{
			name: "hex only",
			mode: DisplayMode{ShowHex: true},
			want: []string{"41 54 0D 0A"},
		},
		{
			name: "both with timestamp",
			mode: DisplayMode{ShowHex: true, ShowASCII: true, ShowTimestamps: true},
			want: []string{"[12:30:45.123]", "AT..", "41 54 0D 0A"},
		},
		{
			name: "nothing selected",
			mode: DisplayMode{},
			want: []string{"4 bytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLineFormatter(tt.mode).Format(msg)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestFormatterToggles(t *testing.T) {
	f := NewLineFormatter(DisplayMode{ShowASCII: true})

	f.ToggleHex()
	f.ToggleASCII()
	f.ToggleTimestamps()
	assert.Equal(t, DisplayMode{ShowHex: true, ShowTimestamps: true}, f.Mode())
}

func TestTerminalScrollback(t *testing.T) {
	term := NewTerminal(40, 5, DisplayMode{ShowASCII: true})
	term.SetScrollback(3)

	for _, l := range []string{"a\n", "b\n", "c\n", "d\n"} {
		term.Add(LineMsg{Timestamp: stamp, Line: l})
	}

	lines := term.Lines()
	if assert.Len(t, lines, 3) {
		assert.Equal(t, "b\n", lines[0].Line)
		assert.Equal(t, "d\n", lines[2].Line)
	}
	assert.Contains(t, term.View(), "d.")

	term.Clear()
	assert.Empty(t, term.Lines())
	assert.Empty(t, strings.TrimSpace(term.View()))
}
