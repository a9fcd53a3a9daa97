/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/allbin/go-serialstream"
)

// pollInterval bounds each blocking read so long-running commands notice
// cancellation.
const pollInterval = 200 * time.Millisecond

// readLines reads delim-terminated lines from src until ctx is cancelled or
// a read fails. Read timeouts are expected while the line is idle and only
// cause ctx to be rechecked; partial lines survive them.
func readLines(ctx context.Context, src serial.DataSource, delim byte, onLine func(string) error) error {
	var line []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		b, err := src.GetByte()
		if err != nil {
			if serial.IsTimeout(err) {
				continue
			}
			return err
		}

		line = append(line, b)
		if b != delim {
			continue
		}
		if err := onLine(string(line)); err != nil {
			return err
		}
		line = line[:0]
	}
}

// parseDelimiter turns a flag value into a single delimiter byte.
func parseDelimiter(s string) (byte, error) {
	switch s {
	case "\\n":
		return '\n', nil
	case "\\r":
		return '\r', nil
	case "\\t":
		return '\t', nil
	case "\\0":
		return 0, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid delimiter %q: %w", s, err)
		}
		return byte(v), nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single byte, got %q", s)
	}
	return s[0], nil
}
