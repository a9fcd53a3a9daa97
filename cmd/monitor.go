/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-serialstream/internal/tui/components"
	"github.com/allbin/go-serialstream/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Watch incoming lines in a live terminal view",
	Long: `Watch delimiter-terminated lines from a serial port in a live terminal UI.

Lines are shown as they complete, as printable ASCII and optionally hex.
The status bar shows the connection state and traffic counters.

Keys:
  h  toggle hex        a  toggle ascii     t  toggle timestamps
  f  flush input       c  clear screen     ?  help     q  quit

Example usage:
  serialctl monitor /dev/ttyUSB0
  serialctl monitor /dev/ttyUSB0 --baud 9600 --delim '\r' --hex
  serialctl monitor /dev/ttyUSB0 --metrics-addr :9101`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		delim, _ := cmd.Flags().GetString("delim")
		showHex, _ := cmd.Flags().GetBool("hex")
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		d, err := parseDelimiter(delim)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		mode := components.DisplayMode{
			ShowASCII:      true,
			ShowHex:        showHex,
			ShowTimestamps: !noTimestamps,
		}

		if err := runMonitor(args[0], d, mode, metricsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringP("delim", "d", "\\n", "Line delimiter (single byte, escapes \\n \\r \\0 or 0xNN)")
	monitorCmd.Flags().BoolP("hex", "x", false, "Show hex next to ASCII")
	monitorCmd.Flags().Bool("no-timestamps", false, "Hide timestamps")
	monitorCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9101)")
}

func runMonitor(portPath string, delim byte, mode components.DisplayMode, metricsAddr string) error {
	s := currentSettings()
	m := models.NewMonitor(portPath, s.Baud, pollInterval, mode)

	// Start the TUI with alt screen and mouse scrolling
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// The reader goroutine owns the port from open to close.
	go func() {
		defer close(done)

		port, err := openPort(portPath)
		if err != nil {
			p.Send(models.StoppedMsg{Err: err})
			return
		}
		defer port.Close()

		// Reads are bounded so cancellation is noticed while the line is idle.
		port.SetTimeout(pollInterval)

		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr, port)
			defer srv.Close()
		}

		p.Send(models.ConnectedMsg{Port: port})

		err = readLines(ctx, port, delim, func(line string) error {
			p.Send(components.LineMsg{Timestamp: time.Now(), Line: line})
			return nil
		})
		p.Send(models.StoppedMsg{Err: err})
	}()

	_, err := p.Run()

	cancel()
	<-done
	return err
}
