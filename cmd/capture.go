/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial lines to a file",
	Long: `Capture incoming serial lines to a file for later parsing.

Reads delimiter-terminated lines from the specified serial port and appends
each complete line to the output file. Runs continuously until interrupted
(Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

With --metrics-addr the port's traffic counters are served in Prometheus
format on /metrics for the duration of the capture.

Example usage:
  serialctl capture /dev/ttyUSB0 data.log
  serialctl capture /dev/ttyUSB0 output.txt --baud 9600
  serialctl capture /dev/ttyUSB0 capture.log --console
  serialctl capture /dev/ttyUSB0 capture.log --metrics-addr :9101`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		outputPath := args[1]

		delim, _ := cmd.Flags().GetString("delim")
		showConsole, _ := cmd.Flags().GetBool("console")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		d, err := parseDelimiter(delim)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runCapture(portPath, outputPath, d, showConsole, metricsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringP("delim", "d", "\\n", "Line delimiter (single byte, escapes \\n \\r \\0 or 0xNN)")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9101)")
}

func runCapture(portPath, outputPath string, delim byte, showConsole bool, metricsAddr string) error {
	port, err := openPort(portPath)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	// Reads are bounded so interrupts are noticed while the line is idle.
	port.SetTimeout(pollInterval)

	// Open output file in append mode
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	// Setup signal handling for clean shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, port)
		defer srv.Close()
		fmt.Fprintf(os.Stderr, "Serving metrics on %s/metrics\n", metricsAddr)
	}

	fmt.Fprintf(os.Stderr, "Capturing lines from %s to %s\n", portPath, outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	lines := 0
	bytesWritten := int64(0)
	startTime := time.Now()

	err = readLines(ctx, port, delim, func(line string) error {
		written, err := file.WriteString(line)
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		bytesWritten += int64(written)
		lines++

		if showConsole {
			os.Stdout.WriteString(line)
		}
		return nil
	})

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d lines (%d bytes) written in %v\n",
		lines, bytesWritten, duration.Round(time.Millisecond))

	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	return nil
}

// serveMetrics exposes the port's counters on addr until the returned server
// is closed.
func serveMetrics(addr string, port *serial.Port) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(serial.NewCollector(port))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}()
	return srv
}
