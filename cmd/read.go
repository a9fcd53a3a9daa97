/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/allbin/go-serialstream"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port> <count>",
	Short: "Read an exact number of bytes",
	Long: `Read exactly <count> bytes from a serial port and print them.

The read completes only when all bytes have arrived. With --timeout the
whole block must arrive before the deadline, otherwise nothing is printed
and the command fails.

Example usage:
  serialctl read /dev/ttyUSB0 16 --timeout 2s
  serialctl read /dev/ttyUSB0 4 --raw > frame.bin`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		count, err := parseCount(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		raw, _ := cmd.Flags().GetBool("raw")

		if err := readBlock(portPath, count, raw); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Bool("raw", false, "Write the bytes to stdout unformatted")
}

// parseCount parses a strictly positive decimal byte count.
func parseCount(s string) (int, error) {
	count, err := strconv.Atoi(s)
	if err != nil || count <= 0 {
		return 0, fmt.Errorf("count must be a positive integer, got %q", s)
	}
	return count, nil
}

func readBlock(portPath string, count int, raw bool) error {
	port, err := openPort(portPath)
	if err != nil {
		return err
	}
	defer port.Close()

	buf := make([]byte, count)
	if err := port.GetBlock(buf, count); err != nil {
		if serial.IsTimeout(err) {
			return fmt.Errorf("%d bytes did not arrive within %v: %w", count, port.Timeout(), err)
		}
		return err
	}

	if raw {
		_, err := os.Stdout.Write(buf)
		return err
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d bytes from %s", count, portPath)))
	fmt.Print(hex.Dump(buf))
	return nil
}
