/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush <port> [input|output|both]",
	Short: "Discard buffered serial data",
	Long: `Discard data held in the operating system's serial buffers.

input   drops received bytes that have not been read yet
output  drops written bytes that have not been transmitted yet
both    does both (default)

Example usage:
  serialctl flush /dev/ttyUSB0
  serialctl flush /dev/ttyUSB0 input`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"input", "output", "both"},
	Run: func(cmd *cobra.Command, args []string) {
		queue := "both"
		if len(args) == 2 {
			queue = strings.ToLower(args[1])
		}

		if err := flushPort(args[0], queue); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}

func flushPort(portPath, queue string) error {
	port, err := openPort(portPath)
	if err != nil {
		return err
	}
	defer port.Close()

	switch queue {
	case "input", "in":
		err = port.FlushInput()
	case "output", "out":
		err = port.FlushOutput()
	case "both":
		err = port.Flush()
	default:
		return fmt.Errorf("unknown queue %q (want input, output or both)", queue)
	}
	if err != nil {
		return err
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)
	fmt.Printf("%s Flushed %s buffers on %s\n", successStyle.Render("✓"), queue, portPath)
	return nil
}
