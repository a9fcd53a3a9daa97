/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// lineCmd represents the line command
var lineCmd = &cobra.Command{
	Use:   "line <port>",
	Short: "Read delimiter-terminated lines",
	Long: `Read one or more lines from a serial port.

Each line is read byte by byte up to and including the delimiter. Every
byte is subject to --timeout; when a byte does not arrive in time the
partial line is discarded and the command fails.

Example usage:
  serialctl line /dev/ttyUSB0
  serialctl line /dev/ttyUSB0 --count 5 --timeout 1s
  serialctl line /dev/ttyUSB0 --delim '\r' --quote`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		delim, _ := cmd.Flags().GetString("delim")
		count, _ := cmd.Flags().GetInt("count")
		quote, _ := cmd.Flags().GetBool("quote")

		d, err := parseDelimiter(delim)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := readLinesN(args[0], d, count, quote); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lineCmd)

	lineCmd.Flags().StringP("delim", "d", "\\n", "Line delimiter (single byte, escapes \\n \\r \\0 or 0xNN)")
	lineCmd.Flags().IntP("count", "n", 1, "Number of lines to read (0 reads until failure)")
	lineCmd.Flags().BoolP("quote", "q", false, "Print lines Go-quoted to show control characters")
}

func readLinesN(portPath string, delim byte, count int, quote bool) error {
	port, err := openPort(portPath)
	if err != nil {
		return err
	}
	defer port.Close()

	for i := 0; count == 0 || i < count; i++ {
		line, err := port.GetLineDelim(delim)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if quote {
			fmt.Println(strconv.Quote(line))
		} else {
			fmt.Print(line)
		}
	}
	return nil
}
