/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allbin/go-serialstream"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialctl",
	Short: "Blocking, timeout-aware serial port tool",
	Long: `serialctl talks to serial devices through exact-length, deadline-bounded
reads and writes.

Global settings can be given as flags, as SERIALCTL_* environment variables
or in $HOME/.serialctl.yaml:

  baud: 115200
  timeout: 500ms
  debug: false`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		serial.Debugging(viper.GetBool("debug"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialctl.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().DurationP("timeout", "t", 0, "Deadline for each read/write (0 blocks forever)")
	rootCmd.PersistentFlags().Bool("debug", false, "Trace serial operations to stderr")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialctl")
	}

	viper.SetEnvPrefix("serialctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("debug") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// portSettings are the connection parameters resolved from flags, env and config.
type portSettings struct {
	Baud    int
	Timeout time.Duration
}

func currentSettings() portSettings {
	return portSettings{
		Baud:    viper.GetInt("baud"),
		Timeout: viper.GetDuration("timeout"),
	}
}

// openPort opens portPath with the resolved settings.
func openPort(portPath string) (*serial.Port, error) {
	s := currentSettings()
	if !serial.IsStandardBaudRate(s.Baud) {
		return nil, fmt.Errorf("unsupported baud rate %d (supported: %v)", s.Baud, serial.StandardBaudRates())
	}
	return serial.Open(portPath, s.Baud, serial.WithTimeout(s.Timeout))
}
