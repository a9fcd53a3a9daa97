package serial

import (
	"time"

	"github.com/benbjohnson/clock"
)

// WriteMode represents the write synchronization mode
type WriteMode int

const (
	WriteModeBuffered WriteMode = iota // Default: kernel buffers writes
	WriteModeSynced                    // O_SYNC: writes block until hardware transmission
)

// Config holds the configuration for a serial port
type Config struct {
	BaudRate  int
	Timeout   time.Duration // 0 blocks indefinitely
	WriteMode WriteMode
	Clock     clock.Clock // elapsed-time source for deadlines
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:  115200,
		Timeout:   0,
		WriteMode: WriteModeBuffered,
		Clock:     clock.New(),
	}
}

// WithTimeout sets the initial deadline applied to every read and write.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidConfig
		}
		c.Timeout = timeout
		return nil
	}
}

// WithClock replaces the elapsed-time source used to enforce deadlines.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) error {
		if clk == nil {
			return ErrInvalidConfig
		}
		c.Clock = clk
		return nil
	}
}

// WithWriteMode sets the write synchronization mode
func WithWriteMode(mode WriteMode) Option {
	return func(c *Config) error {
		if mode != WriteModeBuffered && mode != WriteModeSynced {
			return ErrInvalidConfig
		}
		c.WriteMode = mode
		return nil
	}
}

// WithSyncWrite enables synchronous writes (O_SYNC) for guaranteed transmission
func WithSyncWrite() Option {
	return WithWriteMode(WriteModeSynced)
}
