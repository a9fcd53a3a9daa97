package serial

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Debug tracing is process-wide: toggling it affects every Port at once and
// never changes functional behaviour. It starts disabled.
var (
	debugEnabled atomic.Bool

	loggerMu sync.RWMutex
	logger   logrus.FieldLogger = newDefaultLogger()
)

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	return l
}

// Debugging enables or disables diagnostic tracing for all ports.
func Debugging(enabled bool) {
	debugEnabled.Store(enabled)
}

// IsDebugging reports whether diagnostic tracing is enabled.
func IsDebugging() bool {
	return debugEnabled.Load()
}

// SetLogger replaces the destination of diagnostic traces. Passing nil
// restores the default stderr logger.
func SetLogger(l logrus.FieldLogger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = newDefaultLogger()
	}
	logger = l
}

func trace(device, op string, fields logrus.Fields, msg string) {
	if !debugEnabled.Load() {
		return
	}
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()

	entry := l.WithField("device", device).WithField("op", op)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Debug(msg)
}
