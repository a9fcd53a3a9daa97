package serial

import "time"

type flushQueue int

const (
	flushIn flushQueue = iota
	flushOut
	flushBoth
)

func (q flushQueue) String() string {
	switch q {
	case flushIn:
		return "input"
	case flushOut:
		return "output"
	default:
		return "input+output"
	}
}

// device is the OS handle a Port owns. read and write perform at most one
// underlying transfer, waiting up to wait for readiness (forever when wait is
// negative); they return 0, nil when nothing could be moved in time.
type device interface {
	read(p []byte, wait time.Duration) (int, error)
	write(p []byte, wait time.Duration) (int, error)
	flush(q flushQueue) error
	close() error
}
