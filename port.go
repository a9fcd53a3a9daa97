package serial

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle stage of a Port.
type State int

const (
	StateClosed State = iota
	StateFunctional
)

func (s State) String() string {
	if s == StateFunctional {
		return "Functional"
	}
	return "Closed"
}

// Stats is a snapshot of the traffic counters of a Port.
type Stats struct {
	BytesRead     uint64
	BytesWritten  uint64
	ReadTimeouts  uint64
	WriteTimeouts uint64
	ReadFailures  uint64
	WriteFailures uint64
}

type portStats struct {
	bytesRead     atomic.Uint64
	bytesWritten  atomic.Uint64
	readTimeouts  atomic.Uint64
	writeTimeouts atomic.Uint64
	readFailures  atomic.Uint64
	writeFailures atomic.Uint64
}

// Port is a blocking, deadline-aware byte stream over one serial device.
//
// A Port exclusively owns its OS handle and must only be used through the
// pointer returned by Open. Data operations on one Port are serialized; the
// timeout may be changed at any time and applies to operations issued
// afterwards. Functional, State, Timeout and Stats never wait for a pending
// transfer.
type Port struct {
	mu         sync.Mutex
	device     string
	baud       int
	dev        device
	functional atomic.Bool
	closing    atomic.Bool
	clock      clock.Clock
	timeout    atomic.Int64
	stats      portStats
}

// closeCheckInterval bounds each underlying wait so a pending transfer
// notices a concurrent Close.
const closeCheckInterval = 250 * time.Millisecond

// Ensure Port implements Serial at compile time
var _ Serial = (*Port)(nil)

// Open opens and configures the serial device at path. The returned Port is
// functional; on failure no Port is returned and the handle, if any was
// acquired, has been released.
//
// Errors carry KindInvalidDeviceName when path cannot be opened and
// KindConnectionFailure when the baud rate is unsupported or the line
// discipline cannot be applied.
func Open(path string, baud int, opts ...Option) (*Port, error) {
	config := DefaultConfig()
	config.BaudRate = baud
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, newError("open", path, KindInvalidArgument, err)
		}
	}

	speed, err := getBaudRate(config.BaudRate)
	if err != nil {
		trace(path, "open", logrus.Fields{"baud": config.BaudRate}, "unsupported baud rate")
		return nil, newError("open", path, KindConnectionFailure, err)
	}

	dev, err := openDevice(path, speed, config.WriteMode)
	if err != nil {
		trace(path, "open", logrus.Fields{"error": err}, "connect failed")
		return nil, err
	}

	p := newPort(path, dev, config)
	trace(path, "open", logrus.Fields{"baud": config.BaudRate, "timeout": config.Timeout}, "connected")
	return p, nil
}

func newPort(path string, dev device, config Config) *Port {
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}
	p := &Port{
		device: path,
		baud:   config.BaudRate,
		dev:    dev,
		clock:  clk,
	}
	p.functional.Store(true)
	p.timeout.Store(int64(config.Timeout))
	return p
}

// Device returns the path the port was opened with.
func (p *Port) Device() string { return p.device }

// BaudRate returns the configured line speed.
func (p *Port) BaudRate() int { return p.baud }

// Functional reports whether the handle is open and configured.
func (p *Port) Functional() bool {
	return p.functional.Load()
}

// State returns StateFunctional while the port is usable and StateClosed after
// Close or a fatal I/O error.
func (p *Port) State() State {
	if p.Functional() {
		return StateFunctional
	}
	return StateClosed
}

// SetTimeout sets the deadline for subsequent reads and writes. Zero, or any
// negative value, blocks indefinitely.
func (p *Port) SetTimeout(timeout time.Duration) {
	if timeout < 0 {
		timeout = 0
	}
	p.timeout.Store(int64(timeout))
	trace(p.device, "timeout", logrus.Fields{"timeout": timeout}, "timeout changed")
}

// Timeout returns the currently configured deadline.
func (p *Port) Timeout() time.Duration {
	return time.Duration(p.timeout.Load())
}

// Stats returns a snapshot of the port's counters.
func (p *Port) Stats() Stats {
	return Stats{
		BytesRead:     p.stats.bytesRead.Load(),
		BytesWritten:  p.stats.bytesWritten.Load(),
		ReadTimeouts:  p.stats.readTimeouts.Load(),
		WriteTimeouts: p.stats.writeTimeouts.Load(),
		ReadFailures:  p.stats.readFailures.Load(),
		WriteFailures: p.stats.writeFailures.Load(),
	}
}

// GetByte reads exactly one byte.
func (p *Port) GetByte() (byte, error) {
	var b [1]byte
	if err := p.transfer(inbound, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetBlock reads exactly n bytes into buf[:n]. A timed-out call consumes
// whatever arrived before the deadline; none of it is reported.
func (p *Port) GetBlock(buf []byte, n int) error {
	if err := checkBuffer("read", p.device, buf, n); err != nil {
		return err
	}
	return p.transfer(inbound, buf[:n])
}

// PutByte writes exactly one byte.
func (p *Port) PutByte(b byte) error {
	return p.transfer(outbound, []byte{b})
}

// PutBlock writes buf[:n] in full.
func (p *Port) PutBlock(buf []byte, n int) error {
	if err := checkBuffer("write", p.device, buf, n); err != nil {
		return err
	}
	return p.transfer(outbound, buf[:n])
}

// GetLine reads up to and including the next newline.
func (p *Port) GetLine() (string, error) {
	return ReadLine(p, DefaultDelimiter)
}

// GetLineDelim reads up to and including the next delim byte. Each byte is
// subject to the port timeout; a failure discards the partial line.
func (p *Port) GetLineDelim(delim byte) (string, error) {
	return ReadLine(p, delim)
}

// FlushInput discards any unread input data
func (p *Port) FlushInput() error {
	return p.flush(flushIn)
}

// FlushOutput discards any unwritten output data
func (p *Port) FlushOutput() error {
	return p.flush(flushOut)
}

// Flush discards buffered data in both directions.
func (p *Port) Flush() error {
	return p.flush(flushBoth)
}

// Close releases the device handle. It never fails; close errors are only
// traced. Closing an already closed port is a no-op. A transfer pending in
// another goroutine is abandoned with KindNotFunctional within
// closeCheckInterval.
func (p *Port) Close() {
	p.closing.Store(true)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release("close", nil)
}

func checkBuffer(op, path string, buf []byte, n int) error {
	switch {
	case n < 0:
		return newError(op, path, KindInvalidArgument, nil)
	case buf == nil && n > 0:
		return newError(op, path, KindNullPointer, nil)
	case len(buf) < n:
		return newError(op, path, KindInvalidArgument, nil)
	}
	return nil
}

type direction int

const (
	inbound direction = iota
	outbound
)

func (d direction) op() string {
	if d == inbound {
		return "read"
	}
	return "write"
}

func (d direction) kinds() (timeout, failure ErrorKind) {
	if d == inbound {
		return KindReadTimeout, KindReadFailure
	}
	return KindWriteTimeout, KindWriteFailure
}

// transfer moves all of buf in direction d, accumulating partial transfers
// until done, the deadline passes or the device fails.
func (p *Port) transfer(d direction, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	op := d.op()
	if !p.functional.Load() {
		return newError(op, p.device, KindNotFunctional, nil)
	}

	timeout := p.Timeout()
	timeoutKind, failureKind := d.kinds()

	timer := NewTimer(p.clock)
	timer.Start()
	defer timer.Stop()

	done := 0
	for done < len(buf) {
		wait, ok := remaining(timeout, timer)
		if !ok {
			p.countTimeout(d)
			trace(p.device, op, logrus.Fields{
				"want":    len(buf),
				"done":    done,
				"timeout": timeout,
			}, "deadline elapsed")
			return newError(op, p.device, timeoutKind, nil)
		}
		if p.closing.Load() {
			return newError(op, p.device, KindNotFunctional, nil)
		}
		if wait < 0 || wait > closeCheckInterval {
			wait = closeCheckInterval
		}

		var n int
		var err error
		if d == inbound {
			n, err = p.dev.read(buf[done:], wait)
		} else {
			n, err = p.dev.write(buf[done:], wait)
		}
		if err != nil {
			p.countFailure(d)
			p.release(op, err)
			return newError(op, p.device, failureKind, err)
		}

		done += n
		p.countBytes(d, n)
	}

	trace(p.device, op, logrus.Fields{"bytes": len(buf), "elapsed": timer.Elapsed()}, "transfer complete")
	return nil
}

// remaining returns how long the next underlying attempt may wait, -1 for no
// limit, and false once the deadline has passed.
func remaining(timeout time.Duration, t Timer) (time.Duration, bool) {
	if timeout <= 0 {
		return -1, true
	}
	left := timeout - t.Elapsed()
	return left, left > 0
}

func (p *Port) flush(q flushQueue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.functional.Load() {
		return newError("flush", p.device, KindNotFunctional, nil)
	}
	if err := p.dev.flush(q); err != nil {
		kind := KindWriteFailure
		if q == flushIn {
			kind = KindReadFailure
		}
		return newError("flush", p.device, kind, err)
	}
	trace(p.device, "flush", logrus.Fields{"queue": q.String()}, "discarded buffered data")
	return nil
}

// release closes the handle and leaves the port non-functional. cause is the
// I/O error that made the port unusable, nil for an explicit Close.
// Callers hold p.mu.
func (p *Port) release(op string, cause error) {
	if p.dev == nil {
		return
	}
	fields := logrus.Fields{}
	if cause != nil {
		fields["cause"] = cause
	}
	if err := p.dev.close(); err != nil {
		fields["close_error"] = err
	}
	p.dev = nil
	p.functional.Store(false)
	trace(p.device, op, fields, "handle released")
}

func (p *Port) countBytes(d direction, n int) {
	if d == inbound {
		p.stats.bytesRead.Add(uint64(n))
	} else {
		p.stats.bytesWritten.Add(uint64(n))
	}
}

func (p *Port) countTimeout(d direction) {
	if d == inbound {
		p.stats.readTimeouts.Add(1)
	} else {
		p.stats.writeTimeouts.Add(1)
	}
}

func (p *Port) countFailure(d direction) {
	if d == inbound {
		p.stats.readFailures.Add(1)
	} else {
		p.stats.writeFailures.Add(1)
	}
}
