package serial

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// step is one scripted underlying transfer: it advances the mock clock, runs
// then, and either fails with err or moves data (reads) / accepts n bytes
// (writes).
type step struct {
	data    []byte
	n       int
	advance time.Duration
	then    func()
	err     error
}

type scriptedDevice struct {
	clk     *clock.Mock
	reads   []step
	writes  []step
	waits   []time.Duration
	written []byte
	flushed []flushQueue
	closed  int
}

func (d *scriptedDevice) next(queue *[]step, wait time.Duration) (step, bool) {
	d.waits = append(d.waits, wait)
	if len(*queue) == 0 {
		return step{}, false
	}
	s := (*queue)[0]
	*queue = (*queue)[1:]
	d.clk.Add(s.advance)
	if s.then != nil {
		s.then()
	}
	return s, true
}

func (d *scriptedDevice) read(p []byte, wait time.Duration) (int, error) {
	s, ok := d.next(&d.reads, wait)
	if !ok {
		return 0, io.EOF
	}
	if s.err != nil {
		return 0, s.err
	}
	return copy(p, s.data), nil
}

func (d *scriptedDevice) write(p []byte, wait time.Duration) (int, error) {
	s, ok := d.next(&d.writes, wait)
	if !ok {
		return 0, io.ErrClosedPipe
	}
	if s.err != nil {
		return 0, s.err
	}
	n := s.n
	if n > len(p) {
		n = len(p)
	}
	d.written = append(d.written, p[:n]...)
	return n, nil
}

func (d *scriptedDevice) flush(q flushQueue) error {
	d.flushed = append(d.flushed, q)
	return nil
}

func (d *scriptedDevice) close() error {
	d.closed++
	return nil
}

func newScriptedPort(t *testing.T, timeout time.Duration) (*Port, *scriptedDevice) {
	t.Helper()
	clk := clock.NewMock()
	dev := &scriptedDevice{clk: clk}
	config := DefaultConfig()
	config.Clock = clk
	config.Timeout = timeout
	return newPort("/dev/ttyTEST0", dev, config), dev
}

func TestGetBlockAccumulatesPartialReads(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.reads = []step{
		{data: []byte("ab")},
		{data: nil},
		{data: []byte("cd")},
	}

	buf := make([]byte, 4)
	require.NoError(t, port.GetBlock(buf, 4))
	assert.Equal(t, "abcd", string(buf))
	assert.Equal(t, []time.Duration{closeCheckInterval, closeCheckInterval, closeCheckInterval}, dev.waits,
		"zero timeout waits in close-check slices")
	assert.Equal(t, uint64(4), port.Stats().BytesRead)
}

func TestGetBlockTimesOut(t *testing.T) {
	port, dev := newScriptedPort(t, 100*time.Millisecond)
	dev.reads = []step{
		{data: []byte("a"), advance: 60 * time.Millisecond},
		{advance: 60 * time.Millisecond},
	}

	buf := make([]byte, 3)
	err := port.GetBlock(buf, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadTimeout)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 40 * time.Millisecond}, dev.waits)

	assert.True(t, port.Functional(), "timeouts are not terminal")
	assert.Equal(t, uint64(1), port.Stats().ReadTimeouts)
}

func TestReadFailureIsTerminal(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.reads = []step{{err: unix.EIO}}

	_, err := port.GetByte()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadFailure)
	assert.ErrorIs(t, err, unix.EIO)
	assert.Equal(t, KindReadFailure, KindOf(err))

	assert.False(t, port.Functional())
	assert.Equal(t, StateClosed, port.State())
	assert.Equal(t, 1, dev.closed)

	_, err = port.GetByte()
	assert.ErrorIs(t, err, ErrNotFunctional)
	assert.ErrorIs(t, port.PutByte('x'), ErrNotFunctional)
	assert.ErrorIs(t, port.FlushInput(), ErrNotFunctional)

	port.Close()
	assert.Equal(t, 1, dev.closed, "handle is released once")
}

func TestPutBlockAccumulatesPartialWrites(t *testing.T) {
	port, dev := newScriptedPort(t, time.Second)
	dev.writes = []step{{n: 2}, {n: 0}, {n: 5}}

	data := []byte("hello")
	require.NoError(t, port.PutBlock(data, len(data)))
	assert.Equal(t, "hello", string(dev.written))
	assert.Equal(t, uint64(5), port.Stats().BytesWritten)
}

func TestPutBlockTimesOut(t *testing.T) {
	port, dev := newScriptedPort(t, 50*time.Millisecond)
	dev.writes = []step{
		{n: 1, advance: 30 * time.Millisecond},
		{n: 0, advance: 30 * time.Millisecond},
	}

	err := port.PutBlock([]byte("xyz"), 3)
	assert.ErrorIs(t, err, ErrWriteTimeout)
	assert.Equal(t, KindWriteTimeout, KindOf(err))
	assert.True(t, port.Functional())
	assert.Equal(t, uint64(1), port.Stats().WriteTimeouts)
}

func TestWriteFailureIsTerminal(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.writes = []step{{err: unix.ENXIO}}

	err := port.PutByte(0x7e)
	assert.ErrorIs(t, err, ErrWriteFailure)
	assert.ErrorIs(t, err, unix.ENXIO)
	assert.False(t, port.Functional())
	assert.Equal(t, uint64(1), port.Stats().WriteFailures)
}

func TestTimeoutAppliesToLaterCalls(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.reads = []step{{data: []byte("a")}, {data: []byte("b")}}

	_, err := port.GetByte()
	require.NoError(t, err)

	port.SetTimeout(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, port.Timeout())
	_, err = port.GetByte()
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{closeCheckInterval, 250 * time.Millisecond}, dev.waits)

	port.SetTimeout(-time.Second)
	assert.Equal(t, time.Duration(0), port.Timeout())
}

func TestTimeoutChangeDoesNotAffectPendingRead(t *testing.T) {
	port, dev := newScriptedPort(t, 100*time.Millisecond)
	dev.reads = []step{
		{data: []byte("a"), advance: 30 * time.Millisecond, then: func() { port.SetTimeout(time.Second) }},
		{advance: 30 * time.Millisecond},
		{advance: 50 * time.Millisecond},
		{data: []byte("never")},
	}

	err := port.GetBlock(make([]byte, 4), 4)
	assert.ErrorIs(t, err, ErrReadTimeout)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		70 * time.Millisecond,
		40 * time.Millisecond,
	}, dev.waits, "waits keep counting down from the original deadline")
	assert.Len(t, dev.reads, 1)

	// the new value applies from the next call on
	assert.Equal(t, time.Second, port.Timeout())
	dev.waits = nil
	dev.reads = []step{{data: []byte("b")}}
	_, err = port.GetByte()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{closeCheckInterval}, dev.waits)
}

func TestLongWaitsAreSliced(t *testing.T) {
	port, dev := newScriptedPort(t, time.Second)
	dev.reads = []step{
		{advance: closeCheckInterval},
		{advance: 700 * time.Millisecond},
		{data: []byte("z")},
	}

	b, err := port.GetByte()
	require.NoError(t, err)
	assert.Equal(t, byte('z'), b)
	assert.Equal(t, []time.Duration{closeCheckInterval, closeCheckInterval, 50 * time.Millisecond}, dev.waits)
}

func TestPendingTransferAbandonedOnClose(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.reads = []step{
		{data: []byte("a"), then: func() { port.closing.Store(true) }},
		{data: []byte("b")},
	}

	err := port.GetBlock(make([]byte, 2), 2)
	assert.ErrorIs(t, err, ErrNotFunctional)
	assert.Len(t, dev.reads, 1, "no further attempt once Close is pending")
	assert.Equal(t, 0, dev.closed, "the handle is released by Close itself")

	port.Close()
	assert.Equal(t, 1, dev.closed)
	assert.False(t, port.Functional())
}

func TestBufferArgumentsDoNotTouchDevice(t *testing.T) {
	port, dev := newScriptedPort(t, 0)

	err := port.GetBlock(nil, 4)
	assert.ErrorIs(t, err, ErrNullPointer)
	err = port.PutBlock(nil, 1)
	assert.ErrorIs(t, err, ErrNullPointer)

	assert.ErrorIs(t, port.GetBlock(make([]byte, 2), 3), ErrInvalidArgument)
	assert.ErrorIs(t, port.PutBlock(make([]byte, 2), -1), ErrInvalidArgument)

	assert.Empty(t, dev.waits)
	assert.True(t, port.Functional())

	// zero-length requests succeed without a transfer
	assert.NoError(t, port.GetBlock(nil, 0))
	assert.NoError(t, port.PutBlock(nil, 0))
	assert.Empty(t, dev.waits)
}

func TestFlushQueues(t *testing.T) {
	port, dev := newScriptedPort(t, 0)

	require.NoError(t, port.FlushInput())
	require.NoError(t, port.FlushOutput())
	require.NoError(t, port.Flush())
	assert.Equal(t, []flushQueue{flushIn, flushOut, flushBoth}, dev.flushed)
	assert.True(t, port.Functional())
}

func TestGetLineDiscardsPartialLine(t *testing.T) {
	port, dev := newScriptedPort(t, 0)
	dev.reads = []step{
		{data: []byte("o")},
		{data: []byte("k")},
		{data: []byte("\r")},
	}

	line, err := port.GetLineDelim('\r')
	require.NoError(t, err)
	assert.Equal(t, "ok\r", line)

	dev.reads = []step{{data: []byte("x")}, {err: unix.EIO}}
	line, err = port.GetLine()
	assert.Empty(t, line)
	assert.True(t, errors.Is(err, ErrReadFailure))
}

func TestRemaining(t *testing.T) {
	clk := clock.NewMock()
	timer := NewTimer(clk)
	timer.Start()

	wait, ok := remaining(0, timer)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(-1), wait)

	clk.Add(30 * time.Millisecond)
	wait, ok = remaining(100*time.Millisecond, timer)
	assert.True(t, ok)
	assert.Equal(t, 70*time.Millisecond, wait)

	clk.Add(70 * time.Millisecond)
	_, ok = remaining(100*time.Millisecond, timer)
	assert.False(t, ok)
}
