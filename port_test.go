//go:build linux

package serial

import (
	"bytes"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPTY opens a pseudo-terminal pair and a Port on its slave side. The
// returned master plays the role of the remote peer.
func openPTY(t *testing.T) (*Port, *os.File) {
	t.Helper()
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := Open(slave.Name(), 115200)
	require.NoError(t, err)
	t.Cleanup(port.Close)

	return port, master
}

func TestOpenNonExistentDevice(t *testing.T) {
	port, err := Open("/dev/nonexistent-serial-device", 115200)
	require.Error(t, err)
	assert.Nil(t, port)
	assert.ErrorIs(t, err, ErrInvalidDeviceName)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, KindInvalidDeviceName, KindOf(err))
}

func TestOpenRegularFileFailsConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-tty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	port, err := Open(path, 9600)
	require.Error(t, err)
	assert.Nil(t, port)
	assert.ErrorIs(t, err, ErrConnectionFailure)
}

func TestOpenUnsupportedBaudRate(t *testing.T) {
	_, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { slave.Close() })

	port, err := Open(slave.Name(), 123456)
	require.Error(t, err)
	assert.Nil(t, port)
	assert.ErrorIs(t, err, ErrConnectionFailure)
	assert.ErrorIs(t, err, ErrInvalidBaudRate)
}

func TestOpenInvalidOption(t *testing.T) {
	port, err := Open("/dev/null", 9600, WithTimeout(-time.Second))
	assert.Nil(t, port)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPortIsFunctionalAfterOpen(t *testing.T) {
	port, _ := openPTY(t)

	assert.True(t, port.Functional())
	assert.Equal(t, StateFunctional, port.State())
	assert.Equal(t, 115200, port.BaudRate())
	assert.Equal(t, time.Duration(0), port.Timeout())
}

func TestRoundTrip(t *testing.T) {
	port, master := openPTY(t)
	port.SetTimeout(2 * time.Second)

	payload := make([]byte, 1024)
	rand.New(rand.NewSource(1)).Read(payload)

	// port -> peer
	require.NoError(t, port.PutBlock(payload, len(payload)))
	got := make([]byte, len(payload))
	_, err := io.ReadFull(master, got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got), "raw mode must not alter outbound bytes")

	// peer -> port
	go master.Write(payload)
	back := make([]byte, len(payload))
	require.NoError(t, port.GetBlock(back, len(back)))
	assert.True(t, bytes.Equal(payload, back), "raw mode must not alter inbound bytes")

	stats := port.Stats()
	assert.Equal(t, uint64(len(payload)), stats.BytesRead)
	assert.Equal(t, uint64(len(payload)), stats.BytesWritten)
}

func TestPutByteGetByte(t *testing.T) {
	port, master := openPTY(t)
	port.SetTimeout(time.Second)

	require.NoError(t, port.PutByte(0x03))
	buf := make([]byte, 1)
	_, err := io.ReadFull(master, buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x03), buf[0])

	_, err = master.Write([]byte{0x11})
	require.NoError(t, err)
	b, err := port.GetByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), b)
}

func TestGetLineIncludesDelimiter(t *testing.T) {
	port, master := openPTY(t)
	port.SetTimeout(time.Second)

	_, err := master.Write([]byte("abc\n"))
	require.NoError(t, err)

	line, err := port.GetLine()
	require.NoError(t, err)
	assert.Equal(t, "abc\n", line)
}

func TestGetLineFailsOnDisconnect(t *testing.T) {
	port, master := openPTY(t)
	port.SetTimeout(2 * time.Second)

	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, master.Close())

	line, err := port.GetLine()
	require.Error(t, err)
	assert.Empty(t, line)
	assert.ErrorIs(t, err, ErrReadFailure)
	assert.False(t, port.Functional())
}

func TestReadTimeout(t *testing.T) {
	port, _ := openPTY(t)
	port.SetTimeout(100 * time.Millisecond)

	start := time.Now()
	_, err := port.GetByte()
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadTimeout)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.True(t, port.Functional())
}

func TestZeroTimeoutBlocksUntilData(t *testing.T) {
	port, master := openPTY(t)
	port.SetTimeout(100 * time.Millisecond)
	port.SetTimeout(0)

	go func() {
		time.Sleep(250 * time.Millisecond)
		master.Write([]byte{'x'})
	}()

	start := time.Now()
	b, err := port.GetByte()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestFlushInputDiscardsPendingBytes(t *testing.T) {
	port, master := openPTY(t)

	_, err := master.Write([]byte("stale"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, port.FlushInput())
	assert.True(t, port.Functional())

	port.SetTimeout(100 * time.Millisecond)
	_, err = port.GetByte()
	assert.ErrorIs(t, err, ErrReadTimeout)
}

func TestFlushOutputAndBoth(t *testing.T) {
	port, _ := openPTY(t)

	assert.NoError(t, port.FlushOutput())
	assert.NoError(t, port.Flush())
	assert.True(t, port.Functional())
}

func TestNullBufferDoesNotTouchDevice(t *testing.T) {
	port, master := openPTY(t)

	assert.ErrorIs(t, port.GetBlock(nil, 8), ErrNullPointer)
	assert.ErrorIs(t, port.PutBlock(nil, 8), ErrNullPointer)
	assert.Equal(t, KindNullPointer, KindOf(port.PutBlock(nil, 1)))
	assert.True(t, port.Functional())

	// nothing reached the peer
	port.SetTimeout(time.Second)
	require.NoError(t, port.PutByte('!'))
	buf := make([]byte, 1)
	_, err := io.ReadFull(master, buf)
	require.NoError(t, err)
	assert.Equal(t, byte('!'), buf[0])
}

// within runs f in a goroutine and fails the test if it has not returned
// after limit.
func within(t *testing.T, limit time.Duration, what string, f func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("%s still blocked after %v", what, limit)
	}
}

func TestStatusDoesNotWaitForPendingRead(t *testing.T) {
	port, _ := openPTY(t)

	readErr := make(chan error, 1)
	go func() {
		_, err := port.GetByte()
		readErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	within(t, time.Second, "Functional()", func() { assert.True(t, port.Functional()) })
	within(t, time.Second, "State()", func() { assert.Equal(t, StateFunctional, port.State()) })
	within(t, time.Second, "Collector.Collect", func() {
		assert.Equal(t, 7, testutil.CollectAndCount(NewCollector(port)))
	})
	within(t, time.Second, "Close()", port.Close)

	select {
	case err := <-readErr:
		assert.ErrorIs(t, err, ErrNotFunctional)
	case <-time.After(time.Second):
		t.Fatal("pending read not abandoned after Close")
	}
	assert.False(t, port.Functional())
}

func TestClose(t *testing.T) {
	port, _ := openPTY(t)

	port.Close()
	assert.False(t, port.Functional())
	assert.Equal(t, StateClosed, port.State())

	_, err := port.GetByte()
	assert.ErrorIs(t, err, ErrNotFunctional)
	assert.ErrorIs(t, port.PutBlock([]byte("x"), 1), ErrNotFunctional)
	assert.ErrorIs(t, port.Flush(), ErrNotFunctional)

	port.Close()
}
