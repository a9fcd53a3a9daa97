// Package serial provides a blocking, timeout-aware byte stream over a Linux
// serial device. On other systems Open fails with ErrUnsupportedPlatform.
//
// The capability contract is split into DataSource (sequential input),
// DataSink (sequential output) and Serial, which adds flushing of the OS
// buffers. Port is the concrete transport: it owns one tty handle, switches
// it to raw 8N1 mode at a standard baud rate and performs exact-length reads
// and writes bounded by a configurable deadline. Loopback is an in-memory
// Serial for tests.
//
// # Basic Usage
//
//	port, err := serial.Open("/dev/ttyUSB0", 115200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if err := port.PutBlock([]byte("AT\r\n"), 4); err != nil {
//	    log.Fatal(err)
//	}
//	line, err := port.GetLine()
//
// # Timeouts
//
// A timeout of zero (the default) blocks indefinitely. With a positive
// timeout every GetByte, GetBlock, PutByte and PutBlock call must complete
// within it or fail with ErrReadTimeout / ErrWriteTimeout. Timed-out calls are
// all-or-nothing: bytes moved before the deadline are not reported.
//
//	port.SetTimeout(100 * time.Millisecond)
//	b, err := port.GetByte()
//	if errors.Is(err, serial.ErrReadTimeout) {
//	    // nothing arrived in time
//	}
//
// Deadlines are measured with a Timer driven by a clock.Clock, which can be
// replaced with WithClock.
//
// # Error Handling
//
// Every failure is an *Error carrying an ErrorKind. Use errors.Is with the
// sentinels:
//
//	var (
//	    ErrInvalidDeviceName // path cannot be opened
//	    ErrConnectionFailure // baud rate or line discipline rejected
//	    ErrReadFailure       // device error during a read
//	    ErrWriteFailure      // device error during a write
//	    ErrReadTimeout       // read deadline elapsed
//	    ErrWriteTimeout      // write deadline elapsed
//	    ErrNullPointer       // nil buffer with nonzero length
//	    ErrNotFunctional     // port closed or failed
//	)
//
// Read and write failures are terminal: the handle is released and the Port
// stays non-functional. Open a new Port to reconnect.
//
// # Debugging
//
// Debugging(true) enables diagnostic tracing for every Port in the process.
// Traces go through logrus; SetLogger redirects them.
package serial
