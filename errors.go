package serial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrInvalidDeviceName = errors.New("serial device cannot be opened")
	ErrConnectionFailure = errors.New("serial device configuration failed")
	ErrReadFailure       = errors.New("serial read failed")
	ErrWriteFailure      = errors.New("serial write failed")
	ErrReadTimeout       = errors.New("read operation timed out")
	ErrWriteTimeout      = errors.New("write operation timed out")
	ErrNullPointer       = errors.New("nil buffer with nonzero length")
	ErrNotFunctional     = errors.New("serial port is not functional")
	ErrInvalidArgument   = errors.New("invalid argument")

	// Configuration errors, wrapped by ConnectionFailure when raised from Open
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")

	// ErrUnsupportedPlatform is wrapped by ConnectionFailure on systems without
	// Linux termios.
	ErrUnsupportedPlatform = errors.New("serial ports require linux")
)

// ErrorKind classifies every failure a Port can report.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidDeviceName
	KindConnectionFailure
	KindReadFailure
	KindWriteFailure
	KindReadTimeout
	KindWriteTimeout
	KindNullPointer
	KindNotFunctional
	KindInvalidArgument
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "Unknown",
	KindInvalidDeviceName: "InvalidDeviceName",
	KindConnectionFailure: "ConnectionFailure",
	KindReadFailure:       "ReadFailure",
	KindWriteFailure:      "WriteFailure",
	KindReadTimeout:       "ReadTimeout",
	KindWriteTimeout:      "WriteTimeout",
	KindNullPointer:       "NullPointer",
	KindNotFunctional:     "NotFunctional",
	KindInvalidArgument:   "InvalidArgument",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// sentinel returns the package error that errors.Is matches for this kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidDeviceName:
		return ErrInvalidDeviceName
	case KindConnectionFailure:
		return ErrConnectionFailure
	case KindReadFailure:
		return ErrReadFailure
	case KindWriteFailure:
		return ErrWriteFailure
	case KindReadTimeout:
		return ErrReadTimeout
	case KindWriteTimeout:
		return ErrWriteTimeout
	case KindNullPointer:
		return ErrNullPointer
	case KindNotFunctional:
		return ErrNotFunctional
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// Error is returned by every Port operation that fails.
//
// Use errors.Is with the Err* sentinels to test the kind, and errors.As or
// errors.Is against the underlying cause (for example unix.ENOENT) to inspect
// what the operating system reported.
type Error struct {
	Op     string
	Device string
	Kind   ErrorKind
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Err != nil && !errors.Is(e.Err, e.Kind.sentinel()) {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Device != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Device, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Timeout reports whether the operation failed because its deadline elapsed.
func (e *Error) Timeout() bool {
	return e.Kind == KindReadTimeout || e.Kind == KindWriteTimeout
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err is a ReadTimeout or WriteTimeout.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Timeout()
}

func newError(op, device string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Device: device, Kind: kind, Err: err}
}
