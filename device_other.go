//go:build !linux

package serial

// Raw tty configuration uses Linux termios ioctls. Elsewhere the package
// still builds so Loopback, the interfaces and port discovery stay usable,
// but Open always fails.

func getBaudRate(rate int) (uint32, error) {
	if !IsStandardBaudRate(rate) {
		return 0, ErrInvalidBaudRate
	}
	return uint32(rate), nil
}

func openDevice(path string, speed uint32, mode WriteMode) (device, error) {
	return nil, newError("open", path, KindConnectionFailure, ErrUnsupportedPlatform)
}
