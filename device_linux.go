package serial

import (
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// fdDevice is a tty opened non-blocking and switched to raw mode.
type fdDevice struct {
	fd int
}

var _ device = (*fdDevice)(nil)

func openDevice(path string, speed uint32, mode WriteMode) (device, error) {
	flags := unix.O_RDWR | unix.O_NOCTTY | unix.O_NONBLOCK | unix.O_CLOEXEC
	if mode == WriteModeSynced {
		flags |= unix.O_SYNC
	}

	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, newError("open", path, KindInvalidDeviceName, err)
	}

	if err := configureRaw(fd, speed); err != nil {
		unix.Close(fd)
		return nil, newError("open", path, KindConnectionFailure, err)
	}

	return &fdDevice{fd: fd}, nil
}

// configureRaw applies 8N1 raw mode at the given speed so every byte from the
// peer reaches the caller verbatim.
func configureRaw(fd int, speed uint32) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | speed
	termios.Ispeed = speed
	termios.Ospeed = speed

	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}

// poll waits for events and returns the reported revents, 0 on expiry.
func (d *fdDevice) poll(events int16, wait time.Duration) (int16, error) {
	ms := -1
	if wait >= 0 {
		ms = int((wait + time.Millisecond - 1) / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: events}}
	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		return fds[0].Revents, nil
	}
}

func (d *fdDevice) read(p []byte, wait time.Duration) (int, error) {
	revents, err := d.poll(unix.POLLIN, wait)
	if err != nil || revents == 0 {
		return 0, err
	}
	if revents&unix.POLLNVAL != 0 {
		return 0, unix.EBADF
	}

	n, err := unix.Read(d.fd, p)
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return 0, nil
	case err != nil:
		return 0, err
	case n == 0:
		// hangup with nothing left to deliver
		return 0, io.EOF
	}
	return n, nil
}

func (d *fdDevice) write(p []byte, wait time.Duration) (int, error) {
	revents, err := d.poll(unix.POLLOUT, wait)
	if err != nil || revents == 0 {
		return 0, err
	}
	if revents&unix.POLLNVAL != 0 {
		return 0, unix.EBADF
	}
	if revents&unix.POLLOUT == 0 {
		return 0, unix.EIO
	}

	n, err := unix.Write(d.fd, p)
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return 0, nil
	case err != nil:
		return 0, err
	}
	return n, nil
}

func (d *fdDevice) flush(q flushQueue) error {
	var queue int
	switch q {
	case flushIn:
		queue = unix.TCIFLUSH
	case flushOut:
		queue = unix.TCOFLUSH
	default:
		queue = unix.TCIOFLUSH
	}
	return unix.IoctlSetInt(d.fd, unix.TCFLSH, queue)
}

func (d *fdDevice) close() error {
	return unix.Close(d.fd)
}
