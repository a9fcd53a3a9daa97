package serial

import (
	"bytes"
	"io"
	"sync"
)

// Loopback is an in-memory Serial whose output is its own input. It never
// blocks: reading past the written data fails with KindReadFailure wrapping
// io.EOF.
type Loopback struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

var _ Serial = (*Loopback)(nil)

// NewLoopback returns an empty Loopback.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// GetByte reads the oldest buffered byte.
func (l *Loopback) GetByte() (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.buf.ReadByte()
	if err != nil {
		return 0, newError("read", "loopback", KindReadFailure, io.EOF)
	}
	return b, nil
}

// GetBlock fails without consuming anything when fewer than n bytes are buffered.
func (l *Loopback) GetBlock(buf []byte, n int) error {
	if err := checkBuffer("read", "loopback", buf, n); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() < n {
		return newError("read", "loopback", KindReadFailure, io.ErrUnexpectedEOF)
	}
	_, err := io.ReadFull(&l.buf, buf[:n])
	return err
}

// PutByte appends b to the buffer.
func (l *Loopback) PutByte(b byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.WriteByte(b)
}

// PutBlock appends buf[:n] to the buffer.
func (l *Loopback) PutBlock(buf []byte, n int) error {
	if err := checkBuffer("write", "loopback", buf, n); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.buf.Write(buf[:n])
	return err
}

// FlushInput drops everything written but not yet read.
func (l *Loopback) FlushInput() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
	return nil
}

// FlushOutput is a no-op: written bytes are readable immediately.
func (l *Loopback) FlushOutput() error {
	return nil
}

// Buffered returns the number of bytes waiting to be read.
func (l *Loopback) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Len()
}
