// Package ringbuf implements a fixed-size ring buffer used to re-chunk sample streams.
package ringbuf

import "io"

// New creates a new ring buffer with s specified size.
func New[T any](sz int) *Buffer[T] {
	return &Buffer[T]{
		buf: make([]T, sz),
	}
}

type Buffer[T any] struct {
	buf   []T
	write int
	read  int
	full  bool
}

// Size returns underlying size of the buffer.
func (b *Buffer[T]) Size() int {
	return len(b.buf)
}

// Len returns a number of elements currently in the buffer.
func (b *Buffer[T]) Len() int {
	switch {
	case b.full:
		return len(b.buf)
	case b.read <= b.write:
		return b.write - b.read
	}
	return b.write - b.read + len(b.buf)
}

// Free returns a number of elements that can be written without discarding buffered ones.
func (b *Buffer[T]) Free() int {
	return len(b.buf) - b.Len()
}

// Reset drops all buffered elements.
func (b *Buffer[T]) Reset() {
	b.read, b.write, b.full = 0, 0, false
}

// Read a number of elements from the buffer. Function returns io.EOF if the buffer is empty.
func (b *Buffer[T]) Read(p []T) (int, error) {
	if len(p) == 0 {
		return 0, nil
	} else if b.Len() == 0 {
		return 0, io.EOF
	}
	var n int
	for len(p) > 0 && b.Len() > 0 {
		end := len(b.buf)
		if b.read < b.write {
			end = b.write
		}
		dn := copy(p, b.buf[b.read:end])
		b.read = (b.read + dn) % len(b.buf)
		b.full = false
		p = p[dn:]
		n += dn
	}
	return n, nil
}

// Write a number of elements into the buffer. Oldest elements will be discarded if the buffer cannot fit all elements.
func (b *Buffer[T]) Write(p []T) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	if dn := len(p) - len(b.buf); dn > 0 {
		// only the tail fits
		n += dn
		p = p[dn:]
	}
	if dn := len(p) - b.Free(); dn > 0 {
		b.read = (b.read + dn) % len(b.buf)
		b.full = false
	}
	for len(p) > 0 {
		dn := copy(b.buf[b.write:], p)
		b.write = (b.write + dn) % len(b.buf)
		p = p[dn:]
		n += dn
	}
	b.full = b.write == b.read
	return n, nil
}
