package fileutil

import (
	"io"
)

// File is a read-only handle to a loose file or an inflated pack entry
type File struct {
	name   string
	r      io.ReadSeeker
	closer io.Closer // nil for pack entries
	size   int64
	pos    int64
	closed bool
}

// Name returns the resolved path or pack entry name
func (f *File) Name() string {
	return f.name
}

// Size returns the file length in bytes
func (f *File) Size() int64 {
	return f.size
}

// Read reads up to len(p) bytes
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	n, err := f.r.Read(p)
	f.pos += int64(n)
	return n, err
}

// Seek moves the read position using io.Seek* whence values
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return -1, ErrClosed
	}
	pos, err := f.r.Seek(offset, whence)
	if err != nil {
		return -1, err
	}
	f.pos = pos
	return pos, nil
}

// Tell returns the current byte position, or -1 once closed
func (f *File) Tell() int64 {
	if f.closed {
		return -1
	}
	return f.pos
}

// Closed reports whether the handle has been released
func (f *File) Closed() bool {
	return f.closed
}

// Close releases the handle. Subsequent calls are no-ops.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.r = nil
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}
