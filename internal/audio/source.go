package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// ErrNoSource is returned by a Source that has no file behind it,
// either because the path never resolved or because it was closed
var ErrNoSource = errors.New("no file source")

// Source is the byte stream a decoding library pulls from.
// It is what gets handed to oggvorbis, go-mp3, go-audio/wav and mewkiz/flac
// in place of a callback table.
type Source interface {
	io.ReadSeekCloser

	// Tell returns the current byte offset
	Tell() (int64, error)
}

// fileSource bridges an engine file handle to Source.
// The source owns the handle: Close releases it through FileUtils.
type fileSource struct {
	fu   *fileutil.FileUtils
	file *fileutil.File
}

// NewFileSource wraps an opened handle. A nil handle yields a source whose
// reads, seeks and tells all fail with ErrNoSource.
func NewFileSource(fu *fileutil.FileUtils, file *fileutil.File) Source {
	if file == nil {
		return nullSource{}
	}
	return &fileSource{fu: fu, file: file}
}

// OpenSource opens path for binary reading and bridges it. The returned
// Source is never nil; on failure it is the null source and err says why.
func OpenSource(fu *fileutil.FileUtils, path string) (Source, error) {
	if fu == nil {
		fu = fileutil.New()
	}
	f, err := fu.Open(path, "rb")
	if err != nil {
		return nullSource{}, err
	}
	return NewFileSource(fu, f), nil
}

// Read reads len(p) bytes and returns how many were actually read
func (s *fileSource) Read(p []byte) (int, error) {
	if s.file == nil {
		return 0, ErrNoSource
	}
	n, err := s.file.Read(p)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// Seek forwards to the handle's seek
func (s *fileSource) Seek(offset int64, whence int) (int64, error) {
	if s.file == nil {
		return 0, ErrNoSource
	}
	pos, err := s.file.Seek(offset, whence)
	if err != nil {
		return 0, fmt.Errorf("seek to %d (whence %d) failed: %w", offset, whence, err)
	}
	return pos, nil
}

// Tell returns the handle's byte position
func (s *fileSource) Tell() (int64, error) {
	if s.file == nil {
		return -1, ErrNoSource
	}
	pos := s.file.Tell()
	if pos < 0 {
		return -1, ErrNoSource
	}
	return pos, nil
}

// Close releases the handle. It never reports failure to the caller and
// is safe to call more than once.
func (s *fileSource) Close() error {
	if s.file == nil {
		return nil
	}
	if s.fu != nil {
		_ = s.fu.Close(s.file)
	} else {
		_ = s.file.Close()
	}
	s.file = nil
	return nil
}

// nullSource stands in for a handle that could not be opened
type nullSource struct{}

func (nullSource) Read([]byte) (int, error)       { return 0, ErrNoSource }
func (nullSource) Seek(int64, int) (int64, error) { return 0, ErrNoSource }
func (nullSource) Tell() (int64, error)           { return -1, ErrNoSource }
func (nullSource) Close() error                   { return nil }
