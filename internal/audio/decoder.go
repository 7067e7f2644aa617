package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// bytesPerSample is fixed: every decoder emits signed 16-bit little-endian PCM
const bytesPerSample = 2

var (
	// ErrUnsupportedFormat is returned by NewDecoder for unknown extensions
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNotOpened is returned when an operation needs an opened decoder
	ErrNotOpened = errors.New("decoder not opened")

	// ErrSeekRange is returned when seeking outside [0, TotalFrames]
	ErrSeekRange = errors.New("seek offset out of range")
)

// Decoder decodes a compressed audio resource into interleaved 16-bit PCM frames.
//
// A Decoder starts closed. Open moves it to opened; Close (or a failed Open)
// moves it back. Read, Seek and Tell are only meaningful while opened.
// Failures are reported through the boolean/count results; Err holds the
// cause of the most recent failure.
//
// A Decoder is not safe for concurrent use. Use one per stream.
type Decoder interface {
	// Open resolves path through the file layer and starts a decoding session
	Open(path string) bool

	// Close ends the session and releases the file handle. No-op when closed.
	Close()

	// Read decodes up to framesToRead frames into pcm and returns the number
	// of whole frames written. Fewer frames than requested means end of stream.
	Read(framesToRead int, pcm []byte) int

	// Seek moves to an absolute frame offset in [0, TotalFrames]
	Seek(frameOffset int64) bool

	// Tell returns the current frame offset
	Tell() int64

	IsOpened() bool
	SampleRate() int
	ChannelCount() int
	BytesPerFrame() int
	TotalFrames() int64

	// Err returns the cause of the most recent failed operation
	Err() error
}

// streamInfo is the header data a library reports at open time
type streamInfo struct {
	sampleRate  int
	channels    int
	totalFrames int64
}

// session is one opened library stream.
// decode must only ever produce whole frames.
type session interface {
	decode(pcm []byte) (int, error)
	seek(frame int64) error
	tell() int64
	close() error
}

// openFunc starts a library session over src
type openFunc func(src Source) (session, streamInfo, error)

// resources are what an opened decoder must release.
// Kept apart from the decoder so a cleanup can run without resurrecting it.
type resources struct {
	src  Source
	sess session
}

func (r *resources) release() {
	if r.sess != nil {
		_ = r.sess.close()
		r.sess = nil
	}
	if r.src != nil {
		_ = r.src.Close()
		r.src = nil
	}
}

// decoder implements the Decoder state machine on top of a library session
type decoder struct {
	format     string
	fu         *fileutil.FileUtils
	openSource func(path string) (Source, error)
	openStream openFunc

	res *resources

	sampleRate    int
	channelCount  int
	bytesPerFrame int
	totalFrames   int64
	opened        bool
	atEnd         bool
	err           error
}

func newDecoder(format string, fu *fileutil.FileUtils, open openFunc) decoder {
	if fu == nil {
		fu = fileutil.New()
	}
	return decoder{
		format:     format,
		fu:         fu,
		openSource: func(path string) (Source, error) { return OpenSource(fu, path) },
		openStream: open,
		res:        &resources{},
	}
}

// releaseOnCollect frees the session of an opened decoder that was dropped
// without Close
func releaseOnCollect[T any](owner *T, res *resources) {
	runtime.AddCleanup(owner, func(r *resources) { r.release() }, res)
}

// Open resolves path and starts a session. An already opened decoder is closed first.
func (d *decoder) Open(path string) bool {
	d.Close()
	d.err = nil

	src, srcErr := d.openSource(path)

	// The source goes to the library even when the path did not resolve;
	// the null source makes the library fail on its first read
	sess, info, err := d.openStream(src)
	if err != nil {
		// The library never took ownership, so the handle is ours to release
		_ = src.Close()
		if srcErr != nil {
			d.err = fmt.Errorf("failed to open %s: %w", path, srcErr)
		} else {
			d.err = fmt.Errorf("failed to open %s stream %s: %w", d.format, path, err)
		}
		return false
	}

	if info.channels <= 0 || info.sampleRate <= 0 {
		_ = sess.close()
		_ = src.Close()
		d.err = fmt.Errorf("invalid %s header in %s: %d Hz, %d channels", d.format, path, info.sampleRate, info.channels)
		return false
	}

	d.res.src = src
	d.res.sess = sess
	d.sampleRate = info.sampleRate
	d.channelCount = info.channels
	d.bytesPerFrame = info.channels * bytesPerSample
	d.totalFrames = info.totalFrames
	d.atEnd = false
	d.opened = true
	return true
}

// Close releases the session and then the file handle
func (d *decoder) Close() {
	if !d.opened {
		return
	}
	d.res.release()
	d.opened = false
	d.atEnd = false
}

// Read decodes whole frames into pcm, looping over the library until the
// request is met or the stream ends
func (d *decoder) Read(framesToRead int, pcm []byte) int {
	if !d.opened {
		d.err = ErrNotOpened
		return 0
	}
	d.err = nil
	if framesToRead <= 0 || d.atEnd {
		return 0
	}

	// Clamp before multiplying so huge requests cannot overflow
	framesToRead = min(framesToRead, len(pcm)/d.bytesPerFrame)
	want := framesToRead * d.bytesPerFrame

	total := 0
	for total < want {
		n, err := d.res.sess.decode(pcm[total:want])
		total += n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.err = fmt.Errorf("%s decode failed: %w", d.format, err)
			}
			break
		}
		if n == 0 {
			break
		}
	}

	return total / d.bytesPerFrame
}

// Seek moves the decode cursor to an absolute frame offset.
// Seeking to TotalFrames parks the cursor at the end of the stream.
func (d *decoder) Seek(frameOffset int64) bool {
	if !d.opened {
		d.err = ErrNotOpened
		return false
	}
	d.err = nil

	if frameOffset < 0 || frameOffset > d.totalFrames {
		d.err = fmt.Errorf("%w: %d not in [0, %d]", ErrSeekRange, frameOffset, d.totalFrames)
		return false
	}

	if frameOffset == d.totalFrames {
		d.atEnd = true
		return true
	}

	if err := d.res.sess.seek(frameOffset); err != nil {
		d.err = fmt.Errorf("%s seek to frame %d failed: %w", d.format, frameOffset, err)
		return false
	}
	d.atEnd = false
	return true
}

// Tell returns the current frame offset, 0 when closed
func (d *decoder) Tell() int64 {
	if !d.opened {
		return 0
	}
	if d.atEnd {
		return d.totalFrames
	}
	return d.res.sess.tell()
}

// IsOpened reports whether a session is active
func (d *decoder) IsOpened() bool {
	return d.opened
}

// SampleRate returns the stream sample rate in Hz
func (d *decoder) SampleRate() int {
	return d.sampleRate
}

// ChannelCount returns the number of interleaved channels
func (d *decoder) ChannelCount() int {
	return d.channelCount
}

// BytesPerFrame returns ChannelCount * 2
func (d *decoder) BytesPerFrame() int {
	return d.bytesPerFrame
}

// TotalFrames returns the stream length in PCM frames
func (d *decoder) TotalFrames() int64 {
	return d.totalFrames
}

// Err returns the cause of the most recent failure
func (d *decoder) Err() error {
	return d.err
}

// NewDecoder picks a decoder by file extension
func NewDecoder(fu *fileutil.FileUtils, path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga":
		return NewOggDecoder(fu), nil
	case ".mp3":
		return NewMP3Decoder(fu), nil
	case ".wav", ".wave":
		return NewWAVDecoder(fu), nil
	case ".flac":
		return NewFLACDecoder(fu), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// OpenDecoder creates the decoder for path and opens it
func OpenDecoder(fu *fileutil.FileUtils, path string) (Decoder, error) {
	dec, err := NewDecoder(fu, path)
	if err != nil {
		return nil, err
	}
	if !dec.Open(path) {
		return nil, dec.Err()
	}
	return dec, nil
}
