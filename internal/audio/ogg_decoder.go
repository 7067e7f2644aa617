package audio

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// vorbisStream is the slice of *oggvorbis.Reader the decoder uses.
// Positions and lengths are in frames (samples per channel).
type vorbisStream interface {
	SampleRate() int
	Channels() int
	Length() int64
	Position() int64
	SetPosition(pos int64) error
	// Read returns the number of interleaved values decoded, a multiple of Channels()
	Read(p []float32) (int, error)
}

// newVorbisStream is replaced in tests; there is no pure-Go Vorbis encoder
// to build fixtures with
var newVorbisStream = func(r io.Reader) (vorbisStream, error) {
	rd, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// maxEmptyPackets bounds consecutive empty reads before treating the stream as drained
const maxEmptyPackets = 8

// OggDecoder decodes Ogg Vorbis streams
type OggDecoder struct {
	decoder
}

// NewOggDecoder creates a closed Ogg Vorbis decoder that opens files through fu
func NewOggDecoder(fu *fileutil.FileUtils) *OggDecoder {
	d := &OggDecoder{decoder: newDecoder("ogg", fu, openOgg)}
	releaseOnCollect(d, d.res)
	return d
}

type oggSession struct {
	stream   vorbisStream
	channels int
	scratch  []float32
}

func openOgg(src Source) (session, streamInfo, error) {
	stream, err := newVorbisStream(src)
	if err != nil {
		return nil, streamInfo{}, fmt.Errorf("failed to read vorbis headers: %w", err)
	}

	info := streamInfo{
		sampleRate:  stream.SampleRate(),
		channels:    stream.Channels(),
		totalFrames: stream.Length(),
	}
	if info.totalFrames < 0 {
		info.totalFrames = 0
	}

	return &oggSession{stream: stream, channels: info.channels}, info, nil
}

func (s *oggSession) decode(pcm []byte) (int, error) {
	values := len(pcm) / bytesPerSample
	values -= values % s.channels
	if values == 0 {
		return 0, nil
	}

	if cap(s.scratch) < values {
		s.scratch = make([]float32, values)
	}
	buf := s.scratch[:values]

	// A packet can decode to zero values (the first one after the headers does)
	var n int
	var err error
	for tries := 0; tries < maxEmptyPackets; tries++ {
		n, err = s.stream.Read(buf)
		if n > 0 || err != nil {
			break
		}
	}
	n -= n % s.channels
	for i := 0; i < n; i++ {
		putSample(pcm, i, FloatToInt16(buf[i]))
	}

	if n > 0 && err == io.EOF {
		err = nil
	}
	return n * bytesPerSample, err
}

func (s *oggSession) seek(frame int64) error {
	return s.stream.SetPosition(frame)
}

func (s *oggSession) tell() int64 {
	return s.stream.Position()
}

// The vorbis reader holds no resources of its own; the source is released by the decoder
func (s *oggSession) close() error {
	s.stream = nil
	s.scratch = nil
	return nil
}
