package audio

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// go-mp3 always outputs interleaved stereo 16-bit little-endian
const (
	mp3Channels      = 2
	mp3BytesPerFrame = mp3Channels * bytesPerSample
)

// MP3Decoder decodes MPEG-1/2 Layer III streams
type MP3Decoder struct {
	decoder
}

// NewMP3Decoder creates a closed MP3 decoder that opens files through fu
func NewMP3Decoder(fu *fileutil.FileUtils) *MP3Decoder {
	d := &MP3Decoder{decoder: newDecoder("mp3", fu, openMP3)}
	releaseOnCollect(d, d.res)
	return d
}

type mp3Session struct {
	dec *mp3.Decoder
	pos int64 // byte offset into the decoded stream
}

func openMP3(src Source) (session, streamInfo, error) {
	dec, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, streamInfo{}, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	// Length is in decoded bytes; it is only known because the source seeks
	length := dec.Length()
	if length < 0 {
		length = 0
	}

	info := streamInfo{
		sampleRate:  dec.SampleRate(),
		channels:    mp3Channels,
		totalFrames: length / mp3BytesPerFrame,
	}
	return &mp3Session{dec: dec}, info, nil
}

func (s *mp3Session) decode(pcm []byte) (int, error) {
	n, err := readFrames(s.dec, pcm, mp3BytesPerFrame)
	s.pos += int64(n)
	return n, err
}

func (s *mp3Session) seek(frame int64) error {
	pos, err := s.dec.Seek(frame*mp3BytesPerFrame, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *mp3Session) tell() int64 {
	return s.pos / mp3BytesPerFrame
}

func (s *mp3Session) close() error {
	s.dec = nil
	return nil
}
