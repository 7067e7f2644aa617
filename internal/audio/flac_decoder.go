package audio

import (
	"fmt"
	"io"

	"github.com/linuxmatters/tapedeck/internal/fileutil"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC streams
type FLACDecoder struct {
	decoder
}

// NewFLACDecoder creates a closed FLAC decoder that opens files through fu
func NewFLACDecoder(fu *fileutil.FileUtils) *FLACDecoder {
	d := &FLACDecoder{decoder: newDecoder("flac", fu, openFLAC)}
	releaseOnCollect(d, d.res)
	return d
}

type flacSession struct {
	stream      *flac.Stream
	channels    int
	bitDepth    int
	blockSize   int
	totalFrames int64
	pos         int64

	// Interleaved 16-bit samples decoded from the last FLAC frame but not yet returned
	pending []int16
}

func openFLAC(src Source) (session, streamInfo, error) {
	// Parse FLAC stream with seeking enabled - reads signature and StreamInfo block
	stream, err := flac.NewSeek(src)
	if err != nil {
		return nil, streamInfo{}, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	s := &flacSession{
		stream:      stream,
		channels:    int(stream.Info.NChannels),
		bitDepth:    int(stream.Info.BitsPerSample),
		blockSize:   int(stream.Info.BlockSizeMax),
		totalFrames: int64(stream.Info.NSamples),
	}

	info := streamInfo{
		sampleRate:  int(stream.Info.SampleRate),
		channels:    s.channels,
		totalFrames: s.totalFrames,
	}
	return s, info, nil
}

func (s *flacSession) decode(pcm []byte) (int, error) {
	want := len(pcm) / bytesPerSample
	want -= want % s.channels

	written := 0
	for written < want {
		if len(s.pending) == 0 {
			if err := s.parseNext(); err != nil {
				if written > 0 && err == io.EOF {
					err = nil
				}
				s.pos += int64(written / s.channels)
				return written * bytesPerSample, err
			}
		}

		n := min(want-written, len(s.pending))
		for i := 0; i < n; i++ {
			putSample(pcm, written+i, s.pending[i])
		}
		s.pending = s.pending[n:]
		written += n
	}

	s.pos += int64(written / s.channels)
	return written * bytesPerSample, nil
}

// parseNext decodes the next FLAC frame into pending
func (s *flacSession) parseNext() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		return err
	}

	// FLAC frames contain one subframe per channel
	count := len(frame.Subframes[0].Samples)
	buf := make([]int16, 0, count*s.channels)
	for i := 0; i < count; i++ {
		for ch := 0; ch < s.channels; ch++ {
			buf = append(buf, ScaleToInt16(frame.Subframes[ch].Samples[i], s.bitDepth))
		}
	}
	s.pending = buf
	return nil
}

// seekAnchor returns a sample at or before target whose frame start the
// library reports correctly. For fixed block streams it numbers frames as
// index*blockSize, which is wrong for a short final frame, so anchor on the
// frame before the last one.
func (s *flacSession) seekAnchor(target int64) int64 {
	blockSize := int64(s.blockSize)
	if blockSize <= 0 || s.totalFrames <= 0 {
		return target
	}
	k := target / blockSize
	last := (s.totalFrames - 1) / blockSize
	if k >= last && last > 0 {
		k = last - 1
	}
	return min(k*blockSize, target)
}

func (s *flacSession) seek(target int64) error {
	// Seek lands on the start of the frame holding the anchor; skip up to target
	start, err := s.stream.Seek(uint64(s.seekAnchor(target)))
	if err != nil {
		return err
	}
	s.pending = nil
	if int64(start) > target {
		return fmt.Errorf("seek overshot: landed on %d for %d", start, target)
	}

	skip := (target - int64(start)) * int64(s.channels)
	for skip > 0 {
		if len(s.pending) == 0 {
			if err := s.parseNext(); err != nil {
				return fmt.Errorf("failed to reach frame %d: %w", target, err)
			}
		}
		n := min(skip, int64(len(s.pending)))
		s.pending = s.pending[n:]
		skip -= n
	}

	s.pos = target
	return nil
}

func (s *flacSession) tell() int64 {
	return s.pos
}

func (s *flacSession) close() error {
	s.pending = nil
	return s.stream.Close()
}
