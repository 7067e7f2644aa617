package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// WAV format tags
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// The sub-format GUID of a WAVE_FORMAT_EXTENSIBLE fmt chunk starts at byte 24
// and leads with the plain format tag
const (
	wavExtensibleSize   = 40
	wavSubFormatOffset  = 24
	wavRIFFHeaderLength = 12
)

// WAVDecoder decodes uncompressed PCM WAV files.
// 8, 16, 24 and 32-bit input is narrowed or widened to 16-bit output.
type WAVDecoder struct {
	decoder
}

// NewWAVDecoder creates a closed WAV decoder that opens files through fu
func NewWAVDecoder(fu *fileutil.FileUtils) *WAVDecoder {
	d := &WAVDecoder{decoder: newDecoder("wav", fu, openWAV)}
	releaseOnCollect(d, d.res)
	return d
}

type wavSession struct {
	src         Source
	dataStart   int64
	bitDepth    int
	channels    int
	inFrameSize int
	totalFrames int64
	pos         int64
	raw         []byte
}

func openWAV(src Source) (session, streamInfo, error) {
	dec := wav.NewDecoder(src)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, streamInfo{}, fmt.Errorf("invalid WAV file: %w", err)
		}
		return nil, streamInfo{}, errors.New("invalid WAV file")
	}

	// Get format info without reading any samples
	if err := dec.FwdToPCM(); err != nil {
		return nil, streamInfo{}, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	// FwdToPCM leaves the source positioned on the first PCM byte
	dataStart, err := src.Tell()
	if err != nil {
		return nil, streamInfo{}, fmt.Errorf("failed to locate PCM data: %w", err)
	}

	format := int(dec.WavAudioFormat)
	if format == wavFormatExtensible {
		// go-audio/wav drops the fmt extension, so read the sub-format directly
		format, err = wavSubFormat(src)
		if err != nil {
			return nil, streamInfo{}, fmt.Errorf("failed to read WAV sub-format: %w", err)
		}
		if _, err := src.Seek(dataStart, io.SeekStart); err != nil {
			return nil, streamInfo{}, fmt.Errorf("failed to seek to PCM data: %w", err)
		}
	}
	if format != wavFormatPCM {
		return nil, streamInfo{}, fmt.Errorf("unsupported WAV encoding: format tag %#x", format)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, streamInfo{}, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}

	channels := int(dec.NumChans)
	inFrameSize := channels * bitDepth / 8
	if inFrameSize == 0 {
		return nil, streamInfo{}, errors.New("invalid WAV frame size")
	}

	s := &wavSession{
		src:         src,
		dataStart:   dataStart,
		bitDepth:    bitDepth,
		channels:    channels,
		inFrameSize: inFrameSize,
		totalFrames: int64(dec.PCMSize) / int64(inFrameSize),
	}

	info := streamInfo{
		sampleRate:  int(dec.SampleRate),
		channels:    channels,
		totalFrames: s.totalFrames,
	}
	return s, info, nil
}

// wavSubFormat walks the RIFF chunks to the fmt chunk and returns the format
// tag embedded in its WAVE_FORMAT_EXTENSIBLE sub-format GUID
func wavSubFormat(src Source) (int, error) {
	if _, err := src.Seek(wavRIFFHeaderLength, io.SeekStart); err != nil {
		return 0, err
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(src, hdr[:]); err != nil {
			return 0, err
		}
		size := int64(binary.LittleEndian.Uint32(hdr[4:]))
		if string(hdr[:4]) != "fmt " {
			// Chunks are padded to an even length
			if _, err := src.Seek(size+size%2, io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}

		if size < wavExtensibleSize {
			return 0, fmt.Errorf("extensible fmt chunk too short: %d bytes", size)
		}
		body := make([]byte, wavExtensibleSize)
		if _, err := io.ReadFull(src, body); err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(body[wavSubFormatOffset:])), nil
	}
}

func (s *wavSession) decode(pcm []byte) (int, error) {
	frames := int64(len(pcm) / (s.channels * bytesPerSample))
	if remaining := s.totalFrames - s.pos; frames > remaining {
		frames = remaining
	}
	if frames <= 0 {
		return 0, io.EOF
	}

	size := int(frames) * s.inFrameSize
	if cap(s.raw) < size {
		s.raw = make([]byte, size)
	}
	raw := s.raw[:size]

	n, err := readFrames(s.src, raw, s.inFrameSize)
	got := n / s.inFrameSize
	samples := got * s.channels

	bytesIn := s.bitDepth / 8
	for i := 0; i < samples; i++ {
		putSample(pcm, i, wavSample(raw[i*bytesIn:], s.bitDepth))
	}

	s.pos += int64(got)
	return samples * bytesPerSample, err
}

// wavSample converts one little-endian WAV sample to 16-bit.
// 8-bit WAV is unsigned; wider depths keep their top 16 bits.
func wavSample(b []byte, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		return int16(int(b[0])-128) << 8
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		return int16(uint16(b[1]) | uint16(b[2])<<8)
	default:
		return int16(uint16(b[2]) | uint16(b[3])<<8)
	}
}

func (s *wavSession) seek(frame int64) error {
	if _, err := s.src.Seek(s.dataStart+frame*int64(s.inFrameSize), io.SeekStart); err != nil {
		return err
	}
	s.pos = frame
	return nil
}

func (s *wavSession) tell() int64 {
	return s.pos
}

func (s *wavSession) close() error {
	s.raw = nil
	return nil
}
