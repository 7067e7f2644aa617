package audio

import (
	"encoding/binary"
	"io"
	"math"
)

// FloatToInt16 converts a [-1, 1] float sample to 16-bit with rounding and clipping
func FloatToInt16(sample float32) int16 {
	v := math.Floor(float64(sample)*32768 + 0.5)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Int16ToFloat normalizes a 16-bit sample to [-1, 1)
func Int16ToFloat(sample int16) float64 {
	return float64(sample) / 32768.0
}

// ScaleToInt16 reduces (or widens) an n-bit signed sample to 16 bits
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}

// SampleAt returns the 16-bit sample at index i of an interleaved LE buffer
func SampleAt(pcm []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
}

func putSample(pcm []byte, i int, sample int16) {
	binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
}

// readFrames reads from r into p, topping up a trailing partial frame so
// the result is always a whole number of frameSize-byte frames
func readFrames(r io.Reader, p []byte, frameSize int) (int, error) {
	p = p[:len(p)-len(p)%frameSize]
	if len(p) == 0 {
		return 0, nil
	}

	n, err := r.Read(p)
	if rem := n % frameSize; rem != 0 && err == nil {
		var m int
		m, err = io.ReadFull(r, p[n:n+frameSize-rem])
		n += m
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
	}

	n -= n % frameSize
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// PCMReader exposes an opened Decoder as an io.Reader of 16-bit PCM bytes.
// Reads smaller than one frame are served from a carried-over frame.
type PCMReader struct {
	dec   Decoder
	frame []byte
	carry []byte
}

// NewPCMReader wraps an opened decoder
func NewPCMReader(dec Decoder) *PCMReader {
	return &PCMReader{dec: dec}
}

// Read implements io.Reader
func (r *PCMReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.carry) > 0 {
		n := copy(p, r.carry)
		r.carry = r.carry[n:]
		return n, nil
	}

	if !r.dec.IsOpened() {
		return 0, ErrNotOpened
	}
	bpf := r.dec.BytesPerFrame()

	frames := len(p) / bpf
	if frames == 0 {
		if cap(r.frame) < bpf {
			r.frame = make([]byte, bpf)
		}
		r.frame = r.frame[:bpf]
		if r.dec.Read(1, r.frame) == 0 {
			return 0, r.eof()
		}
		n := copy(p, r.frame)
		r.carry = r.frame[n:]
		return n, nil
	}

	got := r.dec.Read(frames, p)
	if got == 0 {
		return 0, r.eof()
	}
	return got * bpf, nil
}

func (r *PCMReader) eof() error {
	if err := r.dec.Err(); err != nil {
		return err
	}
	return io.EOF
}
