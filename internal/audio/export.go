package audio

import (
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/linuxmatters/tapedeck/internal/config"
)

// exportBitDepth matches the decoders' output
const exportBitDepth = 16

// ExportWAV streams an opened decoder from its current position to the end
// and writes it as 16-bit PCM WAV. It returns the number of frames written.
func ExportWAV(dec Decoder, w io.WriteSeeker, progressCb ProgressCallback) (int64, error) {
	if !dec.IsOpened() {
		return 0, ErrNotOpened
	}

	channels := dec.ChannelCount()
	enc := wav.NewEncoder(w, dec.SampleRate(), exportBitDepth, channels, wavFormatPCM)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  dec.SampleRate(),
		},
		Data:           make([]int, config.ReadChunkFrames*channels),
		SourceBitDepth: exportBitDepth,
	}
	pcm := make([]byte, config.ReadChunkFrames*dec.BytesPerFrame())

	total := dec.TotalFrames()
	var written int64
	chunks := 0
	startTime := time.Now()

	for {
		n := dec.Read(config.ReadChunkFrames, pcm)
		if n == 0 {
			break
		}

		samples := n * channels
		buf.Data = buf.Data[:samples]
		for i := 0; i < samples; i++ {
			buf.Data[i] = int(SampleAt(pcm, i))
		}
		if err := enc.Write(buf); err != nil {
			return written, fmt.Errorf("failed to write WAV data: %w", err)
		}

		written += int64(n)
		chunks++
		if progressCb != nil && chunks%config.ProgressEvery == 0 {
			progressCb(written, total, time.Since(startTime))
		}
	}

	if err := dec.Err(); err != nil {
		_ = enc.Close()
		return written, fmt.Errorf("decode stopped at frame %d: %w", written, err)
	}

	// Close patches the RIFF and data chunk sizes
	if err := enc.Close(); err != nil {
		return written, fmt.Errorf("failed to finalise WAV: %w", err)
	}

	if progressCb != nil {
		progressCb(written, total, time.Since(startTime))
	}
	return written, nil
}
