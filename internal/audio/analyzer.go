package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/linuxmatters/tapedeck/internal/config"
)

// Profile holds complete stream analysis results
type Profile struct {
	// Stream metadata
	SampleRate int
	Channels   int
	Frames     int64   // Frames actually decoded, which can be less than TotalFrames
	Duration   float64 // Seconds

	// Levels, normalized to [0, 1] of 16-bit full scale
	Peak float64
	RMS  float64

	// DynamicRange is the crest factor in dB (peak over RMS), 0 for silence
	DynamicRange float64

	// Spectrum is the mono mixdown averaged over all FFT windows,
	// scaled so the loudest bar is 1
	Spectrum [config.NumBars]float64
	Windows  int
}

// ProgressCallback is called with progress updates during decoding
type ProgressCallback func(frame, totalFrames int64, elapsed time.Duration)

var errNoAudio = errors.New("no audio data in stream")

// Analyze rewinds an opened decoder and streams it to the end, collecting
// levels and an averaged spectrum. The decoder is left at the end of stream.
func Analyze(dec Decoder, progressCb ProgressCallback) (*Profile, error) {
	if !dec.IsOpened() {
		return nil, ErrNotOpened
	}
	if !dec.Seek(0) {
		return nil, fmt.Errorf("failed to rewind: %w", dec.Err())
	}

	processor, err := NewProcessor()
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		SampleRate: dec.SampleRate(),
		Channels:   dec.ChannelCount(),
	}

	channels := dec.ChannelCount()
	total := dec.TotalFrames()
	pcm := make([]byte, config.ReadChunkFrames*dec.BytesPerFrame())

	// Non-overlapping FFT windows over the mono mixdown
	window := make([]float64, 0, config.FFTSize)
	var bars [config.NumBars]float64
	var spectrum [config.NumBars]float64

	var peak, sumSquares float64
	var samples int64
	chunks := 0
	startTime := time.Now()

	for {
		n := dec.Read(config.ReadChunkFrames, pcm)
		if n == 0 {
			break
		}

		for f := 0; f < n; f++ {
			var mono float64
			for ch := 0; ch < channels; ch++ {
				v := Int16ToFloat(SampleAt(pcm, f*channels+ch))
				sumSquares += v * v
				if a := math.Abs(v); a > peak {
					peak = a
				}
				mono += v
			}
			window = append(window, mono/float64(channels))

			if len(window) == config.FFTSize {
				if err := accumulateWindow(processor, window, bars[:], &spectrum); err != nil {
					return nil, err
				}
				profile.Windows++
				window = window[:0]
			}
		}

		samples += int64(n * channels)
		profile.Frames += int64(n)
		chunks++

		if progressCb != nil && chunks%config.ProgressEvery == 0 {
			progressCb(profile.Frames, total, time.Since(startTime))
		}
	}

	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("analysis stopped at frame %d: %w", profile.Frames, err)
	}
	if profile.Frames == 0 {
		return nil, errNoAudio
	}

	// A trailing partial window is only used when it is the whole stream
	if profile.Windows == 0 {
		if err := accumulateWindow(processor, window, bars[:], &spectrum); err != nil {
			return nil, err
		}
		profile.Windows++
	}

	if progressCb != nil {
		progressCb(profile.Frames, total, time.Since(startTime))
	}

	profile.Duration = float64(profile.Frames) / float64(profile.SampleRate)
	profile.Peak = peak
	profile.RMS = math.Sqrt(sumSquares / float64(samples))
	if profile.RMS > 0 {
		profile.DynamicRange = 20 * math.Log10(profile.Peak/profile.RMS)
	}

	var maxBar float64
	for _, v := range spectrum {
		maxBar = max(maxBar, v)
	}
	if maxBar > 0 {
		for i, v := range spectrum {
			profile.Spectrum[i] = v / maxBar
		}
	}

	return profile, nil
}

// accumulateWindow adds one FFT window's bar magnitudes to spectrum
func accumulateWindow(p *Processor, window, bars []float64, spectrum *[config.NumBars]float64) error {
	coeffs, err := p.ProcessChunk(window)
	if err != nil {
		return fmt.Errorf("FFT failed: %w", err)
	}
	BinSpectrum(coeffs, bars)
	for i, v := range bars {
		spectrum[i] += v
	}
	return nil
}
