package audio

import (
	"fmt"
	"math"

	"github.com/argusdusty/gofft"
	"github.com/linuxmatters/tapedeck/internal/config"
)

// ApplyHanning applies a Hanning window to the input data
func ApplyHanning(data []float64) []float64 {
	windowed := make([]float64, len(data))
	n := len(data)
	if n < 2 {
		copy(windowed, data)
		return windowed
	}
	for i := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = data[i] * window
	}
	return windowed
}

// BinSpectrum averages FFT magnitudes into len(bars) bars.
// Only the lower 3/4 of the positive spectrum is used, where most content is.
func BinSpectrum(coeffs []complex128, bars []float64) {
	if len(bars) == 0 {
		return
	}

	halfSize := len(coeffs) / 2
	maxFreqBin := (halfSize * 3) / 4
	binsPerBar := maxFreqBin / len(bars)
	if binsPerBar == 0 {
		binsPerBar = 1
	}

	for bar := range bars {
		start := bar * binsPerBar
		end := min(start+binsPerBar, maxFreqBin)

		var sum float64
		for i := start; i < end; i++ {
			sum += math.Hypot(real(coeffs[i]), imag(coeffs[i]))
		}
		bars[bar] = sum / float64(binsPerBar)
	}
}

// BarFrequency returns the lowest frequency in Hz that falls into bar
func BarFrequency(bar, numBars, fftSize, sampleRate int) float64 {
	binsPerBar := (fftSize / 2 * 3 / 4) / numBars
	return float64(bar*binsPerBar) * float64(sampleRate) / float64(fftSize)
}

// Processor handles windowed FFTs of config.FFTSize samples
type Processor struct {
	buf []complex128
}

// NewProcessor creates a new FFT processor
func NewProcessor() (*Processor, error) {
	if err := gofft.Prepare(config.FFTSize); err != nil {
		return nil, fmt.Errorf("failed to prepare FFT: %w", err)
	}
	return &Processor{buf: make([]complex128, config.FFTSize)}, nil
}

// ProcessChunk performs FFT on a chunk of audio samples, zero-padding short chunks.
// The returned slice is reused by the next call.
func (p *Processor) ProcessChunk(samples []float64) ([]complex128, error) {
	chunk := samples
	if len(chunk) < config.FFTSize {
		padded := make([]float64, config.FFTSize)
		copy(padded, chunk)
		chunk = padded
	}

	windowed := ApplyHanning(chunk[:config.FFTSize])
	for i, v := range windowed {
		p.buf[i] = complex(v, 0)
	}

	if err := gofft.FFT(p.buf); err != nil {
		return nil, err
	}
	return p.buf, nil
}
