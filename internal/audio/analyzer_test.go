package audio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/linuxmatters/tapedeck/internal/config"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

func TestAnalyzeSine(t *testing.T) {
	const (
		sampleRate = 44100
		frequency  = 5000
		amplitude  = 0.5
		frames     = sampleRate // 1 second
	)

	dir := t.TempDir()
	writeWAV(t, dir, "sine.wav", sampleRate, 1, 16, sineSamples(frames, sampleRate, frequency, amplitude))

	dec := NewWAVDecoder(fileutil.New(dir))
	if !dec.Open("sine.wav") {
		t.Fatalf("Open failed: %v", dec.Err())
	}
	defer dec.Close()

	// Partly consumed streams are rewound before analysis
	dec.Read(1000, make([]byte, 1000*dec.BytesPerFrame()))

	var calls int
	var lastFrame, lastTotal int64
	profile, err := Analyze(dec, func(frame, total int64, _ time.Duration) {
		calls++
		lastFrame, lastTotal = frame, total
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if profile.Frames != frames {
		t.Errorf("Frames = %d, want %d", profile.Frames, frames)
	}
	if math.Abs(profile.Duration-1.0) > 1e-9 {
		t.Errorf("Duration = %.6f, want 1.0", profile.Duration)
	}
	if profile.SampleRate != sampleRate || profile.Channels != 1 {
		t.Errorf("metadata = %d Hz, %d ch", profile.SampleRate, profile.Channels)
	}

	if math.Abs(profile.Peak-amplitude) > 0.01 {
		t.Errorf("Peak = %.4f, want ~%.2f", profile.Peak, amplitude)
	}
	wantRMS := amplitude / math.Sqrt2
	if math.Abs(profile.RMS-wantRMS) > 0.005 {
		t.Errorf("RMS = %.4f, want ~%.4f", profile.RMS, wantRMS)
	}
	// Crest factor of a sine is sqrt(2), about 3.01 dB
	if math.Abs(profile.DynamicRange-3.01) > 0.2 {
		t.Errorf("DynamicRange = %.2f dB, want ~3.01", profile.DynamicRange)
	}

	if profile.Windows != frames/config.FFTSize {
		t.Errorf("Windows = %d, want %d", profile.Windows, frames/config.FFTSize)
	}

	binsPerBar := (config.FFTSize / 2 * 3 / 4) / config.NumBars
	wantBar := int(frequency*config.FFTSize/sampleRate) / binsPerBar
	if profile.Spectrum[wantBar] != 1 {
		t.Errorf("Spectrum[%d] = %.3f, want 1 (loudest bar)", wantBar, profile.Spectrum[wantBar])
	}
	for i, v := range profile.Spectrum {
		if v < 0 || v > 1 {
			t.Errorf("Spectrum[%d] = %.3f outside [0, 1]", i, v)
		}
	}

	if calls == 0 {
		t.Error("progress callback never called")
	}
	if lastFrame != frames || lastTotal != frames {
		t.Errorf("final progress = %d/%d, want %d/%d", lastFrame, lastTotal, frames, frames)
	}
	if dec.Tell() != frames {
		t.Errorf("Tell() after Analyze = %d, want %d", dec.Tell(), frames)
	}

	t.Logf("Analysis complete:")
	t.Logf("  Peak: %.4f", profile.Peak)
	t.Logf("  RMS: %.4f", profile.RMS)
	t.Logf("  Dynamic Range: %.2f dB", profile.DynamicRange)
	t.Logf("  Progress callbacks: %d", calls)
}

func TestAnalyzeSilence(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "silence.wav", 8000, 2, 16, make([]int, 500*2))

	dec := NewWAVDecoder(fileutil.New(dir))
	if !dec.Open("silence.wav") {
		t.Fatalf("Open failed: %v", dec.Err())
	}
	defer dec.Close()

	profile, err := Analyze(dec, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if profile.Peak != 0 || profile.RMS != 0 || profile.DynamicRange != 0 {
		t.Errorf("silence levels = peak %f, rms %f, range %f, want zeros",
			profile.Peak, profile.RMS, profile.DynamicRange)
	}
	// Shorter than one FFT window, analysed as a single padded window
	if profile.Windows != 1 {
		t.Errorf("Windows = %d, want 1", profile.Windows)
	}
	for i, v := range profile.Spectrum {
		if v != 0 {
			t.Errorf("Spectrum[%d] = %f for silence, want 0", i, v)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := Analyze(NewWAVDecoder(nil), nil); !errors.Is(err, ErrNotOpened) {
		t.Errorf("Analyze(closed) error = %v, want ErrNotOpened", err)
	}

	dir := t.TempDir()
	writeWAV(t, dir, "empty.wav", 44100, 1, 16, nil)

	dec := NewWAVDecoder(fileutil.New(dir))
	if !dec.Open("empty.wav") {
		t.Skipf("encoder produced an unreadable empty file: %v", dec.Err())
	}
	defer dec.Close()

	if _, err := Analyze(dec, nil); !errors.Is(err, errNoAudio) {
		t.Errorf("Analyze(empty) error = %v, want errNoAudio", err)
	}
}
