package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/linuxmatters/tapedeck/internal/audio"
	"github.com/linuxmatters/tapedeck/internal/config"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// writeHalfSquare writes a mono WAV that is silent for the first half and a
// loud square wave for the second
func writeHalfSquare(t *testing.T, dir string, frames int) {
	t.Helper()
	data := make([]int, frames)
	for i := frames / 2; i < frames; i++ {
		if i%2 == 0 {
			data[i] = 30000
		} else {
			data[i] = -30000
		}
	}

	f, err := os.Create(filepath.Join(dir, "half.wav"))
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func openHalfSquare(t *testing.T) audio.Decoder {
	t.Helper()
	dir := t.TempDir()
	writeHalfSquare(t, dir, 16000)

	dec, err := audio.OpenDecoder(fileutil.New(dir), "half.wav")
	if err != nil {
		t.Fatalf("OpenDecoder failed: %v", err)
	}
	t.Cleanup(dec.Close)
	return dec
}

func TestRenderWaveform(t *testing.T) {
	dec := openHalfSquare(t)

	opts := DefaultOptions(nil)
	opts.Width, opts.Height = 200, 80
	opts.Caption = "half.wav"

	img, err := RenderWaveform(dec, opts)
	if err != nil {
		t.Fatalf("RenderWaveform failed: %v", err)
	}

	if got := img.Bounds(); got != image.Rect(0, 0, 200, 80) {
		t.Fatalf("image bounds = %v, want 200x80", got)
	}

	quarterY := opts.Height / 4
	if got := img.RGBAAt(50, quarterY); got != opts.Background {
		t.Errorf("silent half at (50, %d) = %v, want background %v", quarterY, got, opts.Background)
	}
	if got := img.RGBAAt(150, quarterY); got != opts.Wave {
		t.Errorf("loud half at (150, %d) = %v, want wave %v", quarterY, got, opts.Wave)
	}
	if got := img.RGBAAt(150, opts.Height-quarterY); got != opts.Wave {
		t.Errorf("loud half below centre = %v, want wave %v", got, opts.Wave)
	}

	if !hasColour(img, image.Rect(0, opts.Height-30, 100, opts.Height), opts.Text) {
		t.Error("caption not drawn in the bottom-left corner")
	}

	if dec.Tell() != dec.TotalFrames() {
		t.Errorf("Tell() after render = %d, want %d", dec.Tell(), dec.TotalFrames())
	}
}

func TestRenderWaveformColours(t *testing.T) {
	dec := openHalfSquare(t)

	cfg := &config.RuntimeConfig{WaveformWidth: 64, WaveformHeight: 32}
	if err := cfg.SetWaveColor("#00FF00"); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions(cfg)
	img, err := RenderWaveform(dec, opts)
	if err != nil {
		t.Fatalf("RenderWaveform failed: %v", err)
	}

	want := color.RGBA{G: 255, A: 255}
	if got := img.RGBAAt(48, 8); got != want {
		t.Errorf("wave pixel = %v, want %v", got, want)
	}
	if hasColour(img, img.Bounds(), opts.Text) {
		t.Error("caption drawn without a caption")
	}
}

func TestRenderWaveformErrors(t *testing.T) {
	if _, err := RenderWaveform(audio.NewWAVDecoder(nil), DefaultOptions(nil)); err != audio.ErrNotOpened {
		t.Errorf("closed decoder error = %v, want ErrNotOpened", err)
	}

	dec := openHalfSquare(t)
	opts := DefaultOptions(nil)
	opts.Width = 0
	if _, err := RenderWaveform(dec, opts); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSavePNG(t *testing.T) {
	dec := openHalfSquare(t)
	opts := DefaultOptions(nil)
	opts.Width, opts.Height = 120, 40

	img, err := RenderWaveform(dec, opts)
	if err != nil {
		t.Fatalf("RenderWaveform failed: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "wave.png")
	if err := SavePNG(img, outputPath); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("saved file is not a PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	t.Logf("✓ Generated waveform: %s", outputPath)

	if err := SavePNG(img, filepath.Join(t.TempDir(), "missing", "wave.png")); err == nil {
		t.Error("expected error saving into a missing directory")
	}
}

func hasColour(img *image.RGBA, r image.Rectangle, c color.RGBA) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}
