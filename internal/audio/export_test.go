package audio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

func TestExportWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		channels int
		frames   int
		data     func(frames, channels int) []int
	}{
		{"16-bit stereo", 16, 2, 9000, rampSamples},
		{"16-bit mono short", 16, 1, 10, rampSamples},
		{"8-bit mono widened", 8, 1, 5000, func(frames, _ int) []int {
			data := make([]int, frames)
			for i := range data {
				data[i] = i % 256
			}
			return data
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeWAV(t, dir, "in.wav", 22050, tt.channels, tt.bitDepth, tt.data(tt.frames, tt.channels))
			fu := fileutil.New(dir)

			in := NewWAVDecoder(fu)
			if !in.Open("in.wav") {
				t.Fatalf("Open(in) failed: %v", in.Err())
			}
			defer in.Close()

			out, err := os.Create(filepath.Join(dir, "out.wav"))
			if err != nil {
				t.Fatal(err)
			}
			var progressCalls int
			written, err := ExportWAV(in, out, func(frame, total int64, _ time.Duration) {
				progressCalls++
			})
			if closeErr := out.Close(); closeErr != nil {
				t.Fatal(closeErr)
			}
			if err != nil {
				t.Fatalf("ExportWAV failed: %v", err)
			}
			if written != int64(tt.frames) {
				t.Errorf("ExportWAV wrote %d frames, want %d", written, tt.frames)
			}
			if progressCalls == 0 {
				t.Error("progress callback never called")
			}

			exported := NewWAVDecoder(fu)
			if !exported.Open("out.wav") {
				t.Fatalf("Open(out) failed: %v", exported.Err())
			}
			defer exported.Close()

			if exported.SampleRate() != 22050 || exported.ChannelCount() != tt.channels ||
				exported.TotalFrames() != int64(tt.frames) {
				t.Errorf("exported header = %d Hz, %d ch, %d frames",
					exported.SampleRate(), exported.ChannelCount(), exported.TotalFrames())
			}

			if !in.Seek(0) {
				t.Fatalf("Seek(0) failed: %v", in.Err())
			}
			if !bytes.Equal(readAll(t, in, 4096), readAll(t, exported, 4096)) {
				t.Error("exported PCM differs from the decoded input")
			}
		})
	}
}

func TestExportWAVFromOffset(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "in.wav", 44100, 2, 16, rampSamples(1000, 2))

	dec := NewWAVDecoder(fileutil.New(dir))
	if !dec.Open("in.wav") {
		t.Fatalf("Open failed: %v", dec.Err())
	}
	defer dec.Close()

	if !dec.Seek(600) {
		t.Fatalf("Seek failed: %v", dec.Err())
	}

	out, err := os.Create(filepath.Join(dir, "tail.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	written, err := ExportWAV(dec, out, nil)
	if err != nil {
		t.Fatalf("ExportWAV failed: %v", err)
	}
	if written != 400 {
		t.Errorf("ExportWAV from frame 600 wrote %d frames, want 400", written)
	}
}

func TestExportWAVNotOpened(t *testing.T) {
	out, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if _, err := ExportWAV(NewOggDecoder(nil), out, nil); !errors.Is(err, ErrNotOpened) {
		t.Errorf("ExportWAV(closed) error = %v, want ErrNotOpened", err)
	}
}
