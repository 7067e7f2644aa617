package audio

import (
	"archive/zip"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/linuxmatters/tapedeck/internal/fileutil"
)

// writeWAV encodes interleaved samples at bitDepth into dir/name and returns the path.
// Samples are in the encoder's native range (unsigned for 8-bit).
func writeWAV(t *testing.T, dir, name string, rate, channels, bitDepth int, data []int) string {
	t.Helper()
	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		t.Fatalf("create %s: %v", full, err)
	}

	enc := wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", full, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalise %s: %v", full, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", full, err)
	}
	return full
}

// rampSamples returns frames*channels distinct 16-bit values
func rampSamples(frames, channels int) []int {
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = int(int16(i*37 - 20000))
	}
	return data
}

// sineSamples returns a mono 16-bit sine wave
func sineSamples(frames, rate int, freq, amplitude float64) []int {
	data := make([]int, frames)
	for i := range data {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		data[i] = int(FloatToInt16(float32(v)))
	}
	return data
}

// writePack zips files from dir into dir/assets.zip under the same names
func writePack(t *testing.T, dir string, names ...string) string {
	t.Helper()
	full := filepath.Join(dir, "assets.zip")
	f, err := os.Create(full)
	if err != nil {
		t.Fatalf("create pack: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close pack: %v", err)
	}
	return full
}

// readAll decodes from the current position to the end in chunk-frame reads
func readAll(t *testing.T, dec Decoder, chunk int) []byte {
	t.Helper()
	var out []byte
	pcm := make([]byte, chunk*dec.BytesPerFrame())
	for {
		n := dec.Read(chunk, pcm)
		if n == 0 {
			break
		}
		out = append(out, pcm[:n*dec.BytesPerFrame()]...)
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return out
}

// openWAVFixture writes a 16-bit ramp WAV and returns it opened
func openWAVFixture(t *testing.T, rate, channels, frames int) *WAVDecoder {
	t.Helper()
	dir := t.TempDir()
	writeWAV(t, dir, "ramp.wav", rate, channels, 16, rampSamples(frames, channels))

	dec := NewWAVDecoder(fileutil.New(dir))
	if !dec.Open("ramp.wav") {
		t.Fatalf("Open failed: %v", dec.Err())
	}
	t.Cleanup(dec.Close)
	return dec
}
