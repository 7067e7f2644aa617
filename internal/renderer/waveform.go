package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/linuxmatters/tapedeck/internal/audio"
	"github.com/linuxmatters/tapedeck/internal/config"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// supersample is the oversampling factor; the waveform is drawn larger and
// scaled down for smooth edges
const supersample = 2

var errEmptyStream = errors.New("stream has no frames to draw")

// Options controls waveform rendering
type Options struct {
	Width      int
	Height     int
	Wave       color.RGBA
	Background color.RGBA
	Text       color.RGBA

	// Caption is drawn in the bottom-left corner; empty for none
	Caption string
}

// DefaultOptions builds options from the runtime overrides, nil for defaults
func DefaultOptions(cfg *config.RuntimeConfig) Options {
	if cfg == nil {
		cfg = &config.RuntimeConfig{}
	}
	width, height := cfg.GetWaveformSize()
	wr, wg, wb := cfg.GetWaveColor()
	tr, tg, tb := cfg.GetTextColor()

	return Options{
		Width:      width,
		Height:     height,
		Wave:       color.RGBA{R: wr, G: wg, B: wb, A: 255},
		Background: color.RGBA{R: config.BackgroundColorR, G: config.BackgroundColorG, B: config.BackgroundColorB, A: 255},
		Text:       color.RGBA{R: tr, G: tg, B: tb, A: 255},
	}
}

// columnRange is the min/max mono sample seen for one image column
type columnRange struct {
	min, max float64
	seen     bool
}

// RenderWaveform rewinds an opened decoder and draws a min/max overview of
// the whole stream. The decoder is left at the end of stream.
func RenderWaveform(dec audio.Decoder, opts Options) (*image.RGBA, error) {
	if !dec.IsOpened() {
		return nil, audio.ErrNotOpened
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}

	total := dec.TotalFrames()
	if total <= 0 {
		return nil, errEmptyStream
	}
	if !dec.Seek(0) {
		return nil, fmt.Errorf("failed to rewind: %w", dec.Err())
	}

	cols := opts.Width * supersample
	ranges, err := scanColumns(dec, cols, total)
	if err != nil {
		return nil, err
	}

	// Draw at the oversampled size
	big := image.NewRGBA(image.Rect(0, 0, cols, opts.Height*supersample))
	draw.Draw(big, big.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	drawColumns(big, ranges, opts.Wave)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.BiLinear.Scale(img, img.Bounds(), big, big.Bounds(), draw.Src, nil)

	if opts.Caption != "" {
		drawCaption(img, opts.Caption, opts.Text)
	}
	return img, nil
}

// scanColumns decodes the stream and folds each frame's mono mixdown into its column
func scanColumns(dec audio.Decoder, cols int, total int64) ([]columnRange, error) {
	ranges := make([]columnRange, cols)
	channels := dec.ChannelCount()
	pcm := make([]byte, config.ReadChunkFrames*dec.BytesPerFrame())

	var frame int64
	for {
		n := dec.Read(config.ReadChunkFrames, pcm)
		if n == 0 {
			break
		}

		for f := 0; f < n; f++ {
			var mono float64
			for ch := 0; ch < channels; ch++ {
				mono += audio.Int16ToFloat(audio.SampleAt(pcm, f*channels+ch))
			}
			mono /= float64(channels)

			col := int(frame * int64(cols) / total)
			if col >= cols {
				col = cols - 1
			}
			r := &ranges[col]
			if !r.seen {
				r.min, r.max, r.seen = mono, mono, true
			} else {
				r.min = min(r.min, mono)
				r.max = max(r.max, mono)
			}
			frame++
		}
	}

	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("decode stopped at frame %d: %w", frame, err)
	}
	return ranges, nil
}

// drawColumns fills one vertical span per column, mirrored about the centre line
func drawColumns(img *image.RGBA, ranges []columnRange, c color.RGBA) {
	height := img.Bounds().Dy()
	half := height / 2
	src := image.NewUniform(c)

	for x, r := range ranges {
		if !r.seen {
			continue
		}
		top := half - int(r.max*float64(half-1))
		bottom := half - int(r.min*float64(half-1))
		draw.Draw(img, image.Rect(x, top, x+1, bottom+1), src, image.Point{}, draw.Src)
	}
}

// drawCaption draws text in the bottom-left corner, CaptionMargin pixels in
func drawCaption(img *image.RGBA, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}

	// The baseline sits above the descent so glyph tails stay inside the margin
	descent := basicfont.Face7x13.Metrics().Descent.Ceil()
	baseline := img.Bounds().Dy() - config.CaptionMargin - descent
	d.Dot = fixed.P(config.CaptionMargin, baseline)
	d.DrawString(text)
}

// SavePNG saves the image to a PNG file
func SavePNG(img image.Image, outputPath string) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	if err := png.Encode(outFile, img); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return outFile.Close()
}
