package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/tapedeck/internal/audio"
	"github.com/linuxmatters/tapedeck/internal/cli"
	"github.com/linuxmatters/tapedeck/internal/config"
	"github.com/linuxmatters/tapedeck/internal/output"
	"github.com/linuxmatters/tapedeck/internal/renderer"
	"github.com/linuxmatters/tapedeck/internal/ui"
)

// meterWidth is the column count of level meters and the spectrum chart
const meterWidth = 40

func formatName(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func streamDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// InfoCmd prints the properties of a stream
type InfoCmd struct {
	Path string `arg:"" name:"path" help:"Audio file, relative to the search paths or a pack"`
}

func (c *InfoCmd) Run(g *Globals) error {
	return withDecoder(g, c.Path, func(dec audio.Decoder) error {
		cli.PrintStreamSummary(c.Path, formatName(c.Path),
			dec.SampleRate(), dec.ChannelCount(), dec.TotalFrames(),
			streamDuration(dec.TotalFrames(), dec.SampleRate()))
		return nil
	})
}

// DecodeCmd transcodes a stream to WAV
type DecodeCmd struct {
	Input      string `arg:"" name:"input" help:"Audio file to decode"`
	Output     string `arg:"" name:"output" help:"Output WAV file" type:"path"`
	NoProgress bool   `help:"Disable the progress display"`
}

func (c *DecodeCmd) Run(g *Globals) error {
	return withDecoder(g, c.Input, func(dec audio.Decoder) error {
		out, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}

		if c.NoProgress {
			return c.decodePlain(dec, out)
		}
		return c.decodeWithProgress(dec, out)
	})
}

func (c *DecodeCmd) decodePlain(dec audio.Decoder, out *os.File) error {
	start := time.Now()
	frames, err := audio.ExportWAV(dec, out, nil)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(c.Output)
		return fmt.Errorf("decoding: %w", err)
	}

	elapsed := time.Since(start)
	info, err := os.Stat(c.Output)
	if err != nil {
		return err
	}

	cli.PrintSuccess(fmt.Sprintf("Decoded %s to %s", c.Input, c.Output))
	cli.PrintInfo("Frames", fmt.Sprintf("%d", frames))
	cli.PrintInfo("Size", cli.FormatBytes(info.Size()))
	cli.PrintInfo("Time", cli.FormatDuration(elapsed))
	if elapsed > 0 {
		speed := float64(streamDuration(frames, dec.SampleRate())) / float64(elapsed)
		cli.PrintInfo("Speed", cli.FormatSpeed(speed))
	}
	return nil
}

func (c *DecodeCmd) decodeWithProgress(dec audio.Decoder, out *os.File) error {
	model := ui.NewModel(c.Input, dec.SampleRate())
	p := tea.NewProgram(model)

	done := make(chan error, 1)
	start := time.Now()

	go func() {
		frames, err := audio.ExportWAV(dec, out, func(frame, totalFrames int64, elapsed time.Duration) {
			p.Send(ui.DecodeProgress{
				Frame:       frame,
				TotalFrames: totalFrames,
				Elapsed:     elapsed,
			})
		})
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			done <- err
			p.Send(ui.DecodeFailed{Err: err})
			return
		}

		var size int64
		if info, statErr := os.Stat(c.Output); statErr == nil {
			size = info.Size()
		}
		done <- nil
		p.Send(ui.DecodeComplete{
			InputFile:  c.Input,
			OutputFile: c.Output,
			Format:     formatName(c.Input),
			SampleRate: dec.SampleRate(),
			Channels:   dec.ChannelCount(),
			Frames:     frames,
			FileSize:   size,
			TotalTime:  time.Since(start),
		})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}

	select {
	case err := <-done:
		if err != nil {
			os.Remove(c.Output)
			return fmt.Errorf("decoding: %w", err)
		}
	default:
		// The UI quit before the export finished and the export still owns dec
		os.Remove(c.Output)
		cli.PrintWarning("decode cancelled, partial output removed")
		os.Exit(130)
	}

	fmt.Print(model.CompletionSummary())
	return nil
}

// AnalyzeCmd measures a stream and prints its levels and spectrum
type AnalyzeCmd struct {
	Path string `arg:"" name:"path" help:"Audio file to analyse"`
}

func dbfs(level float64) string {
	if level <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", 20*math.Log10(level))
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	return withDecoder(g, c.Path, func(dec audio.Decoder) error {
		profile, err := audio.Analyze(dec, nil)
		if err != nil {
			return fmt.Errorf("analysing: %w", err)
		}

		cli.PrintBanner()
		cli.PrintSection("Stream")
		cli.PrintInfo("Format", formatName(c.Path))
		cli.PrintInfo("Sample rate", fmt.Sprintf("%d Hz", profile.SampleRate))
		cli.PrintInfo("Channels", fmt.Sprintf("%d", profile.Channels))
		cli.PrintInfo("Duration", fmt.Sprintf("%.2fs", profile.Duration))

		cli.PrintSection("Levels")
		fmt.Printf("%s  %s\n", ui.RenderMeter(profile.Peak, meterWidth), "Peak "+dbfs(profile.Peak))
		fmt.Printf("%s  %s\n", ui.RenderMeter(profile.RMS, meterWidth), "RMS  "+dbfs(profile.RMS))
		cli.PrintInfo("Dynamic range", fmt.Sprintf("%.1f dB", profile.DynamicRange))

		cli.PrintSection("Spectrum")
		fmt.Println(ui.RenderSpectrum(profile.Spectrum[:], meterWidth))
		lowHz := audio.BarFrequency(0, config.NumBars, config.FFTSize, profile.SampleRate)
		highHz := audio.BarFrequency(config.NumBars-1, config.NumBars, config.FFTSize, profile.SampleRate)
		cli.PrintInfo("Bands", fmt.Sprintf("%d from %.0f Hz to %.0f Hz over %d windows",
			config.NumBars, lowHz, highHz, profile.Windows))
		return nil
	})
}

// WaveCmd renders a waveform image
type WaveCmd struct {
	Input     string `arg:"" name:"input" help:"Audio file to draw"`
	Output    string `arg:"" name:"output" help:"Output PNG file" type:"path"`
	Width     int    `help:"Image width in pixels" default:"0"`
	Height    int    `help:"Image height in pixels" default:"0"`
	Color     string `help:"Wave colour as hex, e.g. #A40000"`
	TextColor string `name:"text-color" help:"Caption colour as hex"`
	Caption   string `help:"Caption text, defaults to the file name and duration"`
	NoCaption bool   `name:"no-caption" help:"Draw no caption"`
}

func (c *WaveCmd) Run(g *Globals) error {
	cfg := g.runtimeConfig()
	cfg.WaveformWidth = c.Width
	cfg.WaveformHeight = c.Height
	if c.Color != "" {
		if err := cfg.SetWaveColor(c.Color); err != nil {
			return err
		}
	}
	if c.TextColor != "" {
		if err := cfg.SetTextColor(c.TextColor); err != nil {
			return err
		}
	}

	return withDecoder(g, c.Input, func(dec audio.Decoder) error {
		opts := renderer.DefaultOptions(cfg)
		switch {
		case c.NoCaption:
		case c.Caption != "":
			opts.Caption = c.Caption
		default:
			d := streamDuration(dec.TotalFrames(), dec.SampleRate())
			opts.Caption = fmt.Sprintf("%s  %s", filepath.Base(c.Input), cli.FormatDuration(d))
		}

		img, err := renderer.RenderWaveform(dec, opts)
		if err != nil {
			return fmt.Errorf("rendering waveform: %w", err)
		}
		if err := renderer.SavePNG(img, c.Output); err != nil {
			return err
		}

		b := img.Bounds()
		cli.PrintSuccess(fmt.Sprintf("Waveform saved to %s (%dx%d)", c.Output, b.Dx(), b.Dy()))
		return nil
	})
}

// PlayCmd plays a stream until it ends or is interrupted
type PlayCmd struct {
	Path   string  `arg:"" name:"path" help:"Audio file to play"`
	From   float64 `help:"Start position in seconds" default:"0"`
	Volume int     `help:"Playback volume, 0-100" default:"100"`
}

func (c *PlayCmd) Run(g *Globals) error {
	return withDecoder(g, c.Path, func(dec audio.Decoder) error {
		if c.From < 0 {
			return fmt.Errorf("invalid start position: %.2fs", c.From)
		}
		if start := int64(c.From * float64(dec.SampleRate())); start > 0 {
			if !dec.Seek(start) {
				return fmt.Errorf("seeking to %.2fs: %w", c.From, dec.Err())
			}
		}

		out, err := output.NewOto(dec.SampleRate(), dec.ChannelCount())
		if err != nil {
			return err
		}
		defer out.Close()
		out.SetVolume(c.Volume)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		total := streamDuration(dec.TotalFrames(), dec.SampleRate())
		cli.PrintInfo("Playing", fmt.Sprintf("%s (%s)", c.Path, cli.FormatDuration(total)))

		start := time.Now()
		err = out.Play(ctx, dec)
		switch {
		case errors.Is(err, context.Canceled):
			cli.PrintWarning(fmt.Sprintf("stopped after %s", cli.FormatDuration(time.Since(start))))
			return nil
		case err != nil:
			return err
		}

		cli.PrintSuccess("Playback finished")
		return nil
	})
}
