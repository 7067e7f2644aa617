package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Decode settings
const (
	ReadChunkFrames = 4096 // Frames requested per Decoder.Read
)

// Analysis settings
const (
	FFTSize       = 2048
	NumBars       = 32 // Spectrum bars reported by analyze
	ProgressEvery = 16 // Chunks between progress callbacks
)

// Waveform image settings
const (
	WaveformWidth  = 1280
	WaveformHeight = 240
	CaptionMargin  = 8 // Margin in pixels from the bottom-left corner for the caption
)

// Appearance
const (
	// Wave colour (RGB values for the waveform body)
	WaveColorR = 164
	WaveColorG = 0
	WaveColorB = 0

	// Background colour for waveform images
	BackgroundColorR = 16
	BackgroundColorG = 16
	BackgroundColorB = 16

	// Caption colour, brand yellow #F8B31D
	TextColorR = 248
	TextColorG = 179
	TextColorB = 29
)

// RuntimeConfig holds optional overrides collected from the command line.
// Nil or zero fields fall back to the package defaults.
type RuntimeConfig struct {
	SearchPaths []string
	Packs       []string

	WaveColorR *uint8
	WaveColorG *uint8
	WaveColorB *uint8

	TextColorR *uint8
	TextColorG *uint8
	TextColorB *uint8

	WaveformWidth  int
	WaveformHeight int
}

// GetWaveColor returns the wave colour, or the default unless all three components are set
func (c *RuntimeConfig) GetWaveColor() (r, g, b uint8) {
	if c.WaveColorR != nil && c.WaveColorG != nil && c.WaveColorB != nil {
		return *c.WaveColorR, *c.WaveColorG, *c.WaveColorB
	}
	return WaveColorR, WaveColorG, WaveColorB
}

// GetTextColor returns the caption colour, or the default unless all three components are set
func (c *RuntimeConfig) GetTextColor() (r, g, b uint8) {
	if c.TextColorR != nil && c.TextColorG != nil && c.TextColorB != nil {
		return *c.TextColorR, *c.TextColorG, *c.TextColorB
	}
	return TextColorR, TextColorG, TextColorB
}

// GetWaveformSize returns the image dimensions, defaulting non-positive values
func (c *RuntimeConfig) GetWaveformSize() (width, height int) {
	width, height = c.WaveformWidth, c.WaveformHeight
	if width <= 0 {
		width = WaveformWidth
	}
	if height <= 0 {
		height = WaveformHeight
	}
	return width, height
}

// SetWaveColor parses a hex colour into the wave colour override
func (c *RuntimeConfig) SetWaveColor(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	c.WaveColorR, c.WaveColorG, c.WaveColorB = &r, &g, &b
	return nil
}

// SetTextColor parses a hex colour into the caption colour override
func (c *RuntimeConfig) SetTextColor(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	c.TextColorR, c.TextColorG, c.TextColorB = &r, &g, &b
	return nil
}

// ParseHexColor parses "RRGGBB" or "#RRGGBB"
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
