package config

import (
	"testing"
)

// TestParseHexColor_ValidInputs verifies prefix handling, case insensitivity
// and R, G, B byte ordering.
func TestParseHexColor_ValidInputs(t *testing.T) {
	testCases := []struct {
		name                string
		input               string
		wantR, wantG, wantB uint8
	}{
		{name: "uppercase, no hash", input: "FF0000", wantR: 255},
		{name: "lowercase, with hash", input: "#ff0000", wantR: 255},
		{name: "mixed case magenta", input: "Ff00fF", wantR: 255, wantB: 255},
		{name: "brand yellow", input: "#F8B31D", wantR: 248, wantG: 179, wantB: 29},
		{name: "distinct components", input: "010203", wantR: 1, wantG: 2, wantB: 3},
		{name: "black", input: "000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.input)
			if err != nil {
				t.Fatalf("ParseHexColor(%q) returned error: %v", tc.input, err)
			}
			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("ParseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tc.input, r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}

// TestParseHexColor_InvalidInputs verifies that malformed colours are rejected.
func TestParseHexColor_InvalidInputs(t *testing.T) {
	inputs := []string{
		"",
		"#",
		"FFF",
		"#FFF",
		"FFFFFFF",
		"GGGGGG",
		"FF 000",
		"FF#000",
		"##FF0000",
		"FF0000\n",
		"+FFFFF",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, _, _, err := ParseHexColor(input); err == nil {
				t.Errorf("ParseHexColor(%q) expected error, got nil", input)
			}
		})
	}
}

// TestRuntimeConfig_Defaults verifies that getters fall back to the package
// constants when overrides are missing or only partially set.
func TestRuntimeConfig_Defaults(t *testing.T) {
	c := &RuntimeConfig{
		WaveColorR: ptrUint8(1),
		WaveColorG: ptrUint8(2),
		// WaveColorB missing - partial overrides are ignored
	}

	r, g, b := c.GetWaveColor()
	if r != WaveColorR || g != WaveColorG || b != WaveColorB {
		t.Errorf("GetWaveColor() = (%d, %d, %d), want defaults (%d, %d, %d)",
			r, g, b, WaveColorR, WaveColorG, WaveColorB)
	}

	r, g, b = c.GetTextColor()
	if r != TextColorR || g != TextColorG || b != TextColorB {
		t.Errorf("GetTextColor() = (%d, %d, %d), want defaults (%d, %d, %d)",
			r, g, b, TextColorR, TextColorG, TextColorB)
	}

	w, h := c.GetWaveformSize()
	if w != WaveformWidth || h != WaveformHeight {
		t.Errorf("GetWaveformSize() = (%d, %d), want (%d, %d)", w, h, WaveformWidth, WaveformHeight)
	}
}

// TestRuntimeConfig_Overrides verifies that fully set overrides win.
func TestRuntimeConfig_Overrides(t *testing.T) {
	c := &RuntimeConfig{WaveformWidth: 640, WaveformHeight: -5}

	if err := c.SetWaveColor("#102030"); err != nil {
		t.Fatalf("SetWaveColor failed: %v", err)
	}
	if err := c.SetTextColor("AABBCC"); err != nil {
		t.Fatalf("SetTextColor failed: %v", err)
	}

	r, g, b := c.GetWaveColor()
	if r != 0x10 || g != 0x20 || b != 0x30 {
		t.Errorf("GetWaveColor() = (%d, %d, %d), want (16, 32, 48)", r, g, b)
	}

	r, g, b = c.GetTextColor()
	if r != 0xAA || g != 0xBB || b != 0xCC {
		t.Errorf("GetTextColor() = (%d, %d, %d), want (170, 187, 204)", r, g, b)
	}

	w, h := c.GetWaveformSize()
	if w != 640 || h != WaveformHeight {
		t.Errorf("GetWaveformSize() = (%d, %d), want (640, %d)", w, h, WaveformHeight)
	}

	if err := c.SetWaveColor("nope"); err == nil {
		t.Error("expected error for invalid colour")
	}
	r, g, b = c.GetWaveColor()
	if r != 0x10 || g != 0x20 || b != 0x30 {
		t.Errorf("failed SetWaveColor changed colour to (%d, %d, %d)", r, g, b)
	}
}

// ptrUint8 is a helper to create pointers to uint8 values for testing.
func ptrUint8(v uint8) *uint8 {
	return &v
}
