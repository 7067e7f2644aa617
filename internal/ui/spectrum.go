package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Level gradient from low to high intensity
var levelColors = []lipgloss.Color{
	lipgloss.Color("#5A0000"),
	lipgloss.Color("#7A0000"),
	tapeRed,
	lipgloss.Color("#C23000"),
	lipgloss.Color("#E05A00"),
	tapeOrange,
	lipgloss.Color("#F0A010"),
	tapeAmber,
}

func levelColor(normalised float64) lipgloss.Color {
	idx := int(normalised * float64(len(levelColors)-1))
	idx = max(0, min(idx, len(levelColors)-1))
	return levelColors[idx]
}

// RenderSpectrum renders bar heights as a two-row block chart, one column per
// bar up to width. Heights are normalised to the largest bar.
func RenderSpectrum(barHeights []float64, width int) string {
	if len(barHeights) == 0 || width <= 0 {
		return ""
	}

	// Sample bars to fit width
	stride := max(1, len(barHeights)/width)

	maxHeight := 0.0
	for _, h := range barHeights {
		maxHeight = max(maxHeight, h)
	}
	if maxHeight == 0 {
		maxHeight = 1.0
	}

	display := make([]float64, 0, width)
	for i := 0; i < len(barHeights) && len(display) < width; i += stride {
		display = append(display, barHeights[i]/maxHeight)
	}

	var result strings.Builder

	// Top row shows the portion above 0.5
	for _, n := range display {
		if n <= 0.5 {
			result.WriteString(" ")
			continue
		}
		idx := min(int((n-0.5)*2*float64(len(blocks)-1)), len(blocks)-1)
		result.WriteString(lipgloss.NewStyle().Foreground(levelColor(n)).Render(string(blocks[idx])))
	}
	result.WriteString("\n")

	// Bottom row is full wherever the bar reaches the top row
	for _, n := range display {
		idx := len(blocks) - 1
		if n < 0.5 {
			idx = min(int(n*2*float64(len(blocks)-1)), len(blocks)-1)
		}
		result.WriteString(lipgloss.NewStyle().Foreground(levelColor(n)).Render(string(blocks[idx])))
	}

	return result.String()
}

// RenderMeter renders a horizontal level meter for ratio in [0, 1]
func RenderMeter(ratio float64, width int) string {
	filled := max(0, min(int(ratio*float64(width)), width))

	var result strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i) / float64(width)
			result.WriteString(lipgloss.NewStyle().Foreground(levelColor(pos)).Render("█"))
		} else {
			result.WriteString(lipgloss.NewStyle().Foreground(tapeGray).Render("░"))
		}
	}
	return result.String()
}
