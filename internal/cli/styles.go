package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "Tapedeck ▶"

var (
	dimColor   = lipgloss.Color("#888888")
	labelColor = lipgloss.Color("#FFFFFF")
	playColor  = lipgloss.Color("#00AA00")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TapeRed).
			MarginBottom(1)

	taglineStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TapeOrange).
			MarginTop(1).
			MarginBottom(1)

	keyStyle   = lipgloss.NewStyle().Foreground(dimColor)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(labelColor)

	// Message tags, one per severity
	okTag   = lipgloss.NewStyle().Bold(true).Foreground(playColor).Render("✓")
	warnTag = lipgloss.NewStyle().Bold(true).Foreground(TapeAmber).Render("Warning:")
	errTag  = lipgloss.NewStyle().Bold(true).Foreground(TapeRed).Render("Error:")

	// Cassette label frame around stream summaries
	labelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TapeRed).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

func tagged(w io.Writer, tag, message string) {
	fmt.Fprintf(w, "%s %s\n", tag, message)
}

// PrintBanner prints the title and tagline
func PrintBanner() {
	fmt.Println(titleStyle.Render(appTitle))
	fmt.Println(taglineStyle.Render(Tagline))
	fmt.Println()
}

func PrintVersion(version string) {
	fmt.Println(titleStyle.Render(appTitle))
	PrintInfo("Version", version)
	fmt.Println()
}

// PrintError writes to stderr so it survives redirected output
func PrintError(message string) {
	tagged(os.Stderr, errTag, message)
}

func PrintWarning(message string) {
	tagged(os.Stdout, warnTag, message)
}

func PrintSuccess(message string) {
	tagged(os.Stdout, okTag, message)
}

// PrintInfo prints one key: value line
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", keyStyle.Render(key+":"), valueStyle.Render(value))
}

func PrintSection(title string) {
	fmt.Println(sectionStyle.Render(title))
}

// FormatDuration renders short spans in ms or s and stream lengths as m:ss.s
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%04.1f", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}

// FormatSpeed formats decode speed relative to playback
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.1fx realtime", speed)
}

// FormatBytes scales by 1024, matching the progress display
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len("KMGTPE") {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %cB", v, "KMGTPE"[unit-1])
}

// summaryRows pairs labels with values in display order
func summaryRows(format string, sampleRate, channels int, frames int64, duration time.Duration) [][2]string {
	length := "unknown"
	if frames > 0 {
		length = fmt.Sprintf("%d", frames)
	}
	layout := fmt.Sprintf("%d", channels)
	switch channels {
	case 1:
		layout = "1 (mono)"
	case 2:
		layout = "2 (stereo)"
	}
	return [][2]string{
		{"Format", format},
		{"Sample rate", fmt.Sprintf("%d Hz", sampleRate)},
		{"Channels", layout},
		{"Frames", length},
		{"Duration", FormatDuration(duration)},
	}
}

// PrintStreamSummary prints the properties of an opened stream as a cassette label
func PrintStreamSummary(path, format string, sampleRate, channels int, frames int64, duration time.Duration) {
	rows := summaryRows(format, sampleRate, channels, frames, duration)

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0])+1)
	}
	key := keyStyle.Width(width + 1)

	lines := []string{okTag + " " + valueStyle.Render(path), ""}
	for _, r := range rows {
		lines = append(lines, key.Render(r[0]+":")+valueStyle.Render(r[1]))
	}
	fmt.Println(labelStyle.Render(strings.Join(lines, "\n")))
}
