package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tape colour palette
var (
	tapeRed    = lipgloss.Color("#A40000") // Record light
	tapeAmber  = lipgloss.Color("#F8B31D") // Brand yellow
	tapeOrange = lipgloss.Color("#FF8C00")
	tapeGreen  = lipgloss.Color("#4A9B4A")
	tapeGray   = lipgloss.Color("#3A3A3A")
)

// DecodeProgress represents progress updates while transcoding
type DecodeProgress struct {
	Frame       int64
	TotalFrames int64
	Elapsed     time.Duration
}

// DecodeComplete signals the end of a transcode
type DecodeComplete struct {
	InputFile  string
	OutputFile string
	Format     string
	SampleRate int
	Channels   int
	Frames     int64
	FileSize   int64
	TotalTime  time.Duration
}

// DecodeFailed signals that the transcode stopped with an error
type DecodeFailed struct {
	Err error
}

// progressQuitMsg is sent when it's time to quit after showing completion
type progressQuitMsg struct{}

// Model implements the Bubbletea model for the decode command
type Model struct {
	progressBar progress.Model
	inputFile   string

	state    DecodeProgress
	complete *DecodeComplete
	failed   error

	startTime       time.Time
	sampleRate      int
	width           int
	completionDelay time.Duration
}

// NewModel creates a decode progress model. sampleRate turns frame counts into
// audio time for the speed readout.
func NewModel(inputFile string, sampleRate int) *Model {
	// Record gradient: red → amber
	p := progress.New(
		progress.WithGradient(string(tapeRed), string(tapeAmber)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &Model{
		progressBar:     p,
		inputFile:       inputFile,
		startTime:       time.Now(),
		sampleRate:      sampleRate,
		completionDelay: 500 * time.Millisecond,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(10, min(msg.Width-30, 50))
		return m, nil

	case DecodeProgress:
		m.state = msg
		return m, nil

	case DecodeComplete:
		m.complete = &msg
		return m, tea.Tick(m.completionDelay, func(t time.Time) tea.Msg {
			return progressQuitMsg{}
		})

	case DecodeFailed:
		m.failed = msg.Err
		return m, tea.Quit

	case progressQuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m *Model) View() string {
	if m.complete != nil {
		return m.renderComplete()
	}
	return m.renderProgress()
}

// Done reports whether the transcode finished successfully
func (m *Model) Done() bool {
	return m.complete != nil
}

// CompletionSummary returns the final summary for printing after the UI exits.
// Returns empty string if decoding is not complete.
func (m *Model) CompletionSummary() string {
	if m.complete == nil {
		return ""
	}
	return m.renderComplete()
}

func (m *Model) renderProgress() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(tapeAmber).
		Render("Tapedeck ▶")

	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(tapeOrange).Render("Decoding " + m.inputFile))
	s.WriteString("\n\n")

	if m.state.TotalFrames > 0 {
		percent := min(float64(m.state.Frame)/float64(m.state.TotalFrames), 1.0)
		s.WriteString("Progress: ")
		s.WriteString(m.progressBar.ViewAs(percent))
		s.WriteString(fmt.Sprintf("  %d%%", int(percent*100)))
		s.WriteString("\n\n")
	} else if m.state.Frame > 0 {
		// Stream length unknown, show frame count only
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Decoding..."))
		s.WriteString(fmt.Sprintf("  %d frames\n\n", m.state.Frame))
	} else {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Starting decode...\n\n"))
	}

	elapsed := m.state.Elapsed
	if elapsed == 0 {
		elapsed = time.Since(m.startTime)
	}

	var speed float64
	if m.sampleRate > 0 && elapsed > 0 {
		audioSoFar := time.Duration(m.state.Frame) * time.Second / time.Duration(m.sampleRate)
		speed = float64(audioSoFar) / float64(elapsed)
	}

	timingInfo := fmt.Sprintf("Time: %s  │  Speed: %.1fx realtime  │  Frame %d of %d",
		formatDuration(elapsed), speed, m.state.Frame, m.state.TotalFrames)
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(timingInfo))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(tapeRed).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderComplete() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(tapeGreen).
		Render("✓ Decode Complete!")

	s.WriteString(title)
	s.WriteString("\n\n")

	dimLabel := lipgloss.NewStyle().Faint(true)
	c := m.complete

	var audioDuration time.Duration
	if c.SampleRate > 0 {
		audioDuration = time.Duration(c.Frames) * time.Second / time.Duration(c.SampleRate)
	}

	s.WriteString(fmt.Sprintf("%s%s (%s)\n", dimLabel.Render("Input:    "), c.InputFile, c.Format))
	s.WriteString(fmt.Sprintf("%s%s\n", dimLabel.Render("Output:   "), c.OutputFile))
	s.WriteString(fmt.Sprintf("%s%d Hz, %d ch, 16-bit PCM\n", dimLabel.Render("Format:   "), c.SampleRate, c.Channels))
	s.WriteString(fmt.Sprintf("%s%d frames\n", dimLabel.Render("Frames:   "), c.Frames))
	s.WriteString(fmt.Sprintf("%s%.1fs audio in %s\n",
		dimLabel.Render("Duration: "),
		audioDuration.Seconds(),
		formatDuration(c.TotalTime)))
	s.WriteString(fmt.Sprintf("%s%s", dimLabel.Render("Size:     "), formatBytes(c.FileSize)))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(tapeGreen).
		Padding(1, 2).
		Render(s.String()) + "\n"
}

// Helper functions

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatBytes(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}
