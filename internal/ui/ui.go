package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

var (
	reportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))
)

// NewBar returns a progress bar drawing to w. A nil w discards output.
func NewBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// Row is one line of the run report. An empty Value renders as "skipped".
type Row struct {
	Label string
	Value string
}

// Report renders the end-of-run summary box.
func Report(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}

	lines := []string{titleStyle.Render(title), ""}
	for _, r := range rows {
		label := labelStyle.Render(r.Label + ":" + strings.Repeat(" ", width-len(r.Label)))
		value := valueStyle.Render(r.Value)
		if r.Value == "" {
			value = missingStyle.Render("skipped")
		}
		lines = append(lines, label+" "+value)
	}
	return reportStyle.Render(strings.Join(lines, "\n"))
}

// FormatDuration renders d as MM:SS, or HH:MM:SS past an hour.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
