// ABOUTME: Progress bars for task completion and status distribution
// ABOUTME: Single-value bars plus a stacked bar split by segment

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// Segment is one colored slice of a stacked bar
type Segment struct {
	Label string
	Count int
	Color lipgloss.Color
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	percent = clamp(percent)

	filled := int(percent / 100.0 * float64(width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("░", width-filled))
}

// CompletionBar renders a task's completion percent followed by its value
func CompletionBar(percent int, width int) string {
	p := clamp(float64(percent))
	return fmt.Sprintf("%s %3d%%", styles.ProgressBar(p, width), int(p))
}

// StackedBar renders segments proportionally across width, followed by a legend
func StackedBar(segments []Segment, width int) string {
	if width <= 0 {
		width = 30
	}

	total := 0
	for _, s := range segments {
		total += s.Count
	}
	if total == 0 {
		return lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("░", width))
	}

	widths := SegmentWidths(segments, width)

	var bar strings.Builder
	legend := make([]string, 0, len(segments))
	for i, s := range segments {
		style := lipgloss.NewStyle().Foreground(s.Color)
		bar.WriteString(style.Render(strings.Repeat("█", widths[i])))
		legend = append(legend, style.Render("■")+" "+fmt.Sprintf("%s %d", s.Label, s.Count))
	}

	return bar.String() + "\n" + strings.Join(legend, "  ")
}

// SegmentWidths splits width across segments in proportion to their counts.
// Remaining cells from rounding go to the largest segments first, so the
// widths always sum to width when any count is positive.
func SegmentWidths(segments []Segment, width int) []int {
	widths := make([]int, len(segments))
	total := 0
	for _, s := range segments {
		total += s.Count
	}
	if total == 0 {
		return widths
	}

	used := 0
	for i, s := range segments {
		widths[i] = s.Count * width / total
		used += widths[i]
	}
	for used < width {
		best := -1
		for i, s := range segments {
			if s.Count == 0 {
				continue
			}
			if best < 0 || s.Count*width-widths[i]*total > segments[best].Count*width-widths[best]*total {
				best = i
			}
		}
		widths[best]++
		used++
	}
	return widths
}

func clamp(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
