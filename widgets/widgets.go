package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderButton renders a bordered button of the given inner width
func RenderButton(label string, width int, style lipgloss.Style) string {
	return style.
		Border(lipgloss.RoundedBorder()).
		Width(width).
		Align(lipgloss.Center).
		Render(Truncate(label, width))
}

// SliderCells returns the plain slider track for value in [0, max]:
// fill up to the knob, then empty track.
func SliderCells(value, max, width int, fill, knob, empty rune) string {
	if width < 1 {
		return ""
	}
	k := KnobIndex(value, max, width)
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < k:
			b.WriteRune(fill)
		case i == k:
			b.WriteRune(knob)
		default:
			b.WriteRune(empty)
		}
	}
	return b.String()
}

// KnobIndex maps value in [0, max] to a cell in [0, width)
func KnobIndex(value, max, width int) int {
	if width <= 1 || max <= 0 {
		return 0
	}
	value = min(value, max)
	value = max0(value)
	return value * (width - 1) / max
}

// SliderValueAt maps a click on cell x of a slider track back to the
// smallest value whose knob is drawn on that cell
func SliderValueAt(x, max, width int) int {
	if width <= 1 {
		return 0
	}
	x = min(max0(x), width-1)
	return (x*max + width - 2) / (width - 1)
}

// RenderSlider renders "label\n[track] value"
func RenderSlider(label string, track string, value int, trackStyle, labelStyle lipgloss.Style) string {
	return labelStyle.Render(label) + "\n" + trackStyle.Render(track) + fmt.Sprintf(" %3d", value)
}

// RenderLog renders the last height lines, each cut to width
func RenderLog(lines []string, width, height int) string {
	if height <= 0 {
		return ""
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	out := make([]string, 0, height)
	for _, l := range lines {
		out = append(out, Truncate(l, width))
	}
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

// Truncate cuts s to width runes, marking the cut with "…"
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
