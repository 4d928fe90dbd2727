package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Compose draws layer over base. Visible cells of each layer line replace
// the base cells in the same columns; blank layer lines leave the base alone.
func Compose(base, layer string, width int) string {
	if layer == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	layerLines := strings.Split(layer, "\n")

	for len(baseLines) < len(layerLines) {
		baseLines = append(baseLines, "")
	}

	for i, line := range layerLines {
		plain := ansi.Strip(line)
		if strings.TrimSpace(plain) == "" {
			continue
		}

		start := len(plain) - len(strings.TrimLeft(plain, " "))
		end := start + ansi.StringWidth(strings.TrimRight(plain[start:], " "))
		if width > 0 && end > width {
			end = width
		}
		if start >= end {
			continue
		}

		under := baseLines[i]
		if w := ansi.StringWidth(under); w < width {
			under += strings.Repeat(" ", width-w)
		}

		out := ansi.Cut(under, 0, start) + ansi.Cut(line, start, end)
		if rest := ansi.StringWidth(under); end < rest {
			out += ansi.Cut(under, end, rest)
		}
		baseLines[i] = out
	}

	return strings.Join(baseLines, "\n")
}

// Center places content in the middle of a width x height layer and returns
// the layer with the region the content occupies.
func Center(content string, width, height int) (string, rect) {
	w, h := lipgloss.Size(content)
	x := max((width-w)/2, 0)
	y := max((height-h)/2, 0)
	return place(content, x, y), rect{x: x, y: y, w: w, h: h}
}

// Corner places content at position inside a width x height layer, keeping
// margin cells from the edges. Unknown positions fall back to top-right.
func Corner(content string, width, height int, position string, margin int) string {
	if content == "" {
		return ""
	}
	w, h := lipgloss.Size(content)
	left := margin
	right := max(width-w-margin, 0)
	top := margin
	bottom := max(height-h-margin, 0)

	switch position {
	case "top-left":
		return place(content, left, top)
	case "bottom-left":
		return place(content, left, bottom)
	case "bottom-right":
		return place(content, right, bottom)
	case "center":
		layer, _ := Center(content, width, height)
		return layer
	default:
		return place(content, right, top)
	}
}

// place offsets content by x columns and y rows.
func place(content string, x, y int) string {
	var b strings.Builder
	for range y {
		b.WriteString("\n")
	}
	pad := strings.Repeat(" ", x)
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pad)
		b.WriteString(line)
	}
	return b.String()
}
