// Package termview draws a globe snapshot as text for the terminal.
package termview

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coreman2200/funtimes-snowglobe/internal/globe"
)

// shades from dark to bright
const ramp = " .:-=+*#"

// Render lays out the display, the ring and the counters. cols is the width
// of the display drawing in characters.
func Render(s globe.Snapshot, cols int) string {
	screen := StyleGlobe.Render(Display(s.Display, cols))
	stats := StyleStats.Render(strings.Join([]string{
		row("state", s.State.String()),
		row("frame", fmt.Sprint(s.Frame)),
		row("landings", fmt.Sprint(s.Landings)),
		row("resets", fmt.Sprint(s.Resets)),
		row("shakes", fmt.Sprint(s.Shakes)),
		row("animation", s.Settings.Animation.String()),
		row("duration", s.Settings.Duration.String()),
		row("interval", s.Settings.Interval.String()),
		row("color", fmt.Sprintf("#%06X", s.Settings.Color.Color())),
	}, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, screen, " ", stats),
		Ring(s.Ring),
	)
}

func row(label, value string) string {
	return StyleLabel.Render(fmt.Sprintf("%-10s", label)) + StyleValue.Render(value)
}

// Display downsamples img to cols characters across. Terminal cells are
// about twice as tall as wide, so each character covers a 1:2 block.
func Display(img *image.NRGBA, cols int) string {
	if img == nil || img.Rect.Empty() {
		return ""
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if cols < 1 || cols > w {
		cols = w
	}
	cw := float64(w) / float64(cols)
	ch := cw * 2
	rows := int(float64(h) / ch)
	if rows < 1 {
		rows = 1
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x0, y0 := int(float64(c)*cw), int(float64(r)*ch)
			x1, y1 := int(float64(c+1)*cw), int(float64(r+1)*ch)
			b.WriteByte(ramp[shade(img, image.Rect(x0, y0, max(x1, x0+1), max(y1, y0+1)))])
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// shade is the ramp index of the brightest pixel in r, so single flakes
// survive the downsampling.
func shade(img *image.NRGBA, r image.Rectangle) int {
	r = r.Add(img.Rect.Min).Intersect(img.Rect)
	best := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			l := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
			if l > best {
				best = l
			}
		}
	}
	return best * (len(ramp) - 1) / 255
}

// Ring prints one coloured dot per LED, "o" for lit and "." for dark.
func Ring(img *image.NRGBA) string {
	if img == nil {
		return ""
	}
	var b strings.Builder
	for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
		c := img.NRGBAAt(x, img.Rect.Min.Y)
		if c.R == 0 && c.G == 0 && c.B == 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(ColorDim).Render("."))
			continue
		}
		hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("o"))
	}
	return b.String()
}
