package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color is a hex colour such as "#1A1A1A".
type Color string

// RGB returns the colour channels in the range [0,1]. Short (#RGB) and long
// (#RRGGBB) forms are accepted; anything else reports ok=false.
func (c Color) RGB() (r, g, b float64, ok bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(string(c)), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v>>16&0xFF) / 255, float64(v>>8&0xFF) / 255, float64(v&0xFF) / 255, true
}

// Brightness is the perceived brightness in [0,1].
func (c Color) Brightness() float64 {
	r, g, b, ok := c.RGB()
	if !ok {
		return 0
	}
	return (r*299 + g*587 + b*114) / 1000
}

// IsLight reports whether dark text reads better on c.
func (c Color) IsLight() bool {
	return c.Brightness() > 0.6
}

func (c Color) lipgloss() lipgloss.Color {
	return lipgloss.Color(string(c))
}

func mix(a, b Color, t float64) Color {
	ar, ag, ab, ok1 := a.RGB()
	br, bg, bb, ok2 := b.RGB()
	if !ok1 || !ok2 {
		return a
	}
	lerp := func(x, y float64) int {
		return int((x+(y-x)*t)*255 + 0.5)
	}
	return Color(fmt.Sprintf("#%02X%02X%02X", lerp(ar, br), lerp(ag, bg), lerp(ab, bb)))
}

// Background is the surface behind the counter. It is one of Solid, Gradient
// or Pattern.
type Background interface {
	// Paint applies the surface to a style.
	Paint(lipgloss.Style) lipgloss.Style
	// Strip renders a one-line band of the surface, width cells wide.
	Strip(width int) string
	// IsLight reports whether the surface is light.
	IsLight() bool
	background()
}

// Solid is a single flat colour.
type Solid struct {
	Color Color
}

// Gradient blends its colours top to bottom (left to right in a strip).
type Gradient struct {
	Colors []Color
}

// Pattern repeats a motif over a base colour.
type Pattern struct {
	Name  string
	Motif string
	Base  Color
	Ink   Color
}

func (Solid) background()    {}
func (Gradient) background() {}
func (Pattern) background()  {}

func (s Solid) Paint(st lipgloss.Style) lipgloss.Style {
	return st.Background(s.Color.lipgloss())
}

func (s Solid) Strip(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Paint(lipgloss.NewStyle()).Render(strings.Repeat(" ", width))
}

func (s Solid) IsLight() bool { return s.Color.IsLight() }

// Paint uses the first colour; a terminal cell cannot hold a gradient.
func (g Gradient) Paint(st lipgloss.Style) lipgloss.Style {
	if len(g.Colors) == 0 {
		return st
	}
	return st.Background(g.Colors[0].lipgloss())
}

func (g Gradient) Strip(width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range g.Stops(width) {
		b.WriteString(lipgloss.NewStyle().Background(c.lipgloss()).Render(" "))
	}
	return b.String()
}

func (g Gradient) IsLight() bool {
	if len(g.Colors) == 0 {
		return false
	}
	return g.Colors[0].IsLight()
}

// Stops returns n colours evenly spread across the gradient.
func (g Gradient) Stops(n int) []Color {
	if n <= 0 || len(g.Colors) == 0 {
		return nil
	}
	out := make([]Color, n)
	if len(g.Colors) == 1 || n == 1 {
		for i := range out {
			out[i] = g.Colors[0]
		}
		return out
	}
	segments := float64(len(g.Colors) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * segments
		idx := int(pos)
		if idx >= len(g.Colors)-1 {
			out[i] = g.Colors[len(g.Colors)-1]
			continue
		}
		out[i] = mix(g.Colors[idx], g.Colors[idx+1], pos-float64(idx))
	}
	return out
}

func (p Pattern) Paint(st lipgloss.Style) lipgloss.Style {
	if p.Base == "" {
		return st
	}
	return st.Background(p.Base.lipgloss())
}

func (p Pattern) Strip(width int) string {
	if width <= 0 {
		return ""
	}
	motif := p.Motif
	if motif == "" {
		motif = "·"
	}
	runes := []rune(strings.Repeat(motif, width))
	st := p.Paint(lipgloss.NewStyle())
	if p.Ink != "" {
		st = st.Foreground(p.Ink.lipgloss())
	}
	return st.Render(string(runes[:width]))
}

// IsLight is always false: text over a pattern is drawn light.
func (p Pattern) IsLight() bool { return false }
