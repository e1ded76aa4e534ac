// Package theme defines the colour palettes used by the counter screen.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnknownTheme is returned when a name matches no theme.
var ErrUnknownTheme = errors.New("theme: unknown theme")

// KeySelected is the store key holding the selected theme name.
const KeySelected = "selectedTheme"

// Theme is a named palette.
type Theme struct {
	Name       string
	Primary    Color
	Secondary  Color
	Header     Color
	Button     Color
	Text       Color
	Background Background
}

var themes = []Theme{
	{Name: "Pure White", Primary: "#2ECC71", Secondary: "#27AE60", Header: "#1D8348", Button: "#2ECC71", Text: "#1A1A1A", Background: Solid{Color: "#FFFFFF"}},
	{Name: "Deep Black", Primary: "#00BCD4", Secondary: "#0097A7", Header: "#00838F", Button: "#00BCD4", Text: "#FFFFFF", Background: Solid{Color: "#121212"}},
	{Name: "Classic Paper", Primary: "#8B4513", Secondary: "#654321", Header: "#4A2C1A", Button: "#8B4513", Text: "#3E2723", Background: Solid{Color: "#FDF5E6"}},
	{Name: "Midnight Oil", Primary: "#FFD700", Secondary: "#FFB300", Header: "#CC9200", Button: "#FFD700", Text: "#FFFFFF", Background: Solid{Color: "#1A1A1A"}},
	{Name: "Modern Contrast", Primary: "#E91E63", Secondary: "#C2185B", Header: "#9A1451", Button: "#E91E63", Text: "#212121", Background: Solid{Color: "#F5F5F5"}},
	{Name: "Professional Dark", Primary: "#4CAF50", Secondary: "#388E3C", Header: "#2E7D32", Button: "#4CAF50", Text: "#FFFFFF", Background: Solid{Color: "#121212"}},
	{Name: "Clean Light", Primary: "#2196F3", Secondary: "#1976D2", Header: "#1565C0", Button: "#2196F3", Text: "#212121", Background: Solid{Color: "#FFFFFF"}},
	{Name: "High Contrast", Primary: "#FF5722", Secondary: "#E64A19", Header: "#BF360C", Button: "#FF5722", Text: "#000000", Background: Solid{Color: "#FFFFFF"}},
	{Name: "Nature", Primary: "#2E7D32", Secondary: "#43A047", Header: "#1B5E20", Button: "#2E7D32", Text: "#1A1A1A", Background: Gradient{Colors: []Color{"#CCE6CC", "#E6F2E6"}}},
	{Name: "Desert", Primary: "#CC9966", Secondary: "#996633", Header: "#663300", Button: "#CC9966", Text: "#663300", Background: Gradient{Colors: []Color{"#F2E6D9", "#E6D9CC"}}},
	{Name: "Dark Elegance", Primary: "#AF52DE", Secondary: "#8E8E93", Header: "#7D3C98", Button: "#AF52DE", Text: "#FFFFFF", Background: Gradient{Colors: []Color{"#1A1A1A", "#333333"}}},
	{Name: "Arabesque", Primary: "#D4AF37", Secondary: "#B8962E", Header: "#8C6D1F", Button: "#D4AF37", Text: "#FFFFFF", Background: Pattern{Name: "arabesque", Motif: "۞ ", Base: "#0B3D2E", Ink: "#1F6B52"}},
}

// All returns the themes in display order.
func All() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// Default returns the theme used on first launch.
func Default() Theme {
	return themes[0]
}

// Lookup finds a theme by name, ignoring case and surrounding space.
func Lookup(name string) (Theme, error) {
	name = strings.TrimSpace(name)
	for _, t := range themes {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Next returns the theme after name, wrapping around. Unknown names yield
// the default theme.
func Next(name string) Theme {
	for i, t := range themes {
		if strings.EqualFold(t.Name, name) {
			return themes[(i+1)%len(themes)]
		}
	}
	return Default()
}

// AdaptiveText picks black or white for text drawn directly on the
// background.
func (t Theme) AdaptiveText() Color {
	if t.Background != nil && t.Background.IsLight() {
		return "#000000"
	}
	return "#FFFFFF"
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Frame     lipgloss.Style
	Header    lipgloss.Style
	Phrase    lipgloss.Style
	Subtle    lipgloss.Style
	Count     lipgloss.Style
	Accent    lipgloss.Style
	Button    lipgloss.Style
	Warning   lipgloss.Style
	Celebrate lipgloss.Style
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	text := t.AdaptiveText().lipgloss()
	frame := lipgloss.NewStyle().Foreground(text)
	if t.Background != nil {
		frame = t.Background.Paint(frame)
	}
	return Styles{
		Frame:     frame,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(t.Header.lipgloss()),
		Phrase:    lipgloss.NewStyle().Bold(true).Foreground(t.Text.lipgloss()),
		Subtle:    lipgloss.NewStyle().Faint(true).Foreground(text),
		Count:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary.lipgloss()),
		Accent:    lipgloss.NewStyle().Foreground(t.Secondary.lipgloss()),
		Button:    lipgloss.NewStyle().Bold(true).Padding(0, 2).Foreground(lipgloss.Color("#FFFFFF")).Background(t.Button.lipgloss()),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		Celebrate: lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(t.Primary.lipgloss()),
	}
}

// ProgressColors returns the start and end colours for a progress bar.
func (t Theme) ProgressColors() (string, string) {
	return string(t.Secondary), string(t.Primary)
}
