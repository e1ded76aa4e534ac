package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " │ "
	overlayMarker       = '•'
	colorReset          = "\x1b[0m"
	barColor            = "\x1b[32m"
	overlayColor        = "\x1b[33m"
	terminalWidthBackup = 80
)

var barBlocks = []rune(" ▁▂▃▄▅▆▇█")

// PlotBars renders a bar chart of bars with overlay drawn as markers.
func PlotBars(w io.Writer, title string, bars, overlay Series, width, height int) error {
	return plotBars(w, title, bars, overlay, width, height, false)
}

// PlotBarsWithColor renders a bar chart with optional forced color output.
func PlotBarsWithColor(w io.Writer, title string, bars, overlay Series, width, height int, forceColor bool) error {
	return plotBars(w, title, bars, overlay, width, height, forceColor)
}

func plotBars(w io.Writer, title string, bars, overlay Series, width, height int, forceColor bool) error {
	if len(bars.Values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	width = max(width, minPlotWidth)
	// One column per value when they fit; never stretch a short series.
	width = min(width, len(bars.Values))

	barVals := resampleSeries(bars.Values, width)
	overVals := resampleSeries(overlay.Values, width)
	top := seriesMax(barVals, overVals)
	if top <= 0 {
		top = 1
	}

	useColor := shouldUseColor(w, forceColor)
	labels := makeAxisLabels(height, top)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	units := height * 8
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, labels[y], axisSeparator))
		rowBottom := (height - 1 - y) * 8
		for x, v := range barVals {
			if len(overVals) > x && overlayRow(overVals[x], top, height) == y {
				writeCell(&row, overlayMarker, overlayColor, useColor)
				continue
			}
			filled := int(math.Round(v/top*float64(units))) - rowBottom
			filled = max(0, min(filled, 8))
			ch := barBlocks[filled]
			if ch == ' ' {
				row.WriteRune(ch)
				continue
			}
			writeCell(&row, ch, barColor, useColor)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(bars, overlay, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeCell(b *strings.Builder, ch rune, color string, useColor bool) {
	if !useColor {
		b.WriteRune(ch)
		return
	}
	b.WriteString(color)
	b.WriteRune(ch)
	b.WriteString(colorReset)
}

func overlayRow(v, top float64, height int) int {
	if v <= 0 {
		return -1
	}
	row := height - 1 - int(math.Round(v/top*float64(height-1)))
	return max(0, min(row, height-1))
}

func seriesMax(series ...[]float64) float64 {
	top := 0.0
	for _, values := range series {
		for _, v := range values {
			top = math.Max(top, v)
		}
	}
	return top
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, top float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = FormatCount(int(math.Round(top)))
	if height > 2 {
		labels[height/2] = FormatCount(int(math.Round(top / 2)))
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func renderLegend(bars, overlay Series, useColor bool) string {
	parts := []string{fmt.Sprintf("%c %s", barBlocks[len(barBlocks)-1], bars.Name)}
	if len(overlay.Values) > 0 {
		parts = append(parts, fmt.Sprintf("%c %s", overlayMarker, overlay.Name))
	}
	if useColor {
		parts[0] = barColor + parts[0] + colorReset
		if len(parts) > 1 {
			parts[1] = overlayColor + parts[1] + colorReset
		}
	}
	return "Legend: " + strings.Join(parts, "  ")
}
