package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/atikulmunna/loupe/internal/model"
	"github.com/atikulmunna/loupe/internal/session"
)

// Renderer writes LogRecord values to an output stream.
type Renderer interface {
	Render(rec model.LogRecord) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFatal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
)

// palette holds the highlight colors. A record's color is chosen by the
// index of its first matching keyword, mod the palette size, so a keyword
// keeps its color for as long as it stays in the list.
var palette = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("213")), // pink
	lipgloss.NewStyle().Foreground(lipgloss.Color("84")),  // green
	lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
	lipgloss.NewStyle().Foreground(lipgloss.Color("81")),  // blue
	lipgloss.NewStyle().Foreground(lipgloss.Color("177")), // purple
	lipgloss.NewStyle().Foreground(lipgloss.Color("229")), // pale yellow
}

// PaletteSize is the number of distinct highlight colors.
func PaletteSize() int { return len(palette) }

// TextRenderer prints records with severity-based colors and highlight
// keyword coloring.
type TextRenderer struct {
	w        io.Writer
	keywords []string
}

// NewTextRenderer returns a Renderer writing colorized text to w, coloring
// records that match one of the highlight keywords.
func NewTextRenderer(w io.Writer, keywords []string) *TextRenderer {
	return &TextRenderer{w: w, keywords: keywords}
}

func (r *TextRenderer) Render(rec model.LogRecord) error {
	ts := ""
	if rec.HasTimestamp() {
		ts = rec.Timestamp.Format("2006/01/02 15:04:05")
	}

	msg := rec.Message
	if idx, ok := session.HighlightIndex(rec, r.keywords); ok {
		msg = palette[idx%len(palette)].Render(msg)
	}

	line := fmt.Sprintf("%5d  %-19s %s %s %s",
		rec.Seq, ts, styleLevelTag(rec.Level), styleSource.Render(rec.Source), msg)
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func styleLevelTag(level string) string {
	padded := fmt.Sprintf("%-5s", level)
	switch level {
	case "DEBUG":
		return styleDebug.Render(padded)
	case "WARN":
		return styleWarn.Render(padded)
	case "ERROR":
		return styleError.Render(padded)
	case "FATAL":
		return styleFatal.Render(padded)
	default:
		return styleInfo.Render(padded)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each record as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(rec model.LogRecord) error {
	return r.enc.Encode(rec)
}
