package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors, hex.
const (
	colorAccent  = "#bd93f9"
	colorMuted   = "#6272a4"
	colorSuccess = "#50fa7b"
	colorWarning = "#f1fa8c"
	colorDanger  = "#ff5555"
)

// Styles holds the lipgloss styles used by the report.
type Styles struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
}

// NewStyles builds styles bound to w's terminal. Writers that are not a
// color terminal get plain text.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		Success: r.NewStyle().Foreground(lipgloss.Color(colorSuccess)),
		Warning: r.NewStyle().Foreground(lipgloss.Color(colorWarning)),
		Danger:  r.NewStyle().Foreground(lipgloss.Color(colorDanger)),
	}
}
