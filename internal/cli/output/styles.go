package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the text styles used by commands.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Path    lipgloss.Style
	RuleID  lipgloss.Style
}

func newStyles(lr *lipgloss.Renderer) Styles {
	return Styles{
		Header:  lr.NewStyle().Bold(true).Underline(true),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "243"}),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Path:    lr.NewStyle().Foreground(lipgloss.Color("14")).Underline(true),
		RuleID:  lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "248"}),
	}
}
