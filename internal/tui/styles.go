package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// statusStyles covers the resolver's reporter vocabulary plus the
	// pending state rows start in.
	statusStyles = map[string]lipgloss.Style{
		"pending":     lipgloss.NewStyle().Faint(true),
		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"downloaded":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"skipped":     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"error":       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
