package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	HiddenCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Chart cell colours by strategy code.
var codeStyles = map[string]lipgloss.Style{
	"H":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	"S":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEAA7")),
	"D":  lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
	"Ds": lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
	"Rh": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	"Rs": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	"P":  lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
	"Ph": lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
	"N":  lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
}
