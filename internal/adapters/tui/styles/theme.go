package styles

import (
	"github.com/charmbracelet/lipgloss"

	"canvastree/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")

	// Kind colors
	KindCourse    = lipgloss.Color("#8B5CF6") // Violet
	KindContainer = lipgloss.Color("#60A5FA") // Blue
	KindTool      = lipgloss.Color("#F97316") // Orange
	KindPost      = lipgloss.Color("#EC4899") // Pink

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree node styles
	NodeCourse = lipgloss.NewStyle().
			Bold(true)

	NodeItem = lipgloss.NewStyle()

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	NodeDisabled = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	NodeMarked = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	NodeDate = lipgloss.NewStyle().
			Foreground(Muted)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "
	TreeMark      = "● "

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// KindColor returns the foreground color for a node kind
func KindColor(k domain.Kind) lipgloss.TerminalColor {
	switch k {
	case domain.KindCourse:
		return KindCourse
	case domain.KindModule, domain.KindFolder, domain.KindPage:
		return KindContainer
	case domain.KindExternalTool, domain.KindTab, domain.KindLecturePortal, domain.KindAttendance, domain.KindExternalURL:
		return KindTool
	case domain.KindAnnouncement, domain.KindDiscussion:
		return KindPost
	default:
		return lipgloss.NoColor{}
	}
}
