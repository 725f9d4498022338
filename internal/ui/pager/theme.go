package pager

import "github.com/charmbracelet/lipgloss"

// HN orange and depth colors for comment nesting.
var (
	hnOrange = lipgloss.Color("#FF6600")

	depthColors = []lipgloss.Color{
		"#FF6600", // orange
		"#828282", // gray
		"#00BFFF", // deep sky blue
		"#32CD32", // lime green
		"#FFD700", // gold
		"#FF69B4", // hot pink
		"#9370DB", // medium purple
		"#20B2AA", // light sea green
	}

	authorStyle    = lipgloss.NewStyle().Foreground(hnOrange).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	headerMeta     = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)
