package main

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#7D8590")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle    = lipgloss.NewStyle().Foreground(muted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	promptStyle   = lipgloss.NewStyle().Bold(true)

	passStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922"))
	violationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149"))

	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58A6FF"))
	guideStyle = lipgloss.NewStyle().PaddingLeft(2)
)
