package ui

import (
	"wallet_vote/internal/types"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	text, dim, accent, selectedFg, selectedBg, success, danger lipgloss.Color
}

var (
	darkPalette = palette{
		text:       lipgloss.Color("252"),
		dim:        lipgloss.Color("240"),
		accent:     lipgloss.Color("39"),
		selectedFg: lipgloss.Color("229"),
		selectedBg: lipgloss.Color("57"),
		success:    lipgloss.Color("42"),
		danger:     lipgloss.Color("196"),
	}
	lightPalette = palette{
		text:       lipgloss.Color("235"),
		dim:        lipgloss.Color("245"),
		accent:     lipgloss.Color("25"),
		selectedFg: lipgloss.Color("231"),
		selectedBg: lipgloss.Color("63"),
		success:    lipgloss.Color("28"),
		danger:     lipgloss.Color("160"),
	}
)

type styles struct {
	title       lipgloss.Style
	tab         lipgloss.Style
	activeTab   lipgloss.Style
	votedBadge  lipgloss.Style
	openBadge   lipgloss.Style
	normal      lipgloss.Style
	selected    lipgloss.Style
	dim         lipgloss.Style
	button      lipgloss.Style
	votedButton lipgloss.Style
	info        lipgloss.Style
	success     lipgloss.Style
	errorText   lipgloss.Style
	help        lipgloss.Style
}

func newStyles(theme types.Theme) styles {
	p := darkPalette
	if theme == types.ThemeLight {
		p = lightPalette
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		tab: lipgloss.NewStyle().
			Foreground(p.text).
			Padding(0, 1),
		activeTab: lipgloss.NewStyle().
			Foreground(p.selectedFg).
			Background(p.selectedBg).
			Bold(true).
			Padding(0, 1),
		votedBadge: lipgloss.NewStyle().
			Foreground(p.success),
		openBadge: lipgloss.NewStyle().
			Foreground(p.dim),
		normal: lipgloss.NewStyle().
			Foreground(p.text),
		selected: lipgloss.NewStyle().
			Foreground(p.selectedFg).
			Background(p.selectedBg).
			Bold(true),
		dim: lipgloss.NewStyle().
			Foreground(p.dim),
		button: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		votedButton: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		info: lipgloss.NewStyle().
			Foreground(p.accent),
		success: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		errorText: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		help: lipgloss.NewStyle().
			Foreground(p.dim).
			MarginTop(1),
	}
}
