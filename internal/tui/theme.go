package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/minijira/issue-tracker/internal/domain"
)

// Theme is the color palette of the board. Colors are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color

	StatusOpen       lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusResolved   lipgloss.Color
	StatusClosed     lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
}

// DefaultTheme targets dark 256-color terminals.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	PriorityLow:    lipgloss.Color("245"), // gray
	PriorityMedium: lipgloss.Color("75"),  // blue
	PriorityHigh:   lipgloss.Color("208"), // orange

	StatusOpen:       lipgloss.Color("114"), // green
	StatusInProgress: lipgloss.Color("220"), // amber
	StatusResolved:   lipgloss.Color("141"), // purple
	StatusClosed:     lipgloss.Color("245"), // gray

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"),
}

// StatusColor returns the color of a ticket status.
func (theme Theme) StatusColor(status domain.TicketStatus) lipgloss.Color {
	switch status {
	case domain.TicketStatusOpen:
		return theme.StatusOpen
	case domain.TicketStatusInProgress:
		return theme.StatusInProgress
	case domain.TicketStatusResolved:
		return theme.StatusResolved
	case domain.TicketStatusClosed:
		return theme.StatusClosed
	default:
		return theme.FaintText
	}
}

// PriorityColor returns the color of a ticket priority.
func (theme Theme) PriorityColor(priority domain.TicketPriority) lipgloss.Color {
	switch priority {
	case domain.TicketPriorityHigh:
		return theme.PriorityHigh
	case domain.TicketPriorityMedium:
		return theme.PriorityMedium
	case domain.TicketPriorityLow:
		return theme.PriorityLow
	default:
		return theme.FaintText
	}
}
