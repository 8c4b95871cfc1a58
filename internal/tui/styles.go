package tui

import "github.com/charmbracelet/lipgloss"

const (
	sidebarOpenWidth      = 26
	sidebarCollapsedWidth = 5
)

var (
	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	newChatStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	userLabel     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	emptyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(1, 2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	plainStyle    = lipgloss.NewStyle().Padding(0, 2)
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)
