package cli

import (
	tea "github.com/charmbracelet/bubbletea"
)

// runTUI starts the full-screen interface on the project list. Mouse cell
// motion is enabled so bars can be dragged.
func runTUI(app *App) error {
	p := tea.NewProgram(newAppModel(app), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
