package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the full-screen viewer until it exits. The viewer is unmounted
// (playback stopped, media released) before Run returns.
func Run(ctx context.Context, opts Options) (Result, error) {
	applyThemePreference()
	applyColorProfilePreference()

	m := newViewerModel(ctx, opts)
	final, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()

	vm, ok := final.(viewerModel)
	if !ok {
		m.close()
		return Result{}, err
	}
	vm.close()
	return vm.result, err
}
