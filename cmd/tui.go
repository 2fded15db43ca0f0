package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chordex/internal/search"
	"github.com/desertthunder/chordex/internal/shared"
	"github.com/desertthunder/chordex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for search and chord exploration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.svc == nil {
		return fmt.Errorf("%w: AutoChord service not initialized", shared.ErrServiceUnavailable)
	}
	if r.store == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/chordex-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	window := time.Duration(r.config.Search.DebounceMS) * time.Millisecond
	suggester := search.NewSuggester(r.svc.Search, window, r.config.Search.SuggestionLimit)

	model := ui.NewModel(ctx, ui.Opts{
		Service:   r.svc,
		Store:     r.store,
		Workflow:  r.flow,
		Suggester: suggester,
		Pager:     r.newPager(),
		History:   r.history,
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
