package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/tui"
	"github.com/Mr-Dark-debug/mathtutor/internal/typeset"
)

// Config describes user-provided application options.
type Config struct {
	API         api.Config
	InitialFile string
	Mouse       bool
}

// Run bootstraps and executes the Bubble Tea program. Cancelling ctx,
// or quitting the program, cancels every in-flight request.
func Run(ctx context.Context, cfg Config) error {
	client, err := api.NewClient(cfg.API)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(ctx, client, typeset.NewEngine(), tui.Options{InitialFile: cfg.InitialFile})
	program := tea.NewProgram(model, programOptions(ctx, cfg)...)
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func programOptions(ctx context.Context, cfg Config) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}
