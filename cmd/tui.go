package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/desertthunder/flowdj/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for flow management.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: pipeline engine not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/flowdj-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := ui.Run(ctx, r.registry, r.engine); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
