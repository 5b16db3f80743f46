package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TransferRun runs a transfer for the selection given by flags.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	selection := models.TransferSelection{
		Liked:       cmd.Bool("liked"),
		PlaylistIDs: cmd.StringSlice("playlist"),
	}
	reportPath := cmd.String("report")

	if selection.Empty() {
		return fmt.Errorf("%w: nothing selected, pass --liked and/or --playlist", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting transfer", "liked", selection.Liked, "playlists", len(selection.PlaylistIDs))

	events := make(chan tasks.ProgressUpdate)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for update := range events {
			if update.Err {
				r.writePlain("⚠ %s\n", update.Message)
			} else {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, runErr := engine.Run(ctx, selection, events)
	close(events)
	<-printerDone

	if result != nil {
		r.recordRun(result)

		r.writePlain("\n")
		r.writePlainHeader("Transfer Summary")
		if selection.Liked {
			r.writePlain("Liked songs: %d/%d added\n", result.Liked.Added, result.Liked.Found)
		}
		r.writePlain("Playlists: %d created, %d tracks added, %d skipped\n",
			result.Playlists.Created, result.Playlists.TracksAdded, result.Playlists.Skipped)
		if errs := result.ErrorCount(); errs > 0 {
			r.writePlain("Errors: %d (see log above)\n", errs)
		}

		if reportPath != "" {
			written, err := formatter.WriteReport(result, reportPath)
			if err != nil {
				return err
			}
			r.writePlain("\n✓ Report written to %s\n", written)
		}
	}

	return runErr
}

// TransferUI launches the interactive selection and progress TUI.
func (r *Runner) TransferUI(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// recordRun stores a finished run in the history table.
func (r *Runner) recordRun(result *tasks.RunResult) {
	if r.runs == nil {
		return
	}
	if err := r.runs.Record(result); err != nil {
		r.logger.Warn("failed to record transfer run", "run", result.RunID, "error", err)
	}
}
