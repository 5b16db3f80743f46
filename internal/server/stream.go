package server

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/tasks"
)

// StreamTransfer handles GET /transfer/stream.
//
// The query string carries the selection: liked=true and any number of
// repeated playlist parameters. Progress events are written as SSE data
// lines in emission order; the stream always ends with the DONE marker
// unless the client disconnects first, which cancels the run through the
// request context.
func (a *App) StreamTransfer(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	write := func(line string) {
		fmt.Fprintf(w, "data: %s\n\n", line)
		flusher.Flush()
	}

	query := r.URL.Query()
	selection := models.TransferSelection{
		Liked:       query.Get("liked") == "true" || query.Get("liked") == "on",
		PlaylistIDs: query["playlist"],
	}

	ctx := r.Context()

	source, err := a.client(ctx, services.RoleSource)
	if err != nil {
		write(fmt.Sprintf("Error: source account not connected: %v", err))
		write(tasks.TerminalMessage)
		return
	}

	dest, err := a.client(ctx, services.RoleDest)
	if err != nil {
		write(fmt.Sprintf("Error: destination account not connected: %v", err))
		write(tasks.TerminalMessage)
		return
	}

	engine := tasks.NewTransferEngine(source, dest, tasks.OptsFromConfig(a.config.Transfer))

	var (
		result *tasks.RunResult
		runErr error
	)
	events := make(chan tasks.ProgressUpdate)
	go func() {
		defer close(events)
		result, runErr = engine.Run(ctx, selection, events)
	}()

	for update := range events {
		write(update.Message)
	}

	if runErr != nil {
		a.logger.Warn("transfer run failed", "error", runErr)
	}
	if result != nil && a.runs != nil {
		if err := a.runs.Record(result); err != nil {
			a.logger.Warn("failed to record transfer run", "run", result.RunID, "error", err)
		}
	}
}
