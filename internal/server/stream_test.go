package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
)

func testApp(source, dest services.Client) *App {
	app := NewApp(shared.DefaultConfig(), nil, nil, log.New(io.Discard))
	app.client = func(ctx context.Context, role services.Role) (services.Client, error) {
		switch role {
		case services.RoleSource:
			if source == nil {
				return nil, shared.ErrNoToken
			}
			return source, nil
		case services.RoleDest:
			if dest == nil {
				return nil, shared.ErrNoToken
			}
			return dest, nil
		}
		return nil, errors.New("unknown role")
	}
	return app
}

// dataLines extracts SSE data payloads from a response body.
func dataLines(t *testing.T, body string) []string {
	t.Helper()
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			lines = append(lines, payload)
		}
	}
	if len(lines) == 0 {
		t.Fatalf("no SSE data lines in body:\n%s", body)
	}
	return lines
}

func TestStreamTransfer(t *testing.T) {
	t.Run("streams events in order with terminal marker", func(t *testing.T) {
		source := tu.NewMockClient()
		source.Saved = tu.TrackFixtures(3)
		source.PlaylistList = []models.Playlist{{ID: "pl-1", Name: "Mix"}}
		source.PlaylistTracks["pl-1"] = tu.TrackFixtures(2)
		dest := tu.NewMockClient()

		app := testApp(source, dest)
		req := httptest.NewRequest("GET", "/transfer/stream?liked=true&playlist=pl-1", nil)
		rec := httptest.NewRecorder()
		app.StreamTransfer(rec, req)

		if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("Content-Type = %q, want text/event-stream", ct)
		}

		lines := dataLines(t, rec.Body.String())
		if lines[len(lines)-1] != "DONE" {
			t.Errorf("last line = %q, want DONE", lines[len(lines)-1])
		}
		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "Total liked songs found: 3") {
			t.Errorf("missing liked songs narrative:\n%s", joined)
		}
		if !strings.Contains(joined, "Processing Playlist 1/1: 'Mix'") {
			t.Errorf("missing playlist narrative:\n%s", joined)
		}
		if len(dest.SaveCalls) != 1 || len(dest.CreateCalls) != 1 {
			t.Errorf("writes = %d saves / %d creates, want 1/1", len(dest.SaveCalls), len(dest.CreateCalls))
		}
	})

	t.Run("empty selection still produces a full narrative", func(t *testing.T) {
		app := testApp(tu.NewMockClient(), tu.NewMockClient())
		req := httptest.NewRequest("GET", "/transfer/stream", nil)
		rec := httptest.NewRecorder()
		app.StreamTransfer(rec, req)

		lines := dataLines(t, rec.Body.String())
		joined := strings.Join(lines, "\n")
		for _, want := range []string{"Skipping Liked Songs transfer.", "No playlists selected for transfer.", "DONE"} {
			if !strings.Contains(joined, want) {
				t.Errorf("missing %q in:\n%s", want, joined)
			}
		}
	})

	t.Run("disconnected source fails fast but still terminates", func(t *testing.T) {
		app := testApp(nil, tu.NewMockClient())
		req := httptest.NewRequest("GET", "/transfer/stream?liked=true", nil)
		rec := httptest.NewRecorder()
		app.StreamTransfer(rec, req)

		lines := dataLines(t, rec.Body.String())
		if !strings.Contains(lines[0], "source account not connected") {
			t.Errorf("first line = %q, want source connection error", lines[0])
		}
		if lines[len(lines)-1] != "DONE" {
			t.Errorf("last line = %q, want DONE", lines[len(lines)-1])
		}
	})

	t.Run("destination identity failure surfaces as error event", func(t *testing.T) {
		dest := tu.NewMockClient()
		dest.MeErr = errors.New("unauthorized")
		app := testApp(tu.NewMockClient(), dest)
		req := httptest.NewRequest("GET", "/transfer/stream?liked=true", nil)
		rec := httptest.NewRecorder()
		app.StreamTransfer(rec, req)

		lines := dataLines(t, rec.Body.String())
		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "Error fetching destination user info: unauthorized") {
			t.Errorf("missing identity error in:\n%s", joined)
		}
		if lines[len(lines)-1] != "DONE" {
			t.Errorf("last line = %q, want DONE", lines[len(lines)-1])
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := log.New(&buf)

	router := NewBasicRouter()
	router.Use(LoggingMiddleware(logger))
	router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(buf.String(), "/ping") {
		t.Errorf("request not logged: %q", buf.String())
	}
}
