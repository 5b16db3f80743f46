package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// newTestRunner wires a runner to an in-memory database, a capture buffer,
// and mock clients for both roles.
func newTestRunner(t *testing.T, source, dest services.Client) (*Runner, *bytes.Buffer) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A pooled second connection would see a separate empty in-memory db.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		DB:     db,
		Clients: func(ctx context.Context, role services.Role) (services.Client, error) {
			switch role {
			case services.RoleSource:
				if source == nil {
					return nil, shared.ErrNotAuthenticated
				}
				return source, nil
			case services.RoleDest:
				if dest == nil {
					return nil, shared.ErrNotAuthenticated
				}
				return dest, nil
			}
			return nil, errors.New("unknown role")
		},
	})
	return runner, output
}

// run invokes a registered command the way main does, e.g.
// run(t, runner, "transfer", "run", "--liked").
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{
		Name:     "spotx",
		Commands: r.register(),
	}
	return root.Run(context.Background(), append([]string{"spotx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(io.Discard)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Fatal("expected default config")
			}
			if runner.config.Server.Port == 0 {
				t.Error("expected default server port to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
		})

		t.Run("with nil clients uses stored tokens", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.clientFn == nil {
				t.Error("expected default client factory")
			}
		})

		t.Run("with DB attaches repositories", func(t *testing.T) {
			runner, _ := newTestRunner(t, nil, nil)
			if runner.tokens == nil || runner.runs == nil {
				t.Error("expected repositories to be attached")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 6 {
			t.Fatalf("expected 6 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "playlists", "transfer", "history", "serve"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestTransferRun(t *testing.T) {
	t.Run("runs a transfer and prints the narrative and summary", func(t *testing.T) {
		source := tu.NewMockClient()
		source.Saved = tu.TrackFixtures(3)
		source.PlaylistList = []models.Playlist{{ID: "pl-1", Name: "Road Trip", TrackCount: 2}}
		source.PlaylistTracks["pl-1"] = tu.TrackFixtures(2)
		dest := tu.NewMockClient()

		runner, output := newTestRunner(t, source, dest)

		err := run(t, runner, "transfer", "run", "--liked", "--playlist", "pl-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		for _, want := range []string{
			"Starting Transfer: Liked Songs...",
			"Total liked songs found: 3",
			"Processing Playlist 1/1: 'Road Trip'",
			"DONE",
			"Transfer Summary",
			"Liked songs: 3/3 added",
			"Playlists: 1 created, 2 tracks added, 0 skipped",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}

		if len(dest.SaveCalls) != 1 {
			t.Errorf("expected 1 save call, got %d", len(dest.SaveCalls))
		}
		if len(dest.CreateCalls) != 1 {
			t.Errorf("expected 1 create call, got %d", len(dest.CreateCalls))
		}

		runs, err := runner.runs.List(10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(runs))
		}
		if runs[0].TracksSaved != 3 || runs[0].PlaylistsCreated != 1 {
			t.Errorf("recorded run = %d saved / %d created, want 3/1", runs[0].TracksSaved, runs[0].PlaylistsCreated)
		}
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockClient(), tu.NewMockClient())

		err := run(t, runner, "transfer", "run")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("writes a report when requested", func(t *testing.T) {
		source := tu.NewMockClient()
		source.Saved = tu.TrackFixtures(1)
		runner, output := newTestRunner(t, source, tu.NewMockClient())

		path := filepath.Join(t.TempDir(), "report.json")
		err := run(t, runner, "transfer", "run", "--liked", "--report", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		var report map[string]any
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &report); err != nil {
			t.Fatalf("report is not valid JSON: %v", err)
		}
		if !strings.Contains(output.String(), "Report written to") {
			t.Error("expected report path in output")
		}
	})

	t.Run("fails when an account is not authenticated", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, tu.NewMockClient())

		err := run(t, runner, "transfer", "run", "--liked")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestPlaylists(t *testing.T) {
	sourceWith := func(playlists []models.Playlist) *tu.MockClient {
		source := tu.NewMockClient()
		source.PlaylistList = playlists
		return source
	}

	t.Run("lists playlists as plain text", func(t *testing.T) {
		source := sourceWith([]models.Playlist{
			{ID: "pl-1", Name: "Focus", Description: "deep work", TrackCount: 12, Public: true},
			{ID: "pl-2", Name: "Gym", TrackCount: 40},
		})
		runner, output := newTestRunner(t, source, nil)

		if err := run(t, runner, "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		for _, want := range []string{
			"Found 2 playlists:",
			"1. Focus",
			"   Description: deep work",
			"   Visibility: Public",
			"2. Gym",
			"   Visibility: Private",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("lists playlists as JSON", func(t *testing.T) {
		source := sourceWith([]models.Playlist{{ID: "pl-1", Name: "Focus"}})
		runner, output := newTestRunner(t, source, nil)

		if err := run(t, runner, "playlists", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var playlists []models.Playlist
		if err := json.Unmarshal(output.Bytes(), &playlists); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(playlists) != 1 || playlists[0].ID != "pl-1" {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
	})

	t.Run("applies the limit flag", func(t *testing.T) {
		source := sourceWith([]models.Playlist{
			{ID: "pl-1", Name: "One"},
			{ID: "pl-2", Name: "Two"},
			{ID: "pl-3", Name: "Three"},
		})
		runner, output := newTestRunner(t, source, nil)

		if err := run(t, runner, "playlists", "--limit", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Found 2 playlists:") {
			t.Errorf("expected limit to apply:\n%s", output.String())
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("reports when no runs are recorded", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)

		if err := run(t, runner, "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No transfer runs recorded yet.") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("lists recorded runs", func(t *testing.T) {
		source := tu.NewMockClient()
		source.Saved = tu.TrackFixtures(2)
		runner, output := newTestRunner(t, source, tu.NewMockClient())

		if err := run(t, runner, "transfer", "run", "--liked"); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		output.Reset()

		if err := run(t, runner, "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "liked: true, playlists requested: 0") {
			t.Errorf("output missing run selection:\n%s", text)
		}
		if !strings.Contains(text, "saved 2 tracks, created 0 playlists (0 tracks), 0 errors") {
			t.Errorf("output missing run counters:\n%s", text)
		}
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("reports both roles", func(t *testing.T) {
		source := tu.NewMockClient()
		source.User = &models.User{ID: "u-1", DisplayName: "Alice"}
		runner, output := newTestRunner(t, source, nil)

		if err := run(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "source: ✓ Alice") {
			t.Errorf("output missing source status:\n%s", text)
		}
		if !strings.Contains(text, "dest: ✗ not authenticated") {
			t.Errorf("output missing dest status:\n%s", text)
		}
	})

	t.Run("reports a rejected token", func(t *testing.T) {
		source := tu.NewMockClient()
		source.MeErr = errors.New("unauthorized")
		runner, output := newTestRunner(t, source, nil)

		if err := run(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "source: ✗ stored token rejected") {
			t.Errorf("output missing rejection:\n%s", output.String())
		}
	})
}

func TestAuthLogout(t *testing.T) {
	t.Run("clears stored tokens for both roles", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)
		for _, role := range []services.Role{services.RoleSource, services.RoleDest} {
			if err := runner.tokens.Save(role, &oauth2.Token{AccessToken: "tok-" + string(role)}); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}
		}

		if err := run(t, runner, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "source: ✓ logged out") || !strings.Contains(text, "dest: ✓ logged out") {
			t.Errorf("output missing logout confirmations:\n%s", text)
		}
		if _, err := runner.tokens.Load(services.RoleSource); !errors.Is(err, shared.ErrNoToken) {
			t.Errorf("expected source token to be gone, got %v", err)
		}
	})

	t.Run("logs out a single role", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)
		if err := runner.tokens.Save(services.RoleSource, &oauth2.Token{AccessToken: "tok"}); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		if err := run(t, runner, "auth", "logout", "--role", "source"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "source: ✓ logged out") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("reports roles without stored tokens", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)

		if err := run(t, runner, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "source: no stored token") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("rejects an invalid role", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil, nil)

		err := run(t, runner, "auth", "logout", "--role", "backup")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Fatalf("expected ErrInvalidFlag, got %v", err)
		}
	})
}
