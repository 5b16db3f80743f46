package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	db       *sql.DB
	tokens   *repositories.TokenRepository
	runs     *repositories.RunRepository
	clientFn ClientFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Logger  *log.Logger
	Output  io.Writer
	DB      *sql.DB
	Clients ClientFactory
}

// ClientFactory builds an authenticated client for a role. Overridable in tests.
type ClientFactory func(ctx context.Context, role services.Role) (services.Client, error)

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
	if opts.DB != nil {
		r.attachDB(opts.DB)
	}
	r.clientFn = opts.Clients
	if r.clientFn == nil {
		r.clientFn = r.spotifyClient
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, transferCommand, historyCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) attachDB(db *sql.DB) {
	r.db = db
	r.tokens = repositories.NewTokenRepository(db)
	r.runs = repositories.NewRunRepository(db)
}

// openDB opens the configured database, running any pending migrations.
func (r *Runner) openDB() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.attachDB(db)
	return nil
}

// client builds an authenticated client for a role from the stored token.
func (r *Runner) client(ctx context.Context, role services.Role) (services.Client, error) {
	return r.clientFn(ctx, role)
}

func (r *Runner) spotifyClient(ctx context.Context, role services.Role) (services.Client, error) {
	if err := r.openDB(); err != nil {
		return nil, err
	}

	token, err := r.tokens.Load(role)
	if errors.Is(err, shared.ErrNoToken) {
		return nil, fmt.Errorf("%w: run 'spotx auth login --role %s' first", shared.ErrNotAuthenticated, role)
	}
	if err != nil {
		return nil, err
	}

	client, err := services.NewSpotifyClient(r.config.Credentials.Spotify, role)
	if err != nil {
		return nil, err
	}
	if err := client.Authenticate(ctx, token); err != nil {
		return nil, err
	}

	return client, nil
}

// engine builds a transfer engine over both roles' clients.
func (r *Runner) engine(ctx context.Context) (*tasks.TransferEngine, error) {
	source, err := r.client(ctx, services.RoleSource)
	if err != nil {
		return nil, err
	}
	dest, err := r.client(ctx, services.RoleDest)
	if err != nil {
		return nil, err
	}
	return tasks.NewTransferEngine(source, dest, tasks.OptsFromConfig(r.config.Transfer)), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
