package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/google/uuid"
)

// ClientFunc builds an authenticated API client for an account role.
type ClientFunc func(ctx context.Context, role services.Role) (services.Client, error)

// App serves the browser interface for driving transfers.
//
// Login state lives in the token repository, not in sessions; the index
// page probes both roles on every render.
type App struct {
	config *shared.Config
	tokens *repositories.TokenRepository
	runs   *repositories.RunRepository
	logger *log.Logger
	client ClientFunc

	mu     sync.Mutex
	states map[string]services.Role // pending OAuth state tokens
}

// NewApp creates the web application over the shared configuration and repositories.
func NewApp(config *shared.Config, tokens *repositories.TokenRepository, runs *repositories.RunRepository, logger *log.Logger) *App {
	app := &App{
		config: config,
		tokens: tokens,
		runs:   runs,
		logger: logger,
		states: map[string]services.Role{},
	}
	app.client = app.spotifyClient
	return app
}

// Register attaches the application's routes to a router.
func (a *App) Register(router Router) {
	router.Handle(http.MethodGet, "/", http.HandlerFunc(a.Index))
	router.Handle(http.MethodGet, "/login", http.HandlerFunc(a.Login))
	router.Handle(http.MethodGet, "/callback", http.HandlerFunc(a.Callback))
	router.Handle(http.MethodGet, "/logout", http.HandlerFunc(a.Logout))
	router.Handle(http.MethodGet, "/transfer/stream", http.HandlerFunc(a.StreamTransfer))
}

// spotifyClient builds a client for a role from its stored token.
func (a *App) spotifyClient(ctx context.Context, role services.Role) (services.Client, error) {
	token, err := a.tokens.Load(role)
	if err != nil {
		return nil, err
	}

	client, err := services.NewSpotifyClient(a.config.Credentials.Spotify, role)
	if err != nil {
		return nil, err
	}
	if err := client.Authenticate(ctx, token); err != nil {
		return nil, err
	}

	return client, nil
}

type accountStatus struct {
	Connected   bool
	DisplayName string
}

type indexData struct {
	Source    accountStatus
	Dest      accountStatus
	Playlists []models.Playlist
	Ready     bool
}

// Index renders the status and selection page.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := indexData{}

	if source, err := a.client(ctx, services.RoleSource); err == nil {
		if user, err := source.Me(ctx); err == nil {
			data.Source = accountStatus{Connected: true, DisplayName: user.DisplayName}

			engine := tasks.NewTransferEngine(source, nil, tasks.OptsFromConfig(a.config.Transfer))
			playlists, err := engine.SourcePlaylists(ctx)
			if err != nil {
				a.logger.Warn("failed to list source playlists", "error", err)
			}
			data.Playlists = playlists
		}
	}

	if dest, err := a.client(ctx, services.RoleDest); err == nil {
		if user, err := dest.Me(ctx); err == nil {
			data.Dest = accountStatus{Connected: true, DisplayName: user.DisplayName}
		}
	}

	data.Ready = data.Source.Connected && data.Dest.Connected

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		a.logger.Error("failed to render index", "error", err)
	}
}

// Login starts the authorization flow for the role named in the query string.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	role := services.Role(r.URL.Query().Get("role"))
	if !role.Valid() {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	client, err := services.NewSpotifyClient(a.config.Credentials.Spotify, role)
	if err != nil {
		a.logger.Error("failed to build client", "role", role, "error", err)
		http.Error(w, "credentials not configured", http.StatusInternalServerError)
		return
	}

	state := uuid.New().String()
	a.mu.Lock()
	a.states[state] = role
	a.mu.Unlock()

	http.Redirect(w, r, client.GetAuthURL(state), http.StatusFound)
}

// Callback completes the authorization flow and stores the role's token.
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	a.mu.Lock()
	role, ok := a.states[state]
	delete(a.states, state)
	a.mu.Unlock()

	if !ok {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	client, err := services.NewSpotifyClient(a.config.Credentials.Spotify, role)
	if err != nil {
		http.Error(w, "credentials not configured", http.StatusInternalServerError)
		return
	}

	token, err := client.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("token exchange failed", "role", role, "error", err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	if err := a.tokens.Save(role, token); err != nil {
		a.logger.Error("failed to store token", "role", role, "error", err)
		http.Error(w, "Failed to store token", http.StatusInternalServerError)
		return
	}

	a.logger.Info("account connected", "role", role)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears both roles' stored tokens.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	for _, role := range []services.Role{services.RoleSource, services.RoleDest} {
		if err := a.tokens.Delete(role); err != nil && !errors.Is(err, shared.ErrNoToken) {
			a.logger.Warn("failed to clear token", "role", role, "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>spotx</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               max-width: 720px; margin: 2rem auto; padding: 0 1rem; background: #f5f5f5; color: #222; }
        .card { background: white; padding: 1.5rem; border-radius: 8px; margin-bottom: 1rem;
                box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; }
        .connected { color: #1DB954; }
        .disconnected { color: #c0392b; }
        a.button, button { display: inline-block; background: #1DB954; color: white; border: none;
                           padding: 0.5rem 1rem; border-radius: 4px; text-decoration: none; cursor: pointer; }
        pre#progress { background: #111; color: #eee; padding: 1rem; border-radius: 4px;
                       min-height: 8rem; white-space: pre-wrap; }
        label { display: block; margin: 0.25rem 0; }
    </style>
</head>
<body>
    <h1>spotx</h1>
    <div class="card">
        <h2>Accounts</h2>
        <p>Source:
            {{if .Source.Connected}}<span class="connected">{{.Source.DisplayName}}</span>
            {{else}}<span class="disconnected">not connected</span> <a class="button" href="/login?role=source">Connect</a>{{end}}
        </p>
        <p>Destination:
            {{if .Dest.Connected}}<span class="connected">{{.Dest.DisplayName}}</span>
            {{else}}<span class="disconnected">not connected</span> <a class="button" href="/login?role=dest">Connect</a>{{end}}
        </p>
        <p><a href="/logout">Log out of both accounts</a></p>
    </div>
    {{if .Ready}}
    <div class="card">
        <h2>Transfer</h2>
        <form id="transfer-form">
            <label><input type="checkbox" name="liked" value="true"> Liked Songs</label>
            {{range .Playlists}}
            <label><input type="checkbox" name="playlist" value="{{.ID}}"> {{.Name}} ({{.TrackCount}} tracks)</label>
            {{end}}
            <button type="submit">Start Transfer</button>
        </form>
        <pre id="progress"></pre>
    </div>
    <script>
        document.getElementById('transfer-form').addEventListener('submit', function (e) {
            e.preventDefault();
            var params = new URLSearchParams(new FormData(e.target));
            var out = document.getElementById('progress');
            out.textContent = '';
            var source = new EventSource('/transfer/stream?' + params.toString());
            source.onmessage = function (ev) {
                out.textContent += ev.data + '\n';
                if (ev.data === 'DONE') { source.close(); }
            };
            source.onerror = function () { source.close(); };
        });
    </script>
    {{end}}
</body>
</html>
`))
