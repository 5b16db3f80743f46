package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for one account role.
//
// Starts a local HTTP server on the configured redirect address, opens the
// browser for user authorization, exchanges the code for tokens, and stores
// them keyed by role.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	role := services.Role(cmd.String("role"))
	if !role.Valid() {
		return fmt.Errorf("%w: --role must be 'source' or 'dest'", shared.ErrInvalidFlag)
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	if err := r.openDB(); err != nil {
		return err
	}

	client, err := services.NewSpotifyClient(creds, role)
	if err != nil {
		return fmt.Errorf("failed to create Spotify client: %w", err)
	}

	token, err := r.doOAuth(client, role)
	if err != nil {
		return err
	}

	if err := r.tokens.Save(role, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ %s account connected\n\n", role)
	if role == services.RoleSource {
		r.writePlain("You can now use: spotx playlists\n")
	} else {
		r.writePlain("You can now use: spotx transfer run\n")
	}

	return nil
}

// AuthStatus checks both roles by probing the API with the stored tokens.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDB(); err != nil {
		return err
	}

	for _, role := range []services.Role{services.RoleSource, services.RoleDest} {
		client, err := r.client(ctx, role)
		if err != nil {
			r.writePlain("%s: ✗ not authenticated\n", role)
			continue
		}

		user, err := client.Me(ctx)
		if err != nil {
			r.writePlain("%s: ✗ stored token rejected (%v)\n", role, err)
			continue
		}

		r.writePlain("%s: ✓ %s\n", role, user.DisplayName)
	}

	return nil
}

// AuthLogout clears stored tokens for one role, or both when no role is given.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDB(); err != nil {
		return err
	}

	roles := []services.Role{services.RoleSource, services.RoleDest}
	if flag := cmd.String("role"); flag != "" {
		role := services.Role(flag)
		if !role.Valid() {
			return fmt.Errorf("%w: --role must be 'source' or 'dest'", shared.ErrInvalidFlag)
		}
		roles = []services.Role{role}
	}

	for _, role := range roles {
		err := r.tokens.Delete(role)
		switch {
		case errors.Is(err, shared.ErrNoToken):
			r.writePlain("%s: no stored token\n", role)
		case err != nil:
			return err
		default:
			r.writePlain("%s: ✓ logged out\n", role)
		}
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(client *services.SpotifyClient, role services.Role) (*oauth2.Token, error) {
	state := shared.GenerateID()

	authURL := client.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(client.OAuthConfig(), role, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s login at %v", role, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser to authorize the %s account...\n", role)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
