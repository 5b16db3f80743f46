// Spotify API implementation of [Client]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Per-request caps documented by the Spotify API for the bulk write calls.
const (
	MaxSaveTracksBatch       = 50
	MaxAddPlaylistItemsBatch = 100
)

// sourceScopes grant read access to the library being copied.
var sourceScopes = []string{
	"user-library-read",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-read-private",
}

// destScopes grant write access to the receiving account.
var destScopes = []string{
	"user-library-modify",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-read-private",
}

// ScopesFor returns the OAuth scopes required for an account role.
func ScopesFor(role Role) []string {
	if role == RoleDest {
		return destScopes
	}
	return sourceScopes
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	IsLocal bool            `json:"is_local"`
	URI     string          `json:"uri"`
}

// SpotifySavedTrack represents a track within a library or playlist context.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved or playlist tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

// SpotifyClient implements the [Client] interface for one authenticated account.
// Uses [oauth2] for authentication and paces requests with a [rate.Limiter].
type SpotifyClient struct {
	role       Role
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyClient creates a Spotify client for the given account role.
//
// Both roles share one registered application; they differ only in the
// OAuth scopes requested and the account the user signs in with.
func NewSpotifyClient(creds shared.SpotifyConfig, role Role) (*SpotifyClient, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	rps := creds.RateLimit
	if rps <= 0 {
		rps = 8.0
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       ScopesFor(role),
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		role:       role,
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate installs a token and switches to an auto-refreshing HTTP client.
func (s *SpotifyClient) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// Exchange trades an authorization code for a token.
func (s *SpotifyClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyClient) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying OAuth2 configuration for callback handling.
func (s *SpotifyClient) OAuthConfig() *oauth2.Config {
	return s.config
}

// Role returns the account role this client was built for.
func (s *SpotifyClient) Role() Role {
	return s.role
}

func (s *SpotifyClient) Name() string {
	return fmt.Sprintf("Spotify (%s)", s.role)
}

// doRequest performs an authenticated, rate-limited HTTP request to the Spotify API.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := s.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Me retrieves the current authenticated user's profile.
func (s *SpotifyClient) Me(ctx context.Context) (*models.User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	return &models.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Product:     user.Product,
	}, nil
}

// SavedTracks retrieves a window of the user's liked songs.
func (s *SpotifyClient) SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", clampLimit(limit, 50), offset)

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return trackPage(&response), nil
}

// Playlists retrieves a window of the current user's playlists.
func (s *SpotifyClient) Playlists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", clampLimit(limit, 50), offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &models.Page[models.Playlist]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
		Next:   response.Next != nil,
	}

	for _, pl := range response.Items {
		page.Items = append(page.Items, models.Playlist{
			ID:          pl.ID,
			Name:        pl.Name,
			Description: pl.Description,
			Public:      pl.Public,
			TrackCount:  pl.Tracks.Total,
			OwnerID:     pl.Owner.ID,
		})
	}

	return page, nil
}

// PlaylistItems retrieves a window of a playlist's tracks.
func (s *SpotifyClient) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.SavedTrack], error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), clampLimit(limit, 100), offset)

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return trackPage(&response), nil
}

// SaveTracks adds up to [MaxSaveTracksBatch] tracks to the user's liked songs.
func (s *SpotifyClient) SaveTracks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(ids) > MaxSaveTracksBatch {
		return fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, MaxSaveTracksBatch)
	}

	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}

	return s.doRequest(ctx, http.MethodPut, "/me/tracks", body, nil)
}

// CreatePlaylist creates a playlist owned by the given user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name string, public bool, description string) (*models.Playlist, error) {
	if userID == "" || name == "" {
		return nil, fmt.Errorf("%w: user ID and name are required", shared.ErrMissingArgument)
	}

	body := struct {
		Name        string `json:"name"`
		Public      bool   `json:"public"`
		Description string `json:"description,omitempty"`
	}{Name: name, Public: public, Description: description}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	var created SpotifySimplePlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
		OwnerID:     created.Owner.ID,
	}, nil
}

// AddPlaylistItems appends up to [MaxAddPlaylistItemsBatch] tracks to a playlist.
func (s *SpotifyClient) AddPlaylistItems(ctx context.Context, playlistID string, ids []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(ids) > MaxAddPlaylistItemsBatch {
		return fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, MaxAddPlaylistItemsBatch)
	}

	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = "spotify:track:" + id
	}

	body := struct {
		URIs []string `json:"uris"`
	}{URIs: uris}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 20
	}
	if limit > max {
		return max
	}
	return limit
}

// trackPage converts a Spotify paginated track response into the neutral page type.
func trackPage(response *SpotifyPaginatedTracks) *models.Page[models.SavedTrack] {
	page := &models.Page[models.SavedTrack]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
		Next:   response.Next != nil,
	}

	for _, item := range response.Items {
		track := models.Track{
			ID:    item.Track.ID,
			Title: item.Track.Name,
			Album: item.Track.Album.Name,
			URI:   item.Track.URI,
			Local: item.Track.IsLocal,
		}
		if len(item.Track.Artists) > 0 {
			track.Artist = item.Track.Artists[0].Name
		}
		page.Items = append(page.Items, models.SavedTrack{AddedAt: item.AddedAt, Track: track})
	}

	return page
}
