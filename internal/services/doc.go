// Package services implements the [Client] interface against the Spotify Web API.
//
// # Client Interface
//
// The transfer engine talks to both accounts through the same abstraction;
// a [Client] is one authenticated account, source or destination.
//
// # Roles and Scopes
//
// Both accounts authenticate against the same registered Spotify
// application. The [Role] determines the OAuth scopes requested:
// the source needs library and playlist read scopes, the destination
// needs library and playlist modify scopes. See [ScopesFor].
//
// # Spotify Implementation
//
// [SpotifyClient] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Config.Client] HTTP client refreshes expired tokens using the refresh token.
// Requests are paced through a [rate.Limiter]; no retry or backoff is performed —
// a failed call is reported to the caller, which decides what the failure aborts.
//
// # Error Handling
//
// Clients use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrMissingArgument] / [shared.ErrInvalidArgument] : bad call parameters
//
// # API Mappings
//
// Wire types (SpotifyTrack, SpotifySimplePlaylist, ...) are converted to
// neutral models at the client boundary: [SpotifyTrack] → [models.Track]
// (carrying the is_local flag), [SpotifySimplePlaylist] → [models.Playlist].
// Paginated responses become [models.Page] values whose Next field reflects
// the presence of the API's next URL, not the item count.
package services
