// Package server provides HTTP routing, middleware, OAuth handling, and the
// web interface for driving transfers from a browser.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow for
// the CLI login path. A temporary HTTP server starts on the configured
// redirect address, handles exactly one callback, and shuts down after
// delivering the token through a channel.
//
// # Web Application
//
// [App] serves the browser interface: an index page showing connection
// status for both account roles and the source account's playlists as a
// selection form, per-role login and logout, and an SSE endpoint streaming
// transfer progress line by line until the terminal DONE marker.
package server
