// Package server provides HTTP routing, middleware, and the OAuth callback
// handler shared by the CLI auth flow and the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method
// filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow for
// the CLI: `showprep auth` starts a temporary HTTP server on the configured
// redirect address, opens the authorization URL in the browser, handles the
// callback, and shuts the server down after receiving the token.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel. It
// only processes one callback to prevent replay attacks.
//
// # Web Interface
//
// The web package (internal/web) builds on this router to serve the browser
// flow: a form page, the OAuth redirect endpoint, and the prep-run result
// page.
package server
