// Package server provides HTTP routing, middleware, webhook ingestion, and
// OAuth handling.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Webhook Handler
//
// [WebhookHandler] ingests marketing-automation webhooks. The caller is
// acknowledged with 202 Accepted immediately; the playlist pipeline runs in a
// detached goroutine whose outcome is routed to the logger, never to the
// webhook response. [WebhookHandler.Wait] blocks until in-flight runs drain,
// which keeps shutdown and tests deterministic.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
// When the user runs authentication commands, a temporary HTTP server starts on localhost,
// handles the callback, and shuts down after receiving the OAuth token.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
