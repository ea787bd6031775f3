// Package services defines the client interfaces for the three external
// collaborators of the playlist pipeline and implements them for OpenAI,
// Spotify, and Klaviyo.
//
// # Interfaces
//
//   - [CompletionService] : text and JSON-mode chat completions
//   - [CatalogService] : playlist creation, track search, and track insertion
//   - [MarketingService] : flow listing and client-event ingestion
//
// Each pipeline step depends on one interface only, so tests substitute
// doubles without touching HTTP.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh. The [OAuthService] interface extends [CatalogService] for the
// server-side authorization-code flow used by the CLI.
//
// # OpenAI Implementation
//
// [OpenAIService] calls the chat completions endpoint with bearer auth.
// [OpenAIService.CompleteJSON] constrains the response format to json_object
// and primes the conversation with a worked example of valid output.
//
// # Klaviyo Implementation
//
// [KlaviyoService] lists flows via the authenticated API and posts client
// events to the public event-ingestion endpoint. Event responses are only
// checked at the transport level; the body is never inspected.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrTrackNotFound] : catalog search returned no results
package services
