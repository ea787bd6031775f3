// package services defines interfaces for interacting with HTTP APIs
//
// OpenAI, Spotify, Klaviyo
package services

import (
	"context"

	"github.com/desertthunder/flowdj/internal/models"
	"golang.org/x/oauth2"
)

// CompletionService defines the interface for text-completion providers.
type CompletionService interface {
	// Complete sends a system instruction and user content to the
	// completion endpoint and returns the completion text verbatim.
	Complete(ctx context.Context, system, user string) (string, error)

	// CompleteJSON requests a JSON-constrained completion. The primer is an
	// assistant message carrying a worked example of valid output. Returns
	// the raw completion body for the caller to decode.
	CompleteJSON(ctx context.Context, system, primer, user string) ([]byte, error)

	// Name returns the provider name (e.g., "OpenAI")
	Name() string
}

// CatalogService defines the interface for streaming-catalog providers that
// can create playlists and resolve tracks.
type CatalogService interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CreatePlaylist creates an empty playlist under the given user and
	// returns the service-assigned playlist metadata.
	CreatePlaylist(ctx context.Context, user, title, description string) (*PlaylistInfo, error)

	// SearchTrack searches for the single best match for a song/artist pair.
	// Returns [shared.ErrTrackNotFound] when the catalog has no match.
	SearchTrack(ctx context.Context, title, artist string) (*FoundTrack, error)

	// AddTracks appends tracks to a playlist by their catalog IDs, in order.
	AddTracks(ctx context.Context, user, playlistID string, trackIDs []string) error

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// OAuthService extends [CatalogService] for providers using server-side
// OAuth2 authorization-code flows.
type OAuthService interface {
	CatalogService

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for callback handling.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a previously obtained token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers a callback invoked whenever the
	// token source transparently refreshes the access token.
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}

// MarketingService defines the interface for the marketing-automation
// provider that owns flows and ingests events.
type MarketingService interface {
	// ListFlows retrieves all flow definitions.
	ListFlows(ctx context.Context) ([]FlowInfo, error)

	// PostEvent posts a client event document. Only transport-level failures
	// are reported; the response body is not inspected.
	PostEvent(ctx context.Context, doc models.EventDocument) error

	// Name returns the provider name (e.g., "Klaviyo")
	Name() string
}

// FlowInfo is a flow definition as listed by the marketing service.
type FlowInfo struct {
	ID   string
	Name string
}

// PlaylistInfo is the realized playlist metadata from a creation response.
type PlaylistInfo struct {
	ID          string
	Name        string
	Description string
	URL         string
}

// FoundTrack is the best catalog match for a proposed track.
type FoundTrack struct {
	ID     string
	Title  string
	Artist string
}
