// Spotify API implementation of [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/flowdj/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL        = "https://accounts.spotify.com/authorize"
	spotifyTokenURL       = "https://accounts.spotify.com/api/token"
	defaultSpotifyBaseURL = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when credentials omit redirect_uri.
	DefaultRedirectURI = "http://localhost:3000/callback"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Public       bool           `json:"public"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Images       []SpotifyImage `json:"images"`
	URI          string         `json:"uri"`
}

// SpotifySearchResult represents the track portion of a search response.
type SpotifySearchResult struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyService implements [CatalogService] for Spotify API interactions.
// Uses [oauth2] for authentication and provides playlist creation, track
// search, and track insertion.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	baseURL        string
	httpClient     *http.Client
	credentials    map[string]string
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	baseURL, ok := credentials["base_url"]
	if !ok || baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
		credentials: credentials,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for callback handling.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a callback invoked whenever the
// underlying token source produces a new access token, so callers can
// persist refreshed tokens.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok {
			token.RefreshToken = refresh
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate authenticates with a previously obtained [oauth2.Token].
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A non-nil body is marshaled as JSON.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: spotify returned 401", shared.ErrTokenExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CreatePlaylist creates an empty public playlist under the given user.
//
// The returned metadata comes from the creation response.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, user, title, description string) (*PlaylistInfo, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{
		Name:        title,
		Description: description,
		Public:      true,
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &PlaylistInfo{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs.Spotify,
	}, nil
}

// SearchTrack searches for the single best match for a song/artist pair.
//
// Uses a structured query (artist: and track: field filters) with limit=1 to
// minimize mismatches on loosely specified titles.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*FoundTrack, error) {
	query := fmt.Sprintf("artist:%s track:%s", artist, title)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var result SpotifySearchResult
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}

	if len(result.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: '%s' by '%s'", shared.ErrTrackNotFound, title, artist)
	}

	item := result.Tracks.Items[0]
	track := &FoundTrack{
		ID:    item.ID,
		Title: item.Name,
	}

	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}

	return track, nil
}

// AddTracks appends tracks to a playlist by catalog ID, preserving order.
func (s *SpotifyService) AddTracks(ctx context.Context, user, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	body := struct {
		URIs []string `json:"uris"`
	}{URIs: uris}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and invokes a callback
// whenever the access token changes, so refreshed tokens can be persisted.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	if changed {
		r.last = token.AccessToken
	}
	r.mu.Unlock()

	if changed && r.callback != nil {
		func() {
			defer func() { _ = recover() }()
			r.callback(token)
		}()
	}

	return token, nil
}
