package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/registry"
	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
	"golang.org/x/time/rate"
)

// Fixed metric names the marketing service routes automations by.
const (
	MetricOrderPlaced     = "Placed Order"
	MetricPlaylistCreated = "Playlist Created"
)

const moodSystemPrompt = `You are a poetic assistant, skilled in writing concise yet emotional prose. ` +
	`Your role is to write a single sentence. ` +
	`You will have a set of keywords to create your concise, descriptive sentence. ` +
	`Based on the keywords, describe a mood. Do not use the word mood or genre. ` +
	`The description will be used to describe a music playlist for someone you care about.`

const playlistSystemPrompt = `You are a helpful assistant designed to output perfectly formatted JSON. ` +
	`Your role is to return a list of song names and song artists, as well as a playlist title. ` +
	`You will have a description to create your list. Based on the description, create a list of songs. ` +
	`Do not use the word song or artist. ` +
	`The list will be used for a music playlist to someone you care about. ` +
	`Do not use a list you have already used. ` +
	`There should be a key for the playlist_title and tracks. ` +
	`Tracks should be a list of song titles and artist.`

const playlistPrimer = `Are you sure that it is valid? Make sure there is a key for playlist_title and tracks. ` +
	`tracks is a list of song and artist. It should look like this: ` +
	`{"playlist_title": "My Playlist", "tracks": [{"song": "Song Name", "artist": "Artist Name"}, {"song": "Song Name", "artist": "Artist Name"}]}`

// TrackStatus classifies the outcome of resolving one proposed track.
type TrackStatus int

const (
	TrackAdded    TrackStatus = iota // Resolved and added to the playlist
	TrackNotFound                    // Catalog has no match; skipped
	TrackFailed                      // Search or insertion failed; skipped
)

func (s TrackStatus) String() string {
	switch s {
	case TrackAdded:
		return "added"
	case TrackNotFound:
		return "not_found"
	case TrackFailed:
		return "failed"
	default:
		return ""
	}
}

// TrackResult represents the outcome of resolving a single proposed track.
type TrackResult struct {
	Proposed models.Track         // Original track from the proposal
	Matched  *services.FoundTrack // Catalog match (nil unless added)
	Status   TrackStatus          // Resolution outcome
	Cached   bool                 // Match came from the track cache
	Error    error                // Error for TrackFailed outcomes
}

// PipelineResult contains all data from a single pipeline run.
type PipelineResult struct {
	RunID    string                   // Unique run identifier for log correlation
	Flow     models.Flow              // Flow that gated the run
	Skipped  bool                     // Flow was unknown or inactive; nothing ran
	Mood     string                   // Synthesized mood description
	Proposal *models.PlaylistProposal // Completion-proposed playlist
	Realized *models.RealizedPlaylist // Playlist as created on the catalog
	Tracks   []TrackResult            // Per-track resolution outcomes
}

// AddedCount returns the number of tracks that made it onto the playlist.
func (r *PipelineResult) AddedCount() int {
	count := 0
	for _, t := range r.Tracks {
		if t.Status == TrackAdded {
			count++
		}
	}
	return count
}

// TrackCacher caches resolved catalog tracks keyed by song/artist.
//
// This abstraction allows for easier testing and decoupling from the
// concrete sqlite implementation.
type TrackCacher interface {
	Get(song, artist string) (*models.CachedTrack, error)
	Put(track *models.CachedTrack) error
}

// Engine defines the webhook-to-playlist pipeline operations.
type Engine interface {
	// SynthesizeMood turns a keyword list into a one-sentence mood description.
	SynthesizeMood(ctx context.Context, keywords []string) (string, error)

	// SynthesizeProposal turns a mood description into a structured playlist proposal.
	SynthesizeProposal(ctx context.Context, description string) (*models.PlaylistProposal, error)

	// BuildPlaylist realizes a proposal on the streaming catalog.
	BuildPlaylist(ctx context.Context, progress chan<- ProgressUpdate, proposal *models.PlaylistProposal) (*models.RealizedPlaylist, []TrackResult, error)

	// Run executes the full pipeline for one webhook payload.
	Run(ctx context.Context, progress chan<- ProgressUpdate, payload models.WebhookPayload) (*PipelineResult, error)
}

// PlaylistEngine implements [Engine].
// Contains dependencies on the completion, catalog, and marketing services,
// the flow registry, and the optional track cache.
type PlaylistEngine struct {
	completion  services.CompletionService
	catalog     services.CatalogService
	marketing   services.MarketingService
	registry    *registry.FlowRegistry
	cache       TrackCacher
	catalogUser string
	limiter     *rate.Limiter
	logger      *log.Logger
}

// EngineOpts contains dependencies for creating a [PlaylistEngine].
type EngineOpts struct {
	Completion  services.CompletionService
	Catalog     services.CatalogService
	Marketing   services.MarketingService
	Registry    *registry.FlowRegistry
	Cache       TrackCacher // Optional; nil disables caching
	CatalogUser string      // Catalog user playlists are created under
	SearchRate  float64     // Catalog searches per second (default 5)
	Logger      *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	if opts.SearchRate <= 0 {
		opts.SearchRate = 5.0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &PlaylistEngine{
		completion:  opts.Completion,
		catalog:     opts.Catalog,
		marketing:   opts.Marketing,
		registry:    opts.Registry,
		cache:       opts.Cache,
		catalogUser: opts.CatalogUser,
		limiter:     rate.NewLimiter(rate.Limit(opts.SearchRate), 1),
		logger:      opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// SynthesizeMood turns a keyword list into a one-sentence mood description.
//
// The completion text is returned verbatim; no retry, no shape validation.
func (e *PlaylistEngine) SynthesizeMood(ctx context.Context, keywords []string) (string, error) {
	if e.completion == nil {
		return "", fmt.Errorf("%w: completion service not initialized", shared.ErrServiceUnavailable)
	}
	if len(keywords) == 0 {
		return "", fmt.Errorf("%w: no keywords provided", shared.ErrInvalidArgument)
	}

	mood, err := e.completion.Complete(ctx, moodSystemPrompt, strings.Join(keywords, ", "))
	if err != nil {
		return "", fmt.Errorf("%w: mood synthesis failed: %v", shared.ErrAPIRequest, err)
	}

	return mood, nil
}

// SynthesizeProposal turns a mood description into a structured playlist
// proposal.
//
// The completion body is decoded as JSON; invalid JSON is fatal to the run.
// The proposal's description is set to the input description verbatim.
func (e *PlaylistEngine) SynthesizeProposal(ctx context.Context, description string) (*models.PlaylistProposal, error) {
	if e.completion == nil {
		return nil, fmt.Errorf("%w: completion service not initialized", shared.ErrServiceUnavailable)
	}

	data, err := e.completion.CompleteJSON(ctx, playlistSystemPrompt, playlistPrimer, description)
	if err != nil {
		return nil, fmt.Errorf("%w: proposal synthesis failed: %v", shared.ErrAPIRequest, err)
	}

	var proposal models.PlaylistProposal
	if err := json.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("failed to decode proposal: %w", err)
	}
	if err := proposal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	proposal.Description = description
	return &proposal, nil
}

// BuildPlaylist realizes a proposal on the streaming catalog.
//
// Creates an empty playlist (fatal on failure), then resolves and adds each
// track sequentially in proposal order. Misses and per-track transport
// errors are recorded in the result slice and skipped, so one bad track
// never aborts an otherwise successful playlist.
func (e *PlaylistEngine) BuildPlaylist(ctx context.Context, progress chan<- ProgressUpdate, proposal *models.PlaylistProposal) (*models.RealizedPlaylist, []TrackResult, error) {
	if e.catalog == nil {
		return nil, nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 1, proposal.Title))

	created, err := e.catalog.CreatePlaylist(ctx, e.catalogUser, proposal.Title, proposal.Description)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}

	total := len(proposal.Tracks)
	results := make([]TrackResult, total)

	for i, track := range proposal.Tracks {
		e.sendProgress(progress, resolveTrackUpdate(i+1, total, track))
		results[i] = e.resolveTrack(ctx, created.ID, track)

		switch results[i].Status {
		case TrackAdded:
			e.logger.Info("track added", "song", track.Song, "artist", track.Artist, "cached", results[i].Cached)
		case TrackNotFound:
			e.logger.Warn("no catalog match for track", "song", track.Song, "artist", track.Artist)
		case TrackFailed:
			e.logger.Error("track resolution failed", "song", track.Song, "artist", track.Artist, "error", results[i].Error)
		}
	}

	realized := &models.RealizedPlaylist{
		Title:       created.Name,
		Description: created.Description,
		URL:         created.URL,
	}

	return realized, results, nil
}

// resolveTrack finds the catalog ID for one proposed track and adds it to
// the playlist. The cache is consulted before the catalog search; cache
// errors are ignored.
func (e *PlaylistEngine) resolveTrack(ctx context.Context, playlistID string, track models.Track) TrackResult {
	result := TrackResult{Proposed: track}

	var catalogID string

	if e.cache != nil {
		if cached, err := e.cache.Get(track.Song, track.Artist); err == nil {
			catalogID = cached.CatalogID
			result.Cached = true
			result.Matched = &services.FoundTrack{ID: cached.CatalogID, Title: cached.Song, Artist: cached.Artist}
		}
	}

	if catalogID == "" {
		if err := e.limiter.Wait(ctx); err != nil {
			result.Status = TrackFailed
			result.Error = err
			return result
		}

		found, err := e.catalog.SearchTrack(ctx, track.Song, track.Artist)
		if errors.Is(err, shared.ErrTrackNotFound) {
			result.Status = TrackNotFound
			return result
		}
		if err != nil {
			result.Status = TrackFailed
			result.Error = err
			return result
		}

		catalogID = found.ID
		result.Matched = found

		if e.cache != nil {
			if err := e.cache.Put(&models.CachedTrack{CatalogID: found.ID, Song: track.Song, Artist: track.Artist}); err != nil {
				e.logger.Debug("failed to cache track resolution", "error", err)
			}
		}
	}

	if err := e.catalog.AddTracks(ctx, e.catalogUser, playlistID, []string{catalogID}); err != nil {
		result.Status = TrackFailed
		result.Error = err
		return result
	}

	result.Status = TrackAdded
	return result
}

// NotifyOrderPlaced fires a test "Placed Order" event for the given email.
func (e *PlaylistEngine) NotifyOrderPlaced(ctx context.Context, email string) error {
	if e.marketing == nil {
		return fmt.Errorf("%w: marketing service not initialized", shared.ErrServiceUnavailable)
	}

	doc := models.NewEvent(MetricOrderPlaced, email, map[string]any{
		"Type":     "Election",
		"amount":   500.00,
		"Category": "Annual",
	})

	return e.marketing.PostEvent(ctx, doc)
}

// NotifyPlaylistCreated fires a "Playlist Created" event carrying the
// realized playlist so the downstream automation can send the email.
func (e *PlaylistEngine) NotifyPlaylistCreated(ctx context.Context, realized *models.RealizedPlaylist, email string) error {
	if e.marketing == nil {
		return fmt.Errorf("%w: marketing service not initialized", shared.ErrServiceUnavailable)
	}

	doc := models.NewEvent(MetricPlaylistCreated, email, map[string]any{
		"title":       realized.Title,
		"url":         realized.URL,
		"description": realized.Description,
	})

	return e.marketing.PostEvent(ctx, doc)
}

// Run executes the full pipeline for one webhook payload.
//
// Unknown or inactive flows terminate the run silently: Skipped is set and
// no external call is made. Fatal errors from synthesis or playlist
// creation abort the run; notification transport errors are logged only.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, payload models.WebhookPayload) (*PipelineResult, error) {
	result := &PipelineResult{RunID: shared.GenerateID()}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID, "flow_id", payload.FlowID)

	e.sendProgress(progress, lookupFlowUpdate(payload.FlowID))

	flow, err := e.registry.Get(payload.FlowID)
	if err != nil || !flow.Runnable() {
		logger.Info("flow unknown or inactive, skipping run")
		result.Skipped = true
		return result, nil
	}
	result.Flow = flow

	if err := payload.Validate(); err != nil {
		return result, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	e.sendProgress(progress, synthesizeMoodUpdate(flow.Keywords))
	mood, err := e.SynthesizeMood(ctx, flow.Keywords)
	if err != nil {
		return result, err
	}
	result.Mood = mood
	logger.Info("mood synthesized", "mood", mood)

	e.sendProgress(progress, synthesizeProposalUpdate(mood))
	proposal, err := e.SynthesizeProposal(ctx, mood)
	if err != nil {
		return result, err
	}
	result.Proposal = proposal
	logger.Info("proposal synthesized", "title", proposal.Title, "tracks", len(proposal.Tracks))

	realized, tracks, err := e.BuildPlaylist(ctx, progress, proposal)
	if err != nil {
		return result, err
	}
	result.Realized = realized
	result.Tracks = tracks
	logger.Info("playlist created", "title", realized.Title, "url", realized.URL, "added", result.AddedCount(), "proposed", len(tracks))

	e.sendProgress(progress, notifyUpdate(payload.Email))
	if err := e.NotifyPlaylistCreated(ctx, realized, payload.Email); err != nil {
		// The playlist already exists; a failed notification is logged, not rolled back.
		logger.Error("playlist-created notification failed", "email", payload.Email, "error", err)
	} else {
		logger.Info("flow triggered to send personalised email", "email", payload.Email)
	}

	return result, nil
}
