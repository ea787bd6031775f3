package models

import (
	"fmt"
	"time"
)

// Flow represents a marketing-automation trigger that can be annotated with
// keywords and activated for playlist generation.
//
// Flows are created in bulk at registry initialization with Active=false and
// empty keywords. An admin insert activates the flow; a delete clears the
// keywords and deactivates it again.
type Flow struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Keywords          []string `json:"keywords"`
	SamplePlaylistURL string   `json:"sample_playlist_url"`
	Active            bool     `json:"active"`
}

// Runnable reports whether the flow can drive a pipeline run.
//
// A flow must be active and carry at least one keyword.
func (f Flow) Runnable() bool {
	return f.Active && len(f.Keywords) > 0
}

// Track represents a song/artist pair proposed by the completion service.
type Track struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

// PlaylistProposal is the structured playlist suggestion returned by the
// completion service, before any catalog resolution.
//
// Description is not part of the completion output; it is set to the mood
// sentence that produced the proposal.
type PlaylistProposal struct {
	Title       string  `json:"playlist_title"`
	Tracks      []Track `json:"tracks"`
	Description string  `json:"description"`
}

// Validate checks that the proposal carries a title and at least one track.
func (p *PlaylistProposal) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("proposal missing playlist_title")
	}
	if len(p.Tracks) == 0 {
		return fmt.Errorf("proposal has no tracks")
	}
	return nil
}

// RealizedPlaylist is the playlist as created on the streaming catalog.
//
// The values come from the creation response, not a fresh fetch.
type RealizedPlaylist struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// WebhookPayload is the inbound marketing-automation webhook body.
//
// Extra fields in the payload are ignored.
type WebhookPayload struct {
	FlowID string `json:"flow_id"`
	Email  string `json:"email"`
}

// Validate checks the payload carries the fields the pipeline needs.
func (p WebhookPayload) Validate() error {
	if p.FlowID == "" {
		return fmt.Errorf("webhook payload missing flow_id")
	}
	if p.Email == "" {
		return fmt.Errorf("webhook payload missing email")
	}
	return nil
}

// EventDocument is the fixed envelope the marketing service expects for
// client events. The metric name selects which downstream automation fires.
type EventDocument struct {
	Data EventData `json:"data"`
}

// EventData is the body of an [EventDocument].
type EventData struct {
	Type       string          `json:"type"`
	Attributes EventAttributes `json:"attributes"`
}

// EventAttributes carries the event-specific properties plus the metric and
// profile selectors.
type EventAttributes struct {
	Properties map[string]any `json:"properties"`
	Metric     MetricRef      `json:"metric"`
	Profile    ProfileRef     `json:"profile"`
}

// MetricRef names the metric an event reports against.
type MetricRef struct {
	Data MetricData `json:"data"`
}

// MetricData is the inner metric document.
type MetricData struct {
	Type       string           `json:"type"`
	Attributes MetricAttributes `json:"attributes"`
}

// MetricAttributes holds the fixed metric name.
type MetricAttributes struct {
	Name string `json:"name"`
}

// ProfileRef identifies the recipient profile by email.
type ProfileRef struct {
	Data ProfileData `json:"data"`
}

// ProfileData is the inner profile document.
type ProfileData struct {
	Type       string            `json:"type"`
	Attributes ProfileAttributes `json:"attributes"`
}

// ProfileAttributes holds the profile email.
type ProfileAttributes struct {
	Email string `json:"email"`
}

// NewEvent builds an [EventDocument] for the given metric name, recipient
// email, and event-specific properties.
func NewEvent(metric, email string, properties map[string]any) EventDocument {
	return EventDocument{
		Data: EventData{
			Type: "event",
			Attributes: EventAttributes{
				Properties: properties,
				Metric: MetricRef{
					Data: MetricData{
						Type:       "metric",
						Attributes: MetricAttributes{Name: metric},
					},
				},
				Profile: ProfileRef{
					Data: ProfileData{
						Type:       "profile",
						Attributes: ProfileAttributes{Email: email},
					},
				},
			},
		},
	}
}

// CachedTrack is a resolved catalog track persisted by the track cache so
// repeated proposals skip the catalog search.
type CachedTrack struct {
	ID        string    // Internal cache row ID
	CatalogID string    // Catalog track ID used for playlist insertion
	Song      string    // Proposed song title
	Artist    string    // Proposed artist
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the cached track carries the fields required for reuse.
func (t *CachedTrack) Validate() error {
	if t.CatalogID == "" {
		return fmt.Errorf("cached track missing catalog ID")
	}
	if t.Song == "" || t.Artist == "" {
		return fmt.Errorf("cached track missing song or artist")
	}
	return nil
}
