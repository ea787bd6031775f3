package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/registry"
	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
	mocks "github.com/desertthunder/flowdj/internal/testing"
)

func newTestRegistry(t *testing.T, activeFlows map[string][]string, inactiveIDs ...string) *registry.FlowRegistry {
	t.Helper()

	marketing := &mocks.MockMarketing{}
	for id := range activeFlows {
		marketing.Flows = append(marketing.Flows, services.FlowInfo{ID: id, Name: "Flow " + id})
	}
	for _, id := range inactiveIDs {
		marketing.Flows = append(marketing.Flows, services.FlowInfo{ID: id, Name: "Flow " + id})
	}

	reg := registry.NewFlowRegistry()
	if err := reg.Populate(context.Background(), marketing); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	for id, keywords := range activeFlows {
		if _, err := reg.Upsert(id, keywords, ""); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}
	return reg
}

func newTestEngine(reg *registry.FlowRegistry, completion *mocks.MockCompletion, catalog *mocks.MockCatalog, marketing *mocks.MockMarketing) *PlaylistEngine {
	return NewPlaylistEngine(EngineOpts{
		Completion:  completion,
		Catalog:     catalog,
		Marketing:   marketing,
		Registry:    reg,
		CatalogUser: "dj",
		SearchRate:  1000,
	})
}

func TestPlaylistEngine_Run(t *testing.T) {
	proposalJSON := `{"playlist_title": "Rainy Focus", "tracks": [` +
		`{"song": "Holocene", "artist": "Bon Iver"}, ` +
		`{"song": "Nonexistent", "artist": "Nobody"}, ` +
		`{"song": "Intro", "artist": "The xx"}]}`

	t.Run("unknown flow is a silent no-op", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteErr: errors.New("should not be called")}
		catalog := &mocks.MockCatalog{CreateErr: errors.New("should not be called")}
		marketing := &mocks.MockMarketing{PostErr: errors.New("should not be called")}
		engine := newTestEngine(newTestRegistry(t, nil), completion, catalog, marketing)

		result, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "ghost", Email: "a@b.co"})
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
		if !result.Skipped {
			t.Error("Run() Skipped = false, want true")
		}
	})

	t.Run("inactive flow is a silent no-op", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteErr: errors.New("should not be called")}
		engine := newTestEngine(
			newTestRegistry(t, nil, "flow1"),
			completion, &mocks.MockCatalog{}, &mocks.MockMarketing{},
		)

		result, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
		if !result.Skipped {
			t.Error("Run() Skipped = false, want true")
		}
	})

	t.Run("full pipeline with partial track resolution", func(t *testing.T) {
		completion := &mocks.MockCompletion{
			CompleteResult:     "A hush of rain over warm lamplight.",
			CompleteJSONResult: []byte(proposalJSON),
		}
		catalog := &mocks.MockCatalog{
			Playlist: &services.PlaylistInfo{ID: "pl9", Name: "Rainy Focus", Description: "A hush of rain over warm lamplight.", URL: "https://open.spotify.com/playlist/pl9"},
			Found: map[string]*services.FoundTrack{
				"Holocene|Bon Iver": {ID: "t1", Title: "Holocene", Artist: "Bon Iver"},
				"Intro|The xx":      {ID: "t3", Title: "Intro", Artist: "The xx"},
			},
		}
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"rain", "focus"}}),
			completion, catalog, marketing,
		)

		result, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "fan@example.com"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Skipped {
			t.Fatal("Run() Skipped = true, want false")
		}
		if result.Mood != "A hush of rain over warm lamplight." {
			t.Errorf("Mood = %q, want completion text verbatim", result.Mood)
		}
		if result.Proposal.Description != result.Mood {
			t.Errorf("Proposal.Description = %q, want mood %q", result.Proposal.Description, result.Mood)
		}
		if len(result.Tracks) != 3 {
			t.Fatalf("len(Tracks) = %d, want 3", len(result.Tracks))
		}
		wantStatuses := []TrackStatus{TrackAdded, TrackNotFound, TrackAdded}
		for i, want := range wantStatuses {
			if result.Tracks[i].Status != want {
				t.Errorf("Tracks[%d].Status = %v, want %v", i, result.Tracks[i].Status, want)
			}
		}
		if result.AddedCount() != 2 {
			t.Errorf("AddedCount() = %d, want 2", result.AddedCount())
		}
		// Track order must follow the proposal; the miss does not shift later adds.
		if len(catalog.AddedTrackIDs) != 2 || catalog.AddedTrackIDs[0] != "t1" || catalog.AddedTrackIDs[1] != "t3" {
			t.Errorf("AddedTrackIDs = %v, want [t1 t3]", catalog.AddedTrackIDs)
		}
		if result.Realized.URL != "https://open.spotify.com/playlist/pl9" {
			t.Errorf("Realized.URL = %q", result.Realized.URL)
		}

		if len(marketing.PostedDocs) != 1 {
			t.Fatalf("len(PostedDocs) = %d, want 1", len(marketing.PostedDocs))
		}
		doc := marketing.PostedDocs[0]
		if got := doc.Data.Attributes.Metric.Data.Attributes.Name; got != MetricPlaylistCreated {
			t.Errorf("metric = %q, want %q", got, MetricPlaylistCreated)
		}
		if got := doc.Data.Attributes.Profile.Data.Attributes.Email; got != "fan@example.com" {
			t.Errorf("profile email = %q", got)
		}
		if got := doc.Data.Attributes.Properties["url"]; got != "https://open.spotify.com/playlist/pl9" {
			t.Errorf("event url property = %v", got)
		}
	})

	t.Run("mood synthesis failure aborts before proposal", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteErr: errors.New("dial tcp: connection refused")}
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"calm"}}),
			completion, &mocks.MockCatalog{}, marketing,
		)

		_, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if err == nil {
			t.Fatal("Run() error = nil, want mood synthesis error")
		}
		if completion.CompleteCalls != 1 {
			t.Errorf("Complete calls = %d, want 1", completion.CompleteCalls)
		}
		if completion.CompleteJSONCalls != 0 {
			t.Errorf("CompleteJSON calls = %d, want 0 after mood failure", completion.CompleteJSONCalls)
		}
		if len(marketing.PostedDocs) != 0 {
			t.Errorf("PostedDocs = %d, want 0 after fatal error", len(marketing.PostedDocs))
		}
	})

	t.Run("invalid proposal JSON is fatal and skips notification", func(t *testing.T) {
		completion := &mocks.MockCompletion{
			CompleteResult:     "some mood",
			CompleteJSONResult: []byte("here is your playlist: ..."),
		}
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"calm"}}),
			completion, &mocks.MockCatalog{}, marketing,
		)

		_, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if err == nil {
			t.Fatal("Run() error = nil, want decode error")
		}
		if len(marketing.PostedDocs) != 0 {
			t.Errorf("PostedDocs = %d, want 0 after fatal error", len(marketing.PostedDocs))
		}
	})

	t.Run("empty proposal is fatal", func(t *testing.T) {
		completion := &mocks.MockCompletion{
			CompleteResult:     "some mood",
			CompleteJSONResult: []byte(`{"playlist_title": "", "tracks": []}`),
		}
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"calm"}}),
			completion, &mocks.MockCatalog{}, marketing,
		)

		_, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Run() error = %v, want ErrInvalidInput", err)
		}
		if len(marketing.PostedDocs) != 0 {
			t.Errorf("PostedDocs = %d, want 0 after fatal error", len(marketing.PostedDocs))
		}
	})

	t.Run("playlist creation failure is fatal", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteResult: "mood", CompleteJSONResult: []byte(proposalJSON)}
		catalog := &mocks.MockCatalog{CreateErr: errors.New("503")}
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"calm"}}),
			completion, catalog, marketing,
		)

		_, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("Run() error = %v, want ErrAPIRequest", err)
		}
		if len(marketing.PostedDocs) != 0 {
			t.Errorf("PostedDocs = %d, want 0", len(marketing.PostedDocs))
		}
	})

	t.Run("notification failure does not fail the run", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteResult: "mood", CompleteJSONResult: []byte(proposalJSON)}
		marketing := &mocks.MockMarketing{PostErr: errors.New("klaviyo down")}
		engine := newTestEngine(
			newTestRegistry(t, map[string][]string{"flow1": {"calm"}}),
			completion, &mocks.MockCatalog{}, marketing,
		)

		result, err := engine.Run(context.Background(), nil, models.WebhookPayload{FlowID: "flow1", Email: "a@b.co"})
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
		if result.Realized == nil {
			t.Error("Realized = nil, want created playlist")
		}
	})
}

func TestPlaylistEngine_BuildPlaylist(t *testing.T) {
	proposal := &models.PlaylistProposal{
		Title:       "Mixed Bag",
		Description: "a mood",
		Tracks: []models.Track{
			{Song: "A", Artist: "One"},
			{Song: "B", Artist: "Two"},
		},
	}

	t.Run("transport error on search marks track failed and continues", func(t *testing.T) {
		catalog := &mocks.MockCatalog{SearchErr: fmt.Errorf("%w: 502", shared.ErrAPIRequest)}
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, catalog, &mocks.MockMarketing{})

		realized, results, err := engine.BuildPlaylist(context.Background(), nil, proposal)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		if realized == nil {
			t.Fatal("realized = nil")
		}
		for i, r := range results {
			if r.Status != TrackFailed {
				t.Errorf("results[%d].Status = %v, want TrackFailed", i, r.Status)
			}
			if r.Error == nil {
				t.Errorf("results[%d].Error = nil", i)
			}
		}
	})

	t.Run("add failure marks track failed", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			Found:  map[string]*services.FoundTrack{"A|One": {ID: "t1"}, "B|Two": {ID: "t2"}},
			AddErr: errors.New("insert failed"),
		}
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, catalog, &mocks.MockMarketing{})

		_, results, err := engine.BuildPlaylist(context.Background(), nil, proposal)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		for i, r := range results {
			if r.Status != TrackFailed {
				t.Errorf("results[%d].Status = %v, want TrackFailed", i, r.Status)
			}
		}
	})

	t.Run("progress updates never block", func(t *testing.T) {
		catalog := &mocks.MockCatalog{Found: map[string]*services.FoundTrack{"A|One": {ID: "t1"}, "B|Two": {ID: "t2"}}}
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, catalog, &mocks.MockMarketing{})

		progress := make(chan ProgressUpdate) // unbuffered, no reader
		if _, _, err := engine.BuildPlaylist(context.Background(), progress, proposal); err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
	})
}

type recordingCache struct {
	entries map[string]*models.CachedTrack
	puts    int
	gets    int
}

func (c *recordingCache) Get(song, artist string) (*models.CachedTrack, error) {
	c.gets++
	if t, ok := c.entries[song+"|"+artist]; ok {
		return t, nil
	}
	return nil, shared.ErrTrackNotFound
}

func (c *recordingCache) Put(track *models.CachedTrack) error {
	c.puts++
	c.entries[track.Song+"|"+track.Artist] = track
	return nil
}

func TestPlaylistEngine_TrackCache(t *testing.T) {
	proposal := &models.PlaylistProposal{
		Title:  "Cached",
		Tracks: []models.Track{{Song: "Holocene", Artist: "Bon Iver"}},
	}

	t.Run("cache hit skips catalog search", func(t *testing.T) {
		cache := &recordingCache{entries: map[string]*models.CachedTrack{
			"Holocene|Bon Iver": {CatalogID: "t1", Song: "Holocene", Artist: "Bon Iver"},
		}}
		catalog := &mocks.MockCatalog{SearchErr: errors.New("search should not be called")}
		engine := NewPlaylistEngine(EngineOpts{
			Catalog: catalog, Cache: cache, CatalogUser: "dj", SearchRate: 1000,
			Completion: &mocks.MockCompletion{}, Marketing: &mocks.MockMarketing{}, Registry: registry.NewFlowRegistry(),
		})

		_, results, err := engine.BuildPlaylist(context.Background(), nil, proposal)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		if results[0].Status != TrackAdded || !results[0].Cached {
			t.Errorf("result = %+v, want cached add", results[0])
		}
	})

	t.Run("cache miss searches then stores", func(t *testing.T) {
		cache := &recordingCache{entries: map[string]*models.CachedTrack{}}
		catalog := &mocks.MockCatalog{Found: map[string]*services.FoundTrack{
			"Holocene|Bon Iver": {ID: "t1", Title: "Holocene", Artist: "Bon Iver"},
		}}
		engine := NewPlaylistEngine(EngineOpts{
			Catalog: catalog, Cache: cache, CatalogUser: "dj", SearchRate: 1000,
			Completion: &mocks.MockCompletion{}, Marketing: &mocks.MockMarketing{}, Registry: registry.NewFlowRegistry(),
		})

		_, results, err := engine.BuildPlaylist(context.Background(), nil, proposal)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		if results[0].Status != TrackAdded || results[0].Cached {
			t.Errorf("result = %+v, want uncached add", results[0])
		}
		if cache.puts != 1 {
			t.Errorf("cache puts = %d, want 1", cache.puts)
		}
	})
}

func TestPlaylistEngine_SynthesizeMood(t *testing.T) {
	t.Run("returns completion text verbatim", func(t *testing.T) {
		completion := &mocks.MockCompletion{CompleteResult: "  Glittering dusk.  "}
		engine := newTestEngine(registry.NewFlowRegistry(), completion, &mocks.MockCatalog{}, &mocks.MockMarketing{})

		mood, err := engine.SynthesizeMood(context.Background(), []string{"dusk"})
		if err != nil {
			t.Fatalf("SynthesizeMood() error = %v", err)
		}
		if mood != "  Glittering dusk.  " {
			t.Errorf("mood = %q, want untouched completion text", mood)
		}
	})

	t.Run("empty keywords rejected", func(t *testing.T) {
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, &mocks.MockCatalog{}, &mocks.MockMarketing{})
		if _, err := engine.SynthesizeMood(context.Background(), nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestPlaylistEngine_Notify(t *testing.T) {
	t.Run("order placed fires fixed test payload", func(t *testing.T) {
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, &mocks.MockCatalog{}, marketing)

		if err := engine.NotifyOrderPlaced(context.Background(), "a@b.co"); err != nil {
			t.Fatalf("NotifyOrderPlaced() error = %v", err)
		}
		doc := marketing.PostedDocs[0]
		if got := doc.Data.Attributes.Metric.Data.Attributes.Name; got != MetricOrderPlaced {
			t.Errorf("metric = %q, want %q", got, MetricOrderPlaced)
		}
		if doc.Data.Attributes.Properties["Category"] != "Annual" {
			t.Errorf("properties = %v", doc.Data.Attributes.Properties)
		}
	})

	t.Run("playlist created carries realized fields", func(t *testing.T) {
		marketing := &mocks.MockMarketing{}
		engine := newTestEngine(registry.NewFlowRegistry(), &mocks.MockCompletion{}, &mocks.MockCatalog{}, marketing)

		realized := &models.RealizedPlaylist{Title: "T", Description: "D", URL: "U"}
		if err := engine.NotifyPlaylistCreated(context.Background(), realized, "a@b.co"); err != nil {
			t.Fatalf("NotifyPlaylistCreated() error = %v", err)
		}
		props := marketing.PostedDocs[0].Data.Attributes.Properties
		if props["title"] != "T" || props["url"] != "U" || props["description"] != "D" {
			t.Errorf("properties = %v", props)
		}
	})
}
