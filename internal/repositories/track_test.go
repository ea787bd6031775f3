package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTrackCacheRepository(t *testing.T) {
	t.Run("Put And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		track := &models.CachedTrack{
			CatalogID: "spotify:track:abc123",
			Song:      "Holocene",
			Artist:    "Bon Iver",
		}

		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}

		if track.ID == "" {
			t.Error("expected ID to be generated on put")
		}
		if track.CreatedAt.IsZero() || track.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set on put")
		}

		got, err := repo.Get("Holocene", "Bon Iver")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.CatalogID != "spotify:track:abc123" {
			t.Errorf("expected catalog ID 'spotify:track:abc123', got %s", got.CatalogID)
		}
	})

	t.Run("Get Normalizes Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		track := &models.CachedTrack{CatalogID: "t1", Song: "Holocene", Artist: "Bon Iver"}
		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}

		got, err := repo.Get("  holocene ", "BON  iver")
		if err != nil {
			t.Fatalf("expected normalized lookup to hit, got %v", err)
		}
		if got.CatalogID != "t1" {
			t.Errorf("expected catalog ID 't1', got %s", got.CatalogID)
		}
	})

	t.Run("Get Miss", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)

		_, err := repo.Get("Unknown", "Nobody")
		if err == nil {
			t.Fatal("expected error for cache miss")
		}
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Duplicate Put Ignored", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		first := &models.CachedTrack{CatalogID: "t1", Song: "Holocene", Artist: "Bon Iver"}
		if err := repo.Put(first); err != nil {
			t.Fatalf("failed to put first track: %v", err)
		}

		second := &models.CachedTrack{CatalogID: "t2", Song: "holocene", Artist: "bon iver"}
		if err := repo.Put(second); err != nil {
			t.Fatalf("expected duplicate put to be ignored, got %v", err)
		}

		got, err := repo.Get("Holocene", "Bon Iver")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.CatalogID != "t1" {
			t.Errorf("expected original resolution 't1' to win, got %s", got.CatalogID)
		}
	})

	t.Run("Put Validation", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)

		if err := repo.Put(&models.CachedTrack{Song: "Holocene", Artist: "Bon Iver"}); err == nil {
			t.Error("expected validation error for missing catalog ID")
		}
		if err := repo.Put(&models.CachedTrack{CatalogID: "t1", Artist: "Bon Iver"}); err == nil {
			t.Error("expected validation error for missing song")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		track := &models.CachedTrack{CatalogID: "t1", Song: "Holocene", Artist: "Bon Iver"}
		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}

		if err := repo.Delete("Holocene", "Bon Iver"); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}

		if _, err := repo.Get("Holocene", "Bon Iver"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected miss after delete, got %v", err)
		}

		if err := repo.Delete("Holocene", "Bon Iver"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected not found for repeated delete, got %v", err)
		}
	})

	t.Run("List Insertion Order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		seed := []*models.CachedTrack{
			{CatalogID: "t1", Song: "Holocene", Artist: "Bon Iver"},
			{CatalogID: "t2", Song: "Re: Stacks", Artist: "Bon Iver"},
			{CatalogID: "t3", Song: "Vienna", Artist: "Billy Joel"},
		}
		for _, track := range seed {
			if err := repo.Put(track); err != nil {
				t.Fatalf("failed to put track %s: %v", track.Song, err)
			}
		}

		tracks, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		for i, want := range []string{"t1", "t2", "t3"} {
			if tracks[i].CatalogID != want {
				t.Errorf("position %d: expected %s, got %s", i, want, tracks[i].CatalogID)
			}
		}
	})
}
