// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
)

// MockCompletion is a test double for [services.CompletionService]
type MockCompletion struct {
	CompleteResult     string
	CompleteErr        error
	CompleteCalls      int
	CompleteJSONResult []byte
	CompleteJSONErr    error
	CompleteJSONCalls  int
}

func (m *MockCompletion) Complete(ctx context.Context, system, user string) (string, error) {
	m.CompleteCalls++
	return m.CompleteResult, m.CompleteErr
}

func (m *MockCompletion) CompleteJSON(ctx context.Context, system, primer, user string) ([]byte, error) {
	m.CompleteJSONCalls++
	return m.CompleteJSONResult, m.CompleteJSONErr
}

func (m *MockCompletion) Name() string { return "mock_completion" }

// MockCatalog is a test double for [services.CatalogService]
type MockCatalog struct {
	Playlist      *services.PlaylistInfo
	CreateErr     error
	Found         map[string]*services.FoundTrack // keyed by title|artist
	SearchErr     error
	AddErr        error
	AddedTrackIDs []string
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, user, title, description string) (*services.PlaylistInfo, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &services.PlaylistInfo{ID: "pl1", Name: title, Description: description, URL: "https://example.com/pl1"}, nil
}

func (m *MockCatalog) SearchTrack(ctx context.Context, title, artist string) (*services.FoundTrack, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if track, ok := m.Found[title+"|"+artist]; ok {
		return track, nil
	}
	return nil, shared.ErrTrackNotFound
}

func (m *MockCatalog) AddTracks(ctx context.Context, user, playlistID string, trackIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedTrackIDs = append(m.AddedTrackIDs, trackIDs...)
	return nil
}

func (m *MockCatalog) Name() string { return "mock_catalog" }

// MockMarketing is a test double for [services.MarketingService]
type MockMarketing struct {
	Flows      []services.FlowInfo
	ListErr    error
	PostErr    error
	PostedDocs []models.EventDocument
}

func (m *MockMarketing) ListFlows(ctx context.Context) ([]services.FlowInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Flows, nil
}

func (m *MockMarketing) PostEvent(ctx context.Context, doc models.EventDocument) error {
	if m.PostErr != nil {
		return m.PostErr
	}
	m.PostedDocs = append(m.PostedDocs, doc)
	return nil
}

func (m *MockMarketing) Name() string { return "mock_marketing" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
