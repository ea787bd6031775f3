package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/tasks"
	tu "github.com/desertthunder/flowdj/internal/testing"
)

func sampleProposal() *models.PlaylistProposal {
	return &models.PlaylistProposal{
		Title:       "Rainy Focus",
		Description: "A hush of rain over warm lamplight.",
		Tracks: []models.Track{
			{Song: "Holocene", Artist: "Bon Iver"},
			{Song: "Intro", Artist: "The xx"},
		},
	}
}

func TestProposalToText(t *testing.T) {
	text := string(ProposalToText(sampleProposal()))

	for _, want := range []string{"Playlist: Rainy Focus", "Tracks: 2", "1. Bon Iver - Holocene", "2. The xx - Intro"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
}

func TestProposalToMarkdown(t *testing.T) {
	t.Run("includes heading and description", func(t *testing.T) {
		md := string(ProposalToMarkdown(sampleProposal()))

		if !strings.HasPrefix(md, "# Rainy Focus") {
			t.Errorf("markdown does not start with heading:\n%s", md)
		}
		if !strings.Contains(md, "**Description**: A hush of rain over warm lamplight.") {
			t.Errorf("markdown missing description:\n%s", md)
		}
	})

	t.Run("omits empty description", func(t *testing.T) {
		proposal := sampleProposal()
		proposal.Description = ""
		md := string(ProposalToMarkdown(proposal))
		if strings.Contains(md, "**Description**") {
			t.Errorf("markdown should omit empty description:\n%s", md)
		}
	})
}

func TestResultsToText(t *testing.T) {
	realized := &models.RealizedPlaylist{Title: "Rainy Focus", URL: "https://open.spotify.com/playlist/pl9"}
	results := []tasks.TrackResult{
		{Proposed: models.Track{Song: "Holocene", Artist: "Bon Iver"}, Status: tasks.TrackAdded},
		{Proposed: models.Track{Song: "Ghost", Artist: "Nobody"}, Status: tasks.TrackNotFound},
		{Proposed: models.Track{Song: "Intro", Artist: "The xx"}, Status: tasks.TrackFailed, Error: errors.New("502")},
	}

	text := string(ResultsToText(realized, results))

	for _, want := range []string{"Added: 1/3", "✓ Bon Iver - Holocene", "? Nobody - Ghost", "✗ The xx - Intro (502)"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
}

func TestWriteProposalMarkdown(t *testing.T) {
	t.Run("writes to given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "proposal.md")
		written, err := WriteProposalMarkdown(sampleProposal(), path)
		if err != nil {
			t.Fatalf("WriteProposalMarkdown() error = %v", err)
		}
		if written != path {
			t.Errorf("path = %s, want %s", written, path)
		}
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "# Rainy Focus") {
			t.Errorf("file content = %s", content)
		}
	})

	t.Run("fails on unwritable path", func(t *testing.T) {
		if _, err := WriteProposalMarkdown(sampleProposal(), filepath.Join(t.TempDir(), "missing", "x.md")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
