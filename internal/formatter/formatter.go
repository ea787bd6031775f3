// package formatter renders playlist proposals and pipeline results to text and Markdown
package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/desertthunder/flowdj/internal/tasks"
)

// ProposalToText converts a playlist proposal to plain text format
func ProposalToText(proposal *models.PlaylistProposal) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", proposal.Title))
	if proposal.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", proposal.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(proposal.Tracks)))

	for i, track := range proposal.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Song))
	}

	return buf.Bytes()
}

// ProposalToMarkdown converts a playlist proposal to Markdown format
func ProposalToMarkdown(proposal *models.PlaylistProposal) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", proposal.Title))

	if proposal.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", proposal.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(proposal.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range proposal.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Song))
	}

	return buf.Bytes()
}

// statusGlyph maps a track resolution outcome to a one-character marker.
func statusGlyph(status tasks.TrackStatus) string {
	switch status {
	case tasks.TrackAdded:
		return "✓"
	case tasks.TrackNotFound:
		return "?"
	default:
		return "✗"
	}
}

// ResultsToText renders a realized playlist and its per-track resolution
// outcomes to plain text format
func ResultsToText(realized *models.RealizedPlaylist, results []tasks.TrackResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", realized.Title))
	if realized.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", realized.Description))
	}
	if realized.URL != "" {
		buf.WriteString(fmt.Sprintf("URL: %s\n", realized.URL))
	}

	added := 0
	for _, r := range results {
		if r.Status == tasks.TrackAdded {
			added++
		}
	}
	buf.WriteString(fmt.Sprintf("Added: %d/%d\n\n", added, len(results)))

	for i, r := range results {
		buf.WriteString(fmt.Sprintf("%d. %s %s - %s", i+1, statusGlyph(r.Status), r.Proposed.Artist, r.Proposed.Song))
		if r.Status == tasks.TrackFailed && r.Error != nil {
			buf.WriteString(fmt.Sprintf(" (%v)", r.Error))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// ProposalToJSON generates a pretty-printed JSON representation of a proposal
func ProposalToJSON(proposal *models.PlaylistProposal) ([]byte, error) {
	return shared.MarshalJSON(proposal, true)
}

// WriteProposalMarkdown exports a proposal to a Markdown file.
//
// Defaults to {proposal.Title}.md as the filename.
func WriteProposalMarkdown(proposal *models.PlaylistProposal, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.md", proposal.Title)
	}

	if err := os.WriteFile(filepath, ProposalToMarkdown(proposal), 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}
