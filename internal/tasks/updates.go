package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/flowdj/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	LookupFlow Phase = iota
	SynthesizeMood
	SynthesizeProposal
	CreatePlaylist
	ResolveTracks
	Notify
)

func (p Phase) String() string {
	switch p {
	case LookupFlow:
		return "lookup_flow"
	case SynthesizeMood:
		return "synthesize_mood"
	case SynthesizeProposal:
		return "synthesize_proposal"
	case CreatePlaylist:
		return "create_playlist"
	case ResolveTracks:
		return "resolve_tracks"
	case Notify:
		return "notify"
	default:
		return ""
	}
}

func lookupFlowUpdate(flowID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupFlow,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up flow %s...", flowID),
	}
}

func synthesizeMoodUpdate(keywords []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SynthesizeMood,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Describing a mood from: %s...", strings.Join(keywords, ", ")),
	}
}

func synthesizeProposalUpdate(mood string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SynthesizeProposal,
		Step:    1,
		Total:   1,
		Message: "Proposing a playlist...",
		Data:    mood,
	}
}

func createPlaylistUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating playlist: %s...", title),
	}
}

func resolveTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Song),
		Data:    tr,
	}
}

func notifyUpdate(email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Notify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Notifying %s...", email),
	}
}
