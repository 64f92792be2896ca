package tasks

import (
	"fmt"

	"github.com/desertthunder/spotbak/internal/ledger"
)

// ProgressUpdate represents a progress event during a backup run.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, zero when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchAlbums
	FetchTracks
	FetchPlaylists
	FetchPlaylistItems
	FetchArtists
	Reconcile
	Finished
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchAlbums:
		return "fetch_albums"
	case FetchTracks:
		return "fetch_tracks"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistItems:
		return "fetch_playlist_items"
	case FetchArtists:
		return "fetch_artists"
	case Reconcile:
		return "reconcile"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func profileUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Backing up library of %s...", name),
	}
}

func savedUpdate(phase Phase, step int, name string, outcome ledger.Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s (%s)", step, name, outcome),
		Data:    outcome,
	}
}

func stoppedUpdate(phase Phase, step int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   step,
		Message: fmt.Sprintf("Reached previously saved items after %d new entries", step),
	}
}

func playlistUpdate(step int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s", step, name),
	}
}

func playlistItemsUpdate(step, total int, name string, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylistItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d items)", step, total, name, items),
	}
}

func artistUpdate(step int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtists,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s", step, name),
	}
}

func reconcileUpdate(kind string, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Marked %d %s as removed", removed, kind),
		Data:    removed,
	}
}

func finishedUpdate(summary string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: summary,
	}
}
