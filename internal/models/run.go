package models

import (
	"fmt"
	"time"
)

// RunStatus is the state of a backup run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// BackupRun records one invocation of the backup engine.
type BackupRun struct {
	ID              string     `json:"id"`
	UserKey         Key        `json:"user_key,omitempty"`
	Status          RunStatus  `json:"status"`
	Scope           string     `json:"scope"`
	AlbumsSaved     int        `json:"albums_saved"`
	TracksSaved     int        `json:"tracks_saved"`
	Playlists       int        `json:"playlists"`
	ArtistsFollowed int        `json:"artists_followed"`
	Removed         int        `json:"removed"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewBackupRun creates a pending run for the given scope.
func NewBackupRun(id, scope string, now time.Time) *BackupRun {
	now = now.UTC()
	return &BackupRun{
		ID:        id,
		Status:    RunPending,
		Scope:     scope,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the run can be stored.
func (r *BackupRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("backup run ID cannot be empty")
	}
	switch r.Status {
	case RunPending, RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid backup run status: %q", r.Status)
	}
	return nil
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *BackupRun) Finish(err error, now time.Time) {
	now = now.UTC()
	r.CompletedAt = &now
	r.UpdatedAt = now
	if err != nil {
		r.Status = RunFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunCompleted
}

// Duration is the elapsed time of a finished run, or zero while it is still going.
func (r *BackupRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Stats summarizes the contents of the catalog and ledger.
type Stats struct {
	Users               int `json:"users"`
	Artists             int `json:"artists"`
	SimplifiedArtists   int `json:"simplified_artists"`
	Albums              int `json:"albums"`
	SimplifiedAlbums    int `json:"simplified_albums"`
	Tracks              int `json:"tracks"`
	SimplifiedTracks    int `json:"simplified_tracks"`
	Playlists           int `json:"playlists"`
	SimplifiedPlaylists int `json:"simplified_playlists"`
	PlaylistItems       int `json:"playlist_items"`
	Genres              int `json:"genres"`
	Images              int `json:"images"`
	SavedAlbums         int `json:"saved_albums"`
	RemovedAlbums       int `json:"removed_albums"`
	SavedTracks         int `json:"saved_tracks"`
	RemovedTracks       int `json:"removed_tracks"`
}
