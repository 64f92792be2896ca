// package formatter renders catalog and ledger data for the terminal (lipgloss) and exports saved
// items as CSV.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/spotbak/internal/market"
	"github.com/desertthunder/spotbak/internal/models"
	"github.com/desertthunder/spotbak/internal/shared"
)

// SavedRow is one ledger entry joined with the name of the saved album or track.
type SavedRow struct {
	ExternalID  string     `json:"external_id"`
	Name        string     `json:"name"`
	DateAdded   time.Time  `json:"date_added"`
	DateRemoved *time.Time `json:"date_removed,omitempty"`
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value)
}

func ratio(total, simplified int) string {
	if simplified == 0 {
		return strconv.Itoa(total)
	}
	return fmt.Sprintf("%d %s", total, styles.muted.Render(fmt.Sprintf("(%d simplified)", simplified)))
}

// RenderStats renders the catalog and ledger counters.
func RenderStats(s *models.Stats) string {
	lines := []string{
		styles.title.Render("Library"),
		row("Users", strconv.Itoa(s.Users)),
		row("Artists", ratio(s.Artists, s.SimplifiedArtists)),
		row("Albums", ratio(s.Albums, s.SimplifiedAlbums)),
		row("Tracks", ratio(s.Tracks, s.SimplifiedTracks)),
		row("Playlists", ratio(s.Playlists, s.SimplifiedPlaylists)),
		row("Playlist items", strconv.Itoa(s.PlaylistItems)),
		row("Genres", strconv.Itoa(s.Genres)),
		row("Images", strconv.Itoa(s.Images)),
		"",
		styles.title.Render("Saved"),
		row("Albums", fmt.Sprintf("%d %s", s.SavedAlbums, styles.muted.Render(fmt.Sprintf("(%d removed)", s.RemovedAlbums)))),
		row("Tracks", fmt.Sprintf("%d %s", s.SavedTracks, styles.muted.Render(fmt.Sprintf("(%d removed)", s.RemovedTracks)))),
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderRuns renders backup runs, one per line.
func RenderRuns(runs []*models.BackupRun) string {
	if len(runs) == 0 {
		return styles.muted.Render("No backup runs recorded") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Backup runs") + "\n")
	for _, run := range runs {
		status := styles.status(run.Status)

		fmt.Fprintf(&b, "%s  %s  %-9s  %s  +%d albums +%d tracks %d playlists %d artists -%d",
			shared.FormatTimestamp(run.StartedAt), run.ID[:min(8, len(run.ID))], status, run.Scope,
			run.AlbumsSaved, run.TracksSaved, run.Playlists, run.ArtistsFollowed, run.Removed)
		if d := run.Duration(); d > 0 {
			fmt.Fprintf(&b, "  %s", styles.muted.Render(d.Round(time.Millisecond).String()))
		}
		if run.ErrorMessage != "" {
			fmt.Fprintf(&b, "\n    %s", styles.err.Render(run.ErrorMessage))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSaved renders ledger entries under title.
func RenderSaved(title string, rows []SavedRow) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(title) + "\n")
	if len(rows) == 0 {
		b.WriteString(styles.muted.Render("Nothing here") + "\n")
		return b.String()
	}

	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s %s  added %s", i+1, r.Name, styles.muted.Render(r.ExternalID), shared.FormatTimestamp(r.DateAdded))
		if r.DateRemoved != nil {
			fmt.Fprintf(&b, "  %s", styles.warn.Render("removed "+shared.FormatTimestamp(*r.DateRemoved)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkets renders the markets an album or track is available in.
func RenderMarkets(name string, a market.Availability) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s: %d of %d markets", name, a.Len(), market.Size)) + "\n")

	codes := a.Codes()
	for i := 0; i < len(codes); i += 20 {
		b.WriteString(strings.Join(codes[i:min(i+20, len(codes))], " ") + "\n")
	}
	return b.String()
}

// SavedToCSV converts ledger entries to CSV with columns: ID, Name, Added, Removed
func SavedToCSV(rows []SavedRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Added", "Removed"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		removed := ""
		if r.DateRemoved != nil {
			removed = r.DateRemoved.UTC().Format(time.RFC3339Nano)
		}
		record := []string{r.ExternalID, r.Name, r.DateAdded.UTC().Format(time.RFC3339Nano), removed}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}
