// Package tasks orchestrates a backup of the user's library with real-time progress reporting.
//
// # Backup Runs
//
// [BackupEngine.Run] pulls payloads from a [services.Service] and stores them through the catalog
// engine and the saved-item ledgers. The [Scope] selects what is fetched:
//
//  1. Saved albums and saved tracks
//     - Upserted into the catalog, then recorded in the ledger with their add date
//     - Incremental runs stop at the newest entry already in the ledger
//     - Full runs read everything and mark entries missing upstream as removed
//
//  2. Playlists
//     - A simplified pass over the library listing, owned or followed by owner id
//     - A full pass that fetches every changed playlist concurrently, throttled by a rate limiter
//
//  3. Followed artists
//
// Each run is recorded in the backup_runs table with its counters and final status.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on a channel without blocking: when the channel is
// full the update is dropped.
package tasks
