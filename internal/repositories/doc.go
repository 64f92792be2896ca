// Package repositories implements SQLite persistence for catalog rows, relationship edges,
// ledger entries and backup runs.
//
// Every repository is built on a [shared.DBTX] so the same code runs against a *sql.DB or inside the
// *sql.Tx of a unit of work opened with [WithTx].
//
// Key Implementations:
//   - [ArtistRepository], [AlbumRepository], [TrackRepository], [PlaylistRepository], [UserRepository] : rows keyed by registry identity
//   - [GenreRepository], [ImageRepository] : leaf rows (genres by name, images by URL)
//   - [PlaylistItemRepository] : ordered playlist membership
//   - [EdgeRepository] : many-to-many relationships read from either end
//   - [SavedRepository] : saved album / saved track ledger rows
//   - [RunRepository] : backup run history
//   - [StatsRepository] : aggregate counts
package repositories
