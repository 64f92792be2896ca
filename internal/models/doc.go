// Package models defines the catalog entities, relationship edges and upstream payload shapes for spotbak.
//
// The package contains three categories of types:
//
// 1. Persistent entities: rows owned by the catalog and the ledger
//   - [Genre], [Image], [Artist], [Album], [Track], [Playlist], [PlaylistItem], [User]
//   - [SavedItem] : a ledger entry for a saved album or saved track
//
// 2. Relationships: [Ref], [Edge] and [Relation] describe many-to-many associations as a single
// edge between two (kind, key) pairs. The owning side is the edge's From end.
//
// 3. Payloads: decoded upstream objects ([ArtistPayload], [AlbumPayload], ...). Each payload has a
// common part and an optional Details pointer; a nil Details is a simplified payload.
//
// Artist, Album, Track and Playlist move through [State] Absent → Simplified → Full. Full is terminal.
package models
