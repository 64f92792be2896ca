// Package catalog is the object upsert engine: it turns upstream payloads into stored records,
// exactly one per (kind, external id).
//
// Every exported write runs as one unit of work inside a single transaction. Within it the engine:
//
//  1. resolves the payload's identity through the [registry.Registry]
//  2. decides between create, upgrade and keep from the stored state and the payload shape
//  3. cascades into related objects (artists, genres, images, tracks, owners) with the same rules
//  4. attaches relationships as single edges, which both sides read
//
// Artist, Album, Track and Playlist records are Simplified or Full. A simplified record is upgraded
// once by a full payload; a full record is never regressed by a later partial payload. Related
// objects with a blank external id are skipped. A blank id on the object the caller asked for fails
// with [shared.ErrInvalidIdentity], and a missing name on a creation path aborts the whole unit of
// work with a [shared.FieldError].
package catalog
