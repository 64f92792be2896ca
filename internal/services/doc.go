// Package services defines the [Service] interface for reading a user's library from the
// upstream provider and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the github.com/zmb3/spotify/v2 client. Authentication uses
// spotifyauth on top of [oauth2]: `auth url` prints the consent URL, `auth exchange` trades the
// returned code for a token, and the refresh token is stored in the config file. Every later
// client is built from that refresh token and refreshes itself.
//
// # Payloads
//
// The Convert* functions map client types onto the payloads in the models package. Simplified
// upstream shapes produce payloads with nil Details. Image dimensions of zero mean "not
// reported" and become nil.
//
// # Paging
//
// Listings are pushed through visitor callbacks. A visitor returns [ErrStopPaging] to end a
// listing early, which the backup task uses for incremental runs.
//
// # Error Handling
//
//   - [shared.ErrMissingCredentials] : client id, secret or refresh token missing
//   - [shared.ErrAuthFailed] : the authorization code could not be exchanged
//   - [shared.ErrAPIRequest] : an upstream request failed
package services
