// Package services defines the [Searcher] interface for remote music catalogs and implements it
// for the public iTunes Search API.
//
// # Searcher Interface
//
// Sessions depend on [Searcher] only, so tests substitute an in-memory double and the CLI and TUI
// share one [ITunesService].
//
// # iTunes Implementation
//
// [ITunesService] issues GET /search and GET /lookup requests. No credentials are needed.
//
// Mode scoping:
//   - keyword: plain term
//   - genre: term=<genre id>&attribute=genreIndex when a genre id is known, re-issued as a plain
//     keyword query if that yields nothing usable
//   - artist: attribute=artistTerm
//   - song: attribute=songTerm
//
// Requests pass through an optional [rate.Limiter] since the public API throttles at roughly
// twenty calls a minute.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNetwork] : transport failure, timeout or non-2xx status
//   - [shared.ErrDecoding] : malformed JSON payload
//   - [shared.ErrTrackNotFound] : lookup returned no usable record
//
// # API Mappings
//
// Raw records decode into pointer-field DTOs. A record missing trackId, artistName or trackName
// is dropped instead of surfacing a partial [models.Track]; unparseable optional URLs become empty.
package services
