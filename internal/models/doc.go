// Package models defines domain entities for the SwipeBeats discovery client.
//
// The package contains two categories of types:
//
// 1. Value types: immutable records and enumerations shared across sessions
//   - [Track] : a normalized catalog track
//   - [SearchPreset] : a named, pre-configured search (term + [SearchMode] + genre scoping)
//   - [HistoryEntry] : one recent search (term + mode)
//   - [ViewState] : the tagged idle/loading/empty/content/error view state
//   - [SortOption] : local ordering applied to search results
//
// 2. Persistent Entities: database-backed records
//   - [LikeRecord] : a liked track with denormalized display fields
//
// Persistent entities implement the [Model] interface providing an identifier, a creation timestamp, and validation.
package models
