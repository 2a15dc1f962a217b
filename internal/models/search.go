package models

import (
	"fmt"
	"strings"
)

// SearchMode narrows how the remote catalog interprets a search term.
type SearchMode string

const (
	ModeKeyword SearchMode = "keyword"
	ModeGenre   SearchMode = "genre"
	ModeArtist  SearchMode = "artist"
	ModeSong    SearchMode = "song"
)

// SearchModes lists every mode in display order.
var SearchModes = []SearchMode{ModeKeyword, ModeGenre, ModeArtist, ModeSong}

// ParseSearchMode parses a mode name case-insensitively. The empty string parses as [ModeKeyword].
func ParseSearchMode(s string) (SearchMode, error) {
	if strings.TrimSpace(s) == "" {
		return ModeKeyword, nil
	}
	mode := SearchMode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range SearchModes {
		if m == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown search mode %q", s)
}

// String returns the mode name.
func (m SearchMode) String() string { return string(m) }

// SearchPreset is a named, pre-configured search.
//
// GenreID is zero when the preset is not scoped to a catalog genre.
// AllowedPrimaryGenres, when non-empty, post-filters genre-mode results by primary genre.
type SearchPreset struct {
	Title                string     `json:"title"`
	Term                 string     `json:"term"`
	Mode                 SearchMode `json:"mode"`
	GenreID              int        `json:"genre_id,omitempty"`
	AllowedPrimaryGenres []string   `json:"allowed_primary_genres,omitempty"`
}

// Key returns the preset identity: mode + "|" + lowercased term.
func (p SearchPreset) Key() string {
	return string(p.Mode) + "|" + strings.ToLower(p.Term)
}

// HasGenre reports whether the preset carries an explicit genre id.
func (p SearchPreset) HasGenre() bool { return p.GenreID > 0 }

// FindPreset returns the preset whose [SearchPreset.Key] or title matches key case-insensitively.
func FindPreset(presets []SearchPreset, key string) (SearchPreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Key(), key) || strings.EqualFold(p.Title, key) {
			return p, true
		}
	}
	return SearchPreset{}, false
}

// HistoryEntry is one recent search: the term exactly as searched and the mode it ran with.
type HistoryEntry struct {
	Term string     `json:"term"`
	Mode SearchMode `json:"mode"`
}

// SortOption is the local ordering applied to search results.
type SortOption int

const (
	SortRelevance SortOption = iota // API order
	SortTrackAZ
	SortArtistAZ
)

// SortOptions lists every option in display order.
var SortOptions = []SortOption{SortRelevance, SortTrackAZ, SortArtistAZ}

// String returns the display label of the option.
func (o SortOption) String() string {
	switch o {
	case SortTrackAZ:
		return "Track A–Z"
	case SortArtistAZ:
		return "Artist A–Z"
	default:
		return "Relevance"
	}
}

// Next cycles to the following option.
func (o SortOption) Next() SortOption {
	return SortOptions[(int(o)+1)%len(SortOptions)]
}

// ParseSortOption parses "relevance", "track" or "artist".
func ParseSortOption(s string) (SortOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance":
		return SortRelevance, nil
	case "track", "track-az", "trackaz":
		return SortTrackAZ, nil
	case "artist", "artist-az", "artistaz":
		return SortArtistAZ, nil
	}
	return SortRelevance, fmt.Errorf("unknown sort option %q", s)
}
