package discovery

import (
	"slices"
	"strings"

	"github.com/desertthunder/swipebeats/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator returns a case-insensitive collator for locale, falling back to English.
func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	return collate.New(tag, collate.IgnoreCase)
}

// restrictToGenres keeps tracks whose primary genre is in allowed, compared case-insensitively.
// If nothing would remain the input is returned unchanged.
func restrictToGenres(tracks []models.Track, allowed []string) []models.Track {
	if len(allowed) == 0 {
		return tracks
	}

	kept := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if slices.ContainsFunc(allowed, func(g string) bool { return strings.EqualFold(g, t.PrimaryGenreName) }) {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		return tracks
	}
	return kept
}

// filterAndSort derives the displayed results from the raw set.
func filterAndSort(all []models.Track, onlyWithPreview bool, sortOption models.SortOption, c *collate.Collator) []models.Track {
	results := make([]models.Track, 0, len(all))
	for _, t := range all {
		if onlyWithPreview && !t.HasPreview() {
			continue
		}
		results = append(results, t)
	}

	switch sortOption {
	case models.SortTrackAZ:
		slices.SortStableFunc(results, func(a, b models.Track) int {
			return c.CompareString(a.TrackName, b.TrackName)
		})
	case models.SortArtistAZ:
		slices.SortStableFunc(results, func(a, b models.Track) int {
			return c.CompareString(a.ArtistName, b.ArtistName)
		})
	}

	return results
}

// pushHistory puts entry first, removing any entry with the same term (case-insensitive), and caps
// the list at limit.
func pushHistory(entries []models.HistoryEntry, entry models.HistoryEntry, limit int) []models.HistoryEntry {
	next := make([]models.HistoryEntry, 0, min(len(entries)+1, limit))
	next = append(next, entry)
	for _, e := range entries {
		if len(next) == limit {
			break
		}
		if strings.EqualFold(e.Term, entry.Term) {
			continue
		}
		next = append(next, e)
	}
	return next
}
