package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/swipebeats/internal/models"
)

var (
	_ list.Item = presetItem{}
	_ list.Item = recentItem{}
	_ list.Item = trackItem{}
	_ list.Item = likedItem{}
)

// presetItem wraps [models.SearchPreset] to implement [list.Item].
type presetItem struct {
	preset models.SearchPreset
}

func (i presetItem) FilterValue() string { return i.preset.Title }
func (i presetItem) Title() string       { return "★ " + i.preset.Title }
func (i presetItem) Description() string {
	desc := fmt.Sprintf("preset • %s: %s", i.preset.Mode, i.preset.Term)
	if len(i.preset.AllowedPrimaryGenres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.preset.AllowedPrimaryGenres, ", "))
	}
	return desc
}

// recentItem wraps [models.HistoryEntry] to implement [list.Item].
type recentItem struct {
	entry models.HistoryEntry
}

func (i recentItem) FilterValue() string { return i.entry.Term }
func (i recentItem) Title() string       { return "↺ " + i.entry.Term }
func (i recentItem) Description() string { return "recent • " + i.entry.Mode.String() }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
	liked bool
}

func (i trackItem) FilterValue() string { return i.track.TrackName }
func (i trackItem) Title() string {
	if i.liked {
		return "♥ " + i.track.DisplayTitle()
	}
	return i.track.DisplayTitle()
}
func (i trackItem) Description() string { return trackDescription(i.track) }

// likedItem wraps [models.LikeRecord] to implement [list.Item].
type likedItem struct {
	record *models.LikeRecord
}

func (i likedItem) FilterValue() string { return i.record.TrackName() }
func (i likedItem) Title() string       { return i.record.TrackName() }
func (i likedItem) Description() string {
	return fmt.Sprintf("%s • liked %s", trackDescription(i.record.Track()), i.record.CreatedAt().Local().Format("2006-01-02 15:04"))
}

func trackDescription(t models.Track) string {
	desc := t.DisplaySubtitle()
	if t.PrimaryGenreName != "" {
		desc = fmt.Sprintf("%s • %s", desc, t.PrimaryGenreName)
	}
	if !t.HasPreview() {
		desc += " • no preview"
	}
	return desc
}

// homeItems lists recent searches followed by presets for the idle explore view.
func homeItems(presets []models.SearchPreset, recent []models.HistoryEntry) []list.Item {
	items := make([]list.Item, 0, len(presets)+len(recent))
	for _, e := range recent {
		items = append(items, recentItem{entry: e})
	}
	for _, p := range presets {
		items = append(items, presetItem{preset: p})
	}
	return items
}

func trackItems(tracks []models.Track, liked func(int64) bool) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t, liked: liked(t.ID)}
	}
	return items
}

func likedItems(records []*models.LikeRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = likedItem{record: r}
	}
	return items
}
