package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/discovery"
	"github.com/desertthunder/swipebeats/internal/likes"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/swipe"
	th "github.com/desertthunder/swipebeats/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStream struct{ done chan error }

func (s *stubStream) Pause() error        { return nil }
func (s *stubStream) Resume() error       { return nil }
func (s *stubStream) Stop() error         { return nil }
func (s *stubStream) Done() <-chan error { return s.done }

type stubBackend struct {
	mu   sync.Mutex
	urls []string
}

func (b *stubBackend) Start(ctx context.Context, url string) (player.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.urls = append(b.urls, url)
	return &stubStream{done: make(chan error, 1)}, nil
}

func (b *stubBackend) started() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...)
}

type harness struct {
	model    *Model
	searcher *th.MockSearcher
	repo     *th.MockLikeRepository
	store    *likes.Store
	backend  *stubBackend
	opened   []string
}

var presets = []models.SearchPreset{
	{Title: "Lofi", Term: "lofi beats", Mode: models.ModeKeyword},
	{Title: "Jazz", Term: "jazz", Mode: models.ModeGenre, GenreID: 11},
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := log.New(&strings.Builder{})

	h := &harness{
		searcher: th.NewMockSearcher(map[string][]models.Track{
			"lofi beats": th.Tracks(3, "Hip-Hop/Rap"),
			"jazz":       th.Tracks(2, "Jazz"),
		}),
		repo:    th.NewMockLikeRepository(),
		backend: &stubBackend{},
	}

	store, err := likes.NewStore(ctx, h.repo, logger)
	require.NoError(t, err)
	h.store = store

	history := &th.MemoryHistory{Entries: []models.HistoryEntry{{Term: "ambient", Mode: models.ModeKeyword}}}
	explore := discovery.NewSession(ctx, h.searcher, history, discovery.Options{Presets: presets, Logger: logger})
	sw := swipe.NewSession(h.searcher, store, swipe.Options{Logger: logger})
	pl := player.New(h.backend, logger)

	h.model = NewModel(ctx, explore, sw, store, pl, Options{
		Presets:     presets,
		SwipePreset: presets[0],
		SwipeLimit:  25,
		OpenURL: func(link string) error {
			h.opened = append(h.opened, link)
			return nil
		},
		Logger: logger,
	})

	h.model.input.Cursor.SetMode(cursor.CursorStatic)
	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	t.Cleanup(func() {
		h.model.Close()
		explore.Close()
		sw.Close()
		pl.Close()
		store.Close()
	})
	return h
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press sends a key and runs the resulting command, feeding its message back into the model.
func (h *harness) press(t *testing.T, k tea.KeyMsg) {
	t.Helper()
	_, cmd := h.model.Update(k)
	h.exec(cmd)
}

func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		h.model.Update(msg)
	}
}

// sync pulls the latest session snapshots into the model, as the listeners would.
func (h *harness) sync() {
	m := h.model
	m.Update(exploreUpdatedMsg(m.explore.Snapshot()))
	m.Update(swipeUpdatedMsg(m.swipe.Snapshot()))
	m.Update(likesUpdatedMsg(m.likes.Snapshot()))
	m.Update(playerUpdatedMsg(m.player.Snapshot()))
}

func TestNewModel(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, ExploreView, h.model.ActiveView())
	items := h.model.results.Items()
	require.Len(t, items, 3)
	assert.IsType(t, recentItem{}, items[0])
	assert.IsType(t, presetItem{}, items[1])
	assert.Contains(t, h.model.View(), "Explore")
}

func TestSwitchViews(t *testing.T) {
	h := newHarness(t)

	h.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, SwipeView, h.model.ActiveView())

	h.press(t, runes("3"))
	assert.Equal(t, LikedView, h.model.ActiveView())
	assert.Contains(t, h.model.View(), "No liked tracks yet")

	h.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ExploreView, h.model.ActiveView())
}

func TestExploreSearch(t *testing.T) {
	h := newHarness(t)

	h.press(t, runes("/"))
	require.True(t, h.model.typing)

	h.press(t, runes("jazz"))
	assert.Equal(t, "jazz", h.model.explore.Query())

	h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, h.model.typing)
	h.sync()

	calls := h.searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "jazz", calls[0].Term)
	assert.Equal(t, models.ModeKeyword, calls[0].Mode)
	assert.Len(t, h.model.results.Items(), 2)
	assert.Contains(t, h.model.View(), "Results for “jazz”")

	t.Run("like from results", func(t *testing.T) {
		h.press(t, runes("L"))
		assert.True(t, h.store.IsLiked(1))
		h.sync()
		item := h.model.results.Items()[0].(trackItem)
		assert.True(t, item.liked)
		assert.Contains(t, h.model.status, "Liked")
	})

	t.Run("play selected", func(t *testing.T) {
		h.press(t, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		assert.Equal(t, []string{"https://audio.example.com/1.m4a"}, h.backend.started())
		h.sync()
		assert.Contains(t, h.model.View(), "▶ Track 01")
	})

	t.Run("open collection", func(t *testing.T) {
		h.press(t, runes("o"))
		assert.Equal(t, []string{"https://music.example.com/album/1"}, h.opened)
	})

	t.Run("esc resets to idle", func(t *testing.T) {
		h.press(t, tea.KeyMsg{Type: tea.KeyEsc})
		h.sync()
		assert.True(t, h.model.exploreSnap.State.Is(models.ViewIdle))
		assert.IsType(t, recentItem{}, h.model.results.Items()[0])
	})
}

func TestExplorePreset(t *testing.T) {
	h := newHarness(t)

	h.press(t, runes("j"))
	h.press(t, runes("j"))
	h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.sync()

	calls := h.searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, th.SearchCall{Term: "jazz", Limit: 25, Mode: models.ModeGenre, GenreID: 11}, calls[0])
	assert.Equal(t, "jazz", h.model.input.Value())
}

func TestExploreToggles(t *testing.T) {
	h := newHarness(t)

	h.press(t, runes("p"))
	assert.False(t, h.model.explore.Snapshot().OnlyWithPreview)

	h.press(t, runes("s"))
	assert.Equal(t, models.SortTrackAZ, h.model.explore.Snapshot().Sort)

	h.press(t, runes("+"))
	assert.Equal(t, 50, h.model.explore.Limit())
	assert.Empty(t, h.searcher.Calls(), "limit change without a searched term does not search")

	h.press(t, runes("x"))
	h.sync()
	assert.Empty(t, h.model.exploreSnap.Recent)
}

func TestSwipeView(t *testing.T) {
	h := newHarness(t)
	h.exec(h.model.loadSwipe())
	h.sync()
	h.press(t, runes("2"))

	require.True(t, h.model.swipeSnap.HasTrack)
	assert.Contains(t, h.model.View(), "Track 01")
	assert.Contains(t, h.model.View(), "card 1 of 3")

	t.Run("drag and release likes", func(t *testing.T) {
		for range 3 {
			h.press(t, runes("l"))
		}
		h.sync()
		assert.Equal(t, models.DecisionLike, h.model.swipeSnap.Pending)
		assert.Contains(t, h.model.View(), "LIKE")

		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
		h.sync()
		assert.True(t, h.store.IsLiked(1))
		assert.Equal(t, 1, h.model.swipeSnap.Cursor)
		assert.Zero(t, h.model.swipeSnap.DragX)
	})

	t.Run("short drag snaps back", func(t *testing.T) {
		h.press(t, runes("h"))
		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
		h.sync()
		assert.Equal(t, 1, h.model.swipeSnap.Cursor)
		assert.Zero(t, h.model.swipeSnap.DragX)
	})

	t.Run("explicit buttons", func(t *testing.T) {
		h.press(t, runes("n"))
		h.press(t, runes("y"))
		h.sync()
		assert.False(t, h.store.IsLiked(2))
		assert.True(t, h.store.IsLiked(3))
		assert.True(t, h.model.swipeSnap.State.Is(models.ViewEmpty))
		assert.Contains(t, h.model.View(), "last card")
	})

	t.Run("reload", func(t *testing.T) {
		h.press(t, runes("r"))
		h.sync()
		assert.Equal(t, 0, h.model.swipeSnap.Cursor)
		assert.True(t, h.model.swipeSnap.Liked, "first card is already liked")
	})
}

func TestLikedView(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Like(ctx, th.Track(7, "Blue in Green", "Miles Davis", "Jazz")))
	h.sync()
	h.press(t, runes("3"))

	assert.Contains(t, h.model.View(), "Liked tracks (1)")

	h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"https://audio.example.com/7.m4a"}, h.backend.started())

	h.press(t, runes("d"))
	h.sync()
	assert.False(t, h.store.IsLiked(7))
	assert.Zero(t, h.repo.Len())
	assert.Contains(t, h.model.View(), "No liked tracks yet")
}

func TestLikedViewUnlikeFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Like(ctx, th.Track(7, "Blue in Green", "Miles Davis", "Jazz")))
	h.repo.FailDelete = assert.AnError
	h.sync()
	h.press(t, runes("3"))

	h.press(t, runes("d"))
	h.sync()
	assert.True(t, h.store.IsLiked(7), "failed unlike is rolled back")
	assert.Contains(t, h.model.View(), "Error:")
}

func TestTogglePreviewWithoutSource(t *testing.T) {
	h := newHarness(t)
	track := models.Track{ID: 9, TrackName: "Silent", ArtistName: "Nobody"}

	h.exec(h.model.togglePreview(track))
	assert.Equal(t, "No preview available for Silent", h.model.status)
	assert.Empty(t, h.backend.started())
}
