package swipe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/swipebeats/internal/likes"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
	th "github.com/desertthunder/swipebeats/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	session  *Session
	searcher *th.MockSearcher
	repo     *th.MockLikeRepository
	store    *likes.Store
}

func newFixture(t *testing.T, tracks []models.Track) fixture {
	t.Helper()
	ctx := context.Background()

	searcher := th.NewMockSearcher(map[string][]models.Track{"lofi beats": tracks})
	repo := th.NewMockLikeRepository()
	store, err := likes.NewStore(ctx, repo, nil)
	require.NoError(t, err)

	s := NewSession(searcher, store, Options{})
	t.Cleanup(func() {
		s.Close()
		store.Close()
	})
	return fixture{session: s, searcher: searcher, repo: repo, store: store}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("content", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		assert.Equal(t, models.Content(), f.session.State())
		track, ok := f.session.CurrentTrack()
		require.True(t, ok)
		assert.Equal(t, int64(1), track.ID)
		assert.Equal(t, th.SearchCall{Term: "lofi beats", Limit: 25, Mode: models.ModeKeyword}, f.searcher.Calls()[0])
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		assert.Equal(t, models.Empty(), f.session.State())
		_, ok := f.session.CurrentTrack()
		assert.False(t, ok)
	})

	t.Run("reload resets the cursor", func(t *testing.T) {
		f := newFixture(t, th.Tracks(2, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))
		f.session.Skip()
		f.session.Skip()
		require.Equal(t, models.Empty(), f.session.State())

		require.NoError(t, f.session.Reload(ctx))
		assert.Equal(t, models.Content(), f.session.State())
		track, _ := f.session.CurrentTrack()
		assert.Equal(t, int64(1), track.ID)
	})

	t.Run("preset scoping", func(t *testing.T) {
		f := newFixture(t, nil)
		preset := models.SearchPreset{Term: "jazz", Mode: models.ModeGenre, GenreID: 11}
		require.NoError(t, f.session.LoadPreset(ctx, preset, 10))
		assert.Equal(t, th.SearchCall{Term: "jazz", Limit: 10, Mode: models.ModeGenre, GenreID: 11}, f.searcher.Calls()[0])
	})

	t.Run("empty term is rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		assert.ErrorIs(t, f.session.Load(ctx, "  ", 25), shared.ErrInvalidInput)
		assert.Empty(t, f.searcher.Calls())
	})

	t.Run("failure moves to error and keeps the queue", func(t *testing.T) {
		f := newFixture(t, th.Tracks(2, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.searcher.SetErr(fmt.Errorf("%w: status 502", shared.ErrNetwork))
		require.Error(t, f.session.Reload(ctx))

		assert.Equal(t, models.Failed(shared.KindNetwork.Message()), f.session.State())
		assert.Equal(t, 2, f.session.Remaining())
	})

	t.Run("newer load supersedes older", func(t *testing.T) {
		f := newFixture(t, nil)
		started := make(chan struct{})
		f.searcher.SearchFunc = func(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error) {
			if term == "slow" {
				close(started)
				<-ctx.Done()
				return th.Tracks(9, "Pop"), nil
			}
			return th.Tracks(1, "Pop"), nil
		}

		done := make(chan error, 1)
		go func() { done <- f.session.Load(ctx, "slow", 25) }()
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("slow load never started")
		}

		require.NoError(t, f.session.Load(ctx, "fast", 25))
		assert.ErrorIs(t, <-done, ErrSuperseded)
		assert.Equal(t, 1, f.session.Remaining())
	})
}

func TestDecisions(t *testing.T) {
	ctx := context.Background()

	t.Run("skip advances without persisting", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Skip()

		track, _ := f.session.CurrentTrack()
		assert.Equal(t, int64(2), track.ID)
		assert.Equal(t, 0, f.repo.Len())
	})

	t.Run("like twice over two tracks exhausts the queue", func(t *testing.T) {
		f := newFixture(t, th.Tracks(2, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Like(ctx)
		f.session.Like(ctx)

		assert.Equal(t, models.Empty(), f.session.State())
		assert.Equal(t, 2, f.repo.Len())
		assert.True(t, f.store.IsLiked(1))
		assert.True(t, f.store.IsLiked(2))
	})

	t.Run("liking the same track twice stores one record", func(t *testing.T) {
		same := th.Track(7, "Affection", "Jinsang", "Electronic")
		f := newFixture(t, []models.Track{same, same})
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Like(ctx)
		f.session.Like(ctx)

		assert.Equal(t, models.Empty(), f.session.State())
		assert.Equal(t, 1, f.repo.Len())
	})

	t.Run("like without a current track is a no-op", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Like(ctx)
		assert.Equal(t, 0, f.repo.Len())
		assert.Equal(t, models.Empty(), f.session.State())
	})

	t.Run("store failure still advances", func(t *testing.T) {
		f := newFixture(t, th.Tracks(2, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))
		f.repo.FailCreate = errors.New("disk full")

		f.session.Like(ctx)

		track, _ := f.session.CurrentTrack()
		assert.Equal(t, int64(2), track.ID)
		assert.False(t, f.store.IsLiked(1))
	})

	t.Run("cursor stops at the end", func(t *testing.T) {
		f := newFixture(t, th.Tracks(1, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Skip()
		f.session.Skip()

		assert.Equal(t, 0, f.session.Remaining())
		assert.Equal(t, models.Empty(), f.session.State())
	})
}

func TestDragRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("release past threshold likes once", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Drag(DefaultThreshold)
		snap := f.session.Snapshot()
		assert.Equal(t, models.DecisionLike, snap.Pending)
		assert.Equal(t, 1.0, snap.Opacity)

		assert.Equal(t, models.DecisionLike, f.session.Release(ctx))
		assert.Equal(t, 1, f.repo.Len())
		assert.Equal(t, 0.0, f.session.Snapshot().DragX)

		track, _ := f.session.CurrentTrack()
		assert.Equal(t, int64(2), track.ID)
	})

	t.Run("overlapping releases commit one drag once", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Drag(DefaultThreshold)

		var wg sync.WaitGroup
		decisions := make([]models.Decision, 2)
		for i := range decisions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				decisions[i] = f.session.Release(ctx)
			}()
		}
		wg.Wait()

		assert.ElementsMatch(t, []models.Decision{models.DecisionLike, models.DecisionNone}, decisions)
		assert.Equal(t, 1, f.repo.Len())
		assert.Equal(t, 2, f.session.Remaining())
	})

	t.Run("release short of threshold snaps back", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.DragBy(-60)
		f.session.DragBy(-59)
		assert.Equal(t, models.DecisionNone, f.session.Release(ctx))

		track, _ := f.session.CurrentTrack()
		assert.Equal(t, int64(1), track.ID)
		assert.Equal(t, 0.0, f.session.Snapshot().DragX)
	})

	t.Run("release past negative threshold skips", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Drag(-DefaultThreshold)
		assert.Equal(t, models.DecisionSkip, f.session.Release(ctx))
		assert.Equal(t, 0, f.repo.Len())
		assert.Equal(t, 2, f.session.Remaining())
	})

	t.Run("explicit button commit", func(t *testing.T) {
		f := newFixture(t, th.Tracks(3, "Pop"))
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Drag(30)
		f.session.Commit(ctx, models.DecisionLike)

		assert.Equal(t, 1, f.repo.Len())
		assert.Equal(t, 2, f.session.Remaining())
		assert.Equal(t, 0.0, f.session.Snapshot().DragX)

		f.session.Commit(ctx, models.DecisionNone)
		assert.Equal(t, 2, f.session.Remaining())
	})

	t.Run("drag without a card is ignored", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.session.Load(ctx, "lofi beats", 25))

		f.session.Drag(200)
		assert.Equal(t, 0.0, f.session.Snapshot().DragX)
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, th.Tracks(2, "Pop"))

	ch, cancel := f.session.Subscribe(16)
	defer cancel()
	assert.Equal(t, models.Idle(), (<-ch).State)

	require.NoError(t, f.session.Load(ctx, "lofi beats", 25))
	f.session.Like(ctx)

	var last Snapshot
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, 1, last.Cursor)
	assert.Equal(t, int64(2), last.Track.ID)
	assert.False(t, last.Liked)
}
