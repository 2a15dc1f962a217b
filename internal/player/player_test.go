package player

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/swipebeats/internal/shared"
	th "github.com/desertthunder/swipebeats/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu        sync.Mutex
	url       string
	pausable  bool
	paused    bool
	stopped   bool
	done      chan error
	closeOnce sync.Once
}

func (s *fakeStream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pausable {
		return ErrUnsupported
	}
	s.paused = true
	return nil
}

func (s *fakeStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pausable {
		return ErrUnsupported
	}
	s.paused = false
	return nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.finish(nil)
	return nil
}

func (s *fakeStream) Done() <-chan error { return s.done }

func (s *fakeStream) finish(err error) {
	s.closeOnce.Do(func() {
		s.done <- err
		close(s.done)
	})
}

func (s *fakeStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeBackend struct {
	mu       sync.Mutex
	pausable bool
	err      error
	streams  []*fakeStream
}

func (b *fakeBackend) Start(ctx context.Context, url string) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	s := &fakeStream{url: url, pausable: b.pausable, done: make(chan error, 1)}
	b.streams = append(b.streams, s)
	return s, nil
}

func (b *fakeBackend) started() []*fakeStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeStream(nil), b.streams...)
}

const (
	urlA = "https://audio.example.com/a.m4a"
	urlB = "https://audio.example.com/b.m4a"
)

func newPlayer(t *testing.T, backend Backend) *Player {
	t.Helper()
	p := New(backend, nil)
	t.Cleanup(p.Close)
	return p
}

func TestPlay(t *testing.T) {
	ctx := context.Background()

	t.Run("plays", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)

		require.NoError(t, p.Play(ctx, urlA))
		assert.Equal(t, StatePlaying, p.State())
		assert.Equal(t, urlA, p.Snapshot().URL)
	})

	t.Run("new source stops the previous stream first", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)

		require.NoError(t, p.Play(ctx, urlA))
		require.NoError(t, p.Play(ctx, urlB))

		streams := backend.started()
		require.Len(t, streams, 2)
		assert.True(t, streams[0].isStopped())
		assert.False(t, streams[1].isStopped())
		assert.Equal(t, StatePlaying, p.State())
	})

	t.Run("rejects invalid sources", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{})
		for _, raw := range []string{"", "file:///tmp/a.m4a", "not a url"} {
			assert.ErrorIs(t, p.Play(ctx, raw), shared.ErrNoSource, raw)
		}
		assert.Equal(t, StateStopped, p.State())
	})

	t.Run("backend failure", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{err: errors.New("no audio device")})

		assert.ErrorIs(t, p.Play(ctx, urlA), shared.ErrPlayback)
		assert.Equal(t, StateFailed, p.State())
	})

	t.Run("play track sets now playing", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{})
		track := th.Track(9, "Aruarian Dance", "Nujabes", "Hip-Hop/Rap")

		require.NoError(t, p.PlayTrack(ctx, track))
		np := p.Snapshot().NowPlaying
		assert.Equal(t, NowPlaying{TrackID: 9, Title: "Aruarian Dance", Artist: "Nujabes", ArtworkURL: track.ArtworkURL}, np)
	})

	t.Run("play track without preview", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{})
		track := th.Track(9, "t", "a", "")
		track.PreviewURL = ""

		assert.ErrorIs(t, p.PlayTrack(ctx, track), shared.ErrNoSource)
	})
}

func TestPauseStopToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("pause and stop", func(t *testing.T) {
		backend := &fakeBackend{pausable: true}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))

		p.Pause()
		assert.Equal(t, StatePaused, p.State())

		p.Stop()
		assert.Equal(t, StateStopped, p.State())
		assert.True(t, backend.started()[0].isStopped())
	})

	t.Run("pause when stopped is a no-op", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{})
		p.Pause()
		assert.Equal(t, StateStopped, p.State())
	})

	t.Run("toggle resumes pausable stream", func(t *testing.T) {
		backend := &fakeBackend{pausable: true}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))

		require.NoError(t, p.Toggle(ctx, ""))
		assert.Equal(t, StatePaused, p.State())

		require.NoError(t, p.Toggle(ctx, ""))
		assert.Equal(t, StatePlaying, p.State())
		assert.Len(t, backend.started(), 1)
	})

	t.Run("toggle replays when backend cannot pause", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))

		require.NoError(t, p.Toggle(ctx, urlA))
		assert.Equal(t, StatePaused, p.State())
		assert.True(t, backend.started()[0].isStopped())

		require.NoError(t, p.Toggle(ctx, urlA))
		assert.Equal(t, StatePlaying, p.State())
		assert.Len(t, backend.started(), 2)
	})

	t.Run("toggle other url switches source", func(t *testing.T) {
		backend := &fakeBackend{pausable: true}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))

		require.NoError(t, p.Toggle(ctx, urlB))
		assert.Equal(t, StatePlaying, p.State())
		assert.Equal(t, urlB, p.Snapshot().URL)
	})

	t.Run("toggle without any url", func(t *testing.T) {
		p := newPlayer(t, &fakeBackend{})
		assert.ErrorIs(t, p.Toggle(ctx, ""), shared.ErrNoSource)
	})

	t.Run("toggle after stop replays last url", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))
		p.Stop()

		require.NoError(t, p.Toggle(ctx, ""))
		assert.Equal(t, StatePlaying, p.State())
		assert.Equal(t, urlA, backend.started()[1].url)
	})
}

func TestStreamEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("natural end returns to stopped", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)
		ch, cancel := p.Subscribe(8)
		defer cancel()
		<-ch

		require.NoError(t, p.Play(ctx, urlA))
		backend.started()[0].finish(nil)

		require.Eventually(t, func() bool { return p.State() == StateStopped }, time.Second, 5*time.Millisecond)
	})

	t.Run("stream error fails", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))

		backend.started()[0].finish(errors.New("decoder error"))
		require.Eventually(t, func() bool { return p.State() == StateFailed }, time.Second, 5*time.Millisecond)
	})

	t.Run("end of a replaced stream is ignored", func(t *testing.T) {
		backend := &fakeBackend{}
		p := newPlayer(t, backend)
		require.NoError(t, p.Play(ctx, urlA))
		require.NoError(t, p.Play(ctx, urlB))

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, StatePlaying, p.State())
		assert.Equal(t, urlB, p.Snapshot().URL)
	})
}

func TestExecBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("from config", func(t *testing.T) {
		b := NewExecBackend(shared.DefaultConfig().Player)
		assert.Equal(t, "ffplay", b.Command)
		assert.Contains(t, b.Args, "-nodisp")
	})

	t.Run("missing command", func(t *testing.T) {
		b := &ExecBackend{}
		assert.False(t, b.Available())
		_, err := b.Start(ctx, urlA)
		assert.ErrorIs(t, err, shared.ErrPlayback)
	})

	t.Run("unknown binary", func(t *testing.T) {
		b := &ExecBackend{Command: "swipebeats-no-such-player"}
		_, err := b.Start(ctx, urlA)
		assert.ErrorIs(t, err, shared.ErrPlayback)
	})

	t.Run("process exit ends the stream", func(t *testing.T) {
		if _, err := exec.LookPath("true"); err != nil {
			t.Skip("true not available")
		}
		b := &ExecBackend{Command: "true"}
		stream, err := b.Start(ctx, urlA)
		require.NoError(t, err)

		select {
		case err := <-stream.Done():
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("stream did not end")
		}
		assert.ErrorIs(t, stream.Pause(), ErrUnsupported)
		assert.NoError(t, stream.Stop())
	})

	t.Run("stop kills the process", func(t *testing.T) {
		if _, err := exec.LookPath("sleep"); err != nil {
			t.Skip("sleep not available")
		}
		b := &ExecBackend{Command: "sleep"}
		stream, err := b.Start(ctx, "30")
		require.NoError(t, err)
		require.NoError(t, stream.Stop())

		select {
		case err := <-stream.Done():
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("stream did not stop")
		}
	})
}
