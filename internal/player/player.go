// Package player implements a single-stream audio preview player.
//
// At most one stream is active: starting a new source stops the previous one first.
// Backends that cannot pause in place are stopped on pause and replayed from the start on resume.
package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

// State is the playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	default:
		return "stopped"
	}
}

// NowPlaying is the metadata shown for the current source.
type NowPlaying struct {
	TrackID    int64
	Title      string
	Artist     string
	ArtworkURL string
}

// Snapshot is a consistent copy of the player state.
type Snapshot struct {
	State      State
	URL        string
	NowPlaying NowPlaying
}

// Player plays one preview URL at a time.
type Player struct {
	mu         sync.Mutex
	backend    Backend
	logger     *log.Logger
	events     *shared.Broadcaster[Snapshot]
	state      State
	url        string
	nowPlaying NowPlaying
	stream     Stream
	generation uint64
}

// New creates a stopped player.
func New(backend Backend, logger *log.Logger) *Player {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Player{
		backend: backend,
		logger:  logger.WithPrefix("player"),
		events:  shared.NewBroadcaster[Snapshot](),
		state:   StateStopped,
	}
}

func validSource(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}

// Play stops any current stream and starts raw.
func (p *Player) Play(ctx context.Context, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playLocked(ctx, raw)
}

func (p *Player) playLocked(ctx context.Context, raw string) error {
	if !validSource(raw) {
		return fmt.Errorf("%w: %q", shared.ErrNoSource, raw)
	}

	p.stopStreamLocked()
	p.url = raw

	stream, err := p.backend.Start(ctx, raw)
	if err != nil {
		p.state = StateFailed
		p.logger.Error("failed to start playback", "url", raw, "error", err)
		p.publishLocked()
		return fmt.Errorf("%w: %w", shared.ErrPlayback, err)
	}

	p.stream = stream
	p.state = StatePlaying
	go p.watch(stream, p.generation)
	p.publishLocked()
	return nil
}

// PlayTrack sets the now-playing metadata from track and plays its preview.
func (p *Player) PlayTrack(ctx context.Context, track models.Track) error {
	if !track.HasPreview() {
		return fmt.Errorf("%w: track %d has no preview", shared.ErrNoSource, track.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nowPlaying = nowPlayingFor(track)
	return p.playLocked(ctx, track.PreviewURL)
}

func nowPlayingFor(track models.Track) NowPlaying {
	return NowPlaying{
		TrackID:    track.ID,
		Title:      track.DisplayTitle(),
		Artist:     track.DisplaySubtitle(),
		ArtworkURL: track.ArtworkURL,
	}
}

// Pause pauses the current stream. Does nothing unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StatePlaying || p.stream == nil {
		return
	}

	if err := p.stream.Pause(); err != nil {
		if !errors.Is(err, ErrUnsupported) {
			p.logger.Warn("pause failed, stopping stream", "error", err)
		}
		p.stopStreamLocked()
	}
	p.state = StatePaused
	p.publishLocked()
}

// Stop ends playback. The last URL and metadata are kept for [Player.Toggle].
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopStreamLocked()
	p.state = StateStopped
	p.publishLocked()
}

// Toggle pauses while raw is playing and plays otherwise.
//
// An empty raw means the last-used URL. A paused stream that can resume in place is resumed;
// anything else replays from the start.
func (p *Player) Toggle(ctx context.Context, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if raw == "" {
		raw = p.url
	}
	if raw == "" {
		return shared.ErrNoSource
	}

	same := raw == p.url
	switch {
	case p.state == StatePlaying && same:
		if p.stream != nil {
			if err := p.stream.Pause(); err != nil {
				p.stopStreamLocked()
			}
		}
		p.state = StatePaused
		p.publishLocked()
		return nil
	case p.state == StatePaused && same && p.stream != nil:
		if err := p.stream.Resume(); err == nil {
			p.state = StatePlaying
			p.publishLocked()
			return nil
		}
	}

	return p.playLocked(ctx, raw)
}

// SetNowPlaying replaces the displayed metadata.
func (p *Player) SetNowPlaying(np NowPlaying) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nowPlaying = np
	p.publishLocked()
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Snapshot returns a consistent copy of the player state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe returns a channel of snapshots, starting with the current one.
func (p *Player) Subscribe(buffer int) (<-chan Snapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events.SubscribeWith(p.snapshotLocked(), buffer)
}

// Close stops playback and closes subscriptions.
func (p *Player) Close() {
	p.Stop()
	p.events.Close()
}

// watch returns the player to stopped when a stream ends on its own, or failed on error.
func (p *Player) watch(stream Stream, gen uint64) {
	err := <-stream.Done()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation || p.stream != stream {
		return
	}
	p.stream = nil

	if err != nil {
		p.logger.Warn("playback ended with error", "url", p.url, "error", err)
		p.state = StateFailed
	} else if p.state == StatePlaying {
		p.state = StateStopped
	}
	p.publishLocked()
}

func (p *Player) stopStreamLocked() {
	p.generation++
	if p.stream == nil {
		return
	}
	if err := p.stream.Stop(); err != nil {
		p.logger.Warn("failed to stop stream", "error", err)
	}
	p.stream = nil
}

func (p *Player) snapshotLocked() Snapshot {
	return Snapshot{State: p.state, URL: p.url, NowPlaying: p.nowPlaying}
}

func (p *Player) publishLocked() {
	p.events.Publish(p.snapshotLocked())
}
