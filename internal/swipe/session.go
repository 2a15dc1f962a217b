package swipe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

// DefaultLimit is the number of candidates fetched per load.
const DefaultLimit = 25

// ErrSuperseded is returned by a load whose result was discarded because a newer load started.
var ErrSuperseded = errors.New("load superseded")

// Searcher fetches candidate tracks. [services.Searcher] satisfies it.
type Searcher interface {
	Search(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error)
}

// LikeStore persists likes. [likes.Store] satisfies it.
type LikeStore interface {
	Like(ctx context.Context, track models.Track) error
	IsLiked(id int64) bool
}

// Options configures a [Session].
type Options struct {
	Threshold float64
	Logger    *log.Logger
}

// Snapshot is a consistent copy of the session state, including derived drag presentation.
type Snapshot struct {
	State    models.ViewState
	Track    models.Track
	HasTrack bool
	Liked    bool
	Cursor   int
	Total    int
	Term     string
	DragX    float64
	Pending  models.Decision
	Rotation float64
	Opacity  float64
}

// Session presents loaded tracks one at a time and records a decision per card.
type Session struct {
	mu       sync.Mutex
	searcher Searcher
	likes    LikeStore
	gesture  Gesture
	logger   *log.Logger
	events   *shared.Broadcaster[Snapshot]

	state   models.ViewState
	tracks  []models.Track
	cursor  int
	dragX   float64
	term    string
	mode    models.SearchMode
	genreID int
	limit   int

	generation uint64
	cancel     context.CancelFunc
}

// NewSession creates an idle session.
func NewSession(searcher Searcher, likes LikeStore, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Session{
		searcher: searcher,
		likes:    likes,
		gesture:  NewGesture(opts.Threshold),
		logger:   logger.WithPrefix("swipe"),
		events:   shared.NewBroadcaster[Snapshot](),
		state:    models.Idle(),
		tracks:   []models.Track{},
		mode:     models.ModeKeyword,
		limit:    DefaultLimit,
	}
}

// Load fetches candidates for term with a keyword search.
func (s *Session) Load(ctx context.Context, term string, limit int) error {
	return s.load(ctx, term, limit, models.ModeKeyword, 0)
}

// LoadPreset fetches candidates using the preset's mode and genre scoping.
func (s *Session) LoadPreset(ctx context.Context, preset models.SearchPreset, limit int) error {
	return s.load(ctx, preset.Term, limit, preset.Mode, preset.GenreID)
}

// Reload repeats the last load.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	term, limit, mode, genreID := s.term, s.limit, s.mode, s.genreID
	s.mu.Unlock()

	return s.load(ctx, term, limit, mode, genreID)
}

func (s *Session) load(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) error {
	term = shared.NormalizeTerm(term)
	if term == "" {
		return fmt.Errorf("%w: empty search term", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = models.Loading()
	s.term, s.limit, s.mode, s.genreID = term, limit, mode, genreID
	s.dragX = 0
	s.publishLocked()
	s.mu.Unlock()

	tracks, err := s.searcher.Search(loadCtx, term, limit, mode, genreID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if gen != s.generation {
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		kind := shared.Classify(err)
		s.state = models.Failed(kind.Message())
		s.logger.Warn("load failed", "term", term, "kind", kind, "error", err)
		s.publishLocked()
		return fmt.Errorf("load %q: %w", term, err)
	}

	s.tracks = append([]models.Track{}, tracks...)
	s.cursor = 0
	if len(s.tracks) == 0 {
		s.state = models.Empty()
	} else {
		s.state = models.Content()
	}
	s.logger.Debug("loaded candidates", "term", term, "count", len(s.tracks))
	s.publishLocked()
	return nil
}

// CurrentTrack returns the track at the cursor.
func (s *Session) CurrentTrack() (models.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (models.Track, bool) {
	if s.cursor < 0 || s.cursor >= len(s.tracks) {
		return models.Track{}, false
	}
	return s.tracks[s.cursor], true
}

// Skip advances without persisting anything.
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
	s.publishLocked()
}

// Like persists the current track and advances. Does nothing without a current track.
//
// Store failures are logged by the store and otherwise ignored; the card still advances.
func (s *Session) Like(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likeLocked(ctx)
	s.publishLocked()
}

func (s *Session) likeLocked(ctx context.Context) {
	track, ok := s.currentLocked()
	if !ok {
		return
	}
	if s.likes != nil && !s.likes.IsLiked(track.ID) {
		if err := s.likes.Like(ctx, track); err != nil {
			s.logger.Debug("like not persisted", "track_id", track.ID, "error", err)
		}
	}
	s.advanceLocked()
}

// advanceLocked moves the cursor forward; the state is content while a track remains, else empty.
func (s *Session) advanceLocked() {
	s.cursor = min(s.cursor+1, len(s.tracks))
	if _, ok := s.currentLocked(); ok {
		s.state = models.Content()
	} else {
		s.state = models.Empty()
	}
}

// Drag sets the horizontal displacement of the card.
func (s *Session) Drag(dx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currentLocked(); !ok {
		return
	}
	s.dragX = dx
	s.publishLocked()
}

// DragBy moves the card by delta.
func (s *Session) DragBy(delta float64) {
	s.mu.Lock()
	x := s.dragX + delta
	s.mu.Unlock()
	s.Drag(x)
}

// Release ends the drag and commits the decision the displacement resolves to.
func (s *Session) Release(ctx context.Context) models.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.gesture.Decision(s.dragX)
	s.commitLocked(ctx, d)
	return d
}

// Commit applies d exactly once and clears the drag. [models.DecisionNone] only clears the drag.
func (s *Session) Commit(ctx context.Context, d models.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(ctx, d)
}

func (s *Session) commitLocked(ctx context.Context, d models.Decision) {
	switch d {
	case models.DecisionLike:
		s.likeLocked(ctx)
	case models.DecisionSkip:
		s.advanceLocked()
	}
	s.dragX = 0
	s.publishLocked()
}

// Gesture returns the decision mapping in use.
func (s *Session) Gesture() Gesture {
	return s.gesture
}

// State returns the current view state.
func (s *Session) State() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the number of cards left including the current one.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks) - s.cursor
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every change, starting with the current one.
func (s *Session) Subscribe(buffer int) (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.SubscribeWith(s.snapshotLocked(), buffer)
}

// Close cancels any in-flight load and closes subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.mu.Unlock()
	s.events.Close()
}

func (s *Session) snapshotLocked() Snapshot {
	track, ok := s.currentLocked()
	snap := Snapshot{
		State:    s.state,
		Track:    track,
		HasTrack: ok,
		Cursor:   s.cursor,
		Total:    len(s.tracks),
		Term:     s.term,
		DragX:    s.dragX,
		Pending:  s.gesture.Decision(s.dragX),
		Rotation: s.gesture.Rotation(s.dragX),
		Opacity:  s.gesture.OverlayOpacity(s.dragX),
	}
	if ok && s.likes != nil {
		snap.Liked = s.likes.IsLiked(track.ID)
	}
	return snap
}

func (s *Session) publishLocked() {
	s.events.Publish(s.snapshotLocked())
}
