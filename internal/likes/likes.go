// Package likes implements the like/unlike contract shared by the discovery and swipe sessions.
//
// [Store] keeps an in-memory mirror of the liked_tracks table so membership checks never touch
// storage. The durable write always happens first; the mirror follows only on success, and a failed
// unlike is compensated by restoring the deleted row.
package likes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

// Repository is the persistence the store depends on. [repositories.LikeRepository] satisfies it.
type Repository interface {
	Create(ctx context.Context, rec *models.LikeRecord) error
	Delete(ctx context.Context, trackID int64) error
	Restore(ctx context.Context, rec *models.LikeRecord) error
	List(ctx context.Context, criteria map[string]any) ([]*models.LikeRecord, error)
}

// Snapshot is the published view of the liked set.
type Snapshot struct {
	IDs []int64 // most recent first
}

// Contains reports whether id is in the snapshot.
func (s Snapshot) Contains(id int64) bool { return slices.Contains(s.IDs, id) }

// Store is the liked-track set with an in-memory mirror of durable state.
type Store struct {
	mu     sync.RWMutex
	repo   Repository
	mirror map[int64]*models.LikeRecord
	logger *log.Logger
	events *shared.Broadcaster[Snapshot]
}

// NewStore creates a Store and populates the mirror from repo.
func NewStore(ctx context.Context, repo Repository, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	records, err := repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load liked tracks: %w", err)
	}

	s := &Store{
		repo:   repo,
		mirror: make(map[int64]*models.LikeRecord, len(records)),
		logger: logger.WithPrefix("likes"),
		events: shared.NewBroadcaster[Snapshot](),
	}
	for _, rec := range records {
		s.mirror[rec.TrackID()] = rec
	}

	s.logger.Debug("loaded liked tracks", "count", len(s.mirror))
	return s, nil
}

// IsLiked reports whether id is liked.
func (s *Store) IsLiked(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.mirror[id]
	return ok
}

// Like persists track unless it is already liked.
//
// On failure the mirror is left without the id and an error wrapping [shared.ErrPersistence] is
// returned after logging; callers may ignore it.
func (s *Store) Like(ctx context.Context, track models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mirror[track.ID]; ok {
		return nil
	}

	rec := models.NewLikeRecord(track)
	if err := s.repo.Create(ctx, rec); err != nil {
		delete(s.mirror, track.ID)
		s.logger.Error("failed to like track", "track_id", track.ID, "error", err)
		return fmt.Errorf("%w: like %d: %w", shared.ErrPersistence, track.ID, err)
	}

	s.mirror[track.ID] = rec
	s.publishLocked()
	return nil
}

// Unlike deletes the record for id if present.
//
// A row already missing from storage counts as deleted. If the durable delete fails the record
// is restored in storage and in the mirror.
func (s *Store) Unlike(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.mirror[id]
	if !ok {
		return nil
	}

	delete(s.mirror, id)
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, shared.ErrLikeNotFound) {
		s.mirror[id] = rec
		if rerr := s.repo.Restore(ctx, rec); rerr != nil {
			s.logger.Error("failed to restore liked track after failed unlike", "track_id", id, "error", rerr)
		}
		s.logger.Error("failed to unlike track", "track_id", id, "error", err)
		return fmt.Errorf("%w: unlike %d: %w", shared.ErrPersistence, id, err)
	}

	s.publishLocked()
	return nil
}

// Toggle likes track if it is not liked and unlikes it otherwise. Returns the new liked state.
func (s *Store) Toggle(ctx context.Context, track models.Track) (bool, error) {
	if s.IsLiked(track.ID) {
		if err := s.Unlike(ctx, track.ID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.Like(ctx, track); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the record for id.
func (s *Store) Get(id int64) (*models.LikeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.mirror[id]
	return rec, ok
}

// List returns liked records, most recent first.
func (s *Store) List() []*models.LikeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of liked tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mirror)
}

// Snapshot returns the current liked-id set.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of snapshots published after every successful change.
// The current snapshot is delivered first.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.events.SubscribeWith(s.snapshotLocked(), buffer)
}

// Close closes every subscription.
func (s *Store) Close() {
	s.events.Close()
}

func (s *Store) sortedLocked() []*models.LikeRecord {
	records := make([]*models.LikeRecord, 0, len(s.mirror))
	for _, rec := range s.mirror {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b *models.LikeRecord) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return b.Sequence() - a.Sequence()
	})
	return records
}

func (s *Store) snapshotLocked() Snapshot {
	records := s.sortedLocked()
	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.TrackID()
	}
	return Snapshot{IDs: ids}
}

func (s *Store) publishLocked() {
	s.events.Publish(s.snapshotLocked())
}
