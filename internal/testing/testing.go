// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

// SearchCall records one [MockSearcher.Search] invocation.
type SearchCall struct {
	Term    string
	Limit   int
	Mode    models.SearchMode
	GenreID int
}

// MockSearcher is a test double for [services.Searcher].
//
// Results are looked up by lowercased term; SearchFunc, when set, takes precedence. Gate, when
// non-nil, blocks every call until a value is received or the context ends.
type MockSearcher struct {
	mu         sync.Mutex
	Results    map[string][]models.Track
	Err        error
	SearchFunc func(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error)
	Gate       chan struct{}
	calls      []SearchCall
}

// NewMockSearcher creates a MockSearcher returning results for the given terms.
func NewMockSearcher(results map[string][]models.Track) *MockSearcher {
	normalized := make(map[string][]models.Track, len(results))
	for term, tracks := range results {
		normalized[strings.ToLower(term)] = tracks
	}
	return &MockSearcher{Results: normalized}
}

func (m *MockSearcher) Search(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SearchCall{Term: term, Limit: limit, Mode: mode, GenreID: genreID})
	gate, fn, err := m.Gate, m.SearchFunc, m.Err
	tracks := m.Results[strings.ToLower(term)]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", shared.ErrNetwork, ctx.Err())
		}
	}

	if fn != nil {
		return fn(ctx, term, limit, mode, genreID)
	}
	if err != nil {
		return nil, err
	}
	return append([]models.Track(nil), tracks...), nil
}

func (m *MockSearcher) Lookup(ctx context.Context, id int64) (*models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tracks := range m.Results {
		for _, t := range tracks {
			if t.ID == id {
				return &t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
}

func (m *MockSearcher) Name() string { return "mock" }

// Calls returns a copy of the recorded searches.
func (m *MockSearcher) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall(nil), m.calls...)
}

// SetErr changes the error returned by subsequent searches.
func (m *MockSearcher) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// MockLikeRepository is an in-memory [likes.Repository] with failure injection.
type MockLikeRepository struct {
	mu          sync.Mutex
	records     map[int64]*models.LikeRecord
	seq         int
	FailCreate  error
	FailDelete  error
	FailRestore error
	FailList    error
	Restored    int
}

// NewMockLikeRepository creates an empty repository.
func NewMockLikeRepository() *MockLikeRepository {
	return &MockLikeRepository{records: make(map[int64]*models.LikeRecord)}
}

func (m *MockLikeRepository) Create(ctx context.Context, rec *models.LikeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	if _, ok := m.records[rec.TrackID()]; ok {
		return fmt.Errorf("UNIQUE constraint failed: liked_tracks.track_id")
	}
	m.seq++
	rec.SetID(shared.GenerateID())
	rec.SetSequence(m.seq)
	m.records[rec.TrackID()] = rec
	return nil
}

func (m *MockLikeRepository) Delete(ctx context.Context, trackID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, ok := m.records[trackID]; !ok {
		return fmt.Errorf("%w: %d", shared.ErrLikeNotFound, trackID)
	}
	delete(m.records, trackID)
	return nil
}

func (m *MockLikeRepository) Restore(ctx context.Context, rec *models.LikeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restored++
	if m.FailRestore != nil {
		return m.FailRestore
	}
	if _, ok := m.records[rec.TrackID()]; !ok {
		m.records[rec.TrackID()] = rec
	}
	return nil
}

func (m *MockLikeRepository) List(ctx context.Context, criteria map[string]any) ([]*models.LikeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailList != nil {
		return nil, m.FailList
	}
	records := make([]*models.LikeRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	return records, nil
}

// Len returns the number of stored records.
func (m *MockLikeRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Has reports whether a record exists for trackID.
func (m *MockLikeRepository) Has(trackID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[trackID]
	return ok
}

// MemoryHistory is an in-memory search history with failure injection.
type MemoryHistory struct {
	mu       sync.Mutex
	Entries  []models.HistoryEntry
	FailSave error
	Cleared  int
}

func (h *MemoryHistory) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.HistoryEntry(nil), h.Entries...), nil
}

func (h *MemoryHistory) Save(ctx context.Context, entries []models.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailSave != nil {
		return h.FailSave
	}
	h.Entries = append([]models.HistoryEntry(nil), entries...)
	return nil
}

func (h *MemoryHistory) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Entries = nil
	h.Cleared++
	return nil
}

// Stored returns a copy of the persisted entries.
func (h *MemoryHistory) Stored() []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.HistoryEntry(nil), h.Entries...)
}

// Track builds a complete track with a preview URL.
func Track(id int64, name, artist, genre string) models.Track {
	return models.Track{
		ID:                id,
		TrackName:         name,
		ArtistName:        artist,
		ArtworkURL:        fmt.Sprintf("https://is1.example.com/%d.jpg", id),
		PreviewURL:        fmt.Sprintf("https://audio.example.com/%d.m4a", id),
		CollectionViewURL: fmt.Sprintf("https://music.example.com/album/%d", id),
		PrimaryGenreName:  genre,
	}
}

// Tracks builds n tracks with ids starting at 1 in the given genre.
func Tracks(n int, genre string) []models.Track {
	tracks := make([]models.Track, n)
	for i := range n {
		id := int64(i + 1)
		tracks[i] = Track(id, fmt.Sprintf("Track %02d", id), fmt.Sprintf("Artist %02d", id), genre)
	}
	return tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
