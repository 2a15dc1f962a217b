package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
	"golang.org/x/text/collate"
)

const (
	// HistoryLimit caps the recent-search list.
	HistoryLimit = 8
	// DefaultLimit is the number of results requested per search.
	DefaultLimit = 25
	// MaxLimit is the largest page the catalog serves.
	MaxLimit = 200
)

// ErrSuperseded is returned by a search whose result was discarded because a newer search started.
var ErrSuperseded = errors.New("search superseded")

// Searcher runs catalog searches. [services.Searcher] satisfies it.
type Searcher interface {
	Search(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error)
}

// History persists the recent-search list. [repositories.HistoryStore] satisfies it.
type History interface {
	Load(ctx context.Context) ([]models.HistoryEntry, error)
	Save(ctx context.Context, entries []models.HistoryEntry) error
	Clear(ctx context.Context) error
}

// Options configures a [Session].
type Options struct {
	Limit   int
	Locale  string                // collation locale for A–Z sorting
	Presets []models.SearchPreset // used to recover genre scoping for recent searches
	Logger  *log.Logger
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Query            string
	Mode             models.SearchMode
	State            models.ViewState
	Results          []models.Track
	AllResults       []models.Track
	Recent           []models.HistoryEntry
	OnlyWithPreview  bool
	Sort             models.SortOption
	Limit            int
	LastSearchedTerm string
	Generation       uint64
}

// scope is the remote query narrowing remembered from the last preset.
type scope struct {
	term    string
	mode    models.SearchMode
	genreID int
	allowed []string
}

// Session orchestrates search, local filtering and history for one Explore view.
type Session struct {
	mu       sync.Mutex
	searcher Searcher
	history  History
	presets  []models.SearchPreset
	logger   *log.Logger
	collator *collate.Collator
	events   *shared.Broadcaster[Snapshot]

	query            string
	limit            int
	onlyWithPreview  bool
	sortOption       models.SortOption
	lastMode         models.SearchMode
	preset           *scope
	state            models.ViewState
	lastSearchedTerm string
	allResults       []models.Track
	results          []models.Track
	recent           []models.HistoryEntry

	generation uint64
	cancel     context.CancelFunc
}

// NewSession creates an idle session and loads the persisted history.
//
// An unreadable history is logged and treated as empty.
func NewSession(ctx context.Context, searcher Searcher, history History, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Session{
		searcher:        searcher,
		history:         history,
		presets:         opts.Presets,
		logger:          logger.WithPrefix("discovery"),
		collator:        newCollator(opts.Locale),
		events:          shared.NewBroadcaster[Snapshot](),
		limit:           clampLimit(opts.Limit),
		onlyWithPreview: true,
		sortOption:      models.SortRelevance,
		lastMode:        models.ModeKeyword,
		state:           models.Idle(),
		allResults:      []models.Track{},
		results:         []models.Track{},
		recent:          []models.HistoryEntry{},
	}

	if history != nil {
		entries, err := history.Load(ctx)
		if err != nil {
			s.logger.Warn("failed to load search history", "error", err)
		} else {
			s.recent = entries
		}
	}

	return s
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}

// LoadPreset makes preset the active query and searches it, superseding any in-flight search.
func (s *Session) LoadPreset(ctx context.Context, preset models.SearchPreset) error {
	term := shared.NormalizeTerm(preset.Term)

	s.mu.Lock()
	s.query = preset.Term
	s.preset = &scope{
		term:    term,
		mode:    preset.Mode,
		genreID: preset.GenreID,
		allowed: append([]string(nil), preset.AllowedPrimaryGenres...),
	}
	s.mu.Unlock()

	if term == "" {
		s.reset()
		return nil
	}
	return s.search(ctx, term, preset.Mode, preset.GenreID, preset.AllowedPrimaryGenres)
}

// SearchCurrentQuery searches the current query text.
//
// An empty query cancels any in-flight search and returns the session to idle with no results.
// forceKeyword ignores the remembered mode. Genre scoping from the last preset is kept only while
// the query still equals that preset's term.
func (s *Session) SearchCurrentQuery(ctx context.Context, forceKeyword bool) error {
	s.mu.Lock()
	term := shared.NormalizeTerm(s.query)
	mode, genreID, allowed := s.lastMode, 0, []string(nil)
	if p := s.preset; p != nil && strings.EqualFold(p.term, term) {
		mode, genreID, allowed = p.mode, p.genreID, p.allowed
	}
	s.mu.Unlock()

	if term == "" {
		s.reset()
		return nil
	}

	if forceKeyword {
		mode, genreID, allowed = models.ModeKeyword, 0, nil
	}
	return s.search(ctx, term, mode, genreID, allowed)
}

// UseRecent searches a term from the history again, reusing its remembered mode (keyword if unknown).
func (s *Session) UseRecent(ctx context.Context, term string) error {
	term = shared.NormalizeTerm(term)
	if term == "" {
		s.reset()
		return nil
	}

	s.mu.Lock()
	mode := models.ModeKeyword
	for _, e := range s.recent {
		if strings.EqualFold(e.Term, term) {
			mode = e.Mode
			break
		}
	}

	genreID, allowed := 0, []string(nil)
	if p, ok := models.FindPreset(s.presets, models.SearchPreset{Term: term, Mode: mode}.Key()); ok {
		genreID, allowed = p.GenreID, p.AllowedPrimaryGenres
	}
	s.query = term
	s.preset = &scope{term: term, mode: mode, genreID: genreID, allowed: allowed}
	s.mu.Unlock()

	return s.search(ctx, term, mode, genreID, allowed)
}

// search runs one remote query. The lock is released while the searcher runs.
func (s *Session) search(ctx context.Context, term string, mode models.SearchMode, genreID int, allowed []string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = models.Loading()
	s.lastSearchedTerm = term
	s.lastMode = mode
	limit := s.limit
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Debug("searching", "term", term, "mode", mode, "genre_id", genreID, "generation", gen)
	tracks, err := s.searcher.Search(searchCtx, term, limit, mode, genreID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if gen != s.generation {
		s.logger.Debug("discarding superseded search", "term", term, "generation", gen, "current", s.generation)
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		kind := shared.Classify(err)
		s.state = models.Failed(kind.Message())
		s.logger.Warn("search failed", "term", term, "kind", kind, "error", err)
		s.publishLocked()
		return fmt.Errorf("search %q: %w", term, err)
	}

	if mode == models.ModeGenre {
		tracks = restrictToGenres(tracks, allowed)
	}
	if tracks == nil {
		tracks = []models.Track{}
	}

	s.allResults = tracks
	s.addToHistoryLocked(ctx, models.HistoryEntry{Term: term, Mode: mode})
	s.applyFiltersLocked(true)
	s.publishLocked()
	return nil
}

// reset cancels any in-flight search and returns to idle with no results.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.state = models.Idle()
	s.lastSearchedTerm = ""
	s.allResults = []models.Track{}
	s.results = []models.Track{}
	s.publishLocked()
}

// ApplyFilters recomputes results from the raw set and, unless loading, the displayed state.
func (s *Session) ApplyFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFiltersLocked(false)
	s.publishLocked()
}

// applyFiltersLocked is a no-op in the error state. While loading, results are refreshed but the
// state only changes when forced. Before the first search the state stays idle.
func (s *Session) applyFiltersLocked(force bool) {
	if s.state.Is(models.ViewError) {
		return
	}

	s.results = filterAndSort(s.allResults, s.onlyWithPreview, s.sortOption, s.collator)

	if s.state.Is(models.ViewLoading) && !force {
		return
	}
	if s.lastSearchedTerm == "" {
		return
	}

	if len(s.results) == 0 {
		s.state = models.Empty()
	} else {
		s.state = models.Content()
	}
}

// SetQuery replaces the query text without searching.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.publishLocked()
}

// SetOnlyWithPreview toggles the preview filter and reapplies filters.
func (s *Session) SetOnlyWithPreview(only bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onlyWithPreview = only
	s.applyFiltersLocked(false)
	s.publishLocked()
}

// SetSortOption changes the ordering and reapplies filters.
func (s *Session) SetSortOption(o models.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortOption = o
	s.applyFiltersLocked(false)
	s.publishLocked()
}

// SetLimit changes the page size, clamped to 1..[MaxLimit]. Reports whether it changed so the
// caller can rerun the current query.
func (s *Session) SetLimit(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n = clampLimit(n)
	if n == s.limit {
		return false
	}
	s.limit = n
	s.publishLocked()
	return true
}

// AddToHistory records entry as the most recent search and persists the list.
func (s *Session) AddToHistory(ctx context.Context, entry models.HistoryEntry) {
	entry.Term = shared.NormalizeTerm(entry.Term)
	if entry.Term == "" {
		return
	}
	if entry.Mode == "" {
		entry.Mode = models.ModeKeyword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addToHistoryLocked(ctx, entry)
	s.publishLocked()
}

func (s *Session) addToHistoryLocked(ctx context.Context, entry models.HistoryEntry) {
	s.recent = pushHistory(s.recent, entry, HistoryLimit)
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, s.recent); err != nil {
		s.logger.Warn("failed to save search history", "error", err)
	}
}

// ClearHistory empties the recent-search list and the persisted copy.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = []models.HistoryEntry{}
	s.publishLocked()
	if s.history == nil {
		return nil
	}
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

// State returns the current view state.
func (s *Session) State() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns a copy of the filtered, sorted results.
func (s *Session) Results() []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Track{}, s.results...)
}

// AllResults returns a copy of the raw result set of the last applied search.
func (s *Session) AllResults() []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Track{}, s.allResults...)
}

// Recent returns a copy of the recent-search list, most recent first.
func (s *Session) Recent() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry{}, s.recent...)
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Limit returns the page size.
func (s *Session) Limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// Snapshot returns a consistent copy of the whole session state.
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

// Close cancels any in-flight search and closes subscriptions.
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
	return Snapshot{
		Query:            s.query,
		Mode:             s.lastMode,
		State:            s.state,
		Results:          append([]models.Track{}, s.results...),
		AllResults:       append([]models.Track{}, s.allResults...),
		Recent:           append([]models.HistoryEntry{}, s.recent...),
		OnlyWithPreview:  s.onlyWithPreview,
		Sort:             s.sortOption,
		Limit:            s.limit,
		LastSearchedTerm: s.lastSearchedTerm,
		Generation:       s.generation,
	}
}

func (s *Session) publishLocked() {
	s.events.Publish(s.snapshotLocked())
}
