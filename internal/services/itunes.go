// iTunes Search API [Searcher] implementation
//
// Talks to the public catalog at https://itunes.apple.com. No authentication is required.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultITunesBaseURL = "https://itunes.apple.com"
	defaultTimeout       = 15 * time.Second
	defaultLimit         = 25
	maxLimit             = 200
)

// ITunesSearchResponse is the envelope returned by /search and /lookup.
type ITunesSearchResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []ITunesTrack `json:"results"`
}

// ITunesTrack is a raw catalog record. Every field is optional on the wire.
type ITunesTrack struct {
	WrapperType       *string `json:"wrapperType"`
	TrackID           *int64  `json:"trackId"`
	ArtistName        *string `json:"artistName"`
	TrackName         *string `json:"trackName"`
	ArtworkURL100     *string `json:"artworkUrl100"`
	PreviewURL        *string `json:"previewUrl"`
	CollectionViewURL *string `json:"collectionViewUrl"`
	PrimaryGenreName  *string `json:"primaryGenreName"`
}

// ToDomain converts the record into a [models.Track].
// Returns false when trackId, artistName or trackName is missing or blank.
func (t ITunesTrack) ToDomain() (models.Track, bool) {
	if t.TrackID == nil || t.ArtistName == nil || t.TrackName == nil {
		return models.Track{}, false
	}

	artist, name := strings.TrimSpace(*t.ArtistName), strings.TrimSpace(*t.TrackName)
	if artist == "" || name == "" {
		return models.Track{}, false
	}

	return models.Track{
		ID:                *t.TrackID,
		ArtistName:        artist,
		TrackName:         name,
		ArtworkURL:        optionalURL(t.ArtworkURL100),
		PreviewURL:        optionalURL(t.PreviewURL),
		CollectionViewURL: optionalURL(t.CollectionViewURL),
		PrimaryGenreName:  optionalString(t.PrimaryGenreName),
	}, true
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// optionalURL keeps only absolute http(s) URLs.
func optionalURL(s *string) string {
	raw := optionalString(s)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return raw
}

// ITunesOptions configures an [ITunesService].
type ITunesOptions struct {
	BaseURL    string
	Country    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second; zero disables limiting
	HTTPClient *http.Client
	Logger     *log.Logger
}

// ITunesService implements the Searcher interface for the iTunes Search API.
type ITunesService struct {
	baseURL    string
	country    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewITunesService creates a new iTunes catalog client.
func NewITunesService(opts ITunesOptions) *ITunesService {
	svc := &ITunesService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		country:    opts.Country,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}

	if svc.baseURL == "" {
		svc.baseURL = defaultITunesBaseURL
	}
	if svc.timeout <= 0 {
		svc.timeout = defaultTimeout
	}
	if svc.httpClient == nil {
		svc.httpClient = http.DefaultClient
	}
	if svc.logger == nil {
		svc.logger = shared.NewLogger(nil)
	}
	if opts.RateLimit > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return svc
}

// NewITunesServiceFromConfig creates a client from the [search] config section.
func NewITunesServiceFromConfig(cfg shared.SearchConfig, logger *log.Logger) *ITunesService {
	return NewITunesService(ITunesOptions{
		BaseURL:   cfg.BaseURL,
		Country:   cfg.Country,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
}

// Name returns the service name.
func (s *ITunesService) Name() string {
	return "iTunes"
}

// Search queries GET /search scoped by mode.
//
// A genre query with an explicit genre id that yields no usable tracks is re-issued once as a
// plain keyword query for term.
func (s *ITunesService) Search(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error) {
	term = shared.NormalizeTerm(term)
	if term == "" {
		return []models.Track{}, nil
	}

	tracks, err := s.search(ctx, s.searchQuery(term, limit, mode, genreID))
	if err != nil {
		return nil, err
	}

	if mode == models.ModeGenre && genreID > 0 && len(tracks) == 0 {
		s.logger.Debug("genre query returned nothing, retrying as keyword", "term", term, "genre_id", genreID)
		return s.search(ctx, s.searchQuery(term, limit, models.ModeKeyword, 0))
	}

	return tracks, nil
}

// Lookup resolves a single track via GET /lookup?id=.
func (s *ITunesService) Lookup(ctx context.Context, id int64) (*models.Track, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: track id must be positive", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))
	params.Set("entity", "song")
	s.setCountry(params)

	var resp ITunesSearchResponse
	if err := s.doRequest(ctx, "/lookup", params, &resp); err != nil {
		return nil, err
	}

	for _, raw := range resp.Results {
		if track, ok := raw.ToDomain(); ok && track.ID == id {
			return &track, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
}

func (s *ITunesService) search(ctx context.Context, params url.Values) ([]models.Track, error) {
	var resp ITunesSearchResponse
	if err := s.doRequest(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Results))
	for _, raw := range resp.Results {
		if track, ok := raw.ToDomain(); ok {
			tracks = append(tracks, track)
		}
	}

	if dropped := len(resp.Results) - len(tracks); dropped > 0 {
		s.logger.Debug("dropped incomplete catalog records", "dropped", dropped, "kept", len(tracks))
	}

	return tracks, nil
}

// searchQuery builds the /search parameters for a mode.
func (s *ITunesService) searchQuery(term string, limit int, mode models.SearchMode, genreID int) url.Values {
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limit))
	s.setCountry(params)

	switch mode {
	case models.ModeGenre:
		if genreID > 0 {
			params.Set("term", strconv.Itoa(genreID))
			params.Set("attribute", "genreIndex")
		}
	case models.ModeArtist:
		params.Set("attribute", "artistTerm")
	case models.ModeSong:
		params.Set("attribute", "songTerm")
	}

	return params
}

func (s *ITunesService) setCountry(params url.Values) {
	if s.country != "" {
		params.Set("country", s.country)
	}
}

func (s *ITunesService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %w", shared.ErrNetwork, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	apiURL := s.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: iTunes API error: status %d", shared.ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: failed to read response: %w", shared.ErrNetwork, err)
		}
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrDecoding, err)
	}

	return nil
}
