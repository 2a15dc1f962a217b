package services

import (
	"context"

	"github.com/desertthunder/swipebeats/internal/models"
)

// Searcher defines the interface for a remote music catalog.
type Searcher interface {
	// Search returns normalized tracks for term, scoped by mode.
	//
	// genreID is only consulted for [models.ModeGenre]; zero means no explicit genre.
	// Non-2xx responses wrap [shared.ErrNetwork] and malformed payloads wrap [shared.ErrDecoding].
	Search(ctx context.Context, term string, limit int, mode models.SearchMode, genreID int) ([]models.Track, error)

	// Lookup resolves a single track by catalog id.
	// Returns [shared.ErrTrackNotFound] when the catalog has no usable record.
	Lookup(ctx context.Context, id int64) (*models.Track, error)

	// Name returns the name of the catalog (e.g., "iTunes")
	Name() string
}

