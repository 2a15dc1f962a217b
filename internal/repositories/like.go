package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

const likeColumns = `id, sequence, track_id, track_name, artist_name, artwork_url, preview_url, collection_view_url, primary_genre_name, created_at`

// LikeRepository persists [models.LikeRecord] values in the liked_tracks table.
type LikeRepository struct {
	db *sql.DB
}

// NewLikeRepository creates a new LikeRepository with the given database connection
func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a new record with a generated ID and sequence.
// Fails if the track is already liked.
func (r *LikeRepository) Create(ctx context.Context, rec *models.LikeRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(ctx, tx, "liked_tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO liked_tracks (` + likeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, likeArgs(id, sequence, rec)...); err != nil {
		return fmt.Errorf("failed to insert liked track %d: %w", rec.TrackID(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit liked track: %w", err)
	}

	rec.SetID(id)
	rec.SetSequence(sequence)
	return nil
}

// Restore reinserts a previously persisted record unchanged. A row already present for the track is kept.
func (r *LikeRepository) Restore(ctx context.Context, rec *models.LikeRecord) error {
	if rec.ID() == "" {
		return fmt.Errorf("cannot restore unsaved record for track %d", rec.TrackID())
	}

	query := `INSERT OR IGNORE INTO liked_tracks (` + likeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, likeArgs(rec.ID(), rec.Sequence(), rec)...); err != nil {
		return fmt.Errorf("failed to restore liked track %d: %w", rec.TrackID(), err)
	}
	return nil
}

// GetByTrackID retrieves the record for a catalog track id.
func (r *LikeRepository) GetByTrackID(ctx context.Context, trackID int64) (*models.LikeRecord, error) {
	query := `SELECT ` + likeColumns + ` FROM liked_tracks WHERE track_id = ?`

	rec, err := scanLike(r.db.QueryRowContext(ctx, query, trackID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrLikeNotFound, trackID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan liked track: %w", err)
	}
	return rec, nil
}

// Delete removes the record for a catalog track id.
func (r *LikeRepository) Delete(ctx context.Context, trackID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM liked_tracks WHERE track_id = ?", trackID)
	if err != nil {
		return fmt.Errorf("failed to delete liked track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", shared.ErrLikeNotFound, trackID)
	}

	return nil
}

// List retrieves liked tracks, most recent first.
//
// Supported criteria: "genre" (string, case-insensitive match), "search" (string, matched against
// track and artist name) and "limit" (int).
func (r *LikeRepository) List(ctx context.Context, criteria map[string]any) ([]*models.LikeRecord, error) {
	query := `SELECT ` + likeColumns + ` FROM liked_tracks WHERE 1 = 1`
	args := []any{}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND primary_genre_name = ? COLLATE NOCASE"
		args = append(args, genre)
	}

	if search, ok := criteria["search"].(string); ok && strings.TrimSpace(search) != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		query += " AND (track_name LIKE ? OR artist_name LIKE ?)"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY created_at DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked tracks: %w", err)
	}
	defer rows.Close()

	var records []*models.LikeRecord
	for rows.Next() {
		rec, err := scanLike(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked track: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of liked tracks.
func (r *LikeRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM liked_tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count liked tracks: %w", err)
	}
	return n, nil
}

func likeArgs(id string, sequence int, rec *models.LikeRecord) []any {
	return []any{
		id,
		sequence,
		rec.TrackID(),
		rec.TrackName(),
		rec.ArtistName(),
		rec.ArtworkURL(),
		rec.PreviewURL(),
		rec.CollectionViewURL(),
		rec.PrimaryGenreName(),
		rec.CreatedAt().UTC(),
	}
}

func scanLike(row scanner) (*models.LikeRecord, error) {
	var (
		id        string
		sequence  int
		track     models.Track
		createdAt time.Time
	)

	err := row.Scan(
		&id,
		&sequence,
		&track.ID,
		&track.TrackName,
		&track.ArtistName,
		&track.ArtworkURL,
		&track.PreviewURL,
		&track.CollectionViewURL,
		&track.PrimaryGenreName,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	return models.RestoreLikeRecord(id, sequence, track, createdAt), nil
}
