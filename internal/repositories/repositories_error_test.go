package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

func TestLikeRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewLikeRepository(db)
			rec := models.NewLikeRecord(models.Track{ID: 1, ArtistName: "a"})

			if err := repo.Create(ctx, rec); err == nil {
				t.Fatal("expected validation error for empty track name")
			}
		})

		t.Run("DuplicateTrack", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewLikeRepository(db)
			if err := repo.Create(ctx, models.NewLikeRecord(testTrack(1, "t", "a", ""))); err != nil {
				t.Fatalf("failed to create first record: %v", err)
			}

			dup := models.NewLikeRecord(testTrack(1, "t", "a", ""))
			if err := repo.Create(ctx, dup); err == nil {
				t.Fatal("expected error when liking the same track twice")
			}
			if dup.ID() != "" {
				t.Error("failed create should not assign an ID")
			}

			count, _ := repo.Count(ctx)
			if count != 1 {
				t.Errorf("expected 1 record, got %d", count)
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			repo := NewLikeRepository(db)
			if err := repo.Create(ctx, models.NewLikeRecord(testTrack(1, "t", "a", ""))); err == nil {
				t.Fatal("expected error on closed database")
			}
		})
	})

	t.Run("GetByTrackID", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewLikeRepository(db).GetByTrackID(ctx, 404)
			if !errors.Is(err, shared.ErrLikeNotFound) {
				t.Fatalf("expected ErrLikeNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			err := NewLikeRepository(db).Delete(ctx, 404)
			if !errors.Is(err, shared.ErrLikeNotFound) {
				t.Fatalf("expected ErrLikeNotFound, got %v", err)
			}
		})
	})

	t.Run("Restore", func(t *testing.T) {
		t.Run("Unsaved", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewLikeRepository(db).Restore(ctx, models.NewLikeRecord(testTrack(1, "t", "a", ""))); err == nil {
				t.Fatal("expected error restoring an unsaved record")
			}
		})
	})
}

func TestSettingsRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		t.Run("Absent", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewSettingsRepository(db).Get(ctx, "missing")
			if !errors.Is(err, shared.ErrSettingAbsent) {
				t.Fatalf("expected ErrSettingAbsent, got %v", err)
			}
		})
	})

	t.Run("Set", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			if err := NewSettingsRepository(db).Set(ctx, "k", "v"); err == nil {
				t.Fatal("expected error on closed database")
			}
		})
	})
}
