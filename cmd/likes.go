package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/swipebeats/internal/formatter"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/urfave/cli/v3"
)

func trackIDArg(cmd *cli.Command) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg("track-id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: track-id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: track-id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// LikesList prints liked tracks, most recent first, optionally filtered by genre or text.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.likeRepository(ctx)
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if genre := cmd.String("genre"); genre != "" {
		criteria["genre"] = genre
	}
	if search := cmd.String("search"); search != "" {
		criteria["search"] = search
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	records, err := repo.List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(records)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	r.writePlainHeader(fmt.Sprintf("Liked tracks (%d)", len(records)))
	for i, rec := range records {
		r.writePlain("%3d. %-12d %s - %s", i+1, rec.TrackID(), rec.ArtistName(), rec.TrackName())
		if rec.PrimaryGenreName() != "" {
			r.writePlain(" [%s]", rec.PrimaryGenreName())
		}
		r.writePlain("  %s\n", rec.CreatedAt().Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// LikesAdd resolves a catalog id and likes the track.
func (r *Runner) LikesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := trackIDArg(cmd)
	if err != nil {
		return err
	}

	store, err := r.likeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if rec, ok := store.Get(id); ok {
		r.writePlain("Already liked: %s - %s\n", rec.ArtistName(), rec.TrackName())
		return nil
	}

	track, err := r.searcher.Lookup(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up track %d: %w", id, err)
	}

	if err := store.Like(ctx, *track); err != nil {
		return err
	}

	r.logger.Info("liked track", "track_id", id)
	r.writePlain("♥ Liked %s - %s\n", track.ArtistName, track.TrackName)
	return nil
}

// LikesRemove unlikes a track.
func (r *Runner) LikesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := trackIDArg(cmd)
	if err != nil {
		return err
	}

	store, err := r.likeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, ok := store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrLikeNotFound, id)
	}

	if err := store.Unlike(ctx, id); err != nil {
		return err
	}

	r.logger.Info("unliked track", "track_id", id)
	r.writePlain("✓ Removed %s - %s\n", rec.ArtistName(), rec.TrackName())
	return nil
}

// LikesOpen opens the catalog page of a liked track in the system browser.
func (r *Runner) LikesOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := trackIDArg(cmd)
	if err != nil {
		return err
	}

	repo, err := r.likeRepository(ctx)
	if err != nil {
		return err
	}
	rec, err := repo.GetByTrackID(ctx, id)
	if err != nil {
		return err
	}

	link := rec.CollectionViewURL()
	if link == "" {
		return fmt.Errorf("%w: track %d has no catalog link", shared.ErrInvalidArgument, id)
	}
	if err := r.openURL(link); err != nil {
		return err
	}

	r.writePlain("Opened %s\n", link)
	return nil
}

// LikesExport writes liked tracks to a file in the chosen format.
//
// Markdown exports go to a directory with a README.md and, with --cover, the newest artwork.
func (r *Runner) LikesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	repo, err := r.likeRepository(ctx)
	if err != nil {
		return err
	}
	records, err := repo.List(ctx, nil)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	r.logger.Info("exporting liked tracks", "format", format, "count", len(records))

	if format == formatter.FormatMarkdown {
		result, err := formatter.WriteMarkdownExport(records, output, cmd.Bool("cover"))
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", len(records), result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	path, err := formatter.WriteExport(records, format, output)
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d tracks to %s\n", len(records), path)
	return nil
}
