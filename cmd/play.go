package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play plays a preview until it ends or the command is interrupted.
//
// The track is taken from the liked tracks when present and looked up in the catalog otherwise.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	pl := player.New(r.backend, r.logger)
	defer pl.Close()

	if url := cmd.String("url"); url != "" {
		if err := pl.Play(ctx, url); err != nil {
			return err
		}
		r.writePlain("▶ %s\n", url)
	} else {
		track, err := r.resolveTrack(ctx, cmd)
		if err != nil {
			return err
		}
		if err := pl.PlayTrack(ctx, track); err != nil {
			return err
		}
		r.writePlain("▶ %s - %s\n", track.ArtistName, track.TrackName)
	}

	updates, cancel := pl.Subscribe(shared.DefaultSubscriberBuffer)
	defer cancel()
	return r.waitForPlayback(ctx, pl, updates)
}

func (r *Runner) resolveTrack(ctx context.Context, cmd *cli.Command) (models.Track, error) {
	id, err := trackIDArg(cmd)
	if err != nil {
		return models.Track{}, err
	}

	store, err := r.likeStore(ctx)
	if err != nil {
		return models.Track{}, err
	}
	defer store.Close()

	if rec, ok := store.Get(id); ok {
		return rec.Track(), nil
	}

	track, err := r.searcher.Lookup(ctx, id)
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to look up track %d: %w", id, err)
	}
	return *track, nil
}

// waitForPlayback blocks until the player leaves the playing state or ctx ends, then stops playback.
func (r *Runner) waitForPlayback(ctx context.Context, pl *player.Player, updates <-chan player.Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			pl.Stop()
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			switch snap.State {
			case player.StateStopped:
				return nil
			case player.StateFailed:
				return fmt.Errorf("%w: %s", shared.ErrPlayback, snap.URL)
			}
		}
	}
}
