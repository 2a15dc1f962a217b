package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/urfave/cli/v3"
)

func parseSort(name string) (models.SortOption, error) {
	switch strings.ToLower(name) {
	case "", "relevance":
		return models.SortRelevance, nil
	case "track", "title":
		return models.SortTrackAZ, nil
	case "artist":
		return models.SortArtistAZ, nil
	default:
		return 0, fmt.Errorf("%w: unknown sort %q (relevance, track, artist)", shared.ErrInvalidFlag, name)
	}
}

// Search runs one search through a discovery session, which records it in the search history.
//
// Without a term or --preset the configured default preset is used.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	term := strings.Join(cmd.Args().Slice(), " ")

	mode, err := models.ParseSearchMode(cmd.String("mode"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	sort, err := parseSort(cmd.String("sort"))
	if err != nil {
		return err
	}

	var preset models.SearchPreset
	switch name := cmd.String("preset"); {
	case name != "":
		p, ok := models.FindPreset(r.config.SearchPresets(), name)
		if !ok {
			return fmt.Errorf("%w: no preset named %q", shared.ErrInvalidPreset, name)
		}
		preset = p
	case strings.TrimSpace(term) == "":
		preset = r.config.DefaultSearchPreset()
	default:
		preset = models.SearchPreset{Title: term, Term: term, Mode: mode, GenreID: cmd.Int("genre-id")}
	}

	session, err := r.discoverySession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if limit := cmd.Int("limit"); limit > 0 {
		session.SetLimit(limit)
	}
	session.SetOnlyWithPreview(!cmd.Bool("all"))
	session.SetSortOption(sort)

	r.logger.Info("searching catalog", "term", preset.Term, "mode", preset.Mode, "source", r.searcher.Name())

	if err := session.LoadPreset(ctx, preset); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	snap := session.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snap.Results, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%s) • %d of %d tracks", snap.LastSearchedTerm, snap.Mode, len(snap.Results), len(snap.AllResults)))
	if snap.State.Is(models.ViewEmpty) {
		r.writePlain("No tracks found.\n")
		if !cmd.Bool("all") && len(snap.AllResults) > 0 {
			r.writePlain("Use --all to include tracks without a preview.\n")
		}
		return nil
	}
	for i, t := range snap.Results {
		r.writePlain("%3d. %-12d %s - %s", i+1, t.ID, t.ArtistName, t.TrackName)
		if t.PrimaryGenreName != "" {
			r.writePlain(" [%s]", t.PrimaryGenreName)
		}
		r.writePlain("\n")
	}
	return nil
}

// Presets lists the configured preset catalog, marking the default.
func (r *Runner) Presets(ctx context.Context, cmd *cli.Command) error {
	presets := r.config.SearchPresets()
	if cmd.Bool("json") {
		return r.writeJSON(presets, cmd.Bool("pretty"))
	}

	def := r.config.DefaultSearchPreset().Key()
	r.writePlainHeader("Presets")
	for _, p := range presets {
		mark := " "
		if p.Key() == def {
			mark = "*"
		}
		r.writePlain("%s %-20s %-28s", mark, p.Title, p.Key())
		if p.HasGenre() {
			r.writePlain(" genre=%d", p.GenreID)
		}
		if len(p.AllowedPrimaryGenres) > 0 {
			r.writePlain(" only=%s", strings.Join(p.AllowedPrimaryGenres, ","))
		}
		r.writePlain("\n")
	}
	return nil
}

// HistoryList prints the recent searches, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, err := r.history(ctx)
	if err != nil {
		return err
	}
	entries, err := history.Load(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	if len(entries) == 0 {
		r.writePlain("No recent searches.\n")
		return nil
	}
	for i, e := range entries {
		r.writePlain("%d. %s (%s)\n", i+1, e.Term, e.Mode)
	}
	return nil
}

// HistoryClear removes all recent searches.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	history, err := r.history(ctx)
	if err != nil {
		return err
	}
	if err := history.Clear(ctx); err != nil {
		return err
	}
	r.writePlain("✓ Search history cleared\n")
	return nil
}
