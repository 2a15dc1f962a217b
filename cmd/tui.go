package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/desertthunder/swipebeats/internal/swipe"
	"github.com/desertthunder/swipebeats/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/swipebeats-tui.log"

const defaultDeckSize = 25

// TUI launches the interactive terminal UI on the explore view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	return r.runTUI(ctx, ui.ExploreView, r.swipeDeck(cmd), defaultDeckSize)
}

// Explore is [Runner.TUI] under its own name.
func (r *Runner) Explore(ctx context.Context, cmd *cli.Command) error {
	return r.TUI(ctx, cmd)
}

// Swipe launches the TUI on the swipe view with the deck chosen by --term or --preset.
func (r *Runner) Swipe(ctx context.Context, cmd *cli.Command) error {
	if name := cmd.String("preset"); name != "" {
		if _, ok := models.FindPreset(r.config.SearchPresets(), name); !ok {
			return fmt.Errorf("%w: no preset named %q", shared.ErrInvalidPreset, name)
		}
	}
	return r.runTUI(ctx, ui.SwipeView, r.swipeDeck(cmd), cmd.Int("limit"))
}

// swipeDeck picks the preset for the swipe deck: --preset, then --term, then the configured swipe term.
func (r *Runner) swipeDeck(cmd *cli.Command) models.SearchPreset {
	if name := cmd.String("preset"); name != "" {
		if p, ok := models.FindPreset(r.config.SearchPresets(), name); ok {
			return p
		}
	}
	term := cmd.String("term")
	if term == "" {
		term = r.config.Swipe.Term
	}
	return models.SearchPreset{Title: term, Term: term, Mode: models.ModeKeyword}
}

func (r *Runner) runTUI(ctx context.Context, view ui.ViewState, deck models.SearchPreset, limit int) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = defaultTUILog
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	store, err := r.likeStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	explore, err := r.discoverySession(ctx)
	if err != nil {
		return err
	}
	defer explore.Close()

	sw := swipe.NewSession(r.searcher, store, swipe.Options{Threshold: r.config.Swipe.Threshold, Logger: r.logger})
	defer sw.Close()

	pl := player.New(r.backend, r.logger)
	defer pl.Close()

	model := ui.NewModel(ctx, explore, sw, store, pl, ui.Options{
		Presets:     r.config.SearchPresets(),
		SwipePreset: deck,
		SwipeLimit:  limit,
		InitialView: view,
		OpenURL:     r.openURL,
		Logger:      r.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
