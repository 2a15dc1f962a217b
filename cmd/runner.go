package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/discovery"
	"github.com/desertthunder/swipebeats/internal/likes"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/repositories"
	"github.com/desertthunder/swipebeats/internal/services"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	searcher   services.Searcher
	backend    player.Backend
	openURL    func(string) error
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from ConfigPath (or the --config flag) before the first command runs.
// Searcher and Backend default to the iTunes client and the external player command from that config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Searcher   services.Searcher
	Backend    player.Backend
	OpenURL    func(string) error
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		searcher:   opts.Searcher,
		backend:    opts.Backend,
		openURL:    opts.OpenURL,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, configCommand, searchCommand, presetsCommand, historyCommand,
		likesCommand, playCommand, exploreCommand, swipeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration and builds the default clients. It runs once before any command action.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		path := cmd.String("config")
		if path == "" {
			path = r.configPath
		}
		config, err := r.loadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configPath = path
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Log.Level
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	if r.searcher == nil {
		r.searcher = services.NewITunesServiceFromConfig(r.config.Search, r.logger)
	}
	if r.backend == nil {
		r.backend = player.NewExecBackend(r.config.Player)
	}
	return ctx, nil
}

// After releases the database handle.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close closes the database if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// loadConfig reads path when it exists and falls back to the embedded defaults, then applies env overrides.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// database opens the configured database on first use and applies pending migrations.
func (r *Runner) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func (r *Runner) likeRepository(ctx context.Context) (*repositories.LikeRepository, error) {
	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.NewLikeRepository(db), nil
}

func (r *Runner) likeStore(ctx context.Context) (*likes.Store, error) {
	repo, err := r.likeRepository(ctx)
	if err != nil {
		return nil, err
	}
	return likes.NewStore(ctx, repo, r.logger)
}

func (r *Runner) history(ctx context.Context) (*repositories.HistoryStore, error) {
	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.NewHistoryStore(repositories.NewSettingsRepository(db), r.logger), nil
}

// discoverySession builds a session over the persisted search history.
func (r *Runner) discoverySession(ctx context.Context) (*discovery.Session, error) {
	history, err := r.history(ctx)
	if err != nil {
		return nil, err
	}
	return discovery.NewSession(ctx, r.searcher, history, discovery.Options{
		Limit:   r.config.Search.Limit,
		Locale:  r.config.Search.Locale,
		Presets: r.config.SearchPresets(),
		Logger:  r.logger,
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
