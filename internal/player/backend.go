package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/desertthunder/swipebeats/internal/shared"
)

// ErrUnsupported is returned by streams that cannot pause or resume in place.
var ErrUnsupported = errors.New("operation not supported by backend")

// Backend starts audio streams.
type Backend interface {
	Start(ctx context.Context, url string) (Stream, error)
}

// Stream is one running playback.
//
// Done receives the terminal error (nil on natural end) and is then closed.
type Stream interface {
	Pause() error
	Resume() error
	Stop() error
	Done() <-chan error
}

// ExecBackend plays URLs with an external command-line player, e.g. ffplay or mpv.
// The URL is appended as the last argument.
type ExecBackend struct {
	Command string
	Args    []string
}

// NewExecBackend creates a backend from the [player] config section.
func NewExecBackend(cfg shared.PlayerConfig) *ExecBackend {
	return &ExecBackend{Command: cfg.Command, Args: append([]string(nil), cfg.Args...)}
}

// Available reports whether the command can be found on PATH.
func (b *ExecBackend) Available() bool {
	if b.Command == "" {
		return false
	}
	_, err := exec.LookPath(b.Command)
	return err == nil
}

// Start launches the player process.
func (b *ExecBackend) Start(ctx context.Context, url string) (Stream, error) {
	if b.Command == "" {
		return nil, fmt.Errorf("%w: no player command configured", shared.ErrPlayback)
	}

	args := append(append([]string(nil), b.Args...), url)
	cmd := exec.Command(b.Command, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %w", shared.ErrPlayback, b.Command, err)
	}

	s := &execStream{cmd: cmd, done: make(chan error, 1)}
	go s.wait()
	return s, nil
}

type execStream struct {
	cmd     *exec.Cmd
	done    chan error
	mu      sync.Mutex
	stopped bool
}

func (s *execStream) wait() {
	err := s.cmd.Wait()

	s.mu.Lock()
	if s.stopped {
		err = nil
	}
	s.mu.Unlock()

	s.done <- err
	close(s.done)
}

// Pause is not available for external processes; the player stops and replays instead.
func (s *execStream) Pause() error  { return ErrUnsupported }
func (s *execStream) Resume() error { return ErrUnsupported }

func (s *execStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop player: %w", err)
	}
	return nil
}

func (s *execStream) Done() <-chan error { return s.done }
