// Package supervisor owns the lifecycle of the external inference process.
// At most one instance is alive at any time; start and stop are serialized
// behind a single lock and the process handle never escapes this package.
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
)

// ErrAlreadyRunning is returned by Start when the backend is already up.
var ErrAlreadyRunning = errors.New("backend process is already running")

// ErrNotRunning is returned by Stop when there is nothing to stop.
var ErrNotRunning = errors.New("backend process is not running")

// ErrScriptNotFound is returned by Start when the backend script is missing
// from disk.
var ErrScriptNotFound = errors.New("backend script not found")

// Process is the supervisor's handle on a spawned backend process.
type Process interface {
	// Terminate asks the process to exit.
	Terminate() error
	// Kill forcefully ends the process.
	Kill() error
	// Wait blocks until the process has exited.
	Wait() error
}

// Launcher spawns the external backend process. The default launcher uses
// os/exec; tests substitute a fake.
type Launcher interface {
	Launch(executable, script string) (Process, error)
}

// Supervisor enforces a single live instance of the backend process.
type Supervisor struct {
	mu        sync.Mutex
	proc      Process // nil while stopped
	launcher  Launcher
	python    string
	script    string
	stopGrace time.Duration
}

// New creates a supervisor for the given executable and script. stopGrace is
// how long Stop waits for a clean exit before killing the process.
func New(python, script string, stopGrace time.Duration) *Supervisor {
	return &Supervisor{
		launcher:  execLauncher{},
		python:    python,
		script:    script,
		stopGrace: stopGrace,
	}
}

// SetLauncher replaces the process launcher. Intended for tests.
func (s *Supervisor) SetLauncher(l Launcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launcher = l
}

// Start spawns the backend process. Returns ErrAlreadyRunning if an instance
// is live, ErrScriptNotFound if the script is missing from disk, and a
// wrapped OS error if the spawn itself fails.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != nil {
		return ErrAlreadyRunning
	}

	if _, err := os.Stat(s.script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, s.script)
	}

	proc, err := s.launcher.Launch(s.python, s.script)
	if err != nil {
		return fmt.Errorf("failed to start backend process: %w", err)
	}

	s.proc = proc
	logger.Info("backend process started", "executable", s.python, "script", s.script)
	return nil
}

// Stop terminates the backend process. It signals the process, waits up to
// the grace period for a clean exit, then kills it. Returns ErrNotRunning
// when no instance is live.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc == nil {
		return ErrNotRunning
	}

	proc := s.proc
	s.proc = nil

	if err := proc.Terminate(); err != nil {
		// Termination signal could not be delivered; fall back to kill.
		logger.Warn("terminate signal failed, killing backend process", "error", err)
		_ = proc.Kill()
	}

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	select {
	case <-done:
	case <-time.After(s.stopGrace):
		logger.Warn("backend process did not exit in time, killing it", "grace", s.stopGrace)
		_ = proc.Kill()
		<-done
	}

	logger.Info("backend process stopped")
	return nil
}

// Running reports whether a backend instance is currently live.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}
