package supervisor

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcess records lifecycle calls and lets tests control Wait behavior.
type fakeProcess struct {
	mu         sync.Mutex
	terminated bool
	killed     bool
	waitDelay  time.Duration
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	return nil
}

func (p *fakeProcess) Wait() error {
	time.Sleep(p.waitDelay)
	return nil
}

func (p *fakeProcess) wasTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// fakeLauncher counts launches and hands out fake processes.
type fakeLauncher struct {
	launches  atomic.Int32
	waitDelay time.Duration
	err       error
	lastProc  *fakeProcess
}

func (l *fakeLauncher) Launch(_, _ string) (Process, error) {
	l.launches.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	l.lastProc = &fakeProcess{waitDelay: l.waitDelay}
	return l.lastProc, nil
}

func newTestSupervisor(t *testing.T, launcher Launcher) *Supervisor {
	t.Helper()

	script := filepath.Join(t.TempDir(), "ai_chatbot.py")
	require.NoError(t, os.WriteFile(script, []byte("print('ok')\n"), 0600))

	s := New("python", script, 100*time.Millisecond)
	s.SetLauncher(launcher)
	return s
}

func TestSupervisor_StartThenStop(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestSupervisor(t, launcher)

	require.NoError(t, s.Start())
	assert.True(t, s.Running())

	require.NoError(t, s.Stop())
	assert.False(t, s.Running())
	assert.True(t, launcher.lastProc.wasTerminated())
	assert.False(t, launcher.lastProc.wasKilled())
}

func TestSupervisor_Start_AlreadyRunning(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestSupervisor(t, launcher)

	require.NoError(t, s.Start())
	err := s.Start()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, int32(1), launcher.launches.Load())
}

func TestSupervisor_Start_ScriptMissing(t *testing.T) {
	launcher := &fakeLauncher{}
	s := New("python", filepath.Join(t.TempDir(), "nope.py"), time.Second)
	s.SetLauncher(launcher)

	err := s.Start()
	assert.ErrorIs(t, err, ErrScriptNotFound)
	assert.Equal(t, int32(0), launcher.launches.Load())
	assert.False(t, s.Running())
}

func TestSupervisor_Start_SpawnFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("fork failed")}
	s := newTestSupervisor(t, launcher)

	err := s.Start()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRunning)
	assert.False(t, s.Running())

	// A failed spawn leaves the supervisor startable.
	launcher.err = nil
	assert.NoError(t, s.Start())
}

func TestSupervisor_Stop_NotRunning(t *testing.T) {
	s := newTestSupervisor(t, &fakeLauncher{})

	err := s.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, s.Running())
}

func TestSupervisor_Stop_EscalatesToKill(t *testing.T) {
	// Wait takes far longer than the 100ms grace period.
	launcher := &fakeLauncher{waitDelay: 2 * time.Second}
	s := newTestSupervisor(t, launcher)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	assert.True(t, launcher.lastProc.wasTerminated())
	assert.True(t, launcher.lastProc.wasKilled())
}

func TestSupervisor_ConcurrentStarts_ExactlyOneSucceeds(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestSupervisor(t, launcher)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Start()
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, alreadyRunning int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyRunning):
			alreadyRunning++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyRunning)
	assert.Equal(t, int32(1), launcher.launches.Load())
}

func TestSupervisor_StartStopCycle(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestSupervisor(t, launcher)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Start())
		require.NoError(t, s.Stop())
	}
	assert.Equal(t, int32(3), launcher.launches.Load())
}
