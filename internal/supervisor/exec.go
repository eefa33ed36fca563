package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

// execLauncher spawns the backend with os/exec, inheriting stdout/stderr so
// the backend's own logs stay visible next to the bot's.
type execLauncher struct{}

func (execLauncher) Launch(executable, script string) (Process, error) {
	cmd := exec.Command(executable, script)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execProcess{cmd: cmd}, nil
}

// execProcess wraps a started *exec.Cmd behind the Process interface.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Terminate() error {
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}
