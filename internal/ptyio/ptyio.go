// Package ptyio provides the concrete Pty capability the core's Pane
// consumes: process spawn, read/write/resize/close. The core itself
// only depends on the Pty interface (internal/pane); this package is
// the one peripheral adapter that talks to the real operating system,
// grounded on the teacher's use of github.com/creack/pty
// (_examples/framegrace-texelation/tui/pty_app.go).
package ptyio

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// Pty wraps an os/exec.Cmd running behind a pseudoterminal.
type Pty struct {
	cmd  *exec.Cmd
	file *os.File
}

// Start launches shell as the pane's child process with the given
// initial dimensions.
func Start(shell string, args []string, cols, rows int, env []string) (*Pty, error) {
	cmd := exec.Command(shell, args...)
	cmd.Env = env
	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, err
	}
	return &Pty{cmd: cmd, file: f}, nil
}

func (p *Pty) Read(buf []byte) (int, error) {
	return p.file.Read(buf)
}

func (p *Pty) Write(buf []byte) (int, error) {
	return p.file.Write(buf)
}

func (p *Pty) Resize(cols, rows int) error {
	return pty.Setsize(p.file, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

func (p *Pty) Close() error {
	err := p.file.Close()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	return err
}

// Pid returns the child process id, or 0 if the process never started.
func (p *Pty) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// File exposes the underlying *os.File so the reactor can register it
// in its readiness set; this is the only place in the module a PTY's
// raw descriptor is handled.
func (p *Pty) File() *os.File { return p.file }
