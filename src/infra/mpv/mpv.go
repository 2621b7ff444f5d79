// Package mpv drives an external mpv process over its JSON IPC socket. One
// Player owns at most one process at a time; the socket file is created fresh
// for every session and removed again on teardown so a later session never
// dials a dangling socket.
package mpv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const (
	// commandTimeout bounds the dial-and-send window for one IPC command.
	commandTimeout = 2 * time.Second
	// eofTimeout bounds the eof-reached property read; polled frequently,
	// so it stays short.
	eofTimeout = 500 * time.Millisecond
	// quitGrace is how long a session gets to exit after an IPC quit
	// before it is killed.
	quitGrace = 1 * time.Second
)

// Player launches and controls a single mpv process.
type Player struct {
	binary    string
	socket    string
	extraArgs []string

	cmd  *exec.Cmd
	done chan struct{}
}

// New creates an mpv driver. Nothing is launched until Start.
func New(binary, socket string, extraArgs []string) *Player {
	return &Player{binary: binary, socket: socket, extraArgs: extraArgs}
}

// Start launches a fresh mpv process loading file, paused and fullscreen.
// Any stale socket file from a crashed prior session is removed first.
func (p *Player) Start(ctx context.Context, file string) error {
	if p.cmd != nil {
		// defensive: the session controller tears down before restarting
		slog.Warn("Starting mpv with a previous process still tracked, stopping it first")
		if err := p.Stop(); err != nil {
			return err
		}
	}
	p.removeSocket()

	args := []string{
		"--fs",
		"--pause",
		"--keep-open=always",
		"--idle=yes",
		"--no-osd-bar",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", p.socket),
	}
	args = append(args, p.extraArgs...)
	args = append(args, file)

	cmd := exec.CommandContext(ctx, p.binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.binary, err)
	}

	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	p.cmd = cmd
	p.done = done

	slog.Info("Started mpv", "file", file, "pid", cmd.Process.Pid)
	return nil
}

// Connect waits until the IPC socket accepts commands, or fails when the
// retry window elapses or the process exits underneath it.
func (p *Player) Connect(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case <-p.done:
			return fmt.Errorf("mpv exited before IPC became ready")
		default:
		}
		if _, err := p.roundTrip(commandTimeout, "get_property", "pause"); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("mpv IPC did not come up within %s", timeout)
}

// Alive reports whether the tracked process is still running.
func (p *Player) Alive() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// SetPause sets the pause property.
func (p *Player) SetPause(paused bool) error {
	return p.command("set_property", "pause", paused)
}

// SeekToStart pauses, seeks to time zero, and steps one frame forward so the
// display holds the first frame.
func (p *Player) SeekToStart() error {
	if err := p.command("set_property", "pause", true); err != nil {
		return err
	}
	if err := p.command("seek", 0, "absolute", "exact"); err != nil {
		return err
	}
	return p.command("frame-step")
}

// EOFReached reports whether playback has reached end of file. IPC errors
// read as false; the liveness check catches a dead process.
func (p *Player) EOFReached() bool {
	resp, err := p.roundTrip(eofTimeout, "get_property", "eof-reached")
	if err != nil {
		return false
	}
	data, ok := resp["data"].(bool)
	return ok && data
}

// Stop tears the session down: graceful IPC quit, short grace period, then a
// kill. The socket file is removed unconditionally afterwards.
func (p *Player) Stop() error {
	defer p.removeSocket()

	if p.cmd == nil {
		return nil
	}
	cmd, done := p.cmd, p.done
	p.cmd, p.done = nil, nil

	if err := p.command("quit"); err != nil {
		slog.Debug("IPC quit failed, will terminate process", "error", err)
	}
	select {
	case <-done:
		slog.Info("mpv exited cleanly", "pid", cmd.Process.Pid)
		return nil
	case <-time.After(quitGrace):
	}

	slog.Warn("mpv did not quit in time, killing it", "pid", cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill mpv pid %d: %w", cmd.Process.Pid, err)
	}
	<-done
	return nil
}

func (p *Player) removeSocket() {
	if err := os.Remove(p.socket); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove IPC socket file", "path", p.socket, "error", err)
	}
}
