// Package supervisor manages the served game-server process: spawn, console
// access, graceful stop with signal escalation, and crash observation. The
// sync engine drives it through the strict stop-then-start bracket.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/minecart-tools/regionsync/internal/utils"
)

var (
	ErrAlreadyRunning = errors.New("service already running")
	ErrNotRunning     = errors.New("service not running")
	ErrNoCommand      = errors.New("no service command configured")
)

type Status string

const (
	StatusNew     Status = "new"
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// termGrace is how long SIGTERM gets before escalating to SIGKILL.
const termGrace = 3 * time.Second

// StateChange is emitted on every start and exit of the supervised process.
type StateChange struct {
	Status   Status
	Pid      int
	ExitCode int
}

// Config describes how to run and stop the service.
type Config struct {
	Command string
	Args    []string
	WorkDir string
	// StopCommand is written to the service console for a graceful stop.
	StopCommand string
	// StopTimeout bounds the graceful stop before signal escalation.
	StopTimeout time.Duration
	// LogPath receives the service's combined console output, one
	// timestamped line at a time.
	LogPath string
}

type Supervisor struct {
	cfg Config

	procMu   sync.RWMutex
	proc     *exec.Cmd
	procInfo *process.Process
	stdin    io.WriteCloser
	logFile  *os.File
	logSink  *utils.StampedWriter
	done     chan struct{}
	exitCode int

	stateMu sync.RWMutex
	state   Status

	changes chan StateChange
}

func New(cfg Config) *Supervisor {
	if cfg.StopCommand == "" {
		cfg.StopCommand = "stop"
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 60 * time.Second
	}
	return &Supervisor{
		cfg:     cfg,
		state:   StatusNew,
		changes: make(chan StateChange, 8),
	}
}

// Changes delivers a StateChange per start and exit. The channel is never
// closed; consumers select against their own context.
func (s *Supervisor) Changes() <-chan StateChange {
	return s.changes
}

// Start spawns the service process and returns once it is running. Console
// output goes to the configured log file.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.cfg.Command == "" {
		return ErrNoCommand
	}
	if s.Running() {
		return ErrAlreadyRunning
	}

	s.procMu.Lock()
	defer s.procMu.Unlock()

	proc := exec.Command(s.cfg.Command, s.cfg.Args...)
	if s.cfg.WorkDir != "" {
		proc.Dir = s.cfg.WorkDir
	}
	proc.SysProcAttr = getSysProcAttr()
	proc.Env = os.Environ()

	stdin, err := proc.StdinPipe()
	if err != nil {
		return fmt.Errorf("service stdin pipe: %w", err)
	}

	if s.cfg.LogPath != "" {
		if err := utils.EnsureParent(s.cfg.LogPath); err != nil {
			return fmt.Errorf("service log dir: %w", err)
		}
		logFile, err := os.OpenFile(s.cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("service log open: %w", err)
		}
		s.logFile = logFile
		s.logSink = utils.NewStampedWriter(logFile)
		proc.Stdout = s.logSink
		proc.Stderr = s.logSink
	}

	if err := proc.Start(); err != nil {
		s.closeLogLocked()
		return fmt.Errorf("service start: %w", err)
	}

	procInfo, err := process.NewProcess(int32(proc.Process.Pid))
	if err != nil {
		// process died between spawn and inspection; the monitor will reap it
		slog.Warn("service process info", "pid", proc.Process.Pid, "error", err)
	}

	s.proc = proc
	s.procInfo = procInfo
	s.stdin = stdin
	s.done = make(chan struct{})
	s.setState(StatusRunning)
	s.notify(StateChange{Status: StatusRunning, Pid: proc.Process.Pid})
	slog.Info("service started", "pid", proc.Process.Pid, "command", s.cfg.Command)

	go s.monitor(proc, s.done)

	return nil
}

// Stop brings the service down and blocks until it has fully exited: console
// stop command first, then SIGTERM across the process tree, then SIGKILL.
func (s *Supervisor) Stop(ctx context.Context) error {
	if !s.Running() {
		return ErrNotRunning
	}

	s.procMu.RLock()
	done := s.done
	s.procMu.RUnlock()

	// ask nicely over the console first
	if err := s.Console(s.cfg.StopCommand); err != nil {
		slog.Warn("service console stop failed, escalating", "error", err)
	}

	graceTimer := time.NewTimer(s.cfg.StopTimeout)
	defer graceTimer.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	case <-graceTimer.C:
		slog.Warn("service graceful stop timed out", "timeout", s.cfg.StopTimeout)
		if err := s.killTree(done); err != nil {
			return fmt.Errorf("service kill: %w", err)
		}
	}

	s.procMu.Lock()
	s.proc = nil
	s.procInfo = nil
	s.stdin = nil
	s.closeLogLocked()
	s.procMu.Unlock()

	slog.Info("service stopped")
	return nil
}

// Console writes one line to the service's stdin.
func (s *Supervisor) Console(line string) error {
	if !s.Running() {
		return ErrNotRunning
	}

	s.procMu.RLock()
	defer s.procMu.RUnlock()

	if s.stdin == nil {
		return ErrNotRunning
	}

	_, err := io.WriteString(s.stdin, line+"\n")
	if err != nil {
		return fmt.Errorf("service console write: %w", err)
	}
	return nil
}

func (s *Supervisor) Running() bool {
	return s.StatusNow() == StatusRunning
}

func (s *Supervisor) StatusNow() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Pid returns the service pid, or 0 when not running.
func (s *Supervisor) Pid() int {
	s.procMu.RLock()
	defer s.procMu.RUnlock()
	if s.proc == nil || s.proc.Process == nil {
		return 0
	}
	return s.proc.Process.Pid
}

// ExitCode returns the last observed exit code. Only meaningful after at
// least one exit.
func (s *Supervisor) ExitCode() int {
	s.procMu.RLock()
	defer s.procMu.RUnlock()
	return s.exitCode
}

func (s *Supervisor) setState(state Status) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *Supervisor) notify(change StateChange) {
	select {
	case s.changes <- change:
	default:
		slog.Debug("service state change dropped", "status", change.Status)
	}
}

// monitor reaps the process and records its exit.
func (s *Supervisor) monitor(proc *exec.Cmd, done chan struct{}) {
	err := proc.Wait()
	exitCode := proc.ProcessState.ExitCode()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}

	s.procMu.Lock()
	s.exitCode = exitCode
	s.procMu.Unlock()

	s.setState(StatusStopped)
	pid := 0
	if proc.Process != nil {
		pid = proc.Process.Pid
	}
	s.notify(StateChange{Status: StatusStopped, Pid: pid, ExitCode: exitCode})
	slog.Info("service exited", "pid", pid, "code", exitCode)

	close(done)
}

// killTree terminates the process and all its children: SIGTERM bottom-up,
// a grace period, then SIGKILL for stragglers. Blocks until the main process
// is reaped.
func (s *Supervisor) killTree(done chan struct{}) error {
	s.procMu.RLock()
	proc := s.proc
	procInfo := s.procInfo
	s.procMu.RUnlock()

	if proc == nil || proc.Process == nil {
		return errors.New("process is nil")
	}
	if procInfo == nil {
		var err error
		procInfo, err = process.NewProcess(int32(proc.Process.Pid))
		if err != nil {
			// already gone
			<-done
			return nil
		}
	}

	pid := proc.Process.Pid

	descendants, err := processTreeBottomUp(procInfo)
	if err != nil {
		descendants = []*process.Process{procInfo}
	}

	slog.Debug("service kill tree: SIGTERM", "pid", pid, "procs", len(descendants))
	for _, child := range descendants {
		if err := child.Terminate(); err != nil {
			slog.Debug("service kill tree: SIGTERM", "pid", child.Pid, "error", err)
		}
	}

	graceTimer := time.NewTimer(termGrace)
	defer graceTimer.Stop()

	select {
	case <-done:
		return nil
	case <-graceTimer.C:
	}

	slog.Debug("service kill tree: SIGKILL", "pid", pid, "procs", len(descendants))
	for _, child := range descendants {
		exists, err := process.PidExists(child.Pid)
		if err != nil || !exists {
			continue
		}
		if err := child.Kill(); err != nil {
			slog.Warn("service kill tree: SIGKILL", "pid", child.Pid, "error", err)
		}
	}

	<-done
	return nil
}

func (s *Supervisor) closeLogLocked() {
	if s.logSink != nil {
		s.logSink.Close()
		s.logSink = nil
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}

// processTreeBottomUp returns all descendants of proc, deepest first, with
// proc itself last, so children die before their parents.
func processTreeBottomUp(proc *process.Process) ([]*process.Process, error) {
	var tree []*process.Process
	children, err := proc.Children()
	if err != nil {
		return nil, fmt.Errorf("list children for pid %d: %w", proc.Pid, err)
	}

	for _, child := range children {
		// ignore sub-tree errors so we kill as much of the tree as possible
		subtree, _ := processTreeBottomUp(child)
		tree = append(tree, subtree...)
	}

	tree = append(tree, proc)
	return tree, nil
}
