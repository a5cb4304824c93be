package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prik73/mediasoup-concept-2/internal/log"
)

const defaultForceKillTimeout = 3 * time.Second

// Process supervises one encoder subprocess. The first "frame=" line on
// stderr marks the stream live; exit for any reason fires onExit exactly
// once unless Stop was called first.
type Process struct {
	roomName         string
	args             []string
	forceKillTimeout time.Duration

	onLive func()
	onExit func()

	cmd      *exec.Cmd
	stopped  atomic.Bool
	done     chan struct{}
	liveOnce sync.Once

	// replaceable for testing
	SpawnCmd func(args []string) *exec.Cmd

	logger *log.Logger
}

func NewProcess(
	roomName string,
	args []string,
	forceKillTimeout time.Duration,
	onLive, onExit func(),
	logger *log.Logger,
) *Process {
	if forceKillTimeout == 0 {
		forceKillTimeout = defaultForceKillTimeout
	}
	if onLive == nil {
		onLive = func() {}
	}
	if onExit == nil {
		onExit = func() {}
	}

	return &Process{
		roomName:         roomName,
		args:             args,
		forceKillTimeout: forceKillTimeout,
		onLive:           onLive,
		onExit:           onExit,
		done:             make(chan struct{}),
		SpawnCmd: func(args []string) *exec.Cmd {
			return exec.Command("ffmpeg", args...)
		},
		logger: logger,
	}
}

// Start spawns the subprocess and begins supervision.
func (p *Process) Start() error {
	cmd := p.SpawnCmd(p.args)

	stdout, _ := cmd.StdoutPipe()
	stderr, _ := cmd.StderrPipe()

	if err := cmd.Start(); err != nil {
		processesFailed.Add(context.Background(), 1)
		p.logger.Error("Failed to start encoder",
			log.String("room", p.roomName),
			log.Error(err))
		// nothing will ever exit, so Done must not leave waiters hanging
		close(p.done)
		return err
	}

	p.cmd = cmd
	processesStarted.Add(context.Background(), 1)
	activeProcesses.Add(context.Background(), 1)

	p.logger.Info("Encoder started",
		log.String("room", p.roomName),
		log.Int("pid", cmd.Process.Pid))

	go p.drainStdout(stdout)
	go p.watchStderr(stderr)
	go p.waitForExit()

	return nil
}

// Stop terminates the subprocess: graceful signal first, force kill
// after the grace window. Safe to call more than once and safe to call
// concurrently with the process exiting on its own.
func (p *Process) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}

	if p.cmd == nil || p.cmd.Process == nil {
		return
	}

	p.logger.Info("Stopping encoder",
		log.String("room", p.roomName),
		log.Int("pid", p.cmd.Process.Pid))

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		p.logger.Warn("Failed to signal encoder",
			log.String("room", p.roomName),
			log.Error(err))
	}

	go func() {
		select {
		case <-p.done:
		case <-time.After(p.forceKillTimeout):
			p.logger.Info("Force killing encoder",
				log.String("room", p.roomName))
			if err := p.cmd.Process.Kill(); err != nil {
				p.logger.Error("Failed to force kill encoder",
					log.String("room", p.roomName),
					log.Error(err))
			}
		}
	}()
}

// Done closes when the subprocess has fully exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

func (p *Process) drainStdout(stdout io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		p.logger.Debug("Encoder stdout",
			log.String("room", p.roomName),
			log.String("output", line))
	}
}

func (p *Process) watchStderr(stderr io.ReadCloser) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.Contains(line, "frame=") {
			p.liveOnce.Do(func() {
				p.logger.Info("Encoder live",
					log.String("room", p.roomName))
				liveSignals.Add(context.Background(), 1)
				p.onLive()
			})
			continue
		}

		p.logger.Debug("Encoder stderr",
			log.String("room", p.roomName),
			log.String("output", line))
	}
}

func (p *Process) waitForExit() {
	err := p.cmd.Wait()
	close(p.done)

	activeProcesses.Add(context.Background(), -1)
	processesStopped.Add(context.Background(), 1)

	if p.stopped.Load() {
		p.logger.Info("Encoder exited after stop",
			log.String("room", p.roomName))
		return
	}

	if err != nil {
		p.logger.Warn("Encoder exited unexpectedly",
			log.String("room", p.roomName),
			log.Error(err))
	} else {
		p.logger.Info("Encoder exited",
			log.String("room", p.roomName))
	}

	p.onExit()
}
