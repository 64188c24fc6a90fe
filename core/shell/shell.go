// Package shell executes command trees: pipelines, conditionals, sequences,
// subshells, redirections and the directory stack builtins.
package shell

import (
	"io"
	"strconv"
	"time"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/dirstack"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/vos"
)

// Exit statuses produced by the shell itself.
const (
	StatusSuccess         = 0
	StatusFailure         = 1
	StatusResourceFailure = 1
	StatusUsage           = 2
	StatusNotExecutable   = 126
	StatusNotFound        = 127
)

// EnvLastStatus is the environment variable mirroring LastStatus.
const EnvLastStatus = "?"

// EventRecorder stores execution events.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// Shell is the execution context of one shell process. Forked children get
// their own Shell built from a copy of the parent's state.
type Shell struct {
	OS     vos.VOS
	Dirs   *dirstack.Stack
	Config *config.Configuration

	events  EventRecorder
	session string
	streams vos.VIO
	color   *colorPrinter
	status  int
}

// Option configures a Shell.
type Option func(*Shell)

// WithConfig sets the configuration, the built-in default is used otherwise.
func WithConfig(cfg *config.Configuration) Option {
	return func(s *Shell) {
		if cfg != nil {
			s.Config = cfg
		}
	}
}

// WithEvents records execution events to the given session.
func WithEvents(events *logger.SessionLogger) Option {
	return func(s *Shell) {
		if events != nil {
			s.events = events
			s.session = events.SessionID()
		}
	}
}

// WithDirStack starts the shell with an existing directory stack.
func WithDirStack(dirs *dirstack.Stack) Option {
	return func(s *Shell) {
		if dirs != nil {
			s.Dirs = dirs
		}
	}
}

// WithStatus sets the initial last status.
func WithStatus(status int) Option {
	return func(s *Shell) {
		s.status = status
	}
}

// WithStdio replaces the standard streams used by the shell and inherited by
// the commands it runs.
func WithStdio(streams vos.VIO) Option {
	return func(s *Shell) {
		if streams != nil {
			s.streams = streams
		}
	}
}

// New creates a shell over the given operating system.
func New(virtualOS vos.VOS, opts ...Option) *Shell {
	s := &Shell{
		OS:      virtualOS,
		Dirs:    dirstack.New(),
		Config:  config.DefaultConfig(),
		events:  logger.NewDiscardLogger().Sessionless(),
		streams: virtualOS,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.color = newColorPrinter(s.Config.Color, s.Stderr())
	s.publish()
	return s
}

// Close releases the shell's state. The shell must not be used afterwards.
func (s *Shell) Close() error {
	s.Dirs.Clear()
	s.events = logger.NewDiscardLogger().Sessionless()
	return nil
}

// LastStatus returns the status of the most recently completed command.
func (s *Shell) LastStatus() int {
	return s.status
}

func (s *Shell) Stdin() io.ReadCloser {
	return s.streams.Stdin()
}

func (s *Shell) Stdout() io.WriteCloser {
	return s.streams.Stdout()
}

func (s *Shell) Stderr() io.WriteCloser {
	return s.streams.Stderr()
}

// setStatus publishes status as the last status and returns it.
func (s *Shell) setStatus(status int) int {
	s.status = status
	s.publish()
	return status
}

func (s *Shell) publish() {
	s.OS.Setenv(EnvLastStatus, strconv.Itoa(s.status))
}

func (s *Shell) record(event logger.LogType) {
	// Event logging is best effort and never changes a command's outcome.
	_ = s.events.Record(event)
}

// Execute runs a top-level command tree, reaps finished background jobs and
// returns the tree's status.
func (s *Shell) Execute(node ast.Node) int {
	if err := ast.Validate(node); err != nil {
		s.errorf("%v", err)
		return s.setStatus(StatusUsage)
	}

	start := time.Now()
	command := node.String()
	s.record(&logger.CommandStarted{Command: command})

	status := s.dispatch(node)
	s.reap()

	s.record(&logger.CommandFinished{
		Command:        command,
		Status:         status,
		DurationMicros: time.Since(start).Microseconds(),
	})
	return status
}

// statusOf decodes a child's exit into a shell status.
func (s *Shell) statusOf(exit vos.Exit) int {
	if exit.Signaled {
		return s.Config.SignalStatusBase + int(exit.Signal)
	}
	return exit.Code
}
