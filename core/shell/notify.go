package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/mattn/go-isatty"
)

// colorPrinter decides whether diagnostics get colored.
type colorPrinter struct {
	enabled bool
	notice  *color.Color
	failure *color.Color
}

func newColorPrinter(mode string, w io.Writer) *colorPrinter {
	enabled := false
	switch mode {
	case config.ColorAlways:
		enabled = true
	case config.ColorAuto:
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}

	cp := &colorPrinter{
		enabled: enabled,
		notice:  color.New(color.FgCyan),
		failure: color.New(color.FgRed, color.Bold),
	}
	// The package default turns color off when stdout isn't a terminal,
	// the diagnostic stream is decided on its own.
	cp.notice.EnableColor()
	cp.failure.EnableColor()
	return cp
}

func (cp *colorPrinter) Sprintf(c *color.Color, format string, a ...interface{}) string {
	if !cp.enabled {
		return fmt.Sprintf(format, a...)
	}
	return c.Sprintf(format, a...)
}

// noticef writes a job notice line to the diagnostic stream.
func (s *Shell) noticef(format string, a ...interface{}) {
	if !s.Config.NotifyBackground {
		return
	}
	fmt.Fprintln(s.Stderr(), s.color.Sprintf(s.color.notice, format, a...))
}

// errorf writes a "minish: " prefixed error line to the diagnostic stream.
func (s *Shell) errorf(format string, a ...interface{}) {
	fmt.Fprintln(s.Stderr(), s.color.Sprintf(s.color.failure, "minish: "+format, a...))
}

// resourceFailure reports a failed pipe, fork or wait and returns the status
// for it.
func (s *Shell) resourceFailure(op string, err error) int {
	s.errorf("%s: %v", op, err)
	s.record(resourceEvent(op, err))
	return s.setStatus(StatusResourceFailure)
}

func resourceEvent(op string, err error) *logger.ResourceFailure {
	return &logger.ResourceFailure{Op: op, Error: err.Error()}
}
