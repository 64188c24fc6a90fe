package shell

import (
	"errors"
	"os"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/vos"
)

// runSimple runs a builtin in this process or starts a program and waits
// for it.
func (s *Shell) runSimple(n *ast.Simple) int {
	if len(n.Argv) == 0 {
		return s.runAssignments(n)
	}
	if builtin, ok := AllBuiltins[n.Argv[0]]; ok {
		return s.runBuiltin(builtin, n)
	}

	streams, release, err := s.openRedirect(n.Redirect)
	if err != nil {
		s.errorf("%v", err)
		return s.setStatus(StatusFailure)
	}

	env := s.OS.Environ()
	for _, assign := range n.Assigns {
		env = append(env, assign.Name+"="+assign.Value)
	}

	proc, err := s.OS.StartProcess(n.Argv, &vos.ProcAttr{Env: env, Files: streams})
	// The child holds its own references to any opened files.
	release()
	if err != nil {
		return s.setStatus(s.execFailure(n.Argv, err))
	}

	return s.setStatus(s.wait(proc))
}

// execFailure reports a program that couldn't be started and returns the
// status for it.
func (s *Shell) execFailure(argv []string, err error) int {
	var pathErr *os.PathError
	var status int
	var msg string
	switch {
	case vos.IsNotFound(err):
		status, msg = StatusNotFound, "command not found"
	case vos.IsPermission(err):
		status, msg = StatusNotExecutable, "permission denied"
	case errors.As(err, &pathErr):
		status, msg = StatusNotExecutable, pathErr.Err.Error()
	default:
		return s.resourceFailure("fork", err)
	}

	s.errorf("%s: %s", argv[0], msg)
	s.record(&logger.ExecFailure{Command: argv, Status: status, Error: msg})
	return status
}

// runAssignments handles a command that is only NAME=VALUE bindings, they set
// shell variables.
func (s *Shell) runAssignments(n *ast.Simple) int {
	if !n.Redirect.IsZero() {
		// Redirections still create and truncate their targets.
		_, release, err := s.openRedirect(n.Redirect)
		if err != nil {
			s.errorf("%v", err)
			return s.setStatus(StatusFailure)
		}
		release()
	}

	for _, assign := range n.Assigns {
		s.OS.Setenv(assign.Name, assign.Value)
	}
	return s.setStatus(StatusSuccess)
}

// runBuiltin runs a builtin in this process with the command's bindings and
// redirections applied only for its duration.
func (s *Shell) runBuiltin(builtin Builtin, n *ast.Simple) int {
	streams, release, err := s.openRedirect(n.Redirect)
	if err != nil {
		s.errorf("%v", err)
		return s.setStatus(StatusFailure)
	}
	defer release()

	restoreEnv := s.bindLocal(n.Assigns)
	defer restoreEnv()

	saved := s.streams
	s.streams = streams
	defer func() { s.streams = saved }()

	status := builtin.Main(s, n.Argv)
	s.record(&logger.Builtin{Name: n.Argv[0], Args: n.Argv[1:], Status: status})
	return s.setStatus(status)
}

// bindLocal sets assigns in the environment and returns a function that puts
// the previous values back.
func (s *Shell) bindLocal(assigns []ast.Assign) func() {
	type saved struct {
		name, value string
		ok          bool
	}
	var prev []saved
	for _, assign := range assigns {
		value, ok := s.OS.LookupEnv(assign.Name)
		prev = append(prev, saved{assign.Name, value, ok})
		s.OS.Setenv(assign.Name, assign.Value)
	}

	return func() {
		for i := len(prev) - 1; i >= 0; i-- {
			if prev[i].ok {
				s.OS.Setenv(prev[i].name, prev[i].value)
			} else {
				s.OS.Unsetenv(prev[i].name)
			}
		}
	}
}
