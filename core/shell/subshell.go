package shell

import (
	"github.com/josephlewis42/minish/core/ast"
)

// runSubshell runs the body in a child so directory, environment and stack
// changes stay there. The child applies the redirection to its own stdio.
func (s *Shell) runSubshell(n *ast.Subshell) int {
	redirect := &n.Redirect
	if redirect.IsZero() {
		redirect = nil
	}

	proc, err := s.fork(n.Body, redirect, s.streams)
	if err != nil {
		return s.resourceFailure("fork", err)
	}
	return s.setStatus(s.wait(proc))
}
