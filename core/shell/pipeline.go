package shell

import (
	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/vos"
)

// runPipe connects the output of the left child to the input of the right
// child. The pipeline fails with the right side's status if it is non-zero,
// otherwise it takes the left side's status, so "false | true" fails.
func (s *Shell) runPipe(n *ast.Pipe) int {
	r, w, err := s.OS.Pipe()
	if err != nil {
		return s.resourceFailure("pipe", err)
	}

	left, err := s.fork(n.Left, nil, vos.WithStdout(s.streams, w))
	if err != nil {
		r.Close()
		w.Close()
		return s.resourceFailure("fork", err)
	}

	right, err := s.fork(n.Right, nil, vos.WithStdin(s.streams, r))

	// The parent's ends must be closed or the reader never sees EOF.
	r.Close()
	w.Close()

	if err != nil {
		s.wait(left)
		return s.resourceFailure("fork", err)
	}

	leftStatus := s.wait(left)
	rightStatus := s.wait(right)

	if rightStatus != StatusSuccess {
		return s.setStatus(rightStatus)
	}
	return s.setStatus(leftStatus)
}
