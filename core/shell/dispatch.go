package shell

import (
	"github.com/josephlewis42/minish/core/ast"
)

// dispatch routes a node to its runner and returns the node's status. It
// never reaps, so callers nested inside a pipeline or conditional can't
// steal a child another runner is about to wait on.
func (s *Shell) dispatch(node ast.Node) int {
	switch n := node.(type) {
	case *ast.Simple:
		return s.runSimple(n)
	case *ast.Pipe:
		return s.runPipe(n)
	case *ast.And:
		return s.runAnd(n)
	case *ast.Or:
		return s.runOr(n)
	case *ast.Sequence:
		status, ran := s.runSequence(n, false)
		if !ran {
			return s.status
		}
		return status
	case *ast.Subshell:
		return s.runSubshell(n)
	default:
		s.errorf("unknown command type %T", node)
		return s.setStatus(StatusUsage)
	}
}

func (s *Shell) runAnd(n *ast.And) int {
	if status := s.dispatch(n.Left); status != StatusSuccess {
		return status
	}
	return s.dispatch(n.Right)
}

func (s *Shell) runOr(n *ast.Or) int {
	if status := s.dispatch(n.Left); status == StatusSuccess {
		return status
	}
	return s.dispatch(n.Right)
}
