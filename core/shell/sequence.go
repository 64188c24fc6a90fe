package shell

import (
	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/logger"
)

// runSequence runs a ';'/'&' chain. bgRight is the terminator that follows
// n.Right, a left-nested chain passes its own terminator down so
// "a ; b & c" backgrounds b. ran is false if every operand was backgrounded,
// in which case status is meaningless.
func (s *Shell) runSequence(n *ast.Sequence, bgRight bool) (status int, ran bool) {
	if left, ok := n.Left.(*ast.Sequence); ok {
		status, ran = s.runSequence(left, n.Background)
	} else if n.Background {
		if st, failed := s.background(n.Left); failed {
			status, ran = st, true
		}
	} else {
		status, ran = s.dispatch(n.Left), true
	}

	switch right := n.Right.(type) {
	case nil:
	case *ast.Sequence:
		if st, r := s.runSequence(right, right.Background); r {
			status, ran = st, true
		}
	default:
		if !bgRight {
			return s.dispatch(right), true
		}
		if st, failed := s.background(right); failed {
			status, ran = st, true
		}
	}

	return status, ran
}

// background starts node in a child without waiting for it. If the child
// couldn't be started the failure status is returned with failed set.
func (s *Shell) background(node ast.Node) (status int, failed bool) {
	proc, err := s.fork(node, nil, s.streams)
	if err != nil {
		return s.resourceFailure("fork", err), true
	}

	s.noticef("[%d] backgrounded", proc.Pid())
	s.record(&logger.JobBackgrounded{Pid: proc.Pid(), Command: node.String()})
	return StatusSuccess, false
}
