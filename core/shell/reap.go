package shell

import (
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/vos"
)

// reap collects every finished child nobody is waiting on and announces it.
// It never blocks.
func (s *Shell) reap() {
	exits, err := s.OS.Reap()
	for _, exit := range exits {
		status := s.statusOf(exit)
		s.noticef("[%d] done (status %d)", exit.Pid, status)
		s.record(&logger.JobCompleted{Pid: exit.Pid, Status: status})
	}
	// Errors such as having no children end reaping silently.
	_ = err
}

// wait blocks until proc exits and returns its decoded status.
func (s *Shell) wait(proc vos.Process) int {
	exit, err := proc.Wait()
	if err != nil {
		return s.resourceFailure("wait", err)
	}
	return s.statusOf(exit)
}
