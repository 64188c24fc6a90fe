package vos

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SignalStatusBase is added to the signal number of a child killed by a
// signal to form its status.
const SignalStatusBase = 128

// Exit describes how a child terminated.
type Exit struct {
	Pid int
	// Code is the exit code of a child that exited normally.
	Code int
	// Signaled is set if the child was killed by Signal.
	Signaled bool
	Signal   unix.Signal
}

// Status decodes the exit into a shell status: the exit code, or
// SignalStatusBase plus the signal number.
func (e Exit) Status() int {
	if e.Signaled {
		return SignalStatusBase + int(e.Signal)
	}
	return e.Code
}

func (e Exit) String() string {
	if e.Signaled {
		return fmt.Sprintf("pid %d killed by %s", e.Pid, unix.SignalName(e.Signal))
	}
	return fmt.Sprintf("pid %d exited %d", e.Pid, e.Code)
}

// ExitFromWaitStatus decodes a wait(2) status.
func ExitFromWaitStatus(pid int, ws unix.WaitStatus) Exit {
	switch {
	case ws.Signaled():
		return Exit{Pid: pid, Signaled: true, Signal: ws.Signal()}
	default:
		return Exit{Pid: pid, Code: ws.ExitStatus()}
	}
}
