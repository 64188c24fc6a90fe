// Package vos provides the virtual OS the shell runs against.
//
// Everything the shell needs from the operating system goes through VOS:
// environment, standard streams, the working directory, the filesystem
// and, most importantly, process creation. HostOS backs it with real
// processes; SimOS backs it with goroutines over an in-memory filesystem.
package vos

import (
	"errors"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// VFS is the filesystem redirection targets are opened on.
type VFS = afero.Fs

// File is an open file on a VFS.
type File = afero.File

// VOS provides a virtual OS interface.
type VOS interface {
	VEnv
	VIO

	// Args returns the process arguments, including the program name.
	Args() []string
	// Getpid returns the process ID.
	Getpid() int
	// Getwd returns the absolute working directory.
	Getwd() (string, error)
	// Chdir changes the working directory of this process only.
	Chdir(dir string) error

	// FS returns the filesystem, relative names resolve against Getwd.
	FS() VFS
	// Pipe returns a connected pair of pipe ends.
	Pipe() (r io.ReadCloser, w io.WriteCloser, err error)
	// TempFile creates a new uniquely named file in the default temporary
	// directory, see os.CreateTemp for the pattern syntax.
	TempFile(pattern string) (File, error)

	// StartProcess starts the program named by argv[0], resolved on the
	// PATH of attr.Env.
	StartProcess(argv []string, attr *ProcAttr) (Process, error)
	// Fork starts an isolated child process that runs the registered
	// ChildMain with payload. The child exits with ChildMain's result.
	Fork(payload []byte, attr *ProcAttr) (Process, error)
	// Reap collects every child that has exited but was never waited on.
	// It never blocks.
	Reap() ([]Exit, error)
}

// Process is a started child.
type Process interface {
	Pid() int
	// Wait blocks until the child exits. A child is waited for at most once
	// and a waited child is never reported by Reap.
	Wait() (Exit, error)
}

// ProcAttr holds the attributes for a new process.
type ProcAttr struct {
	// Dir is the working directory of the child, empty means the parent's.
	Dir string
	// Env gives the child's environment in the form returned by Environ.
	// If it is nil, the parent's environment is used.
	Env []string
	// Files gives the child's standard streams. If nil the child gets the
	// parent's streams.
	Files VIO
}

// ChildMain is run inside forked children, its result is the exit code.
type ChildMain func(child VOS, payload []byte) int

var (
	childMainMu sync.RWMutex
	childMain   ChildMain
)

// ErrNoChildMain is returned by Fork if RegisterChildMain was never called.
var ErrNoChildMain = errors.New("vos: no child entry point registered")

// RegisterChildMain sets the function forked children run.
func RegisterChildMain(main ChildMain) {
	childMainMu.Lock()
	defer childMainMu.Unlock()
	childMain = main
}

func registeredChildMain() (ChildMain, error) {
	childMainMu.RLock()
	defer childMainMu.RUnlock()
	if childMain == nil {
		return nil, ErrNoChildMain
	}
	return childMain, nil
}
