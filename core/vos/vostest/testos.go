// Package vostest builds deterministic simulated operating systems for tests.
package vostest

import (
	"bytes"
	"io"
	"path"
	"sync"

	"github.com/josephlewis42/minish/core/vos"
	"github.com/spf13/afero"
)

const (
	// Home is the home directory and initial working directory.
	Home = "/home/user"
	// Path is the PATH of the simulated environment.
	Path = "/usr/local/bin:/usr/bin:/bin"
)

// NewDeterministicOS creates a simulation with the given programs installed
// (keyed by absolute path) and a small user environment.
func NewDeterministicOS(programs map[string]vos.ProcessFunc) *vos.SimOS {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{Home, "/tmp", "/bin", "/usr/bin"} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
	}

	simOS := vos.NewSimOS(fs)
	for progPath, fn := range programs {
		if err := simOS.Install(progPath, fn); err != nil {
			panic(err)
		}
	}

	simOS.Setenv("HOME", Home)
	simOS.Setenv("PATH", Path)
	simOS.Setenv("PWD", Home)
	simOS.Setenv("USER", "user")
	if err := simOS.Chdir(Home); err != nil {
		panic(err)
	}

	return simOS
}

// SyncBuffer is a bytes.Buffer safe for use by concurrent simulated
// processes.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *SyncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *SyncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function
	Process vos.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string
	// If Env is non-nil, it gives the environment variables for the
	// new process in the form returned by Environ.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ExitStatus int

	// Setup runs against the simulation before the process starts.
	Setup func(*vos.SimOS) error
}

func Command(process vos.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
	}
}

func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &SyncBuffer{}
	c.Stdout = buf
	c.Stderr = buf

	if err := c.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the comand and waits for it to complete.
func (c *Cmd) Run() error {
	progPath := path.Join("/bin", path.Base(c.Argv[0]))
	simOS := NewDeterministicOS(map[string]vos.ProcessFunc{progPath: c.Process})

	if c.Setup != nil {
		if err := c.Setup(simOS); err != nil {
			return err
		}
	}

	proc, err := simOS.StartProcess(c.Argv, &vos.ProcAttr{
		Dir:   c.Dir,
		Env:   c.Env,
		Files: vos.NewVIOAdapter(c.Stdin, c.Stdout, c.Stderr),
	})
	if err != nil {
		return err
	}

	exit, err := proc.Wait()
	if err != nil {
		return err
	}
	c.ExitStatus = exit.Status()
	return nil
}
