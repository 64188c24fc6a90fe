package vos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// ProcessFunc is a simulated program.
type ProcessFunc func(VOS) int

// simKernel is the state shared by every process of a simulation.
type simKernel struct {
	fs      VFS
	lastPID int32
	forks   int32

	mu        sync.RWMutex
	programs  map[string]ProcessFunc
	pipeFault error
	forkFault func(n int) error
}

func (k *simKernel) nextPID() int {
	return int(atomic.AddInt32(&k.lastPID, 1))
}

func (k *simKernel) lookup(path string) ProcessFunc {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.programs[path]
}

// SimOS is a simulated process. Children are goroutines that share the
// in-memory filesystem but get their own environment, working directory
// and standard streams.
type SimOS struct {
	VEnv
	VIO

	kernel *simKernel
	args   []string
	pid    int
	fs     VFS

	mu       sync.Mutex
	dir      string
	children []*simProcess
}

var _ VOS = (*SimOS)(nil)

// NewSimOS creates the first process of a new simulation on base. The
// process starts in "/" with an empty environment and null I/O.
func NewSimOS(base VFS) *SimOS {
	if base == nil {
		base = afero.NewMemMapFs()
	}
	_ = base.MkdirAll("/tmp", 0777)

	kernel := &simKernel{fs: base, programs: make(map[string]ProcessFunc)}
	return kernel.newProcess([]string{"init"}, NewMapEnv(), NewNullIO(), "/")
}

func (k *simKernel) newProcess(args []string, env VEnv, streams VIO, dir string) *SimOS {
	out := &SimOS{
		VEnv:   env,
		VIO:    streams,
		kernel: k,
		args:   args,
		pid:    k.nextPID(),
		dir:    dir,
	}
	out.fs = simFs{NewRelativeFs(k.fs, out.Getwd)}
	return out
}

// SetIO replaces the standard streams of the process.
func (s *SimOS) SetIO(streams VIO) {
	s.VIO = streams
}

// Install makes fn runnable as the executable file at path.
func (s *SimOS) Install(path string, fn ProcessFunc) error {
	if err := s.kernel.fs.MkdirAll(parentDir(path), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(s.kernel.fs, path, []byte("#!simulated\n"), 0755); err != nil {
		return err
	}

	s.kernel.mu.Lock()
	defer s.kernel.mu.Unlock()
	s.kernel.programs[path] = fn
	return nil
}

// InjectPipeFault makes every following Pipe call fail with err, nil clears
// the fault.
func (s *SimOS) InjectPipeFault(err error) {
	s.kernel.mu.Lock()
	defer s.kernel.mu.Unlock()
	s.kernel.pipeFault = err
}

// InjectForkFault calls fault before every Fork and StartProcess with the
// number of the attempt, starting at 1. A non-nil result fails the attempt.
func (s *SimOS) InjectForkFault(fault func(n int) error) {
	s.kernel.mu.Lock()
	defer s.kernel.mu.Unlock()
	s.kernel.forkFault = fault
}

// Raise kills the calling simulated process with sig. It must be called from
// the process's own goroutine.
func (s *SimOS) Raise(sig unix.Signal) {
	panic(sig)
}

// Args implements VOS.Args.
func (s *SimOS) Args() []string { return s.args }

// Getpid implements VOS.Getpid.
func (s *SimOS) Getpid() int { return s.pid }

// Getwd implements VOS.Getwd.
func (s *SimOS) Getwd() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir, nil
}

// Chdir implements VOS.Chdir.
func (s *SimOS) Chdir(dir string) error {
	wd, _ := s.Getwd()
	target := dir
	if !path.IsAbs(target) {
		target = path.Join(wd, target)
	}
	target = path.Clean(target)

	stat, err := s.kernel.fs.Stat(target)
	switch {
	case err != nil:
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return &os.PathError{Op: "cd", Path: dir, Err: err}
	case !stat.IsDir():
		return &os.PathError{Op: "cd", Path: dir, Err: syscall.ENOTDIR}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = target
	return nil
}

// FS implements VOS.FS.
func (s *SimOS) FS() VFS { return s.fs }

// Pipe implements VOS.Pipe.
func (s *SimOS) Pipe() (io.ReadCloser, io.WriteCloser, error) {
	s.kernel.mu.RLock()
	fault := s.kernel.pipeFault
	s.kernel.mu.RUnlock()
	if fault != nil {
		return nil, nil, fault
	}

	r, w := newSimPipe()
	return r, w, nil
}

// TempFile implements VOS.TempFile.
func (s *SimOS) TempFile(pattern string) (File, error) {
	return wrapSimFile(afero.TempFile(s.kernel.fs, "/tmp", pattern))
}

func (s *SimOS) checkForkFault() error {
	n := int(atomic.AddInt32(&s.kernel.forks, 1))
	s.kernel.mu.RLock()
	fault := s.kernel.forkFault
	s.kernel.mu.RUnlock()
	if fault == nil {
		return nil
	}
	return fault(n)
}

// spawn creates the child process state, the child inherits its own
// reference to each of its streams.
func (s *SimOS) spawn(argv []string, attr *ProcAttr) (*SimOS, error) {
	if attr == nil {
		attr = &ProcAttr{}
	}

	var env VEnv
	if attr.Env == nil {
		env = NewMapEnvFrom(s)
	} else {
		env = NewMapEnvFromEnvList(attr.Env)
	}

	streams := attr.Files
	if streams == nil {
		streams = s.VIO
	}

	wd, _ := s.Getwd()
	child := s.kernel.newProcess(argv, env, nil, wd)
	if attr.Dir != "" {
		if err := child.Chdir(attr.Dir); err != nil {
			return nil, err
		}
	}

	child.VIO = &VIOAdapter{
		IStdin:  inheritReader(streams.Stdin()),
		IStdout: inheritWriter(streams.Stdout()),
		IStderr: inheritWriter(streams.Stderr()),
	}
	return child, nil
}

// StartProcess implements VOS.StartProcess.
func (s *SimOS) StartProcess(argv []string, attr *ProcAttr) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("start process: empty argv")
	}

	pathList := s.Getenv("PATH")
	if attr != nil && attr.Env != nil {
		pathList = NewMapEnvFromEnvList(attr.Env).Getenv("PATH")
	}
	resolved, err := LookPath(s.fs, pathList, argv[0])
	if err != nil {
		return nil, &os.PathError{Op: "exec", Path: argv[0], Err: err}
	}
	if !path.IsAbs(resolved) {
		wd, _ := s.Getwd()
		resolved = path.Join(wd, resolved)
	}
	program := s.kernel.lookup(resolved)
	if program == nil {
		return nil, &os.PathError{Op: "exec", Path: argv[0], Err: syscall.ENOEXEC}
	}

	if err := s.checkForkFault(); err != nil {
		return nil, err
	}
	child, err := s.spawn(argv, attr)
	if err != nil {
		return nil, err
	}
	return s.run(child, func() int { return program(child) }), nil
}

// Fork implements VOS.Fork.
func (s *SimOS) Fork(payload []byte, attr *ProcAttr) (Process, error) {
	main, err := registeredChildMain()
	if err != nil {
		return nil, err
	}
	if err := s.checkForkFault(); err != nil {
		return nil, err
	}
	child, err := s.spawn(append([]string(nil), s.args...), attr)
	if err != nil {
		return nil, err
	}
	return s.run(child, func() int { return main(child, payload) }), nil
}

func (s *SimOS) run(child *SimOS, body func() int) *simProcess {
	proc := &simProcess{pid: child.pid, done: make(chan struct{})}

	s.mu.Lock()
	s.children = append(s.children, proc)
	s.mu.Unlock()

	go func() {
		defer close(proc.done)
		defer child.exit()
		defer func() {
			if r := recover(); r != nil {
				if sig, ok := r.(unix.Signal); ok {
					proc.exit = Exit{Pid: proc.pid, Signaled: true, Signal: sig}
					return
				}
				fmt.Fprintf(child.Stderr(), "panic: %v\n", r)
				proc.exit = Exit{Pid: proc.pid, Signaled: true, Signal: unix.SIGABRT}
			}
		}()

		proc.exit = Exit{Pid: proc.pid, Code: body() & 0xff}
	}()

	return proc
}

// exit releases the process's descriptors.
func (s *SimOS) exit() {
	s.Stdin().Close()
	s.Stdout().Close()
	s.Stderr().Close()
}

// Reap implements VOS.Reap.
func (s *SimOS) Reap() ([]Exit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Exit
	var running []*simProcess
	for _, child := range s.children {
		if child.claimed() {
			continue
		}
		select {
		case <-child.done:
			if child.claim() {
				out = append(out, child.exit)
			}
		default:
			running = append(running, child)
		}
	}
	s.children = running
	return out, nil
}

type simProcess struct {
	pid     int
	done    chan struct{}
	exit    Exit
	waiters int32
}

func (p *simProcess) claim() bool {
	return atomic.CompareAndSwapInt32(&p.waiters, 0, 1)
}

func (p *simProcess) claimed() bool {
	return atomic.LoadInt32(&p.waiters) != 0
}

func (p *simProcess) Pid() int { return p.pid }

func (p *simProcess) Wait() (Exit, error) {
	if !p.claim() {
		return Exit{}, fmt.Errorf("wait %d: %w", p.pid, syscall.ECHILD)
	}
	<-p.done
	return p.exit, nil
}

func parentDir(name string) string {
	return path.Dir(path.Clean(name))
}
