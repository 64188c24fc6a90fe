package vos

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// HostOS runs on the real operating system. Environment and working
// directory changes apply to the whole process.
type HostOS struct {
	hostEnv
	VIO

	fs VFS
}

var _ VOS = (*HostOS)(nil)

// NewHostOS creates a HostOS attached to the process's standard streams.
func NewHostOS() *HostOS {
	return NewHostOSWithIO(hostIO{})
}

// NewHostOSWithIO creates a HostOS with the given standard streams.
// Streams that aren't *os.File are copied through pipes for children.
func NewHostOSWithIO(streams VIO) *HostOS {
	return &HostOS{VIO: streams, fs: afero.NewOsFs()}
}

// Args implements VOS.Args.
func (*HostOS) Args() []string { return os.Args }

// Getpid implements VOS.Getpid.
func (*HostOS) Getpid() int { return os.Getpid() }

// Getwd implements VOS.Getwd.
func (*HostOS) Getwd() (string, error) { return os.Getwd() }

// Chdir implements VOS.Chdir.
func (*HostOS) Chdir(dir string) error {
	if err := os.Chdir(dir); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return &os.PathError{Op: "cd", Path: dir, Err: pathErr.Err}
		}
		return err
	}
	return nil
}

// FS implements VOS.FS.
func (h *HostOS) FS() VFS { return h.fs }

// Pipe implements VOS.Pipe, both ends are *os.File.
func (*HostOS) Pipe() (io.ReadCloser, io.WriteCloser, error) {
	return os.Pipe()
}

// TempFile implements VOS.TempFile.
func (h *HostOS) TempFile(pattern string) (File, error) {
	return afero.TempFile(h.fs, "", pattern)
}

func (h *HostOS) command(path string, argv []string, attr *ProcAttr) *exec.Cmd {
	if attr == nil {
		attr = &ProcAttr{}
	}
	streams := attr.Files
	if streams == nil {
		streams = h.VIO
	}

	return &exec.Cmd{
		Path:   path,
		Args:   argv,
		Env:    attr.Env,
		Dir:    attr.Dir,
		Stdin:  streams.Stdin(),
		Stdout: streams.Stdout(),
		Stderr: streams.Stderr(),
	}
}

// StartProcess implements VOS.StartProcess.
func (h *HostOS) StartProcess(argv []string, attr *ProcAttr) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("start process: empty argv")
	}

	pathList := os.Getenv("PATH")
	if attr != nil && attr.Env != nil {
		pathList = NewMapEnvFromEnvList(attr.Env).Getenv("PATH")
	}
	path, err := LookPath(h.fs, pathList, argv[0])
	if err != nil {
		return nil, &os.PathError{Op: "exec", Path: argv[0], Err: err}
	}

	cmd := h.command(path, argv, attr)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &hostProcess{cmd: cmd}, nil
}

// Fork implements VOS.Fork by re-executing the running binary with ForkArg.
// The payload is streamed to the child on descriptor 3.
func (h *HostOS) Fork(payload []byte, attr *ProcAttr) (Process, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := h.command(exe, []string{exe, ForkArg}, attr)
	cmd.ExtraFiles = []*os.File{r}
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	r.Close()

	go func() {
		defer w.Close()
		// A child that dies before reading gets its status reported by Wait.
		_, _ = w.Write(payload)
	}()

	return &hostProcess{cmd: cmd}, nil
}

// Reap implements VOS.Reap using a non-blocking wait4 on any child.
func (*HostOS) Reap() ([]Exit, error) {
	var out []Exit
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.ECHILD:
			return out, nil
		case err != nil:
			return out, err
		case pid <= 0:
			return out, nil
		}
		out = append(out, ExitFromWaitStatus(pid, ws))
	}
}

type hostProcess struct {
	cmd *exec.Cmd
}

func (p *hostProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *hostProcess) Wait() (Exit, error) {
	err := p.cmd.Wait()
	if err == nil {
		return Exit{Pid: p.Pid()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return ExitFromWaitStatus(p.Pid(), unix.WaitStatus(ws)), nil
		}
		return Exit{Pid: p.Pid(), Code: exitErr.ExitCode()}, nil
	}
	return Exit{}, err
}
