package vos

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestSimOS(t *testing.T) *SimOS {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/user", 0755))
	s := NewSimOS(fs)
	s.Setenv("PATH", "/bin")
	return s
}

func exitWith(code int) ProcessFunc {
	return func(VOS) int { return code }
}

func TestSimOSStartProcess(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/bin/seven", exitWith(7)))

	proc, err := s.StartProcess([]string{"seven"}, nil)
	require.NoError(t, err)

	exit, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, exit.Status())
	assert.Equal(t, proc.Pid(), exit.Pid)

	_, err = proc.Wait()
	assert.Error(t, err, "second wait")
}

func TestSimOSStartProcessNotFound(t *testing.T) {
	s := newTestSimOS(t)

	_, err := s.StartProcess([]string{"nope"}, nil)
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestSimOSStartProcessNotExecutable(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, afero.WriteFile(s.FS(), "/bin/data", []byte("x"), 0644))

	_, err := s.StartProcess([]string{"/bin/data"}, nil)
	assert.True(t, IsPermission(err), "got %v", err)
}

func TestSimOSStartProcessNoProgram(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, afero.WriteFile(s.FS(), "/bin/script", []byte("#!/bin/sh\n"), 0755))

	_, err := s.StartProcess([]string{"script"}, nil)
	assert.True(t, errors.Is(err, unix.ENOEXEC), "got %v", err)
}

func TestSimOSStartProcessUsesChildPath(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/opt/bin/seven", exitWith(7)))

	_, err := s.StartProcess([]string{"seven"}, &ProcAttr{Env: []string{"A=b"}})
	assert.True(t, IsNotFound(err), "got %v", err)

	proc, err := s.StartProcess([]string{"seven"}, &ProcAttr{Env: []string{"PATH=/opt/bin"}})
	require.NoError(t, err)
	exit, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, exit.Status())
}

func TestSimOSArgsEnvAndDir(t *testing.T) {
	s := newTestSimOS(t)
	var gotArgs []string
	var gotEnv, gotDir string
	require.NoError(t, s.Install("/bin/probe", func(child VOS) int {
		gotArgs = child.Args()
		gotEnv = child.Getenv("LOCAL")
		gotDir, _ = child.Getwd()
		child.Setenv("LEAK", "yes")
		return 0
	}))

	proc, err := s.StartProcess([]string{"probe", "a", "b"}, &ProcAttr{
		Dir: "/home/user",
		Env: append(s.Environ(), "LOCAL=1"),
	})
	require.NoError(t, err)
	_, err = proc.Wait()
	require.NoError(t, err)

	assert.Equal(t, []string{"probe", "a", "b"}, gotArgs)
	assert.Equal(t, "1", gotEnv)
	assert.Equal(t, "/home/user", gotDir)
	_, leaked := s.LookupEnv("LEAK")
	assert.False(t, leaked, "child environment leaked into parent")
}

func TestSimOSChdir(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, afero.WriteFile(s.FS(), "/home/user/file", nil, 0644))

	assert.NoError(t, s.Chdir("/home"))
	assert.NoError(t, s.Chdir("user"))
	wd, _ := s.Getwd()
	assert.Equal(t, "/home/user", wd)

	err := s.Chdir("/does/not/exist")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, afero.ErrFileNotFound) || strings.Contains(err.Error(), "not exist"), "got %v", err)

	assert.Error(t, s.Chdir("file"))

	wd, _ = s.Getwd()
	assert.Equal(t, "/home/user", wd, "failed chdir changed directory")
}

func TestSimOSRelativeFs(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Chdir("/home/user"))
	require.NoError(t, afero.WriteFile(s.FS(), "notes.txt", []byte("hi"), 0644))

	data, err := afero.ReadFile(s.FS(), "/home/user/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestSimOSPipeClosesWhenAllHandlesClose(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/bin/writer", func(child VOS) int {
		fmt.Fprintln(child.Stdout(), "from child")
		return 0
	}))

	r, w, err := s.Pipe()
	require.NoError(t, err)

	proc, err := s.StartProcess([]string{"writer"}, &ProcAttr{
		Files: NewVIOAdapter(nil, w, nil),
	})
	require.NoError(t, err)
	// The child holds its own reference to the write end.
	require.NoError(t, w.Close())

	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "from child\n", string(out))

	_, err = proc.Wait()
	assert.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestSimOSFileSurvivesParentClose(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/bin/writer", func(child VOS) int {
		fmt.Fprint(child.Stdout(), "payload")
		return 0
	}))

	f, err := s.FS().Create("/home/user/out")
	require.NoError(t, err)

	proc, err := s.StartProcess([]string{"writer"}, &ProcAttr{Files: NewVIOAdapter(nil, f, nil)})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = proc.Wait()
	require.NoError(t, err)

	data, err := afero.ReadFile(s.FS(), "/home/user/out")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestSimOSTempFileIsUnique(t *testing.T) {
	s := newTestSimOS(t)

	a, err := s.TempFile("heredoc-*")
	require.NoError(t, err)
	defer a.Close()
	b, err := s.TempFile("heredoc-*")
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Name(), b.Name())
}

func TestSimOSReap(t *testing.T) {
	s := newTestSimOS(t)
	release := make(chan struct{})
	require.NoError(t, s.Install("/bin/block", func(VOS) int {
		<-release
		return 3
	}))
	require.NoError(t, s.Install("/bin/quick", exitWith(0)))

	bg, err := s.StartProcess([]string{"block"}, nil)
	require.NoError(t, err)
	fg, err := s.StartProcess([]string{"quick"}, nil)
	require.NoError(t, err)
	_, err = fg.Wait()
	require.NoError(t, err)

	exits, err := s.Reap()
	require.NoError(t, err)
	assert.Empty(t, exits, "running or waited children must not be reaped")

	close(release)
	var reaped []Exit
	assert.Eventually(t, func() bool {
		got, _ := s.Reap()
		reaped = append(reaped, got...)
		return len(reaped) > 0
	}, time.Second, time.Millisecond)

	require.Len(t, reaped, 1)
	assert.Equal(t, bg.Pid(), reaped[0].Pid)
	assert.Equal(t, 3, reaped[0].Status())

	exits, _ = s.Reap()
	assert.Empty(t, exits, "children are reaped once")
}

func TestSimOSRaise(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/bin/die", func(child VOS) int {
		child.(*SimOS).Raise(unix.SIGTERM)
		return 0
	}))

	proc, err := s.StartProcess([]string{"die"}, nil)
	require.NoError(t, err)
	exit, err := proc.Wait()
	require.NoError(t, err)

	assert.True(t, exit.Signaled)
	assert.Equal(t, 128+int(unix.SIGTERM), exit.Status())
}

func TestSimOSFaults(t *testing.T) {
	s := newTestSimOS(t)
	require.NoError(t, s.Install("/bin/ok", exitWith(0)))
	boom := errors.New("boom")

	s.InjectPipeFault(boom)
	_, _, err := s.Pipe()
	assert.True(t, errors.Is(err, boom))
	s.InjectPipeFault(nil)

	s.InjectForkFault(func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	_, err = s.StartProcess([]string{"ok"}, nil)
	assert.NoError(t, err)
	_, err = s.StartProcess([]string{"ok"}, nil)
	assert.True(t, errors.Is(err, boom))
}

func TestSimOSFork(t *testing.T) {
	RegisterChildMain(func(child VOS, payload []byte) int {
		io.Copy(child.Stdout(), bytes.NewReader(payload))
		child.Chdir("/tmp")
		return len(payload)
	})
	defer RegisterChildMain(nil)

	s := newTestSimOS(t)
	require.NoError(t, s.Chdir("/home/user"))
	out := &bytes.Buffer{}

	proc, err := s.Fork([]byte("tree"), &ProcAttr{Files: NewVIOAdapter(nil, out, nil)})
	require.NoError(t, err)
	exit, err := proc.Wait()
	require.NoError(t, err)

	assert.Equal(t, 4, exit.Status())
	assert.Equal(t, "tree", out.String())
	wd, _ := s.Getwd()
	assert.Equal(t, "/home/user", wd, "child chdir leaked into parent")
}

func TestSimOSForkWithoutChildMain(t *testing.T) {
	RegisterChildMain(nil)
	s := newTestSimOS(t)

	_, err := s.Fork(nil, nil)
	assert.True(t, errors.Is(err, ErrNoChildMain))
}
