package shell

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/josephlewis42/minish/core/vos"
)

// openRedirect opens the files named by r and returns the shell's streams
// with them swapped in. release closes everything that was opened, on error
// nothing is left open.
func (s *Shell) openRedirect(r ast.Redirect) (streams vos.VIO, release func(), err error) {
	var opened []io.Closer
	release = func() {
		for _, c := range opened {
			c.Close()
		}
		opened = nil
	}

	stdin := io.Reader(s.Stdin())
	stdout := io.Writer(s.Stdout())

	switch r.In.Mode {
	case ast.InFile:
		f, err := s.OS.FS().Open(r.In.Path)
		if err != nil {
			release()
			return nil, nil, redirectError(r.In.Path, err)
		}
		opened = append(opened, f)
		stdin = f
	case ast.InInline:
		f, err := s.inlineInput(r.In.Text)
		if err != nil {
			release()
			return nil, nil, err
		}
		opened = append(opened, f)
		stdin = f
	}

	if r.Out.Mode != ast.OutNone {
		flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if r.Out.Mode == ast.OutAppend {
			flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}

		f, err := s.OS.FS().OpenFile(r.Out.Path, flag, s.Config.RedirectFileMode)
		if err != nil {
			release()
			return nil, nil, redirectError(r.Out.Path, err)
		}
		opened = append(opened, f)
		stdout = f
	}

	return vos.NewVIOAdapter(stdin, stdout, s.Stderr()), release, nil
}

// inlineInput stores text in a new temporary file and returns it rewound.
// The file is unlinked right away so nothing is left behind.
func (s *Shell) inlineInput(text string) (vos.File, error) {
	f, err := s.OS.TempFile(s.Config.HeredocPattern)
	if err != nil {
		s.record(resourceEvent("tempfile", err))
		return nil, fmt.Errorf("here-document: %w", err)
	}
	if err := s.OS.FS().Remove(f.Name()); err != nil {
		f.Close()
		return nil, fmt.Errorf("here-document: %w", err)
	}

	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return nil, fmt.Errorf("here-document: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("here-document: %w", err)
	}
	return f, nil
}

// redirectError formats err the way "cat: x: No such file" tools do.
func redirectError(path string, err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return fmt.Errorf("%s: %w", path, err)
}
