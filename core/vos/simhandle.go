package vos

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// shared counts the open handles of a simulated descriptor. The underlying
// resource is closed when the last handle is.
type shared struct {
	mu     sync.Mutex
	refs   int
	closer io.Closer
}

func newShared(c io.Closer) *shared {
	return &shared{refs: 1, closer: c}
}

func (s *shared) acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs++
}

func (s *shared) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		return s.closer.Close()
	}
	return nil
}

// handle is one reference to a shared descriptor.
type handle struct {
	shared *shared
	once   sync.Once
}

func (h *handle) Close() (err error) {
	h.once.Do(func() {
		err = h.shared.release()
	})
	return err
}

// duplicator is implemented by simulated descriptors a child can inherit.
type duplicator interface {
	dup() io.Closer
}

type pipeReader struct {
	*io.PipeReader
	*handle
}

func (p *pipeReader) Close() error { return p.handle.Close() }

func (p *pipeReader) dup() io.Closer {
	p.handle.shared.acquire()
	return &pipeReader{PipeReader: p.PipeReader, handle: &handle{shared: p.handle.shared}}
}

type pipeWriter struct {
	*io.PipeWriter
	*handle
}

func (p *pipeWriter) Close() error { return p.handle.Close() }

func (p *pipeWriter) dup() io.Closer {
	p.handle.shared.acquire()
	return &pipeWriter{PipeWriter: p.PipeWriter, handle: &handle{shared: p.handle.shared}}
}

func newSimPipe() (*pipeReader, *pipeWriter) {
	r, w := io.Pipe()
	return &pipeReader{PipeReader: r, handle: &handle{shared: newShared(r)}},
		&pipeWriter{PipeWriter: w, handle: &handle{shared: newShared(w)}}
}

// simFile is a simulated open file that children can inherit.
type simFile struct {
	afero.File
	*handle
}

var _ afero.File = (*simFile)(nil)

func newSimFile(f afero.File) *simFile {
	return &simFile{File: f, handle: &handle{shared: newShared(f)}}
}

func (f *simFile) Close() error { return f.handle.Close() }

func (f *simFile) dup() io.Closer {
	f.handle.shared.acquire()
	return &simFile{File: f.File, handle: &handle{shared: f.handle.shared}}
}

// inheritReader gives a child its own reference to a parent's input stream.
// Streams the simulation didn't create are shared but never closed by the
// child.
func inheritReader(r io.Reader) io.ReadCloser {
	if d, ok := r.(interface {
		io.Reader
		duplicator
	}); ok {
		return d.dup().(io.ReadCloser)
	}
	return io.NopCloser(r)
}

// inheritWriter is inheritReader for output streams.
func inheritWriter(w io.Writer) io.WriteCloser {
	if d, ok := w.(interface {
		io.Writer
		duplicator
	}); ok {
		return d.dup().(io.WriteCloser)
	}
	return nopWriteCloser{w}
}

// simFs wraps files opened on the simulated filesystem so they can be
// inherited.
type simFs struct {
	*RelativeFs
}

func (s simFs) Create(name string) (afero.File, error) {
	return wrapSimFile(s.RelativeFs.Create(name))
}

func (s simFs) Open(name string) (afero.File, error) {
	return wrapSimFile(s.RelativeFs.Open(name))
}

func (s simFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return wrapSimFile(s.RelativeFs.OpenFile(name, flag, perm))
}

func wrapSimFile(f afero.File, err error) (afero.File, error) {
	if err != nil {
		return nil, err
	}
	return newSimFile(f), nil
}
