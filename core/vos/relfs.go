package vos

import (
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
)

// FsOp is a textual description of the filesystem operation.
type FsOp = string

const (
	FsOpChtimes FsOp = "chtimes"
	FsOpChmod   FsOp = "chmod"
	FsOpChown   FsOp = "chown"
	FsOpStat    FsOp = "stat"
	FsOpRename  FsOp = "rename"
	FsOpRemove  FsOp = "remove"
	FsOpOpen    FsOp = "open"
	FsOpMkdir   FsOp = "mkdir"
	FsOpCreate  FsOp = "create"
)

// RelativeFs resolves relative names against a working directory before
// handing them to a base filesystem that has no working directory of its own.
type RelativeFs struct {
	BaseFs afero.Fs
	Getwd  func() (string, error)
}

var _ afero.Fs = (*RelativeFs)(nil)

// NewRelativeFs creates a RelativeFs over base.
func NewRelativeFs(base afero.Fs, getwd func() (string, error)) *RelativeFs {
	return &RelativeFs{BaseFs: base, Getwd: getwd}
}

func (r *RelativeFs) abs(op FsOp, name string) (string, error) {
	if path.IsAbs(name) {
		return path.Clean(name), nil
	}
	wd, err := r.Getwd()
	if err != nil {
		return "", &os.PathError{Op: op, Path: name, Err: err}
	}
	return path.Join(wd, name), nil
}

func (r *RelativeFs) Name() string {
	return "RelativeFs"
}

func (r *RelativeFs) Create(name string) (afero.File, error) {
	name, err := r.abs(FsOpCreate, name)
	if err != nil {
		return nil, err
	}
	return r.BaseFs.Create(name)
}

func (r *RelativeFs) Mkdir(name string, perm os.FileMode) error {
	name, err := r.abs(FsOpMkdir, name)
	if err != nil {
		return err
	}
	return r.BaseFs.Mkdir(name, perm)
}

func (r *RelativeFs) MkdirAll(name string, perm os.FileMode) error {
	name, err := r.abs(FsOpMkdir, name)
	if err != nil {
		return err
	}
	return r.BaseFs.MkdirAll(name, perm)
}

func (r *RelativeFs) Open(name string) (afero.File, error) {
	name, err := r.abs(FsOpOpen, name)
	if err != nil {
		return nil, err
	}
	return r.BaseFs.Open(name)
}

func (r *RelativeFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	name, err := r.abs(FsOpOpen, name)
	if err != nil {
		return nil, err
	}
	return r.BaseFs.OpenFile(name, flag, perm)
}

func (r *RelativeFs) Remove(name string) error {
	name, err := r.abs(FsOpRemove, name)
	if err != nil {
		return err
	}
	return r.BaseFs.Remove(name)
}

func (r *RelativeFs) RemoveAll(name string) error {
	name, err := r.abs(FsOpRemove, name)
	if err != nil {
		return err
	}
	return r.BaseFs.RemoveAll(name)
}

func (r *RelativeFs) Rename(oldname, newname string) error {
	oldname, err := r.abs(FsOpRename, oldname)
	if err != nil {
		return err
	}
	newname, err = r.abs(FsOpRename, newname)
	if err != nil {
		return err
	}
	return r.BaseFs.Rename(oldname, newname)
}

func (r *RelativeFs) Stat(name string) (os.FileInfo, error) {
	name, err := r.abs(FsOpStat, name)
	if err != nil {
		return nil, err
	}
	return r.BaseFs.Stat(name)
}

func (r *RelativeFs) Chmod(name string, mode os.FileMode) error {
	name, err := r.abs(FsOpChmod, name)
	if err != nil {
		return err
	}
	return r.BaseFs.Chmod(name, mode)
}

func (r *RelativeFs) Chown(name string, uid, gid int) error {
	name, err := r.abs(FsOpChown, name)
	if err != nil {
		return err
	}
	return r.BaseFs.Chown(name, uid, gid)
}

func (r *RelativeFs) Chtimes(name string, atime, mtime time.Time) error {
	name, err := r.abs(FsOpChtimes, name)
	if err != nil {
		return err
	}
	return r.BaseFs.Chtimes(name, atime, mtime)
}
