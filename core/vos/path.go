package vos

import (
	"errors"
	"io/fs"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(vfs VFS, file string) error {
	d, err := vfs.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// pathList, a PATH style list. If file contains a slash, it is tried directly
// and the PATH is not consulted.
func LookPath(vfs VFS, pathList, file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(vfs, file); err != nil {
			return "", err
		}
		return file, nil
	}

	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		if candidate := path.Join(dir, file); findExecutable(vfs, candidate) == nil {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// IsNotFound reports whether err came from a failed program lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// IsPermission reports whether err came from a program that is not
// executable.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
