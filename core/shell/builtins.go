package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins.
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command that runs inside the shell process.
type Builtin interface {
	Main(s *Shell, args []string) int
}

type BuiltinFunc func(s *Shell, args []string) int

func (f BuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames returns the sorted names of the registered builtins.
func BuiltinNames() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// builtinOpts parses args, it returns ok=false if the builtin should exit
// with status.
func builtinOpts(s *Shell, opts *getopt.Set, usage string, args []string) (status int, ok bool) {
	opts.SetParameters(usage)
	help := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		w := s.Stderr()
		fmt.Fprintf(w, "%s: %v\n", args[0], err)
		opts.PrintUsage(w)
		return StatusUsage, false
	}
	if *help {
		opts.PrintUsage(s.Stdout())
		return StatusSuccess, false
	}
	return 0, true
}

// builtinError formats an error as "name: path: reason".
func builtinError(s *Shell, name string, err error) int {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = fmt.Errorf("%s: %v", pathErr.Path, pathErr.Err)
	}
	fmt.Fprintf(s.Stderr(), "%s: %v\n", name, err)
	return StatusFailure
}

// chdir changes the working directory and keeps PWD and OLDPWD current.
func (s *Shell) chdir(dir string) error {
	old, _ := s.OS.Getwd()
	if err := s.OS.Chdir(dir); err != nil {
		return err
	}

	wd, err := s.OS.Getwd()
	if err != nil {
		return err
	}
	s.OS.Setenv("OLDPWD", old)
	s.OS.Setenv("PWD", wd)
	return nil
}

// printDirs writes the working directory followed by the stack.
func (s *Shell) printDirs(oneLine bool) {
	cwd, _ := s.OS.Getwd()
	if oneLine {
		fmt.Fprintln(s.Stdout(), s.Dirs.Format(cwd))
		return
	}
	fmt.Fprintln(s.Stdout(), strings.Join(append([]string{cwd}, s.Dirs.Entries()...), "\n"))
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	if len(args) == 2 && args[1] == "-" {
		oldpwd := s.OS.Getenv("OLDPWD")
		if oldpwd == "" {
			fmt.Fprintf(s.Stderr(), "%s: OLDPWD not set\n", args[0])
			return StatusFailure
		}
		if err := s.chdir(oldpwd); err != nil {
			return builtinError(s, args[0], err)
		}
		fmt.Fprintln(s.Stdout(), oldpwd)
		return StatusSuccess
	}

	opts := getopt.New()
	if status, ok := builtinOpts(s, opts, "[DIR]", args); !ok {
		return status
	}

	var dir string
	switch opts.NArgs() {
	case 0:
		home, err := s.OS.UserHomeDir()
		if err != nil || home == "" {
			fmt.Fprintf(s.Stderr(), "%s: HOME not set\n", args[0])
			return StatusFailure
		}
		dir = home
	case 1:
		dir = opts.Arg(0)
	default:
		fmt.Fprintf(s.Stderr(), "%s: too many arguments\n", args[0])
		return StatusFailure
	}

	if err := s.chdir(dir); err != nil {
		return builtinError(s, args[0], err)
	}
	return StatusSuccess
}

// Pushd changes to a directory and saves the previous one on the stack.
func Pushd(s *Shell, args []string) int {
	opts := getopt.New()
	if status, ok := builtinOpts(s, opts, "DIR", args); !ok {
		return status
	}
	if opts.NArgs() != 1 {
		fmt.Fprintf(s.Stderr(), "%s: usage: %s <directory>\n", args[0], args[0])
		return StatusFailure
	}

	cwd, err := s.OS.Getwd()
	if err != nil {
		return builtinError(s, args[0], err)
	}
	if err := s.chdir(opts.Arg(0)); err != nil {
		return builtinError(s, args[0], err)
	}

	s.Dirs.Push(cwd)
	s.printDirs(true)
	return StatusSuccess
}

// Popd returns to the directory on top of the stack.
func Popd(s *Shell, args []string) int {
	opts := getopt.New()
	if status, ok := builtinOpts(s, opts, "", args); !ok {
		return status
	}
	if opts.NArgs() != 0 {
		fmt.Fprintf(s.Stderr(), "%s: usage: %s\n", args[0], args[0])
		return StatusFailure
	}

	top, ok := s.Dirs.Top()
	if !ok {
		fmt.Fprintf(s.Stderr(), "%s: directory stack empty\n", args[0])
		return StatusFailure
	}
	if err := s.chdir(top); err != nil {
		return builtinError(s, args[0], err)
	}

	s.Dirs.Pop()
	s.printDirs(true)
	return StatusSuccess
}

// Dirs prints or clears the directory stack.
func Dirs(s *Shell, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the directory stack")
	perLine := opts.Bool('p', "print one entry per line")
	if status, ok := builtinOpts(s, opts, "", args); !ok {
		return status
	}
	if opts.NArgs() != 0 {
		fmt.Fprintf(s.Stderr(), "%s: too many arguments\n", args[0])
		return StatusFailure
	}

	if *clear {
		s.Dirs.Clear()
		return StatusSuccess
	}
	s.printDirs(!*perLine)
	return StatusSuccess
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["pushd"] = BuiltinFunc(Pushd)
	AllBuiltins["popd"] = BuiltinFunc(Popd)
	AllBuiltins["dirs"] = BuiltinFunc(Dirs)
}
