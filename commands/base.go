package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/josephlewis42/minish/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// AllCommands holds every registered program keyed by its install path.
var AllCommands = make(map[string]vos.ProcessFunc)

func mustAddCmd(cmdPath string, cmd vos.ProcessFunc) {
	if _, ok := AllCommands[cmdPath]; ok {
		panic(fmt.Sprintf("duplicate command %q", cmdPath))
	}
	AllCommands[cmdPath] = cmd
}

// mustAddBinCmd adds a command under /bin and /usr/bin.
func mustAddBinCmd(name string, cmd vos.ProcessFunc) {
	mustAddCmd(path.Join("/bin", name), cmd)
	mustAddCmd(path.Join("/usr/bin", name), cmd)
}

// CommandPaths lists the install path of every registered command.
func CommandPaths() []string {
	var out []string
	for cmdPath := range AllCommands {
		out = append(out, cmdPath)
	}
	sort.Strings(out)
	return out
}

// Install adds every registered command to a simulation.
func Install(sim *vos.SimOS) error {
	for _, cmdPath := range CommandPaths() {
		if err := sim.Install(cmdPath, AllCommands[cmdPath]); err != nil {
			return fmt.Errorf("install %s: %w", cmdPath, err)
		}
	}
	return nil
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(virtOS vos.VOS, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(virtOS.Args(), nil)
	if err != nil && !s.NeverBail {
		fmt.Fprintf(virtOS.Stderr(), "error: %s\n\n", err)

		s.PrintHelp(virtOS.Stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(virtOS.Stdout())
		return 0
	}

	return callback()
}

// RunE is like Run but the callback reports failure with an error, which is
// printed prefixed by the program name.
func (s *SimpleCommand) RunE(virtOS vos.VOS, callback func() error) int {
	return s.Run(virtOS, func() int {
		if err := callback(); err != nil {
			fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", path.Base(virtOS.Args()[0]), describeErr(err))
			return 1
		}
		return 0
	})
}

// describeErr renders file errors the way coreutils does: "name: reason".
func describeErr(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Sprintf("%s: %s", pathErr.Path, pathErr.Err)
	}
	return err.Error()
}

// fileErr attributes err to the name the user typed.
func fileErr(name string, err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &os.PathError{Op: "open", Path: name, Err: err}
}
