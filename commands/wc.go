package commands

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/minish/core/vos"
)

// wcCount holds the totals for one input.
type wcCount struct {
	name                string
	lines, words, bytes int
}

func (w *wcCount) add(other wcCount) {
	w.lines += other.lines
	w.words += other.words
	w.bytes += other.bytes
}

func countReader(name string, r io.Reader) (wcCount, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return wcCount{}, err
	}
	return wcCount{
		name:  name,
		lines: bytes.Count(data, []byte{'\n'}),
		words: len(bytes.Fields(data)),
		bytes: len(data),
	}, nil
}

// countFile counts a named file, "-" is standard input.
func countFile(virtOS vos.VOS, name string) (wcCount, error) {
	if name == "-" {
		return countReader(name, virtOS.Stdin())
	}

	fd, err := virtOS.FS().Open(name)
	if err != nil {
		return wcCount{}, fileErr(name, err)
	}
	defer fd.Close()

	count, err := countReader(name, fd)
	if err != nil {
		return wcCount{}, fileErr(name, err)
	}
	return count, nil
}

// Wc implements the POSIX command by the same name for newlines, words
// and bytes.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "wc [-lwc] [FILE...]",
		Short: "Write the number of newlines, words, and bytes contained in each input file to the standard output.",
	}

	opts := cmd.Flags()
	lines := opts.Bool('l', "write the number of newlines in each file")
	words := opts.Bool('w', "write the number of words in each file")
	byteCount := opts.Bool('c', "write the number of bytes in each file")

	return cmd.RunE(virtOS, func() error {
		if !*lines && !*words && !*byteCount {
			*lines, *words, *byteCount = true, true, true
		}

		show := func(count wcCount, named bool) {
			var cols []string
			if *lines {
				cols = append(cols, fmt.Sprint(count.lines))
			}
			if *words {
				cols = append(cols, fmt.Sprint(count.words))
			}
			if *byteCount {
				cols = append(cols, fmt.Sprint(count.bytes))
			}
			if named {
				cols = append(cols, count.name)
			}
			fmt.Fprintln(virtOS.Stdout(), strings.Join(cols, " "))
		}

		args := opts.Args()
		if len(args) == 0 {
			count, err := countReader("", virtOS.Stdin())
			if err != nil {
				return err
			}
			show(count, false)
			return nil
		}

		total := wcCount{name: "total"}
		for _, name := range args {
			count, err := countFile(virtOS, name)
			if err != nil {
				return err
			}
			total.add(count)
			show(count, true)
		}
		if len(args) > 1 {
			show(total, true)
		}
		return nil
	})
}

var _ vos.ProcessFunc = Wc

func init() {
	mustAddBinCmd("wc", Wc)
}
