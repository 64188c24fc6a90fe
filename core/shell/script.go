package shell

import (
	"io"
	"strconv"
	"strings"

	"github.com/josephlewis42/minish/core/parse"
)

// RunScript parses src and executes it one command line at a time, so each
// line's words are expanded after the previous line ran. It returns the last
// status, or StatusUsage if the script doesn't parse.
func (s *Shell) RunScript(src io.Reader, name string) int {
	script, err := parse.Parse(src, name)
	if err != nil {
		s.errorf("%v", err)
		return s.setStatus(StatusUsage)
	}

	converter := parse.NewConverter(s.lookup)
	for _, line := range script.Lines {
		node, err := converter.Line(line)
		if err != nil {
			s.errorf("%v", err)
			s.setStatus(StatusUsage)
			continue
		}
		s.Execute(node)
	}
	return s.status
}

// RunString is RunScript for a single string of source.
func (s *Shell) RunString(src string) int {
	return s.RunScript(strings.NewReader(src), "")
}

// lookup resolves parameters for expansion.
func (s *Shell) lookup(name string) string {
	if name == "$" {
		return strconv.Itoa(s.OS.Getpid())
	}
	return s.OS.Getenv(name)
}
