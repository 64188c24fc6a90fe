package ast

import (
	"fmt"
	"strings"
)

// OutMode selects how standard output is redirected.
type OutMode int

const (
	OutNone OutMode = iota
	// OutTruncate is '>'.
	OutTruncate
	// OutAppend is '>>'.
	OutAppend
)

// InMode selects how standard input is redirected.
type InMode int

const (
	InNone InMode = iota
	// InFile is '<'.
	InFile
	// InInline is a heredoc, the input is Text.
	InInline
)

// OutRedirect redirects standard output to Path.
type OutRedirect struct {
	Mode OutMode `json:"mode"`
	Path string  `json:"path,omitempty"`
}

// InRedirect redirects standard input from Path or from the literal Text.
type InRedirect struct {
	Mode InMode `json:"mode"`
	Path string `json:"path,omitempty"`
	Text string `json:"text,omitempty"`
}

// Redirect holds the independent input and output redirections of a command.
type Redirect struct {
	Out OutRedirect `json:"out"`
	In  InRedirect  `json:"in"`
}

// IsZero reports whether no redirection is requested.
func (r Redirect) IsZero() bool {
	return r.Out.Mode == OutNone && r.In.Mode == InNone
}

// Validate checks every requested redirection has a target.
func (r Redirect) Validate() error {
	switch r.Out.Mode {
	case OutNone:
	case OutTruncate, OutAppend:
		if r.Out.Path == "" {
			return ErrEmptyPath
		}
	default:
		return fmt.Errorf("unknown output redirection mode %d", r.Out.Mode)
	}

	switch r.In.Mode {
	case InNone, InInline:
	case InFile:
		if r.In.Path == "" {
			return ErrEmptyPath
		}
	default:
		return fmt.Errorf("unknown input redirection mode %d", r.In.Mode)
	}
	return nil
}

func (r Redirect) String() string {
	var parts []string
	switch r.In.Mode {
	case InFile:
		parts = append(parts, "< "+quote(r.In.Path))
	case InInline:
		parts = append(parts, "<<< "+quote(strings.TrimSuffix(r.In.Text, "\n")))
	}
	switch r.Out.Mode {
	case OutTruncate:
		parts = append(parts, "> "+quote(r.Out.Path))
	case OutAppend:
		parts = append(parts, ">> "+quote(r.Out.Path))
	}
	return strings.Join(parts, " ")
}
