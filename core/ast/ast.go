// Package ast holds the command tree the shell executes.
//
// Trees are produced by a parser (see core/parse) and are never mutated by
// the executor.
package ast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Node is a command tree node. The concrete types are Simple, Pipe, And, Or,
// Sequence and Subshell.
type Node interface {
	fmt.Stringer

	// Kind returns the node's type name as used in the JSON encoding.
	Kind() string
}

const (
	KindSimple   = "simple"
	KindPipe     = "pipe"
	KindAnd      = "and"
	KindOr       = "or"
	KindSequence = "sequence"
	KindSubshell = "subshell"
)

// Assign is a NAME=VALUE binding local to a single command.
type Assign struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (a Assign) String() string {
	return a.Name + "=" + quote(a.Value)
}

// Simple runs one program or builtin.
type Simple struct {
	Argv     []string
	Assigns  []Assign
	Redirect Redirect
}

// Pipe connects the standard output of Left to the standard input of Right.
type Pipe struct {
	Left, Right Node
}

// And runs Right only if Left succeeds.
type And struct {
	Left, Right Node
}

// Or runs Right only if Left fails.
type Or struct {
	Left, Right Node
}

// Sequence is a ';' or '&' separated pair. Background marks the terminator
// following Left as '&'. Right is nil when the chain ends with a terminator.
type Sequence struct {
	Left, Right Node
	Background  bool
}

// Subshell runs Body in an isolated child.
type Subshell struct {
	Body     Node
	Redirect Redirect
}

func (*Simple) Kind() string   { return KindSimple }
func (*Pipe) Kind() string     { return KindPipe }
func (*And) Kind() string      { return KindAnd }
func (*Or) Kind() string       { return KindOr }
func (*Sequence) Kind() string { return KindSequence }
func (*Subshell) Kind() string { return KindSubshell }

func (n *Simple) String() string {
	var parts []string
	for _, a := range n.Assigns {
		parts = append(parts, a.String())
	}
	for _, arg := range n.Argv {
		parts = append(parts, quote(arg))
	}
	if redir := n.Redirect.String(); redir != "" {
		parts = append(parts, redir)
	}
	return strings.Join(parts, " ")
}

func (n *Pipe) String() string { return binary(n.Left, "|", n.Right) }
func (n *And) String() string  { return binary(n.Left, "&&", n.Right) }
func (n *Or) String() string   { return binary(n.Left, "||", n.Right) }

func (n *Sequence) String() string {
	term := ";"
	if n.Background {
		term = "&"
	}
	if n.Right == nil {
		return nodeString(n.Left) + " " + term
	}
	return binary(n.Left, term, n.Right)
}

func (n *Subshell) String() string {
	out := "( " + nodeString(n.Body) + " )"
	if redir := n.Redirect.String(); redir != "" {
		out += " " + redir
	}
	return out
}

func binary(left Node, op string, right Node) string {
	return nodeString(left) + " " + op + " " + nodeString(right)
}

func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n'\"\\$&|;<>()") {
		return strconv.Quote(s)
	}
	return s
}

var (
	// ErrEmptyCommand is returned by Validate for a Simple with nothing to do.
	ErrEmptyCommand = errors.New("empty command")
	// ErrMissingOperand is returned by Validate when a required child is nil.
	ErrMissingOperand = errors.New("missing operand")
	// ErrEmptyPath is returned by Validate for a redirection without a target.
	ErrEmptyPath = errors.New("empty redirection target")
)

// Validate checks the structural invariants of a tree: every required child
// is present, every command has a name, assignments or a redirection, and
// every redirection has a target.
func Validate(n Node) error {
	switch n := n.(type) {
	case nil:
		return ErrMissingOperand
	case *Simple:
		if len(n.Argv) == 0 && len(n.Assigns) == 0 && n.Redirect.IsZero() {
			return ErrEmptyCommand
		}
		if len(n.Argv) > 0 && n.Argv[0] == "" {
			return ErrEmptyCommand
		}
		for _, a := range n.Assigns {
			if a.Name == "" {
				return fmt.Errorf("assignment %q: %w", a.String(), ErrEmptyCommand)
			}
		}
		return n.Redirect.Validate()
	case *Pipe:
		return validatePair(n.Left, n.Right)
	case *And:
		return validatePair(n.Left, n.Right)
	case *Or:
		return validatePair(n.Left, n.Right)
	case *Sequence:
		if err := Validate(n.Left); err != nil {
			return err
		}
		if n.Right == nil {
			return nil
		}
		return Validate(n.Right)
	case *Subshell:
		if err := Validate(n.Body); err != nil {
			return err
		}
		return n.Redirect.Validate()
	default:
		return fmt.Errorf("unknown node type %T", n)
	}
}

func validatePair(left, right Node) error {
	if err := Validate(left); err != nil {
		return err
	}
	return Validate(right)
}

// Command is shorthand for a Simple node with no bindings or redirections.
func Command(argv ...string) *Simple {
	return &Simple{Argv: argv}
}
