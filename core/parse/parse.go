// Package parse turns shell source into command trees using mvdan.cc/sh.
//
// Words are expanded while converting, so a line is converted just before it
// runs and sees the variables set by earlier lines.
package parse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/minish/core/ast"
	"mvdan.cc/sh/v3/syntax"
)

// Script is parsed shell source split into command lines.
type Script struct {
	Lines [][]*syntax.Stmt
}

// Parse reads a shell script. The parser accepts bash syntax, constructs the
// executor can't run are rejected by Converter.
func Parse(r io.Reader, name string) (*Script, error) {
	file, err := syntax.NewParser().Parse(r, name)
	if err != nil {
		return nil, err
	}

	return &Script{Lines: SplitLines(file.Stmts)}, nil
}

// ParseString is Parse for a single string of source.
func ParseString(src string) (*Script, error) {
	return Parse(strings.NewReader(src), "")
}

// SplitLines groups statements that share a source line, "a; b & c" is one
// group while two lines are two groups.
func SplitLines(stmts []*syntax.Stmt) [][]*syntax.Stmt {
	var out [][]*syntax.Stmt
	var current []*syntax.Stmt
	for _, stmt := range stmts {
		if len(current) > 0 && stmt.Pos().Line() != current[len(current)-1].End().Line() {
			out = append(out, current)
			current = nil
		}
		current = append(current, stmt)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// LookupFunc returns the value of a shell parameter such as "HOME" or "?".
type LookupFunc func(name string) string

// SyntaxError is returned for constructs the executor doesn't support.
type SyntaxError struct {
	Line, Col uint
	Construct string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near %d:%d: unsupported %s", e.Line, e.Col, e.Construct)
}

func unsupported(node syntax.Node, format string, a ...interface{}) error {
	return &SyntaxError{
		Line:      node.Pos().Line(),
		Col:       node.Pos().Col(),
		Construct: fmt.Sprintf(format, a...),
	}
}

// Converter builds command trees from parsed statements.
type Converter struct {
	Lookup LookupFunc
}

// NewConverter creates a Converter that expands parameters with lookup.
func NewConverter(lookup LookupFunc) *Converter {
	return &Converter{Lookup: lookup}
}

// Line converts the statements of one command line into a single tree.
// Statements are chained left to right with Sequence nodes, a trailing '&'
// becomes a Sequence with no right side.
func (c *Converter) Line(stmts []*syntax.Stmt) (ast.Node, error) {
	if len(stmts) == 0 {
		return nil, nil
	}

	chain, err := c.stmt(stmts[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(stmts); i++ {
		next, err := c.stmt(stmts[i])
		if err != nil {
			return nil, err
		}
		chain = &ast.Sequence{Left: chain, Right: next, Background: stmts[i-1].Background}
	}

	if stmts[len(stmts)-1].Background {
		chain = &ast.Sequence{Left: chain, Background: true}
	}
	return chain, nil
}

func (c *Converter) stmt(stmt *syntax.Stmt) (ast.Node, error) {
	switch {
	case stmt.Negated:
		return nil, unsupported(stmt, "negation")
	case stmt.Coprocess:
		return nil, unsupported(stmt, "coprocess")
	}

	redirect, err := c.redirect(stmt.Redirs)
	if err != nil {
		return nil, err
	}

	switch cmd := stmt.Cmd.(type) {
	case nil:
		// Bare redirections such as "> file" truncate the file.
		return &ast.Simple{Redirect: redirect}, nil

	case *syntax.CallExpr:
		return c.call(cmd, redirect)

	case *syntax.Subshell:
		body, err := c.Line(cmd.Stmts)
		if err != nil {
			return nil, err
		}
		if body == nil {
			return nil, unsupported(cmd, "empty subshell")
		}
		return &ast.Subshell{Body: body, Redirect: redirect}, nil

	case *syntax.BinaryCmd:
		if !redirect.IsZero() {
			return nil, unsupported(stmt, "redirection of %s", cmd.Op)
		}
		left, err := c.stmt(cmd.X)
		if err != nil {
			return nil, err
		}
		right, err := c.stmt(cmd.Y)
		if err != nil {
			return nil, err
		}

		switch cmd.Op {
		case syntax.AndStmt:
			return &ast.And{Left: left, Right: right}, nil
		case syntax.OrStmt:
			return &ast.Or{Left: left, Right: right}, nil
		case syntax.Pipe:
			return &ast.Pipe{Left: left, Right: right}, nil
		default:
			return nil, unsupported(cmd, "operator %s", cmd.Op)
		}

	default:
		return nil, unsupported(stmt, "command %s", nodeName(cmd))
	}
}

func (c *Converter) call(cmd *syntax.CallExpr, redirect ast.Redirect) (ast.Node, error) {
	out := &ast.Simple{Redirect: redirect}

	// Assignments are visible to later assignments on the same command but
	// not to its arguments.
	pending := make(map[string]string)
	for _, assign := range cmd.Assigns {
		if assign.Name == nil || assign.Append || assign.Naked || assign.Index != nil || assign.Array != nil {
			return nil, unsupported(assign, "assignment")
		}

		value, err := c.wordWith(assign.Value, pending)
		if err != nil {
			return nil, err
		}
		pending[assign.Name.Value] = value
		out.Assigns = append(out.Assigns, ast.Assign{Name: assign.Name.Value, Value: value})
	}

	for _, word := range cmd.Args {
		arg, err := c.Word(word)
		if err != nil {
			return nil, err
		}
		out.Argv = append(out.Argv, arg)
	}

	return out, nil
}

func (c *Converter) redirect(redirs []*syntax.Redirect) (ast.Redirect, error) {
	var out ast.Redirect
	for _, r := range redirs {
		fd := ""
		if r.N != nil {
			fd = r.N.Value
		}

		switch r.Op {
		case syntax.RdrOut, syntax.ClbOut, syntax.AppOut:
			if fd != "" && fd != "1" {
				return out, unsupported(r, "redirection of descriptor %s", fd)
			}
			target, err := c.Word(r.Word)
			if err != nil {
				return out, err
			}
			if target == "" {
				return out, unsupported(r, "empty redirection target")
			}
			out.Out = ast.OutRedirect{Mode: ast.OutTruncate, Path: target}
			if r.Op == syntax.AppOut {
				out.Out.Mode = ast.OutAppend
			}

		case syntax.RdrIn:
			if fd != "" && fd != "0" {
				return out, unsupported(r, "redirection of descriptor %s", fd)
			}
			source, err := c.Word(r.Word)
			if err != nil {
				return out, err
			}
			if source == "" {
				return out, unsupported(r, "empty redirection source")
			}
			out.In = ast.InRedirect{Mode: ast.InFile, Path: source}

		case syntax.Hdoc, syntax.DashHdoc:
			text, err := c.Word(r.Hdoc)
			if err != nil {
				return out, err
			}
			out.In = ast.InRedirect{Mode: ast.InInline, Text: text}

		case syntax.WordHdoc:
			text, err := c.Word(r.Word)
			if err != nil {
				return out, err
			}
			out.In = ast.InRedirect{Mode: ast.InInline, Text: text + "\n"}

		default:
			return out, unsupported(r, "redirection %s", r.Op)
		}
	}
	return out, nil
}

// Word expands a word to a single string. Field splitting and globbing
// aren't performed.
func (c *Converter) Word(word *syntax.Word) (string, error) {
	return c.wordWith(word, nil)
}

func (c *Converter) wordWith(word *syntax.Word, pending map[string]string) (string, error) {
	if word == nil {
		return "", nil
	}

	var out strings.Builder
	for _, part := range word.Parts {
		if err := c.wordPart(&out, part, pending); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (c *Converter) wordPart(out *strings.Builder, part syntax.WordPart, pending map[string]string) error {
	switch part := part.(type) {
	case *syntax.Lit:
		out.WriteString(part.Value)

	case *syntax.SglQuoted:
		if part.Dollar {
			return unsupported(part, "ANSI-C quoting")
		}
		out.WriteString(part.Value)

	case *syntax.DblQuoted:
		if part.Dollar {
			return unsupported(part, "locale quoting")
		}
		for _, subPart := range part.Parts {
			if err := c.wordPart(out, subPart, pending); err != nil {
				return err
			}
		}

	case *syntax.ParamExp:
		if part.Param == nil || part.Excl || part.Length || part.Width ||
			part.Index != nil || part.Slice != nil || part.Repl != nil || part.Exp != nil {
			return unsupported(part, "parameter expansion")
		}
		out.WriteString(c.lookup(part.Param.Value, pending))

	default:
		return unsupported(part, "expansion %s", nodeName(part))
	}
	return nil
}

func (c *Converter) lookup(name string, pending map[string]string) string {
	if value, ok := pending[name]; ok {
		return value
	}
	if c.Lookup == nil {
		return ""
	}
	return c.Lookup(name)
}

// nodeName returns a short human readable description of node.
func nodeName(node syntax.Node) string {
	var buf bytes.Buffer
	if err := syntax.NewPrinter().Print(&buf, node); err != nil || buf.Len() == 0 || buf.Len() > 40 {
		return fmt.Sprintf("%T", node)
	}
	return fmt.Sprintf("%q", buf.String())
}
