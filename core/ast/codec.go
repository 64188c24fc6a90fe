package ast

import (
	"encoding/json"
	"fmt"
)

// wireNode is the tagged JSON form of a Node.
type wireNode struct {
	Type       string    `json:"type"`
	Argv       []string  `json:"argv,omitempty"`
	Assigns    []Assign  `json:"assigns,omitempty"`
	Redirect   *Redirect `json:"redirect,omitempty"`
	Left       *wireNode `json:"left,omitempty"`
	Right      *wireNode `json:"right,omitempty"`
	Body       *wireNode `json:"body,omitempty"`
	Background bool      `json:"background,omitempty"`
}

// Marshal encodes a tree as JSON.
func Marshal(n Node) ([]byte, error) {
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a tree produced by Marshal.
func Unmarshal(data []byte) (Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(&w)
}

func redirectPtr(r Redirect) *Redirect {
	if r.IsZero() {
		return nil
	}
	return &r
}

func toWire(n Node) (*wireNode, error) {
	if n == nil {
		return nil, nil
	}

	out := &wireNode{Type: n.Kind()}
	var err error
	switch n := n.(type) {
	case *Simple:
		out.Argv = n.Argv
		out.Assigns = n.Assigns
		out.Redirect = redirectPtr(n.Redirect)
		return out, nil
	case *Pipe:
		out.Left, out.Right, err = wirePair(n.Left, n.Right)
	case *And:
		out.Left, out.Right, err = wirePair(n.Left, n.Right)
	case *Or:
		out.Left, out.Right, err = wirePair(n.Left, n.Right)
	case *Sequence:
		out.Background = n.Background
		out.Left, out.Right, err = wirePair(n.Left, n.Right)
	case *Subshell:
		out.Redirect = redirectPtr(n.Redirect)
		out.Body, err = toWire(n.Body)
	default:
		return nil, fmt.Errorf("unknown node type %T", n)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func wirePair(left, right Node) (*wireNode, *wireNode, error) {
	l, err := toWire(left)
	if err != nil {
		return nil, nil, err
	}
	r, err := toWire(right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func fromWire(w *wireNode) (Node, error) {
	if w == nil {
		return nil, nil
	}

	var redirect Redirect
	if w.Redirect != nil {
		redirect = *w.Redirect
	}

	switch w.Type {
	case KindSimple:
		return &Simple{Argv: w.Argv, Assigns: w.Assigns, Redirect: redirect}, nil
	case KindSubshell:
		body, err := fromWire(w.Body)
		if err != nil {
			return nil, err
		}
		return &Subshell{Body: body, Redirect: redirect}, nil
	}

	left, err := fromWire(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := fromWire(w.Right)
	if err != nil {
		return nil, err
	}

	switch w.Type {
	case KindPipe:
		return &Pipe{Left: left, Right: right}, nil
	case KindAnd:
		return &And{Left: left, Right: right}, nil
	case KindOr:
		return &Or{Left: left, Right: right}, nil
	case KindSequence:
		return &Sequence{Left: left, Right: right, Background: w.Background}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", w.Type)
	}
}
