// Package dirstack implements the directory stack used by pushd and popd.
package dirstack

import "strings"

// Stack is a LIFO of absolute directory paths. The zero value is an empty
// stack ready to use.
type Stack struct {
	entries []string
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push adds dir to the top of the stack.
func (s *Stack) Push(dir string) {
	s.entries = append(s.entries, dir)
}

// Pop removes and returns the top of the stack. ok is false if the stack was
// empty.
func (s *Stack) Pop() (dir string, ok bool) {
	dir, ok = s.Top()
	if ok {
		s.entries = s.entries[:len(s.entries)-1]
	}
	return dir, ok
}

// Top returns the most recently pushed entry without removing it.
func (s *Stack) Top() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stack, most recently pushed first.
func (s *Stack) Entries() []string {
	out := make([]string, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Clone returns an independent copy of the stack.
func (s *Stack) Clone() *Stack {
	return &Stack{entries: append([]string(nil), s.entries...)}
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.entries = nil
}

// Format renders the stack the way pushd and popd print it: the current
// directory followed by the entries, most recently pushed first.
func (s *Stack) Format(cwd string) string {
	return strings.Join(append([]string{cwd}, s.Entries()...), " ")
}

// FromEntries builds a stack from a list ordered most recently pushed first,
// the inverse of Entries.
func FromEntries(entries []string) *Stack {
	out := New()
	for i := len(entries) - 1; i >= 0; i-- {
		out.Push(entries[i])
	}
	return out
}
