// Package workflow holds the status transition tables for every entity
// kind and the rules that turn an accepted change into a timeline event.
// It performs no I/O.
package workflow

import (
	"sort"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Machine is the transition table for one status kind.
type Machine[S ~string] struct {
	kind    string
	initial S
	edges   map[S][]S
	states  map[S]struct{}
}

type Edge[S ~string] struct {
	From S
	To   S
}

func newMachine[S ~string](kind string, initial S, edges ...Edge[S]) *Machine[S] {
	m := &Machine[S]{
		kind:    kind,
		initial: initial,
		edges:   make(map[S][]S),
		states:  map[S]struct{}{initial: {}},
	}
	for _, e := range edges {
		m.edges[e.From] = append(m.edges[e.From], e.To)
		m.states[e.From] = struct{}{}
		m.states[e.To] = struct{}{}
	}
	return m
}

func (m *Machine[S]) Kind() string { return m.kind }

func (m *Machine[S]) Initial() S { return m.initial }

// Valid reports whether s belongs to the kind's closed set.
func (m *Machine[S]) Valid(s S) bool {
	_, ok := m.states[s]
	return ok
}

// States lists the allowed values in sorted order.
func (m *Machine[S]) States() []S {
	out := make([]S, 0, len(m.states))
	for s := range m.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Machine[S]) Allows(from, to S) bool {
	for _, next := range m.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the first state reachable from s other than s itself.
func (m *Machine[S]) Next(s S) (S, bool) {
	for _, next := range m.edges[s] {
		if next != s {
			return next, true
		}
	}
	var zero S
	return zero, false
}

// Frozen reports whether nothing may change once the entity is in s.
func (m *Machine[S]) Frozen(s S) bool {
	return len(m.edges[s]) == 0
}

// Check validates a requested move and returns a validation error on
// the status field when the table does not allow it.
func (m *Machine[S]) Check(from, to S) error {
	if !m.Valid(to) {
		return errors.Validationf("status", "%q is not a valid %s status", string(to), m.kind)
	}
	if !m.Allows(from, to) {
		return errors.Validationf("status", "%s cannot move from %s to %s", m.kind, from, to)
	}
	return nil
}

// CheckInitial validates the status supplied at creation. An empty
// status means the initial one.
func (m *Machine[S]) CheckInitial(s S) (S, error) {
	if s == "" {
		return m.initial, nil
	}
	if !m.Valid(s) {
		return "", errors.Validationf("status", "%q is not a valid %s status", string(s), m.kind)
	}
	if s != m.initial {
		return "", errors.Validationf("status", "new %s must start as %s", m.kind, m.initial)
	}
	return s, nil
}
