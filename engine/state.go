// SPDX-License-Identifier: MIT

package engine

import "fmt"

// State is the lifecycle position of one fit call:
//
//	Unconfigured → StructureResolved → ProblemAssembled → (SolvingIterating → ProblemAssembled)* → SolvingIterating → Solved
//
// Any non-terminal state may move to Failed.
type State int

const (
	Unconfigured State = iota
	StructureResolved
	ProblemAssembled
	SolvingIterating
	Solved
	Failed
)

var stateNames = [...]string{
	Unconfigured:      "unconfigured",
	StructureResolved: "structure_resolved",
	ProblemAssembled:  "problem_assembled",
	SolvingIterating:  "solving",
	Solved:            "solved",
	Failed:            "failed",
}

// String returns a stable snake_case name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}

	return stateNames[s]
}

// Terminal reports whether s is Solved or Failed.
func (s State) Terminal() bool { return s == Solved || s == Failed }

// CanTransition reports whether from → to is a legal fit transition.
func CanTransition(from, to State) bool {
	if to == Failed {
		return !from.Terminal()
	}
	switch from {
	case Unconfigured:
		return to == StructureResolved
	case StructureResolved:
		return to == ProblemAssembled
	case ProblemAssembled:
		return to == SolvingIterating
	case SolvingIterating:
		return to == ProblemAssembled || to == Solved
	}

	return false
}

// machine tracks the state of one fit call. It is never shared.
type machine struct {
	state State
	hook  func(from, to State)
}

// to advances the machine; an illegal transition is a programmer error.
func (m *machine) to(next State) {
	if !CanTransition(m.state, next) {
		panic(fmt.Sprintf("engine: illegal fit transition %s -> %s", m.state, next))
	}
	prev := m.state
	m.state = next
	if m.hook != nil {
		m.hook(prev, next)
	}
}
