package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	legal := [][2]State{
		{Unconfigured, StructureResolved},
		{StructureResolved, ProblemAssembled},
		{ProblemAssembled, SolvingIterating},
		{SolvingIterating, ProblemAssembled},
		{SolvingIterating, Solved},
		{Unconfigured, Failed},
		{SolvingIterating, Failed},
	}
	for _, tr := range legal {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	illegal := [][2]State{
		{Unconfigured, Solved},
		{StructureResolved, SolvingIterating},
		{ProblemAssembled, Solved},
		{Solved, Failed},
		{Failed, Unconfigured},
		{Solved, ProblemAssembled},
	}
	for _, tr := range illegal {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestMachinePanicsOnIllegalTransition(t *testing.T) {
	var seen []State
	m := &machine{hook: func(_, to State) { seen = append(seen, to) }}
	m.to(StructureResolved)
	assert.PanicsWithValue(t, "engine: illegal fit transition structure_resolved -> solved", func() { m.to(Solved) })
	m.to(Failed)
	assert.Panics(t, func() { m.to(Failed) })
	assert.Equal(t, []State{StructureResolved, Failed}, seen)
	assert.True(t, m.state.Terminal())
}
