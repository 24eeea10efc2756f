// SPDX-License-Identifier: MIT

// Package bnb implements branch-and-bound over binary indicators.
//
// Solver enumerates assignments of the binary variables of a descriptor by a
// depth-first Branch-and-Bound search with deterministic branching,
// admissible lower bounds, constraint propagation and node/time budgets.
//
// Rationale (succinct):
//  1. Relaxation: at a node, every free indicator is relaxed. Coefficients
//     linked to an indicator fixed at 0 are pinned to 0; all other linked
//     coefficients get the box [−M, M]. Indicator costs c·z are charged in
//     full for indicators fixed at 1, as min(0, c) for free ones, and a
//     perspective term Σ_i c/(|g|·M_i)·|β_i| is added for free indicators
//     with c > 0 (valid because z ≥ |β_i|/M_i for every linked β_i).
//     The relaxation is convex and solved by a relaxation oracle
//     (proximal by default). LB = relaxed objective + indicator charges.
//  2. Incumbent (UB): from every node relaxation, groups with a nonzero
//     relaxed coefficient are switched on, the implication closure is
//     applied, cardinality is repaired by switching off the weakest free
//     groups, and the coefficients are re-optimized with every indicator
//     fixed. The all-zero assignment seeds the search.
//  3. Propagation: z_dep = 1 ⇒ z_pre = 1; z_pre = 0 ⇒ z_dep = 0; a
//     cardinality row at its bound forces its free members to 0. A trail
//     records assignments so backtracking is O(changes).
//  4. Branching: the free indicator with the largest relaxed activity
//     max_i |β_i|/M_i (index tiebreak); the z=1 child is explored first when
//     that activity is nonzero. Prune whenever LB ≥ UB − eps·max(1, |UB|).
//  5. Budgets: node cap and optional wall-clock limit. Hitting either returns
//     the incumbent with StatusSuboptimal. ctx is checked at every node.
//
// Complexity: worst case exponential in the number of binaries; practical
// speed comes from pruning. Memory: O(N) per recursion level.
package bnb

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/solver"
	"github.com/katalvlaran/sparselm/solver/proximal"
)

// Name is the oracle name reported in statuses and logs.
const Name = "bnb"

// feasTol bounds the constraint violation accepted for an incumbent.
const feasTol = 1e-6

// Solver is the branch-and-bound oracle. It is safe for concurrent use; each
// Solve call owns its own search engine.
type Solver struct {
	opts Options
}

// New returns a Solver configured by opts.
func New(opts ...Option) *Solver {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.relaxation == nil {
		o.relaxation = proximal.New()
	}

	return &Solver{opts: o}
}

// Name implements solver.Oracle.
func (s *Solver) Name() string { return Name }

// link ties a coefficient variable to its indicator with bound M.
type link struct {
	v int
	m float64
}

// card is a cardinality row over binary positions.
type card struct {
	members []int
	k       int
}

// frame is one pending propagation step.
type frame struct {
	pos int
	val int8
}

// engine holds all search data and policies of one Solve call.
type engine struct {
	ctx   context.Context
	opts  Options
	relax solver.Oracle

	p    *expr.Problem
	base *expr.Problem // constraint-free, binaries pinned to 0, indicator costs removed

	bins   []int     // binary variable indices
	links  [][]link  // per binary position
	cost   []float64 // per binary position: linear cost of z
	pres   [][]int   // per position: prerequisites
	deps   [][]int   // per position: dependents
	cards  []card
	cardOf [][]int // per position: indices into cards

	assign []int8 // -1 free, 0, 1
	trail  []int

	useDeadline bool
	deadline    time.Time

	nodes      int
	iterations int
	limitHit   bool
	inexact    bool
	failed     bool

	rootLB   float64
	bestX    []float64
	bestCost float64
}

// Solve implements solver.Oracle.
//
// Supported descriptors: constraints from {Indicator, Cardinality,
// Implication}; binaries may appear in objective terms only through Linear
// terms (indicator costs); the remaining descriptor must be accepted by the
// relaxation oracle once binaries are fixed.
func (s *Solver) Solve(ctx context.Context, p *expr.Problem) (solver.Solution, error) {
	if len(p.Binaries()) == 0 {
		return s.opts.relaxation.Solve(ctx, p)
	}

	e := &engine{
		ctx:      ctx,
		opts:     s.opts,
		relax:    s.opts.relaxation,
		p:        p,
		bestCost: math.Inf(1),
		rootLB:   math.Inf(-1),
	}
	if err := e.compile(); err != nil {
		return solver.Solution{Status: solver.StatusUnsupported}, err
	}
	if s.opts.timeLimit > 0 {
		e.useDeadline = true
		e.deadline = time.Now().Add(s.opts.timeLimit)
	}

	// Root propagation of binaries fixed by their bounds.
	for pos, b := range e.bins {
		v := p.Var(b)
		if v.Fixed() && !e.propagate(pos, int8(v.Lower)) {
			return solver.Solution{Status: solver.StatusInfeasible}, nil
		}
	}

	// Seed the incumbent with the sparsest admissible assignment.
	if err := e.tryIncumbent(make([]float64, p.NumVars())); err != nil {
		return failure(err)
	}
	if err := e.dfs(nil, 0); err != nil {
		return failure(err)
	}

	return e.finish(), nil
}

// failure maps a search error to a Solution; unsupported relaxations keep
// their status, anything else (context errors included) is passed through.
func failure(err error) (solver.Solution, error) {
	if errors.Is(err, solver.ErrUnsupported) {
		return solver.Solution{Status: solver.StatusUnsupported}, err
	}

	return solver.Solution{}, err
}

// compile extracts links, costs, implications and cardinality rows, and
// builds the relaxation base descriptor.
func (e *engine) compile() error {
	N := e.p.NumVars()
	posOf := make([]int, N)
	for i := range posOf {
		posOf[i] = -1
	}
	for _, b := range e.p.Binaries() {
		posOf[b] = len(e.bins)
		e.bins = append(e.bins, b)
	}
	nb := len(e.bins)
	e.links = make([][]link, nb)
	e.cost = make([]float64, nb)
	e.pres = make([][]int, nb)
	e.deps = make([][]int, nb)
	e.cardOf = make([][]int, nb)
	e.assign = make([]int8, nb)
	for i := range e.assign {
		e.assign[i] = -1
	}

	linked := make([]bool, N)
	for _, c := range e.p.Constraints() {
		switch cc := c.(type) {
		case expr.Indicator:
			if linked[cc.Var] {
				_, err := solver.Unsupported(Name, "variable %s linked to two indicators", e.p.Var(cc.Var).Name)
				return err
			}
			linked[cc.Var] = true
			q := posOf[cc.Indicator]
			e.links[q] = append(e.links[q], link{v: cc.Var, m: cc.M})
		case expr.Cardinality:
			row := card{k: cc.K}
			for _, b := range cc.Indicators {
				row.members = append(row.members, posOf[b])
				e.cardOf[posOf[b]] = append(e.cardOf[posOf[b]], len(e.cards))
			}
			e.cards = append(e.cards, row)
		case expr.Implication:
			d, q := posOf[cc.Dependent], posOf[cc.Prerequisite]
			e.pres[d] = append(e.pres[d], q)
			e.deps[q] = append(e.deps[q], d)
		default:
			_, err := solver.Unsupported(Name, "constraint %T", c)
			return err
		}
	}

	var (
		bad     string
		linears []expr.Linear
	)
	e.base = e.p.WithoutConstraints(func(t expr.Term) bool {
		if lin, ok := t.(expr.Linear); ok {
			linears = append(linears, lin)
			return false
		}
		for _, i := range t.Vars() {
			if posOf[i] >= 0 && bad == "" {
				bad = e.p.Var(i).Name
			}
		}

		return true
	})
	if bad != "" {
		_, err := solver.Unsupported(Name, "binary %s inside a non-linear term", bad)
		return err
	}
	for _, lin := range linears {
		var (
			idx    []int
			coeffs []float64
		)
		for k, i := range lin.Idx {
			if q := posOf[i]; q >= 0 {
				e.cost[q] += lin.Coeffs[k]
				continue
			}
			idx = append(idx, i)
			coeffs = append(coeffs, lin.Coeffs[k])
		}
		if len(idx) > 0 {
			if err := e.base.AddTerm(expr.NewLinear(idx, coeffs)); err != nil {
				return err
			}
		}
	}
	for _, b := range e.bins {
		if err := e.base.SetBounds(b, 0, 0); err != nil {
			return err
		}
	}

	return nil
}

// tol is the absolute pruning tolerance around the current UB.
func (e *engine) tol() float64 {
	return e.opts.eps * math.Max(1, math.Abs(e.bestCost))
}

// pastDeadline reports whether the wall-clock budget is exhausted.
func (e *engine) pastDeadline() bool {
	return e.useDeadline && time.Now().After(e.deadline)
}

// activity returns max_i |x_i|/M_i over the coefficients linked to pos.
func (e *engine) activity(pos int, x []float64) float64 {
	var a float64
	for _, l := range e.links[pos] {
		a = math.Max(a, math.Abs(x[l.v])/l.m)
	}

	return a
}

// wantsOn reports whether a free indicator looks active in relaxed x.
func (e *engine) wantsOn(pos int, x []float64) bool {
	if len(e.links[pos]) == 0 {
		return e.cost[pos] < 0
	}

	return e.activity(pos, x) > e.opts.activeTol
}

// charges returns the indicator cost contribution for the current assignment.
func (e *engine) charges() float64 {
	var c float64
	for pos, a := range e.assign {
		switch a {
		case 1:
			c += e.cost[pos]
		case -1:
			c += math.Min(0, e.cost[pos])
		}
	}

	return c
}

// relaxNode solves the node relaxation for the current assignment.
// It returns the solution and the admissible lower bound.
func (e *engine) relaxNode(warm []float64) (solver.Solution, float64, error) {
	q := e.base.Clone()
	for pos := range e.bins {
		a := e.assign[pos]
		for _, l := range e.links[pos] {
			lo, hi := 0.0, 0.0
			if a != 0 {
				orig := e.p.Var(l.v)
				lo, hi = math.Max(-l.m, orig.Lower), math.Min(l.m, orig.Upper)
				if lo > hi {
					return solver.Solution{Status: solver.StatusInfeasible}, math.Inf(1), nil
				}
			}
			if err := q.SetBounds(l.v, lo, hi); err != nil {
				return solver.Solution{}, 0, err
			}
		}
		if a == -1 && e.cost[pos] > 0 && len(e.links[pos]) > 0 {
			n := float64(len(e.links[pos]))
			idx := make([]int, len(e.links[pos]))
			w := make([]float64, len(e.links[pos]))
			for k, l := range e.links[pos] {
				idx[k] = l.v
				w[k] = e.cost[pos] / (n * l.m)
			}
			if err := q.AddTerm(expr.NewL1(idx, w, 1)); err != nil {
				return solver.Solution{}, 0, err
			}
		}
	}

	sol, err := solver.SolveFrom(e.ctx, e.relax, q, warm)
	e.iterations += sol.Iterations
	if err != nil {
		return sol, 0, err
	}
	if !sol.Status.Usable() {
		return sol, math.Inf(1), nil
	}

	return sol, sol.Objective + e.charges(), nil
}

// dfs performs the core search: bound, incumbent, deterministic branching.
func (e *engine) dfs(warm []float64, depth int) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if e.nodes >= e.opts.maxNodes || e.pastDeadline() {
		e.limitHit = true
		return nil
	}
	e.nodes++

	sol, lb, err := e.relaxNode(warm)
	if err != nil {
		return err
	}
	switch {
	case sol.Status == solver.StatusInfeasible:
		return nil
	case !sol.Status.Usable():
		e.failed = true
		return nil
	case sol.Status != solver.StatusOptimal:
		e.inexact = true
	}
	if depth == 0 {
		e.rootLB = lb
	}

	// Prune by lower bound.
	if lb >= e.bestCost-e.tol() {
		return nil
	}

	pick := e.branchVar(sol.X)
	if pick < 0 {
		// Leaf: the relaxation is exact.
		e.offer(sol, lb, e.assign)
		return nil
	}

	if err = e.tryIncumbent(sol.X); err != nil {
		return err
	}
	if lb >= e.bestCost-e.tol() {
		return nil
	}

	first := int8(0)
	if e.wantsOn(pick, sol.X) {
		first = 1
	}
	for _, v := range [2]int8{first, 1 - first} {
		mark := len(e.trail)
		if e.propagate(pick, v) {
			err = e.dfs(sol.X, depth+1)
		}
		e.undo(mark)
		if err != nil || e.limitHit {
			return err
		}
	}

	return nil
}

// branchVar returns the free position with the largest activity, or −1.
func (e *engine) branchVar(x []float64) int {
	best, bestA := -1, -1.0
	for pos, a := range e.assign {
		if a != -1 {
			continue
		}
		if act := e.activity(pos, x); act > bestA {
			best, bestA = pos, act
		}
	}

	return best
}

// propagate assigns pos=val and closes the assignment under implications and
// cardinality rows. It returns false on conflict; the caller undoes the trail.
func (e *engine) propagate(pos int, val int8) bool {
	stack := []frame{{pos, val}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch e.assign[f.pos] {
		case f.val:
			continue
		case -1:
			e.assign[f.pos] = f.val
			e.trail = append(e.trail, f.pos)
		default:
			return false
		}

		if f.val == 0 {
			for _, d := range e.deps[f.pos] {
				stack = append(stack, frame{d, 0})
			}
			continue
		}
		for _, q := range e.pres[f.pos] {
			stack = append(stack, frame{q, 1})
		}
		for _, ci := range e.cardOf[f.pos] {
			row := e.cards[ci]
			ones := 0
			for _, m := range row.members {
				if e.assign[m] == 1 {
					ones++
				}
			}
			if ones > row.k {
				return false
			}
			if ones == row.k {
				for _, m := range row.members {
					if e.assign[m] == -1 {
						stack = append(stack, frame{m, 0})
					}
				}
			}
		}
	}

	return true
}

// undo reverts the trail down to mark.
func (e *engine) undo(mark int) {
	for _, pos := range e.trail[mark:] {
		e.assign[pos] = -1
	}
	e.trail = e.trail[:mark]
}

// tryIncumbent rounds relaxed x to an admissible assignment and re-optimizes
// the coefficients with every indicator fixed.
func (e *engine) tryIncumbent(x []float64) error {
	on := make([]int8, len(e.assign))
	for pos, a := range e.assign {
		switch {
		case a >= 0:
			on[pos] = a
		case e.wantsOn(pos, x):
			on[pos] = 1
		}
	}
	if !e.repair(on, x) {
		return nil
	}

	saved := make([]int8, len(e.assign))
	copy(saved, e.assign)
	copy(e.assign, on)
	sol, val, err := e.relaxNode(x)
	copy(e.assign, saved)
	if err != nil {
		return err
	}
	if sol.Status.Usable() {
		if sol.Status != solver.StatusOptimal {
			e.inexact = true
		}
		e.offer(sol, val, on)
	}

	return nil
}

// repair makes on satisfy implications and cardinality without touching
// fixed positions. It returns false when no repair is found.
func (e *engine) repair(on []int8, x []float64) bool {
	for round := 0; round <= len(on); round++ {
		changed := false
		for d := range on {
			for _, q := range e.pres[d] {
				if on[d] == 1 && on[q] == 0 {
					if e.assign[q] == 0 {
						if !e.switchOff(on, d) {
							return false
						}
					} else {
						on[q] = 1
					}
					changed = true
				}
			}
		}
		for _, row := range e.cards {
			for e.count(on, row) > row.k {
				if !e.dropWeakest(on, row, x) {
					return false
				}
				changed = true
			}
		}
		if !changed {
			return true
		}
	}

	return false
}

func (e *engine) count(on []int8, row card) int {
	c := 0
	for _, m := range row.members {
		if on[m] == 1 {
			c++
		}
	}

	return c
}

// dropWeakest switches off the least active free member of row (together
// with its dependents) that can be switched off.
func (e *engine) dropWeakest(on []int8, row card, x []float64) bool {
	cand := make([]int, 0, len(row.members))
	for _, m := range row.members {
		if on[m] == 1 && e.assign[m] == -1 {
			cand = append(cand, m)
		}
	}
	sort.SliceStable(cand, func(i, j int) bool {
		return e.activity(cand[i], x) < e.activity(cand[j], x)
	})
	for _, m := range cand {
		if e.switchOff(on, m) {
			return true
		}
	}

	return false
}

// switchOff clears pos and, transitively, its dependents. It leaves on
// untouched and returns false if a fixed-on position would be cleared.
func (e *engine) switchOff(on []int8, pos int) bool {
	tmp := make([]int8, len(on))
	copy(tmp, on)
	stack := []int{pos}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tmp[q] == 0 {
			continue
		}
		if e.assign[q] == 1 {
			return false
		}
		tmp[q] = 0
		stack = append(stack, e.deps[q]...)
	}
	copy(on, tmp)

	return true
}

// offer records sol as the incumbent if it improves UB and is feasible for
// the original descriptor.
func (e *engine) offer(sol solver.Solution, val float64, on []int8) {
	if !(val < e.bestCost) {
		return
	}
	x := make([]float64, len(sol.X))
	copy(x, sol.X)
	for pos, b := range e.bins {
		x[b] = float64(on[pos])
	}
	if !e.p.Feasible(x, feasTol) {
		return
	}
	e.bestX = x
	e.bestCost = val
}

// finish assembles the Solution from the search outcome.
func (e *engine) finish() solver.Solution {
	if e.bestX == nil {
		st := solver.StatusInfeasible
		if e.failed {
			st = solver.StatusNumericalFailure
		}

		return solver.Solution{Status: st, Nodes: e.nodes, Iterations: e.iterations}
	}

	obj := e.p.Objective(e.bestX)
	sol := solver.Solution{
		X:          e.bestX,
		Objective:  obj,
		Bound:      obj,
		Iterations: e.iterations,
		Nodes:      e.nodes,
	}
	switch {
	case e.limitHit:
		sol.Status = solver.StatusSuboptimal
		sol.Bound = math.Min(e.rootLB, obj)
	case e.inexact || e.failed:
		sol.Status = solver.StatusInaccurate
	default:
		sol.Status = solver.StatusOptimal
	}

	return sol
}
