package geoindex

// direction indexes the four legs of one ring: right, down, left, up
// (spec.md §4.C "within a ring, traversal is deterministic (right, down,
// left, up)").
type direction int

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
)

var deltas = [4]Cell{
	dirRight: {X: 1, Y: 0},
	dirDown:  {X: 0, Y: 1},
	dirLeft:  {X: -1, Y: 0},
	dirUp:    {X: 0, Y: -1},
}

// IteratorState is the cheaply-serialisable resumption point for a spiral
// walk: current position, ring index, and step-within-leg index (spec.md
// §4.C "the iterator's state is (current position, ring index, step index)
// and is cheaply serialised for resumption across requests").
type IteratorState struct {
	X, Y      int
	Ring      int
	leg       direction
	stepInLeg int
	legLength int
}

// NewIteratorState builds a fresh spiral walk starting at (x, y).
func NewIteratorState(x, y int) IteratorState {
	return IteratorState{X: x, Y: y, Ring: 0, leg: dirRight, stepInLeg: 0, legLength: 1}
}

// Iterator walks grid cells outward from an origin in a rectangular spiral,
// skipping cells the occupancy bitmap reports empty (spec.md §4.C). Steps
// are synchronous and CPU-bound; the iterator does not dispatch work to a
// pool itself.
type Iterator struct {
	idx   *Index
	state IteratorState
	// ring 0 is the origin cell itself, emitted once before expansion begins.
	emittedOrigin bool
}

// NewIterator resumes a walk from state.
func NewIterator(idx *Index, state IteratorState) *Iterator {
	return &Iterator{idx: idx, state: state, emittedOrigin: state.Ring > 0 || state.stepInLeg > 0 || state.legLength > 1}
}

// State returns the current resumption point.
func (it *Iterator) State() IteratorState { return it.state }

// Reset rebuilds the iterator at a new origin without allocating (spec.md
// §4.C "reset(x, y) rebuilds the iterator at a new origin without
// allocating").
func (it *Iterator) Reset(x, y int) {
	it.state = NewIteratorState(x, y)
	it.emittedOrigin = false
}

// Next advances to the next occupied cell and returns its profile links, or
// nil with ok=false once the walk has covered the entire grid.
func (it *Iterator) Next() (links []ProfileLink, ok bool) {
	for {
		cell, more := it.advance()
		if !more {
			return nil, false
		}
		if !it.idx.Grid().InBounds(cell) {
			continue
		}
		if l := it.idx.linksAt(cell); l != nil {
			return l, true
		}
	}
}

// advance moves the cursor by exactly one cell and reports whether the walk
// can still continue. Ring grows once every two legs, so the walk reaches
// about Ring/2 cells from the origin in each direction; it stops once that
// reach exceeds the grid's larger dimension, wherever the origin lies.
func (it *Iterator) advance() (Cell, bool) {
	s := &it.state
	maxExtent := it.idx.Grid().Width()
	if h := it.idx.Grid().Height(); h > maxExtent {
		maxExtent = h
	}
	if s.Ring > 2*maxExtent {
		return Cell{}, false
	}

	if !it.emittedOrigin {
		it.emittedOrigin = true
		return Cell{X: s.X, Y: s.Y}, true
	}

	// Move one step along the current leg.
	d := deltas[s.leg]
	s.X += d.X
	s.Y += d.Y
	s.stepInLeg++

	if s.stepInLeg >= s.legLength {
		s.stepInLeg = 0
		s.leg = (s.leg + 1) % 4
		// A square spiral's leg length grows by one every two legs: two
		// legs share a length (e.g. right then down), then it grows for
		// the next two (left then up). That's exactly "new leg is right
		// or left" in a four-direction cycle.
		if s.leg == dirRight || s.leg == dirLeft {
			s.legLength++
			s.Ring++
		}
	}

	return Cell{X: s.X, Y: s.Y}, true
}
