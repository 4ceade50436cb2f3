// This file is part of ldb.
//
// ldb is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ldb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ldb.  If not, see <https://www.gnu.org/licenses/>.

// Package stack tracks "inline height": when several logical call frames
// (the physical function plus zero or more frames inlined into it) share
// one physical program counter, StepIn/StepOut need to move between those
// logical frames without actually resuming the tracee. A Tracker is the
// bookkeeping for that: it knows how deep into an inlined chain the
// debugger currently considers itself to be sitting, at the PC it was last
// told about.
package stack

// Die is the narrow slice of *dwarf.Die a Tracker needs, kept as an
// interface so this package does not import dwarf (the dependency runs
// the other way: Target composes both).
type Die interface {
	LowPC() (uint64, bool)
}

// Tracker holds the inline stack at the most recently reported PC and the
// debugger's current logical depth within it.
type Tracker struct {
	pc     uint64
	stack  []Die
	height int
}

// New returns a Tracker with no stack loaded.
func New() *Tracker { return &Tracker{} }

// ResetInlineHeight is called whenever the tracee actually stops at a new
// PC. It counts, from the innermost frame backward, how many consecutive
// inline frames have a low_pc exactly equal to pc — that run is the
// "height" available to simulate stepping into without resuming, since
// each of those frames begins exactly here.
func (t *Tracker) ResetInlineHeight(pc uint64, stack []Die) {
	t.pc = pc
	t.stack = stack

	height := 0
	for i := len(stack) - 1; i >= 0; i-- {
		low, ok := stack[i].LowPC()
		if !ok || low != pc {
			break
		}
		height++
	}
	t.height = height
}

// Height returns the current inline depth: 0 means the debugger is
// presenting the innermost frame in Stack; a positive height means it is
// presenting a frame that many levels further out, even though the tracee
// has not moved.
func (t *Tracker) Height() int { return t.height }

// Stack returns the inline stack (outermost first) captured by the last
// ResetInlineHeight.
func (t *Tracker) Stack() []Die { return t.stack }

// SimulateInlinedStepIn moves one level deeper into the inline chain
// without touching the tracee. It reports whether it could: height is
// already zero once the innermost inline frame has been reached, at which
// point a real step is required instead.
func (t *Tracker) SimulateInlinedStepIn() bool {
	if t.height == 0 {
		return false
	}
	t.height--
	return true
}

// SimulateInlinedStepOut moves one level shallower in the inline chain
// without touching the tracee. It reports whether it could: once height
// equals len(Stack)-1 the debugger is already presenting the outermost
// (physical) frame, and a real step is required instead.
func (t *Tracker) SimulateInlinedStepOut() bool {
	if len(t.stack) == 0 || t.height >= len(t.stack)-1 {
		return false
	}
	t.height++
	return true
}

// CurrentFrame returns the Die the debugger is currently presenting as
// "the" frame at the tracked PC, accounting for inline height.
func (t *Tracker) CurrentFrame() (Die, bool) {
	idx := len(t.stack) - 1 - t.height
	if idx < 0 || idx >= len(t.stack) {
		return nil, false
	}
	return t.stack[idx], true
}
