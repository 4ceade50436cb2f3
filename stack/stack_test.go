package stack_test

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/stack"
)

type fakeDie struct {
	lowPC uint64
	has   bool
}

func (f fakeDie) LowPC() (uint64, bool) { return f.lowPC, f.has }

func TestResetInlineHeightCountsTrailingMatches(t *testing.T) {
	tr := stack.New()
	// outer (physical) function starts elsewhere, two inlined frames both
	// begin exactly at pc 0x2000.
	dies := []stack.Die{
		fakeDie{lowPC: 0x1000, has: true},
		fakeDie{lowPC: 0x2000, has: true},
		fakeDie{lowPC: 0x2000, has: true},
	}
	tr.ResetInlineHeight(0x2000, dies)
	ldbtest.Equate(t, tr.Height(), 2)
}

func TestSimulateStepInAndOut(t *testing.T) {
	tr := stack.New()
	dies := []stack.Die{
		fakeDie{lowPC: 0x1000, has: true},
		fakeDie{lowPC: 0x2000, has: true},
	}
	tr.ResetInlineHeight(0x2000, dies)
	ldbtest.Equate(t, tr.Height(), 1)

	ldbtest.ExpectSuccess(t, tr.SimulateInlinedStepIn())
	ldbtest.Equate(t, tr.Height(), 0)
	ldbtest.ExpectFailure(t, tr.SimulateInlinedStepIn())

	ldbtest.ExpectSuccess(t, tr.SimulateInlinedStepOut())
	ldbtest.Equate(t, tr.Height(), 1)
	ldbtest.ExpectFailure(t, tr.SimulateInlinedStepOut())
}
