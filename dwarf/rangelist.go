package dwarf

// RangeList is a decoded .debug_ranges list: a sequence of [low, high)
// address ranges, relative to a base address that a base-address-selector
// entry can update mid-list.
type RangeList struct {
	ranges []addrRange
}

type addrRange struct {
	low, high uint64
}

// baseAddressSelector is the DWARF4 §2.17.3 sentinel: an entry whose first
// value is all-ones (for the CU's address size) sets a new base address
// from its second value, rather than describing a range.
const baseAddressSelector = ^uint64(0)

// parseRangeList decodes the range list at the given offset in
// .debug_ranges, terminated by a (0, 0) entry.
func parseRangeList(debugRanges []byte, offset, base uint64) (*RangeList, error) {
	c := newCursor(debugRanges)
	c.seek(int(offset))

	rl := &RangeList{}
	for !c.finished() {
		first := c.u64()
		second := c.u64()

		if first == 0 && second == 0 {
			break
		}
		if first == baseAddressSelector {
			base = second
			continue
		}

		rl.ranges = append(rl.ranges, addrRange{low: base + first, high: base + second})
	}
	return rl, nil
}

// contains reports whether a falls within any range in the list.
func (rl *RangeList) contains(a uint64) bool {
	for _, r := range rl.ranges {
		if a >= r.low && a < r.high {
			return true
		}
	}
	return false
}

// Ranges exposes the decoded [low, high) pairs, for callers that want to
// enumerate rather than just test membership (e.g. printing a function's
// out-of-line regions).
func (rl *RangeList) Ranges() []struct{ Low, High uint64 } {
	out := make([]struct{ Low, High uint64 }, len(rl.ranges))
	for i, r := range rl.ranges {
		out[i] = struct{ Low, High uint64 }{r.low, r.high}
	}
	return out
}
