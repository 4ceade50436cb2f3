package dwarf

import "github.com/jetsetilly/ldb/ldberr"

// CompileUnit is one entry of .debug_info: a header plus a root DIE
// subtree. Its line table is parsed on the first call to LineTable and
// cached from then on.
type CompileUnit struct {
	dwarf        *Dwarf
	offset       uint64
	end          int
	version      uint16
	abbrevOffset uint64
	addressSize  int
	dieStart     int

	root      *Die
	lineTable *LineTable
	lineErr   error
	lineOnce  bool
}

func (cu *CompileUnit) Offset() uint64 { return cu.offset }

// Root returns the compile unit's root DIE (always DW_TAG_compile_unit).
func (cu *CompileUnit) Root() (*Die, error) {
	if cu.root != nil {
		return cu.root, nil
	}
	die, err := parseDieAt(cu, cu.dieStart)
	if err != nil {
		return nil, err
	}
	cu.root = die
	return cu.root, nil
}

// LineTable returns the line-number program for this compile unit, parsed
// from its root DIE's DW_AT_stmt_list.
func (cu *CompileUnit) LineTable() (*LineTable, error) {
	if cu.lineOnce {
		return cu.lineTable, cu.lineErr
	}
	cu.lineOnce = true

	root, err := cu.Root()
	if err != nil {
		cu.lineErr = err
		return nil, err
	}
	loc, ok := root.attr(DwAtStmtList)
	if !ok {
		return nil, nil
	}
	off := cu.dwarf.sectionOffset(loc)
	lt, err := parseLineTable(cu.dwarf.debugLine, off)
	cu.lineTable, cu.lineErr = lt, err
	return lt, err
}

// walk calls f on every DIE in the compile unit's tree, depth-first,
// stopping early if f returns false.
func (cu *CompileUnit) walk(f func(*Die) bool) {
	root, err := cu.Root()
	if err != nil {
		return
	}
	walkSubtree(root, f)
}

func walkSubtree(die *Die, f func(*Die) bool) bool {
	if !f(die) {
		return false
	}
	children, err := die.Children()
	if err != nil {
		return true
	}
	for _, c := range children {
		if !walkSubtree(c, f) {
			return false
		}
	}
	return true
}

// attrLocation is where a single attribute's value lives in .debug_info,
// recorded without decoding it — callers ask for the type they expect via
// the As* methods.
type attrLocation struct {
	attr          uint64
	form          uint64
	offset        int
	implicitConst int64
}

// Die is a single debugging information entry. Its attributes are not
// decoded at parse time: only their (form, byte offset) pairs are
// recorded, in attrLocations, parallel to the owning abbreviation's
// attribute list.
type Die struct {
	cu            *CompileUnit
	pos           int
	abbrev        *abbrev
	attrLocations []attrLocation
	afterAttrs    int

	childrenCache []*Die
	childrenEnd   int
	childrenDone  bool
}

// Tag returns the DIE's DW_TAG_* code.
func (d *Die) Tag() uint64 { return d.abbrev.tag }

// Pos returns the DIE's absolute byte offset in .debug_info, used as a
// stable identity for indexing and cross-referencing.
func (d *Die) Pos() int { return d.pos }

// CompileUnit returns the owning compile unit.
func (d *Die) CompileUnit() *CompileUnit { return d.cu }

// parseDieAt parses the DIE (or null-entry terminator) at the given
// absolute offset into .debug_info. A nil *Die with a nil error denotes a
// null DIE (a sibling-list terminator), not an error.
func parseDieAt(cu *CompileUnit, pos int) (*Die, error) {
	c := newCursor(cu.dwarf.debugInfo)
	c.seek(pos)

	code := c.uleb128()
	if code == 0 {
		return nil, nil
	}

	table := cu.dwarf.abbrevTableAt(cu.abbrevOffset)
	ab, ok := table[code]
	if !ok {
		return nil, ldberr.Errorf(ldberr.Format, "parse die", "unknown abbreviation code %d", code)
	}

	die := &Die{cu: cu, pos: pos, abbrev: ab}
	for _, a := range ab.attrs {
		loc := attrLocation{attr: a.attr, form: a.form, offset: c.position(), implicitConst: a.implicitConst}
		die.attrLocations = append(die.attrLocations, loc)
		if err := c.skipForm(a.form, cu.addressSize); err != nil {
			return nil, err
		}
	}
	die.afterAttrs = c.position()
	return die, nil
}

// Children returns the DIE's immediate children, parsing (and recursively
// skipping) them on first use.
func (d *Die) Children() ([]*Die, error) {
	if d.childrenDone {
		return d.childrenCache, nil
	}
	if !d.abbrev.hasChildren {
		d.childrenDone = true
		d.childrenEnd = d.afterAttrs
		return nil, nil
	}

	pos := d.afterAttrs
	var kids []*Die
	for {
		child, err := parseDieAt(d.cu, pos)
		if err != nil {
			return nil, err
		}
		if child == nil {
			pos++ // past the null terminator's single uleb128(0) byte
			break
		}
		kids = append(kids, child)
		if _, err := child.Children(); err != nil {
			return nil, err
		}
		pos = child.childrenEnd
	}

	d.childrenCache = kids
	d.childrenEnd = pos
	d.childrenDone = true
	return kids, nil
}

// attr returns the location of the given attribute on this DIE, if present.
func (d *Die) attr(at uint64) (attrLocation, bool) {
	for _, loc := range d.attrLocations {
		if loc.attr == at {
			return loc, true
		}
	}
	return attrLocation{}, false
}

// Contains reports whether the DIE carries the given attribute.
func (d *Die) Contains(at uint64) bool {
	_, ok := d.attr(at)
	return ok
}

// Name resolves DW_AT_name, following DW_AT_specification and then
// DW_AT_abstract_origin when the DIE itself has no name (as with many
// out-of-line definitions and inlined instances).
func (d *Die) Name() string {
	if loc, ok := d.attr(DwAtName); ok {
		if s, err := d.cu.dwarf.asString(loc); err == nil {
			return s
		}
	}
	if loc, ok := d.attr(DwAtSpecification); ok {
		if ref, err := d.cu.dwarf.asReference(d.cu, loc); err == nil && ref != nil {
			return ref.Name()
		}
	}
	if loc, ok := d.attr(DwAtAbstractOrigin); ok {
		if ref, err := d.cu.dwarf.asReference(d.cu, loc); err == nil && ref != nil {
			return ref.Name()
		}
	}
	return ""
}

// LowPC returns DW_AT_low_pc, if present.
func (d *Die) LowPC() (uint64, bool) {
	loc, ok := d.attr(DwAtLowPC)
	if !ok {
		return 0, false
	}
	v, err := d.cu.dwarf.asAddress(loc)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HighPC returns the DIE's high_pc as an absolute address: DW_AT_high_pc
// is either itself an address (form_addr) or an unsigned offset from
// low_pc (any other form), per DWARF4 §2.17.2.
func (d *Die) HighPC() (uint64, bool) {
	loc, ok := d.attr(DwAtHighPC)
	if !ok {
		return 0, false
	}
	low, lowOK := d.LowPC()

	if loc.form == dwFormAddr {
		v, err := d.cu.dwarf.asAddress(loc)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	if !lowOK {
		return 0, false
	}
	off, err := d.cu.dwarf.asUint(loc)
	if err != nil {
		return 0, false
	}
	return low + off, true
}

// ContainsAddress reports whether a falls within this DIE's address
// range, whether expressed as low_pc/high_pc or DW_AT_ranges.
func (d *Die) ContainsAddress(a uint64) bool {
	if rl, ok := d.RangeList(); ok {
		return rl.contains(a)
	}
	low, lowOK := d.LowPC()
	high, highOK := d.HighPC()
	if lowOK && highOK {
		return a >= low && a < high
	}
	return false
}

// DeclFileLine returns DW_AT_decl_file/DW_AT_decl_line, the DIE's own
// declaration position.
func (d *Die) DeclFileLine() (file, line int, ok bool) {
	return d.fileLinePair(DwAtDeclFile, DwAtDeclLine)
}

// CallFileLine returns DW_AT_call_file/DW_AT_call_line, the position an
// inlined instance was called from in its enclosing function.
func (d *Die) CallFileLine() (file, line int, ok bool) {
	return d.fileLinePair(DwAtCallFile, DwAtCallLine)
}

func (d *Die) fileLinePair(fileAt, lineAt uint64) (file, line int, ok bool) {
	floc, fok := d.attr(fileAt)
	lloc, lok := d.attr(lineAt)
	if !fok || !lok {
		return 0, 0, false
	}
	f, err := d.cu.dwarf.asUint(floc)
	if err != nil {
		return 0, 0, false
	}
	l, err := d.cu.dwarf.asUint(lloc)
	if err != nil {
		return 0, 0, false
	}
	return int(f), int(l), true
}

// RangeList returns the DIE's DW_AT_ranges list, if present, resolved
// against the base address taken from its compile unit's root DIE's
// low_pc (per DWARF4 §2.17.3, the base address for a non-root DIE's
// rnglist is inherited from the enclosing compile unit, not the DIE
// itself).
func (d *Die) RangeList() (*RangeList, bool) {
	loc, ok := d.attr(DwAtRanges)
	if !ok {
		return nil, false
	}
	off, err := d.cu.dwarf.asUint(loc)
	if err != nil {
		return nil, false
	}

	base := uint64(0)
	if root, err := d.cu.Root(); err == nil {
		if lo, ok := root.LowPC(); ok {
			base = lo
		}
	}

	rl, err := parseRangeList(d.cu.dwarf.debugRanges, off, base)
	if err != nil {
		return nil, false
	}
	return rl, true
}
