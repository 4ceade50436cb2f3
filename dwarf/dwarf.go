package dwarf

import (
	"github.com/jetsetilly/ldb/elfimage"
	"github.com/jetsetilly/ldb/ldberr"
	"github.com/jetsetilly/ldb/logger"
)

// Dwarf owns every DWARF section of a single ELF image and the compile
// units parsed out of .debug_info. Abbreviation tables are cached lazily,
// keyed by their .debug_abbrev offset, since several compile units
// typically share one.
type Dwarf struct {
	elf *elfimage.File

	debugInfo    []byte
	debugAbbrev  []byte
	debugStr     []byte
	debugLine    []byte
	debugRanges  []byte

	abbrevCache map[uint64]abbrevTable

	compileUnits []*CompileUnit

	// functionIndex maps a function's name to every DIE location it
	// appears at. Built once, on first use, by ensureIndex.
	functionIndex map[string][]dieLocation
}

type dieLocation struct {
	cu  *CompileUnit
	pos int
}

// New parses every compile unit in elf's .debug_info section.
func New(elf *elfimage.File) (*Dwarf, error) {
	d := &Dwarf{
		elf:         elf,
		debugInfo:   elf.SectionContents(".debug_info"),
		debugAbbrev: elf.SectionContents(".debug_abbrev"),
		debugStr:    elf.SectionContents(".debug_str"),
		debugLine:   elf.SectionContents(".debug_line"),
		debugRanges: elf.SectionContents(".debug_ranges"),
		abbrevCache: make(map[uint64]abbrevTable),
	}

	if err := d.parseCompileUnits(); err != nil {
		return nil, err
	}
	logger.Logf("dwarf", "parsed %d compile units from %s", len(d.compileUnits), elf.Path())
	return d, nil
}

// CompileUnits returns every parsed compile unit.
func (d *Dwarf) CompileUnits() []*CompileUnit { return d.compileUnits }

func (d *Dwarf) abbrevTableAt(offset uint64) abbrevTable {
	if t, ok := d.abbrevCache[offset]; ok {
		return t
	}
	t := parseAbbrevTable(d.debugAbbrev, offset)
	d.abbrevCache[offset] = t
	return t
}

// cuHeader is the 11-byte DWARF4 32-bit compile unit header: 4-byte
// length, 2-byte version, 4-byte abbrev offset, 1-byte address size.
const cuHeaderSize = 11

func (d *Dwarf) parseCompileUnits() error {
	c := newCursor(d.debugInfo)
	for !c.finished() {
		cuOffset := uint64(c.position())

		length := c.u32()
		if length == 0xffffffff {
			return ldberr.Errorf(ldberr.Format, "parse compile unit", "64-bit DWARF is not supported")
		}
		end := c.position() + int(length)

		version := c.u16()
		if version != 4 {
			return ldberr.Errorf(ldberr.Format, "parse compile unit", "only DWARF version 4 is supported, got %d", version)
		}
		abbrevOffset := uint64(c.u32())
		addressSize := c.u8()

		cu := &CompileUnit{
			dwarf:        d,
			offset:       cuOffset,
			end:          end,
			version:      version,
			abbrevOffset: abbrevOffset,
			addressSize:  int(addressSize),
			dieStart:     c.position(),
		}
		d.compileUnits = append(d.compileUnits, cu)

		c.seek(end)
	}
	return nil
}

// CompileUnitContainingAddress returns the compile unit whose root DIE's
// address range contains a (in file-address space).
func (d *Dwarf) CompileUnitContainingAddress(a uint64) (*CompileUnit, bool) {
	for _, cu := range d.compileUnits {
		root, err := cu.Root()
		if err != nil {
			continue
		}
		if root.ContainsAddress(a) {
			return cu, true
		}
	}
	return nil, false
}

// FunctionContainingAddress returns the DW_TAG_subprogram DIE whose range
// contains a, found by walking the function index, excluding
// DW_TAG_inlined_subroutine entries (those are reached through
// InlineStackAtAddress instead).
func (d *Dwarf) FunctionContainingAddress(a uint64) (*Die, bool) {
	d.ensureIndex()
	for _, locs := range d.functionIndex {
		for _, loc := range locs {
			die, err := parseDieAt(loc.cu, loc.pos)
			if err == nil && die != nil && die.Tag() == DwTagSubprogram && die.ContainsAddress(a) {
				return die, true
			}
		}
	}
	return nil, false
}

// FindFunctions returns every DW_TAG_subprogram DIE named name.
func (d *Dwarf) FindFunctions(name string) []*Die {
	d.ensureIndex()
	var out []*Die
	for _, loc := range d.functionIndex[name] {
		die, err := parseDieAt(loc.cu, loc.pos)
		if err == nil && die != nil {
			out = append(out, die)
		}
	}
	return out
}

// ensureIndex performs the one-shot eager indexing of every function name
// to its DIE location, triggered the first time a name lookup is needed.
func (d *Dwarf) ensureIndex() {
	if d.functionIndex != nil {
		return
	}
	d.functionIndex = make(map[string][]dieLocation)
	for _, cu := range d.compileUnits {
		cu.walk(func(die *Die) bool {
			if die.Tag() != DwTagSubprogram {
				return true
			}
			name := die.Name()
			if name == "" {
				return true
			}
			d.functionIndex[name] = append(d.functionIndex[name], dieLocation{cu: cu, pos: die.pos})
			return true
		})
	}
}
