package dwarf

// abbrevAttr is one (attribute, form) pair in an abbreviation declaration.
type abbrevAttr struct {
	attr uint64
	form uint64
	// implicitConst holds the value for DW_FORM_implicit_const, which is
	// stored in the abbreviation table itself rather than the DIE.
	implicitConst int64
}

// abbrev is a single entry in a .debug_abbrev table: the set of
// (attribute, form) pairs a DIE with this code carries, in order.
type abbrev struct {
	code     uint64
	tag      uint64
	hasChildren bool
	attrs    []abbrevAttr
}

// abbrevTable maps abbreviation code to its declaration, for one
// .debug_abbrev offset.
type abbrevTable map[uint64]*abbrev

// parseAbbrevTable parses a single abbreviation table starting at offset
// in the .debug_abbrev section, terminated by a zero code.
func parseAbbrevTable(debugAbbrev []byte, offset uint64) abbrevTable {
	c := newCursor(debugAbbrev)
	c.seek(int(offset))

	table := make(abbrevTable)
	for !c.finished() {
		code := c.uleb128()
		if code == 0 {
			break
		}

		tag := c.uleb128()
		hasChildren := c.u8() != 0

		var attrs []abbrevAttr
		for {
			at := c.uleb128()
			form := c.uleb128()
			var implicitConst int64
			if form == dwFormImplicitConst {
				implicitConst = c.sleb128()
			}
			if at == 0 && form == 0 {
				break
			}
			attrs = append(attrs, abbrevAttr{attr: at, form: form, implicitConst: implicitConst})
		}

		table[code] = &abbrev{code: code, tag: tag, hasChildren: hasChildren, attrs: attrs}
	}
	return table
}
