package dwarf

import "github.com/jetsetilly/ldb/ldberr"

// LineEntry is a single row the line-number program emits: a machine
// address and the source position it corresponds to.
type LineEntry struct {
	Address      uint64
	File         int
	Line         int
	Column       int
	IsStmt       bool
	EndSequence  bool
	PrologueEnd  bool
	EpilogueBegin bool
}

// LineTable is the fully materialized output of running a compile unit's
// line-number program once.
type LineTable struct {
	files   []string
	entries []LineEntry
}

// Files returns the file-name table (DW_LNE_define_file plus the header's
// initial list), indexed the same way file_index attributes are.
func (lt *LineTable) Files() []string { return lt.files }

// Entries returns every row the program emitted, in program order.
func (lt *LineTable) Entries() []LineEntry { return lt.entries }

// lineRegisters is the line-number program's machine state, DWARF4 §6.2.2.
type lineRegisters struct {
	address        uint64
	file           int
	line           int
	column         int
	isStmt         bool
	basicBlock     bool
	endSequence    bool
	prologueEnd    bool
	epilogueBegin  bool
	discriminator  int
}

func newLineRegisters(defaultIsStmt bool) lineRegisters {
	return lineRegisters{file: 1, line: 1, isStmt: defaultIsStmt}
}

const (
	lnsCopy            = 0x01
	lnsAdvancePC       = 0x02
	lnsAdvanceLine     = 0x03
	lnsSetFile         = 0x04
	lnsSetColumn       = 0x05
	lnsNegateStmt      = 0x06
	lnsSetBasicBlock   = 0x07
	lnsConstAddPC      = 0x08
	lnsFixedAdvancePC  = 0x09
	lnsSetPrologueEnd  = 0x0a
	lnsSetEpilogueBegin = 0x0b
	lnsSetISA          = 0x0c

	lneEndSequence   = 0x01
	lneSetAddress    = 0x02
	lneDefineFile    = 0x03
	lneSetDiscriminator = 0x04
)

// parseLineTable parses the line-number program at the given offset in
// .debug_line.
func parseLineTable(debugLine []byte, offset uint64) (*LineTable, error) {
	if debugLine == nil {
		return nil, nil
	}

	c := newCursor(debugLine)
	c.seek(int(offset))

	unitLength := c.u32()
	if unitLength == 0xffffffff {
		return nil, ldberr.Errorf(ldberr.Format, "parse line table", "64-bit DWARF is not supported")
	}
	programEnd := c.position() + int(unitLength)

	version := c.u16()
	if version != 4 {
		return nil, ldberr.Errorf(ldberr.Format, "parse line table", "only DWARF version 4 line programs are supported")
	}

	headerLength := c.u32()
	programStart := c.position() + int(headerLength)

	minInstLength := c.u8()
	maxOpsPerInst := c.u8()
	defaultIsStmt := c.u8() != 0
	lineBase := c.s8()
	lineRange := c.u8()
	opcodeBase := c.u8()

	if minInstLength != 1 || maxOpsPerInst != 1 {
		return nil, ldberr.Errorf(ldberr.Format, "parse line table", "VLIW and non-byte-aligned instructions are not supported on x86-64")
	}

	standardOpcodeLengths := make([]uint8, opcodeBase-1)
	for i := range standardOpcodeLengths {
		standardOpcodeLengths[i] = c.u8()
	}

	var includeDirs []string
	for {
		s := c.string()
		if s == "" {
			break
		}
		includeDirs = append(includeDirs, s)
	}

	files := []string{""} // file index 0 is reserved/unused in DWARF4
	for {
		name := c.string()
		if name == "" {
			break
		}
		c.uleb128() // dir index
		c.uleb128() // mtime
		c.uleb128() // length
		files = append(files, name)
	}

	c.seek(programStart)

	lt := &LineTable{files: files}
	regs := newLineRegisters(defaultIsStmt)

	emit := func() {
		lt.entries = append(lt.entries, LineEntry{
			Address: regs.address, File: regs.file, Line: regs.line, Column: regs.column,
			IsStmt: regs.isStmt, EndSequence: regs.endSequence,
			PrologueEnd: regs.prologueEnd, EpilogueBegin: regs.epilogueBegin,
		})
	}
	resetOneShot := func() {
		regs.basicBlock = false
		regs.prologueEnd = false
		regs.epilogueBegin = false
		regs.discriminator = 0
	}

	for c.position() < programEnd {
		opcode := c.u8()

		switch {
		case opcode == 0:
			// extended opcode
			length := c.uleb128()
			next := c.position() + int(length)
			sub := c.u8()
			switch sub {
			case lneEndSequence:
				regs.endSequence = true
				emit()
				regs = newLineRegisters(defaultIsStmt)
			case lneSetAddress:
				regs.address = c.u64()
			case lneDefineFile:
				name := c.string()
				c.uleb128()
				c.uleb128()
				c.uleb128()
				files = append(files, name)
				lt.files = files
			case lneSetDiscriminator:
				regs.discriminator = int(c.uleb128())
			}
			c.seek(next)

		case opcode < opcodeBase:
			switch opcode {
			case lnsCopy:
				emit()
				resetOneShot()
			case lnsAdvancePC:
				regs.address += c.uleb128()
			case lnsAdvanceLine:
				regs.line += int(c.sleb128())
			case lnsSetFile:
				regs.file = int(c.uleb128())
			case lnsSetColumn:
				regs.column = int(c.uleb128())
			case lnsNegateStmt:
				regs.isStmt = !regs.isStmt
			case lnsSetBasicBlock:
				regs.basicBlock = true
			case lnsConstAddPC:
				adj := 255 - int(opcodeBase)
				regs.address += uint64(adj / int(lineRange))
			case lnsFixedAdvancePC:
				regs.address += uint64(c.u16())
			case lnsSetPrologueEnd:
				regs.prologueEnd = true
			case lnsSetEpilogueBegin:
				regs.epilogueBegin = true
			case lnsSetISA:
				c.uleb128()
			default:
				// unknown standard opcode: skip its declared operand count
				n := int(standardOpcodeLengths[opcode-1])
				for i := 0; i < n; i++ {
					c.uleb128()
				}
			}

		default:
			adj := int(opcode) - int(opcodeBase)
			regs.address += uint64(adj / int(lineRange))
			regs.line += int(lineBase) + adj%int(lineRange)
			emit()
			resetOneShot()
		}
	}

	return lt, nil
}

// EntryAtAddress returns the last non-end_sequence entry whose address is
// less than or equal to addr, and strictly less than the following
// entry's address: a linear scan, as the line table is typically small
// and accessed far less often than it is built.
func (lt *LineTable) EntryAtAddress(addr uint64) (LineEntry, bool) {
	var best LineEntry
	found := false
	for i, e := range lt.entries {
		if e.EndSequence {
			continue
		}
		if e.Address > addr {
			continue
		}
		var nextAddr uint64 = ^uint64(0)
		if i+1 < len(lt.entries) {
			nextAddr = lt.entries[i+1].Address
		}
		if addr < nextAddr {
			if !found || e.Address > best.Address {
				best = e
				found = true
			}
		}
	}
	return best, found
}

// EntriesByLine returns every entry whose (file, line) matches. path
// matches a file table entry either by exact equality or, when path is
// relative, by "ends with".
func (lt *LineTable) EntriesByLine(path string, line int) []LineEntry {
	var out []LineEntry
	for _, e := range lt.entries {
		if e.EndSequence || e.Line != line {
			continue
		}
		if e.File < 0 || e.File >= len(lt.files) {
			continue
		}
		if pathMatches(lt.files[e.File], path) {
			out = append(out, e)
		}
	}
	return out
}

func pathMatches(candidate, query string) bool {
	if candidate == query {
		return true
	}
	if len(query) > 0 && query[0] != '/' {
		return pathEndsWith(candidate, query)
	}
	return false
}

func pathEndsWith(full, suffix string) bool {
	if len(suffix) > len(full) {
		return false
	}
	tail := full[len(full)-len(suffix):]
	if tail != suffix {
		return false
	}
	return len(suffix) == len(full) || full[len(full)-len(suffix)-1] == '/'
}
