package dwarf

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
)

func buildSyntheticLineProgram(t *testing.T) []byte {
	t.Helper()

	standardOpcodeLengths := []byte{0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1}

	var header []byte
	header = append(header, 1)    // minimum_instruction_length
	header = append(header, 1)    // maximum_operations_per_instruction
	header = append(header, 1)    // default_is_stmt
	header = append(header, 0xfb) // line_base = -5
	header = append(header, 14)   // line_range
	header = append(header, 13)   // opcode_base
	header = append(header, standardOpcodeLengths...)
	header = append(header, 0) // no include directories
	header = append(header, []byte("main.c\x00")...)
	header = append(header, 0, 0, 0) // dir index, mtime, length
	header = append(header, 0)       // end of file table

	var program []byte
	// DW_LNE_set_address 0x1000
	var addrBuf [8]byte
	binary.LittleEndian.PutUint64(addrBuf[:], 0x1000)
	program = append(program, 0, 9, lneSetAddress)
	program = append(program, addrBuf[:]...)
	// DW_LNS_copy
	program = append(program, lnsCopy)
	// DW_LNS_advance_pc 4
	program = append(program, lnsAdvancePC, 4)
	// DW_LNS_advance_line +1 (sleb128 of 1 is just 0x01)
	program = append(program, lnsAdvanceLine, 1)
	// DW_LNS_copy
	program = append(program, lnsCopy)
	// DW_LNS_advance_pc 4, so the line-2 row covers [0x1004, 0x1008)
	program = append(program, lnsAdvancePC, 4)
	// DW_LNE_end_sequence
	program = append(program, 0, 1, lneEndSequence)

	var headerLength [4]byte
	binary.LittleEndian.PutUint32(headerLength[:], uint32(len(header)))

	body := append([]byte{}, headerLength[:]...)
	body = append(body, header...)
	body = append(body, program...)

	var unitLength [4]byte
	binary.LittleEndian.PutUint32(unitLength[:], uint32(2+len(body))) // +2 for version field

	var out []byte
	out = append(out, unitLength[:]...)
	out = append(out, 4, 0) // version 4
	out = append(out, body...)
	return out
}

func TestParseLineTable(t *testing.T) {
	debugLine := buildSyntheticLineProgram(t)

	lt, err := parseLineTable(debugLine, 0)
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(lt.Entries()), 3) // copy, copy, end_sequence

	ldbtest.Equate(t, lt.Entries()[0].Address, uint64(0x1000))
	ldbtest.Equate(t, lt.Entries()[0].Line, 1)
	ldbtest.Equate(t, lt.Entries()[1].Address, uint64(0x1004))
	ldbtest.Equate(t, lt.Entries()[1].Line, 2)
	ldbtest.ExpectSuccess(t, lt.Entries()[2].EndSequence)
}

func TestEntryAtAddress(t *testing.T) {
	debugLine := buildSyntheticLineProgram(t)
	lt, err := parseLineTable(debugLine, 0)
	ldbtest.ExpectSuccess(t, err)

	e, ok := lt.EntryAtAddress(0x1002)
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, e.Line, 1)

	e, ok = lt.EntryAtAddress(0x1004)
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, e.Line, 2)
}

func TestEntriesByLine(t *testing.T) {
	debugLine := buildSyntheticLineProgram(t)
	lt, err := parseLineTable(debugLine, 0)
	ldbtest.ExpectSuccess(t, err)

	entries := lt.EntriesByLine("main.c", 2)
	ldbtest.Equate(t, len(entries), 1)
	ldbtest.Equate(t, entries[0].Address, uint64(0x1004))

	ldbtest.Equate(t, len(lt.EntriesByLine("/full/path/main.c", 2)), 0)
}
