package dwarf

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
)

// buildSyntheticCU hand-assembles a minimal .debug_abbrev/.debug_info pair
// describing one compile unit ("cu.c") containing one subprogram ("main")
// covering [0x1000, 0x1050), the same shape a real DWARF4 producer would
// emit but built by hand so these tests need no external compiler.
func buildSyntheticCU(t *testing.T) *Dwarf {
	t.Helper()

	abbrev := []byte{
		1, DwTagCompileUnit, 1, DwAtName, dwFormString, 0, 0,
		2, DwTagSubprogram, 0,
		DwAtName, dwFormString,
		DwAtLowPC, dwFormAddr,
		DwAtHighPC, dwFormData8,
		0, 0,
		0,
	}

	var body []byte
	body = append(body, 4, 0) // version 4
	body = append(body, 0, 0, 0, 0) // abbrev offset 0
	body = append(body, 8) // address size

	body = append(body, 1)                  // root DIE: abbrev code 1
	body = append(body, []byte("cu.c\x00")...)

	body = append(body, 2) // child DIE: abbrev code 2
	body = append(body, []byte("main\x00")...)
	var lowPC [8]byte
	binary.LittleEndian.PutUint64(lowPC[:], 0x1000)
	body = append(body, lowPC[:]...)
	var highPC [8]byte
	binary.LittleEndian.PutUint64(highPC[:], 0x50) // offset form: high_pc = low_pc + 0x50
	body = append(body, highPC[:]...)

	body = append(body, 0) // null DIE: terminates compile_unit's children

	var info []byte
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(body)))
	info = append(info, length[:]...)
	info = append(info, body...)

	d := &Dwarf{
		debugInfo:   info,
		debugAbbrev: abbrev,
		abbrevCache: make(map[uint64]abbrevTable),
	}
	if err := d.parseCompileUnits(); err != nil {
		t.Fatalf("parseCompileUnits: %v", err)
	}
	return d
}

func TestCompileUnitRootAndChildren(t *testing.T) {
	d := buildSyntheticCU(t)
	ldbtest.Equate(t, len(d.CompileUnits()), 1)

	root, err := d.CompileUnits()[0].Root()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, root.Name(), "cu.c")

	children, err := root.Children()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(children), 1)
	ldbtest.Equate(t, children[0].Name(), "main")
	ldbtest.Equate(t, children[0].Tag(), uint64(DwTagSubprogram))
}

func TestFunctionContainingAddress(t *testing.T) {
	d := buildSyntheticCU(t)

	die, ok := d.FunctionContainingAddress(0x1010)
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, die.Name(), "main")

	_, ok = d.FunctionContainingAddress(0x9999)
	ldbtest.ExpectFailure(t, ok)
}

func TestFindFunctions(t *testing.T) {
	d := buildSyntheticCU(t)
	found := d.FindFunctions("main")
	ldbtest.Equate(t, len(found), 1)

	ldbtest.Equate(t, len(d.FindFunctions("nonexistent")), 0)
}

func TestLowHighPC(t *testing.T) {
	d := buildSyntheticCU(t)
	root, _ := d.CompileUnits()[0].Root()
	children, _ := root.Children()
	main := children[0]

	low, ok := main.LowPC()
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, low, uint64(0x1000))

	high, ok := main.HighPC()
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, high, uint64(0x1050))

	ldbtest.ExpectSuccess(t, main.ContainsAddress(0x1000))
	ldbtest.ExpectSuccess(t, main.ContainsAddress(0x104f))
	ldbtest.ExpectFailure(t, main.ContainsAddress(0x1050))
}
