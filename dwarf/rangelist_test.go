package dwarf

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
)

func u64le(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func TestRangeListBaseAddressSelector(t *testing.T) {
	var data []byte
	data = append(data, u64le(0x100)...)
	data = append(data, u64le(0x120)...) // [0x100, 0x120) against base 0
	data = append(data, u64le(baseAddressSelector)...)
	data = append(data, u64le(0x2000)...) // new base
	data = append(data, u64le(0x10)...)
	data = append(data, u64le(0x30)...) // [0x2010, 0x2030)
	data = append(data, u64le(0)...)
	data = append(data, u64le(0)...) // terminator

	rl, err := parseRangeList(data, 0, 0)
	ldbtest.ExpectSuccess(t, err)

	ldbtest.ExpectSuccess(t, rl.contains(0x110))
	ldbtest.ExpectFailure(t, rl.contains(0x120))
	ldbtest.ExpectSuccess(t, rl.contains(0x2020))
	ldbtest.ExpectFailure(t, rl.contains(0x100f))
}
