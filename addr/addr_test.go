package addr_test

import (
	"testing"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/internal/ldbtest"
)

func TestVirtAddrFileAddrRoundTrip(t *testing.T) {
	owner := "elf-a"
	fa := addr.NewFileAddr(owner, 0x1000)
	va := fa.ToVirtAddr(0x5000)
	ldbtest.Equate(t, va, addr.VirtAddr(0x6000))

	back := va.ToFileAddr(owner, 0x5000)
	ldbtest.Equate(t, back.Addr, fa.Addr)
}

func TestFileAddrOrdering(t *testing.T) {
	owner := "elf-a"
	a := addr.NewFileAddr(owner, 0x10)
	b := addr.NewFileAddr(owner, 0x20)
	ldbtest.ExpectSuccess(t, a.Before(b))
	ldbtest.ExpectFailure(t, b.Before(a))
}

func TestFileAddrCrossOwnerPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic comparing FileAddr values across images")
		}
	}()
	a := addr.NewFileAddr("elf-a", 0x10)
	b := addr.NewFileAddr("elf-b", 0x20)
	_ = a.Before(b)
}

func TestEncodeDR7Size(t *testing.T) {
	ldbtest.Equate(t, addr.EncodeDR7Size(1), uint64(0b00))
	ldbtest.Equate(t, addr.EncodeDR7Size(2), uint64(0b01))
	ldbtest.Equate(t, addr.EncodeDR7Size(4), uint64(0b11))
	ldbtest.Equate(t, addr.EncodeDR7Size(8), uint64(0b10))
}

func TestStoppointModeEncode(t *testing.T) {
	ldbtest.Equate(t, addr.Write.EncodeDR7(), uint64(0b01))
	ldbtest.Equate(t, addr.ReadWrite.EncodeDR7(), uint64(0b11))
	ldbtest.Equate(t, addr.Execute.EncodeDR7(), uint64(0b00))
}
