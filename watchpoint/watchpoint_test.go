package watchpoint_test

import (
	"testing"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/watchpoint"
)

type fakeMemory struct {
	bytes   map[addr.VirtAddr]byte
	hwSlots map[int]bool
	nextHW  int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{bytes: map[addr.VirtAddr]byte{}, hwSlots: map[int]bool{}}
}

func (m *fakeMemory) ReadMemory(a addr.VirtAddr, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.bytes[a+addr.VirtAddr(i)]
	}
	return out, nil
}

func (m *fakeMemory) AllocateHardwareStoppoint(ownerID int32, a addr.VirtAddr, mode addr.StoppointMode, size int) (int, error) {
	slot := m.nextHW
	m.nextHW++
	m.hwSlots[slot] = true
	return slot, nil
}

func (m *fakeMemory) ClearHardwareStoppoint(slot int) error {
	delete(m.hwSlots, slot)
	return nil
}

func TestNewRejectsMisalignedAddress(t *testing.T) {
	mem := newFakeMemory()
	_, err := watchpoint.New(mem, 0x1001, addr.Write, 4)
	ldbtest.ExpectFailure(t, err)
}

func TestNewRejectsBadSize(t *testing.T) {
	mem := newFakeMemory()
	_, err := watchpoint.New(mem, 0x1000, addr.Write, 3)
	ldbtest.ExpectFailure(t, err)
}

func TestEnableClaimsSlotAndSnapshots(t *testing.T) {
	mem := newFakeMemory()
	mem.bytes[0x2000] = 0xca

	w, err := watchpoint.New(mem, 0x2000, addr.Write, 1)
	ldbtest.ExpectSuccess(t, err)

	err = w.Enable()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(mem.hwSlots), 1)
	ldbtest.Equate(t, w.Data()[0], byte(0xca))

	mem.bytes[0x2000] = 0xfe
	err = w.UpdateData()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, w.Changed(), true)
	ldbtest.Equate(t, w.PreviousData()[0], byte(0xca))
	ldbtest.Equate(t, w.Data()[0], byte(0xfe))

	err = w.Disable()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, len(mem.hwSlots), 0)
}

func TestNotChangedWhenDataStable(t *testing.T) {
	mem := newFakeMemory()
	mem.bytes[0x3000] = 0x01

	w, err := watchpoint.New(mem, 0x3000, addr.ReadWrite, 1)
	ldbtest.ExpectSuccess(t, err)
	ldbtest.ExpectSuccess(t, w.Enable())

	err = w.UpdateData()
	ldbtest.ExpectSuccess(t, err)
	ldbtest.Equate(t, w.Changed(), false)
}
