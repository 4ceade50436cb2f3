// This file is part of ldb.
//
// ldb is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ldb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ldb.  If not, see <https://www.gnu.org/licenses/>.

// Package watchpoint implements hardware data watchpoints: a single
// address/size/mode triple installed in a debug register, with a snapshot
// of the watched bytes taken on every stop so the debugger can report what
// changed.
package watchpoint

import (
	"bytes"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
)

var nextID int32 = 1

type memory interface {
	ReadMemory(a addr.VirtAddr, n int) ([]byte, error)
	AllocateHardwareStoppoint(ownerID int32, a addr.VirtAddr, mode addr.StoppointMode, size int) (int, error)
	ClearHardwareStoppoint(slot int) error
}

// Watchpoint watches a size-byte, size-aligned region of tracee memory.
type Watchpoint struct {
	id      int32
	proc    memory
	address addr.VirtAddr
	mode    addr.StoppointMode
	size    int
	enabled bool
	hwSlot  int

	data, previousData []byte
}

// New constructs a Watchpoint over [address, address+size). address must
// be aligned to size, matching the alignment the debug-register length
// encoding itself requires.
func New(proc memory, a addr.VirtAddr, mode addr.StoppointMode, size int) (*Watchpoint, error) {
	if size != 1 && size != 2 && size != 4 && size != 8 {
		return nil, ldberr.Errorf(ldberr.Format, "new watchpoint", "size must be 1, 2, 4 or 8")
	}
	if uint64(a)&uint64(size-1) != 0 {
		return nil, ldberr.Errorf(ldberr.Format, "new watchpoint", "address must be aligned to size")
	}

	id := nextID
	nextID++
	return &Watchpoint{id: id, proc: proc, address: a, mode: mode, size: size}, nil
}

func (w *Watchpoint) ID() int32              { return w.id }
func (w *Watchpoint) Address() addr.VirtAddr { return w.address }
func (w *Watchpoint) IsEnabled() bool        { return w.enabled }
func (w *Watchpoint) SetEnabled(v bool)      { w.enabled = v }
func (w *Watchpoint) Mode() addr.StoppointMode { return w.mode }
func (w *Watchpoint) Size() int              { return w.size }

// Enable installs the watchpoint into a hardware debug register.
func (w *Watchpoint) Enable() error {
	if w.enabled {
		return nil
	}
	slot, err := w.proc.AllocateHardwareStoppoint(w.id, w.address, w.mode, w.size)
	if err != nil {
		return err
	}
	w.hwSlot = slot
	w.enabled = true
	return w.UpdateData()
}

// Disable releases the watchpoint's debug register slot.
func (w *Watchpoint) Disable() error {
	if !w.enabled {
		return nil
	}
	if err := w.proc.ClearHardwareStoppoint(w.hwSlot); err != nil {
		return err
	}
	w.enabled = false
	return nil
}

// UpdateData reads the watched bytes, shifting the previous snapshot into
// PreviousData and installing the new read as Data.
func (w *Watchpoint) UpdateData() error {
	data, err := w.proc.ReadMemory(w.address, w.size)
	if err != nil {
		return err
	}
	w.previousData, w.data = w.data, data
	return nil
}

// Data returns the most recently read snapshot.
func (w *Watchpoint) Data() []byte { return w.data }

// PreviousData returns the snapshot before the most recent UpdateData.
func (w *Watchpoint) PreviousData() []byte { return w.previousData }

// Changed reports whether the watched bytes differ from the previous
// snapshot.
func (w *Watchpoint) Changed() bool {
	return !bytes.Equal(w.data, w.previousData)
}
