package process

import (
	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
	"github.com/jetsetilly/ldb/registers"
)

var drAddrRegs = [4]registers.ID{registers.Dr0, registers.Dr1, registers.Dr2, registers.Dr3}

// AllocateHardwareStoppoint installs a into the first free DR0-DR3 slot for
// ownerID, configured for mode and size, and enables it in DR7. Requesting
// a slot when all four are in use is an error, surfaced rather than
// retried, per the fixed 4-slot pool the tracee's debug registers provide.
func (p *Process) AllocateHardwareStoppoint(ownerID int32, a addr.VirtAddr, mode addr.StoppointMode, size int) (int, error) {
	slot := -1
	for i, owner := range p.drOwners {
		if owner == 0 {
			slot = i
			break
		}
	}
	if slot == -1 {
		return 0, ldberr.Errorf(ldberr.ProcessState, "allocate hardware stoppoint", "no free debug register slots")
	}

	addrInfo, _ := registers.ByID(drAddrRegs[slot])
	if err := p.regs.Write(addrInfo, registers.Value{Uint: uint64(a)}); err != nil {
		return 0, err
	}
	if err := p.WriteUserArea(addrInfo.Offset, uint64(a)); err != nil {
		return 0, err
	}

	if err := p.setDr7(slot, mode, size, true); err != nil {
		return 0, err
	}

	p.drOwners[slot] = ownerID
	return slot, nil
}

// ClearHardwareStoppoint disables and releases the debug register slot,
// freeing it for the next allocation.
func (p *Process) ClearHardwareStoppoint(slot int) error {
	if slot < 0 || slot > 3 {
		return ldberr.Errorf(ldberr.Lookup, "clear hardware stoppoint", "slot out of range")
	}
	if err := p.setDr7(slot, addr.Execute, 1, false); err != nil {
		return err
	}
	p.drOwners[slot] = 0
	return nil
}

// setDr7 updates the local/global-enable bit and the condition/length
// fields for the given slot in the shadow DR7 value and flushes it.
func (p *Process) setDr7(slot int, mode addr.StoppointMode, size int, enable bool) error {
	dr7, err := p.regs.ReadByID(registers.Dr7)
	if err != nil {
		return err
	}
	v := dr7.Uint

	enableBit := uint64(1) << uint(slot*2)
	if enable {
		v |= enableBit
	} else {
		v &^= enableBit
	}

	condShift := uint(16 + slot*4)
	lenShift := condShift + 2
	v &^= uint64(0b11) << condShift
	v &^= uint64(0b11) << lenShift
	if enable {
		v |= mode.EncodeDR7() << condShift
		v |= addr.EncodeDR7Size(size) << lenShift
	}

	if err := p.regs.WriteByID(registers.Dr7, registers.Value{Uint: v}); err != nil {
		return err
	}
	return p.flushDr(7)
}
