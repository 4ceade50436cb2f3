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

// Package breakpoint implements the two layers of breakpoint the debugger
// plants: a low-level Site (a single address, installed as either a
// software INT3 patch or a hardware debug register) and a high-level
// Breakpoint — a tagged union over by-address, by-function and by-line
// requests — that resolves itself to one or more Sites.
package breakpoint

import (
	"github.com/jetsetilly/ldb/addr"
)

var nextSiteID int32 = 1

// memory is the narrow slice of process.Process a Site needs: peek/poke a
// single byte for the software INT3 swap, and allocate/clear a hardware
// debug register for a hardware site.
type memory interface {
	ReadMemory(a addr.VirtAddr, n int) ([]byte, error)
	WriteMemory(a addr.VirtAddr, data []byte) error
	AllocateHardwareStoppoint(ownerID int32, a addr.VirtAddr, mode addr.StoppointMode, size int) (int, error)
	ClearHardwareStoppoint(slot int) error
}

// Site is a single installed (or installable) stop location.
type Site struct {
	id          int32
	proc        memory
	address     addr.VirtAddr
	enabled     bool
	savedByte   byte
	isHardware  bool
	isInternal  bool
	hwSlot      int
	parentID    int32 // owning high-level Breakpoint id, 0 if none
}

// NewSite constructs a Site. Internal sites (planted by Target's own
// stepping logic rather than requested by the user) get id -1 so they
// never show up in a user-facing breakpoint listing.
func NewSite(proc memory, a addr.VirtAddr, isHardware, isInternal bool) *Site {
	id := int32(-1)
	if !isInternal {
		id = nextSiteID
		nextSiteID++
	}
	return &Site{id: id, proc: proc, address: a, isHardware: isHardware, isInternal: isInternal}
}

func (s *Site) ID() int32                { return s.id }
func (s *Site) Address() addr.VirtAddr   { return s.address }
func (s *Site) IsEnabled() bool          { return s.enabled }
func (s *Site) SetEnabled(v bool)        { s.enabled = v }
func (s *Site) IsHardware() bool         { return s.isHardware }
func (s *Site) IsInternal() bool         { return s.isInternal }
func (s *Site) SetParentID(id int32)     { s.parentID = id }
func (s *Site) ParentID() int32          { return s.parentID }

// OriginalByte returns the byte this site's address held before its INT3
// was planted, valid once the site is enabled. Used by a disassembler or
// memory-display path to mask the planted breakpoint back out.
func (s *Site) OriginalByte() byte { return s.savedByte }

// Enable installs the site: a software site swaps its target byte for
// 0xCC, saving the original; a hardware site claims a debug register slot.
func (s *Site) Enable() error {
	if s.enabled {
		return nil
	}

	if s.isHardware {
		slot, err := s.proc.AllocateHardwareStoppoint(s.id, s.address, addr.Execute, 1)
		if err != nil {
			return err
		}
		s.hwSlot = slot
	} else {
		data, err := s.proc.ReadMemory(s.address, 1)
		if err != nil {
			return err
		}
		s.savedByte = data[0]
		if err := s.proc.WriteMemory(s.address, []byte{0xCC}); err != nil {
			return err
		}
	}

	s.enabled = true
	return nil
}

// Disable removes the site: a software site restores its saved byte; a
// hardware site releases its debug register slot.
func (s *Site) Disable() error {
	if !s.enabled {
		return nil
	}

	if s.isHardware {
		if err := s.proc.ClearHardwareStoppoint(s.hwSlot); err != nil {
			return err
		}
	} else {
		if err := s.proc.WriteMemory(s.address, []byte{s.savedByte}); err != nil {
			return err
		}
	}

	s.enabled = false
	return nil
}
