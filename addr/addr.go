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

// Package addr defines the address and byte-vector primitives shared by
// every layer of the debugger: the distinction between an address as seen
// by a running process (VirtAddr) and an address as seen inside an ELF
// image on disk (FileAddr), plus the small fixed-size byte arrays used to
// shuttle vector and x87 register payloads across ptrace.
package addr

import "fmt"

// VirtAddr is an address in the address space of a traced process.
type VirtAddr uint64

// FileAddr is an address relative to the load address of a particular ELF
// image, as recorded in its section and symbol tables. Two FileAddr values
// are only comparable when they belong to the same image; Owner carries
// that identity so mistakes are caught at the call site rather than
// silently producing a meaningless ordering.
type FileAddr struct {
	Owner interface{}
	Addr  uint64
}

// NewFileAddr returns a FileAddr tied to owner.
func NewFileAddr(owner interface{}, a uint64) FileAddr {
	return FileAddr{Owner: owner, Addr: a}
}

// ToVirtAddr converts a FileAddr to a VirtAddr given the load bias of its
// owning image.
func (f FileAddr) ToVirtAddr(bias int64) VirtAddr {
	return VirtAddr(int64(f.Addr) + bias)
}

// Before reports whether f precedes g. Both must belong to the same image.
func (f FileAddr) Before(g FileAddr) bool {
	mustSameOwner(f, g)
	return f.Addr < g.Addr
}

// Add returns a FileAddr offset by n bytes from f, retaining f's owner.
func (f FileAddr) Add(n int64) FileAddr {
	return FileAddr{Owner: f.Owner, Addr: uint64(int64(f.Addr) + n)}
}

func mustSameOwner(f, g FileAddr) {
	if f.Owner != nil && g.Owner != nil && f.Owner != g.Owner {
		panic("addr: comparing FileAddr values from different ELF images")
	}
}

// FileOffset is an absolute byte offset into an ELF file's on-disk image,
// independent of any section or load address.
type FileOffset uint64

// ToFileAddr removes a signed load bias from a virtual address, used when
// converting a PC back to a file address for DWARF/ELF lookups.
func (v VirtAddr) ToFileAddr(owner interface{}, bias int64) FileAddr {
	return FileAddr{Owner: owner, Addr: uint64(int64(v) - bias)}
}

func (v VirtAddr) String() string {
	return fmt.Sprintf("0x%016x", uint64(v))
}

func (f FileAddr) String() string {
	return fmt.Sprintf("0x%016x", f.Addr)
}

// Byte64 holds the raw bytes of an MMX/x87 register.
type Byte64 [8]byte

// Byte128 holds the raw bytes of an XMM register.
type Byte128 [16]byte

// StoppointMode is the trigger condition for a hardware stoppoint: plain
// execution breakpoints always use Execute; data watchpoints use one of
// the other two.
type StoppointMode int

const (
	// Write triggers on a write to the watched region.
	Write StoppointMode = iota
	// ReadWrite triggers on either a read or a write to the watched region.
	ReadWrite
	// Execute triggers when the watched address is executed. Used for
	// hardware execution breakpoints.
	Execute
)

func (m StoppointMode) String() string {
	switch m {
	case Write:
		return "write"
	case ReadWrite:
		return "read_write"
	case Execute:
		return "execute"
	default:
		return "unknown"
	}
}

// EncodeDR7 returns the 2-bit DR7 R/W (trigger condition) encoding for the
// given mode, as consumed by the hardware debug registers (x86-64 SDM, DR7
// R_Wn fields). The LENn size bits come from EncodeDR7Size.
func (m StoppointMode) EncodeDR7() uint64 {
	switch m {
	case Write:
		return 0b01
	case ReadWrite:
		return 0b11
	case Execute:
		return 0b00
	default:
		panic("addr: invalid stoppoint mode")
	}
}

// EncodeDR7Size returns the 2-bit DR7 length encoding for a watchpoint
// covering size bytes. Valid sizes are 1, 2, 4 and 8.
func EncodeDR7Size(size int) uint64 {
	switch size {
	case 1:
		return 0b00
	case 2:
		return 0b01
	case 8:
		return 0b10
	case 4:
		return 0b11
	default:
		panic("addr: invalid watchpoint size")
	}
}
