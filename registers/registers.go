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

// Package registers is a typed view over the x86-64 Linux kernel user area
// (struct user, as exposed by PTRACE_PEEKUSER/POKEUSER/GETREGS/GETFPREGS).
// Every register is described once, in Descriptions, and all reads and
// writes go through that table rather than ad-hoc field access.
package registers

import "fmt"

// Kind classifies a register by how it is stored in the user area.
type Kind int

const (
	GPR Kind = iota
	SubGPR
	FPR
	DR
)

// Format describes how a register's raw bytes should be interpreted.
type Format int

const (
	FormatUint Format = iota
	FormatDouble
	FormatLongDouble
	FormatVector
)

// ID names a single register, independent of its storage kind.
type ID int

const (
	Rax ID = iota
	Rdx
	Rcx
	Rbx
	Rsi
	Rdi
	Rbp
	Rsp
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	Rip
	Eflags
	Cs
	Ss
	Ds
	Es
	Fs
	Gs
	OrigRax
	FsBase
	GsBase

	Eax
	Ebx
	Ecx
	Edx
	Esi
	Edi
	Ebp
	Esp

	Fcw
	Fsw
	Ftw
	Fop
	Frip
	Frdp
	Mxcsr
	MxcsrMask
	St0
	St1
	St2
	St3
	St4
	St5
	St6
	St7
	Mm0
	Mm1
	Mm2
	Mm3
	Mm4
	Mm5
	Mm6
	Mm7
	Xmm0
	Xmm1
	Xmm2
	Xmm3
	Xmm4
	Xmm5
	Xmm6
	Xmm7
	Xmm8
	Xmm9
	Xmm10
	Xmm11
	Xmm12
	Xmm13
	Xmm14
	Xmm15

	Dr0
	Dr1
	Dr2
	Dr3
	Dr4
	Dr5
	Dr6
	Dr7
)

// Info is the metadata for a single register: its DWARF number, size in
// bytes, byte offset into the owning kernel struct, storage kind and
// preferred display format.
type Info struct {
	ID       ID
	Name     string
	DwarfNum int // -1 when the register has no DWARF number
	Size     int
	Offset   int // byte offset into user_regs_struct (GPR/SubGPR) or user_fpregs_struct (FPR) or struct user's u_debugreg slots (DR)
	Kind     Kind
	Format   Format
}

// sizeof(struct user_regs_struct) field offsets on x86-64 Linux, computed
// from the glibc header layout: r15, r14, r13, r12, rbp, rbx, r11, r10, r9,
// r8, rax, rcx, rdx, rsi, rdi, orig_rax, rip, cs, eflags, rsp, ss, fs_base,
// gs_base, ds, es, fs, gs, each an 8-byte field in that order.
const (
	offR15 = 0
	offR14 = 8
	offR13 = 16
	offR12 = 24
	offRbp = 32
	offRbx = 40
	offR11 = 48
	offR10 = 56
	offR9  = 64
	offR8  = 72
	offRax = 80
	offRcx = 88
	offRdx = 96
	offRsi = 104
	offRdi = 112
	offOrig = 120
	offRip  = 128
	offCs   = 136
	offEflags = 144
	offRsp  = 152
	offSs   = 160
	offFsBase = 168
	offGsBase = 176
	offDs   = 184
	offEs   = 192
	offFs   = 200
	offGs   = 208
)

// Descriptions is the authoritative register table: every typed read or
// write in this package and in process.Registers goes through it.
var Descriptions = []Info{
	{Rax, "rax", 0, 8, offRax, GPR, FormatUint},
	{Rdx, "rdx", 1, 8, offRdx, GPR, FormatUint},
	{Rcx, "rcx", 2, 8, offRcx, GPR, FormatUint},
	{Rbx, "rbx", 3, 8, offRbx, GPR, FormatUint},
	{Rsi, "rsi", 4, 8, offRsi, GPR, FormatUint},
	{Rdi, "rdi", 5, 8, offRdi, GPR, FormatUint},
	{Rbp, "rbp", 6, 8, offRbp, GPR, FormatUint},
	{Rsp, "rsp", 7, 8, offRsp, GPR, FormatUint},
	{R8, "r8", 8, 8, offR8, GPR, FormatUint},
	{R9, "r9", 9, 8, offR9, GPR, FormatUint},
	{R10, "r10", 10, 8, offR10, GPR, FormatUint},
	{R11, "r11", 11, 8, offR11, GPR, FormatUint},
	{R12, "r12", 12, 8, offR12, GPR, FormatUint},
	{R13, "r13", 13, 8, offR13, GPR, FormatUint},
	{R14, "r14", 14, 8, offR14, GPR, FormatUint},
	{R15, "r15", 15, 8, offR15, GPR, FormatUint},
	{Rip, "rip", 16, 8, offRip, GPR, FormatUint},
	{Eflags, "eflags", 49, 8, offEflags, GPR, FormatUint},
	{Cs, "cs", 51, 8, offCs, GPR, FormatUint},
	{Ss, "ss", 52, 8, offSs, GPR, FormatUint},
	{Ds, "ds", 53, 8, offDs, GPR, FormatUint},
	{Es, "es", 50, 8, offEs, GPR, FormatUint},
	{Fs, "fs", 54, 8, offFs, GPR, FormatUint},
	{Gs, "gs", 55, 8, offGs, GPR, FormatUint},
	{OrigRax, "orig_rax", -1, 8, offOrig, GPR, FormatUint},
	{FsBase, "fs_base", 58, 8, offFsBase, GPR, FormatUint},
	{GsBase, "gs_base", 59, 8, offGsBase, GPR, FormatUint},

	{Eax, "eax", -1, 4, offRax, SubGPR, FormatUint},
	{Ebx, "ebx", -1, 4, offRbx, SubGPR, FormatUint},
	{Ecx, "ecx", -1, 4, offRcx, SubGPR, FormatUint},
	{Edx, "edx", -1, 4, offRdx, SubGPR, FormatUint},
	{Esi, "esi", -1, 4, offRsi, SubGPR, FormatUint},
	{Edi, "edi", -1, 4, offRdi, SubGPR, FormatUint},
	{Ebp, "ebp", -1, 4, offRbp, SubGPR, FormatUint},
	{Esp, "esp", -1, 4, offRsp, SubGPR, FormatUint},

	// offsets below are within struct user_fpregs_struct, as returned
	// whole by PTRACE_GETFPREGS/SETFPREGS (not struct user).
	{Fcw, "fcw", 65, 2, 0, FPR, FormatUint},
	{Fsw, "fsw", 66, 2, 2, FPR, FormatUint},
	{Ftw, "ftw", -1, 2, 4, FPR, FormatUint},
	{Fop, "fop", -1, 2, 6, FPR, FormatUint},
	{Frip, "frip", -1, 8, 8, FPR, FormatUint},
	{Frdp, "frdp", -1, 8, 16, FPR, FormatUint},
	{Mxcsr, "mxcsr", 64, 4, 24, FPR, FormatUint},
	{MxcsrMask, "mxcr_mask", -1, 4, 28, FPR, FormatUint},
	{St0, "st0", 33, 10, 32, FPR, FormatLongDouble},
	{St1, "st1", 34, 10, 48, FPR, FormatLongDouble},
	{St2, "st2", 35, 10, 64, FPR, FormatLongDouble},
	{St3, "st3", 36, 10, 80, FPR, FormatLongDouble},
	{St4, "st4", 37, 10, 96, FPR, FormatLongDouble},
	{St5, "st5", 38, 10, 112, FPR, FormatLongDouble},
	{St6, "st6", 39, 10, 128, FPR, FormatLongDouble},
	{St7, "st7", 40, 10, 144, FPR, FormatLongDouble},
	{Mm0, "mm0", 41, 8, 32, FPR, FormatVector},
	{Mm1, "mm1", 42, 8, 48, FPR, FormatVector},
	{Mm2, "mm2", 43, 8, 64, FPR, FormatVector},
	{Mm3, "mm3", 44, 8, 80, FPR, FormatVector},
	{Mm4, "mm4", 45, 8, 96, FPR, FormatVector},
	{Mm5, "mm5", 46, 8, 112, FPR, FormatVector},
	{Mm6, "mm6", 47, 8, 128, FPR, FormatVector},
	{Mm7, "mm7", 48, 8, 144, FPR, FormatVector},
	{Xmm0, "xmm0", 17, 16, 160, FPR, FormatVector},
	{Xmm1, "xmm1", 18, 16, 176, FPR, FormatVector},
	{Xmm2, "xmm2", 19, 16, 192, FPR, FormatVector},
	{Xmm3, "xmm3", 20, 16, 208, FPR, FormatVector},
	{Xmm4, "xmm4", 21, 16, 224, FPR, FormatVector},
	{Xmm5, "xmm5", 22, 16, 240, FPR, FormatVector},
	{Xmm6, "xmm6", 23, 16, 256, FPR, FormatVector},
	{Xmm7, "xmm7", 24, 16, 272, FPR, FormatVector},
	{Xmm8, "xmm8", 25, 16, 288, FPR, FormatVector},
	{Xmm9, "xmm9", 26, 16, 304, FPR, FormatVector},
	{Xmm10, "xmm10", 27, 16, 320, FPR, FormatVector},
	{Xmm11, "xmm11", 28, 16, 336, FPR, FormatVector},
	{Xmm12, "xmm12", 29, 16, 352, FPR, FormatVector},
	{Xmm13, "xmm13", 30, 16, 368, FPR, FormatVector},
	{Xmm14, "xmm14", 31, 16, 384, FPR, FormatVector},
	{Xmm15, "xmm15", 32, 16, 400, FPR, FormatVector},

	// u_debugreg offsets within struct user (848 + 8*n).
	{Dr0, "dr0", -1, 8, 848, DR, FormatUint},
	{Dr1, "dr1", -1, 8, 856, DR, FormatUint},
	{Dr2, "dr2", -1, 8, 864, DR, FormatUint},
	{Dr3, "dr3", -1, 8, 872, DR, FormatUint},
	{Dr4, "dr4", -1, 8, 880, DR, FormatUint},
	{Dr5, "dr5", -1, 8, 888, DR, FormatUint},
	{Dr6, "dr6", -1, 8, 896, DR, FormatUint},
	{Dr7, "dr7", -1, 8, 904, DR, FormatUint},
}

var (
	byID   = map[ID]Info{}
	byName = map[string]Info{}
)

func init() {
	for _, d := range Descriptions {
		byID[d.ID] = d
		byName[d.Name] = d
	}
}

// ByID looks up a register's metadata by ID.
func ByID(id ID) (Info, bool) {
	d, ok := byID[id]
	return d, ok
}

// ByName looks up a register's metadata by its assembly mnemonic.
func ByName(name string) (Info, bool) {
	d, ok := byName[name]
	return d, ok
}

// ByDwarfNumber looks up a register's metadata by its SysV ABI DWARF
// register number, used when unwinding CFI expressions.
func ByDwarfNumber(n int) (Info, bool) {
	for _, d := range Descriptions {
		if d.DwarfNum == n {
			return d, true
		}
	}
	return Info{}, false
}

func (k Kind) String() string {
	switch k {
	case GPR:
		return "gpr"
	case SubGPR:
		return "sub_gpr"
	case FPR:
		return "fpr"
	case DR:
		return "dr"
	default:
		return "unknown"
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s(%s, size=%d, offset=%d)", i.Name, i.Kind, i.Size, i.Offset)
}
