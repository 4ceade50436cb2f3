package process

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// encodeGprs flattens a unix.PtraceRegs (which mirrors struct
// user_regs_struct field-for-field on linux/amd64) into the raw byte area
// registers.File stores its GPRs in.
func encodeGprs(r unix.PtraceRegs) [216]byte {
	var out [216]byte
	fields := []uint64{
		r.R15, r.R14, r.R13, r.R12, r.Rbp, r.Rbx, r.R11, r.R10,
		r.R9, r.R8, r.Rax, r.Rcx, r.Rdx, r.Rsi, r.Rdi, r.Orig_rax,
		r.Rip, r.Cs, r.Eflags, r.Rsp, r.Ss, r.Fs_base, r.Gs_base,
		r.Ds, r.Es, r.Fs, r.Gs,
	}
	for i, v := range fields {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], v)
	}
	return out
}

// decodeGprs is encodeGprs's inverse, used before PTRACE_SETREGS.
func decodeGprs(b [216]byte) unix.PtraceRegs {
	u := func(i int) uint64 { return binary.LittleEndian.Uint64(b[i*8 : i*8+8]) }
	return unix.PtraceRegs{
		R15: u(0), R14: u(1), R13: u(2), R12: u(3), Rbp: u(4), Rbx: u(5),
		R11: u(6), R10: u(7), R9: u(8), R8: u(9), Rax: u(10), Rcx: u(11),
		Rdx: u(12), Rsi: u(13), Rdi: u(14), Orig_rax: u(15), Rip: u(16),
		Cs: u(17), Eflags: u(18), Rsp: u(19), Ss: u(20), Fs_base: u(21),
		Gs_base: u(22), Ds: u(23), Es: u(24), Fs: u(25), Gs: u(26),
	}
}
