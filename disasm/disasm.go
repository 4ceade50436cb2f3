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

// Package disasm wraps golang.org/x/arch/x86/x86asm behind the small
// interface this debugger needs: decode one instruction at a time out of
// a byte window read from the tracee, in AT&T syntax, the same shape the
// interactive layer expects for a "disassemble" command.
package disasm

import (
	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
	"golang.org/x/arch/x86/x86asm"
)

// Instruction is one decoded instruction: its address, length in bytes,
// and AT&T-syntax text.
type Instruction struct {
	Address addr.VirtAddr
	Length  int
	Text    string
}

// Decode decodes a single instruction from the front of code, which is
// assumed to start at address a.
func Decode(code []byte, a addr.VirtAddr) (Instruction, error) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return Instruction{}, ldberr.Errorf(ldberr.Format, "decode instruction", "%v", err)
	}
	text := x86asm.GNUSyntax(inst, uint64(a), nil)
	return Instruction{Address: a, Length: inst.Len, Text: text}, nil
}

// DecodeN decodes up to n consecutive instructions starting at address a
// out of code, stopping early if code runs out or an instruction fails to
// decode.
func DecodeN(code []byte, a addr.VirtAddr, n int) ([]Instruction, error) {
	var out []Instruction
	pos := 0
	cur := a
	for i := 0; i < n && pos < len(code); i++ {
		inst, err := Decode(code[pos:], cur)
		if err != nil {
			return out, err
		}
		out = append(out, inst)
		pos += inst.Length
		cur += addr.VirtAddr(inst.Length)
	}
	return out, nil
}
