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

// Package dwarf is a hand-rolled, forward-only reader for DWARF v4
// (32-bit) debug information, built the way the rest of this module reads
// binary formats: a cursor over a byte slice, lazily decoded fields, and
// no dependency on debug/dwarf (which targets a different producer-facing
// API and does not expose the byte-offset bookkeeping the rest of the
// debugger needs to cross-reference .debug_info with .debug_line).
package dwarf

import "github.com/jetsetilly/ldb/ldberr"

// cursor reads sequentially through a byte slice, the same forward-only
// pattern used by every other reader in this module.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor { return &cursor{data: data} }

func (c *cursor) finished() bool { return c.pos >= len(c.data) }

func (c *cursor) position() int { return c.pos }

func (c *cursor) seek(pos int) { c.pos = pos }

func (c *cursor) skip(n int) { c.pos += n }

func (c *cursor) u8() uint8 {
	v := c.data[c.pos]
	c.pos++
	return v
}

func (c *cursor) u16() uint16 {
	v := uint16(c.data[c.pos]) | uint16(c.data[c.pos+1])<<8
	c.pos += 2
	return v
}

func (c *cursor) u32() uint32 {
	v := uint32(c.data[c.pos]) | uint32(c.data[c.pos+1])<<8 |
		uint32(c.data[c.pos+2])<<16 | uint32(c.data[c.pos+3])<<24
	c.pos += 4
	return v
}

func (c *cursor) u64() uint64 {
	lo := c.u32()
	hi := c.u32()
	return uint64(lo) | uint64(hi)<<32
}

func (c *cursor) s8() int8 { return int8(c.u8()) }

func (c *cursor) string() string {
	start := c.pos
	for c.pos < len(c.data) && c.data[c.pos] != 0 {
		c.pos++
	}
	s := string(c.data[start:c.pos])
	if c.pos < len(c.data) {
		c.pos++ // skip terminator
	}
	return s
}

// uleb128 decodes an unsigned LEB128 value, DWARF4 §7.6 figure 46.
func (c *cursor) uleb128() uint64 {
	var result uint64
	var shift uint
	for {
		b := c.u8()
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result
}

// sleb128 decodes a signed LEB128 value, DWARF4 §7.6 figure 47.
func (c *cursor) sleb128() int64 {
	var result int64
	var shift uint
	var b uint8
	for {
		b = c.u8()
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -(int64(1) << shift)
	}
	return result
}

// skipForm advances past a single value encoded in the given DW_FORM,
// without decoding it, using addressSize to size DW_FORM_addr. Offset-valued
// forms are always 4 bytes (32-bit DWARF only).
func (c *cursor) skipForm(form uint64, addressSize int) error {
	switch form {
	case dwFormAddr:
		c.skip(addressSize)
	case dwFormBlock1:
		n := int(c.u8())
		c.skip(n)
	case dwFormBlock2:
		n := int(c.u16())
		c.skip(n)
	case dwFormBlock4:
		n := int(c.u32())
		c.skip(n)
	case dwFormBlock, dwFormExprloc:
		n := int(c.uleb128())
		c.skip(n)
	case dwFormData1, dwFormRef1, dwFormFlag, dwFormStrx1, dwFormAddrx1:
		c.skip(1)
	case dwFormData2, dwFormRef2, dwFormStrx2, dwFormAddrx2:
		c.skip(2)
	case dwFormData4, dwFormRef4, dwFormSecOffset, dwFormStrp, dwFormRefAddr:
		c.skip(4)
	case dwFormData8, dwFormRef8, dwFormRefSig8:
		c.skip(8)
	case dwFormSdata:
		c.sleb128()
	case dwFormUdata, dwFormRefUdata, dwFormStrx, dwFormAddrx:
		c.uleb128()
	case dwFormString:
		c.string()
	case dwFormFlagPresent, dwFormImplicitConst:
		// no data
	case dwFormIndirect:
		f := c.uleb128()
		return c.skipForm(f, addressSize)
	default:
		return ldberr.Errorf(ldberr.Format, "skip form", "unsupported DW_FORM 0x%x", form)
	}
	return nil
}
