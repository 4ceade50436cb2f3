package dwarf

import "github.com/jetsetilly/ldb/ldberr"

// asAddress decodes a DW_FORM_addr value: the address size is fixed at 8
// for x86-64, this module's only supported architecture.
func (d *Dwarf) asAddress(loc attrLocation) (uint64, error) {
	if loc.form != dwFormAddr {
		return 0, ldberr.Errorf(ldberr.Format, "as address", "unexpected form 0x%x", loc.form)
	}
	return readLE(d.debugInfo, loc.offset, 8), nil
}

// asUint decodes any unsigned-integer-shaped form: data1/2/4/8, udata,
// sec_offset. Used for both "as section offset" (stmt_list, ranges) and
// plain unsigned attribute reads.
func (d *Dwarf) asUint(loc attrLocation) (uint64, error) {
	switch loc.form {
	case dwFormData1:
		return uint64(d.debugInfo[loc.offset]), nil
	case dwFormData2:
		return readLE(d.debugInfo, loc.offset, 2), nil
	case dwFormData4, dwFormSecOffset, dwFormRefAddr, dwFormStrp:
		return readLE(d.debugInfo, loc.offset, 4), nil
	case dwFormData8:
		return readLE(d.debugInfo, loc.offset, 8), nil
	case dwFormUdata:
		c := newCursor(d.debugInfo)
		c.seek(loc.offset)
		return c.uleb128(), nil
	case dwFormImplicitConst:
		return uint64(loc.implicitConst), nil
	default:
		return 0, ldberr.Errorf(ldberr.Format, "as uint", "unexpected form 0x%x", loc.form)
	}
}

// asInt decodes a signed-integer-shaped form: sdata, or any of the
// unsigned forms re-interpreted as signed (DW_AT_const_value frequently
// uses whichever is most compact for the value).
func (d *Dwarf) asInt(loc attrLocation) (int64, error) {
	if loc.form == dwFormSdata {
		c := newCursor(d.debugInfo)
		c.seek(loc.offset)
		return c.sleb128(), nil
	}
	u, err := d.asUint(loc)
	return int64(u), err
}

// asBlock decodes a block-shaped form (block1/2/4/block/exprloc) into its
// raw bytes, for DW_AT_location and similar DWARF expressions.
func (d *Dwarf) asBlock(loc attrLocation) ([]byte, error) {
	c := newCursor(d.debugInfo)
	c.seek(loc.offset)

	var n int
	switch loc.form {
	case dwFormBlock1:
		n = int(c.u8())
	case dwFormBlock2:
		n = int(c.u16())
	case dwFormBlock4:
		n = int(c.u32())
	case dwFormBlock, dwFormExprloc:
		n = int(c.uleb128())
	default:
		return nil, ldberr.Errorf(ldberr.Format, "as block", "unexpected form 0x%x", loc.form)
	}
	start := c.position()
	return d.debugInfo[start : start+n], nil
}

// asString decodes a string-shaped form: an inline NUL-terminated string,
// or an offset into .debug_str (strp).
func (d *Dwarf) asString(loc attrLocation) (string, error) {
	switch loc.form {
	case dwFormString:
		c := newCursor(d.debugInfo)
		c.seek(loc.offset)
		return c.string(), nil
	case dwFormStrp:
		off := readLE(d.debugInfo, loc.offset, 4)
		return cStringAt(d.debugStr, int(off)), nil
	default:
		return "", ldberr.Errorf(ldberr.Format, "as string", "unexpected form 0x%x", loc.form)
	}
}

// asReference resolves a reference-shaped form (ref1/2/4/8, ref_udata,
// ref_addr) to the DIE it points at. ref1/2/4/8/ref_udata are
// CU-relative; ref_addr is an absolute .debug_info offset, looked up
// against every compile unit in turn.
func (d *Dwarf) asReference(cu *CompileUnit, loc attrLocation) (*Die, error) {
	var target uint64

	switch loc.form {
	case dwFormRef1:
		target = cu.offset + uint64(d.debugInfo[loc.offset])
	case dwFormRef2:
		target = cu.offset + readLE(d.debugInfo, loc.offset, 2)
	case dwFormRef4:
		target = cu.offset + readLE(d.debugInfo, loc.offset, 4)
	case dwFormRef8:
		target = cu.offset + readLE(d.debugInfo, loc.offset, 8)
	case dwFormRefUdata:
		c := newCursor(d.debugInfo)
		c.seek(loc.offset)
		target = cu.offset + c.uleb128()
	case dwFormRefAddr:
		target = readLE(d.debugInfo, loc.offset, 4)
		owner := d.compileUnitContaining(target)
		if owner == nil {
			return nil, ldberr.Errorf(ldberr.Lookup, "as reference", "no compile unit contains offset %d", target)
		}
		return parseDieAt(owner, int(target))
	default:
		return nil, ldberr.Errorf(ldberr.Format, "as reference", "unexpected form 0x%x", loc.form)
	}

	return parseDieAt(cu, int(target))
}

func (d *Dwarf) compileUnitContaining(offset uint64) *CompileUnit {
	for _, cu := range d.compileUnits {
		if offset >= cu.offset && offset < uint64(cu.end) {
			return cu
		}
	}
	return nil
}

// sectionOffset is a thin alias over asUint used where the caller wants
// to make clear it is reading an offset into another section
// (DW_AT_stmt_list, DW_AT_ranges), not a plain scalar.
func (d *Dwarf) sectionOffset(loc attrLocation) uint64 {
	v, _ := d.asUint(loc)
	return v
}

func readLE(b []byte, offset, n int) uint64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[offset+i])
	}
	return v
}

func cStringAt(b []byte, off int) string {
	if off < 0 || off >= len(b) {
		return ""
	}
	end := off
	for end < len(b) && b[end] != 0 {
		end++
	}
	return string(b[off:end])
}
