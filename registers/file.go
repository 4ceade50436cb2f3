package registers

import (
	"encoding/binary"
	"math"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
)

// gprAreaSize is sizeof(struct user_regs_struct).
const gprAreaSize = 216

// fprAreaSize is sizeof(struct user_fpregs_struct).
const fprAreaSize = 512

// File is a typed, in-memory mirror of a tracee's register file: the GPR
// area (as returned by PTRACE_GETREGS), the FPR area (PTRACE_GETFPREGS),
// the four hardware debug-address registers and DR6/DR7, a CFA slot used
// while unwinding, and the set of register ids a stack unwind could not
// recover.
//
// File does not itself talk to ptrace. process.Process loads and writes
// back the GPR area (PTRACE_GETREGS/SETREGS) and writes debug registers
// through WriteUserArea; it does not load or write back the FPR area.
type File struct {
	gpr  [gprAreaSize]byte
	fpr  [fprAreaSize]byte
	dr   [8]uint64
	cfa  addr.VirtAddr
	undefined map[ID]bool
}

// NewFile returns a zeroed register file.
func NewFile() *File {
	return &File{undefined: make(map[ID]bool)}
}

// LoadGprs replaces the GPR area wholesale, as after a PTRACE_GETREGS.
func (f *File) LoadGprs(b [gprAreaSize]byte) { f.gpr = b }

// LoadFprs replaces the FPR area wholesale, as after a PTRACE_GETFPREGS.
func (f *File) LoadFprs(b [fprAreaSize]byte) { f.fpr = b }

// GprBytes returns the raw GPR area, for writing back via PTRACE_SETREGS.
func (f *File) GprBytes() [gprAreaSize]byte { return f.gpr }

// FprBytes returns the raw FPR area, for writing back via PTRACE_SETFPREGS.
func (f *File) FprBytes() [fprAreaSize]byte { return f.fpr }

// Dr returns the current shadow value of debug register n (0-7).
func (f *File) Dr(n int) uint64 { return f.dr[n] }

// SetDr sets the shadow value of debug register n (0-7); the caller is
// responsible for flushing it to the tracee via PTRACE_POKEUSER.
func (f *File) SetDr(n int, v uint64) { f.dr[n] = v }

// CFA returns the current canonical frame address slot, used while
// unwinding inline and physical frames.
func (f *File) CFA() addr.VirtAddr { return f.cfa }

// SetCFA sets the CFA slot.
func (f *File) SetCFA(a addr.VirtAddr) { f.cfa = a }

// MarkUndefined records that id could not be recovered by the current
// unwind step.
func (f *File) MarkUndefined(id ID) { f.undefined[id] = true }

// ClearUndefined clears the undefined set, as when moving to a fresh frame.
func (f *File) ClearUndefined() { f.undefined = make(map[ID]bool) }

// IsUndefined reports whether id is marked undefined.
func (f *File) IsUndefined(id ID) bool { return f.undefined[id] }

// Value is the decoded payload of a register read: exactly one of the
// fields is meaningful, selected by the register's Format.
type Value struct {
	Uint       uint64
	Double     float64
	Long128    addr.Byte128 // 80-bit long double payload, padded
	Vector     addr.Byte128
}

// Read decodes the register described by info out of the file's storage.
func (f *File) Read(info Info) (Value, error) {
	area, off, err := f.area(info)
	if err != nil {
		return Value{}, err
	}
	raw := area[off : off+info.Size]

	switch info.Format {
	case FormatUint:
		return Value{Uint: readUint(raw)}, nil
	case FormatDouble:
		return Value{Double: math.Float64frombits(binary.LittleEndian.Uint64(raw))}, nil
	case FormatLongDouble:
		var b addr.Byte128
		copy(b[:], raw)
		return Value{Long128: b}, nil
	case FormatVector:
		var b addr.Byte128
		copy(b[:], raw)
		return Value{Vector: b}, nil
	default:
		return Value{}, ldberr.Errorf(ldberr.Format, "register read", "unknown format for %s", info.Name)
	}
}

// Write encodes v into the register described by info. Only the first
// info.Size bytes of the selected field are stored; a Uint wider than the
// register is truncated to its low bytes.
func (f *File) Write(info Info, v Value) error {
	if info.Kind == DR {
		idx := (info.Offset - 848) / 8
		if idx < 0 || idx > 7 {
			return ldberr.Errorf(ldberr.Lookup, "register write", "dr index out of range")
		}
		f.dr[idx] = v.Uint
		return nil
	}
	area, off, err := f.area(info)
	if err != nil {
		return err
	}
	raw := area[off : off+info.Size]

	switch info.Format {
	case FormatUint:
		writeUint(raw, v.Uint)
	case FormatDouble:
		binary.LittleEndian.PutUint64(raw, math.Float64bits(v.Double))
	case FormatLongDouble:
		copy(raw, v.Long128[:info.Size])
	case FormatVector:
		copy(raw, v.Vector[:info.Size])
	default:
		return ldberr.Errorf(ldberr.Format, "register write", "unknown format for %s", info.Name)
	}
	return nil
}

func (f *File) area(info Info) ([]byte, int, error) {
	switch info.Kind {
	case GPR, SubGPR:
		return f.gpr[:], info.Offset, nil
	case FPR:
		return f.fpr[:], info.Offset, nil
	case DR:
		// DR area is addressed as 8 uint64 slots, not raw bytes; Read
		// decodes from a scratch copy of the slot, and Write stores into
		// the slot directly.
		idx := (info.Offset - 848) / 8
		if idx < 0 || idx > 7 {
			return nil, 0, ldberr.Errorf(ldberr.Lookup, "register area", "dr index out of range")
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], f.dr[idx])
		return buf[:], 0, nil
	default:
		return nil, 0, ldberr.Errorf(ldberr.Format, "register area", "unknown kind")
	}
}

// ReadByID is a convenience wrapper combining ByID and Read.
func (f *File) ReadByID(id ID) (Value, error) {
	info, ok := ByID(id)
	if !ok {
		return Value{}, ldberr.Errorf(ldberr.Lookup, "register read", "no such register id %d", id)
	}
	return f.Read(info)
}

// WriteByID is a convenience wrapper combining ByID and Write. For DR
// registers it also updates the shadow slot directly.
func (f *File) WriteByID(id ID, v Value) error {
	info, ok := ByID(id)
	if !ok {
		return ldberr.Errorf(ldberr.Lookup, "register write", "no such register id %d", id)
	}
	if info.Kind == DR {
		idx := (info.Offset - 848) / 8
		f.dr[idx] = v.Uint
		return nil
	}
	return f.Write(info, v)
}

func readUint(raw []byte) uint64 {
	var buf [8]byte
	copy(buf[:], raw)
	return binary.LittleEndian.Uint64(buf[:])
}

func writeUint(raw []byte, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	copy(raw, buf[:len(raw)])
}
