package registers_test

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
	"github.com/jetsetilly/ldb/registers"
)

func TestReadWriteRoundTripEveryRegister(t *testing.T) {
	for _, info := range registers.Descriptions {
		f := registers.NewFile()

		var v registers.Value
		switch info.Format {
		case registers.FormatUint:
			v.Uint = 0xcafecafe
		case registers.FormatVector:
			for i := range v.Vector {
				v.Vector[i] = byte(i)
			}
		case registers.FormatLongDouble:
			for i := range v.Long128 {
				v.Long128[i] = byte(i + 1)
			}
		case registers.FormatDouble:
			v.Double = 3.5
		}

		ldbtest.ExpectSuccess(t, f.Write(info, v))
		got, err := f.Read(info)
		ldbtest.ExpectSuccess(t, err)

		switch info.Format {
		case registers.FormatUint:
			mask := uint64(1)<<(uint(info.Size)*8) - 1
			if info.Size == 8 {
				mask = ^uint64(0)
			}
			ldbtest.Equate(t, got.Uint&mask, v.Uint&mask)
		case registers.FormatVector:
			ldbtest.Equate(t, string(got.Vector[:info.Size]), string(v.Vector[:info.Size]))
		case registers.FormatDouble:
			ldbtest.Equate(t, got.Double, v.Double)
		}
	}
}

func TestByName(t *testing.T) {
	info, ok := registers.ByName("rip")
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, info.ID, registers.Rip)
}

func TestByDwarfNumber(t *testing.T) {
	info, ok := registers.ByDwarfNumber(7)
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, info.ID, registers.Rsp)
}

func TestUndefinedTracking(t *testing.T) {
	f := registers.NewFile()
	ldbtest.ExpectFailure(t, f.IsUndefined(registers.Rbx))
	f.MarkUndefined(registers.Rbx)
	ldbtest.ExpectSuccess(t, f.IsUndefined(registers.Rbx))
	f.ClearUndefined()
	ldbtest.ExpectFailure(t, f.IsUndefined(registers.Rbx))
}
