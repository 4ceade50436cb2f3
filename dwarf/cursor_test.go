package dwarf

import (
	"testing"

	"github.com/jetsetilly/ldb/internal/ldbtest"
)

func TestULEB128(t *testing.T) {
	c := newCursor([]byte{0xe5, 0x8e, 0x26})
	ldbtest.Equate(t, c.uleb128(), uint64(624485))
}

func TestSLEB128Negative(t *testing.T) {
	c := newCursor([]byte{0x9b, 0xf1, 0x59})
	ldbtest.Equate(t, c.sleb128(), int64(-624485))
}

func TestSLEB128Positive(t *testing.T) {
	c := newCursor([]byte{2})
	ldbtest.Equate(t, c.sleb128(), int64(2))
}

func TestCStringCursor(t *testing.T) {
	c := newCursor([]byte("hello\x00world"))
	ldbtest.Equate(t, c.string(), "hello")
	ldbtest.Equate(t, c.position(), 6)
}
