package elfimage_test

import (
	"os"
	"testing"

	"github.com/jetsetilly/ldb/elfimage"
	"github.com/jetsetilly/ldb/internal/ldbtest"
)

// TestOpenSelf opens the compiled test binary itself, which is always a
// valid ELF64 image on linux/amd64, and exercises header parsing and
// symbol lookup against it without needing a build step.
func TestOpenSelf(t *testing.T) {
	path, err := os.Executable()
	ldbtest.ExpectSuccess(t, err)

	f, err := elfimage.Open(path)
	ldbtest.ExpectSuccess(t, err)
	defer f.Close()

	ldbtest.Equate(t, f.Path(), path)

	text := f.SectionContents(".text")
	ldbtest.ExpectSuccess(t, len(text) > 0)

	start, ok := f.SectionStartFileAddress(".text")
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.ExpectSuccess(t, start.Addr != 0)
}

func TestSymbolLookupMiss(t *testing.T) {
	path, err := os.Executable()
	ldbtest.ExpectSuccess(t, err)

	f, err := elfimage.Open(path)
	ldbtest.ExpectSuccess(t, err)
	defer f.Close()

	syms := f.SymbolsByName("this symbol does not exist anywhere")
	ldbtest.Equate(t, len(syms), 0)
}

// TestSymbolLookupHit resolves a symbol every Go binary's symtab carries
// (the runtime entry point) and checks that a containing-address lookup
// somewhere inside its body finds the same symbol back.
func TestSymbolLookupHit(t *testing.T) {
	path, err := os.Executable()
	ldbtest.ExpectSuccess(t, err)

	f, err := elfimage.Open(path)
	ldbtest.ExpectSuccess(t, err)
	defer f.Close()

	syms := f.SymbolsByName("runtime.main")
	if len(syms) == 0 {
		t.Skip("binary was stripped of its symtab")
	}
	sym := syms[0]

	hit, ok := f.SymbolAtAddress(sym.Value)
	ldbtest.ExpectSuccess(t, ok)
	ldbtest.Equate(t, hit.Name, "runtime.main")

	if sym.Size > 1 {
		inside := sym.Value.Add(1)
		contained, ok := f.SymbolContainingAddress(inside)
		ldbtest.ExpectSuccess(t, ok)
		ldbtest.Equate(t, contained.Name, "runtime.main")
	}
}
