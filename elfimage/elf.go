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

// Package elfimage parses an ELF64 executable or shared object directly
// from an mmap'd image, in the manner of the debugger's own DWARF reader:
// section and symbol tables are walked by hand rather than through a
// higher-level ELF library, so that file offsets recovered here line up
// byte-for-byte with the offsets DWARF attributes reference.
package elfimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"sort"

	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
	"golang.org/x/sys/unix"
)

// Symbol is a single entry from .symtab or .dynsym.
type Symbol struct {
	Name  string
	Value addr.FileAddr
	Size  uint64
	Info  byte
	Shndx uint16
}

// symbolRange is one entry in the address-ordered lookup used by
// SymbolContainingAddress.
type symbolRange struct {
	low, high uint64
	sym       *Symbol
}

// File is a parsed ELF64 image. Its zero value is not usable; construct one
// with Open.
type File struct {
	path string
	f    *os.File
	data []byte

	ehdr    elf.Header64
	shdrs   []elf.Section64
	shNames []string

	symbols   []Symbol
	byName    map[string][]*Symbol
	byAddress []symbolRange

	loadBias int64
}

// Open mmaps path and parses its ELF64 header, section headers and symbol
// tables.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ldberr.Errno("open", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ldberr.Errno("fstat", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, ldberr.Errno("mmap", err)
	}

	img := &File{path: path, f: f, data: data}
	if err := img.parse(); err != nil {
		img.Close()
		return nil, err
	}
	return img, nil
}

// Close unmaps the image and closes the underlying file.
func (f *File) Close() error {
	var err error
	if f.data != nil {
		err = unix.Munmap(f.data)
		f.data = nil
	}
	if f.f != nil {
		f.f.Close()
		f.f = nil
	}
	return err
}

// Path returns the path the image was opened from.
func (f *File) Path() string { return f.path }

// LoadBias returns the difference between a symbol's runtime virtual
// address and its file address, as established by SetLoadBias.
func (f *File) LoadBias() int64 { return f.loadBias }

// SetLoadBias records the runtime load bias, computed by the caller from
// auxv's AT_ENTRY versus the ELF entry point for a position-independent
// executable (bias is always zero for a non-PIE binary).
func (f *File) SetLoadBias(bias int64) { f.loadBias = bias }

func (f *File) parse() error {
	if len(f.data) < 64 || !bytes.Equal(f.data[:4], []byte{0x7f, 'E', 'L', 'F'}) {
		return ldberr.Errorf(ldberr.Format, "elf header", "not an ELF file")
	}
	if f.data[elf.EI_CLASS] != byte(elf.ELFCLASS64) {
		return ldberr.Errorf(ldberr.Format, "elf header", "only 64-bit ELF images are supported")
	}

	r := bytes.NewReader(f.data)
	if err := binary.Read(r, binary.LittleEndian, &f.ehdr); err != nil {
		return ldberr.Errorf(ldberr.Format, "elf header", "truncated header")
	}

	if err := f.parseSectionHeaders(); err != nil {
		return err
	}
	f.buildSectionNames()
	f.buildSymbols()

	return nil
}

func (f *File) parseSectionHeaders() error {
	shnum := int(f.ehdr.Shnum)
	shoff := f.ehdr.Shoff
	shentsize := int(f.ehdr.Shentsize)

	if shoff == 0 {
		return nil
	}

	readOne := func(idx int) (elf.Section64, error) {
		var sh elf.Section64
		off := int(shoff) + idx*shentsize
		if off+shentsize > len(f.data) {
			return sh, ldberr.Errorf(ldberr.Format, "section header", "truncated section header table")
		}
		r := bytes.NewReader(f.data[off : off+shentsize])
		if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
			return sh, ldberr.Errorf(ldberr.Format, "section header", "malformed section header")
		}
		return sh, nil
	}

	// shnum == 0 means the real count overflowed into section[0].size, per
	// the ELF64 extended-numbering convention.
	if shnum == 0 {
		sh0, err := readOne(0)
		if err != nil {
			return err
		}
		shnum = int(sh0.Size)
	}

	f.shdrs = make([]elf.Section64, 0, shnum)
	for i := 0; i < shnum; i++ {
		sh, err := readOne(i)
		if err != nil {
			return err
		}
		f.shdrs = append(f.shdrs, sh)
	}
	return nil
}

func (f *File) buildSectionNames() {
	shstrndx := int(f.ehdr.Shstrndx)
	if shstrndx <= 0 || shstrndx >= len(f.shdrs) {
		return
	}
	strtab := f.sectionContentsByIndex(shstrndx)

	f.shNames = make([]string, len(f.shdrs))
	for i, sh := range f.shdrs {
		f.shNames[i] = cstring(strtab, int(sh.Name))
	}
}

func (f *File) sectionContentsByIndex(idx int) []byte {
	if idx < 0 || idx >= len(f.shdrs) {
		return nil
	}
	sh := f.shdrs[idx]
	if sh.Type == uint32(elf.SHT_NOBITS) {
		return nil
	}
	off := int(sh.Offset)
	size := int(sh.Size)
	if off+size > len(f.data) || off < 0 || size < 0 {
		return nil
	}
	return f.data[off : off+size]
}

// SectionContents returns the raw bytes of the named section, or nil if no
// such section exists.
func (f *File) SectionContents(name string) []byte {
	idx := f.sectionIndex(name)
	if idx < 0 {
		return nil
	}
	return f.sectionContentsByIndex(idx)
}

// SectionStartFileAddress returns the FileAddr a section begins at.
func (f *File) SectionStartFileAddress(name string) (addr.FileAddr, bool) {
	idx := f.sectionIndex(name)
	if idx < 0 {
		return addr.FileAddr{}, false
	}
	return addr.NewFileAddr(f, f.shdrs[idx].Addr), true
}

func (f *File) sectionIndex(name string) int {
	for i, n := range f.shNames {
		if n == name {
			return i
		}
	}
	return -1
}

func cstring(b []byte, off int) string {
	if off < 0 || off >= len(b) {
		return ""
	}
	end := bytes.IndexByte(b[off:], 0)
	if end < 0 {
		return string(b[off:])
	}
	return string(b[off : off+end])
}

func (f *File) buildSymbols() {
	f.byName = make(map[string][]*Symbol)

	addFrom := func(symtabName, strtabName string) {
		symtab := f.SectionContents(symtabName)
		strtab := f.SectionContents(strtabName)
		if symtab == nil {
			return
		}

		const entsize = 24 // sizeof(Elf64_Sym)
		for off := 0; off+entsize <= len(symtab); off += entsize {
			var raw struct {
				Name  uint32
				Info  byte
				Other byte
				Shndx uint16
				Value uint64
				Size  uint64
			}
			r := bytes.NewReader(symtab[off : off+entsize])
			if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
				continue
			}

			sym := Symbol{
				Name:  cstring(strtab, int(raw.Name)),
				Value: addr.NewFileAddr(f, raw.Value),
				Size:  raw.Size,
				Info:  raw.Info,
				Shndx: raw.Shndx,
			}
			f.symbols = append(f.symbols, sym)
		}
	}

	addFrom(".symtab", ".strtab")
	addFrom(".dynsym", ".dynstr")

	for i := range f.symbols {
		s := &f.symbols[i]
		f.byName[s.Name] = append(f.byName[s.Name], s)

		// range map excludes symbols with a zero value, an empty name, or
		// TLS type, same invariant as the original ELF reader's
		// BuildSymbolMaps.
		stType := elf.ST_TYPE(elf.SymType(s.Info))
		if s.Value.Addr == 0 || s.Name == "" || stType == elf.STT_TLS {
			continue
		}
		f.byAddress = append(f.byAddress, symbolRange{
			low:  s.Value.Addr,
			high: s.Value.Addr + s.Size,
			sym:  s,
		})
	}

	sort.Slice(f.byAddress, func(i, j int) bool { return f.byAddress[i].low < f.byAddress[j].low })
}

// SymbolsByName returns every symbol with the given name.
func (f *File) SymbolsByName(name string) []*Symbol {
	return f.byName[name]
}

// SymbolAtAddress returns the symbol whose value exactly equals a, if any.
func (f *File) SymbolAtAddress(a addr.FileAddr) (*Symbol, bool) {
	for i := range f.byAddress {
		if f.byAddress[i].low == a.Addr {
			return f.byAddress[i].sym, true
		}
	}
	return nil, false
}

// SymbolContainingAddress returns the symbol whose [value, value+size) range
// contains a, the same lower_bound-then-step-back search the original
// reader performs.
func (f *File) SymbolContainingAddress(a addr.FileAddr) (*Symbol, bool) {
	entries := f.byAddress
	i := sort.Search(len(entries), func(i int) bool { return entries[i].low > a.Addr })
	if i == 0 {
		return nil, false
	}
	for j := i - 1; j >= 0; j-- {
		if a.Addr >= entries[j].low && a.Addr < entries[j].high {
			return entries[j].sym, true
		}
		if entries[j].low != entries[i-1].low {
			break
		}
	}
	return nil, false
}
