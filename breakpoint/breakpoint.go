package breakpoint

import (
	"github.com/jetsetilly/ldb/addr"
	"github.com/jetsetilly/ldb/ldberr"
)

var nextBreakpointID int32 = 1

// Kind distinguishes the three ways a user can ask for a breakpoint.
type Kind int

const (
	ByAddress Kind = iota
	ByFunction
	ByLine
)

// ResolvedLocation is one place a Breakpoint has resolved to: a site
// address.
type ResolvedLocation struct {
	Address addr.VirtAddr
}

// Resolver is the narrow slice of Target a Breakpoint needs to turn a
// function name or (file, line) pair into one or more addresses. Kept as
// an interface here so this package never imports dwarf or target,
// avoiding an import cycle.
type Resolver interface {
	AddressesForFunction(name string) ([]addr.VirtAddr, error)
	AddressesForLine(file string, line int) ([]addr.VirtAddr, error)
}

// Breakpoint is a high-level, possibly-multi-site breakpoint: a function
// or inlined-line breakpoint can resolve to more than one address when a
// function is inlined at several call sites, or has several definitions
// (as might happen with a template/generic instantiation). Implemented as
// a single tagged-variant type rather than a Resolve()-implementing class
// hierarchy, per the simpler shape this debugger's design favors over the
// original's virtual dispatch.
type Breakpoint struct {
	id         int32
	kind       Kind
	address    addr.VirtAddr
	function   string
	file       string
	line       int
	isHardware bool
	enabled    bool

	sites []*Site
}

func newBreakpoint(kind Kind, isHardware bool) *Breakpoint {
	id := nextBreakpointID
	nextBreakpointID++
	return &Breakpoint{id: id, kind: kind, isHardware: isHardware}
}

// NewAddressBreakpoint returns a Breakpoint that resolves to a single fixed
// address.
func NewAddressBreakpoint(a addr.VirtAddr, isHardware bool) *Breakpoint {
	b := newBreakpoint(ByAddress, isHardware)
	b.address = a
	return b
}

// NewFunctionBreakpoint returns a Breakpoint that resolves to every
// instance (inlined or otherwise) of the named function's post-prologue
// address.
func NewFunctionBreakpoint(name string, isHardware bool) *Breakpoint {
	b := newBreakpoint(ByFunction, isHardware)
	b.function = name
	return b
}

// NewLineBreakpoint returns a Breakpoint that resolves to every line-table
// entry matching (file, line).
func NewLineBreakpoint(file string, line int, isHardware bool) *Breakpoint {
	b := newBreakpoint(ByLine, isHardware)
	b.file = file
	b.line = line
	return b
}

func (b *Breakpoint) ID() int32      { return b.id }
func (b *Breakpoint) Kind() Kind     { return b.kind }
func (b *Breakpoint) IsEnabled() bool { return b.enabled }
func (b *Breakpoint) Sites() []*Site { return b.sites }

// Resolve (re-)computes the breakpoint's addresses using r and creates (or
// reuses) a Site for each, idempotently: calling Resolve twice without the
// address set changing does not create duplicate sites.
func (b *Breakpoint) Resolve(r Resolver, proc memory) error {
	var addresses []addr.VirtAddr
	var err error

	switch b.kind {
	case ByAddress:
		addresses = []addr.VirtAddr{b.address}
	case ByFunction:
		addresses, err = r.AddressesForFunction(b.function)
	case ByLine:
		addresses, err = r.AddressesForLine(b.file, b.line)
	default:
		return ldberr.Errorf(ldberr.Format, "resolve breakpoint", "unknown breakpoint kind")
	}
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return ldberr.Errorf(ldberr.Lookup, "resolve breakpoint", "no addresses found")
	}

	for _, a := range addresses {
		if b.siteAt(a) != nil {
			continue
		}
		site := NewSite(proc, a, b.isHardware, false)
		site.SetParentID(b.id)
		b.sites = append(b.sites, site)
	}
	return nil
}

func (b *Breakpoint) siteAt(a addr.VirtAddr) *Site {
	for _, s := range b.sites {
		if s.Address() == a {
			return s
		}
	}
	return nil
}

// Enable enables every resolved site.
func (b *Breakpoint) Enable() error {
	for _, s := range b.sites {
		if err := s.Enable(); err != nil {
			return err
		}
	}
	b.enabled = true
	return nil
}

// Disable disables every resolved site.
func (b *Breakpoint) Disable() error {
	for _, s := range b.sites {
		if err := s.Disable(); err != nil {
			return err
		}
	}
	b.enabled = false
	return nil
}
