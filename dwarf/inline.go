package dwarf

// InlineStackAtAddress returns every DW_TAG_subprogram/DW_TAG_inlined_subroutine
// DIE whose range contains a, outermost first: index 0 is the physical
// function, and each following entry is one level of inlining deeper.
func (d *Dwarf) InlineStackAtAddress(a uint64) []*Die {
	cu, ok := d.CompileUnitContainingAddress(a)
	if !ok {
		return nil
	}

	root, err := cu.Root()
	if err != nil {
		return nil
	}

	var stack []*Die
	var descend func(*Die)
	descend = func(die *Die) {
		children, err := die.Children()
		if err != nil {
			return
		}
		for _, c := range children {
			if c.Tag() != DwTagSubprogram && c.Tag() != DwTagInlinedSubroutine {
				continue
			}
			if !c.ContainsAddress(a) {
				continue
			}
			stack = append(stack, c)
			descend(c)
			return
		}
	}
	descend(root)
	return stack
}

// LineEntryAtAddress resolves a runtime (file-relative) address to the
// line-table entry that covers it, searching the line table of the compile
// unit whose root DIE's range contains the address.
func (d *Dwarf) LineEntryAtAddress(a uint64) (LineEntry, bool) {
	cu, ok := d.CompileUnitContainingAddress(a)
	if !ok {
		return LineEntry{}, false
	}
	lt, err := cu.LineTable()
	if err != nil || lt == nil {
		return LineEntry{}, false
	}
	return lt.EntryAtAddress(a)
}
