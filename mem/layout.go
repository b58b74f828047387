// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Layout represents the placement of all sections for one board variant.
type Layout struct {
	Board Board
	Sizes Sizes

	// Sections holds the placed sections in placement order
	Sections []*Section
	// Symbols holds the computed boundary symbols
	Symbols Symbols
}

// Place computes section placement and boundary symbols for the given board
// and section sizes, in the fixed order:
//
//	ram:  stack, relocate (run), zero, application memory
//	rom:  text (pinned at the entry address), unwind index, storage,
//	      relocate (load)
//	prog: application binaries
//
// Place does not check the result, see Validate.
func Place(b Board, s Sizes) (l *Layout, err error) {
	page := b.PageSize

	if !isPow2(page) {
		return nil, fmt.Errorf("invalid page size %#x, %w", page, ErrAlignment)
	}

	l = &Layout{
		Board: b,
		Sizes: s,
	}

	sym := &l.Symbols

	// The stack sits at the lowest RAM address so that an overflow faults
	// against whatever lies below RAM instead of corrupting static data.
	sym.Stack.Start = b.RAM.Origin
	sym.Stack.End = b.RAM.Origin + alignUp(b.StackSize, StackAlign)
	sym.StackTop = sym.Stack.End

	sym.Entry = b.Entry
	sym.Text.Start = b.Entry
	sym.Text.End = b.Entry + s.Text

	sym.Unwind.Start = alignUp(sym.Text.End, UnwindAlign)
	sym.Unwind.End = sym.Unwind.Start + s.Unwind

	sym.Storage.Start = alignUp(sym.Unwind.End, page)
	sym.Storage.End = alignUp(sym.Storage.Start+s.Storage, page)

	sym.Apps.Start = b.Prog.Origin
	sym.Apps.End = sym.Apps.Start + b.Prog.Length

	sym.Relocate.Start = alignUp(sym.Stack.End, page)
	sym.Relocate.End = alignUp(sym.Relocate.Start+s.Relocate, page)
	sym.Etext = alignUp(sym.Storage.End, WordAlign)

	sym.Zero.Start = sym.Relocate.End
	sym.Zero.End = alignUp(sym.Zero.Start+s.Zero, page)

	sym.AppMem.Start = alignUp(sym.Zero.End, WordAlign)
	sym.AppMem.End = b.RAM.Origin + b.RAM.Length

	l.Sections = []*Section{
		{Name: ".stack", Content: Stack, Region: b.RAM.Name, Align: StackAlign, Addr: sym.Stack},
		{Name: ".text", Content: Text, Region: b.ROM.Name, Align: UnwindAlign, Addr: sym.Text},
		{Name: ".ARM.exidx", Content: UnwindIndex, Region: b.ROM.Name, Align: UnwindAlign, Addr: sym.Unwind},
		{Name: ".storage", Content: Storage, Region: b.ROM.Name, Align: page, Addr: sym.Storage},
		{Name: ".apps", Content: Apps, Region: b.Prog.Name, Align: 1, Addr: sym.Apps},
		{Name: ".relocate", Content: Relocate, Region: b.RAM.Name, Load: b.ROM.Name, Align: page, Addr: sym.Relocate},
		{Name: ".sram", Content: Zero, Region: b.RAM.Name, Align: page, Addr: sym.Zero},
		{Name: ".app_memory", Content: AppMemory, Region: b.RAM.Name, Align: WordAlign, Addr: sym.AppMem},
	}

	for _, sec := range l.Sections {
		sec.LoadAddr = sec.Addr.Start

		if sec.Content == Relocate {
			sec.LoadAddr = sym.Etext
		}
	}

	return
}

// Build places and validates a layout.
func Build(b Board, s Sizes) (l *Layout, err error) {
	if l, err = Place(b, s); err != nil {
		return
	}

	if err = Validate(l); err != nil {
		return nil, err
	}

	return
}

// Section returns the first section with the given content class.
func (l *Layout) Section(c Content) *Section {
	for _, sec := range l.Sections {
		if sec.Content == c {
			return sec
		}
	}

	return nil
}

// Print writes a human readable description of the layout.
func (l *Layout) Print(w io.Writer) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(t, "board:\t%s\tpage:%#x\tentry:%#x\tsp:%#x\n", l.Board.Name, l.Board.PageSize, l.Symbols.Entry, l.Symbols.StackTop)
	fmt.Fprintf(t, "\n")

	for _, r := range l.Board.Regions() {
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%d bytes\n", r.Name, r.Class, r.Perm, Range{r.Origin, r.End()}, r.Length)
	}

	fmt.Fprintf(t, "\n")

	for _, sec := range l.Sections {
		load := ""

		if sec.DualMapped() {
			load = fmt.Sprintf("AT %s %#010x", sec.Load, sec.LoadAddr)
		}

		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%d bytes\t%s\n", sec.Name, sec.Content, sec.Region, sec.Addr, sec.Addr.Size(), load)
	}

	t.Flush()
}

// PrintSymbols writes the boundary symbol table sorted by address.
func (l *Layout) PrintSymbols(w io.Writer) {
	m := l.Symbols.Map()

	for _, name := range l.Symbols.Names() {
		fmt.Fprintf(w, "%#010x %s\n", m[name], name)
	}
}
