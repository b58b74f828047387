// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"fmt"
)

var (
	ErrRegion       = errors.New("invalid region")
	ErrAddressSpace = errors.New("outside addressable space")
	ErrPermission   = errors.New("invalid region permissions")
	ErrOverlap      = errors.New("overlapping placement")
	ErrContainment  = errors.New("outside declared region")
	ErrInverted     = errors.New("end before start")
	ErrAlignment    = errors.New("misaligned boundary")
	ErrStack        = errors.New("invalid stack placement")
	ErrEntry        = errors.New("invalid entry placement")
	ErrUnwind       = errors.New("unwind index not contiguous")
	ErrApps         = errors.New("invalid application binary area")
	ErrAppMemory    = errors.New("invalid application memory")
)

type occupancy struct {
	name   string
	region string
	addr   Range
}

// Validate checks a placed layout against every static rule the boot
// code relies on without re-verifying it. All violations are returned
// joined, each wraps one of the Err* sentinels.
func Validate(l *Layout) error {
	var errs []error

	fail := func(sentinel error, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel))
	}

	b := &l.Board
	sym := &l.Symbols
	regions := []Region{b.ROM, b.Prog, b.RAM}
	limit := b.AddressLimit()

	if !isPow2(b.PageSize) {
		fail(ErrAlignment, "page size %#x is not a power of two", b.PageSize)
	}

	for i, r := range regions {
		switch {
		case r.Name == "":
			fail(ErrRegion, "region %d has no name", i)
		case r.Length == 0:
			fail(ErrRegion, "region %s is empty", r.Name)
		case r.End() < r.Origin:
			fail(ErrAddressSpace, "region %s wraps around", r.Name)
		case limit != 0 && r.End() > limit:
			fail(ErrAddressSpace, "region %s ends at %#x past %d-bit limit", r.Name, r.End(), b.AddressBits)
		}

		for _, o := range regions[i+1:] {
			if r.Name == o.Name {
				fail(ErrRegion, "duplicate region name %s", r.Name)
			}

			if r.Length != 0 && o.Length != 0 && r.Overlaps(o) {
				fail(ErrOverlap, "region %s %s overlaps %s %s", r.Name, Range{r.Origin, r.End()}, o.Name, Range{o.Origin, o.End()})
			}
		}
	}

	if b.ROM.Perm&Write != 0 || b.ROM.Perm&(Read|Exec) != Read|Exec {
		fail(ErrPermission, "rom must be r-x, got %s", b.ROM.Perm)
	}

	if b.Prog.Perm&Write != 0 || b.Prog.Perm&Read == 0 {
		fail(ErrPermission, "prog must be r-x, got %s", b.Prog.Perm)
	}

	if b.RAM.Perm&(Read|Write) != Read|Write {
		fail(ErrPermission, "ram must be rw, got %s", b.RAM.Perm)
	}

	for name, r := range sym.Pairs() {
		if !r.Valid() {
			fail(ErrInverted, "%s range %s", name, r)
		}
	}

	var occ []occupancy

	for _, sec := range l.Sections {
		run, ok := b.Region(sec.Region)

		if !ok {
			fail(ErrContainment, "section %s run region %s undefined", sec.Name, sec.Region)
			continue
		}

		if !run.Contains(sec.Addr.Start, sec.Addr.End) {
			fail(ErrContainment, "section %s %s outside %s", sec.Name, sec.Addr, run.Name)
		}

		if !aligned(sec.Addr.Start, sec.Align) {
			fail(ErrAlignment, "section %s start %#x not aligned to %#x", sec.Name, sec.Addr.Start, sec.Align)
		}

		if sec.Content.PageAligned() && !aligned(sec.Addr.End, b.PageSize) {
			fail(ErrAlignment, "section %s end %#x not page aligned", sec.Name, sec.Addr.End)
		}

		occ = append(occ, occupancy{sec.Name, sec.Region, sec.Addr})

		if !sec.DualMapped() {
			continue
		}

		load, ok := b.Region(sec.Load)

		if !ok {
			fail(ErrContainment, "section %s load region %s undefined", sec.Name, sec.Load)
			continue
		}

		if !load.Contains(sec.LoadAddr, sec.LoadRange().End) {
			fail(ErrContainment, "section %s load image %s outside %s", sec.Name, sec.LoadRange(), load.Name)
		}

		occ = append(occ, occupancy{sec.Name + " (load)", sec.Load, sec.LoadRange()})
	}

	for i, a := range occ {
		for _, o := range occ[i+1:] {
			if a.region == o.region && a.addr.Overlaps(o.addr) {
				fail(ErrOverlap, "section %s %s overlaps %s %s", a.name, a.addr, o.name, o.addr)
			}
		}
	}

	if !aligned(sym.Etext, WordAlign) {
		fail(ErrAlignment, "%s %#x not aligned to %d", SymEtext, sym.Etext, WordAlign)
	}

	if sym.Stack.Size() == 0 {
		fail(ErrStack, "no stack reserved")
	}

	if sym.Stack.Start != b.RAM.Origin {
		fail(ErrStack, "stack %s not at lowest ram address %#x", sym.Stack, b.RAM.Origin)
	}

	if sym.StackTop != sym.Stack.End {
		fail(ErrStack, "stack pointer %#x does not match stack top %#x", sym.StackTop, sym.Stack.End)
	}

	if !aligned(sym.StackTop, StackAlign) {
		fail(ErrAlignment, "stack pointer %#x not aligned to %d", sym.StackTop, StackAlign)
	}

	if sym.Entry != b.Entry || sym.Text.Start != b.Entry {
		fail(ErrEntry, "text %s not pinned at entry %#x", sym.Text, b.Entry)
	}

	if !b.ROM.Contains(b.Entry, b.Entry) || b.Entry == b.ROM.End() {
		fail(ErrEntry, "entry %#x outside rom", b.Entry)
	}

	if sym.Unwind.Start != alignUp(sym.Text.End, UnwindAlign) {
		fail(ErrUnwind, "unwind index %s does not follow text %s", sym.Unwind, sym.Text)
	}

	if sym.Apps.Size() != b.Prog.Length {
		fail(ErrApps, "apps size %#x differs from prog length %#x", sym.Apps.Size(), b.Prog.Length)
	}

	if b.Prog.Length < AppsPlaceholder {
		fail(ErrApps, "prog length %d below %d placeholder bytes", b.Prog.Length, AppsPlaceholder)
	}

	if sym.AppMem.End != b.RAM.End() {
		fail(ErrAppMemory, "%s %#x differs from ram end %#x", SymEappmem, sym.AppMem.End, b.RAM.End())
	}

	return errors.Join(errs...)
}
