// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
	"sort"
)

// Range represents a {start, end} boundary symbol pair.
type Range struct {
	Start uint64
	End   uint64
}

// Size returns the number of bytes within the range, an inverted range has
// no size.
func (r Range) Size() uint64 {
	if r.End < r.Start {
		return 0
	}

	return r.End - r.Start
}

// Valid returns whether end >= start.
func (r Range) Valid() bool {
	return r.End >= r.Start
}

// Overlaps returns whether two non-empty ranges share at least one address.
func (r Range) Overlaps(o Range) bool {
	if r.Size() == 0 || o.Size() == 0 {
		return false
	}

	return r.Start < o.End && o.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%#010x-%#010x", r.Start, r.End)
}

// Symbols represents the boundary symbols computed for a layout, they are
// immutable for the life of one firmware image.
type Symbols struct {
	// Entry is the first instruction executed by the boot core
	Entry uint64
	// StackTop is the initial stack pointer value (_estack)
	StackTop uint64

	Stack    Range // _sstack, _estack
	Text     Range // _stext, end of code and rodata
	Unwind   Range // _sunwind, _eunwind
	Storage  Range // _sstorage, _estorage
	Apps     Range // _sapps, _eapps
	Relocate Range // _srelocate, _erelocate
	Zero     Range // _szero, _ezero
	AppMem   Range // _sappmem, _eappmem

	// Etext is the load address of the relocated data in ROM
	Etext uint64
}

// Map returns all symbols indexed by their linker name.
func (s *Symbols) Map() map[string]uint64 {
	return map[string]uint64{
		SymStext:     s.Text.Start,
		SymEtext:     s.Etext,
		SymSstack:    s.Stack.Start,
		SymEstack:    s.Stack.End,
		SymSunwind:   s.Unwind.Start,
		SymEunwind:   s.Unwind.End,
		SymSstorage:  s.Storage.Start,
		SymEstorage:  s.Storage.End,
		SymSapps:     s.Apps.Start,
		SymEapps:     s.Apps.End,
		SymSrelocate: s.Relocate.Start,
		SymErelocate: s.Relocate.End,
		SymSzero:     s.Zero.Start,
		SymEzero:     s.Zero.End,
		SymSappmem:   s.AppMem.Start,
		SymEappmem:   s.AppMem.End,
	}
}

// Names returns all symbol names sorted by address, then by name.
func (s *Symbols) Names() []string {
	return sortedByValue(s.Map())
}

func sortedByValue(m map[string]uint64) []string {
	names := make([]string, 0, len(m))

	for name := range m {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] < m[names[j]]
		}

		return names[i] < names[j]
	})

	return names
}

// Pairs returns the boundary symbol pairs indexed by their start symbol.
func (s *Symbols) Pairs() map[string]Range {
	return map[string]Range{
		SymSstack:    s.Stack,
		SymStext:     s.Text,
		SymSunwind:   s.Unwind,
		SymSstorage:  s.Storage,
		SymSapps:     s.Apps,
		SymSrelocate: s.Relocate,
		SymSzero:     s.Zero,
		SymSappmem:   s.AppMem,
	}
}
