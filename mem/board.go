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

// Board represents the per-board-variant layout configuration, it is the
// only external input to the memory layout.
type Board struct {
	// Name is the board variant name
	Name string

	// ROM holds code, rodata, unwind index and storage volumes
	ROM Region
	// Prog is the application binary flash
	Prog Region
	// RAM holds stack, relocated data, zero data and application memory
	RAM Region

	// PageSize is the flash erase/program granularity
	PageSize uint64
	// StackSize is the kernel stack reservation
	StackSize uint64
	// Entry is the fixed address the external loader jumps to
	Entry uint64
	// AddressBits is the width of the physical address space
	AddressBits int
}

// Sizes represents the size of each loadable or reserved section, as
// produced by the build.
type Sizes struct {
	Text     uint64
	Unwind   uint64
	Storage  uint64
	Relocate uint64
	Zero     uint64
}

// NewBoard returns a board with the standard rom (r-x), prog (r-x) and ram
// (rwx) regions.
func NewBoard(name string, rom [2]uint64, prog [2]uint64, ram [2]uint64) Board {
	return Board{
		Name:        name,
		ROM:         Region{Name: "rom", Origin: rom[0], Length: rom[1], Perm: Read | Exec, Class: ROM},
		Prog:        Region{Name: "prog", Origin: prog[0], Length: prog[1], Perm: Read | Exec, Class: Program},
		RAM:         Region{Name: "ram", Origin: ram[0], Length: ram[1], Perm: Read | Write | Exec, Class: RAM},
		PageSize:    PageSize,
		Entry:       rom[0],
		AddressBits: 32,
	}
}

// Regions returns the board regions in address order.
func (b *Board) Regions() []Region {
	r := []Region{b.ROM, b.Prog, b.RAM}

	sort.SliceStable(r, func(i, j int) bool {
		return r[i].Origin < r[j].Origin
	})

	return r
}

// Region returns the named board region.
func (b *Board) Region(name string) (r Region, ok bool) {
	for _, r = range []Region{b.ROM, b.Prog, b.RAM} {
		if r.Name == name {
			return r, true
		}
	}

	return Region{}, false
}

// AddressLimit returns the first address past the addressable space.
func (b *Board) AddressLimit() uint64 {
	if b.AddressBits <= 0 || b.AddressBits >= 64 {
		return 0
	}

	return 1 << b.AddressBits
}

// Boards holds the built-in board variants.
var Boards = map[string]func() (Board, Sizes){
	"rpi3":      RPi3,
	"qemu-virt": QEMUVirt,
}

// Lookup returns a built-in board variant.
func Lookup(name string) (Board, Sizes, error) {
	fn, ok := Boards[name]

	if !ok {
		return Board{}, Sizes{}, fmt.Errorf("unknown board %q", name)
	}

	b, s := fn()

	return b, s, nil
}

// RPi3 returns the Raspberry Pi 3B layout, the VideoCore firmware loads the
// kernel image at 0x80000 and jumps to it.
func RPi3() (Board, Sizes) {
	b := NewBoard("rpi3",
		[2]uint64{0x00080000, 0x00100000}, // rom  1MB
		[2]uint64{0x00180000, 0x00000010}, // prog 16B
		[2]uint64{0x00000000, 0x00080000}, // ram  512KB
	)

	b.StackSize = 0x2000

	s := Sizes{
		Text:     0x8000,
		Unwind:   0x100,
		Storage:  0x1000,
		Relocate: 0x100,
		Zero:     0x1000,
	}

	return b, s
}

// QEMUVirt returns a layout for the QEMU AArch64 virt machine, where pflash
// banks are mapped at 0x0 and 0x4000000 and RAM starts at 0x40000000.
func QEMUVirt() (Board, Sizes) {
	b := NewBoard("qemu-virt",
		[2]uint64{0x00000000, 0x04000000}, // rom  64MB
		[2]uint64{0x04000000, 0x00100000}, // prog 1MB
		[2]uint64{0x40000000, 0x08000000}, // ram  128MB
	)

	b.StackSize = 0x10000

	s := Sizes{
		Text:     0x40000,
		Unwind:   0x1000,
		Storage:  0x4000,
		Relocate: 0x2000,
		Zero:     0x8000,
	}

	return b, s
}
