// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
	"strings"
)

// Class represents a physical memory class.
type Class int

const (
	// ROM holds code and read-only data, it is not writable by normal
	// kernel execution.
	ROM Class = iota
	// Program is reserved flash for application binaries, the kernel
	// never executes it directly.
	Program
	// RAM holds the stack, mutable globals and application memory.
	RAM
)

func (c Class) String() string {
	switch c {
	case ROM:
		return "ROM"
	case Program:
		return "PROG"
	case RAM:
		return "RAM"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Perm represents a region permission set.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

// String returns the permission set in linker script notation (e.g. "rx").
func (p Perm) String() string {
	var b strings.Builder

	if p&Read != 0 {
		b.WriteByte('r')
	}

	if p&Write != 0 {
		b.WriteByte('w')
	}

	if p&Exec != 0 {
		b.WriteByte('x')
	}

	return b.String()
}

// Region represents a physical memory region.
type Region struct {
	// Name is the region name (e.g. "rom")
	Name string
	// Origin is the region start address
	Origin uint64
	// Length is the region size in bytes
	Length uint64
	// Perm is the region permission set
	Perm Perm
	// Class is the region memory class
	Class Class
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Origin + r.Length
}

// Contains returns whether the [start, end) range lies entirely within the
// region.
func (r Region) Contains(start uint64, end uint64) bool {
	return start >= r.Origin && end >= start && end <= r.End()
}

// Overlaps returns whether two regions share at least one address.
func (r Region) Overlaps(o Region) bool {
	return r.Origin < o.End() && o.Origin < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("%-5s %-4s %-3s %#010x-%#010x (%d bytes)", r.Name, r.Class, r.Perm, r.Origin, r.End(), r.Length)
}
