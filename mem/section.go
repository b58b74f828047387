// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
)

// Content represents the class of data held by a section.
type Content int

const (
	Stack Content = iota
	Text
	UnwindIndex
	Storage
	Apps
	Relocate
	Zero
	AppMemory
)

func (c Content) String() string {
	switch c {
	case Stack:
		return "stack"
	case Text:
		return "text"
	case UnwindIndex:
		return "unwind"
	case Storage:
		return "storage"
	case Apps:
		return "apps"
	case Relocate:
		return "relocate"
	case Zero:
		return "zero"
	case AppMemory:
		return "appmem"
	default:
		return fmt.Sprintf("Content(%d)", int(c))
	}
}

// NoLoad returns whether the section is a pure address reservation with no
// bytes stored in the image.
func (c Content) NoLoad() bool {
	return c == Stack || c == Zero || c == AppMemory
}

// PageAligned returns whether the section must be page aligned at both
// boundaries.
func (c Content) PageAligned() bool {
	return c == Storage || c == Relocate || c == Zero
}

// Section represents a placed output section.
type Section struct {
	// Name is the output section name (e.g. ".relocate")
	Name string
	// Content is the section content class
	Content Content
	// Region is the run region name
	Region string
	// Load is the load region name, it differs from Region only for
	// dual-mapped sections.
	Load string
	// Align is the required alignment of the section start
	Align uint64

	// Addr is the run address range
	Addr Range
	// LoadAddr is the load address of the section bytes, it equals
	// Addr.Start unless the section is dual-mapped.
	LoadAddr uint64
}

// DualMapped returns whether the section is stored in one region and
// executed (or referenced) from another.
func (s *Section) DualMapped() bool {
	return s.Load != "" && s.Load != s.Region
}

// LoadRange returns the address range occupied by the section bytes in its
// load region.
func (s *Section) LoadRange() Range {
	return Range{Start: s.LoadAddr, End: s.LoadAddr + s.Addr.Size()}
}

func (s *Section) String() string {
	str := fmt.Sprintf("%-10s %-8s %-5s %s", s.Name, s.Content, s.Region, s.Addr)

	if s.DualMapped() {
		str += fmt.Sprintf(" AT %s:%#010x", s.Load, s.LoadAddr)
	}

	return str
}
