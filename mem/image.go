// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"math"

	"github.com/marcinbor85/gohex"
)

// Contents represents the loadable bytes of a firmware build.
type Contents struct {
	// Text holds code and read-only data
	Text []byte
	// Unwind holds the exception unwind index table
	Unwind []byte
	// Storage holds the initial persistent storage volumes
	Storage []byte
	// Data holds the initial values of relocated data
	Data []byte
	// Apps holds application binaries, a placeholder is emitted when
	// empty.
	Apps []byte
}

// Segment represents a contiguous run of image bytes.
type Segment struct {
	Addr uint64
	Data []byte
}

// Image represents the flash contents (rom and prog) of a firmware image.
type Image struct {
	mem *gohex.Memory
}

// NewImage returns an empty image.
func NewImage() *Image {
	return &Image{
		mem: gohex.NewMemory(),
	}
}

// Add places data at addr.
func (i *Image) Add(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if addr+uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("segment %#x-%#x, %w", addr, addr+uint64(len(data)), ErrAddressSpace)
	}

	return i.mem.AddBinary(uint32(addr), data)
}

// Entry returns the image start address.
func (i *Image) Entry() (entry uint64, ok bool) {
	addr, ok := i.mem.GetStartAddress()
	return uint64(addr), ok
}

// Segments returns the image contents sorted by address.
func (i *Image) Segments() (segs []Segment) {
	for _, s := range i.mem.GetDataSegments() {
		segs = append(segs, Segment{Addr: uint64(s.Address), Data: s.Data})
	}

	return
}

// Bytes returns size bytes of the image starting at addr, gaps read as
// erased flash.
func (i *Image) Bytes(addr uint64, size uint64) []byte {
	return i.mem.ToBinary(uint32(addr), uint32(size), 0xff)
}

// WriteHex writes the image in Intel HEX format.
func (i *Image) WriteHex(w io.Writer) error {
	return i.mem.DumpIntelHex(w, 16)
}

// ParseImage reads an Intel HEX image.
func ParseImage(r io.Reader) (*Image, error) {
	i := NewImage()

	if err := i.mem.ParseIntelHex(r); err != nil {
		return nil, err
	}

	return i, nil
}

// Program writes every image segment to its flash address on the bus.
func (i *Image) Program(b *Bus) (err error) {
	for _, s := range i.Segments() {
		if err = b.Program(s.Addr, s.Data); err != nil {
			return
		}
	}

	return
}

func placeholder() []byte {
	return bytes.Repeat([]byte{AppsFill}, AppsPlaceholder)
}

// BuildImage lays out the given contents according to the layout, the
// relocated data is stored at its load address (_etext) padded to the full
// page aligned section length, so that the boot copy never reads past it.
func BuildImage(l *Layout, c Contents) (i *Image, err error) {
	sym := &l.Symbols
	i = NewImage()

	parts := []struct {
		name string
		addr uint64
		max  uint64
		data []byte
	}{
		{".text", sym.Text.Start, sym.Text.Size(), c.Text},
		{".ARM.exidx", sym.Unwind.Start, sym.Unwind.Size(), c.Unwind},
		{".storage", sym.Storage.Start, sym.Storage.Size(), c.Storage},
		{".relocate", sym.Etext, sym.Relocate.Size(), c.Data},
		{".apps", sym.Apps.Start, sym.Apps.Size(), c.Apps},
	}

	for _, p := range parts {
		data := p.data

		if uint64(len(data)) > p.max {
			return nil, fmt.Errorf("%s is %d bytes, %d available, %w", p.name, len(data), p.max, ErrContainment)
		}

		switch p.name {
		case ".relocate":
			data = make([]byte, p.max)
			copy(data, p.data)
		case ".apps":
			if len(data) == 0 {
				data = placeholder()
			}
		}

		if err = i.Add(p.addr, data); err != nil {
			return nil, fmt.Errorf("%s, %v", p.name, err)
		}
	}

	i.mem.SetStartAddress(uint32(sym.Entry))

	return
}

// ImageFromELF builds a flash image from the PT_LOAD segments of an ELF
// file, each stored at its physical (load) address.
func ImageFromELF(l *Layout, buf []byte) (i *Image, err error) {
	f, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}
	defer f.Close()

	i = NewImage()
	apps := false

	for idx, prg := range f.Progs {
		if prg.Type != elf.PT_LOAD || prg.Filesz == 0 {
			continue
		}

		b := make([]byte, prg.Filesz)

		if _, err = prg.ReadAt(b, 0); err != nil {
			return nil, fmt.Errorf("failed to read LOAD segment at idx %d, %v", idx, err)
		}

		if err = i.Add(prg.Paddr, b); err != nil {
			return nil, fmt.Errorf("LOAD segment at idx %d, %v", idx, err)
		}

		if l.Board.Prog.Contains(prg.Paddr, prg.Paddr+prg.Filesz) {
			apps = true
		}
	}

	if !apps {
		if err = i.Add(l.Symbols.Apps.Start, placeholder()); err != nil {
			return nil, err
		}
	}

	i.mem.SetStartAddress(uint32(f.Entry))

	return
}
