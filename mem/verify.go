// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"

	"github.com/usbarmory/boot-layout/util"
)

// output sections grouped by the layout section they are placed into
var elfSections = map[Content][]string{
	Text:        {".text", ".rodata", ".ARM.extab", ".typelink", ".itablink", ".gosymtab", ".gopclntab"},
	UnwindIndex: {".ARM.exidx", ".eh_frame_hdr", ".eh_frame"},
	Storage:     {".storage"},
	Relocate:    {".relocate", ".data", ".noptrdata"},
	Zero:        {".sram", ".bss", ".noptrbss"},
}

// SizesFromELF measures section sizes of a linked image, as input to Place
// for the next link.
func SizesFromELF(buf []byte) (s Sizes, err error) {
	f, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}
	defer f.Close()

	sum := func(c Content) (n uint64) {
		for _, name := range elfSections[c] {
			if sec := f.Section(name); sec != nil {
				n = alignUp(n, max(sec.Addralign, 1)) + sec.Size
			}
		}

		return
	}

	s.Text = sum(Text)
	s.Unwind = sum(UnwindIndex)
	s.Storage = sum(Storage)
	s.Relocate = sum(Relocate)
	s.Zero = sum(Zero)

	return
}

// VerifyELF inspects a linked image and checks that it honours the layout:
// entry and text pinned at the entry address, every output section inside
// its layout section, relocated data dual-mapped (stored at _etext, run at
// _srelocate), loadable bytes stored in flash only and boundary symbols, when
// defined, equal to the computed ones.
func VerifyELF(l *Layout, buf []byte) error {
	var errs []error

	fail := func(sentinel error, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel))
	}

	f, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return err
	}
	defer f.Close()

	b := &l.Board
	sym := &l.Symbols

	if f.Entry != sym.Entry {
		fail(ErrEntry, "image entry %#x differs from %#x", f.Entry, sym.Entry)
	}

	if sec := f.Section(".text"); sec == nil {
		fail(ErrEntry, "image has no .text section")
	} else if sec.Addr != sym.Text.Start {
		fail(ErrEntry, ".text at %#x, expected %#x", sec.Addr, sym.Text.Start)
	}

	for c, names := range elfSections {
		sec := l.Section(c)

		for _, name := range names {
			s := f.Section(name)

			if s == nil || s.Size == 0 {
				continue
			}

			if r := (Range{s.Addr, s.Addr + s.Size}); r.Start < sec.Addr.Start || r.End > sec.Addr.End {
				fail(ErrContainment, "%s %s outside %s %s", name, r, sec.Name, sec.Addr)
			}
		}
	}

	for idx, prg := range f.Progs {
		if prg.Type != elf.PT_LOAD {
			continue
		}

		stored := Range{prg.Paddr, prg.Paddr + prg.Filesz}

		if prg.Filesz > 0 && !b.ROM.Contains(stored.Start, stored.End) && !b.Prog.Contains(stored.Start, stored.End) {
			fail(ErrContainment, "LOAD segment %d stored at %s outside flash", idx, stored)
		}

		run := Range{prg.Vaddr, prg.Vaddr + prg.Memsz}

		if !sym.Relocate.Overlaps(run) || prg.Filesz == 0 {
			continue
		}

		// the segment carries relocated data: its load address must
		// track _etext as its run address tracks _srelocate
		if want := sym.Etext + (prg.Vaddr - sym.Relocate.Start); prg.Vaddr < sym.Relocate.Start || prg.Paddr != want {
			fail(ErrContainment, "LOAD segment %d runs at %#x stored at %#x, expected %#x", idx, prg.Vaddr, prg.Paddr, want)
		}
	}

	syms, err := util.Symbols(f)

	if err != nil {
		return errors.Join(append(errs, err)...)
	}

	for name, want := range sym.Map() {
		if s, ok := syms[name]; ok && s.Value != want {
			fail(ErrContainment, "symbol %s is %#x, expected %#x", name, s.Value, want)
		}
	}

	return errors.Join(errs...)
}
