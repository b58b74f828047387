// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const ramFill = 0xa5

type access struct {
	Op   string
	Addr uint64
	Size int
}

// tracer records every access to the underlying memory
type tracer struct {
	Memory
	log []access
}

func (t *tracer) Read(addr uint64, buf []byte) error {
	t.log = append(t.log, access{"r", addr, len(buf)})
	return t.Memory.Read(addr, buf)
}

func (t *tracer) Write(addr uint64, buf []byte) error {
	t.log = append(t.log, access{"w", addr, len(buf)})
	return t.Memory.Write(addr, buf)
}

func TestInit(t *testing.T) {
	l := rpi3(t)
	sym := &l.Symbols
	bus := NewBus(l.Board.Regions(), ramFill)

	data := bytes.Repeat([]byte("initialized "), 100)

	if err := bus.Program(sym.Etext, data); err != nil {
		t.Fatalf("Program: %v", err)
	}

	tr := &tracer{Memory: bus}

	if err := Init(tr, sym); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// copy first, then zero, nothing outside the two ranges
	want := []access{
		{"r", 0x8a000, 0x1000},
		{"w", 0x2000, 0x1000},
		{"w", 0x3000, 0x1000},
	}

	if d := cmp.Diff(want, tr.log); len(d) != 0 {
		t.Fatalf("Got accesses with diff (-want +got):\n%s", d)
	}

	got := make([]byte, sym.Relocate.Size())

	if err := bus.Read(sym.Relocate.Start, got); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !bytes.Equal(got[:len(data)], data) {
		t.Fatalf("Got relocated data %q", got[:len(data)])
	}

	zero := make([]byte, sym.Zero.Size())

	if err := bus.Read(sym.Zero.Start, zero); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !bytes.Equal(zero, make([]byte, len(zero))) {
		t.Fatal("Got non-zero bss")
	}

	// application memory and stack are left untouched
	for _, addr := range []uint64{sym.AppMem.Start, sym.AppMem.End - 1, sym.Stack.End - 1} {
		b := make([]byte, 1)

		if err := bus.Read(addr, b); err != nil {
			t.Fatalf("Read: %v", err)
		}

		if b[0] != ramFill {
			t.Errorf("Got %#x at %#x, want %#x", b[0], addr, ramFill)
		}
	}
}

func TestInitLargeSections(t *testing.T) {
	b, _ := QEMUVirt()

	l, err := Build(b, Sizes{Text: 0x1000, Relocate: 0x2345, Zero: 0x5001})

	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sym := &l.Symbols
	bus := NewBus(l.Board.Regions(), ramFill)
	tr := &tracer{Memory: bus}

	if err := Init(tr, sym); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var copied, zeroed uint64

	for _, a := range tr.log {
		switch {
		case a.Op == "w" && sym.Relocate.Overlaps(Range{a.Addr, a.Addr + uint64(a.Size)}):
			copied += uint64(a.Size)
		case a.Op == "w" && sym.Zero.Overlaps(Range{a.Addr, a.Addr + uint64(a.Size)}):
			zeroed += uint64(a.Size)
		}
	}

	if copied != sym.Relocate.Size() || zeroed != sym.Zero.Size() {
		t.Fatalf("Got %#x bytes copied %#x zeroed, want %#x %#x", copied, zeroed, sym.Relocate.Size(), sym.Zero.Size())
	}
}

func TestInitInvertedRange(t *testing.T) {
	l := rpi3(t)
	sym := l.Symbols
	sym.Zero = Range{0x4000, 0x3000}

	bus := NewBus(l.Board.Regions(), ramFill)

	if err := ZeroBSS(bus, &sym); !errors.Is(err, ErrInverted) {
		t.Fatalf("Got error %v, want %v", err, ErrInverted)
	}
}

func TestInitEmptySections(t *testing.T) {
	l, err := Build(rpi3Board(), Sizes{})

	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tr := &tracer{Memory: NewBus(l.Board.Regions(), ramFill)}

	if err := Init(tr, &l.Symbols); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if len(tr.log) != 0 {
		t.Fatalf("Got unexpected accesses %v", tr.log)
	}
}

func rpi3Board() Board {
	b, _ := RPi3()
	return b
}
