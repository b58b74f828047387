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

func TestBuildImage(t *testing.T) {
	l := rpi3(t)
	sym := &l.Symbols

	img, err := BuildImage(l, Contents{
		Text:    []byte{0x1f, 0x20, 0x03, 0xd5},
		Unwind:  []byte{1, 2, 3, 4},
		Storage: []byte("volume"),
		Data:    []byte{0xaa, 0xbb, 0xcc},
	})

	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	if entry, ok := img.Entry(); !ok || entry != sym.Entry {
		t.Fatalf("Got entry %#x (%v), want %#x", entry, ok, sym.Entry)
	}

	data := img.Bytes(sym.Etext, sym.Relocate.Size())
	want := make([]byte, sym.Relocate.Size())
	copy(want, []byte{0xaa, 0xbb, 0xcc})

	if !bytes.Equal(data, want) {
		t.Fatalf("Got relocation load image %x...", data[:8])
	}

	if d := cmp.Diff([]byte{0xff, 0xff, 0xff, 0xff}, img.Bytes(sym.Apps.Start, AppsPlaceholder)); len(d) != 0 {
		t.Fatalf("Got apps placeholder with diff (-want +got):\n%s", d)
	}

	if d := cmp.Diff([]byte("volume"), img.Bytes(sym.Storage.Start, 6)); len(d) != 0 {
		t.Fatalf("Got storage with diff (-want +got):\n%s", d)
	}

	var buf bytes.Buffer

	if err := img.WriteHex(&buf); err != nil {
		t.Fatalf("WriteHex: %v", err)
	}

	parsed, err := ParseImage(&buf)

	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}

	if d := cmp.Diff(img.Segments(), parsed.Segments()); len(d) != 0 {
		t.Fatalf("Got parsed segments with diff (-want +got):\n%s", d)
	}

	bus := NewBus(l.Board.Regions(), 0)

	if err := parsed.Program(bus); err != nil {
		t.Fatalf("Program: %v", err)
	}

	if err := Init(bus, sym); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got := make([]byte, 3)

	if err := bus.Read(sym.Relocate.Start, got); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if d := cmp.Diff([]byte{0xaa, 0xbb, 0xcc}, got); len(d) != 0 {
		t.Fatalf("Got relocated data with diff (-want +got):\n%s", d)
	}
}

func TestBuildImageApps(t *testing.T) {
	l := rpi3(t)

	img, err := BuildImage(l, Contents{Apps: []byte("tbf header")})

	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}

	if got := string(img.Bytes(l.Symbols.Apps.Start, 10)); got != "tbf header" {
		t.Fatalf("Got apps %q", got)
	}
}

func TestBuildImageOverflow(t *testing.T) {
	l := rpi3(t)

	for _, c := range []Contents{
		{Text: make([]byte, l.Symbols.Text.Size()+1)},
		{Data: make([]byte, l.Symbols.Relocate.Size()+1)},
		{Apps: make([]byte, l.Board.Prog.Length+1)},
	} {
		if _, err := BuildImage(l, c); !errors.Is(err, ErrContainment) {
			t.Errorf("Got error %v, want %v", err, ErrContainment)
		}
	}
}
