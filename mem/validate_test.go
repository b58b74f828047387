// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	for _, test := range []struct {
		desc   string
		board  func(b *Board, s *Sizes)
		symbol func(sym *Symbols)
		want   []error
	}{
		{
			desc: "valid",
		}, {
			desc: "overlapping regions",
			board: func(b *Board, s *Sizes) {
				b.Prog.Origin = 0x100000
			},
			want: []error{ErrOverlap},
		}, {
			desc: "empty prog",
			board: func(b *Board, s *Sizes) {
				b.Prog.Length = 0
			},
			want: []error{ErrRegion, ErrApps},
		}, {
			desc: "writable rom",
			board: func(b *Board, s *Sizes) {
				b.ROM.Perm |= Write
			},
			want: []error{ErrPermission},
		}, {
			desc: "read-only ram",
			board: func(b *Board, s *Sizes) {
				b.RAM.Perm = Read
			},
			want: []error{ErrPermission},
		}, {
			desc: "text exceeds rom",
			board: func(b *Board, s *Sizes) {
				s.Text = 0x200000
			},
			want: []error{ErrContainment},
		}, {
			desc: "data exceeds ram",
			board: func(b *Board, s *Sizes) {
				s.Zero = 0x100000
			},
			want: []error{ErrContainment},
		}, {
			desc: "no stack",
			board: func(b *Board, s *Sizes) {
				b.StackSize = 0
			},
			want: []error{ErrStack},
		}, {
			desc: "entry outside rom",
			board: func(b *Board, s *Sizes) {
				b.Entry = 0x200000
			},
			want: []error{ErrEntry, ErrContainment},
		}, {
			desc: "past address space",
			board: func(b *Board, s *Sizes) {
				b.RAM.Origin = 0xffff0000
				b.RAM.Length = 0x20000
			},
			want: []error{ErrAddressSpace},
		}, {
			desc: "short prog",
			board: func(b *Board, s *Sizes) {
				b.Prog.Length = 2
			},
			want: []error{ErrApps},
		}, {
			desc: "stack pointer mismatch",
			symbol: func(sym *Symbols) {
				sym.StackTop = 0x1ff0
			},
			want: []error{ErrStack},
		}, {
			desc: "stack not at ram origin",
			symbol: func(sym *Symbols) {
				sym.Stack.Start = 0x10
			},
			want: []error{ErrStack},
		}, {
			desc: "apps size",
			symbol: func(sym *Symbols) {
				sym.Apps.End = sym.Apps.Start + 8
			},
			want: []error{ErrApps},
		}, {
			desc: "application memory end",
			symbol: func(sym *Symbols) {
				sym.AppMem.End = 0x7f000
			},
			want: []error{ErrAppMemory},
		}, {
			desc: "inverted zero range",
			symbol: func(sym *Symbols) {
				sym.Zero = Range{0x4000, 0x3000}
			},
			want: []error{ErrInverted},
		}, {
			desc: "unwind gap",
			symbol: func(sym *Symbols) {
				sym.Unwind.Start += 0x10
			},
			want: []error{ErrUnwind},
		}, {
			desc: "misaligned load address",
			symbol: func(sym *Symbols) {
				sym.Etext += 4
			},
			want: []error{ErrAlignment},
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			b, s := RPi3()

			if test.board != nil {
				test.board(&b, &s)
			}

			l, err := Place(b, s)

			if err != nil {
				t.Fatalf("Place: %v", err)
			}

			if test.symbol != nil {
				test.symbol(&l.Symbols)
			}

			err = Validate(l)

			if len(test.want) == 0 {
				if err != nil {
					t.Fatalf("Got unexpected error %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("Got no error, but wanted error")
			}

			for _, want := range test.want {
				if !errors.Is(err, want) {
					t.Errorf("Got error %q, want %q", err, want)
				}
			}
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	b, s := RPi3()
	b.StackSize = 0
	b.ROM.Perm |= Write

	l, err := Place(b, s)

	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	l.Symbols.AppMem.End = 0

	err = Validate(l)

	for _, want := range []error{ErrStack, ErrPermission, ErrAppMemory} {
		if !errors.Is(err, want) {
			t.Errorf("Got error %q, want %q", err, want)
		}
	}
}
