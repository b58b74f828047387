// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Manifest represents the layout description handed to external loaders
// (bootloader, management controller), encoded in protobuf wire format as:
//
//	message Manifest {
//	  string board = 1;
//	  uint64 page_size = 2;
//	  uint64 entry = 3;
//	  uint64 stack_top = 4;
//	  repeated Symbol symbols = 5;
//	}
//
//	message Symbol {
//	  string name = 1;
//	  uint64 value = 2;
//	}
type Manifest struct {
	Board    string
	PageSize uint64
	Entry    uint64
	StackTop uint64
	Symbols  map[string]uint64
}

const (
	manifestBoard    protowire.Number = 1
	manifestPageSize protowire.Number = 2
	manifestEntry    protowire.Number = 3
	manifestStackTop protowire.Number = 4
	manifestSymbols  protowire.Number = 5

	symbolName  protowire.Number = 1
	symbolValue protowire.Number = 2
)

// NewManifest returns the manifest of a layout.
func NewManifest(l *Layout) *Manifest {
	return &Manifest{
		Board:    l.Board.Name,
		PageSize: l.Board.PageSize,
		Entry:    l.Symbols.Entry,
		StackTop: l.Symbols.StackTop,
		Symbols:  l.Symbols.Map(),
	}
}

// Marshal encodes the manifest, symbols are emitted sorted by address.
func (m *Manifest) Marshal() (b []byte) {
	b = protowire.AppendTag(b, manifestBoard, protowire.BytesType)
	b = protowire.AppendString(b, m.Board)
	b = protowire.AppendTag(b, manifestPageSize, protowire.VarintType)
	b = protowire.AppendVarint(b, m.PageSize)
	b = protowire.AppendTag(b, manifestEntry, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Entry)
	b = protowire.AppendTag(b, manifestStackTop, protowire.VarintType)
	b = protowire.AppendVarint(b, m.StackTop)

	for _, name := range sortedByValue(m.Symbols) {
		var sym []byte

		sym = protowire.AppendTag(sym, symbolName, protowire.BytesType)
		sym = protowire.AppendString(sym, name)
		sym = protowire.AppendTag(sym, symbolValue, protowire.VarintType)
		sym = protowire.AppendVarint(sym, m.Symbols[name])

		b = protowire.AppendTag(b, manifestSymbols, protowire.BytesType)
		b = protowire.AppendBytes(b, sym)
	}

	return
}

// UnmarshalManifest decodes a manifest, unknown fields are skipped.
func UnmarshalManifest(b []byte) (*Manifest, error) {
	m := &Manifest{
		Symbols: make(map[string]uint64),
	}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)

		if n < 0 {
			return nil, protowire.ParseError(n)
		}

		b = b[n:]

		switch {
		case num == manifestBoard && typ == protowire.BytesType:
			m.Board, n = protowire.ConsumeString(b)
		case num == manifestPageSize && typ == protowire.VarintType:
			m.PageSize, n = protowire.ConsumeVarint(b)
		case num == manifestEntry && typ == protowire.VarintType:
			m.Entry, n = protowire.ConsumeVarint(b)
		case num == manifestStackTop && typ == protowire.VarintType:
			m.StackTop, n = protowire.ConsumeVarint(b)
		case num == manifestSymbols && typ == protowire.BytesType:
			var sym []byte

			if sym, n = protowire.ConsumeBytes(b); n >= 0 {
				if err := m.unmarshalSymbol(sym); err != nil {
					return nil, err
				}
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}

		if n < 0 {
			return nil, protowire.ParseError(n)
		}

		b = b[n:]
	}

	return m, nil
}

func (m *Manifest) unmarshalSymbol(b []byte) error {
	var name string
	var value uint64

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)

		if n < 0 {
			return protowire.ParseError(n)
		}

		b = b[n:]

		switch {
		case num == symbolName && typ == protowire.BytesType:
			name, n = protowire.ConsumeString(b)
		case num == symbolValue && typ == protowire.VarintType:
			value, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}

		if n < 0 {
			return protowire.ParseError(n)
		}

		b = b[n:]
	}

	if name == "" {
		return errors.New("manifest symbol without name")
	}

	if _, ok := m.Symbols[name]; ok {
		return fmt.Errorf("duplicate manifest symbol %s", name)
	}

	m.Symbols[name] = value

	return nil
}
