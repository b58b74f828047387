// Copyright 2022 The Armored Witness OS authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"bytes"
	"debug/elf"
	"errors"
)

// ErrNoSymbol is returned when a symbol is not defined by an image.
var ErrNoSymbol = errors.New("symbol not found")

// Symbols returns the ELF symbol table indexed by name, an image without
// symbol table returns an empty map.
func Symbols(f *elf.File) (map[string]elf.Symbol, error) {
	syms, err := f.Symbols()

	if errors.Is(err, elf.ErrNoSymbols) {
		return map[string]elf.Symbol{}, nil
	}

	if err != nil {
		return nil, err
	}

	m := make(map[string]elf.Symbol, len(syms))

	for _, sym := range syms {
		m[sym.Name] = sym
	}

	return m, nil
}

// LookupSym returns the named symbol of an ELF image.
func LookupSym(buf []byte, name string) (*elf.Symbol, error) {
	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return nil, err
	}

	syms, err := Symbols(exe)

	if err != nil {
		return nil, err
	}

	sym, ok := syms[name]

	if !ok {
		return nil, ErrNoSymbol
	}

	return &sym, nil
}
