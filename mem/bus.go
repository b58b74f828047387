// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnmapped = errors.New("unmapped address")
	ErrReadOnly = errors.New("write to read-only region")
)

type bank struct {
	Region
	data []byte
}

// Bus represents an emulated physical address space made of the board
// regions, each backed by host memory.
type Bus struct {
	sync.RWMutex
	banks []*bank
}

// NewBus allocates backing memory for the given regions, ROM and program
// flash start erased (0xff), RAM starts with the given fill pattern to make
// missing initialization visible.
func NewBus(regions []Region, ramFill byte) *Bus {
	b := &Bus{}

	for _, r := range regions {
		data := make([]byte, r.Length)
		fill := byte(0xff)

		if r.Class == RAM {
			fill = ramFill
		}

		for i := range data {
			data[i] = fill
		}

		b.banks = append(b.banks, &bank{Region: r, data: data})
	}

	return b
}

func (b *Bus) lookup(addr uint64, size int) (*bank, uint64, error) {
	end := addr + uint64(size)

	for _, bk := range b.banks {
		if bk.Contains(addr, end) {
			return bk, addr - bk.Origin, nil
		}
	}

	return nil, 0, fmt.Errorf("%#x-%#x, %w", addr, end, ErrUnmapped)
}

// Read implements Memory.
func (b *Bus) Read(addr uint64, buf []byte) error {
	b.RLock()
	defer b.RUnlock()

	bk, off, err := b.lookup(addr, len(buf))

	if err != nil {
		return err
	}

	if bk.Perm&Read == 0 {
		return fmt.Errorf("%s not readable, %w", bk.Name, ErrUnmapped)
	}

	copy(buf, bk.data[off:])

	return nil
}

// Write implements Memory, writes to regions without write permission fail.
func (b *Bus) Write(addr uint64, buf []byte) error {
	b.Lock()
	defer b.Unlock()

	bk, off, err := b.lookup(addr, len(buf))

	if err != nil {
		return err
	}

	if bk.Perm&Write == 0 {
		return fmt.Errorf("%s at %#x, %w", bk.Name, addr, ErrReadOnly)
	}

	copy(bk.data[off:], buf)

	return nil
}

// Program stores buf at addr regardless of region permissions, as a flash
// programmer would.
func (b *Bus) Program(addr uint64, buf []byte) error {
	b.Lock()
	defer b.Unlock()

	bk, off, err := b.lookup(addr, len(buf))

	if err != nil {
		return err
	}

	copy(bk.data[off:], buf)

	return nil
}
