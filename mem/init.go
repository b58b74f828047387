// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
)

// Memory represents the physical address space as seen by the boot core.
type Memory interface {
	// Read fills buf with the bytes at addr.
	Read(addr uint64, buf []byte) error
	// Write stores buf at addr.
	Write(addr uint64, buf []byte) error
}

// copyChunk bounds the bounce buffer used by the copy and zero loops.
const copyChunk = PageSize

// CopyRelocated copies exactly (_erelocate - _srelocate) bytes from the
// relocated data load address (_etext) to its run address (_srelocate).
func CopyRelocated(m Memory, sym *Symbols) (err error) {
	if !sym.Relocate.Valid() {
		return fmt.Errorf("relocate %s: %w", sym.Relocate, ErrInverted)
	}

	buf := make([]byte, copyChunk)
	size := sym.Relocate.Size()

	for off := uint64(0); off < size; off += uint64(len(buf)) {
		n := min(size-off, uint64(len(buf)))

		if err = m.Read(sym.Etext+off, buf[:n]); err != nil {
			return fmt.Errorf("relocate read at %#x, %w", sym.Etext+off, err)
		}

		if err = m.Write(sym.Relocate.Start+off, buf[:n]); err != nil {
			return fmt.Errorf("relocate write at %#x, %w", sym.Relocate.Start+off, err)
		}
	}

	return
}

// ZeroBSS writes zero to every byte in [_szero, _ezero).
func ZeroBSS(m Memory, sym *Symbols) (err error) {
	if !sym.Zero.Valid() {
		return fmt.Errorf("zero %s: %w", sym.Zero, ErrInverted)
	}

	buf := make([]byte, copyChunk)
	size := sym.Zero.Size()

	for off := uint64(0); off < size; off += uint64(len(buf)) {
		n := min(size-off, uint64(len(buf)))

		if err = m.Write(sym.Zero.Start+off, buf[:n]); err != nil {
			return fmt.Errorf("zero write at %#x, %w", sym.Zero.Start+off, err)
		}
	}

	return
}

// Init runs the boot-time memory initialization, once, after the boot core
// has a valid stack and before any global variable is read.
//
// On successful return every global is either set to its initial value or
// zero.
func Init(m Memory, sym *Symbols) (err error) {
	if err = CopyRelocated(m, sym); err != nil {
		return
	}

	return ZeroBSS(m, sym)
}
