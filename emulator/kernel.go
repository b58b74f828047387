// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/usbarmory/boot-layout/mem"
	"github.com/usbarmory/boot-layout/reset"
)

var (
	ErrBadEntry = errors.New("branch to address without kernel code")
	ErrBadStack = errors.New("invalid stack pointer at kernel entry")
	ErrUninit   = errors.New("uninitialized global")
)

// Env represents what the kernel body sees once in control of the boot
// core.
type Env struct {
	Core    *reset.SimCore
	Bus     *mem.Bus
	Symbols *mem.Symbols
	// Console is the boot core UART port
	Console io.Writer
}

// Kernel represents the kernel body, executed after memory initialization.
type Kernel func(ctx context.Context, env *Env) error

// Hello checks that every global is initialized or zero and prints a
// greeting on the console.
func Hello(ctx context.Context, env *Env) (err error) {
	if err = CheckGlobals(env.Bus, env.Symbols); err != nil {
		return
	}

	_, err = fmt.Fprintf(env.Console, "Hello world\n")

	return
}

// CheckGlobals compares the relocated data with its load image and checks
// that the zero-initialized data is zero.
func CheckGlobals(m mem.Memory, sym *mem.Symbols) (err error) {
	size := sym.Relocate.Size()
	load := make([]byte, size)
	run := make([]byte, size)

	if err = m.Read(sym.Etext, load); err != nil {
		return
	}

	if err = m.Read(sym.Relocate.Start, run); err != nil {
		return
	}

	if i := mismatch(load, run); i >= 0 {
		return fmt.Errorf("data at %#x is %#x, want %#x, %w", sym.Relocate.Start+uint64(i), run[i], load[i], ErrUninit)
	}

	zero := make([]byte, sym.Zero.Size())

	if err = m.Read(sym.Zero.Start, zero); err != nil {
		return
	}

	if i := mismatch(make([]byte, len(zero)), zero); i >= 0 {
		return fmt.Errorf("bss at %#x is %#x, %w", sym.Zero.Start+uint64(i), zero[i], ErrUninit)
	}

	return
}

func mismatch(a []byte, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}

	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}

	return -1
}
