// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package emulator runs the reset sequence and boot-time memory
// initialization of a board layout on emulated cores.
package emulator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/usbarmory/boot-layout/mem"
	"github.com/usbarmory/boot-layout/reset"
	"github.com/usbarmory/boot-layout/util"
)

const (
	// Cores is the default number of emulated cores (BCM2837)
	Cores = 4

	// EntryOffset is the default kernel entry offset from the start of
	// text, past the reset sequence.
	EntryOffset = 0x80

	// RAMFill is the power-on RAM content, anything but zero makes
	// missing initialization visible.
	RAMFill = 0xa5

	// MPIDR_EL1 bit 31 is RES1
	mpidrRES1 = 1 << 31
)

// Emulator represents an emulated board.
type Emulator struct {
	// Layout is the emulated board layout
	Layout *mem.Layout
	// Bus is the emulated physical address space
	Bus *mem.Bus
	// UART is the emulated serial console
	UART *util.UART

	// Cores is the number of cores released from reset
	Cores int
	// Entry is the kernel entry point address
	Entry uint64
	// Kernel is the kernel body run at Entry
	Kernel Kernel
}

// Report represents the outcome of an emulation run.
type Report struct {
	// States holds the final reset state of each core
	States []reset.State
	// Booted holds the cores which entered the kernel
	Booted []uint64
	// StackPointer is the boot core stack pointer at kernel entry
	StackPointer uint64
}

// New returns an emulator for the given layout with erased flash and
// uninitialized RAM.
func New(l *mem.Layout, uart *util.UART) *Emulator {
	return &Emulator{
		Layout: l,
		Bus:    mem.NewBus(l.Board.Regions(), RAMFill),
		UART:   uart,
		Cores:  Cores,
		Entry:  l.Symbols.Text.Start + EntryOffset,
		Kernel: Hello,
	}
}

// Program writes a flash image to the emulated rom and prog regions.
func (e *Emulator) Program(img *mem.Image) (err error) {
	if err = img.Program(e.Bus); err != nil {
		return fmt.Errorf("could not program image, %v", err)
	}

	for _, seg := range img.Segments() {
		glog.V(1).Infof("programmed %#x-%#x", seg.Addr, seg.Addr+uint64(len(seg.Data)))
	}

	return
}

// Run releases all cores from reset and returns once every core has reached
// a terminal state, or ctx is done.
func (e *Emulator) Run(ctx context.Context) (r *Report, err error) {
	if e.Cores <= 0 {
		return nil, fmt.Errorf("invalid number of cores %d", e.Cores)
	}

	glog.Info("----RESET----")
	glog.Infof("releasing %d cores, entry:%#x sp:%#x", e.Cores, e.Entry, e.Layout.Symbols.StackTop)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var running atomic.Int32

	r = &Report{
		States: make([]reset.State, e.Cores),
	}

	contract := reset.NewContract(&e.Layout.Symbols, e.Entry)
	running.Store(int32(e.Cores))

	for i := 0; i < e.Cores; i++ {
		core := reset.NewSimCore(gctx.Done(), mpidrRES1|uint64(i))

		var kernelErr error

		core.Kernel = func(c *reset.SimCore, entry uint64) {
			mu.Lock()
			r.Booted = append(r.Booted, c.ReadCoreID())
			r.StackPointer = c.StackPointer()
			mu.Unlock()

			kernelErr = e.boot(gctx, c, entry)
		}

		core.Parked = func(c *reset.SimCore) {
			glog.V(1).Infof("core %d waiting", c.ReadCoreID())

			if running.Add(-1) == 0 {
				cancel()
			}
		}

		m := reset.NewMachine(core, contract)

		m.Trace = func(from reset.State, to reset.State) {
			glog.V(2).Infof("core %d %v -> %v", m.Core(), from, to)
		}

		g.Go(func() error {
			state := reset.RunMachine(gctx, m)

			mu.Lock()
			r.States[i] = state
			mu.Unlock()

			return kernelErr
		})
	}

	err = g.Wait()
	e.UART.Flush()

	return
}

// boot runs on the boot core at kernel entry.
func (e *Emulator) boot(ctx context.Context, c *reset.SimCore, entry uint64) (err error) {
	sym := &e.Layout.Symbols
	id := c.ReadCoreID()

	glog.Infof("core %d entering kernel at %#x sp:%#x", id, entry, c.StackPointer())

	if entry != e.Entry {
		return fmt.Errorf("core %d at %#x, %w", id, entry, ErrBadEntry)
	}

	if sp := c.StackPointer(); sp != sym.StackTop || sp <= sym.Stack.Start {
		return fmt.Errorf("core %d sp:%#x, %w", id, sp, ErrBadStack)
	}

	if err = mem.Init(e.Bus, sym); err != nil {
		return fmt.Errorf("memory initialization failed, %w", err)
	}

	glog.Infof("relocated %d bytes %#x -> %s, zeroed %s", sym.Relocate.Size(), sym.Etext, sym.Relocate, sym.Zero)

	if err = c.CheckFP(); err != nil {
		return
	}

	env := &Env{
		Core:    c,
		Bus:     e.Bus,
		Symbols: sym,
		Console: e.UART.Port(id),
	}

	if err = e.Kernel(ctx, env); err != nil {
		return fmt.Errorf("kernel error, %w", err)
	}

	glog.Infof("core %d kernel returned, halting", id)

	return
}
