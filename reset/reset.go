// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package reset implements the earliest boot sequence executed by every core
// out of reset.
//
// All cores but the boot core are parked, the boot core enables the
// floating-point/SIMD unit, loads the stack pointer and branches, without
// return, to the kernel entry point. The sequence is expressed as a state
// machine over a small set of per-architecture primitives, see Primitives.
package reset

import (
	"context"

	"github.com/usbarmory/boot-layout/mem"
)

// BootCore is the identifier of the only core allowed past reset.
const BootCore = 0

// Primitives represents the architecture specific operations performed by
// the reset sequence.
type Primitives interface {
	// ReadCoreID returns the executing core identifier.
	ReadCoreID() uint64
	// EnableSIMD disables floating-point/SIMD trapping, it must complete
	// before any floating-point instruction is executed.
	EnableSIMD()
	// SetStackPointer sets the initial stack pointer.
	SetStackPointer(sp uint64)
	// JumpToEntry branches to the kernel entry point, on hardware it does
	// not return.
	JumpToEntry(entry uint64)
	// Wait enters a low-power wait until the next event or interrupt.
	Wait()
}

// Contract represents the only values the reset sequence takes from the
// memory layout.
type Contract struct {
	// StackTop is the initial stack pointer (_estack)
	StackTop uint64
	// Entry is the kernel entry point
	Entry uint64
}

// NewContract returns the reset contract for a layout, entry is the kernel
// entry point address.
func NewContract(sym *mem.Symbols, entry uint64) Contract {
	return Contract{
		StackTop: sym.StackTop,
		Entry:    entry,
	}
}

// Machine represents the reset sequence of a single core.
type Machine struct {
	// Trace, when set, is invoked on every state transition.
	Trace func(from State, to State)

	p     Primitives
	c     Contract
	state State
	core  uint64
}

// NewMachine returns the reset state machine of a core in PoweredOn state.
func NewMachine(p Primitives, c Contract) *Machine {
	return &Machine{
		p:     p,
		c:     c,
		state: PoweredOn,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Core returns the core identifier, it is valid only once ReadCoreID has
// been executed.
func (m *Machine) Core() uint64 {
	return m.core
}

// Step executes the action of the current state and moves to the next one.
// Terminal states wait once and remain current.
func (m *Machine) Step() State {
	next := m.state

	switch m.state {
	case PoweredOn:
		next = ReadCoreID
	case ReadCoreID:
		m.core = m.p.ReadCoreID()

		if m.core != BootCore {
			next = ParkSecondary
		} else {
			next = ConfigureFPU
		}
	case ConfigureFPU:
		m.p.EnableSIMD()
		next = InitStack
	case InitStack:
		m.p.SetStackPointer(m.c.StackTop)
		next = EnterKernel
	case EnterKernel:
		m.p.JumpToEntry(m.c.Entry)
		// the kernel returned
		next = Halt
	case ParkSecondary, Halt:
		m.p.Wait()
	}

	if next != m.state && m.Trace != nil {
		m.Trace(m.state, next)
	}

	m.state = next

	return next
}

// Run executes the reset sequence up to a terminal state and then waits in
// it until ctx is done, on hardware ctx is never done and Run never returns.
func Run(ctx context.Context, p Primitives, c Contract) State {
	return RunMachine(ctx, NewMachine(p, c))
}

// RunMachine is like Run for an existing state machine.
func RunMachine(ctx context.Context, m *Machine) State {
	for !m.State().Terminal() {
		m.Step()
	}

	for ctx.Err() == nil {
		m.Step()
	}

	return m.State()
}
