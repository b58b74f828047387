// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reset

import (
	"errors"
	"fmt"
	"sync"
)

// ErrFPTrap is returned by SimCore.CheckFP when a floating-point access would
// trap.
var ErrFPTrap = errors.New("floating-point access trapped")

// SimCore implements Primitives on an emulated core.
type SimCore struct {
	// MPIDR is the value returned by MPIDR_EL1 reads
	MPIDR uint64

	// Kernel, when set, runs on JumpToEntry with the entry address
	Kernel func(c *SimCore, entry uint64)
	// Parked, when set, is invoked once on the first low-power wait
	Parked func(c *SimCore)

	done <-chan struct{}
	wake chan struct{}

	sync.Mutex
	cpacr uint64
	sp    uint64
	waits int
}

// NewSimCore returns an emulated core, low-power waits return when done is
// closed or the core is woken.
func NewSimCore(done <-chan struct{}, mpidr uint64) *SimCore {
	return &SimCore{
		MPIDR: mpidr,
		done:  done,
		wake:  make(chan struct{}, 1),
	}
}

// ReadCoreID implements Primitives.
func (c *SimCore) ReadCoreID() uint64 {
	return CoreID(c.MPIDR)
}

// EnableSIMD implements Primitives.
func (c *SimCore) EnableSIMD() {
	c.Lock()
	defer c.Unlock()

	c.cpacr = EnableFPEN(c.cpacr)
}

// SetStackPointer implements Primitives.
func (c *SimCore) SetStackPointer(sp uint64) {
	c.Lock()
	defer c.Unlock()

	c.sp = sp
}

// JumpToEntry implements Primitives.
func (c *SimCore) JumpToEntry(entry uint64) {
	if c.Kernel != nil {
		c.Kernel(c, entry)
	}
}

// Wait implements Primitives.
func (c *SimCore) Wait() {
	c.Lock()
	c.waits += 1
	first := c.waits == 1
	c.Unlock()

	if first && c.Parked != nil {
		c.Parked(c)
	}

	select {
	case <-c.done:
	case <-c.wake:
	}
}

// Wake signals an event to the core, as SEV would.
func (c *SimCore) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// StackPointer returns the stack pointer set by the reset sequence.
func (c *SimCore) StackPointer() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.sp
}

// CPACR returns the emulated CPACR_EL1 value.
func (c *SimCore) CPACR() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.cpacr
}

// Waits returns the number of low-power waits executed.
func (c *SimCore) Waits() int {
	c.Lock()
	defer c.Unlock()

	return c.waits
}

// CheckFP returns an error if a floating-point instruction executed now
// would trap.
func (c *SimCore) CheckFP() error {
	if cpacr := c.CPACR(); !FPEnabled(cpacr) {
		return fmt.Errorf("core %d cpacr:%#x, %w", c.ReadCoreID(), cpacr, ErrFPTrap)
	}

	return nil
}
