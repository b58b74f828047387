// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build arm64 && rpi3

package reset

//go:generate go run ../layoutctl -board rpi3 -o layout_arm64.h header

// CPU implements Primitives on the executing AArch64 core at EL1.
//
// The image entry point is start (see start_arm64.s), which performs the
// same sequence as Run before any Go code can execute, CPU serves kernels
// re-entering the sequence on a core that already has a stack.
type CPU struct {
	sp uint64
}

// defined in hw_arm64.s
func read_mpidr() uint64
func read_cpacr() uint64
func write_cpacr(val uint64)
func wait_for_event()
func jump(sp uint64, entry uint64)

// defined in start_arm64.s
func start()

// ReadCoreID implements Primitives.
func (c *CPU) ReadCoreID() uint64 {
	return CoreID(read_mpidr())
}

// EnableSIMD implements Primitives.
func (c *CPU) EnableSIMD() {
	write_cpacr(EnableFPEN(read_cpacr()))
}

// SetStackPointer implements Primitives, the stack pointer is loaded on
// JumpToEntry as no Go code can run on the new stack before the branch.
func (c *CPU) SetStackPointer(sp uint64) {
	c.sp = sp
}

// JumpToEntry implements Primitives.
func (c *CPU) JumpToEntry(entry uint64) {
	jump(c.sp, entry)
}

// Wait implements Primitives.
func (c *CPU) Wait() {
	wait_for_event()
}
