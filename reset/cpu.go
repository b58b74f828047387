// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reset

import (
	"github.com/usbarmory/tamago/bits"
)

// AArch64 system register fields
const (
	// MPIDR_EL1 affinity level 0, core number within a cluster of four
	MPIDR_AFF0      = 0
	MPIDR_AFF0_MASK = 0b11

	// CPACR_EL1 FP/SIMD trap control, 0b11 disables trapping at EL0 and EL1
	CPACR_FPEN      = 20
	CPACR_FPEN_MASK = 0b11
	CPACR_FPEN_NONE = 0b11
)

// CoreID extracts the core identifier from an MPIDR_EL1 value.
func CoreID(mpidr uint64) uint64 {
	return bits.Get64(&mpidr, MPIDR_AFF0, MPIDR_AFF0_MASK)
}

// EnableFPEN returns the CPACR_EL1 value with FP/SIMD trapping disabled, all
// other fields are preserved.
func EnableFPEN(cpacr uint64) uint64 {
	bits.SetN64(&cpacr, CPACR_FPEN, CPACR_FPEN_MASK, CPACR_FPEN_NONE)
	return cpacr
}

// FPEnabled returns whether a CPACR_EL1 value disables FP/SIMD trapping.
func FPEnabled(cpacr uint64) bool {
	return bits.Get64(&cpacr, CPACR_FPEN, CPACR_FPEN_MASK) == CPACR_FPEN_NONE
}
