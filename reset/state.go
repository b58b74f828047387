// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reset

import (
	"fmt"
)

// State represents a reset sequence state.
type State int

const (
	PoweredOn State = iota
	ReadCoreID
	ParkSecondary
	ConfigureFPU
	InitStack
	EnterKernel
	Halt
)

func (s State) String() string {
	switch s {
	case PoweredOn:
		return "PoweredOn"
	case ReadCoreID:
		return "ReadCoreID"
	case ParkSecondary:
		return "ParkSecondary"
	case ConfigureFPU:
		return "ConfigureFPU"
	case InitStack:
		return "InitStack"
	case EnterKernel:
		return "EnterKernel"
	case Halt:
		return "Halt"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal returns whether the state is a low-power wait that is never left.
func (s State) Terminal() bool {
	return s == ParkSecondary || s == Halt
}
