// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"context"
	"errors"
	"fmt"

	"github.com/usbarmory/boot-layout/mem/config"
)

// LoadBoard evaluates a Pkl board configuration file (see pkl/BoardConfig.pkl).
func LoadBoard(ctx context.Context, path string) (b Board, s Sizes, err error) {
	c, err := config.LoadFromPath(ctx, path)

	if err != nil {
		return b, s, fmt.Errorf("could not evaluate %s, %w", path, err)
	}

	return FromConfig(c)
}

// FromConfig converts an evaluated board configuration.
func FromConfig(c *config.BoardConfig) (b Board, s Sizes, err error) {
	if c.Rom == nil || c.Prog == nil || c.Ram == nil {
		return b, s, errors.New("board configuration is missing a region")
	}

	b = NewBoard(c.Name,
		[2]uint64{uint64(c.Rom.Origin), uint64(c.Rom.Length)},
		[2]uint64{uint64(c.Prog.Origin), uint64(c.Prog.Length)},
		[2]uint64{uint64(c.Ram.Origin), uint64(c.Ram.Length)},
	)

	b.PageSize = uint64(c.PageSize)
	b.StackSize = uint64(c.StackSize)
	b.AddressBits = c.AddressBits

	if c.Entry != nil {
		b.Entry = uint64(*c.Entry)
	}

	if c.Sizes != nil {
		s = Sizes{
			Text:     uint64(c.Sizes.Text),
			Unwind:   uint64(c.Sizes.Unwind),
			Storage:  uint64(c.Sizes.Storage),
			Relocate: uint64(c.Sizes.Relocate),
			Zero:     uint64(c.Sizes.Zero),
		}
	}

	return
}
