// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/usbarmory/boot-layout/emulator"
	"github.com/usbarmory/boot-layout/mem"
	"github.com/usbarmory/boot-layout/util"
)

const maxBufferSize = 102400

const bootTimeout = 30 * time.Second

func init() {
	Add(Cmd{
		Name:    "boot",
		Args:    1,
		Pattern: regexp.MustCompile(`^boot (\S+)$`),
		Syntax:  "[path.hex]",
		Help:    "emulate reset and boot, optionally programming a flash image",
		Fn:      bootCmd,
	})

	Add(Cmd{
		Name:    "peek",
		Args:    2,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "emulated memory display",
		Fn:      memReadCmd,
	})

	Add(Cmd{
		Name:    "poke",
		Args:    2,
		Pattern: regexp.MustCompile(`^poke ([[:xdigit:]]+) ([[:xdigit:]]+)$`),
		Syntax:  "<hex offset> <hex value>",
		Help:    "emulated memory write",
		Fn:      memWriteCmd,
	})
}

func bootCmd(t *term.Terminal, arg []string) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	if err = mem.Validate(l); err != nil {
		return "", fmt.Errorf("refusing to boot invalid layout\n%v", err)
	}

	e := emulator.New(l, util.NewTermUART(t))

	session.Lock()

	if session.cores > 0 {
		e.Cores = session.cores
	}

	if session.entry != 0 {
		e.Entry = session.entry
	}

	session.emu = e
	session.Unlock()

	if path := optional(arg); path != "" {
		f, err := os.Open(path)

		if err != nil {
			return "", err
		}
		defer f.Close()

		img, err := mem.ParseImage(f)

		if err != nil {
			return "", fmt.Errorf("could not parse %s, %v", path, err)
		}

		if err = e.Program(img); err != nil {
			return "", err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	defer cancel()

	r, err := e.Run(ctx)

	if err != nil {
		return
	}

	if ctx.Err() != nil {
		return "", errors.New("emulation timed out")
	}

	return fmt.Sprintf("cores:%v booted:%v sp:%#x", r.States, r.Booted, r.StackPointer), nil
}

func bus() (*mem.Bus, error) {
	session.Lock()
	defer session.Unlock()

	if session.emu == nil {
		return nil, errors.New("no emulation state, use `boot`")
	}

	return session.emu.Bus, nil
}

func memReadCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := strconv.ParseUint(arg[0], 16, 64)

	if err != nil {
		return "", fmt.Errorf("invalid address, %v", err)
	}

	size, err := strconv.ParseUint(arg[1], 10, 32)

	if err != nil {
		return "", fmt.Errorf("invalid size, %v", err)
	}

	if (addr%4) != 0 || (size%4) != 0 {
		return "", fmt.Errorf("only 32-bit aligned accesses are supported")
	}

	if size > maxBufferSize {
		return "", fmt.Errorf("size argument must be <= %d", maxBufferSize)
	}

	b, err := bus()

	if err != nil {
		return
	}

	buf := make([]byte, size)

	if err = b.Read(addr, buf); err != nil {
		return
	}

	return hex.Dump(buf), nil
}

func memWriteCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := strconv.ParseUint(arg[0], 16, 64)

	if err != nil {
		return "", fmt.Errorf("invalid address, %v", err)
	}

	val, err := strconv.ParseUint(arg[1], 16, 32)

	if err != nil {
		return "", fmt.Errorf("invalid data, %v", err)
	}

	b, err := bus()

	if err != nil {
		return
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(val))

	err = b.Write(addr, buf)

	return
}
