// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"
	"regexp"

	"golang.org/x/term"

	"github.com/usbarmory/boot-layout/mem"
)

func init() {
	Add(Cmd{
		Name:    "verify",
		Args:    1,
		Pattern: regexp.MustCompile(`^verify (\S+)$`),
		Syntax:  "<elf>",
		Help:    "verify linked image against current layout",
		Fn:      verifyCmd,
	})

	Add(Cmd{
		Name:    "elfsizes",
		Args:    1,
		Pattern: regexp.MustCompile(`^elfsizes (\S+)$`),
		Syntax:  "<elf>",
		Help:    "re-place current board with section sizes of an image",
		Fn:      elfSizesCmd,
	})

	Add(Cmd{
		Name:    "elf2hex",
		Args:    2,
		Pattern: regexp.MustCompile(`^elf2hex (\S+)(?: (\S+))?$`),
		Syntax:  "<elf> [path]",
		Help:    "convert linked image to flash image (Intel HEX)",
		Fn:      elf2hexCmd,
	})
}

func verifyCmd(_ *term.Terminal, arg []string) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	buf, err := os.ReadFile(arg[0])

	if err != nil {
		return
	}

	if err = mem.VerifyELF(l, buf); err != nil {
		return "", fmt.Errorf("%s does not match layout\n%v", arg[0], err)
	}

	return fmt.Sprintf("%s matches %s layout", arg[0], l.Board.Name), nil
}

func elfSizesCmd(_ *term.Terminal, arg []string) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	buf, err := os.ReadFile(arg[0])

	if err != nil {
		return
	}

	s, err := mem.SizesFromELF(buf)

	if err != nil {
		return
	}

	return place(l.Board, s)
}

func elf2hexCmd(_ *term.Terminal, arg []string) (res string, err error) {
	if len(arg) == 0 {
		return "", fmt.Errorf("missing image path")
	}

	l, err := layout()

	if err != nil {
		return
	}

	buf, err := os.ReadFile(arg[0])

	if err != nil {
		return
	}

	img, err := mem.ImageFromELF(l, buf)

	if err != nil {
		return
	}

	return output(arg[1], img.WriteHex)
}

