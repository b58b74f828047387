// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"io"
	"regexp"

	"golang.org/x/term"

	"github.com/usbarmory/boot-layout/mem"
)

func init() {
	Add(Cmd{
		Name:    "ld",
		Args:    1,
		Pattern: regexp.MustCompile(`^ld (\S+)$`),
		Syntax:  "[path]",
		Help:    "generate linker script",
		Fn:      ldCmd,
	})

	Add(Cmd{
		Name:    "header",
		Args:    1,
		Pattern: regexp.MustCompile(`^header (\S+)$`),
		Syntax:  "[path]",
		Help:    "generate assembly header",
		Fn:      headerCmd,
	})

	Add(Cmd{
		Name:    "goconst",
		Args:    2,
		Pattern: regexp.MustCompile(`^goconst (\w+)(?: (\S+))?$`),
		Syntax:  "<package> [path]",
		Help:    "generate Go constants",
		Fn:      goconstCmd,
	})

	Add(Cmd{
		Name:    "manifest",
		Args:    1,
		Pattern: regexp.MustCompile(`^manifest (\S+)$`),
		Syntax:  "<path>",
		Help:    "write protobuf symbol manifest",
		Fn:      manifestCmd,
	})

	Add(Cmd{
		Name:    "map",
		Args:    1,
		Pattern: regexp.MustCompile(`^map (\S+)$`),
		Syntax:  "<path.png>",
		Help:    "render memory map",
		Fn:      mapCmd,
	})

	Add(Cmd{
		Name:    "hex",
		Args:    1,
		Pattern: regexp.MustCompile(`^hex (\S+)$`),
		Syntax:  "[path]",
		Help:    "generate empty flash image (Intel HEX)",
		Fn:      hexCmd,
	})
}

func generate(arg []string, fn func(w io.Writer, l *mem.Layout) error) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	return output(optional(arg), func(w io.Writer) error {
		return fn(w, l)
	})
}

func ldCmd(_ *term.Terminal, arg []string) (string, error) {
	return generate(arg, mem.WriteLinkerScript)
}

func headerCmd(_ *term.Terminal, arg []string) (string, error) {
	return generate(arg, mem.WriteAsmHeader)
}

func goconstCmd(_ *term.Terminal, arg []string) (string, error) {
	if len(arg) == 0 {
		return "", errors.New("missing package name")
	}

	return generate(arg, func(w io.Writer, l *mem.Layout) error {
		return mem.WriteGoConstants(w, l, arg[0])
	})
}

func manifestCmd(_ *term.Terminal, arg []string) (string, error) {
	if len(arg) == 0 {
		return "", errors.New("missing output path")
	}

	return generate(arg, func(w io.Writer, l *mem.Layout) (err error) {
		_, err = w.Write(mem.NewManifest(l).Marshal())
		return
	})
}

func mapCmd(_ *term.Terminal, arg []string) (string, error) {
	if len(arg) == 0 {
		return "", errors.New("missing output path")
	}

	return generate(arg, mem.RenderMap)
}

func hexCmd(_ *term.Terminal, arg []string) (string, error) {
	return generate(arg, func(w io.Writer, l *mem.Layout) error {
		img, err := mem.BuildImage(l, mem.Contents{})

		if err != nil {
			return err
		}

		return img.WriteHex(w)
	})
}
