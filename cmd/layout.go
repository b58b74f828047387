// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/term"

	"github.com/usbarmory/boot-layout/mem"
)

func init() {
	Add(Cmd{
		Name: "boards",
		Help: "list built-in board variants",
		Fn:   boardsCmd,
	})

	Add(Cmd{
		Name:    "board",
		Args:    1,
		Pattern: regexp.MustCompile(`^board (\S+)$`),
		Syntax:  "<name>",
		Help:    "select built-in board variant",
		Fn:      boardCmd,
	})

	Add(Cmd{
		Name:    "load",
		Args:    1,
		Pattern: regexp.MustCompile(`^load (\S+)$`),
		Syntax:  "<path.pkl>",
		Help:    "select board variant from Pkl configuration",
		Fn:      loadCmd,
	})

	Add(Cmd{
		Name:    "sizes",
		Args:    5,
		Pattern: regexp.MustCompile(`^sizes ([[:xdigit:]]+) ([[:xdigit:]]+) ([[:xdigit:]]+) ([[:xdigit:]]+) ([[:xdigit:]]+)$`),
		Syntax:  "<hex text> <unwind> <storage> <relocate> <zero>",
		Help:    "re-place current board with section sizes",
		Fn:      sizesCmd,
	})

	Add(Cmd{
		Name: "layout",
		Help: "show regions and section placement",
		Fn:   layoutCmd,
	})

	Add(Cmd{
		Name: "symbols",
		Help: "show boundary symbols",
		Fn:   symbolsCmd,
	})

	Add(Cmd{
		Name: "check",
		Help: "validate current layout",
		Fn:   checkCmd,
	})
}

func boardsCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	var names []string

	for name := range mem.Boards {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		b, _ := mem.Boards[name]()
		fmt.Fprintf(&buf, "%-10s rom:%#x prog:%#x ram:%#x\n", name, b.ROM.Origin, b.Prog.Origin, b.RAM.Origin)
	}

	return buf.String(), nil
}

// place selects a layout even when it does not validate, so that it can be
// inspected with `check`.
func place(b mem.Board, s mem.Sizes) (res string, err error) {
	l, err := mem.Place(b, s)

	if err != nil {
		return
	}

	SetLayout(l)

	if err = mem.Validate(l); err != nil {
		return fmt.Sprintf("%s selected, layout is invalid (see `check`)", b.Name), nil
	}

	return fmt.Sprintf("%s selected", b.Name), nil
}

func boardCmd(_ *term.Terminal, arg []string) (res string, err error) {
	b, s, err := mem.Lookup(arg[0])

	if err != nil {
		return
	}

	return place(b, s)
}

func loadCmd(_ *term.Terminal, arg []string) (res string, err error) {
	b, s, err := mem.LoadBoard(context.Background(), arg[0])

	if err != nil {
		return
	}

	return place(b, s)
}

func sizesCmd(_ *term.Terminal, arg []string) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	var v [5]uint64

	for i := range v {
		if v[i], err = strconv.ParseUint(arg[i], 16, 64); err != nil {
			return "", fmt.Errorf("invalid size, %v", err)
		}
	}

	return place(l.Board, mem.Sizes{
		Text:     v[0],
		Unwind:   v[1],
		Storage:  v[2],
		Relocate: v[3],
		Zero:     v[4],
	})
}

func layoutCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer

	l, err := layout()

	if err != nil {
		return
	}

	l.Print(&buf)

	return buf.String(), nil
}

func symbolsCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer

	l, err := layout()

	if err != nil {
		return
	}

	l.PrintSymbols(&buf)

	return buf.String(), nil
}

func checkCmd(_ *term.Terminal, _ []string) (res string, err error) {
	l, err := layout()

	if err != nil {
		return
	}

	if err = mem.Validate(l); err != nil {
		return "", fmt.Errorf("layout is invalid\n%v", err)
	}

	return "layout is valid", nil
}
