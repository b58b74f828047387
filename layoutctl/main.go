// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// layoutctl generates, validates and emulates the boot memory layout of a
// board variant.
//
// Usage:
//
//	layoutctl [flags]                  # interactive console
//	layoutctl [flags] <command> [args] # run one console command
//
// For example:
//
//	go run ./layoutctl -board rpi3 ld kernel.ld
//	go run ./layoutctl -config pkl/rpi3.pkl -logtostderr boot
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/usbarmory/boot-layout/cmd"
	"github.com/usbarmory/boot-layout/mem"
	"github.com/usbarmory/boot-layout/util"
)

// KernelSymbol is the kernel entry point symbol looked up in -elf images.
const KernelSymbol = "kernel_main"

var (
	board  = flag.String("board", "rpi3", "built-in board variant")
	config = flag.String("config", "", "Pkl board configuration, overrides -board")
	cores  = flag.Int("cores", 4, "number of emulated cores")
	entry  = flag.String("entry", "", "kernel entry point (hex), defaults to text start + 0x80")
	image  = flag.String("elf", "", "linked image, its section sizes and kernel entry point are used")
	out    = flag.String("o", "", "output path of the one-shot command")
)

func selectLayout(ctx context.Context) (l *mem.Layout, err error) {
	var b mem.Board
	var s mem.Sizes

	if *config != "" {
		b, s, err = mem.LoadBoard(ctx, *config)
	} else {
		b, s, err = mem.Lookup(*board)
	}

	if err != nil {
		return
	}

	if *image == "" {
		return mem.Place(b, s)
	}

	buf, err := os.ReadFile(*image)

	if err != nil {
		return
	}

	if s, err = mem.SizesFromELF(buf); err != nil {
		return nil, fmt.Errorf("could not size %s, %v", *image, err)
	}

	if sym, err := util.LookupSym(buf, KernelSymbol); err == nil {
		glog.Infof("kernel entry %s at %#x", KernelSymbol, sym.Value)
		cmd.SetEntry(sym.Value)
	}

	return mem.Place(b, s)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx := context.Background()

	l, err := selectLayout(ctx)

	if err != nil {
		glog.Exitf("could not select layout, %v", err)
	}

	if err = mem.Validate(l); err != nil {
		glog.Warningf("%s layout is invalid\n%v", l.Board.Name, err)
	}

	cmd.SetLayout(l)
	cmd.SetCores(*cores)

	if *entry != "" {
		addr, err := strconv.ParseUint(strings.TrimPrefix(*entry, "0x"), 16, 64)

		if err != nil {
			glog.Exitf("invalid entry point, %v", err)
		}

		cmd.SetEntry(addr)
	}

	if flag.NArg() == 0 {
		console := util.NewConsole(os.Stdin, os.Stdout)
		console.Banner = fmt.Sprintf("%s/%s (%s) • boot layout %s", runtime.GOOS, runtime.GOARCH, runtime.Version(), l.Board.Name)
		console.Help = cmd.Help
		console.Handler = cmd.Handle

		if err = console.Start(); err != nil {
			glog.Exit(err)
		}

		return
	}

	args := flag.Args()

	if *out != "" {
		args = append(args, *out)
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "")

	if err = cmd.Handle(t, strings.Join(args, " ")); err != nil && err != io.EOF {
		glog.Exitf("%s: %v", args[0], err)
	}
}
