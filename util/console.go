// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"golang.org/x/term"
)

// Console represents an interactive console instance on the local terminal.
type Console struct {
	// Banner is the welcome banner
	Banner string
	// Help is the `help` command output
	Help func(*term.Terminal) string
	// Handler is the terminal command handler
	Handler func(*term.Terminal, string) error
	// Term is the terminal instance
	Term *term.Terminal

	in  *os.File
	out io.Writer
}

type stdio struct {
	io.Reader
	io.Writer
}

// NewConsole returns a console on the given input and output, the input is
// switched to raw mode by Start when it is a terminal.
func NewConsole(in *os.File, out io.Writer) *Console {
	c := &Console{
		in:  in,
		out: out,
	}

	c.Term = term.NewTerminal(stdio{in, out}, "")
	c.Term.SetPrompt(string(c.Term.Escape.Red) + "> " + string(c.Term.Escape.Reset))

	return c
}

// Start runs the console read loop until `exit` or end of input.
func (c *Console) Start() (err error) {
	fd := int(c.in.Fd())

	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)

		if err != nil {
			return fmt.Errorf("could not set raw mode, %v", err)
		}
		defer term.Restore(fd, state)

		if w, h, err := term.GetSize(fd); err == nil {
			_ = c.Term.SetSize(w, h)
		}
	}

	fmt.Fprintf(c.Term, "%s\n", c.Banner)

	if c.Help != nil {
		fmt.Fprintf(c.Term, "%s\n", c.Help(c.Term))
	}

	for {
		cmd, err := c.Term.ReadLine()

		if err == io.EOF {
			break
		}

		if err != nil {
			glog.Errorf("readline error: %v", err)
			continue
		}

		err = c.Handler(c.Term, cmd)

		if err == io.EOF {
			break
		}

		if err != nil {
			fmt.Fprintf(c.Term, "error: %v\n", err)
		}
	}

	return
}
