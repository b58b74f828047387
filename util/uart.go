// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"sync"

	"golang.org/x/term"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// UART represents an emulated serial console shared by all cores, output is
// line buffered per core so that concurrent writers do not interleave within
// a line.
type UART struct {
	sync.Mutex

	out  io.Writer
	t    *term.Terminal
	bufs map[uint64]*bytes.Buffer
}

// NewUART returns a console writing plain text to w.
func NewUART(w io.Writer) *UART {
	return &UART{
		out:  w,
		bufs: make(map[uint64]*bytes.Buffer),
	}
}

// NewTermUART returns a console writing to an interactive terminal, the boot
// core output is shown in green, other cores in red.
func NewTermUART(t *term.Terminal) *UART {
	return &UART{
		out:  t,
		t:    t,
		bufs: make(map[uint64]*bytes.Buffer),
	}
}

// Tx transmits one character from the given core.
func (u *UART) Tx(core uint64, c byte) {
	u.Lock()
	defer u.Unlock()

	buf, ok := u.bufs[core]

	if !ok {
		buf = new(bytes.Buffer)
		u.bufs[core] = buf
	}

	buf.WriteByte(c)

	if c == flushChr || buf.Len() > outputLimit {
		u.flush(core, buf)
	}
}

func (u *UART) flush(core uint64, buf *bytes.Buffer) {
	if u.t == nil {
		u.out.Write(buf.Bytes())
		buf.Reset()
		return
	}

	color := u.t.Escape.Red

	if core == 0 {
		color = u.t.Escape.Green
	}

	u.t.Write(color)
	u.t.Write(buf.Bytes())
	u.t.Write(u.t.Escape.Reset)

	buf.Reset()
}

// Flush writes out any partial line.
func (u *UART) Flush() {
	u.Lock()
	defer u.Unlock()

	for core, buf := range u.bufs {
		if buf.Len() > 0 {
			u.flush(core, buf)
		}
	}
}

// Port returns a writer transmitting on behalf of the given core.
func (u *UART) Port(core uint64) io.Writer {
	return &port{u: u, core: core}
}

type port struct {
	u    *UART
	core uint64
}

func (p *port) Write(b []byte) (int, error) {
	for _, c := range b {
		p.u.Tx(p.core, c)
	}

	return len(b), nil
}
