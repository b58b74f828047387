// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	"github.com/usbarmory/boot-layout/emulator"
	"github.com/usbarmory/boot-layout/mem"
)

var session struct {
	sync.Mutex

	layout *mem.Layout
	emu    *emulator.Emulator
	cores  int
	entry  uint64
}

// SetLayout selects the layout all commands operate on, any previous
// emulation state is discarded.
func SetLayout(l *mem.Layout) {
	session.Lock()
	defer session.Unlock()

	session.layout = l
	session.emu = nil

	glog.V(1).Infof("layout %s selected", l.Board.Name)
}

// SetCores sets the number of cores released from reset by the boot
// command.
func SetCores(n int) {
	session.Lock()
	defer session.Unlock()

	session.cores = n
}

// SetEntry sets the kernel entry point used by the boot command, zero
// selects the default.
func SetEntry(addr uint64) {
	session.Lock()
	defer session.Unlock()

	session.entry = addr
}

func layout() (*mem.Layout, error) {
	session.Lock()
	defer session.Unlock()

	if session.layout == nil {
		return nil, errors.New("no board selected, use `board` or `load`")
	}

	return session.layout, nil
}

// output runs fn against the named file, or returns its output when no
// path is given.
func output(path string, fn func(w io.Writer) error) (res string, err error) {
	if path == "" {
		var buf bytes.Buffer

		if err = fn(&buf); err != nil {
			return
		}

		return buf.String(), nil
	}

	f, err := os.Create(path)

	if err != nil {
		return
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = fn(f); err != nil {
		return "", fmt.Errorf("could not write %s, %v", path, err)
	}

	return fmt.Sprintf("%s written", path), nil
}

func optional(arg []string) string {
	if len(arg) == 0 {
		return ""
	}

	return arg[len(arg)-1]
}
