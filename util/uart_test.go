// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestUARTLineBuffering(t *testing.T) {
	var out bytes.Buffer

	u := NewUART(&out)

	fmt.Fprint(u.Port(0), "Hello ")

	if out.Len() != 0 {
		t.Fatalf("Got output %q before end of line", out.String())
	}

	fmt.Fprint(u.Port(0), "world\npartial")

	if got, want := out.String(), "Hello world\n"; got != want {
		t.Fatalf("Got %q, want %q", got, want)
	}

	u.Flush()

	if got, want := out.String(), "Hello world\npartial"; got != want {
		t.Fatalf("Got %q, want %q", got, want)
	}
}

func TestUARTConcurrentCores(t *testing.T) {
	var out bytes.Buffer
	var wg sync.WaitGroup

	u := NewUART(&out)
	lines := map[string]bool{}

	for core := uint64(0); core < 4; core++ {
		line := fmt.Sprintf("core %d says hello from its own line\n", core)
		lines[line] = true

		wg.Add(1)

		go func() {
			defer wg.Done()
			fmt.Fprint(u.Port(core), line)
		}()
	}

	wg.Wait()

	for _, l := range bytes.SplitAfter(out.Bytes(), []byte("\n")) {
		if len(l) == 0 {
			continue
		}

		if !lines[string(l)] {
			t.Errorf("Got interleaved line %q", l)
		}
	}
}
