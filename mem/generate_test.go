// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteLinkerScript(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteLinkerScript(&buf, rpi3(t)); err != nil {
		t.Fatalf("WriteLinkerScript: %v", err)
	}

	script := buf.String()

	for _, want := range []string{
		"rom   (rx) : ORIGIN = 0x80000, LENGTH = 0x100000",
		"prog  (rx) : ORIGIN = 0x180000, LENGTH = 0x10",
		"ram   (rwx) : ORIGIN = 0x0, LENGTH = 0x80000",
		".text 0x80000 :",
		".ARM.exidx 0x88000 :",
		".storage 0x89000 :",
		"_etext = 0x8a000;",
		".relocate 0x2000 : AT(_etext)",
		".sram 0x3000 (NOLOAD) :",
		"_eapps = _sapps + LENGTH(prog);",
		"_eappmem = ORIGIN(ram) + LENGTH(ram);",
		`ASSERT(_estack == 0x2000, "stack reservation exceeded")`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("linker script does not contain %q", want)
		}
	}

	if n := strings.Count(script, "BYTE(0xff)"); n != AppsPlaceholder {
		t.Errorf("Got %d placeholder bytes, want %d", n, AppsPlaceholder)
	}
}

func TestWriteAsmHeader(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteAsmHeader(&buf, rpi3(t)); err != nil {
		t.Fatalf("WriteAsmHeader: %v", err)
	}

	// the reset entry assembles against the rpi3 header
	want, err := os.ReadFile("../reset/layout_arm64.h")

	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if d := cmp.Diff(string(want), buf.String()); len(d) != 0 {
		t.Fatalf("reset/layout_arm64.h is stale, diff (-want +got):\n%s", d)
	}
}

func TestWriteGoConstants(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteGoConstants(&buf, rpi3(t), "layout"); err != nil {
		t.Fatalf("WriteGoConstants: %v", err)
	}

	f, err := parser.ParseFile(token.NewFileSet(), "layout.go", buf.Bytes(), 0)

	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if f.Name.Name != "layout" {
		t.Fatalf("Got package %s", f.Name.Name)
	}

	for _, re := range []string{
		`StackTop\s+= 0x2000`,
		`SRELOCATE\s+= 0x2000`,
		`EAPPMEM\s+= 0x80000`,
		`ETEXT\s+= 0x8a000`,
	} {
		if !regexp.MustCompile(re).Match(buf.Bytes()) {
			t.Errorf("Go constants do not match %q", re)
		}
	}
}
