// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"hex": func(v uint64) string {
		return fmt.Sprintf("%#x", v)
	},
	"upper": func(s string) string {
		return strings.ToUpper(strings.TrimPrefix(s, "_"))
	},
	"repeat": func(n int) []struct{} {
		return make([]struct{}, n)
	},
}

// The script places every output section at its computed address, rather
// than relying on location counter arithmetic, and asserts that the linked
// contents fit their reservation.
var linkerScript = template.Must(template.New("ld").Funcs(funcs).Parse(`/* Code generated by layoutctl for board {{.Board.Name}}. DO NOT EDIT. */

MEMORY
{
{{- range .Board.Regions}}
  {{printf "%-5s" .Name}} ({{.Perm}}) : ORIGIN = {{hex .Origin}}, LENGTH = {{hex .Length}}
{{- end}}
}

PAGE_SIZE = {{hex .Board.PageSize}};
ENTRY(_start)

SECTIONS
{
  .stack {{hex .Symbols.Stack.Start}} (NOLOAD) :
  {
    _sstack = .;
    KEEP(*(.stack_buffer))
    . = {{hex .Symbols.Stack.End}};
    _estack = .;
  } > {{.Board.RAM.Name}}

  .text {{hex .Symbols.Text.Start}} :
  {
    _stext = .;
    KEEP(*(.start))
    *(.text .text.*)
    *(.rodata .rodata.*)
    *(.ARM.extab*)
  } > {{.Board.ROM.Name}}

  .ARM.exidx {{hex .Symbols.Unwind.Start}} :
  {
    _sunwind = .;
    *(.ARM.exidx* .gnu.linkonce.armexidx.*)
    _eunwind = .;
  } > {{.Board.ROM.Name}}

  .storage {{hex .Symbols.Storage.Start}} :
  {
    _sstorage = .;
    KEEP(*(.storage* storage*))
    . = ALIGN(PAGE_SIZE);
    _estorage = .;
  } > {{.Board.ROM.Name}}

  _etext = {{hex .Symbols.Etext}};

  .apps {{hex .Symbols.Apps.Start}} :
  {
    _sapps = .;
    KEEP(*(.apps*))
{{- range repeat .Placeholder}}
    BYTE({{hex $.Fill}})
{{- end}}
  } > {{.Board.Prog.Name}}

  _eapps = _sapps + LENGTH({{.Board.Prog.Name}});

  .relocate {{hex .Symbols.Relocate.Start}} : AT(_etext)
  {
    _srelocate = .;
    *(.ramfunc .ramfunc.*)
    *(.data .data.*)
    . = ALIGN(PAGE_SIZE);
    _erelocate = .;
  } > {{.Board.RAM.Name}}

  .sram {{hex .Symbols.Zero.Start}} (NOLOAD) :
  {
    _szero = .;
    *(.bss .bss.*)
    *(COMMON)
    . = ALIGN(PAGE_SIZE);
    _ezero = .;
  } > {{.Board.RAM.Name}}

  .app_memory {{hex .Symbols.AppMem.Start}} (NOLOAD) :
  {
    _sappmem = .;
    *(.app_memory)
  } > {{.Board.RAM.Name}}

  _eappmem = ORIGIN({{.Board.RAM.Name}}) + LENGTH({{.Board.RAM.Name}});
}

ASSERT(_estack == {{hex .Symbols.StackTop}}, "stack reservation exceeded")
ASSERT(_eunwind <= {{hex .Symbols.Unwind.End}}, "text and unwind index exceed reservation")
ASSERT(_estorage <= {{hex .Symbols.Storage.End}}, "storage exceeds reservation")
ASSERT(_erelocate <= {{hex .Symbols.Relocate.End}}, "relocated data exceeds reservation")
ASSERT(_ezero <= {{hex .Symbols.Zero.End}}, "zero data exceeds reservation")
ASSERT((_erelocate - _srelocate) % PAGE_SIZE == 0, "relocated data not page aligned")
ASSERT((_ezero - _szero) % PAGE_SIZE == 0, "zero data not page aligned")
`))

var asmHeader = template.Must(template.New("h").Funcs(funcs).Parse(`// Code generated by layoutctl for board {{.Board.Name}}. DO NOT EDIT.

#define STACK_TOP {{hex .Symbols.StackTop}}
#define ENTRY {{hex .Symbols.Entry}}
{{range $name := .Names}}
#define {{upper $name}} {{hex (index $.Map $name)}}
{{- end}}
`))

var goConstants = template.Must(template.New("go").Funcs(funcs).Parse(`// Code generated by layoutctl for board {{.Board.Name}}. DO NOT EDIT.

package {{.Package}}

const (
	// StackTop is the initial stack pointer value
	StackTop = {{hex .Symbols.StackTop}}
	// Entry is the reset entry address
	Entry = {{hex .Symbols.Entry}}
	// PageSize is the flash page size
	PageSize = {{hex .Board.PageSize}}
)

const (
{{- range $name := .Names}}
	{{upper $name}} = {{hex (index $.Map $name)}}
{{- end}}
)
`))

type generated struct {
	*Layout

	Package     string
	Names       []string
	Map         map[string]uint64
	Placeholder int
	Fill        uint64
}

func (l *Layout) generated(pkg string) *generated {
	return &generated{
		Layout:      l,
		Package:     pkg,
		Names:       l.Symbols.Names(),
		Map:         l.Symbols.Map(),
		Placeholder: AppsPlaceholder,
		Fill:        AppsFill,
	}
}

// WriteLinkerScript writes a GNU ld script placing every section at its
// computed address.
func WriteLinkerScript(w io.Writer, l *Layout) error {
	return linkerScript.Execute(w, l.generated(""))
}

// WriteAsmHeader writes the boundary symbols as assembler definitions, for
// inclusion by the reset entry.
func WriteAsmHeader(w io.Writer, l *Layout) error {
	return asmHeader.Execute(w, l.generated(""))
}

// WriteGoConstants writes the boundary symbols as Go constants of the given
// package.
func WriteGoConstants(w io.Writer, l *Layout, pkg string) (err error) {
	var buf bytes.Buffer

	if err = goConstants.Execute(&buf, l.generated(pkg)); err != nil {
		return
	}

	src, err := format.Source(buf.Bytes())

	if err != nil {
		return
	}

	_, err = w.Write(src)

	return
}
