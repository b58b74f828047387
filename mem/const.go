// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

const (
	// PageSize is the default flash erase/program granularity, storage,
	// relocated data and zero data are aligned to it at both ends.
	PageSize = 0x1000 // 4KB

	// StackAlign is the AArch64 stack pointer alignment.
	StackAlign = 16

	// WordAlign is the relocation copy granularity, the load address of
	// relocated data is aligned to it.
	WordAlign = 8

	// UnwindAlign is the alignment of the exception unwind index table.
	UnwindAlign = 4

	// AppsPlaceholder is the minimum number of bytes emitted in the
	// application binary area, some loaders drop empty output sections.
	AppsPlaceholder = 4

	// AppsFill is the value of placeholder bytes (erased flash).
	AppsFill = 0xff
)

// Symbol names exposed to firmware.
const (
	SymStext     = "_stext"
	SymEtext     = "_etext"
	SymSstack    = "_sstack"
	SymEstack    = "_estack"
	SymSunwind   = "_sunwind"
	SymEunwind   = "_eunwind"
	SymSstorage  = "_sstorage"
	SymEstorage  = "_estorage"
	SymSapps     = "_sapps"
	SymEapps     = "_eapps"
	SymSrelocate = "_srelocate"
	SymErelocate = "_erelocate"
	SymSzero     = "_szero"
	SymEzero     = "_ezero"
	SymSappmem   = "_sappmem"
	SymEappmem   = "_eappmem"
)

func alignUp(addr uint64, align uint64) uint64 {
	if align <= 1 {
		return addr
	}

	return (addr + align - 1) &^ (align - 1)
}

func aligned(addr uint64, align uint64) bool {
	if align <= 1 {
		return true
	}

	return addr&(align-1) == 0
}

func isPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
