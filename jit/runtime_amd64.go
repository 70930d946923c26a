//go:build amd64 && unix

package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Supported reports whether this build can map and execute compiled
// code natively. Platforms outside amd64/unix use runtime_other.go's
// stub and always fall back to the interpreter.
const Supported = true

// executableBlock is a compiled routine's machine code mapped into a
// PROT_EXEC page, ready for callCompiled.
type executableBlock struct {
	mem []byte
}

// mapExecutable copies code into a freshly mmap'd page and flips it
// from writable to executable. A cache miss (self-modifying code,
// Cache.Touch) always recompiles from scratch rather than patching an
// existing mapping, so this never needs to grow or remap in place.
func mapExecutable(code []byte) (*executableBlock, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jit: empty code segment")
	}
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("jit: mprotect: %w", err)
	}
	return &executableBlock{mem: mem}, nil
}

// Close unmaps the block's executable page.
func (b *executableBlock) Close() error {
	return unix.Munmap(b.mem)
}

// run transfers control to the compiled routine under the calling
// convention documented in convention.go: IntRegBase/FPRegBase loaded
// from intRegs/fpRegs, return via a plain RET once Rc/Fc are updated.
func (b *executableBlock) run(intRegs, fpRegs *[32]uint64) {
	callCompiled(uintptr(unsafe.Pointer(&b.mem[0])), unsafe.Pointer(intRegs), unsafe.Pointer(fpRegs))
}

// callCompiled is implemented in runtime_amd64.s: it loads intRegs into
// RDI and fpRegs into RSI (jit.IntRegBase/FPRegBase) and calls code.
func callCompiled(code uintptr, intRegs, fpRegs unsafe.Pointer)
