package jit

import (
	"fmt"
	"reflect"

	"github.com/axp64/alpha-emulator/encoder"
	"github.com/axp64/alpha-emulator/vm"
)

// HandlerFunc is the uniform signature every per-format interpreter
// entry point shares (vm/operate.go's ExecuteIntArith and its siblings),
// which is what lets the fallback path key off format alone rather than
// needing one trampoline per op-code.
type HandlerFunc func(v *vm.VM, f *vm.Fields, pc uint64) *vm.Trap

// handlerTable names, for each format the JIT ever sees, the interpreter
// entry point a fallback call resolves to. FormatOperate fans out by
// sub-opcode the same way vm.VM.dispatch does.
var handlerTable = map[vm.Format]map[uint32]HandlerFunc{
	vm.FormatMemRef:    {0: vm.ExecuteMemRef},
	vm.FormatMemFunc:   {0: vm.ExecuteMemFunc},
	vm.FormatBranch:    {0: vm.ExecuteBranch},
	vm.FormatJump:      {0: vm.ExecuteJump},
	vm.FormatFpOperate: {0: vm.ExecuteFpOperate},
	vm.FormatOperate: {
		vm.OpINTA: vm.ExecuteIntArith,
		vm.OpINTL: vm.ExecuteLogical,
		vm.OpINTS: vm.ExecuteByteManip,
		vm.OpINTM: vm.ExecuteMultiply,
		vm.OpINTV: vm.ExecuteIntVector,
	},
}

func resolveHandler(format vm.Format, op uint32) (HandlerFunc, bool) {
	byOp, ok := handlerTable[format]
	if !ok {
		return nil, false
	}
	if format == vm.FormatOperate {
		h, ok := byOp[op]
		return h, ok
	}
	h, ok := byOp[0]
	return h, ok
}

// emitFallback emits a host call into the interpreter handler for
// (format, f) — the path taken for every (format, op-code) without a
// registered native emitter (spec.md section 4.6). The compiled routine
// is a thin shim: it does not itself reproduce the calling convention
// documented in convention.go (IntRegBase/FPRegBase), since the target
// is a Go function rather than a hand-written host routine. A real
// deployment resolves handlerAddr through an asm trampoline honoring
// Go's internal ABI and stack-growth prologue; this codegen path models
// the dispatch mechanism the way the rest of the JIT does, leaving that
// trampoline as a host-integration concern outside this package (see
// DESIGN.md).
func emitFallback(a *encoder.Assembler, format vm.Format, f *vm.Fields) error {
	handler, ok := resolveHandler(format, f.Op)
	if !ok {
		return fmt.Errorf("jit: no interpreter handler registered for format %v op %#x", format, f.Op)
	}
	addr := reflect.ValueOf(handler).Pointer()
	a.MovRegImm64(Scratch1, uint64(addr))
	a.CallReg(Scratch1)
	return nil
}
