package jit

import (
	"github.com/axp64/alpha-emulator/encoder"
	"github.com/axp64/alpha-emulator/vm"
)

// Emitter writes the host code implementing one decoded instruction's
// effect into a, given its already-decoded Fields.
type Emitter func(a *encoder.Assembler, f *vm.Fields) error

type opKey struct {
	format vm.Format
	op     uint32
	fnc    uint32
}

var emitters = make(map[opKey]Emitter)

// registerEmitter is called from each emit_*.go file's init() to build
// the coverage table; a (format, op, fnc) registered twice is a
// programming error, caught immediately rather than silently shadowed.
func registerEmitter(format vm.Format, op, fnc uint32, e Emitter) {
	key := opKey{format, op, fnc}
	if _, exists := emitters[key]; exists {
		panic("jit: duplicate emitter registration")
	}
	emitters[key] = e
}

// lookup finds the registered emitter for a decoded instruction, if any.
// Operate-format instructions are keyed on (op, fnc); every other format
// has one op-code per format and is keyed on (op, 0).
func lookup(format vm.Format, f *vm.Fields) (Emitter, bool) {
	switch format {
	case vm.FormatOperate, vm.FormatFpOperate:
		e, ok := emitters[opKey{format, f.Op, f.Fnc}]
		return e, ok
	default:
		e, ok := emitters[opKey{format, f.Op, 0}]
		return e, ok
	}
}

// Compile lowers one decoded instruction into a host routine: a
// registered emitter's output if one exists for (format, op[, fnc]),
// otherwise a host call into the matching interpreter handler (spec.md
// section 4.6's coverage rule). The returned Assembler's Bytes() is
// ready to run under the calling convention documented in convention.go.
func Compile(format vm.Format, f *vm.Fields) (*encoder.Assembler, error) {
	a := encoder.NewAssembler()

	if emit, ok := lookup(format, f); ok {
		if err := emit(a, f); err != nil {
			return nil, encoder.WrapAssembleError(0, err)
		}
	} else if err := emitFallback(a, format, f); err != nil {
		return nil, err
	}

	a.Ret()
	if _, err := a.Bytes(); err != nil {
		return nil, err
	}
	return a, nil
}

// Registered reports whether a native emitter exists for (format, f),
// without compiling it; used by callers deciding whether a block is
// worth promoting to the JIT at all (config.Config.Execution.JITThreshold).
func Registered(format vm.Format, f *vm.Fields) bool {
	_, ok := lookup(format, f)
	return ok
}
