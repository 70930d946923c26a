package jit

import "github.com/axp64/alpha-emulator/vm"

// NewHook builds a vm.JITHook that promotes Operate and FpOperate
// instructions to compiled native code once they have executed
// threshold times at the same PC with the same decoded Fields
// (config.Config.Execution.JITThreshold). Only instructions Registered
// with a native emitter are ever promoted to run natively; everything
// else returns false and falls through to the interpreter, so the
// host-call-into-interpreter path built in fallback.go is compiled for
// completeness but never itself reached through this hook (see
// DESIGN.md). On a platform without a native backend (!Supported),
// NewHook returns nil and the caller leaves VM.JIT unset.
func NewHook(threshold int) vm.JITHook {
	if !Supported {
		return nil
	}

	cache := NewCache()
	return func(v *vm.VM, format vm.Format, f *vm.Fields, pc uint64) bool {
		if !Registered(format, f) {
			return false
		}

		block, hits := cache.Touch(pc, *f)
		if block == nil {
			if hits < threshold {
				return false
			}
			asm, err := Compile(format, f)
			if err != nil {
				return false
			}
			code, err := asm.Bytes()
			if err != nil {
				return false
			}
			block, err = mapExecutable(code)
			if err != nil {
				return false
			}
			cache.Store(pc, *f, block)
		}

		block.run(&v.CPU.R, &v.CPU.F)
		v.CPU.AdvancePC()
		return true
	}
}
