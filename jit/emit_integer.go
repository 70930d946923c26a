package jit

import (
	"github.com/axp64/alpha-emulator/encoder"
	"github.com/axp64/alpha-emulator/vm"
)

// loadInt materializes Ra/Rb into a scratch register, honoring R31's
// hardwired zero and the Operate format's register-or-literal Rb slot.
func loadInt(a *encoder.Assembler, dst encoder.Reg, idx int) {
	if idx == vm.ZeroRegister {
		a.MovRegImm32(dst, 0)
		return
	}
	a.MovLoadQ(dst, IntRegBase, intSlot(idx))
}

func loadIntOrLit(a *encoder.Assembler, dst encoder.Reg, f *vm.Fields) {
	if f.LitFlag {
		a.MovRegImm32(dst, int32(f.Lit)) // #nosec G115 -- Lit is an 8-bit zero-extended literal
		return
	}
	loadInt(a, dst, f.Rb)
}

// storeInt writes a scratch register back to Rc, silently discarding
// writes to R31 to match CPU.WriteInt's behavior.
func storeInt(a *encoder.Assembler, idx int, src encoder.Reg) {
	if idx == vm.ZeroRegister {
		return
	}
	a.MovStoreQ(IntRegBase, intSlot(idx), src)
}

// emitIntBinOp builds the common Ra OP (Rb|lit) -> Rc shape every
// registered Operate/logical emitter below reduces to. op is a method
// expression like (*encoder.Assembler).AddRegReg.
func emitIntBinOp(op func(a *encoder.Assembler, dst, src encoder.Reg)) Emitter {
	return func(a *encoder.Assembler, f *vm.Fields) error {
		loadInt(a, Scratch1, f.Ra)
		loadIntOrLit(a, Scratch2, f)
		op(a, Scratch1, Scratch2)
		storeInt(a, f.Rc, Scratch1)
		return nil
	}
}

// emitCmov builds a CMOVxx emitter: test Ra against the condition (via
// TestRegReg/CmpRegReg against zero), conditionally moving Rb|lit into
// Rc, leaving Rc unchanged otherwise. Rc must be loaded first since
// x86's CMOVcc only overwrites dst when the condition holds.
func emitCmov(cond encoder.Cond) Emitter {
	return func(a *encoder.Assembler, f *vm.Fields) error {
		loadInt(a, Scratch1, f.Ra)
		a.TestRegReg(Scratch1, Scratch1)
		loadInt(a, Scratch3, f.Rc)
		loadIntOrLit(a, Scratch2, f)
		a.CmovCC(cond, Scratch3, Scratch2)
		storeInt(a, f.Rc, Scratch3)
		return nil
	}
}

func init() {
	// Quadword integer arithmetic (spec.md section 4.6's curated ADD/SUB
	// family). Longword (*L) forms need a 32-bit add plus sign-extension
	// the encoder package does not yet emit and are left to the
	// interpreter fallback; see DESIGN.md.
	registerEmitter(vm.FormatOperate, vm.OpINTA, vm.FncADDQ, emitIntBinOp((*encoder.Assembler).AddRegReg))
	registerEmitter(vm.FormatOperate, vm.OpINTA, vm.FncSUBQ, emitIntBinOp((*encoder.Assembler).SubRegReg))

	// Logical family (OpINTL): AND/BIS(OR)/XOR.
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncAND, emitIntBinOp((*encoder.Assembler).AndRegReg))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncBIS, emitIntBinOp((*encoder.Assembler).OrRegReg))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncXOR, emitIntBinOp((*encoder.Assembler).XorRegReg))

	// Conditional-move family (OpINTL): each tests Ra against zero the
	// way the interpreter's logical.go does, then moves Rb|lit into Rc.
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVEQ, emitCmov(encoder.CondE))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVNE, emitCmov(encoder.CondNE))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVLT, emitCmov(encoder.CondL))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVLE, emitCmov(encoder.CondLE))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVGT, emitCmov(encoder.CondG))
	registerEmitter(vm.FormatOperate, vm.OpINTL, vm.FncCMOVGE, emitCmov(encoder.CondGE))
}
