package jit

import (
	"github.com/axp64/alpha-emulator/encoder"
	"github.com/axp64/alpha-emulator/vm"
)

// loadFP loads Fa/Fb into a scratch XMM, honoring F31's hardwired +0.0.
func loadFP(a *encoder.Assembler, dst encoder.XMM, idx int) {
	if idx == vm.ZeroRegister {
		// F31 reads as +0.0; materialize it via cvtsi2sd from an integer
		// zero rather than touching the guest register array, since there
		// is no F31 slot to clobber-free read from.
		a.MovRegImm32(Scratch1, 0)
		a.Cvtsi2sdRegReg(dst, Scratch1)
		return
	}
	a.MovsdLoad(dst, FPRegBase, fpSlot(idx))
}

func storeFP(a *encoder.Assembler, idx int, src encoder.XMM) {
	if idx == vm.ZeroRegister {
		return
	}
	a.MovsdStore(FPRegBase, fpSlot(idx), src)
}

// emitFpBinOp builds the common Fa OP Fb -> Fc shape every registered
// ADD/SUB/MUL/DIV emitter reduces to. Both S and T precision route
// through the same scalar-double host op: this core carries every FP
// value in a single native float64 working format (vm/fpoperate.go).
func emitFpBinOp(op func(a *encoder.Assembler, dst, src encoder.XMM)) Emitter {
	return func(a *encoder.Assembler, f *vm.Fields) error {
		loadFP(a, FPScratch1, f.Fa)
		loadFP(a, FPScratch2, f.Fb)
		op(a, FPScratch1, FPScratch2)
		storeFP(a, f.Fc, FPScratch1)
		return nil
	}
}

func emitFpSqrt(a *encoder.Assembler, f *vm.Fields) error {
	loadFP(a, FPScratch1, f.Fb)
	a.SqrtsdRegReg(FPScratch1, FPScratch1)
	storeFP(a, f.Fc, FPScratch1)
	return nil
}

func init() {
	add := emitFpBinOp((*encoder.Assembler).AddsdRegReg)
	sub := emitFpBinOp((*encoder.Assembler).SubsdRegReg)
	mul := emitFpBinOp((*encoder.Assembler).MulsdRegReg)
	div := emitFpBinOp((*encoder.Assembler).DivsdRegReg)

	for _, fnc := range []uint32{vm.FncADDS, vm.FncADDT} {
		registerEmitter(vm.FormatFpOperate, vm.OpFLTI, fnc, add)
	}
	for _, fnc := range []uint32{vm.FncSUBS, vm.FncSUBT} {
		registerEmitter(vm.FormatFpOperate, vm.OpFLTI, fnc, sub)
	}
	for _, fnc := range []uint32{vm.FncMULS, vm.FncMULT} {
		registerEmitter(vm.FormatFpOperate, vm.OpFLTI, fnc, mul)
	}
	for _, fnc := range []uint32{vm.FncDIVS, vm.FncDIVT} {
		registerEmitter(vm.FormatFpOperate, vm.OpFLTI, fnc, div)
	}
	registerEmitter(vm.FormatFpOperate, vm.OpFLTI, vm.FncSQRTS, emitFpSqrt)
	registerEmitter(vm.FormatFpOperate, vm.OpFLTI, vm.FncSQRTT, emitFpSqrt)
}
