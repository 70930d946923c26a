package paltrap

import "github.com/axp64/alpha-emulator/vm"

// The handlers in this file implement PALcode actions whose architected
// behavior does not vary across personalities; each personality's
// constants_*.go wires the same function under whatever numeric function
// code that personality assigns it.

// haltHandler stops the CPU (spec.md section 4.7's Running -> Halted
// transition). The guest's requested exit code is read from R16 (RA0),
// the first argument register.
func haltHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.ExitCode = int32(v.CPU.ReadInt(vm.RA0))
	v.State = vm.StateHalted
	return nil
}

// imbHandler implements IMB (instruction-memory barrier): this core has
// no separate instruction cache to flush, so it is a no-op that still
// consumes a cycle and advances PC like any other instruction.
func imbHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.AdvancePC()
	return nil
}

// drainaHandler implements DRAINA (drain aborts): nothing is in flight in
// a functional-only core, so it is a no-op.
func drainaHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.AdvancePC()
	return nil
}

// rdUniqueHandler implements RDUNIQUE: returns the per-thread unique value
// in R0.
func rdUniqueHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.WriteInt(vm.R0, v.CPU.PALUnique)
	v.CPU.AdvancePC()
	return nil
}

// wrUniqueHandler implements WRUNIQUE: stores R16 (the architected input
// register for PALcode calls) into the per-thread unique value.
func wrUniqueHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.PALUnique = v.CPU.ReadInt(vm.RA0)
	v.CPU.AdvancePC()
	return nil
}

// swpiplHandler implements SWPIPL: swaps the current IPL for the one in
// R16, returning the old value in R0.
func swpiplHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	old := v.CPU.PS.IPL
	v.CPU.PS.IPL = int(v.CPU.ReadInt(vm.RA0) & 0x1F)
	v.CPU.WriteInt(vm.R0, uint64(old))
	v.CPU.AdvancePC()
	return nil
}

// rdpsHandler implements RDPS: returns the packed processor status in R0,
// the same encoding the exception frame stores it in.
func rdpsHandler(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.WriteInt(vm.R0, packPS(&v.CPU.PS))
	v.CPU.AdvancePC()
	return nil
}

// softwareTrapReturnPC is the PC a synchronous software trap (BPT, BUGCHK,
// GENTRAP) saves for its eventual REI: unlike a hardware fault, the
// CALL_PAL instruction itself completes, so the guest resumes at the next
// instruction rather than retrying this one.
func softwareTrapReturnPC(pc uint64) uint64 { return pc + vm.AlphaInstructionSize }

// bptHandler implements BPT: re-enters the full trap sequence as a
// Breakpoint, the architected behavior of a CALL_PAL BPT (used by
// debuggers, spec.md section 4.8).
func bptHandler(_ *Dispatcher, v *vm.VM, _ uint32, pc uint64) *vm.Trap {
	return vm.NewTrap(vm.TrapBreakpoint, softwareTrapReturnPC(pc))
}

// bugchkHandler implements BUGCHK, the guest-requested internal-consistency
// trap.
func bugchkHandler(_ *Dispatcher, v *vm.VM, _ uint32, pc uint64) *vm.Trap {
	return vm.NewTrap(vm.TrapBugCheck, softwareTrapReturnPC(pc))
}

// gentrapHandler implements GENTRAP, a generic software-raised trap
// (compiler-inserted range checks and the like).
func gentrapHandler(_ *Dispatcher, v *vm.VM, _ uint32, pc uint64) *vm.Trap {
	return vm.NewTrap(vm.TrapGenericTrap, softwareTrapReturnPC(pc))
}

// exitHandler implements the personality's exit instruction (REI on
// Alpha-native, RFE on VAX, RETSYS on Tru64): pop the top exception frame
// and restore PC, PS, FPCR, and the call-preserved registers it saved
// (spec.md section 4.8 point 4).
func exitHandler(d *Dispatcher, v *vm.VM, _ uint32, pc uint64) *vm.Trap {
	f := d.exitFrame()
	if f == nil {
		return vm.NewTrap(vm.TrapBugCheck, pc)
	}
	v.CPU.PS = unpackPS(f.PS)
	v.CPU.FPCR.FromUint64(f.FPCR)
	v.CPU.WriteInt(vm.RA, f.RA)
	v.CPU.WriteInt(vm.PV, f.PV)
	v.CPU.WriteInt(vm.SP, f.SP)
	v.CPU.WritePC(f.PC)
	return nil
}
