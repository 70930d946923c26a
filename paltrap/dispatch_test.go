package paltrap

import (
	"bytes"
	"testing"

	"github.com/axp64/alpha-emulator/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	v := vm.NewVM()
	v.PAL = NewDispatcher("Alpha")
	v.OutputWriter = &bytes.Buffer{}
	v.State = vm.StateRunning
	return v
}

func TestHaltCallHandlerStopsVM(t *testing.T) {
	v := newTestVM(t)
	v.CPU.WriteInt(vm.RA0, 7)

	word, err := vm.Encode(vm.FormatPal, vm.Fields{Op: vm.OpPAL, PalFnc: AlphaFnHALT})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := v.LoadProgram(leBytes(word), vm.CodeSegmentStart); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	v.State = vm.StateRunning

	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.State != vm.StateHalted {
		t.Fatalf("state = %v, want StateHalted", v.State)
	}
	if v.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", v.ExitCode)
	}
}

func TestUnrecognizedPALFunctionRaisesReservedInstruction(t *testing.T) {
	v := newTestVM(t)
	word, _ := vm.Encode(vm.FormatPal, vm.Fields{Op: vm.OpPAL, PalFnc: 0x7F})
	if err := v.LoadProgram(leBytes(word), vm.CodeSegmentStart); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	v.State = vm.StateRunning

	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.State != vm.StateRunning {
		t.Fatalf("state = %v, want StateRunning (trap delivered into PAL entry point)", v.State)
	}
	if v.CPU.PS.Mode != vm.ModeKernel {
		t.Fatalf("PS.Mode = %v, want ModeKernel after trap delivery", v.CPU.PS.Mode)
	}
}

func TestBptThenReiRoundTripsExceptionFrame(t *testing.T) {
	v := newTestVM(t)
	v.CPU.WriteInt(vm.SP, 0x12345678)
	v.CPU.PS.Mode = vm.ModeUser

	bpt, _ := vm.Encode(vm.FormatPal, vm.Fields{Op: vm.OpPAL, PalFnc: AlphaFnBPT})
	rei, _ := vm.Encode(vm.FormatPal, vm.Fields{Op: vm.OpPAL, PalFnc: AlphaFnREI})

	dispatcher := v.PAL.(*Dispatcher)
	entry := dispatcher.Personality.EntryPoints[vm.TrapBreakpoint]

	prog := append(leBytes(bpt), make([]byte, 0)...)
	if err := v.LoadProgram(prog, vm.CodeSegmentStart); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if err := (v.Memory.(*vm.Memory)).LoadBytes(entry, leBytes(rei)); err != nil {
		t.Fatalf("LoadBytes(REI): %v", err)
	}
	v.State = vm.StateRunning

	if err := v.Step(); err != nil { // executes BPT, traps into the PAL entry point
		t.Fatalf("Step (bpt): %v", err)
	}
	if v.CPU.PC != entry {
		t.Fatalf("PC after trap = 0x%X, want entry 0x%X", v.CPU.PC, entry)
	}
	if v.CPU.PS.Mode != vm.ModeKernel {
		t.Fatalf("PS.Mode after trap = %v, want ModeKernel", v.CPU.PS.Mode)
	}

	if err := v.Step(); err != nil { // executes REI, restores saved state
		t.Fatalf("Step (rei): %v", err)
	}
	if v.CPU.PS.Mode != vm.ModeUser {
		t.Fatalf("PS.Mode after REI = %v, want ModeUser (restored)", v.CPU.PS.Mode)
	}
	if v.CPU.ReadInt(vm.SP) != 0x12345678 {
		t.Fatalf("SP after REI = 0x%X, want restored 0x12345678", v.CPU.ReadInt(vm.SP))
	}
	if v.CPU.PC != vm.CodeSegmentStart+4 {
		t.Fatalf("PC after REI = 0x%X, want 0x%X (resume after the faulting BPT)", v.CPU.PC, vm.CodeSegmentStart+4)
	}
}

func leBytes(word uint32) []byte {
	return []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
}
