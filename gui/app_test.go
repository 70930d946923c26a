package main

import (
	"testing"

	"github.com/axp64/alpha-emulator/vm"
)

func TestApp_LoadProgram(t *testing.T) {
	app := NewApp()

	entry := uint64(vm.CodeSegmentStart)
	source := "_start:\n\tADDQ ZERO, #42, R0\n\tCALL_PAL #0\n"
	err := app.LoadProgramFromSource(source, "test.s", entry)
	if err != nil {
		t.Fatalf("LoadProgramFromSource failed: %v", err)
	}

	// Get registers
	regs := app.GetRegisters()
	if regs.PC != entry {
		t.Errorf("expected PC=0x%X, got 0x%X", entry, regs.PC)
	}
}

func TestApp_StepExecution(t *testing.T) {
	app := NewApp()

	entry := uint64(vm.CodeSegmentStart)
	source := "_start:\n\tADDQ ZERO, #42, R0\n\tCALL_PAL #0\n"
	if err := app.LoadProgramFromSource(source, "test.s", entry); err != nil {
		t.Fatalf("LoadProgramFromSource failed: %v", err)
	}

	// Step once
	err := app.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// Check R0 changed
	regs := app.GetRegisters()
	if regs.Registers[0] != 42 {
		t.Errorf("expected R0=42, got %d", regs.Registers[0])
	}
}
