package loader_test

import (
	"strings"
	"testing"

	"github.com/axp64/alpha-emulator/loader"
	"github.com/axp64/alpha-emulator/parser"
	"github.com/axp64/alpha-emulator/vm"
)

func parseAndLoad(t *testing.T, source string, entryPoint uint32) (*vm.VM, *parser.Program) {
	t.Helper()
	p := parser.NewParser(source, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	machine := vm.NewVM()
	if err := loader.LoadProgramIntoVM(machine, program, entryPoint); err != nil {
		t.Fatalf("LoadProgramIntoVM failed: %v", err)
	}
	return machine, program
}

func readWord(t *testing.T, machine *vm.VM, addr uint64) uint32 {
	t.Helper()
	v, fault := machine.Memory.ReadVA(0, addr, 4)
	if fault != nil {
		t.Fatalf("ReadVA(0x%08X) failed: %v", addr, fault)
	}
	return uint32(v)
}

func TestLoadProgramEncodesInstructions(t *testing.T) {
	source := `
_start:	ADDQ R1, #1, R2
		RET (R26)
	`
	machine, program := parseAndLoad(t, source, uint32(vm.CodeSegmentStart))

	for _, inst := range program.Instructions {
		want, err := parser.EncodeInstruction(inst, inst.Address, program.SymbolTable)
		if err != nil {
			t.Fatalf("EncodeInstruction(%s) failed: %v", inst.Mnemonic, err)
		}
		got := readWord(t, machine, uint64(inst.Address))
		if got != want {
			t.Errorf("memory at 0x%08X = %#08x, want %#08x (%s)", inst.Address, got, want, inst.Mnemonic)
		}
	}
}

func TestLoadProgramSetsEntryPoint(t *testing.T) {
	entry := uint32(vm.CodeSegmentStart)
	machine, _ := parseAndLoad(t, `_start:	RET (R26)`, entry)

	if machine.CPU.PC != uint64(entry) {
		t.Errorf("CPU.PC = %#x, want %#x", machine.CPU.PC, entry)
	}
	if machine.EntryPoint != uint64(entry) {
		t.Errorf("EntryPoint = %#x, want %#x", machine.EntryPoint, entry)
	}
}

func TestLoadProgramWordDirective(t *testing.T) {
	source := `
		.word 0xDEADBEEF
	_start:	RET (R26)
	`
	machine, program := parseAndLoad(t, source, uint32(vm.CodeSegmentStart))

	var wordDir *parser.Directive
	for _, d := range program.Directives {
		if d.Name == ".word" {
			wordDir = d
			break
		}
	}
	if wordDir == nil {
		t.Fatal("expected a .word directive in parsed program")
	}
	got := readWord(t, machine, uint64(wordDir.Address))
	if got != 0xDEADBEEF {
		t.Errorf(".word value = %#08x, want 0xDEADBEEF", got)
	}
}

func TestLoadProgramAsciizDirective(t *testing.T) {
	source := `
		.asciz "hi"
	_start:	RET (R26)
	`
	machine, program := parseAndLoad(t, source, uint32(vm.CodeSegmentStart))

	var strDir *parser.Directive
	for _, d := range program.Directives {
		if d.Name == ".asciz" {
			strDir = d
			break
		}
	}
	if strDir == nil {
		t.Fatal("expected an .asciz directive in parsed program")
	}

	want := []byte("hi\x00")
	for i, wantByte := range want {
		v, fault := machine.Memory.ReadVA(0, uint64(strDir.Address)+uint64(i), 1)
		if fault != nil {
			t.Fatalf("read failed at offset %d: %v", i, fault)
		}
		if byte(v) != wantByte {
			t.Errorf("byte %d = %#02x, want %#02x", i, v, wantByte)
		}
	}
}

func TestLoadProgramUndefinedBranchLabelFails(t *testing.T) {
	p := parser.NewParser(`BEQ R1, nowhere`, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	machine := vm.NewVM()
	if err := loader.LoadProgramIntoVM(machine, program, uint32(vm.CodeSegmentStart)); err == nil {
		t.Error("expected an error loading a program with an undefined branch target")
	}
}

func TestLoadProgramLowMemoryEntryPoint(t *testing.T) {
	source := `_start:	RET (R26)`
	p := parser.NewParser(source, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	machine := vm.NewVM()
	if err := loader.LoadProgramIntoVM(machine, program, 0); err != nil {
		t.Fatalf("LoadProgramIntoVM failed: %v", err)
	}

	inst := program.Instructions[0]
	want, err := parser.EncodeInstruction(inst, inst.Address, program.SymbolTable)
	if err != nil {
		t.Fatalf("EncodeInstruction failed: %v", err)
	}
	got := readWord(t, machine, uint64(inst.Address))
	if got != want {
		t.Errorf("memory at 0x%08X = %#08x, want %#08x", inst.Address, got, want)
	}
	if machine.CPU.PC != 0 {
		t.Errorf("CPU.PC = %#x, want 0", machine.CPU.PC)
	}
}

func TestLoadProgramUnrecognizedMnemonicFails(t *testing.T) {
	p := parser.NewParser(`FROBNICATE R1, R2, R3`, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	machine := vm.NewVM()
	err = loader.LoadProgramIntoVM(machine, program, uint32(vm.CodeSegmentStart))
	if err == nil {
		t.Fatal("expected an error for an unrecognized mnemonic")
	}
	if !strings.Contains(err.Error(), "FROBNICATE") {
		t.Errorf("error = %v, want it to name the offending instruction", err)
	}
}
