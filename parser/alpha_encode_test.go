package parser_test

import (
	"testing"

	"github.com/axp64/alpha-emulator/parser"
	"github.com/axp64/alpha-emulator/vm"
)

func encodeSource(t *testing.T, source string) ([]uint32, *parser.Program) {
	t.Helper()
	p := parser.NewParser(source, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	words := make([]uint32, len(program.Instructions))
	for i, inst := range program.Instructions {
		word, err := parser.EncodeInstruction(inst, inst.Address, program.SymbolTable)
		if err != nil {
			t.Fatalf("EncodeInstruction(%s) failed: %v", inst.Mnemonic, err)
		}
		words[i] = word
	}
	return words, program
}

func TestEncodeMemRef(t *testing.T) {
	words, _ := encodeSource(t, `LDQ R1, 8(R30)`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatMemRef {
		t.Fatalf("format = %v, want FormatMemRef", format)
	}
	if fields.Op != vm.OpLDQ || fields.Ra != 1 || fields.Rb != 30 || fields.Disp != 8 {
		t.Errorf("fields = %+v, want Op=OpLDQ Ra=1 Rb=30 Disp=8", fields)
	}
}

func TestEncodeMemRefZeroDisplacement(t *testing.T) {
	words, _ := encodeSource(t, `LDQ R1, (R30)`)
	_, fields := vm.Decode(words[0])
	if fields.Disp != 0 || fields.Rb != 30 {
		t.Errorf("fields = %+v, want Disp=0 Rb=30", fields)
	}
}

func TestEncodeOperateRegister(t *testing.T) {
	words, _ := encodeSource(t, `ADDQ R1, R2, R3`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatOperate {
		t.Fatalf("format = %v, want FormatOperate", format)
	}
	if fields.Op != vm.OpINTA || fields.Fnc != vm.FncADDQ || fields.Ra != 1 || fields.Rb != 2 || fields.Rc != 3 {
		t.Errorf("fields = %+v, want Op=OpINTA Fnc=FncADDQ Ra=1 Rb=2 Rc=3", fields)
	}
	if fields.LitFlag {
		t.Error("expected LitFlag false for register form")
	}
}

func TestEncodeOperateLiteral(t *testing.T) {
	words, _ := encodeSource(t, `ADDQ R1, #42, R3`)
	_, fields := vm.Decode(words[0])
	if !fields.LitFlag || fields.Lit != 42 {
		t.Errorf("fields = %+v, want LitFlag=true Lit=42", fields)
	}
}

func TestEncodeOperateOverflowSuffix(t *testing.T) {
	words, _ := encodeSource(t, `ADDQ/V R1, R2, R3`)
	_, fields := vm.Decode(words[0])
	if fields.Fnc != vm.FncADDQV {
		t.Errorf("Fnc = %#x, want FncADDQV", fields.Fnc)
	}
}

func TestEncodeLogicalAndByteManip(t *testing.T) {
	tests := []struct {
		source string
		fnc    uint32
	}{
		{"BIS R1, R2, R3", vm.FncBIS},
		{"XOR R1, R2, R3", vm.FncXOR},
		{"ZAPNOT R1, #3, R2", vm.FncZAPNOT},
		{"SLL R1, #4, R2", vm.FncSLL},
		{"EXTQL R1, R2, R3", vm.FncEXTQL},
	}
	for _, tt := range tests {
		words, _ := encodeSource(t, tt.source)
		_, fields := vm.Decode(words[0])
		if fields.Fnc != tt.fnc {
			t.Errorf("%s: Fnc = %#x, want %#x", tt.source, fields.Fnc, tt.fnc)
		}
	}
}

func TestEncodeMultiply(t *testing.T) {
	words, _ := encodeSource(t, `MULQ R1, R2, R3`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatOperate || fields.Op != vm.OpINTM || fields.Fnc != vm.FncMULQ {
		t.Errorf("fields = %+v, want Op=OpINTM Fnc=FncMULQ", fields)
	}
}

func TestEncodeFpOperateThreeOperand(t *testing.T) {
	words, _ := encodeSource(t, `ADDT F1, F2, F3`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatFpOperate {
		t.Fatalf("format = %v, want FormatFpOperate", format)
	}
	if fields.Fnc != vm.FncADDT || fields.Fa != 1 || fields.Fb != 2 || fields.Fc != 3 {
		t.Errorf("fields = %+v, want Fnc=FncADDT Fa=1 Fb=2 Fc=3", fields)
	}
}

func TestEncodeFpOperateTwoOperand(t *testing.T) {
	// SQRTT ignores Fa; the encoder fills it with F31 (hardwired zero).
	words, _ := encodeSource(t, `SQRTT F2, F3`)
	_, fields := vm.Decode(words[0])
	if fields.Fa != 31 || fields.Fb != 2 || fields.Fc != 3 || fields.Fnc != vm.FncSQRTT {
		t.Errorf("fields = %+v, want Fa=31 Fb=2 Fc=3 Fnc=FncSQRTT", fields)
	}
}

func TestEncodeBranchForward(t *testing.T) {
	words, _ := encodeSource(t, `
		BEQ R1, target
		ADDQ R0, #1, R0
target:	RET (R26)
	`)
	_, fields := vm.Decode(words[0])
	// target is 2 instructions (8 bytes) after the BEQ; displacement is
	// relative to the BEQ's own address+4.
	if fields.Disp != 1 {
		t.Errorf("Disp = %d, want 1", fields.Disp)
	}
}

func TestEncodeBranchUnconditionalNoRegister(t *testing.T) {
	words, _ := encodeSource(t, `
		BR target
target:	RET (R26)
	`)
	_, fields := vm.Decode(words[0])
	if fields.Ra != 31 {
		t.Errorf("Ra = %d, want 31 (R31 default for single-operand BR)", fields.Ra)
	}
	if fields.Disp != 0 {
		t.Errorf("Disp = %d, want 0", fields.Disp)
	}
}

func TestEncodeBranchUndefinedLabel(t *testing.T) {
	p := parser.NewParser(`BEQ R1, nowhere`, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	inst := program.Instructions[0]
	if _, err := parser.EncodeInstruction(inst, inst.Address, program.SymbolTable); err == nil {
		t.Error("expected error encoding branch to undefined label")
	}
}

func TestEncodeJump(t *testing.T) {
	words, _ := encodeSource(t, `JSR R26, (R27)`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatJump {
		t.Fatalf("format = %v, want FormatJump", format)
	}
	if fields.Ra != 26 || fields.Rb != 27 {
		t.Errorf("fields = %+v, want Ra=26 Rb=27", fields)
	}
	if kind := (fields.MemFnc >> 14) & 0x3; kind != vm.JumpKindJsr {
		t.Errorf("jump kind = %d, want JumpKindJsr", kind)
	}
}

func TestEncodeJumpRetSingleOperand(t *testing.T) {
	words, _ := encodeSource(t, `RET (R26)`)
	_, fields := vm.Decode(words[0])
	if fields.Ra != 31 || fields.Rb != 26 {
		t.Errorf("fields = %+v, want Ra=31 Rb=26", fields)
	}
	if kind := (fields.MemFnc >> 14) & 0x3; kind != vm.JumpKindRet {
		t.Errorf("jump kind = %d, want JumpKindRet", kind)
	}
}

func TestEncodePal(t *testing.T) {
	words, _ := encodeSource(t, `CALL_PAL #0x83`)
	format, fields := vm.Decode(words[0])
	if format != vm.FormatPal {
		t.Fatalf("format = %v, want FormatPal", format)
	}
	if fields.PalFnc != 0x83 {
		t.Errorf("PalFnc = %#x, want 0x83", fields.PalFnc)
	}
}

func TestEncodeRegisterAliases(t *testing.T) {
	words, _ := encodeSource(t, `ADDQ SP, ZERO, PV`)
	_, fields := vm.Decode(words[0])
	if fields.Ra != 30 || fields.Rb != 31 || fields.Rc != 27 {
		t.Errorf("fields = %+v, want Ra=30(SP) Rb=31(ZERO) Rc=27(PV)", fields)
	}
}

func TestEncodeUnrecognizedMnemonic(t *testing.T) {
	p := parser.NewParser(`FROBNICATE R1, R2, R3`, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	inst := program.Instructions[0]
	if _, err := parser.EncodeInstruction(inst, inst.Address, program.SymbolTable); err == nil {
		t.Error("expected error for unrecognized mnemonic")
	}
}
