package jit_test

import (
	"reflect"
	"testing"

	"github.com/axp64/alpha-emulator/encoder"
	"github.com/axp64/alpha-emulator/jit"
	"github.com/axp64/alpha-emulator/vm"
)

func assembleOrFatal(t *testing.T, a *encoder.Assembler) []byte {
	t.Helper()
	b, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return b
}

func TestRegisteredCoversCuratedSubset(t *testing.T) {
	cases := []struct {
		name   string
		format vm.Format
		f      *vm.Fields
		want   bool
	}{
		{"ADDQ", vm.FormatOperate, &vm.Fields{Op: vm.OpINTA, Fnc: vm.FncADDQ}, true},
		{"SUBQ", vm.FormatOperate, &vm.Fields{Op: vm.OpINTA, Fnc: vm.FncSUBQ}, true},
		{"ADDL not curated", vm.FormatOperate, &vm.Fields{Op: vm.OpINTA, Fnc: vm.FncADDL}, false},
		{"BIS", vm.FormatOperate, &vm.Fields{Op: vm.OpINTL, Fnc: vm.FncBIS}, true},
		{"CMOVEQ", vm.FormatOperate, &vm.Fields{Op: vm.OpINTL, Fnc: vm.FncCMOVEQ}, true},
		{"MULQ not curated", vm.FormatOperate, &vm.Fields{Op: vm.OpINTM, Fnc: vm.FncMULQ}, false},
		{"ADDT", vm.FormatFpOperate, &vm.Fields{Op: vm.OpFLTI, Fnc: vm.FncADDT}, true},
		{"SQRTS", vm.FormatFpOperate, &vm.Fields{Op: vm.OpFLTI, Fnc: vm.FncSQRTS}, true},
		{"CMPTEQ not curated", vm.FormatFpOperate, &vm.Fields{Op: vm.OpFLTI, Fnc: vm.FncCMPTEQ}, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := jit.Registered(tt.format, tt.f); got != tt.want {
				t.Errorf("Registered(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCompileAddQRegisterForm(t *testing.T) {
	f := &vm.Fields{Op: vm.OpINTA, Fnc: vm.FncADDQ, Ra: 1, Rb: 2, Rc: 3}
	a, err := jit.Compile(vm.FormatOperate, f)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := assembleOrFatal(t, a)

	want := encoder.NewAssembler()
	want.MovLoadQ(jit.Scratch1, jit.IntRegBase, 1*8)
	want.MovLoadQ(jit.Scratch2, jit.IntRegBase, 2*8)
	want.AddRegReg(jit.Scratch1, jit.Scratch2)
	want.MovStoreQ(jit.IntRegBase, 3*8, jit.Scratch1)
	want.Ret()
	wantBytes := assembleOrFatal(t, want)

	if string(got) != string(wantBytes) {
		t.Errorf("compiled bytes = %x, want %x", got, wantBytes)
	}
}

func TestCompileAddQLiteralForm(t *testing.T) {
	f := &vm.Fields{Op: vm.OpINTA, Fnc: vm.FncADDQ, Ra: 1, Rc: 3, LitFlag: true, Lit: 42}
	a, err := jit.Compile(vm.FormatOperate, f)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := assembleOrFatal(t, a)

	want := encoder.NewAssembler()
	want.MovLoadQ(jit.Scratch1, jit.IntRegBase, 1*8)
	want.MovRegImm32(jit.Scratch2, 42)
	want.AddRegReg(jit.Scratch1, jit.Scratch2)
	want.MovStoreQ(jit.IntRegBase, 3*8, jit.Scratch1)
	want.Ret()
	wantBytes := assembleOrFatal(t, want)

	if string(got) != string(wantBytes) {
		t.Errorf("compiled bytes = %x, want %x", got, wantBytes)
	}
}

func TestCompileSkipsR31Store(t *testing.T) {
	f := &vm.Fields{Op: vm.OpINTL, Fnc: vm.FncXOR, Ra: 1, Rb: 2, Rc: vm.ZeroRegister}
	a, err := jit.Compile(vm.FormatOperate, f)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := assembleOrFatal(t, a)

	want := encoder.NewAssembler()
	want.MovLoadQ(jit.Scratch1, jit.IntRegBase, 1*8)
	want.MovLoadQ(jit.Scratch2, jit.IntRegBase, 2*8)
	want.XorRegReg(jit.Scratch1, jit.Scratch2)
	want.Ret()
	wantBytes := assembleOrFatal(t, want)

	if string(got) != string(wantBytes) {
		t.Errorf("compiled bytes = %x, want %x (no store to R31)", got, wantBytes)
	}
}

func TestCompileFpAdd(t *testing.T) {
	f := &vm.Fields{Op: vm.OpFLTI, Fnc: vm.FncADDT, Fa: 1, Fb: 2, Fc: 3}
	a, err := jit.Compile(vm.FormatFpOperate, f)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got := assembleOrFatal(t, a)

	want := encoder.NewAssembler()
	want.MovsdLoad(jit.FPScratch1, jit.FPRegBase, 1*8)
	want.MovsdLoad(jit.FPScratch2, jit.FPRegBase, 2*8)
	want.AddsdRegReg(jit.FPScratch1, jit.FPScratch2)
	want.MovsdStore(jit.FPRegBase, 3*8, jit.FPScratch1)
	want.Ret()
	wantBytes := assembleOrFatal(t, want)

	if string(got) != string(wantBytes) {
		t.Errorf("compiled bytes = %x, want %x", got, wantBytes)
	}
}

func TestCompileFallsBackForUncoveredOpcode(t *testing.T) {
	f := &vm.Fields{Op: vm.OpINTM, Fnc: vm.FncMULQ, Ra: 1, Rb: 2, Rc: 3}
	if jit.Registered(vm.FormatOperate, f) {
		t.Fatal("MULQ should not be in the curated native subset")
	}

	a, err := jit.Compile(vm.FormatOperate, f)
	if err != nil {
		t.Fatalf("Compile (fallback) failed: %v", err)
	}
	got := assembleOrFatal(t, a)

	handlerAddr := reflect.ValueOf(vm.ExecuteMultiply).Pointer()
	want := encoder.NewAssembler()
	want.MovRegImm64(jit.Scratch1, uint64(handlerAddr))
	want.CallReg(jit.Scratch1)
	want.Ret()
	wantBytes := assembleOrFatal(t, want)

	if string(got) != string(wantBytes) {
		t.Errorf("fallback bytes = %x, want %x", got, wantBytes)
	}
}

func TestCompileErrorsWithNoHandlerForFormat(t *testing.T) {
	f := &vm.Fields{Op: 0}
	if _, err := jit.Compile(vm.Format(99), f); err == nil {
		t.Error("expected an error compiling a format with no interpreter handler registered")
	}
}
