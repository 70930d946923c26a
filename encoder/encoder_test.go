package encoder

import (
	"bytes"
	"testing"
)

func TestMovRegRegEncoding(t *testing.T) {
	a := NewAssembler()
	a.MovRegReg(RAX, RBX)
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0x48, 0x89, 0xD8} // mov rax, rbx
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestAddRegRegEncoding(t *testing.T) {
	a := NewAssembler()
	a.AddRegReg(RCX, RDX)
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0x48, 0x01, 0xD1} // add rcx, rdx
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestMovRegImm64Encoding(t *testing.T) {
	a := NewAssembler()
	a.MovRegImm64(RAX, 0x1122334455667788)
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0x48, 0xB8, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestExtendedRegisterSetsRexBit(t *testing.T) {
	a := NewAssembler()
	a.MovRegReg(R8, RAX) // mov r8, rax
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	// REX.W|REX.B set since dst (rm field) is r8.
	want := []byte{0x49, 0x89, 0xC0}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestJmpLabelFixupPatchesRel32(t *testing.T) {
	a := NewAssembler()
	target := a.NewLabel()
	a.Jmp(target)
	a.Nop()
	a.Nop()
	a.BindLabel(target)
	a.Nop()

	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if got[0] != 0xE9 {
		t.Fatalf("first byte = %#x, want 0xE9 (JMP rel32)", got[0])
	}
	rel := int32(uint32(got[1]) | uint32(got[2])<<8 | uint32(got[3])<<16 | uint32(got[4])<<24)
	// Two NOPs sit between the end of the jump instruction and the label.
	if rel != 2 {
		t.Errorf("rel32 = %d, want 2", rel)
	}
}

func TestUnboundLabelIsAnError(t *testing.T) {
	a := NewAssembler()
	l := a.NewLabel()
	a.Jmp(l)
	if _, err := a.Bytes(); err == nil {
		t.Fatal("expected an error for an unbound label fixup")
	}
}

func TestCmovCCEncoding(t *testing.T) {
	a := NewAssembler()
	a.CmovCC(CondE, RAX, RBX) // cmove rax, rbx
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0x48, 0x0F, 0x44, 0xC3}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}
