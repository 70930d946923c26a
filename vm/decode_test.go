package vm

import "testing"

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		fields Fields
	}{
		{"ADDQ reg-reg", FormatOperate, Fields{Op: OpINTA, Ra: 1, Rb: 2, Rc: 3, Fnc: FncADDQ}},
		{"ADDQ literal", FormatOperate, Fields{Op: OpINTA, Ra: 1, Rc: 3, Fnc: FncADDQ, LitFlag: true, Lit: 42}},
		{"BEQ forward", FormatBranch, Fields{Op: OpBEQ, Ra: 4, Disp: 100}},
		{"BNE backward", FormatBranch, Fields{Op: OpBNE, Ra: 4, Disp: -100}},
		{"LDQ", FormatMemRef, Fields{Op: OpLDQ, Ra: 5, Rb: 30, Disp: -8}},
		{"ADDT", FormatFpOperate, Fields{Op: OpFLTI, Fa: 1, Fb: 2, Fc: 3, Fnc: FncADDT}},
		{"CALL_PAL", FormatPal, Fields{Op: OpPAL, PalFnc: 0x83}},
		{"MB", FormatMemFunc, Fields{Op: OpMISC, Ra: 0, Rb: 0, MemFnc: FncMB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, err := Encode(tt.format, tt.fields)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			gotFormat, gotFields := Decode(word)
			if gotFormat != tt.format {
				t.Fatalf("Decode format = %v, want %v", gotFormat, tt.format)
			}
			if gotFields.Op != tt.fields.Op {
				t.Errorf("Op = %#x, want %#x", gotFields.Op, tt.fields.Op)
			}
			switch tt.format {
			case FormatOperate:
				if gotFields.Ra != tt.fields.Ra || gotFields.Rc != tt.fields.Rc || gotFields.Fnc != tt.fields.Fnc {
					t.Errorf("fields mismatch: got %+v want %+v", gotFields, tt.fields)
				}
				if tt.fields.LitFlag {
					if !gotFields.LitFlag || gotFields.Lit != tt.fields.Lit {
						t.Errorf("literal field mismatch: got %+v want %+v", gotFields, tt.fields)
					}
				} else if gotFields.Rb != tt.fields.Rb {
					t.Errorf("Rb mismatch: got %d want %d", gotFields.Rb, tt.fields.Rb)
				}
			case FormatBranch:
				if gotFields.Ra != tt.fields.Ra || gotFields.Disp != tt.fields.Disp {
					t.Errorf("fields mismatch: got %+v want %+v", gotFields, tt.fields)
				}
			case FormatMemRef:
				if gotFields.Ra != tt.fields.Ra || gotFields.Rb != tt.fields.Rb || gotFields.Disp != tt.fields.Disp {
					t.Errorf("fields mismatch: got %+v want %+v", gotFields, tt.fields)
				}
			case FormatFpOperate:
				if gotFields.Fa != tt.fields.Fa || gotFields.Fb != tt.fields.Fb || gotFields.Fc != tt.fields.Fc || gotFields.Fnc != tt.fields.Fnc {
					t.Errorf("fields mismatch: got %+v want %+v", gotFields, tt.fields)
				}
			case FormatPal:
				if gotFields.PalFnc != tt.fields.PalFnc {
					t.Errorf("PalFnc = %#x, want %#x", gotFields.PalFnc, tt.fields.PalFnc)
				}
			case FormatMemFunc:
				if gotFields.MemFnc != tt.fields.MemFnc {
					t.Errorf("MemFnc = %#x, want %#x", gotFields.MemFnc, tt.fields.MemFnc)
				}
			}
		})
	}
}

func TestDecodeIsTotal(t *testing.T) {
	// Every 32-bit value must decode to some format without panicking,
	// including unallocated primary opcodes.
	words := []uint32{0x00000000, 0xFFFFFFFF, 0x80000000, 0xDEADBEEF, 0x7C000000}
	for _, w := range words {
		format, _ := Decode(w)
		if format < FormatMemRef || format > FormatReserved {
			t.Errorf("Decode(%#x) returned out-of-range format %v", w, format)
		}
	}
}

func TestFieldsOperand2(t *testing.T) {
	cpu := NewCPU()
	cpu.WriteInt(5, 0xAAAA)

	lit := &Fields{LitFlag: true, Lit: 7}
	if got := lit.Operand2(cpu); got != 7 {
		t.Errorf("literal Operand2() = %d, want 7", got)
	}

	reg := &Fields{LitFlag: false, Rb: 5}
	if got := reg.Operand2(cpu); got != 0xAAAA {
		t.Errorf("register Operand2() = %#x, want 0xAAAA", got)
	}
}
