package vm

import "fmt"

// Decode classifies a 32-bit instruction word into a format tag and its
// decoded fields. Decode is pure and total: every 32-bit value maps to a
// format, even if that format is FormatReserved because the primary
// opcode names an unallocated slot (the execution loop raises
// ReservedInstruction for those).
func Decode(word uint32) (Format, Fields) {
	op := (word >> OpcodeShift) & Mask6Bit

	var f Fields
	f.Op = op

	switch {
	case op == OpPAL:
		f.PalFnc = word & Mask26Bit
		return FormatPal, f

	case op == OpMISC:
		f.Ra = int((word >> RaShift) & Mask5Bit)
		f.Rb = int((word >> RbShift) & Mask5Bit)
		f.MemFnc = word & Mask16Bit
		return FormatMemFunc, f

	case op == OpJUMP:
		f.Ra = int((word >> RaShift) & Mask5Bit)
		f.Rb = int((word >> RbShift) & Mask5Bit)
		f.MemFnc = word & Mask16Bit // low bits select JMP/JSR/RET/JSR_COROUTINE + hint
		return FormatJump, f

	case op == OpBR || op == OpBSR || op == OpBLBC || op == OpBEQ || op == OpBLT ||
		op == OpBLE || op == OpBLBS || op == OpBNE || op == OpBGE || op == OpBGT ||
		op == OpFBEQ || op == OpFBLT || op == OpFBLE || op == OpFBNE || op == OpFBGE || op == OpFBGT:
		f.Ra = int((word >> RaShift) & Mask5Bit)
		f.Disp = SignExtend21(word & Mask21Bit)
		return FormatBranch, f

	case op == OpINTA || op == OpINTL || op == OpINTS || op == OpINTM || op == OpINTV:
		decodeOperate(word, &f)
		return FormatOperate, f

	case op == OpFLTV || op == OpFLTI:
		f.Fa = int((word >> FaShift) & Mask5Bit)
		f.Fb = int((word >> FbShift) & Mask5Bit)
		f.Fc = int(word & Mask5Bit)
		f.Fnc = (word >> FpFncShift) & Mask11Bit
		return FormatFpOperate, f

	case isMemRefOpcode(op):
		f.Ra = int((word >> RaShift) & Mask5Bit)
		f.Rb = int((word >> RbShift) & Mask5Bit)
		f.Disp = SignExtend16(word & Mask16Bit)
		return FormatMemRef, f

	default:
		return FormatReserved, f
	}
}

func decodeOperate(word uint32, f *Fields) {
	f.Ra = int((word >> RaShift) & Mask5Bit)
	f.Rc = int(word & Mask5Bit)
	f.LitFlag = (word>>LitFlagShift)&Mask1Bit != 0
	if f.LitFlag {
		f.Lit = (word >> LitShift) & Mask8Bit
	} else {
		f.Rb = int((word >> RbShift) & Mask5Bit)
	}
	f.Fnc = (word >> FncOperShift) & Mask7Bit
}

func isMemRefOpcode(op uint32) bool {
	switch op {
	case OpLDA, OpLDAH, OpLDBU, OpLDQU, OpLDWU, OpSTW, OpSTB, OpSTQU,
		OpLDF, OpLDG, OpLDS, OpLDT, OpSTF, OpSTG, OpSTS, OpSTT,
		OpLDL, OpLDQ, OpLDLL, OpLDQL, OpSTL, OpSTQ, OpSTLC, OpSTQC:
		return true
	}
	return false
}

// Encode re-assembles a 32-bit instruction word from a format/fields pair.
// Used by the round-trip property test (spec.md section 8) and by the
// parser package's guest-assembly fixture encoder.
func Encode(format Format, f Fields) (uint32, error) {
	switch format {
	case FormatPal:
		return (f.Op << OpcodeShift) | (f.PalFnc & Mask26Bit), nil
	case FormatMemFunc:
		return (f.Op << OpcodeShift) | (uint32(f.Ra) << RaShift) | (uint32(f.Rb) << RbShift) | (f.MemFnc & Mask16Bit), nil
	case FormatJump:
		return (f.Op << OpcodeShift) | (uint32(f.Ra) << RaShift) | (uint32(f.Rb) << RbShift) | (f.MemFnc & Mask16Bit), nil
	case FormatBranch:
		disp := uint32(f.Disp) & Mask21Bit
		return (f.Op << OpcodeShift) | (uint32(f.Ra) << RaShift) | disp, nil
	case FormatOperate:
		word := (f.Op << OpcodeShift) | (uint32(f.Ra) << RaShift) | (uint32(f.Rc) & Mask5Bit)
		if f.LitFlag {
			word |= (f.Lit & Mask8Bit) << LitShift
			word |= 1 << LitFlagShift
		} else {
			word |= uint32(f.Rb) << RbShift
		}
		word |= (f.Fnc & Mask7Bit) << FncOperShift
		return word, nil
	case FormatFpOperate:
		word := (f.Op << OpcodeShift) | (uint32(f.Fa) << FaShift) | (uint32(f.Fb) << FbShift) | (uint32(f.Fc) & Mask5Bit)
		word |= (f.Fnc & Mask11Bit) << FpFncShift
		return word, nil
	case FormatMemRef:
		disp := uint32(f.Disp) & Mask16Bit
		return (f.Op << OpcodeShift) | (uint32(f.Ra) << RaShift) | (uint32(f.Rb) << RbShift) | disp, nil
	default:
		return 0, fmt.Errorf("encode: format %v has no defined encoding", format)
	}
}
