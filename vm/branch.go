package vm

// ExecuteBranch executes an instruction decoded as FormatBranch: BR/BSR
// (unconditional), the eight integer conditional branches, and the six FP
// conditional branches.
func ExecuteBranch(v *VM, f *Fields, pc uint64) *Trap {
	target := uint64(int64(pc+AlphaInstructionSize) + f.Disp*AlphaInstructionSize)

	taken := false
	switch f.Op {
	case OpBR:
		taken = true
	case OpBSR:
		taken = true
	case OpBEQ:
		taken = EvaluateInt(PredEQ, v.CPU.ReadInt(f.Ra))
	case OpBNE:
		taken = EvaluateInt(PredNE, v.CPU.ReadInt(f.Ra))
	case OpBLT:
		taken = EvaluateInt(PredLT, v.CPU.ReadInt(f.Ra))
	case OpBLE:
		taken = EvaluateInt(PredLE, v.CPU.ReadInt(f.Ra))
	case OpBGT:
		taken = EvaluateInt(PredGT, v.CPU.ReadInt(f.Ra))
	case OpBGE:
		taken = EvaluateInt(PredGE, v.CPU.ReadInt(f.Ra))
	case OpBLBS:
		taken = EvaluateInt(PredLBS, v.CPU.ReadInt(f.Ra))
	case OpBLBC:
		taken = EvaluateInt(PredLBC, v.CPU.ReadInt(f.Ra))
	case OpFBEQ:
		taken = EvaluateFp(FpPredEQ, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	case OpFBNE:
		taken = EvaluateFp(FpPredNE, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	case OpFBLT:
		taken = EvaluateFp(FpPredLT, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	case OpFBLE:
		taken = EvaluateFp(FpPredLE, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	case OpFBGE:
		taken = EvaluateFp(FpPredGE, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	case OpFBGT:
		taken = EvaluateFp(FpPredGT, fpFromBitsT(v.CPU.ReadFP(f.Ra)))
	}

	if f.Op == OpBSR {
		v.CPU.WriteInt(f.Ra, pc+AlphaInstructionSize)
	}

	if taken {
		v.CPU.WritePC(target)
	} else {
		v.CPU.AdvancePC()
	}
	return nil
}

// ExecuteJump executes a computed jump (JMP/JSR/RET/JSR_COROUTINE),
// decoded as FormatJump. The target always comes from Rb with the low 2
// bits cleared; JMP/JSR/JSR_COROUTINE additionally save PC+4 into Ra.
func ExecuteJump(v *VM, f *Fields, pc uint64) *Trap {
	target := v.CPU.ReadInt(f.Rb) &^ uint64(PCAlignMask)

	jumpKind := (f.MemFnc >> 14) & Mask2Bit
	if jumpKind != JumpKindRet {
		v.CPU.WriteInt(f.Ra, pc+AlphaInstructionSize)
	}

	v.CPU.WritePC(target)
	return nil
}

// Jump-kind subfield values within FormatJump's MemFnc, occupying bits
// 15:14 of the low 16 bits (the remaining bits are a branch-prediction
// hint this core ignores, consistent with spec.md's non-goal on
// microarchitectural fidelity).
const (
	JumpKindJmp = 0
	JumpKindJsr = 1
	JumpKindRet = 2
	JumpKindJsrCoroutine = 3
)
