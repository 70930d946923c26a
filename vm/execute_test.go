package vm

import "testing"

func newTestVM() *VM {
	v := NewVM()
	v.CPU.PS.OverflowTrp = true
	v.CPU.PS.FPEnabled = true
	return v
}

func TestExecuteIntArithADDQ(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteInt(1, 10)
	v.CPU.WriteInt(2, 20)
	f := &Fields{Op: OpINTA, Ra: 1, Rb: 2, Rc: 3, Fnc: FncADDQ}
	if trap := ExecuteIntArith(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(3); got != 30 {
		t.Errorf("ADDQ result = %d, want 30", got)
	}
	if v.CPU.PC != AlphaInstructionSize {
		t.Errorf("PC = %#x, want %#x", v.CPU.PC, AlphaInstructionSize)
	}
}

func TestExecuteIntArithADDLVOverflow(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteInt(1, uint64(int64(0x7FFFFFFF)))
	v.CPU.WriteInt(2, 1)
	f := &Fields{Op: OpINTA, Ra: 1, Rb: 2, Rc: 3, Fnc: FncADDLV}
	trap := ExecuteIntArith(v, f, v.CPU.PC)
	if trap == nil || trap.Kind != TrapIntegerOverflow {
		t.Fatalf("expected IntegerOverflow trap, got %v", trap)
	}
}

func TestExecuteIntArithCMPBGE(t *testing.T) {
	v := newTestVM()
	// a's 8 byte lanes (lane 0 = LSB) are all 0x05.
	v.CPU.WriteInt(1, 0x0505050505050505)
	// b's lanes, lane 0 (LSB) first: 05, 05, FF, 00, 05, 04, 06, 05.
	// lane>=lane: 1, 1, 0, 1, 1, 1, 0, 1
	v.CPU.WriteInt(2, 0x0506040500FF0505)
	f := &Fields{Op: OpINTA, Ra: 1, Rb: 2, Rc: 3, Fnc: FncCMPBGE}
	if trap := ExecuteIntArith(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	want := uint64(0b10111011)
	if got := v.CPU.ReadInt(3); got != want {
		t.Errorf("CMPBGE = %#b, want %#b", got, want)
	}
}

func TestExecuteLogicalUpdatesNZOnly(t *testing.T) {
	v := newTestVM()
	v.CPU.PS.C = true
	v.CPU.PS.V = true
	v.CPU.WriteInt(1, 0)
	v.CPU.WriteInt(2, 0)
	f := &Fields{Op: OpINTL, Ra: 1, Rb: 2, Rc: 3, Fnc: FncBIS}
	if trap := ExecuteLogical(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if !v.CPU.PS.Z {
		t.Errorf("Z should be set for zero result")
	}
	if !v.CPU.PS.C || !v.CPU.PS.V {
		t.Errorf("logical ops must never clear C/V")
	}
}

func TestExecuteLogicalCMOV(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteInt(1, 0) // condition register: CMOVEQ tests == 0
	v.CPU.WriteInt(2, 99)
	v.CPU.WriteInt(3, 1) // pre-existing Rc value
	f := &Fields{Op: OpINTL, Ra: 1, Rb: 2, Rc: 3, Fnc: FncCMOVEQ}
	if trap := ExecuteLogical(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(3); got != 99 {
		t.Errorf("CMOVEQ taken = %d, want 99", got)
	}
}

// ZAP/ZAPNOT are complementary byte-lane masks: ZAPNOT(x,m) == ZAP(x, ^m).
// Re-applying the SAME mask a second time through ZAP clears whatever
// ZAPNOT had kept, zeroing the whole value.
func TestZapZapNotReapplyClearsEverything(t *testing.T) {
	v := newTestVM()
	x := uint64(0x0102030405060708)
	mask := uint64(0x3C) // bits for lanes 2,3,4,5

	v.CPU.WriteInt(1, x)
	zapnot := &Fields{Op: OpINTS, Ra: 1, Rc: 2, Fnc: FncZAPNOT, LitFlag: true, Lit: uint32(mask)}
	if trap := ExecuteByteManip(v, zapnot, v.CPU.PC); trap != nil {
		t.Fatalf("ZAPNOT trap: %v", trap)
	}
	kept := v.CPU.ReadInt(2)

	v.CPU.WriteInt(3, kept)
	zap := &Fields{Op: OpINTS, Ra: 3, Rc: 4, Fnc: FncZAP, LitFlag: true, Lit: uint32(mask)}
	if trap := ExecuteByteManip(v, zap, v.CPU.PC); trap != nil {
		t.Fatalf("ZAP trap: %v", trap)
	}
	if got := v.CPU.ReadInt(4); got != 0 {
		t.Errorf("ZAP(ZAPNOT(x,m), m) = %#x, want 0", got)
	}
}

func TestExecuteMultiplyUMULH(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteInt(1, ^uint64(0))
	v.CPU.WriteInt(2, 2)
	f := &Fields{Op: OpINTM, Ra: 1, Rb: 2, Rc: 3, Fnc: FncUMULH}
	if trap := ExecuteMultiply(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(3); got != 1 {
		t.Errorf("UMULH(MaxUint64, 2) high word = %d, want 1", got)
	}
}

func TestExecuteBranchBackward(t *testing.T) {
	v := newTestVM()
	v.CPU.PC = 0x20100
	v.CPU.WriteInt(4, 0) // BNE: R4 == 0 means not taken
	f := &Fields{Op: OpBNE, Ra: 4, Disp: -10}
	if trap := ExecuteBranch(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if v.CPU.PC != 0x20104 {
		t.Errorf("untaken BNE should just advance PC, got %#x", v.CPU.PC)
	}

	v.CPU.WriteInt(4, 1)
	v.CPU.PC = 0x20100
	if trap := ExecuteBranch(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	want := uint64(0x20100 + AlphaInstructionSize - 10*AlphaInstructionSize)
	if v.CPU.PC != want {
		t.Errorf("taken backward BNE PC = %#x, want %#x", v.CPU.PC, want)
	}
}

func TestLDAThenADDQModularSum(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteInt(SP, StackSegmentStart+0x100)
	lda := &Fields{Op: OpLDA, Ra: 1, Rb: SP, Disp: -16}
	if trap := ExecuteMemRef(v, lda, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(1); got != StackSegmentStart+0x100-16 {
		t.Errorf("LDA result = %#x", got)
	}

	// ADDQ does not trap on overflow: it wraps modulo 2^64.
	v.CPU.WriteInt(2, ^uint64(0))
	v.CPU.WriteInt(3, 2)
	addq := &Fields{Op: OpINTA, Ra: 2, Rb: 3, Rc: 4, Fnc: FncADDQ}
	if trap := ExecuteIntArith(v, addq, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(4); got != 1 {
		t.Errorf("ADDQ wraparound = %d, want 1", got)
	}
}

func TestLoadLockedStoreConditional(t *testing.T) {
	v := newTestVM()
	addr := uint64(DataSegmentStart)
	v.Memory.WriteVA(v.CPUID, addr, 0x1122334455667788, 8)

	ll := &Fields{Op: OpLDQL, Ra: 1, Rb: 2, Disp: 0}
	v.CPU.WriteInt(2, addr)
	if trap := ExecuteMemRef(v, ll, v.CPU.PC); trap != nil {
		t.Fatalf("LDQ_L trap: %v", trap)
	}
	if !v.CPU.Reservation.Valid {
		t.Fatal("LDQ_L did not establish a reservation")
	}

	v.CPU.WriteInt(1, 0xCAFEBABECAFEBABE)
	sc := &Fields{Op: OpSTQC, Ra: 1, Rb: 2, Disp: 0}
	if trap := ExecuteMemRef(v, sc, v.CPU.PC); trap != nil {
		t.Fatalf("STQ_C trap: %v", trap)
	}
	if got := v.CPU.ReadInt(1); got != 1 {
		t.Fatalf("STQ_C success flag = %d, want 1", got)
	}
	if v.CPU.Reservation.Valid {
		t.Error("STQ_C must clear the reservation")
	}

	// A second STQ_C without an intervening LDQ_L must fail.
	v.CPU.WriteInt(1, 0)
	if trap := ExecuteMemRef(v, sc, v.CPU.PC); trap != nil {
		t.Fatalf("STQ_C trap: %v", trap)
	}
	if got := v.CPU.ReadInt(1); got != 0 {
		t.Errorf("second STQ_C should fail, got success flag %d", got)
	}
}

func TestWriteVAClearsOtherCPUReservation(t *testing.T) {
	v1 := newTestVM()
	v2 := newTestVM()
	mem := NewMemory()
	v1.Memory, v2.Memory = mem, mem
	mem.WatchReservation(&v2.CPU.Reservation)

	addr := uint64(DataSegmentStart)
	v2.CPU.Reservation.Valid = true
	v2.CPU.Reservation.Addr = addr

	if fault := mem.WriteVA(0, addr, 0x42, 8); fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if v2.CPU.Reservation.Valid {
		t.Error("writing the watched line must clear the other CPU's reservation")
	}
}

func TestExecuteFpOperateCPYSIdempotent(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteFP(1, fpToBitsT(-3.5))
	v.CPU.WriteFP(2, fpToBitsT(1.0))
	f := &Fields{Op: OpFLTI, Fa: 1, Fb: 2, Fc: 3, Fnc: FncCPYS}
	if trap := ExecuteFpOperate(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	got := fpFromBitsT(v.CPU.ReadFP(3))
	if got != 3.5 {
		t.Errorf("CPYS(-3.5, +1.0) = %v, want 3.5", got)
	}

	// CPYS(CPYS(a,b), b) == CPYS(a,b): re-copying the same sign is a no-op.
	f2 := &Fields{Op: OpFLTI, Fa: 3, Fb: 2, Fc: 4, Fnc: FncCPYS}
	if trap := ExecuteFpOperate(v, f2, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if fpFromBitsT(v.CPU.ReadFP(4)) != got {
		t.Error("CPYS is not idempotent under a stable sign source")
	}
}

func TestExecuteFpOperateCMPTEQSetsFPCC(t *testing.T) {
	v := newTestVM()
	v.CPU.WriteFP(1, fpToBitsT(2.0))
	v.CPU.WriteFP(2, fpToBitsT(2.0))
	f := &Fields{Op: OpFLTI, Fa: 1, Fb: 2, Fc: 3, Fnc: FncCMPTEQ}
	if trap := ExecuteFpOperate(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if !v.CPU.FPCR.CCEqual {
		t.Error("CMPTEQ on equal operands must set the FP equal condition code")
	}
	if got := fpFromBitsT(v.CPU.ReadFP(3)); got != 2.0 {
		t.Errorf("CMPTEQ true result = %v, want 2.0", got)
	}
}

func TestExecuteFpOperateDisabledTraps(t *testing.T) {
	v := newTestVM()
	v.CPU.PS.FPEnabled = false
	f := &Fields{Op: OpFLTI, Fa: 1, Fb: 2, Fc: 3, Fnc: FncADDT}
	trap := ExecuteFpOperate(v, f, v.CPU.PC)
	if trap == nil || trap.Kind != TrapFpDisabled {
		t.Fatalf("expected FpDisabled trap, got %v", trap)
	}
}

func TestExecuteMemFuncRPCC(t *testing.T) {
	v := newTestVM()
	v.CPU.Cycles = 1234
	f := &Fields{Op: OpMISC, Ra: 1, MemFnc: FncRPCC}
	if trap := ExecuteMemFunc(v, f, v.CPU.PC); trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if got := v.CPU.ReadInt(1); got != 1234 {
		t.Errorf("RPCC = %d, want 1234", got)
	}
}

func TestStepAdvancesCyclesAndPC(t *testing.T) {
	v := newTestVM()
	word, err := Encode(FormatOperate, Fields{Op: OpINTA, Ra: R0, Rc: 1, Fnc: FncADDQ, LitFlag: true, Lit: 5})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	mem := v.Memory.(*Memory)
	if err := mem.LoadBytes(CodeSegmentStart, encodeLE32(word)); err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	v.CPU.PC = CodeSegmentStart

	if err := v.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if v.State == StateError {
		t.Fatalf("VM entered error state: %v", v.LastError)
	}
	if got := v.CPU.ReadInt(1); got != 5 {
		t.Errorf("R1 = %d, want 5", got)
	}
	if v.CPU.PC != CodeSegmentStart+AlphaInstructionSize {
		t.Errorf("PC = %#x, want %#x", v.CPU.PC, CodeSegmentStart+AlphaInstructionSize)
	}
	if v.CPU.Cycles != 1 {
		t.Errorf("Cycles = %d, want 1", v.CPU.Cycles)
	}
}

func TestStepReservedInstructionHaltsWithoutPAL(t *testing.T) {
	v := newTestVM()
	mem := v.Memory.(*Memory)
	// An unallocated primary opcode decodes to FormatReserved.
	if err := mem.LoadBytes(CodeSegmentStart, encodeLE32(0x7C000000)); err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	v.CPU.PC = CodeSegmentStart

	if err := v.Step(); err != nil {
		t.Fatalf("Step returned infrastructure error: %v", err)
	}
	if v.State != StateError {
		t.Fatalf("expected VM to halt on an undelivered trap, got state %v", v.State)
	}
	if v.LastTrap == nil || v.LastTrap.Kind != TrapReservedInstruction {
		t.Errorf("LastTrap = %v, want ReservedInstruction", v.LastTrap)
	}
}

func encodeLE32(word uint32) []byte {
	return []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
}
