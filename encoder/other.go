package encoder

// Stack, comparison-result, and SSE2 scalar-double arithmetic emission:
// the remaining instruction groups the JIT block body needs that don't
// belong in data_processing.go/memory.go/branch.go, mirroring the
// teacher's own `other.go` catch-all for PUSH/POP/NOP.

// PushReg emits `push src`.
func (a *Assembler) PushReg(src Reg) {
	if src >= R8 {
		a.emitByte(rexBase | rexB)
	}
	a.emitByte(0x50 | byte(src&0x7))
}

// PopReg emits `pop dst`.
func (a *Assembler) PopReg(dst Reg) {
	if dst >= R8 {
		a.emitByte(rexBase | rexB)
	}
	a.emitByte(0x58 | byte(dst&0x7))
}

// Nop emits a single-byte no-op, used to pad an emitted block to a label
// alignment boundary.
func (a *Assembler) Nop() { a.emitByte(0x90) }

// SetCC emits `setcc dst8` (the low byte of dst set to 0/1 per the
// condition); the upper bytes of dst are left unchanged.
func (a *Assembler) SetCC(c Cond, dst Reg) {
	if dst >= R8 {
		a.emitByte(rexBase | rexB)
	}
	a.emitBytes(0x0F, 0x90|byte(c))
	a.emitByte(modDirect | byte(dst&0x7))
}

// CmovCC emits `cmovcc dst, src` (64-bit conditional move), the direct
// host primitive for Alpha's CMOVxx family.
func (a *Assembler) CmovCC(c Cond, dst, src Reg) {
	a.emitByte(rex(true, dst, 0, src))
	a.emitBytes(0x0F, 0x40|byte(c))
	a.emitByte(modRM(dst, src))
}

// sseOp is the shared two-byte-opcode, F2-prefixed shape every scalar
// double-precision arithmetic instruction below reduces to.
func (a *Assembler) sseOp(opcode byte, dst, src XMM) {
	a.emitByte(0xF2)
	if dst >= 8 || src >= 8 {
		a.emitByte(rex(false, Reg(dst), 0, Reg(src)))
	}
	a.emitBytes(0x0F, opcode)
	a.emitByte(modRM(Reg(dst), Reg(src)))
}

// MovsdRegReg emits `movsd dst, src` (XMM-to-XMM scalar double move).
func (a *Assembler) MovsdRegReg(dst, src XMM) { a.sseOp(0x10, dst, src) }

// AddsdRegReg emits `addsd dst, src`.
func (a *Assembler) AddsdRegReg(dst, src XMM) { a.sseOp(0x58, dst, src) }

// SubsdRegReg emits `subsd dst, src`.
func (a *Assembler) SubsdRegReg(dst, src XMM) { a.sseOp(0x5C, dst, src) }

// MulsdRegReg emits `mulsd dst, src`.
func (a *Assembler) MulsdRegReg(dst, src XMM) { a.sseOp(0x59, dst, src) }

// DivsdRegReg emits `divsd dst, src`.
func (a *Assembler) DivsdRegReg(dst, src XMM) { a.sseOp(0x5E, dst, src) }

// SqrtsdRegReg emits `sqrtsd dst, src`.
func (a *Assembler) SqrtsdRegReg(dst, src XMM) { a.sseOp(0x51, dst, src) }

// UcomisdRegReg emits `ucomisd dst, src` (unordered scalar double
// compare, sets ZF/PF/CF the way CMPTxx's FPCR update reads back): note
// this one is 0x66-prefixed, not F2-prefixed, per the SSE2 encoding
// table, so it does not go through sseOp.
func (a *Assembler) UcomisdRegReg(dst, src XMM) {
	a.emitByte(0x66)
	if dst >= 8 || src >= 8 {
		a.emitByte(rex(false, Reg(dst), 0, Reg(src)))
	}
	a.emitBytes(0x0F, 0x2E)
	a.emitByte(modRM(Reg(dst), Reg(src)))
}

// Cvtsi2sdRegReg emits `cvtsi2sd dst, src` (signed 64-bit integer to
// scalar double), used by the JIT's FP load to materialize F31 as +0.0.
func (a *Assembler) Cvtsi2sdRegReg(dst XMM, src Reg) {
	a.emitByte(0xF2)
	a.emitByte(rex(true, Reg(dst), 0, src))
	a.emitBytes(0x0F, 0x2A)
	a.emitByte(modRM(Reg(dst), src))
}

// Cvttsd2siRegReg emits `cvttsd2si dst, src` (scalar double to signed
// 64-bit integer, truncating).
func (a *Assembler) Cvttsd2siRegReg(dst Reg, src XMM) {
	a.emitByte(0xF2)
	a.emitByte(rex(true, dst, 0, Reg(src)))
	a.emitBytes(0x0F, 0x2C)
	a.emitByte(modRM(dst, Reg(src)))
}
