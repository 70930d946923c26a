package encoder

// This file emits the register-register and register-immediate integer
// arithmetic/logical forms a JIT block body is built from: MOV, ADD, SUB,
// AND, OR, XOR, CMP, IMUL, NEG, NOT, and the shift group. Each is a pure
// function of its operands appending bytes to the Assembler's buffer,
// mirroring the teacher's per-mnemonic `encodeDataProcessingXxx` shape
// (one function per instruction family rather than one mega-switch).

// MovRegReg emits `mov dst, src` (64-bit register to register).
func (a *Assembler) MovRegReg(dst, src Reg) {
	a.emitByte(rex(true, src, 0, dst))
	a.emitByte(0x89) // MOV r/m64, r64
	a.emitByte(modRM(src, dst))
}

// MovRegImm64 emits `movabs dst, imm64`.
func (a *Assembler) MovRegImm64(dst Reg, imm uint64) {
	a.emitByte(rex(true, 0, 0, dst))
	a.emitByte(0xB8 | byte(dst&0x7))
	a.emitImm64(imm)
}

// MovRegImm32 emits `mov dst, imm32`, sign-extended into the 64-bit
// register (used for small literals where movabs would waste bytes).
func (a *Assembler) MovRegImm32(dst Reg, imm int32) {
	a.emitByte(rex(true, 0, 0, dst))
	a.emitByte(0xC7)
	a.emitByte(modRM(0, dst))
	a.emitImm32(uint32(imm))
}

// arithOp is the shared shape every two-operand ALU instruction below
// reduces to: one opcode byte (register-to-register, dst = dst OP src),
// REX.W set for 64-bit operands.
func (a *Assembler) arithOp(opcode byte, dst, src Reg) {
	a.emitByte(rex(true, src, 0, dst))
	a.emitByte(opcode)
	a.emitByte(modRM(src, dst))
}

// AddRegReg emits `add dst, src`.
func (a *Assembler) AddRegReg(dst, src Reg) { a.arithOp(0x01, dst, src) }

// SubRegReg emits `sub dst, src`.
func (a *Assembler) SubRegReg(dst, src Reg) { a.arithOp(0x29, dst, src) }

// AndRegReg emits `and dst, src`.
func (a *Assembler) AndRegReg(dst, src Reg) { a.arithOp(0x21, dst, src) }

// OrRegReg emits `or dst, src`.
func (a *Assembler) OrRegReg(dst, src Reg) { a.arithOp(0x09, dst, src) }

// XorRegReg emits `xor dst, src`.
func (a *Assembler) XorRegReg(dst, src Reg) { a.arithOp(0x31, dst, src) }

// CmpRegReg emits `cmp dst, src`, setting the host flags an immediately
// following Jcc/SetCC/CmovCC reads.
func (a *Assembler) CmpRegReg(dst, src Reg) { a.arithOp(0x39, dst, src) }

// TestRegReg emits `test dst, src` (dst AND src, flags only, result
// discarded) — used by the JIT's CMOVxx emitters to test Ra against zero.
func (a *Assembler) TestRegReg(dst, src Reg) { a.arithOp(0x85, dst, src) }

// ImulRegReg emits `imul dst, src` (two-operand signed multiply, low 64
// bits of the product). The jit package registers no multiply emitter,
// so MULx/UMULH run through the interpreter fallback.
func (a *Assembler) ImulRegReg(dst, src Reg) {
	a.emitByte(rex(true, dst, 0, src))
	a.emitBytes(0x0F, 0xAF)
	a.emitByte(modRM(dst, src))
}

// MulRegRDX_RAX emits the one-operand `mul src` form: RDX:RAX = RAX * src
// (unsigned), the encoding UMULH's 128-bit product lowering needs.
func (a *Assembler) MulRegRDX_RAX(src Reg) {
	a.emitByte(rex(true, 0, 0, src))
	a.emitByte(0xF7)
	a.emitByte(modDirect | (4 << 3) | byte(src&0x7)) // /4 = MUL
}

// NegReg emits `neg dst` (two's-complement negate in place).
func (a *Assembler) NegReg(dst Reg) {
	a.emitByte(rex(true, 0, 0, dst))
	a.emitByte(0xF7)
	a.emitByte(modDirect | (3 << 3) | byte(dst&0x7)) // /3 = NEG
}

// NotReg emits `not dst` (one's-complement in place).
func (a *Assembler) NotReg(dst Reg) {
	a.emitByte(rex(true, 0, 0, dst))
	a.emitByte(0xF7)
	a.emitByte(modDirect | (2 << 3) | byte(dst&0x7)) // /2 = NOT
}

// shiftOp is the shared shape for the SHL/SHR/SAR-by-CL family: src's
// CL register supplies the shift amount.
func (a *Assembler) shiftOp(ext byte, dst Reg) {
	a.emitByte(rex(true, 0, 0, dst))
	a.emitByte(0xD3)
	a.emitByte(modDirect | (ext << 3) | byte(dst&0x7))
}

// ShlRegCL emits `shl dst, cl`.
func (a *Assembler) ShlRegCL(dst Reg) { a.shiftOp(4, dst) }

// ShrRegCL emits `shr dst, cl` (logical right shift).
func (a *Assembler) ShrRegCL(dst Reg) { a.shiftOp(5, dst) }

// SarRegCL emits `sar dst, cl` (arithmetic right shift).
func (a *Assembler) SarRegCL(dst Reg) { a.shiftOp(7, dst) }

// LeaRegMem emits `lea dst, [base+disp]`, used to materialize a guest
// register-array element's address without a load.
func (a *Assembler) LeaRegMem(dst, base Reg, disp int32) {
	a.emitByte(rex(true, dst, 0, base))
	a.emitByte(0x8D)
	a.emitModRMIndirect(dst, base, disp)
}
