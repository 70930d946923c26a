package encoder

// Memory access emission: loads and stores between a host GPR and
// [base+disp] (used to read/write the guest register-array slots and
// the guest memory-segment byte arrays the interpreter already uses),
// at the four Alpha load/store widths plus the scalar-double moves SSE2
// needs for F-register traffic. Grounded on the same width-dispatch
// shape as the teacher's own `encodeMemory` (one function per
// addressing/width combination rather than a single parameterized one,
// so each stays a short, auditable unit).

// MovLoadQ emits `mov dst, [base+disp]` (64-bit load).
func (a *Assembler) MovLoadQ(dst, base Reg, disp int32) {
	a.emitByte(rex(true, dst, 0, base))
	a.emitByte(0x8B)
	a.emitModRMIndirect(dst, base, disp)
}

// MovStoreQ emits `mov [base+disp], src` (64-bit store).
func (a *Assembler) MovStoreQ(base Reg, disp int32, src Reg) {
	a.emitByte(rex(true, src, 0, base))
	a.emitByte(0x89)
	a.emitModRMIndirect(src, base, disp)
}

// MovzxLoadL emits a zero-extending 32-bit load: `mov dst32, [base+disp]`
// (the top 32 bits of dst are zeroed by the processor as an x86-64
// architectural side effect of any 32-bit-destination instruction).
func (a *Assembler) MovzxLoadL(dst, base Reg, disp int32) {
	if dst >= R8 || base >= R8 {
		a.emitByte(rex(false, dst, 0, base))
	}
	a.emitByte(0x8B)
	a.emitModRMIndirect(dst, base, disp)
}

// MovzxLoadW emits a zero-extending 16-bit load: `movzx dst, word [base+disp]`.
func (a *Assembler) MovzxLoadW(dst, base Reg, disp int32) {
	a.emitByte(0x66)
	if dst >= R8 || base >= R8 {
		a.emitByte(rex(false, dst, 0, base))
	}
	a.emitBytes(0x0F, 0xB7)
	a.emitModRMIndirect(dst, base, disp)
}

// MovzxLoadB emits a zero-extending 8-bit load: `movzx dst, byte [base+disp]`.
func (a *Assembler) MovzxLoadB(dst, base Reg, disp int32) {
	if dst >= R8 || base >= R8 {
		a.emitByte(rex(false, dst, 0, base))
	}
	a.emitBytes(0x0F, 0xB6)
	a.emitModRMIndirect(dst, base, disp)
}

// MovStoreL emits a 32-bit store: `mov [base+disp], src32`.
func (a *Assembler) MovStoreL(base Reg, disp int32, src Reg) {
	if src >= R8 || base >= R8 {
		a.emitByte(rex(false, src, 0, base))
	}
	a.emitByte(0x89)
	a.emitModRMIndirect(src, base, disp)
}

// MovStoreW emits a 16-bit store: `mov [base+disp], src16`.
func (a *Assembler) MovStoreW(base Reg, disp int32, src Reg) {
	a.emitByte(0x66)
	if src >= R8 || base >= R8 {
		a.emitByte(rex(false, src, 0, base))
	}
	a.emitByte(0x89)
	a.emitModRMIndirect(src, base, disp)
}

// MovStoreB emits an 8-bit store: `mov [base+disp], src8`.
func (a *Assembler) MovStoreB(base Reg, disp int32, src Reg) {
	if src >= R8 || base >= R8 {
		a.emitByte(rex(false, src, 0, base))
	}
	a.emitByte(0x88)
	a.emitModRMIndirect(src, base, disp)
}

// MovsdLoad emits `movsd dst, [base+disp]`: a scalar double load into an
// XMM register, the host representation this core's FP-operate handlers
// use for F/G-format values widened to T/S (see fpoperate.go's
// value-domain note).
func (a *Assembler) MovsdLoad(dst XMM, base Reg, disp int32) {
	a.emitByte(0xF2)
	if dst >= 8 || base >= R8 {
		a.emitByte(rex(false, Reg(dst), 0, base))
	}
	a.emitBytes(0x0F, 0x10)
	a.emitModRMIndirect(Reg(dst), base, disp)
}

// MovsdStore emits `movsd [base+disp], src`.
func (a *Assembler) MovsdStore(base Reg, disp int32, src XMM) {
	a.emitByte(0xF2)
	if src >= 8 || base >= R8 {
		a.emitByte(rex(false, Reg(src), 0, base))
	}
	a.emitBytes(0x0F, 0x11)
	a.emitModRMIndirect(Reg(src), base, disp)
}
