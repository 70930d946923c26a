package encoder

// Reg identifies a host x86-64 general-purpose register by its 4-bit
// encoding (the low 3 bits go in ModRM/SIB/opcode; the high bit goes in
// REX.R/X/B, per the AMD64 Architecture Programmer's Manual section 1.2).
type Reg int

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// XMM identifies a host SSE2 register used for scalar double-precision FP.
type XMM int

const (
	XMM0 XMM = iota
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
)

// Cond is an x86-64 condition code, shared by Jcc, SETcc, and CMOVcc. The
// numeric values are the real encodings so they OR directly into the
// opcode's low nibble.
type Cond byte

const (
	CondO  Cond = 0x0 // overflow
	CondNO Cond = 0x1
	CondB  Cond = 0x2 // below / carry
	CondAE Cond = 0x3
	CondE  Cond = 0x4 // equal / zero
	CondNE Cond = 0x5
	CondBE Cond = 0x6
	CondA  Cond = 0x7
	CondS  Cond = 0x8 // sign
	CondNS Cond = 0x9
	CondP  Cond = 0xA // parity (UCOMISD's "unordered" indicator)
	CondNP Cond = 0xB
	CondL  Cond = 0xC // less (signed)
	CondGE Cond = 0xD
	CondLE Cond = 0xE
	CondG  Cond = 0xF
)

// REX prefix bits (AMD64 manual section 2.2.1): W selects 64-bit operand
// size, R/X/B extend ModRM.reg / SIB.index / ModRM.rm (or an
// opcode-embedded register) into the r8-r15 range.
const (
	rexBase byte = 0x40
	rexW    byte = 0x08
	rexR    byte = 0x04
	rexX    byte = 0x02
	rexB    byte = 0x01
)

// modDirect selects ModRM's register-direct addressing mode (mod == 11).
const modDirect = 0xC0

// modIndirectDisp8/modIndirectDisp32 select [reg+disp8] / [reg+disp32]
// addressing (mod == 01 / 10).
const (
	modIndirectDisp8  = 0x40
	modIndirectDisp32 = 0x80
)

// rel32Placeholder is overwritten by Assembler.Bytes with the real rel32
// once a jump or call target's label is bound.
const rel32Placeholder = 0x7FFFFFFF
