package vm

// Format is the decoded instruction-format tag. Every 32-bit instruction
// word maps to exactly one of these; Decode is total.
type Format int

const (
	FormatMemRef Format = iota
	FormatMemFunc
	FormatBranch
	FormatOperate
	FormatFpOperate
	FormatPal
	FormatVector
	FormatJump // Jump is a MemRef-shaped special case (JMP/JSR/RET/JSR_COROUTINE)
	FormatReserved
)

// Primary opcode assignments (bits 31:26). This core's own encoding, laid
// out format-group-at-a-time the way the Alpha AXP architecture itself
// groups opcodes, but it is this implementation's encoding rather than a
// byte-for-byte transcription of the architecture manual's table.
const (
	OpPAL = 0x00

	OpLDA  = 0x08
	OpLDAH = 0x09
	OpLDBU = 0x0A
	OpLDQU = 0x0B
	OpLDWU = 0x0C
	OpSTW  = 0x0D
	OpSTB  = 0x0E
	OpSTQU = 0x0F

	OpINTA = 0x10 // integer arithmetic operate group
	OpINTL = 0x11 // logical operate group
	OpINTS = 0x12 // byte/bit manipulation + shift operate group
	OpINTM = 0x13 // multiply operate group

	OpFLTV = 0x14 // VAX F/G/D precision FP operate group
	OpFLTI = 0x15 // IEEE S/T precision FP operate group

	OpMISC  = 0x18 // memory-function group: MB/WMB/TRAPB/EXCB/RPCC/RS/RC
	OpJUMP  = 0x1A // computed jump group: JMP/JSR/RET/JSR_COROUTINE
	OpINTV  = 0x1C // integer vector operate group

	OpLDF  = 0x20
	OpLDG  = 0x21
	OpLDS  = 0x22
	OpLDT  = 0x23
	OpSTF  = 0x24
	OpSTG  = 0x25
	OpSTS  = 0x26
	OpSTT  = 0x27
	OpLDL  = 0x28
	OpLDQ  = 0x29
	OpLDLL = 0x2A
	OpLDQL = 0x2B
	OpSTL  = 0x2C
	OpSTQ  = 0x2D
	OpSTLC = 0x2E
	OpSTQC = 0x2F

	OpBR   = 0x30
	OpFBEQ = 0x31
	OpFBLT = 0x32
	OpFBLE = 0x33
	OpBSR  = 0x34
	OpFBNE = 0x35
	OpFBGE = 0x36
	OpFBGT = 0x37
	OpBLBC = 0x38
	OpBEQ  = 0x39
	OpBLT  = 0x3A
	OpBLE  = 0x3B
	OpBLBS = 0x3C
	OpBNE  = 0x3D
	OpBGE  = 0x3E
	OpBGT  = 0x3F
)

// Instruction field bit positions, shared by the decoder and (for test
// fixtures) the parser package's guest-assembly encoder.
const (
	OpcodeShift = 26
	RaShift     = 21
	RbShift     = 16
	FncOperShift = 5
	RcShift      = 0
	LitFlagShift = 12
	LitShift     = 13
	FaShift      = 21
	FbShift      = 16
	FcShift      = 0
	FpFncShift   = 5
)

// Fields holds every field that any format might need; the decoder fills
// in only the ones meaningful for the decoded Format.
type Fields struct {
	Op   uint32
	Ra   int
	Rb   int
	Rc   int
	Fa   int
	Fb   int
	Fc   int
	Fnc  uint32 // operate/fpoperate function code
	Disp int64  // sign-extended displacement (MemRef: 16 bit, Branch: 21 bit)
	Lit  uint32 // 8-bit literal, valid when LitFlag is set
	LitFlag bool
	PalFnc  uint32 // 26-bit PAL function code
	MemFnc  uint32 // 16-bit MemFunc function code
}

// Operand2 returns the Operate-format's second operand uniformly: the
// zero-extended literal when LitFlag is set, otherwise Rb read through the
// register file (spec.md Section 9: one accessor, no litFlag branching at
// call sites).
func (f *Fields) Operand2(cpu *CPU) uint64 {
	if f.LitFlag {
		return uint64(f.Lit)
	}
	return cpu.ReadInt(f.Rb)
}
