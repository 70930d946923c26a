package vm

// ============================================================================
// Alpha AXP Architecture Constants
// ============================================================================
// These values are defined by the Alpha AXP architecture and should not be
// modified.

const (
	// Instruction encoding
	AlphaInstructionSize = 4 // bytes, every Alpha instruction is one quadword-aligned word

	// Register counts
	AlphaIntRegisterCount = 32 // R0-R31, R31 hardwired to zero
	AlphaFPRegisterCount  = 32 // F0-F31, F31 hardwired to zero
	ZeroRegister          = 31 // R31 / F31 index

	// PS condition code bit positions (low nibble of the architected NZCV group)
	PSBitN = 3 // Negative flag
	PSBitZ = 2 // Zero flag
	PSBitV = 1 // Overflow flag
	PSBitC = 0 // Carry flag

	// Sign bits for overflow calculations
	SignBit32Pos  = 31
	SignBit32Mask = 0x80000000
	SignBit64Pos  = 63
	SignBit64Mask = uint64(1) << 63

	// Bit masks
	Mask1Bit  = 0x1
	Mask2Bit  = 0x3
	Mask3Bit  = 0x7
	Mask4Bit  = 0xF
	Mask5Bit  = 0x1F
	Mask6Bit  = 0x3F
	Mask7Bit  = 0x7F
	Mask8Bit  = 0xFF
	Mask11Bit = 0x7FF
	Mask12Bit = 0xFFF
	Mask16Bit = 0xFFFF
	Mask21Bit = 0x1FFFFF
	Mask26Bit = 0x3FFFFFF
	Mask32Bit = 0xFFFFFFFF

	// Alignment: every instruction fetch and quadword memory access is
	// naturally aligned; the core enforces this rather than trapping to a
	// software unaligned-access fixup path.
	AlignmentQuad     = 8
	AlignmentLong     = 4
	AlignmentWord     = 2
	AlignMaskQuad     = AlignmentQuad - 1
	AlignMaskLong     = AlignmentLong - 1
	AlignMaskWord     = AlignmentWord - 1
	PCAlignMask       = 0x3 // low 2 bits of PC must be zero
	UnalignedQuadMask = ^uint64(0x7)
)

// ============================================================================
// Memory Layout
// ============================================================================

const (
	CodeSegmentStart  = 0x0000000000020000
	CodeSegmentSize   = 0x0000000000100000 // 1MB
	DataSegmentStart  = 0x0000000000200000
	DataSegmentSize   = 0x0000000000100000
	HeapSegmentStart  = 0x0000000000400000
	HeapSegmentSize   = 0x0000000000400000
	StackSegmentStart = 0x0000000001000000
	StackSegmentSize  = 0x0000000000100000
)

// ============================================================================
// Execution limits
// ============================================================================

const (
	DefaultMaxCycles   = 1000000
	DefaultLogCapacity = 1000
)
