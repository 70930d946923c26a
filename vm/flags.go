package vm

// Flag calculation helpers for integer condition codes, generalized from
// 32-bit ARM NZCV arithmetic to Alpha's 64-bit (and, for the /L longword
// qualifiers, 32-bit-then-sign-extended) integer arithmetic.

// CalculateAddCarry64 returns true if unsigned overflow occurred adding a+b.
func CalculateAddCarry64(a, _, result uint64) bool {
	return result < a
}

// CalculateAddOverflow64 returns true if signed 64-bit overflow occurred.
func CalculateAddOverflow64(a, b, result uint64) bool {
	aSign := (a >> SignBit64Pos) & 1
	bSign := (b >> SignBit64Pos) & 1
	rSign := (result >> SignBit64Pos) & 1
	return aSign == bSign && aSign != rSign
}

// CalculateSubCarry64 returns true if no borrow occurred (a >= b).
func CalculateSubCarry64(a, b uint64) bool {
	return a >= b
}

// CalculateSubOverflow64 returns true if signed 64-bit overflow occurred
// computing a-b.
func CalculateSubOverflow64(a, b, result uint64) bool {
	aSign := (a >> SignBit64Pos) & 1
	bSign := (b >> SignBit64Pos) & 1
	rSign := (result >> SignBit64Pos) & 1
	return aSign != bSign && aSign != rSign
}

// SignedOverflow32 reports whether the signed 32-bit sum/difference of a
// and b (given as sign-extended 64-bit operands) does not fit in 32 bits;
// used by ADDL/SUBL's /V qualifier.
func SignedOverflow32(result64 int64) bool {
	return result64 != int64(int32(result64))
}

// SignExtend32 sign-extends the low 32 bits of v to 64 bits, the
// longword-result convention used throughout the Operate format (ADDL,
// SUBL, MULL, the S4/S8 scaled variants, ...).
func SignExtend32(v uint64) uint64 {
	return uint64(int64(int32(uint32(v))))
}

// SignExtend21 sign-extends a 21-bit branch displacement to 64 bits.
func SignExtend21(v uint32) int64 {
	v &= Mask21Bit
	if v&(1<<20) != 0 {
		return int64(v) - (1 << 21)
	}
	return int64(v)
}

// SignExtend16 sign-extends a 16-bit MemRef displacement to 64 bits.
func SignExtend16(v uint32) int64 {
	return int64(int16(uint16(v)))
}

// SignExtend8 sign-extends an 8-bit value (e.g. a byte-lane result) to 64 bits.
func SignExtend8(v uint8) int64 {
	return int64(int8(v))
}
