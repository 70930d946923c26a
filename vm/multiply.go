package vm

import "math/bits"

// Multiply function codes (Operate format, primary OpINTM).
const (
	FncMULL  = 0x00
	FncMULLV = 0x01
	FncMULQ  = 0x20
	FncMULQV = 0x21
	FncUMULH = 0x30
)

// ExecuteMultiply implements MULL (32x32->32 sign-extended), MULQ
// (64x64->low 64), UMULH (unsigned 64x64->high 64), and their /V
// overflow-trapping variants.
func ExecuteMultiply(v *VM, f *Fields, pc uint64) *Trap {
	op1 := v.CPU.ReadInt(f.Ra)
	op2 := f.Operand2(v.CPU)

	var result uint64
	switch f.Fnc {
	case FncMULL:
		result = SignExtend32(uint64(int32(uint32(op1)) * int32(uint32(op2))))
	case FncMULLV:
		prod := int64(int32(uint32(op1))) * int64(int32(uint32(op2)))
		if v.CPU.PS.OverflowTrp && SignedOverflow32(prod) {
			return NewTrap(TrapIntegerOverflow, pc)
		}
		result = SignExtend32(uint64(prod))
	case FncMULQ:
		result = op1 * op2
	case FncMULQV:
		hi, lo := bits.Mul64(op1, op2)
		result = lo
		if v.CPU.PS.OverflowTrp && overflowsSigned64Mul(op1, op2, hi, lo) {
			return NewTrap(TrapIntegerOverflow, pc)
		}
	case FncUMULH:
		hi, _ := bits.Mul64(op1, op2)
		result = hi
	default:
		return NewTrap(TrapReservedInstruction, pc)
	}

	v.CPU.WriteInt(f.Rc, result)
	v.CPU.AdvancePC()
	return nil
}

// overflowsSigned64Mul reports whether the signed 128-bit product of a*b
// (given its unsigned high:low halves) does not fit in 64 bits.
func overflowsSigned64Mul(a, b, hi, lo uint64) bool {
	// The product fits in signed 64 bits iff the high word is the correct
	// sign-extension of the low word's sign bit, adjusted for the sign of
	// each operand (standard two's-complement wide-multiply overflow check).
	neg := (int64(a) < 0) != (int64(b) < 0)
	if neg {
		return hi != ^uint64(0) || int64(lo) >= 0
	}
	return hi != 0 || int64(lo) < 0
}
