package vm

import "math"

// Fp-operate function codes (FormatFpOperate, both OpFLTV and OpFLTI).
// This core carries every precision through a single native float64
// working format (spec.md's non-goal on cycle/bit-exact VAX reproduction
// means F/G/D are treated as S/T's value domain, not their packed layout).
const (
	FncADDS = 0x080
	FncADDT = 0x0A0
	FncSUBS = 0x081
	FncSUBT = 0x0A1
	FncMULS = 0x082
	FncMULT = 0x0A2
	FncDIVS = 0x083
	FncDIVT = 0x0A3
	FncSQRTS = 0x08B
	FncSQRTT = 0x0AB

	FncCMPTEQ = 0x0A5
	FncCMPTLT = 0x0A6
	FncCMPTLE = 0x0A7
	FncCMPTUN = 0x0A4

	FncCVTTS = 0x0AC
	FncCVTST = 0x0AD
	FncCVTQT = 0x0AE
	FncCVTTQ = 0x0AF
	FncCVTQS = 0x08C

	FncCPYS  = 0x020
	FncCPYSN = 0x021
	FncCPYSE = 0x022

	FncFCMOVEQ = 0x02A
	FncFCMOVNE = 0x02B
	FncFCMOVLT = 0x02C
	FncFCMOVLE = 0x02D
	FncFCMOVGT = 0x02E
	FncFCMOVGE = 0x02F

	FncMT_FPCR = 0x024
	FncMF_FPCR = 0x025
)

// fpFuncTable maps each function code above to the mnemonic it implements.
// Built once at package init; a duplicate key here is a programming error
// caught immediately rather than silently shadowing an earlier entry
// (spec.md Open Question, resolved per DESIGN.md decision 2).
var fpFuncTable = buildFpFuncTable()

func buildFpFuncTable() map[uint32]string {
	entries := []struct {
		code uint32
		name string
	}{
		{FncADDS, "ADDS"}, {FncADDT, "ADDT"},
		{FncSUBS, "SUBS"}, {FncSUBT, "SUBT"},
		{FncMULS, "MULS"}, {FncMULT, "MULT"},
		{FncDIVS, "DIVS"}, {FncDIVT, "DIVT"},
		{FncSQRTS, "SQRTS"}, {FncSQRTT, "SQRTT"},
		{FncCMPTEQ, "CMPTEQ"}, {FncCMPTLT, "CMPTLT"}, {FncCMPTLE, "CMPTLE"}, {FncCMPTUN, "CMPTUN"},
		{FncCVTTS, "CVTTS"}, {FncCVTST, "CVTST"}, {FncCVTQT, "CVTQT"}, {FncCVTTQ, "CVTTQ"}, {FncCVTQS, "CVTQS"},
		{FncCPYS, "CPYS"}, {FncCPYSN, "CPYSN"}, {FncCPYSE, "CPYSE"},
		{FncFCMOVEQ, "FCMOVEQ"}, {FncFCMOVNE, "FCMOVNE"}, {FncFCMOVLT, "FCMOVLT"},
		{FncFCMOVLE, "FCMOVLE"}, {FncFCMOVGT, "FCMOVGT"}, {FncFCMOVGE, "FCMOVGE"},
		{FncMT_FPCR, "MT_FPCR"}, {FncMF_FPCR, "MF_FPCR"},
	}
	table := make(map[uint32]string, len(entries))
	for _, e := range entries {
		if existing, ok := table[e.code]; ok {
			panic("vm: duplicate fp function code 0x" + hex(e.code) + " for " + existing + " and " + e.name)
		}
		table[e.code] = e.name
	}
	return table
}

func hex(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf[i:])
}

// fpFromBitsT interprets a 64-bit register pattern as T (IEEE double)
// precision.
func fpFromBitsT(bits uint64) float64 { return math.Float64frombits(bits) }

// fpToBitsT packs an IEEE double value back into its 64-bit register
// pattern.
func fpToBitsT(v float64) uint64 { return math.Float64bits(v) }

// f32bitsFromT rounds a double-precision value to single precision and
// returns its IEEE-754 32-bit pattern, used by CVTTS and FTOIS.
func f32bitsFromT(bits uint64) uint32 {
	return math.Float32bits(float32(fpFromBitsT(bits)))
}

// fpFromBitsS interprets a 32-bit single-precision pattern (held widened
// in the low 32 bits of a register) as a double value.
func fpFromBitsS(bits uint64) float64 {
	return float64(math.Float32frombits(uint32(bits)))
}

// ExecuteFpOperate implements the floating-point arithmetic, compare,
// convert, copy-sign, conditional-move, and FPCR-transfer instructions.
func ExecuteFpOperate(v *VM, f *Fields, pc uint64) *Trap {
	if !v.CPU.PS.FPEnabled {
		return NewTrap(TrapFpDisabled, pc)
	}

	name, ok := fpFuncTable[f.Fnc]
	if !ok {
		return NewTrap(TrapReservedInstruction, pc)
	}

	fcr := &v.CPU.FPCR

	switch name {
	case "ADDS", "ADDT", "SUBS", "SUBT", "MULS", "MULT", "DIVS", "DIVT":
		a := fpFromBitsT(v.CPU.ReadFP(f.Fa))
		b := fpFromBitsT(v.CPU.ReadFP(f.Fb))
		var result float64
		switch name {
		case "ADDS", "ADDT":
			result = a + b
		case "SUBS", "SUBT":
			result = a - b
		case "MULS", "MULT":
			result = a * b
		case "DIVS", "DIVT":
			if b == 0 {
				if fcr.TrapDivisionByZero {
					return NewTrap(TrapFpDivisionByZero, pc)
				}
				fcr.DivisionByZero = true
			}
			result = a / b
		}
		if isNaN(result) && fcr.TrapInvalidOp {
			return NewTrap(TrapFpInvalidOperation, pc)
		}
		v.CPU.WriteFP(f.Fc, fpToBitsT(result))

	case "SQRTS", "SQRTT":
		a := fpFromBitsT(v.CPU.ReadFP(f.Fb))
		if a < 0 {
			if fcr.TrapInvalidOp {
				return NewTrap(TrapFpInvalidOperation, pc)
			}
			fcr.InvalidOp = true
		}
		v.CPU.WriteFP(f.Fc, fpToBitsT(math.Sqrt(a)))

	case "CMPTEQ", "CMPTLT", "CMPTLE", "CMPTUN":
		a := fpFromBitsT(v.CPU.ReadFP(f.Fa))
		b := fpFromBitsT(v.CPU.ReadFP(f.Fb))
		lt, eq, gt, un := compareOrdered(a, b)
		var pass bool
		switch name {
		case "CMPTEQ":
			pass = eq
		case "CMPTLT":
			pass = lt
		case "CMPTLE":
			pass = lt || eq
		case "CMPTUN":
			pass = un
		}
		fcr.SetFPCC(lt, eq, gt, un)
		if pass {
			v.CPU.WriteFP(f.Fc, fpToBitsT(2.0))
		} else {
			v.CPU.WriteFP(f.Fc, fpToBitsT(0.0))
		}

	case "CVTTS":
		v.CPU.WriteFP(f.Fc, uint64(f32bitsFromT(v.CPU.ReadFP(f.Fb))))
	case "CVTST":
		v.CPU.WriteFP(f.Fc, fpToBitsT(fpFromBitsS(v.CPU.ReadFP(f.Fb))))
	case "CVTQT":
		q := int64(v.CPU.ReadFP(f.Fb))
		v.CPU.WriteFP(f.Fc, fpToBitsT(float64(q)))
	case "CVTTQ":
		t := fpFromBitsT(v.CPU.ReadFP(f.Fb))
		v.CPU.WriteFP(f.Fc, uint64(int64(math.Round(t))))
	case "CVTQS":
		q := int64(v.CPU.ReadFP(f.Fb))
		v.CPU.WriteFP(f.Fc, uint64(f32bitsFromT(fpToBitsT(float64(q)))))

	case "CPYS":
		v.CPU.WriteFP(f.Fc, copySign(v.CPU.ReadFP(f.Fa), v.CPU.ReadFP(f.Fb), false))
	case "CPYSN":
		v.CPU.WriteFP(f.Fc, copySign(v.CPU.ReadFP(f.Fa), v.CPU.ReadFP(f.Fb), true))
	case "CPYSE":
		v.CPU.WriteFP(f.Fc, copySignExponent(v.CPU.ReadFP(f.Fa), v.CPU.ReadFP(f.Fb)))

	case "FCMOVEQ":
		return executeFCMOV(v, f, EvaluateFp(FpPredEQ, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)
	case "FCMOVNE":
		return executeFCMOV(v, f, EvaluateFp(FpPredNE, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)
	case "FCMOVLT":
		return executeFCMOV(v, f, EvaluateFp(FpPredLT, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)
	case "FCMOVLE":
		return executeFCMOV(v, f, EvaluateFp(FpPredLE, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)
	case "FCMOVGT":
		return executeFCMOV(v, f, EvaluateFp(FpPredGT, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)
	case "FCMOVGE":
		return executeFCMOV(v, f, EvaluateFp(FpPredGE, fpFromBitsT(v.CPU.ReadFP(f.Fa))), pc)

	case "MT_FPCR":
		fcr.FromUint64(v.CPU.ReadFP(f.Fa))
		v.CPU.AdvancePC()
		return nil
	case "MF_FPCR":
		v.CPU.WriteFP(f.Fa, fcr.ToUint64())
		v.CPU.AdvancePC()
		return nil
	}

	v.CPU.AdvancePC()
	return nil
}

func executeFCMOV(v *VM, f *Fields, take bool, pc uint64) *Trap {
	if take {
		v.CPU.WriteFP(f.Fc, v.CPU.ReadFP(f.Fb))
	}
	v.CPU.AdvancePC()
	return nil
}

// compareOrdered reports the ordered relation between a and b, with un
// set whenever either operand is NaN (in which case lt/eq/gt are all
// false).
func compareOrdered(a, b float64) (lt, eq, gt, un bool) {
	if isNaN(a) || isNaN(b) {
		return false, false, false, true
	}
	switch {
	case a < b:
		return true, false, false, false
	case a > b:
		return false, false, true, false
	default:
		return false, true, false, false
	}
}

// copySign builds CPYS/CPYSN: the magnitude of a with the sign of b (or
// its complement for CPYSN).
func copySign(aBits, bBits uint64, negate bool) uint64 {
	const signBit = uint64(1) << 63
	sign := bBits & signBit
	if negate {
		sign ^= signBit
	}
	return (aBits &^ signBit) | sign
}

// copySignExponent builds CPYSE: the sign and exponent of b, the fraction
// of a.
func copySignExponent(aBits, bBits uint64) uint64 {
	const signExpMask = uint64(0xFFF) << 52
	const fracMask = ^signExpMask
	return (bBits & signExpMask) | (aBits & fracMask)
}
