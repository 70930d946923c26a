package vm

// ProcessorMode is the current privilege mode held in PS.
type ProcessorMode int

const (
	ModeKernel ProcessorMode = iota
	ModeExecutive
	ModeSupervisor
	ModeUser
)

// PS represents the Processor Status register: current mode, interrupt
// priority level, integer condition codes, and the FP-enable bit. The FP
// condition code lives in FPCR, not here, so an FP compare never clobbers
// these bits.
type PS struct {
	Mode ProcessorMode
	IPL  int // interrupt priority level, 0-31

	N bool // negative
	Z bool // zero
	V bool // overflow
	C bool // carry

	FPEnabled   bool // FPE bit; FP instructions trap FpDisabled when false
	OverflowTrp bool // integer overflow trap-enable for the /V qualifier
}

// UpdateFlagsNZ updates N and Z from a 64-bit result. Logical operations
// use only this helper; they never touch V or C.
func (p *PS) UpdateFlagsNZ(result uint64) {
	p.N = (result & SignBit64Mask) != 0
	p.Z = result == 0
}

// UpdateFlagsNZCV updates all four integer condition codes. Arithmetic
// operations use this helper.
func (p *PS) UpdateFlagsNZCV(result uint64, carry, overflow bool) {
	p.UpdateFlagsNZ(result)
	p.C = carry
	p.V = overflow
}

// FPCR represents the Floating-Point Control Register.
type FPCR struct {
	RoundingMode RoundingMode

	// Sticky exception flags, set once raised and never cleared by the
	// core itself (only by explicit software write via MT_FPCR).
	Inexact        bool
	Underflow      bool
	Overflow       bool
	DivisionByZero bool
	InvalidOp      bool

	// Trap-enable bits, one per sticky flag above.
	TrapInexact        bool
	TrapUnderflow      bool
	TrapOverflow       bool
	TrapDivisionByZero bool
	TrapInvalidOp      bool

	// 4-bit FP condition code: exactly one of these is true after a CMPTxx.
	CCLessThan  bool
	CCEqual     bool
	CCGreater   bool
	CCUnordered bool
}

// RoundingMode selects the IEEE rounding applied by an FP operation whose
// function code does not hard-code a static mode.
type RoundingMode int

const (
	RoundDynamic      RoundingMode = iota // defer to FPCR.RoundingMode itself (illegal as a stored value)
	RoundNearestEven               // chopped/default
	RoundTowardZero
	RoundTowardPlusInf
	RoundTowardMinusInf
)

// ToUint64 packs FPCR into its architected 64-bit layout: sticky flags and
// trap-enables in the low bits, rounding mode in bits 55-57, FP condition
// code in bits 59-62, a fixed position
// mirroring the real Alpha FPCR layout closely enough for MF_FPCR/MT_FPCR
// round-tripping within this core.
func (f *FPCR) ToUint64() uint64 {
	var v uint64
	setBit := func(bit uint, cond bool) {
		if cond {
			v |= 1 << bit
		}
	}
	setBit(0, f.Inexact)
	setBit(1, f.Underflow)
	setBit(2, f.Overflow)
	setBit(3, f.DivisionByZero)
	setBit(4, f.InvalidOp)
	setBit(5, f.TrapInexact)
	setBit(6, f.TrapUnderflow)
	setBit(7, f.TrapOverflow)
	setBit(8, f.TrapDivisionByZero)
	setBit(9, f.TrapInvalidOp)
	v |= uint64(f.RoundingMode&0x7) << 55
	setBit(61, f.CCLessThan)
	setBit(60, f.CCEqual)
	setBit(59, f.CCGreater)
	setBit(62, f.CCUnordered)
	return v
}

// FromUint64 unpacks FPCR from its architected 64-bit layout (MT_FPCR).
func (f *FPCR) FromUint64(v uint64) {
	bit := func(b uint) bool { return (v & (1 << b)) != 0 }
	f.Inexact = bit(0)
	f.Underflow = bit(1)
	f.Overflow = bit(2)
	f.DivisionByZero = bit(3)
	f.InvalidOp = bit(4)
	f.TrapInexact = bit(5)
	f.TrapUnderflow = bit(6)
	f.TrapOverflow = bit(7)
	f.TrapDivisionByZero = bit(8)
	f.TrapInvalidOp = bit(9)
	f.RoundingMode = RoundingMode((v >> 55) & 0x7)
	f.CCLessThan = bit(61)
	f.CCEqual = bit(60)
	f.CCGreater = bit(59)
	f.CCUnordered = bit(62)
}

// SetFPCC sets the 4-bit FP condition code to exactly one outcome, as
// CMPTxx requires.
func (f *FPCR) SetFPCC(lt, eq, gt, un bool) {
	f.CCLessThan, f.CCEqual, f.CCGreater, f.CCUnordered = lt, eq, gt, un
}
