package vm

// CPU represents the architectural state of a single Alpha AXP processor.
type CPU struct {
	// General purpose integer registers R0-R31. R31 is wired to zero: reads
	// return 0 and writes are discarded by the accessor methods below, so
	// index 31 of this array is never touched.
	R [32]uint64

	// Floating-point registers F0-F31, stored as raw IEEE-754-shaped bit
	// patterns. F31 behaves like R31.
	F [32]uint64

	// Program counter. Always longword-aligned on an instruction boundary.
	PC uint64

	// Processor Status: mode, IPL, integer condition codes, FP-enable.
	PS PS

	// Floating-Point Control Register: rounding mode, sticky flags,
	// trap-enables, and the 4-bit FP condition code.
	FPCR FPCR

	// Reservation for load-locked / store-conditional.
	Reservation Reservation

	// Cycle counter for statistics; the core is functionally, not
	// cycle-accurate.
	Cycles uint64

	// PALUnique backs RDUNIQUE/WRUNIQUE: a per-thread value PALcode hands
	// back to the guest kernel untouched (used by Tru64/Linux for the
	// thread-control-block pointer). The architecture does not define its
	// storage; PALcode implementations keep it in an internal register.
	PALUnique uint64
}

// Reservation is the per-CPU (valid, address) pair load-locked/
// store-conditional pairs operate on.
type Reservation struct {
	Valid bool
	Addr  uint64
}

// Clear invalidates the reservation. Called on any write to the locked
// line, on a context switch, and after every store-conditional attempt.
func (r *Reservation) Clear() {
	r.Valid = false
	r.Addr = 0
}

// Register aliases for convenience, matching Alpha calling-convention names.
const (
	R0  = 0
	RA0 = 16 // first argument register, per the exception-frame layout
	RA1 = 17
	RA2 = 18
	RA3 = 19
	RA4 = 20
	RA5 = 21
	RA  = 26 // return address
	PV  = 27 // procedure value
	AT  = 28 // assembler temporary
	GP  = 29 // global pointer
	SP  = 30 // stack pointer
	// R31 reads as zero and is not given a role alias.
)

// NewCPU creates and initializes a new CPU instance.
func NewCPU() *CPU {
	return &CPU{}
}

// Reset resets the CPU to its initial state.
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	for i := range c.F {
		c.F[i] = 0
	}
	c.PC = 0
	c.PS = PS{}
	c.FPCR = FPCR{}
	c.Reservation.Clear()
	c.Cycles = 0
}

// ReadInt returns the value of integer register idx. R31 always reads zero.
func (c *CPU) ReadInt(idx int) uint64 {
	if idx == ZeroRegister {
		return 0
	}
	return c.R[idx]
}

// WriteInt sets integer register idx. Writes to R31 are silently discarded.
func (c *CPU) WriteInt(idx int, value uint64) {
	if idx == ZeroRegister {
		return
	}
	c.R[idx] = value
}

// ReadFP returns the raw bit pattern of FP register idx. F31 always reads
// as the all-zero bit pattern (+0.0 in every supported precision).
func (c *CPU) ReadFP(idx int) uint64 {
	if idx == ZeroRegister {
		return 0
	}
	return c.F[idx]
}

// WriteFP sets the raw bit pattern of FP register idx. Writes to F31 are
// silently discarded.
func (c *CPU) WriteFP(idx int, bits uint64) {
	if idx == ZeroRegister {
		return
	}
	c.F[idx] = bits
}

// ReadPC returns the current program counter.
func (c *CPU) ReadPC() uint64 { return c.PC }

// WritePC sets the program counter directly (branches, jumps, trap entry).
func (c *CPU) WritePC(addr uint64) { c.PC = addr }

// AdvancePC advances the program counter by one instruction (4 bytes).
func (c *CPU) AdvancePC() { c.PC += AlphaInstructionSize }

// IncrementCycles advances the cycle counter used for statistics and RPCC.
func (c *CPU) IncrementCycles(n uint64) { c.Cycles += n }
