package paltrap

import "github.com/axp64/alpha-emulator/vm"

// CallHandler implements one PAL function code's architected behavior. It
// returns a trap only when the call itself must re-enter the full
// trap-delivery sequence (BPT/BUGCHK/GENTRAP and the like); ordinary
// PALcode actions (HALT, IMB, RDUNIQUE, ...) return nil and advance PC
// themselves, exactly like an ordinary instruction handler.
type CallHandler func(d *Dispatcher, v *vm.VM, fnc uint32, pc uint64) *vm.Trap

// Personality is one PAL dispatch table: the entry-point PC named by each
// trap kind, and the CALL_PAL function-code handler table. Swapping
// personalities is swapping this value, not subclassing (spec.md section
// 9 "PAL personality is a function-table value, not a subclass").
type Personality struct {
	Name        string
	EntryPoints map[vm.TrapKind]uint64
	Calls       map[uint32]CallHandler
}

// entryPointBase offsets keep the three personalities' PAL code resident
// in disjoint regions of the code segment, so a PAL table mismatch (guest
// built for the wrong personality) fails loudly instead of aliasing.
const (
	alphaPALBase = vm.CodeSegmentStart + 0x000D0000
	tru64PALBase = vm.CodeSegmentStart + 0x000E0000
	vaxPALBase   = vm.CodeSegmentStart + 0x000F0000
)

// standardEntryPoints builds the trap-kind -> PAL entry point table shared
// in shape by all three personalities, offset from base. The numbering
// within a personality is this core's own layout (the architecture leaves
// PAL entry-point placement to the PALcode image, not hardware), spaced
// 0x40 bytes apart so each handler has room for a short real routine.
func standardEntryPoints(base uint64) map[vm.TrapKind]uint64 {
	kinds := []vm.TrapKind{
		vm.TrapReservedInstruction,
		vm.TrapIntegerOverflow,
		vm.TrapFpInvalidOperation,
		vm.TrapFpDivisionByZero,
		vm.TrapFpOverflow,
		vm.TrapFpUnderflow,
		vm.TrapFpInexact,
		vm.TrapUnalignedAccess,
		vm.TrapAccessViolation,
		vm.TrapTranslationNotValid,
		vm.TrapFaultOnRead,
		vm.TrapFaultOnWrite,
		vm.TrapPrivilegedInstruction,
		vm.TrapFpDisabled,
		vm.TrapBreakpoint,
		vm.TrapBugCheck,
		vm.TrapGenericTrap,
		vm.TrapMachineCheck,
		vm.TrapProcessorInterrupt,
		vm.TrapInterprocessorInterrupt,
		vm.TrapClockInterrupt,
	}
	table := make(map[vm.TrapKind]uint64, len(kinds))
	for i, k := range kinds {
		table[k] = base + uint64(i)*0x40
	}
	return table
}
