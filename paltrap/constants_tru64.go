package paltrap

import "github.com/axp64/alpha-emulator/vm"

// Tru64 (Digital Unix/OSF/1) PALcode function codes. The common codes
// (HALT, IMB, RDUNIQUE/WRUNIQUE, CALLSYS, BPT/BUGCHK/GENTRAP) are the same
// numeric assignments as the Alpha-native table; Tru64 additionally
// defines its own TB-invalidate family, traditionally issued by the
// pal_tbi* entry points documented in the Architecture Reference Manual's
// OSF/1 PALcode chapter. Their exact numeric values are implementation
// placeholders in this core (spec.md section 9's "Tru64 TBI* codes");
// TLB management itself is out of scope (spec.md section 1) so these
// codes are wired to a no-op rather than invented semantics.
const (
	Tru64FnHALT     = 0x0000
	Tru64FnSWPIPL   = 0x0035
	Tru64FnRDPS     = 0x0036
	Tru64FnBPT      = 0x0080
	Tru64FnBUGCHK   = 0x0081
	Tru64FnCALLSYS  = 0x0083
	Tru64FnIMB      = 0x0086
	Tru64FnRDUNIQUE = 0x009E
	Tru64FnWRUNIQUE = 0x009F
	Tru64FnGENTRAP  = 0x00AA
	Tru64FnRETSYS   = 0x0092

	// TBI* placeholders: out-of-scope no-ops (see package doc above).
	Tru64FnTBISI = 0x00B0
	Tru64FnTBISD = 0x00B1
	Tru64FnTBIA  = 0x00B2
)

// tbiNoOp implements the out-of-scope TB-invalidate family as a
// cycle-consuming no-op: this core has no TLB to invalidate (spec.md
// section 1's "TLB/page-table walking" exclusion), so the architected
// side effect it owes the guest is limited to "instruction completes".
func tbiNoOp(_ *Dispatcher, v *vm.VM, _ uint32, _ uint64) *vm.Trap {
	v.CPU.AdvancePC()
	return nil
}

// Tru64Personality builds the Tru64 PAL dispatch table.
func Tru64Personality() *Personality {
	return &Personality{
		Name:        "Tru64",
		EntryPoints: standardEntryPoints(tru64PALBase),
		Calls: map[uint32]CallHandler{
			Tru64FnHALT:     haltHandler,
			Tru64FnSWPIPL:   swpiplHandler,
			Tru64FnRDPS:     rdpsHandler,
			Tru64FnBPT:      bptHandler,
			Tru64FnBUGCHK:   bugchkHandler,
			Tru64FnCALLSYS:  callSyscallHandler,
			Tru64FnIMB:      imbHandler,
			Tru64FnRDUNIQUE: rdUniqueHandler,
			Tru64FnWRUNIQUE: wrUniqueHandler,
			Tru64FnGENTRAP:  gentrapHandler,
			Tru64FnRETSYS:   exitHandler,
			Tru64FnTBISI:    tbiNoOp,
			Tru64FnTBISD:    tbiNoOp,
			Tru64FnTBIA:     tbiNoOp,
		},
	}
}
