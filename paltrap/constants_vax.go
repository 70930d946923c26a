package paltrap

// VAX-compatibility PALcode function codes. This personality layers VMS's
// CHMK/CHME/CHMS/CHMU change-mode model on top of the same common PALcode
// base as the other two personalities; CHMK is wired to the shared syscall
// surface (the VAX-compatibility PALcode's CALLSYS analog), and RFE is its
// exit instruction name for REI/RETSYS.
const (
	VAXFnHALT     = 0x0000
	VAXFnSWPIPL   = 0x0035
	VAXFnRDPS     = 0x0036
	VAXFnBPT      = 0x0080
	VAXFnBUGCHK   = 0x0081
	VAXFnCHMK     = 0x0083
	VAXFnIMB      = 0x0086
	VAXFnRDUNIQUE = 0x009E
	VAXFnWRUNIQUE = 0x009F
	VAXFnGENTRAP  = 0x00AA
	VAXFnRFE      = 0x0092
)

// VAXPersonality builds the VAX-compatibility PAL dispatch table.
func VAXPersonality() *Personality {
	return &Personality{
		Name:        "VAX",
		EntryPoints: standardEntryPoints(vaxPALBase),
		Calls: map[uint32]CallHandler{
			VAXFnHALT:     haltHandler,
			VAXFnSWPIPL:   swpiplHandler,
			VAXFnRDPS:     rdpsHandler,
			VAXFnBPT:      bptHandler,
			VAXFnBUGCHK:   bugchkHandler,
			VAXFnCHMK:     callSyscallHandler,
			VAXFnIMB:      imbHandler,
			VAXFnRDUNIQUE: rdUniqueHandler,
			VAXFnWRUNIQUE: wrUniqueHandler,
			VAXFnGENTRAP:  gentrapHandler,
			VAXFnRFE:      exitHandler,
		},
	}
}
