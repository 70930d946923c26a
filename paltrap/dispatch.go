package paltrap

import "github.com/axp64/alpha-emulator/vm"

// Dispatcher implements vm.PALDispatcher for one active personality. A
// *vm.VM holds exactly one Dispatcher (or none, for bare instruction-level
// testing); swapping PAL personalities means constructing a new Dispatcher
// around a different Personality table.
type Dispatcher struct {
	Personality *Personality
	stack       exceptionStack
}

// NewDispatcher builds a Dispatcher for the named personality. Unknown
// names fall back to Alpha-native, matching the config package's
// pal_personality default (spec.md section 6).
func NewDispatcher(personality string) *Dispatcher {
	switch personality {
	case "Tru64":
		return &Dispatcher{Personality: Tru64Personality()}
	case "VAX":
		return &Dispatcher{Personality: VAXPersonality()}
	default:
		return &Dispatcher{Personality: AlphaPersonality()}
	}
}

// Dispatch routes a decoded CALL_PAL function code to its handler, or
// raises ReservedInstruction for an unrecognized code (spec.md section
// 4.8's "unrecognized PAL codes raise a reserved-instruction trap").
func (d *Dispatcher) Dispatch(v *vm.VM, fnc uint32, pc uint64) *vm.Trap {
	h, ok := d.Personality.Calls[fnc]
	if !ok {
		return vm.NewTrap(vm.TrapReservedInstruction, pc)
	}
	return h(d, v, fnc, pc)
}

// DeliverTrap runs the trap-delivery sequence of spec.md section 4.8:
// save the exception frame, switch to kernel mode at the trap's IPL,
// redirect PC to the personality's entry point for this trap kind.
func (d *Dispatcher) DeliverTrap(v *vm.VM, t *vm.Trap) {
	entry, ok := d.Personality.EntryPoints[t.Kind]
	if !ok {
		v.State = vm.StateError
		v.LastError = t
		return
	}

	frame := &ExceptionFrame{
		PC:      t.PC,
		PS:      packPS(&v.CPU.PS),
		Summary: summaryWord(t),
		R16:     v.CPU.ReadInt(vm.RA0),
		R17:     v.CPU.ReadInt(vm.RA1),
		R18:     v.CPU.ReadInt(vm.RA2),
		R19:     v.CPU.ReadInt(vm.RA3),
		R20:     v.CPU.ReadInt(vm.RA4),
		R21:     v.CPU.ReadInt(vm.RA5),
		RA:      v.CPU.ReadInt(vm.RA),
		PV:      v.CPU.ReadInt(vm.PV),
		SP:      v.CPU.ReadInt(vm.SP),
		FPCR:    v.CPU.FPCR.ToUint64(),
	}
	d.stack.push(frame)

	v.CPU.PS.Mode = vm.ModeKernel
	v.CPU.PS.IPL = iplForTrap(t.Kind)
	v.CPU.WritePC(entry)

	if v.State != vm.StateHalted {
		v.State = vm.StateRunning
	}
}

// summaryWord packs the trap kind and, for memory traps, the faulting VA's
// low 32 bits into the frame's single exception-summary field (spec.md
// section 6 names one "exception summary" field, not separate VA/opcode
// fields; the full detail remains available on the *vm.Trap itself for a
// debugger front-end that wants it).
func summaryWord(t *vm.Trap) uint64 {
	return uint64(t.Kind) | (uint64(t.FaultVA&0xFFFFFFFF) << 8) | (uint64(t.BadOpcode) << 40)
}

// iplForTrap assigns the interrupt priority level a trap runs at once
// delivered. Real PALcode raises IPL to 31 (all interrupts blocked) for
// every synchronous exception and machine check; only the three
// asynchronous interrupt classes run at their own intermediate level so a
// higher-priority interrupt can still preempt them.
func iplForTrap(k vm.TrapKind) int {
	switch k {
	case vm.TrapClockInterrupt:
		return 22
	case vm.TrapInterprocessorInterrupt:
		return 24
	case vm.TrapProcessorInterrupt:
		return 20
	default:
		return 31
	}
}

// exitFrame pops and returns the top exception frame, or nil if the
// exception stack is empty (an exit instruction with no matching entry,
// itself a PALcode bug rather than a guest-visible architectural state).
func (d *Dispatcher) exitFrame() *ExceptionFrame {
	return d.stack.pop()
}
