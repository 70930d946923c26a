package paltrap

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/axp64/alpha-emulator/vm"
)

// Syscall numbers dispatched through CALLSYS/CHMK, following the
// teacher's SWI numbering scheme one-for-one (console I/O, then file ops,
// then process/environment queries) since the host-services surface this
// core exposes to a guest kernel is the same shape regardless of which
// PAL personality fields the call.
const (
	SysExit          = 0x00
	SysWriteChar     = 0x01
	SysWriteString   = 0x02
	SysWriteInt      = 0x03
	SysReadChar      = 0x04
	SysReadString    = 0x05
	SysReadInt       = 0x06
	SysWriteNewline  = 0x07
	SysGetTime       = 0x30
	SysGetRandom     = 0x31
	SysGetArguments  = 0x32
	SysDebugPrint    = 0xF0
	SysDumpRegisters = 0xF2
)

// maxGuestString bounds how many bytes callSyscall will read out of guest
// memory for a NUL-terminated string argument, guarding against a corrupt
// or malicious pointer turning a syscall into an unbounded memory walk.
const maxGuestString = 4096

// callSyscallHandler implements the personality-independent syscall
// surface: R0 holds the syscall number on entry, RA0-RA5 its arguments,
// and the result (where one exists) is returned in R0. This mirrors the
// teacher's handleSWI dispatch, widened from a 32-bit ARM register file to
// Alpha's R0/R16-R21 argument convention.
func callSyscallHandler(_ *Dispatcher, v *vm.VM, _ uint32, pc uint64) *vm.Trap {
	num := v.CPU.ReadInt(vm.R0)
	switch num {
	case SysExit:
		v.ExitCode = int32(v.CPU.ReadInt(vm.RA0))
		v.State = vm.StateHalted
		return nil

	case SysWriteChar:
		fmt.Fprintf(v.OutputWriter, "%c", byte(v.CPU.ReadInt(vm.RA0)))

	case SysWriteString:
		s, trap := readGuestString(v, v.CPU.ReadInt(vm.RA0), pc)
		if trap != nil {
			return trap
		}
		fmt.Fprint(v.OutputWriter, s)

	case SysWriteInt:
		fmt.Fprintf(v.OutputWriter, "%d", int64(v.CPU.ReadInt(vm.RA0)))

	case SysWriteNewline:
		fmt.Fprintln(v.OutputWriter)

	case SysReadChar:
		b, err := v.ReadStdinByte()
		if err != nil {
			v.CPU.WriteInt(vm.R0, ^uint64(0))
		} else {
			v.CPU.WriteInt(vm.R0, uint64(b))
		}

	case SysReadString:
		line, err := v.ReadStdinLine()
		if err != nil && line == "" {
			v.CPU.WriteInt(vm.R0, ^uint64(0))
			break
		}
		line = trimNewline(line)
		dest := v.CPU.ReadInt(vm.RA0)
		maxLen := v.CPU.ReadInt(vm.RA1)
		if trap := writeGuestString(v, dest, line, maxLen, pc); trap != nil {
			return trap
		}
		v.CPU.WriteInt(vm.R0, uint64(len(line)))

	case SysReadInt:
		line, err := v.ReadStdinLine()
		if err != nil && line == "" {
			v.CPU.WriteInt(vm.R0, ^uint64(0))
			break
		}
		n, perr := strconv.ParseInt(trimNewline(line), 10, 64)
		if perr != nil {
			v.CPU.WriteInt(vm.R0, ^uint64(0))
		} else {
			v.CPU.WriteInt(vm.R0, uint64(n))
		}

	case SysGetTime:
		v.CPU.WriteInt(vm.R0, uint64(time.Now().Unix()))

	case SysGetRandom:
		v.CPU.WriteInt(vm.R0, rand.Uint64())

	case SysGetArguments:
		v.CPU.WriteInt(vm.R0, uint64(len(v.ProgramArguments)))

	case SysDebugPrint:
		fmt.Fprintf(v.OutputWriter, "[debug pc=0x%016X] R16=0x%016X\n", pc, v.CPU.ReadInt(vm.RA0))

	case SysDumpRegisters:
		fmt.Fprintln(v.OutputWriter, v.DumpState())

	default:
		v.CPU.WriteInt(vm.R0, ^uint64(0))
	}

	v.CPU.AdvancePC()
	return nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// readGuestString reads a NUL-terminated string out of guest memory one
// byte at a time through the MemoryInterface, the same access path every
// other instruction handler uses (no direct backing-array reach-through).
func readGuestString(v *vm.VM, va uint64, pc uint64) (string, *vm.Trap) {
	var b []byte
	for i := 0; i < maxGuestString; i++ {
		word, fault := v.Memory.ReadVA(v.CPUID, va+uint64(i), 1)
		if fault != nil {
			return "", vm.NewTrap(vm.TrapFaultOnRead, pc)
		}
		if word == 0 {
			break
		}
		b = append(b, byte(word))
	}
	return string(b), nil
}

// writeGuestString writes s plus a terminating NUL into guest memory at
// dest; a nonzero maxLen caps the total at maxLen bytes (maxLen-1 bytes of
// s, then the NUL).
func writeGuestString(v *vm.VM, dest uint64, s string, maxLen uint64, pc uint64) *vm.Trap {
	n := uint64(len(s))
	if maxLen > 0 && n > maxLen-1 {
		n = maxLen - 1
	}
	for i := uint64(0); i < n; i++ {
		if fault := v.Memory.WriteVA(v.CPUID, dest+i, uint64(s[i]), 1); fault != nil {
			return vm.NewTrap(vm.TrapFaultOnWrite, pc)
		}
	}
	if fault := v.Memory.WriteVA(v.CPUID, dest+n, 0, 1); fault != nil {
		return vm.NewTrap(vm.TrapFaultOnWrite, pc)
	}
	return nil
}
