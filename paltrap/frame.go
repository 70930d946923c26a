// Package paltrap implements the PAL / trap layer: exception-frame
// save/restore and the three PAL personality dispatch tables (Alpha-native,
// Tru64, VAX-compatibility) that the vm package consults through the
// vm.PALDispatcher interface.
package paltrap

import "github.com/axp64/alpha-emulator/vm"

// ExceptionFrame mirrors the 128-byte, 64-byte-aligned frame pushed onto
// the exception stack on trap entry (spec.md section 6): PC, PS, exception
// summary, the argument registers R16-R21, RA, PV, SP, and FPCR. The
// struct is laid out in the same field order as the architected frame; the
// trailing Reserved bytes pad it out to the full 128.
type ExceptionFrame struct {
	PC      uint64
	PS      uint64 // packed processor status, see packPS/unpackPS
	Summary uint64 // exception summary: trap kind, faulting VA, bad opcode
	R16     uint64
	R17     uint64
	R18     uint64
	R19     uint64
	R20     uint64
	R21     uint64
	RA      uint64
	PV      uint64
	SP      uint64
	FPCR    uint64

	Reserved [24]byte // pads the frame to the architected 128 bytes
}

// packPS encodes a vm.PS into the single word stored in the exception
// frame, in this core's own layout: mode in bits 0-1, IPL in bits 2-6,
// N/Z/V/C in bits 8-11, then the PS flag bits above them; unpackPS reads
// the same layout back.
func packPS(ps *vm.PS) uint64 {
	var v uint64
	v |= uint64(ps.Mode) & 0x3
	v |= uint64(ps.IPL&0x1F) << 2
	setBit := func(bit uint, cond bool) {
		if cond {
			v |= 1 << bit
		}
	}
	setBit(8, ps.N)
	setBit(9, ps.Z)
	setBit(10, ps.V)
	setBit(11, ps.C)
	setBit(12, ps.FPEnabled)
	setBit(13, ps.OverflowTrp)
	return v
}

// unpackPS decodes a frame's packed PS word back into a vm.PS, the inverse
// of packPS, used by the PAL exit instructions (REI/RFE/RETSYS).
func unpackPS(v uint64) vm.PS {
	bit := func(b uint) bool { return (v & (1 << b)) != 0 }
	return vm.PS{
		Mode:        vm.ProcessorMode(v & 0x3),
		IPL:         int((v >> 2) & 0x1F),
		N:           bit(8),
		Z:           bit(9),
		V:           bit(10),
		C:           bit(11),
		FPEnabled:   bit(12),
		OverflowTrp: bit(13),
	}
}

// exceptionStack is the per-dispatcher stack of saved frames. The core's
// memory interface does not model the PAL exception stack itself (spec.md
// section 6 treats it as a consumed abstraction); this reference PAL layer
// keeps it as a plain Go slice rather than guest-addressable memory.
type exceptionStack struct {
	frames []*ExceptionFrame
}

func (s *exceptionStack) push(f *ExceptionFrame) {
	s.frames = append(s.frames, f)
}

func (s *exceptionStack) pop() *ExceptionFrame {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

func (s *exceptionStack) top() *ExceptionFrame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}
