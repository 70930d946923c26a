// Package jit compiles a curated subset of decoded Alpha instructions
// into x86-64 host machine code via the encoder package's Assembler,
// falling back to a host call into the matching interpreter handler for
// everything it does not cover (spec.md section 4.6).
package jit

import "github.com/axp64/alpha-emulator/encoder"

// Host calling convention shared by every compiled routine: the caller
// loads the guest integer and floating-point register-array base
// pointers into IntRegBase/FPRegBase (the SysV first and second
// argument registers) before transferring control, and the routine
// returns via a plain RET once it has updated Rc/Fc in place. Scratch1-3
// and FPScratch1-2 are free for a routine's own use; nothing survives a
// call across routine boundaries.
const (
	IntRegBase = encoder.RDI
	FPRegBase  = encoder.RSI

	Scratch1 = encoder.RAX
	Scratch2 = encoder.RCX
	Scratch3 = encoder.RDX

	FPScratch1 = encoder.XMM0
	FPScratch2 = encoder.XMM1
)

// regSlot is the byte width of one guest register-array element.
const regSlot = 8

func intSlot(idx int) int32 { return int32(idx * regSlot) }
func fpSlot(idx int) int32  { return int32(idx * regSlot) }
