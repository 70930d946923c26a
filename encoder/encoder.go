package encoder

import (
	"encoding/binary"
	"fmt"
)

// Assembler is an append-only byte-code buffer for host x86-64 machine
// code, plus a label table and a pending rel32-fixup list (spec.md
// section 4.5's assembler invariants: once emitted, bytes never move;
// branches to a not-yet-bound label are patched by Bytes). It plays
// the same role for the JIT path that the teacher's Encoder played for
// its ARM text-to-word assembler, but it emits host bytes, not guest
// words, and it is not thread-safe: each compiling thread owns its own
// instance (spec.md section 5).
type Assembler struct {
	buf    []byte
	labels map[Label]int // label -> buf offset once bound, -1 if unbound
	fixups []fixup
	next   Label
}

// Label is an opaque forward-reference handle returned by NewLabel and
// bound to a concrete offset by BindLabel.
type Label int

type fixup struct {
	label  Label
	at     int // offset of the rel32 field itself
	nextIP int // offset of the byte after the rel32 field (rel32 is relative to here)
}

// NewAssembler creates an empty host-code buffer.
func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[Label]int)}
}

// NewLabel allocates a fresh, as-yet-unbound label.
func (a *Assembler) NewLabel() Label {
	a.next++
	a.labels[a.next] = -1
	return a.next
}

// BindLabel fixes a label to the current end of the buffer — the next
// byte emitted is the label's address.
func (a *Assembler) BindLabel(l Label) {
	a.labels[l] = len(a.buf)
}

// Offset returns the buffer's current length, the address the next
// emitted byte will land at.
func (a *Assembler) Offset() int { return len(a.buf) }

// Bytes returns the assembled code, patching every rel32 fixup against
// its label's bound offset. An error is returned if any label referenced
// by a fixup was never bound (spec.md section 4.5's "every label
// referenced by a fixup must be bound before Finalize").
func (a *Assembler) Bytes() ([]byte, error) {
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok || target < 0 {
			return nil, NewAssembleError(0, fmt.Sprintf("unresolved label %d referenced by fixup at offset %d", f.label, f.at))
		}
		rel := int32(target - f.nextIP)
		binary.LittleEndian.PutUint32(a.buf[f.at:f.at+4], uint32(rel))
	}
	return a.buf, nil
}

func (a *Assembler) emitByte(b byte) { a.buf = append(a.buf, b) }

func (a *Assembler) emitBytes(bs ...byte) { a.buf = append(a.buf, bs...) }

func (a *Assembler) emitImm32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.buf = append(a.buf, b[:]...)
}

func (a *Assembler) emitImm64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	a.buf = append(a.buf, b[:]...)
}

// emitRel32Fixup emits a placeholder rel32 and records a fixup so Bytes
// can patch it once the label is bound; used by every branch/call helper.
func (a *Assembler) emitRel32Fixup(l Label) {
	at := len(a.buf)
	a.emitImm32(rel32Placeholder)
	a.fixups = append(a.fixups, fixup{label: l, at: at, nextIP: len(a.buf)})
}

// rex builds a REX prefix byte from the three extension bits plus the
// 64-bit-operand bit. A REX prefix is only required when operand size is
// 64-bit or any operand is r8-r15/spl-dil; callers needing the 32-bit
// form simply omit calling rex.
func rex(w bool, r, x, b Reg) byte {
	v := rexBase
	if w {
		v |= rexW
	}
	if r >= R8 {
		v |= rexR
	}
	if x >= R8 {
		v |= rexX
	}
	if b >= R8 {
		v |= rexB
	}
	return v
}

// modRM builds a ModRM byte for register-direct addressing: mod=11,
// reg=reg's low 3 bits, rm=rm's low 3 bits.
func modRM(reg, rm Reg) byte {
	return modDirect | (byte(reg&0x7) << 3) | byte(rm&0x7)
}

// emitModRMIndirect emits a ModRM byte plus trailing displacement bytes for
// [rm+disp] addressing, used by the load/store helpers in memory.go.
func (a *Assembler) emitModRMIndirect(reg, base Reg, disp int32) {
	switch {
	case disp == 0 && base&0x7 != 0x5: // rbp/r13 base with disp=0 still needs disp8=0 (mod=01) since mod=00+rm=101 means RIP-relative
		a.emitByte(byte(reg&0x7)<<3 | byte(base&0x7))
		if base&0x7 == 0x4 {
			a.emitByte(0x24) // SIB: no index, base=RSP/R12
		}
	case disp >= -128 && disp <= 127:
		a.emitByte(modIndirectDisp8 | byte(reg&0x7)<<3 | byte(base&0x7))
		if base&0x7 == 0x4 {
			a.emitByte(0x24)
		}
		a.emitByte(byte(int8(disp)))
	default:
		a.emitByte(modIndirectDisp32 | byte(reg&0x7)<<3 | byte(base&0x7))
		if base&0x7 == 0x4 {
			a.emitByte(0x24)
		}
		a.emitImm32(uint32(disp))
	}
}
