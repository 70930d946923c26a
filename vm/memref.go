package vm

// ExecuteMemRef implements the MemRef format: LDA/LDAH (address arithmetic,
// no memory access), the aligned integer and FP loads/stores, LDQ_U/STQ_U
// (unaligned quadword access), and the load-locked/store-conditional pair
// used to build lock-free synchronization primitives.
func ExecuteMemRef(v *VM, f *Fields, pc uint64) *Trap {
	base := v.CPU.ReadInt(f.Rb)
	addr := uint64(int64(base) + f.Disp)

	switch f.Op {
	case OpLDA:
		v.CPU.WriteInt(f.Ra, addr)
		v.CPU.AdvancePC()
		return nil
	case OpLDAH:
		v.CPU.WriteInt(f.Ra, uint64(int64(base)+f.Disp<<16))
		v.CPU.AdvancePC()
		return nil

	case OpLDBU:
		return loadInt(v, f, addr, 1, false, pc)
	case OpLDWU:
		return loadInt(v, f, addr, 2, false, pc)
	case OpLDL:
		return loadInt(v, f, addr, 4, true, pc)
	case OpLDQ:
		return loadInt(v, f, addr, 8, false, pc)

	case OpSTB:
		return storeInt(v, f, addr, 1, pc)
	case OpSTW:
		return storeInt(v, f, addr, 2, pc)
	case OpSTL:
		return storeInt(v, f, addr, 4, pc)
	case OpSTQ:
		return storeInt(v, f, addr, 8, pc)

	case OpLDQU:
		return loadInt(v, f, addr&^uint64(AlignMaskQuad), 8, false, pc)
	case OpSTQU:
		return storeInt(v, f, addr&^uint64(AlignMaskQuad), 8, pc)

	case OpLDLL:
		return loadLocked(v, f, addr, 4, pc)
	case OpLDQL:
		return loadLocked(v, f, addr, 8, pc)
	case OpSTLC:
		return storeConditional(v, f, addr, 4, pc)
	case OpSTQC:
		return storeConditional(v, f, addr, 8, pc)

	case OpLDF, OpLDG, OpLDS, OpLDT:
		return loadFp(v, f, addr, pc)
	case OpSTF, OpSTG, OpSTS, OpSTT:
		return storeFp(v, f, addr, pc)
	}

	return NewTrap(TrapReservedInstruction, pc)
}

func loadInt(v *VM, f *Fields, addr uint64, width int, signExtend bool, pc uint64) *Trap {
	val, fault := v.Memory.ReadVA(v.CPUID, addr, width)
	if fault != nil {
		return memFaultToTrap(fault, pc, false)
	}
	if signExtend {
		val = SignExtend32(val)
	}
	v.CPU.WriteInt(f.Ra, val)
	v.CPU.AdvancePC()
	return nil
}

func storeInt(v *VM, f *Fields, addr uint64, width int, pc uint64) *Trap {
	val := v.CPU.ReadInt(f.Ra)
	if fault := v.Memory.WriteVA(v.CPUID, addr, val, width); fault != nil {
		return memFaultToTrap(fault, pc, true)
	}
	v.CPU.AdvancePC()
	return nil
}

// loadFp implements LDF/LDS (4-byte, single-precision-shaped) and LDG/LDT
// (8-byte, double-precision-shaped) loads. F/G are carried as an
// approximation of the VAX precisions over the same IEEE value domain as
// S/T (spec.md's non-goal on bit-exact VAX float reproduction).
func loadFp(v *VM, f *Fields, addr uint64, pc uint64) *Trap {
	width := 8
	if f.Op == OpLDF || f.Op == OpLDS {
		width = 4
	}
	raw, fault := v.Memory.ReadVA(v.CPUID, addr, width)
	if fault != nil {
		return memFaultToTrap(fault, pc, false)
	}
	var bits uint64
	if width == 4 {
		bits = fpToBitsT(fpFromBitsS(raw))
	} else {
		bits = raw
	}
	v.CPU.WriteFP(f.Ra, bits)
	v.CPU.AdvancePC()
	return nil
}

func storeFp(v *VM, f *Fields, addr uint64, pc uint64) *Trap {
	bits := v.CPU.ReadFP(f.Ra)
	width := 8
	var raw uint64
	if f.Op == OpSTF || f.Op == OpSTS {
		width = 4
		raw = uint64(f32bitsFromT(bits))
	} else {
		raw = bits
	}
	if fault := v.Memory.WriteVA(v.CPUID, addr, raw, width); fault != nil {
		return memFaultToTrap(fault, pc, true)
	}
	v.CPU.AdvancePC()
	return nil
}

// loadLocked implements LDx_L: load the value and establish a reservation
// on the naturally-aligned quadword containing addr (spec.md section 5).
func loadLocked(v *VM, f *Fields, addr uint64, width int, pc uint64) *Trap {
	val, fault := v.Memory.ReadVA(v.CPUID, addr, width)
	if fault != nil {
		return memFaultToTrap(fault, pc, false)
	}
	if width == 4 {
		val = SignExtend32(val)
	}
	v.CPU.WriteInt(f.Ra, val)
	v.CPU.Reservation.Valid = true
	v.CPU.Reservation.Addr = addr &^ uint64(AlignMaskQuad)
	v.CPU.AdvancePC()
	return nil
}

// storeConditional implements STx_C: the store only takes effect while the
// reservation from a prior load-locked is still valid for this line;
// either way Ra is overwritten with the 0/1 success indicator and the
// reservation is cleared (spec.md section 5).
func storeConditional(v *VM, f *Fields, addr uint64, width int, pc uint64) *Trap {
	line := addr &^ uint64(AlignMaskQuad)
	success := v.CPU.Reservation.Valid && v.CPU.Reservation.Addr == line

	if success {
		val := v.CPU.ReadInt(f.Ra)
		if fault := v.Memory.WriteVA(v.CPUID, addr, val, width); fault != nil {
			return memFaultToTrap(fault, pc, true)
		}
	}

	v.CPU.Reservation.Clear()
	v.CPU.WriteInt(f.Ra, boolToU64(success))
	v.CPU.AdvancePC()
	return nil
}
