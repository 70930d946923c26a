package vm

import "fmt"

// MemFaultKind enumerates the ways the memory interface can refuse an
// access (spec.md section 4.3).
type MemFaultKind int

const (
	MemFaultUnaligned MemFaultKind = iota
	MemFaultUnmapped
	MemFaultProtection
	MemFaultTlbMiss
)

// MemFault is returned by a MemoryInterface implementation instead of a
// plain Go error, so the core can translate it into the matching
// architectural trap without string-sniffing.
type MemFault struct {
	Kind   MemFaultKind
	VA     uint64
	Detail string
}

func (m *MemFault) Error() string {
	return fmt.Sprintf("memory fault (%d) at VA=0x%016X: %s", m.Kind, m.VA, m.Detail)
}

// MemoryInterface is the external collaborator consumed by this core
// (spec.md section 4.3). The core never implements TLB walking or MMIO
// itself; Memory below is a reference implementation suitable for
// standalone use and for tests.
type MemoryInterface interface {
	ReadVA(cpuID int, va uint64, widthBytes int) (uint64, *MemFault)
	WriteVA(cpuID int, va uint64, value uint64, widthBytes int) *MemFault
	AtomicFetch(va uint64) (uint64, *MemFault)
	AtomicFetchModify(va uint64) (uint64, *MemFault)
}

// MemoryPermission is a bitmask of access rights granted to a segment.
type MemoryPermission byte

const (
	PermNone    MemoryPermission = 0
	PermRead    MemoryPermission = 1 << 0
	PermWrite   MemoryPermission = 1 << 1
	PermExecute MemoryPermission = 1 << 2
)

// MemorySegment is a contiguous, permissioned region of guest address space.
type MemorySegment struct {
	Start       uint64
	Size        uint64
	Data        []byte
	Permissions MemoryPermission
	Name        string
}

// Memory is the reference MemoryInterface implementation: a flat list of
// permissioned segments, little-endian, with alignment enforcement.
type Memory struct {
	Segments     []*MemorySegment
	LittleEndian bool
	StrictAlign  bool
	AccessCount  uint64
	ReadCount    uint64
	WriteCount   uint64

	// otherReservations lets WriteVA clear other CPUs' reservations on
	// this line, per spec.md section 5's cross-CPU reservation discipline.
	otherReservations []*Reservation
}

// NewMemory creates a Memory instance with the four standard segments.
func NewMemory() *Memory {
	m := &Memory{LittleEndian: true, StrictAlign: true}
	m.AddSegment("code", CodeSegmentStart, CodeSegmentSize, PermRead|PermWrite|PermExecute)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("heap", HeapSegmentStart, HeapSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment registers a new memory segment.
func (m *Memory) AddSegment(name string, start, size uint64, perm MemoryPermission) {
	m.Segments = append(m.Segments, &MemorySegment{
		Start: start, Size: size, Data: make([]byte, size), Permissions: perm, Name: name,
	})
}

// WatchReservation registers another CPU's reservation so a write that
// touches its locked line clears it, per spec.md section 5.
func (m *Memory) WatchReservation(r *Reservation) {
	m.otherReservations = append(m.otherReservations, r)
}

func (m *Memory) findSegment(va uint64) (*MemorySegment, uint64, *MemFault) {
	for _, seg := range m.Segments {
		if va >= seg.Start && va < seg.Start+seg.Size {
			return seg, va - seg.Start, nil
		}
	}
	return nil, 0, &MemFault{Kind: MemFaultUnmapped, VA: va, Detail: "address not mapped"}
}

func (m *Memory) checkAlignment(va uint64, width int) *MemFault {
	if !m.StrictAlign {
		return nil
	}
	mask := uint64(width - 1)
	if va&mask != 0 {
		return &MemFault{Kind: MemFaultUnaligned, VA: va, Detail: fmt.Sprintf("requires %d-byte alignment", width)}
	}
	return nil
}

// ReadVA implements MemoryInterface.ReadVA: zero-extends narrower widths;
// the caller sign-extends if the instruction demands it.
func (m *Memory) ReadVA(_ int, va uint64, width int) (uint64, *MemFault) {
	if fault := m.checkAlignment(va, width); fault != nil {
		return 0, fault
	}
	seg, off, fault := m.findSegment(va)
	if fault != nil {
		return 0, fault
	}
	if seg.Permissions&PermRead == 0 {
		return 0, &MemFault{Kind: MemFaultProtection, VA: va, Detail: "read permission denied"}
	}
	if off+uint64(width) > seg.Size {
		return 0, &MemFault{Kind: MemFaultUnmapped, VA: va, Detail: "access exceeds segment bounds"}
	}
	m.AccessCount++
	m.ReadCount++
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(seg.Data[off+uint64(i)]) << (8 * i)
	}
	return v, nil
}

// WriteVA implements MemoryInterface.WriteVA.
func (m *Memory) WriteVA(_ int, va uint64, value uint64, width int) *MemFault {
	if fault := m.checkAlignment(va, width); fault != nil {
		return fault
	}
	seg, off, fault := m.findSegment(va)
	if fault != nil {
		return fault
	}
	if seg.Permissions&PermWrite == 0 {
		return &MemFault{Kind: MemFaultProtection, VA: va, Detail: "write permission denied"}
	}
	if off+uint64(width) > seg.Size {
		return &MemFault{Kind: MemFaultUnmapped, VA: va, Detail: "access exceeds segment bounds"}
	}
	m.AccessCount++
	m.WriteCount++
	for i := 0; i < width; i++ {
		seg.Data[off+uint64(i)] = byte(value >> (8 * i))
	}

	// Clear any other CPU's reservation on this line (spec.md section 5).
	line := va &^ uint64(AlignMaskQuad)
	for _, r := range m.otherReservations {
		if r.Valid && r.Addr&^uint64(AlignMaskQuad) == line {
			r.Clear()
		}
	}
	return nil
}

// AtomicFetch implements the FETCH memory-function primitive: read the
// quadword at va without otherwise affecting state.
func (m *Memory) AtomicFetch(va uint64) (uint64, *MemFault) {
	return m.ReadVA(0, va, 8)
}

// AtomicFetchModify implements FETCH_M: same as AtomicFetch in this
// reference implementation, which has no cache-line ownership model to
// distinguish "fetch for modify" from "fetch for read".
func (m *Memory) AtomicFetchModify(va uint64) (uint64, *MemFault) {
	return m.ReadVA(0, va, 8)
}

// LoadBytes loads a byte slice into memory starting at address va.
func (m *Memory) LoadBytes(va uint64, data []byte) error {
	for i, b := range data {
		if fault := m.WriteVA(0, va+uint64(i), uint64(b), 1); fault != nil {
			return fmt.Errorf("failed to load byte at offset %d: %w", i, fault)
		}
	}
	return nil
}

// Reset zeroes every segment's backing storage and access counters.
func (m *Memory) Reset() {
	for _, seg := range m.Segments {
		for i := range seg.Data {
			seg.Data[i] = 0
		}
	}
	m.AccessCount, m.ReadCount, m.WriteCount = 0, 0, 0
}

// CheckExecutePermission reports whether va's segment is executable.
func (m *Memory) CheckExecutePermission(va uint64) *MemFault {
	seg, _, fault := m.findSegment(va)
	if fault != nil {
		return fault
	}
	if seg.Permissions&PermExecute == 0 {
		return &MemFault{Kind: MemFaultProtection, VA: va, Detail: "execute permission denied"}
	}
	return nil
}

// MakeCodeReadOnly locks the code segment after loading a program image.
func (m *Memory) MakeCodeReadOnly() {
	for _, seg := range m.Segments {
		if seg.Name == "code" {
			seg.Permissions = PermRead | PermExecute
		}
	}
}
