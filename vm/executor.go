package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// ExecutionState represents the current state of the execution loop.
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateBreakpoint
	StateError
)

// PALDispatcher is the external collaborator that delivers a PAL call or a
// pending architectural trap. The core itself only decodes the 26-bit PAL
// function code and the trap taxonomy (spec.md section 4.8, 7); exception
// frame layout, personality selection, and PALcode semantics live in the
// paltrap package, kept decoupled here to avoid an import cycle.
type PALDispatcher interface {
	Dispatch(v *VM, fnc uint32, pc uint64) *Trap
	DeliverTrap(v *VM, t *Trap)
}

// JITHook is consulted by dispatch for every Operate and FpOperate
// instruction when a JIT backend is wired in (config.Config.Execution.
// JITEnabled). Returning true means the hook fully executed the
// instruction itself, including the PC advance that the matching
// interpreter Execute* function would otherwise have performed, and
// dispatch treats the step as trap-free. Returning false leaves the
// instruction to the ordinary interpreter dispatch below.
type JITHook func(v *VM, format Format, f *Fields, pc uint64) bool

// VM represents a single Alpha AXP processor core plus the execution
// bookkeeping (tracing, statistics, cycle limits) that does not belong to
// the architectural CPU state itself.
type VM struct {
	CPUID  int
	CPU    *CPU
	Memory MemoryInterface
	PAL    PALDispatcher

	State ExecutionState

	MaxCycles      uint64
	CycleLimit     uint64
	InstructionLog []uint64

	LastError error
	LastTrap  *Trap

	EntryPoint       uint64
	StackTop         uint64
	ProgramArguments []string
	ExitCode         int32

	OutputWriter io.Writer

	ExecutionTrace *ExecutionTrace
	MemoryTrace    *MemoryTrace
	Statistics     *PerformanceStatistics

	CodeCoverage  *CodeCoverage
	StackTrace    *StackTrace
	FlagTrace     *FlagTrace
	RegisterTrace *RegisterTrace

	// JIT, when non-nil, is tried before the interpreter for Operate and
	// FpOperate instructions (config.Config.Execution.JITEnabled). Left
	// nil, every instruction runs through the interpreter as before.
	JIT JITHook

	files []*os.File
	fdMu  sync.Mutex

	stdinReader *bufio.Reader

	// interruptFlag backs the RS/RC intra-processor interrupt-pending bit
	// (spec.md section 4.2's MemFunc group); it has no other architected
	// storage in this core.
	interruptFlag bool
}

// NewVM creates a new virtual machine instance.
func NewVM() *VM {
	return &VM{
		CPU:              NewCPU(),
		Memory:           NewMemory(),
		State:            StateHalted,
		MaxCycles:        DefaultMaxCycles,
		InstructionLog:   make([]uint64, 0, DefaultLogCapacity),
		EntryPoint:       CodeSegmentStart,
		ProgramArguments: make([]string, 0),
		OutputWriter:     os.Stdout,
		stdinReader:      bufio.NewReader(os.Stdin),
	}
}

// Reset resets the VM to its initial state, clearing memory contents too.
func (vm *VM) Reset() {
	vm.CPU.Reset()
	if m, ok := vm.Memory.(*Memory); ok {
		m.Reset()
	}
	vm.State = StateHalted
	vm.InstructionLog = vm.InstructionLog[:0]
	vm.LastError = nil
	vm.LastTrap = nil
}

// ResetRegisters resets only CPU state, preserving loaded memory contents,
// useful for a debugger restarting execution without re-loading the image.
func (vm *VM) ResetRegisters() {
	vm.CPU.Reset()
	vm.CPU.PC = vm.EntryPoint
	if vm.StackTop != 0 {
		vm.CPU.WriteInt(SP, vm.StackTop)
	}
	vm.State = StateHalted
	vm.InstructionLog = vm.InstructionLog[:0]
	vm.LastError = nil
	vm.LastTrap = nil
}

// LoadProgram loads program bytes into code memory and sets PC to the start
// address.
func (vm *VM) LoadProgram(data []byte, startAddress uint64) error {
	m, ok := vm.Memory.(*Memory)
	if !ok {
		return fmt.Errorf("LoadProgram requires the reference Memory implementation")
	}
	if err := m.LoadBytes(startAddress, data); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	vm.CPU.PC = startAddress
	vm.EntryPoint = startAddress
	vm.State = StateHalted
	return nil
}

// SetEntryPoint sets the program counter to the entry point.
func (vm *VM) SetEntryPoint(address uint64) {
	vm.EntryPoint = address
	vm.CPU.PC = address
}

// InitializeStack initializes the stack pointer.
func (vm *VM) InitializeStack(stackTop uint64) {
	vm.StackTop = stackTop
	vm.CPU.WriteInt(SP, stackTop)
}

// Step executes a single instruction, routing any architectural trap
// through the PAL dispatcher rather than returning it as a Go error
// (spec.md section 4.7): a returned Go error here means the VM itself
// could not continue (cycle limit, execute-permission denial at fetch,
// an already-halted/errored state), not a guest-visible exception.
func (vm *VM) Step() error {
	if vm.State == StateError {
		return fmt.Errorf("VM is in error state: %w", vm.LastError)
	}

	if vm.CycleLimit > 0 && vm.CPU.Cycles >= vm.CycleLimit {
		vm.State = StateError
		vm.LastError = fmt.Errorf("cycle limit exceeded (%d cycles)", vm.CycleLimit)
		return vm.LastError
	}

	if m, ok := vm.Memory.(*Memory); ok {
		if fault := m.CheckExecutePermission(vm.CPU.PC); fault != nil {
			vm.State = StateError
			vm.LastError = fault
			return fault
		}
	}

	pc := vm.CPU.PC
	vm.InstructionLog = append(vm.InstructionLog, pc)

	word, trap := vm.Fetch()
	if trap != nil {
		vm.deliverOrHalt(trap)
		return nil
	}

	format, fields := Decode(word)

	var regsBefore [32]uint64
	if vm.RegisterTrace != nil && vm.RegisterTrace.Enabled {
		regsBefore = vm.CPU.R
	}

	trap = vm.dispatch(format, &fields, pc)
	if trap != nil {
		vm.deliverOrHalt(trap)
		return nil
	}

	vm.CPU.IncrementCycles(1)

	if vm.CodeCoverage != nil {
		vm.CodeCoverage.RecordExecution(pc, vm.CPU.Cycles)
	}
	if vm.FlagTrace != nil {
		instName := fmt.Sprintf("0x%08X", word)
		vm.FlagTrace.RecordFlags(vm.CPU.Cycles, pc, instName, vm.CPU.PS)
	}
	if vm.RegisterTrace != nil && vm.RegisterTrace.Enabled {
		for i := 0; i < AlphaIntRegisterCount-1; i++ {
			if vm.CPU.R[i] != regsBefore[i] {
				vm.RegisterTrace.RecordWrite(vm.CPU.Cycles, pc, fmt.Sprintf("R%d", i), regsBefore[i], vm.CPU.R[i])
			}
		}
	}
	if vm.ExecutionTrace != nil {
		vm.ExecutionTrace.RecordInstruction(vm, fmt.Sprintf("0x%08X", word))
	}

	return nil
}

// deliverOrHalt hands a trap to the PAL dispatcher if one is installed,
// otherwise halts the VM on the trap (suitable for bare instruction-level
// testing with no PAL personality wired in).
func (vm *VM) deliverOrHalt(t *Trap) {
	vm.LastTrap = t
	if vm.PAL != nil {
		vm.PAL.DeliverTrap(vm, t)
		return
	}
	vm.State = StateError
	vm.LastError = t
}

// Fetch fetches the instruction word at the current PC.
func (vm *VM) Fetch() (uint32, *Trap) {
	v, fault := vm.Memory.ReadVA(vm.CPUID, vm.CPU.PC, 4)
	if fault != nil {
		return 0, memFaultToTrap(fault, vm.CPU.PC, false)
	}
	return uint32(v), nil
}

// dispatch routes a decoded instruction to its format handler, and PAL
// calls to the installed PALDispatcher.
func (vm *VM) dispatch(format Format, f *Fields, pc uint64) *Trap {
	if vm.JIT != nil && (format == FormatOperate || format == FormatFpOperate) {
		if vm.JIT(vm, format, f, pc) {
			return nil
		}
	}

	switch format {
	case FormatPal:
		if vm.PAL == nil {
			return NewTrap(TrapReservedInstruction, pc)
		}
		return vm.PAL.Dispatch(vm, f.PalFnc, pc)

	case FormatMemFunc:
		return ExecuteMemFunc(vm, f, pc)

	case FormatJump:
		return ExecuteJump(vm, f, pc)

	case FormatBranch:
		return ExecuteBranch(vm, f, pc)

	case FormatOperate:
		switch f.Op {
		case OpINTA:
			return ExecuteIntArith(vm, f, pc)
		case OpINTL:
			return ExecuteLogical(vm, f, pc)
		case OpINTS:
			return ExecuteByteManip(vm, f, pc)
		case OpINTM:
			return ExecuteMultiply(vm, f, pc)
		case OpINTV:
			return ExecuteIntVector(vm, f, pc)
		}
		return NewTrap(TrapReservedInstruction, pc)

	case FormatFpOperate:
		return ExecuteFpOperate(vm, f, pc)

	case FormatMemRef:
		return ExecuteMemRef(vm, f, pc)

	default:
		return NewTrap(TrapReservedInstruction, pc)
	}
}

// Run executes instructions until the VM halts, errors, or hits a
// breakpoint.
func (vm *VM) Run() error {
	vm.State = StateRunning

	for vm.State == StateRunning {
		if err := vm.Step(); err != nil {
			return err
		}
		if vm.CPU.Cycles > vm.MaxCycles {
			vm.State = StateHalted
			return fmt.Errorf("maximum cycles exceeded")
		}
	}

	return nil
}

// GetState returns the current execution state.
func (vm *VM) GetState() ExecutionState { return vm.State }

// SetState sets the execution state.
func (vm *VM) SetState(state ExecutionState) { vm.State = state }

// GetInstructionHistory returns the history of executed instruction
// addresses.
func (vm *VM) GetInstructionHistory() []uint64 { return vm.InstructionLog }

// DumpState returns a string representation of the VM state for debugging.
func (vm *VM) DumpState() string {
	return fmt.Sprintf(
		"PC=0x%016X SP=0x%016X RA=0x%016X PS=[%s%s%s%s] Cycles=%d State=%v",
		vm.CPU.PC,
		vm.CPU.ReadInt(SP),
		vm.CPU.ReadInt(RA),
		flagChar(vm.CPU.PS.N, "N"), flagChar(vm.CPU.PS.Z, "Z"),
		flagChar(vm.CPU.PS.C, "C"), flagChar(vm.CPU.PS.V, "V"),
		vm.CPU.Cycles,
		vm.State,
	)
}

func flagChar(set bool, name string) string {
	if set {
		return name
	}
	return "-"
}

// Bootstrap initializes the VM runtime environment for a freshly loaded
// program image.
func (vm *VM) Bootstrap(args []string) error {
	vm.ProgramArguments = args

	stackTop := uint64(StackSegmentStart + StackSegmentSize)
	vm.InitializeStack(stackTop)

	vm.CPU.WriteInt(RA, 0xFFFFFFFFFFFFFFFF)
	vm.CPU.PC = vm.EntryPoint
	vm.State = StateHalted
	vm.ExitCode = 0

	return nil
}

// FindEntryPoint searches for common entry point labels in a symbol table.
func (vm *VM) FindEntryPoint(symbols map[string]uint64) (uint64, error) {
	entryPoints := []string{"_start", "main", "__start", "start"}

	for _, name := range entryPoints {
		if addr, exists := symbols[name]; exists {
			vm.EntryPoint = addr
			return addr, nil
		}
	}

	vm.EntryPoint = CodeSegmentStart
	return CodeSegmentStart, fmt.Errorf("no entry point found, using default 0x%016X", CodeSegmentStart)
}

// SetProgramArguments sets command-line arguments for the program.
func (vm *VM) SetProgramArguments(args []string) { vm.ProgramArguments = args }

// GetExitCode returns the program exit code.
func (vm *VM) GetExitCode() int32 { return vm.ExitCode }

// SetStdinReader lets a TUI/GUI front end supply its own input source in
// place of os.Stdin, the same accommodation the teacher's syscall layer
// makes for its console-read SWIs.
func (vm *VM) SetStdinReader(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		vm.stdinReader = br
	} else {
		vm.stdinReader = bufio.NewReader(r)
	}
}

// ResetStdinReader restores the VM's stdin source to os.Stdin, undoing a
// prior SetStdinReader redirection.
func (vm *VM) ResetStdinReader() {
	vm.stdinReader = bufio.NewReader(os.Stdin)
}

// ReadStdinByte reads a single byte from the VM's configured stdin source,
// used by the PAL layer's console-input calls.
func (vm *VM) ReadStdinByte() (byte, error) {
	return vm.stdinReader.ReadByte()
}

// ReadStdinLine reads up to and including the next newline from the VM's
// configured stdin source, used by the PAL layer's console-input calls.
func (vm *VM) ReadStdinLine() (string, error) {
	return vm.stdinReader.ReadString('\n')
}
