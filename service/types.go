package service

import "github.com/axp64/alpha-emulator/vm"

// RegisterState represents a snapshot of CPU registers
type RegisterState struct {
	Registers [32]uint64
	PS        PSState
	PC        uint64
	Cycles    uint64
}

// PSState represents the Alpha processor status flags for serialization
type PSState struct {
	N    bool // Negative
	Z    bool // Zero
	C    bool // Carry
	V    bool // Overflow
	Mode int  // Processor mode (kernel/user)
	IPL  int  // Interrupt priority level
}

// BreakpointInfo represents a breakpoint for UI display
type BreakpointInfo struct {
	Address   uint64 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition"` // Expression that must evaluate to true
}

// WatchpointInfo represents a watchpoint for UI display
type WatchpointInfo struct {
	ID      int    `json:"id"`
	Address uint64 `json:"address"`
	Type    string `json:"type"` // "read", "write", "readwrite"
	Enabled bool   `json:"enabled"`
}

// MemoryRegion represents a contiguous memory region
type MemoryRegion struct {
	Address uint64
	Data    []byte
	Size    uint64
}

// ExecutionState represents the current state of execution
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts vm.ExecutionState to service.ExecutionState
func VMStateToExecution(state vm.ExecutionState) ExecutionState {
	switch state {
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateBreakpoint:
		return StateBreakpoint
	case vm.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address  uint64 `json:"address"`
	Opcode   uint32 `json:"opcode"` // Alpha instruction words are always 32 bits
	Mnemonic string `json:"mnemonic"`
	Symbol   string `json:"symbol"` // Symbol at this address, if any
}

// SourceMapEntry maps an address to its originating source line
type SourceMapEntry struct {
	Address    uint64 `json:"address"`
	LineNumber int    `json:"lineNumber"`
	Line       string `json:"line"`
}

// StackEntry represents a single stack location
type StackEntry struct {
	Address uint64 `json:"address"`
	Value   uint64 `json:"value"`
	Symbol  string `json:"symbol"` // If value points to a symbol
}
