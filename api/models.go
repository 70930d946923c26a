package api

import (
	"time"

	"github.com/axp64/alpha-emulator/service"
)

// SessionCreateRequest represents a request to create a new session
type SessionCreateRequest struct {
	MemorySize uint64 `json:"memorySize,omitempty"` // Memory size in bytes (default: 1MB)
	StackSize  uint64 `json:"stackSize,omitempty"`  // Stack size in bytes (default: 64KB)
	HeapSize   uint64 `json:"heapSize,omitempty"`   // Heap size in bytes (default: 256KB)
	FSRoot     string `json:"fsRoot,omitempty"`      // Filesystem root directory
}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint64 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
	Error     string `json:"error,omitempty"`
}

// LoadProgramRequest represents a request to load a program
type LoadProgramRequest struct {
	Source string `json:"source"` // Assembly source code
}

// LoadProgramResponse represents the response from loading a program
type LoadProgramResponse struct {
	Success bool              `json:"success"`
	Errors  []string          `json:"errors,omitempty"`
	Symbols map[string]uint64 `json:"symbols,omitempty"`
}

// RegistersResponse represents the current register state of all 32
// integer registers (R31 is hardwired to zero on the Alpha and reads
// back as such here too).
type RegistersResponse struct {
	Registers [32]uint64 `json:"registers"`
	PC        uint64     `json:"pc"`
	PS        PSFlags    `json:"ps"`
	Cycles    uint64     `json:"cycles"`
}

// PSFlags represents the Alpha processor status flags
type PSFlags struct {
	N    bool `json:"n"` // Negative
	Z    bool `json:"z"` // Zero
	C    bool `json:"c"` // Carry
	V    bool `json:"v"` // Overflow
	Mode int  `json:"mode"`
	IPL  int  `json:"ipl"`
}

// MemoryRequest represents a request for memory data
type MemoryRequest struct {
	Address uint64 `json:"address"`
	Length  uint64 `json:"length"`
}

// MemoryResponse represents memory data
type MemoryResponse struct {
	Address uint64 `json:"address"`
	Data    []byte `json:"data"`
	Length  uint64 `json:"length"`
}

// DisassemblyRequest represents a request for disassembly
type DisassemblyRequest struct {
	Address uint64 `json:"address"`
	Count   uint64 `json:"count"`
}

// DisassemblyResponse represents disassembled instructions
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo represents a disassembled instruction
type InstructionInfo struct {
	Address     uint64 `json:"address"`
	MachineCode uint32 `json:"machineCode"`
	Disassembly string `json:"disassembly"`
	Symbol      string `json:"symbol,omitempty"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address uint64 `json:"address"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []uint64 `json:"breakpoints"`
}

// StdinRequest represents a request to send stdin data
type StdinRequest struct {
	Data string `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event
type StateEvent struct {
	State     string     `json:"state"`
	PC        uint64     `json:"pc"`
	Registers [32]uint64 `json:"registers"`
	PS        PSFlags    `json:"ps"`
	Cycles    uint64     `json:"cycles"`
}

// OutputEvent represents console output
type OutputEvent struct {
	Stream  string `json:"stream"`  // "stdout" or "stderr"
	Content string `json:"content"` // Output content
}

// ExecutionEvent represents execution events like breakpoints
type ExecutionEvent struct {
	Event   string `json:"event"` // "breakpoint_hit", "error", "halted"
	Address uint64 `json:"address,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToRegisterResponse converts service.RegisterState to API response
func ToRegisterResponse(regs *service.RegisterState) *RegistersResponse {
	return &RegistersResponse{
		Registers: regs.Registers,
		PC:        regs.PC,
		PS: PSFlags{
			N:    regs.PS.N,
			Z:    regs.PS.Z,
			C:    regs.PS.C,
			V:    regs.PS.V,
			Mode: regs.PS.Mode,
			IPL:  regs.PS.IPL,
		},
		Cycles: regs.Cycles,
	}
}

// ToInstructionInfo converts service.DisassemblyLine to API response
func ToInstructionInfo(line *service.DisassemblyLine) InstructionInfo {
	return InstructionInfo{
		Address:     line.Address,
		MachineCode: line.Opcode,
		Disassembly: line.Mnemonic,
		Symbol:      line.Symbol,
	}
}
