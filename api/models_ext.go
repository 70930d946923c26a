package api

import "github.com/axp64/alpha-emulator/service"

// WatchpointRequest represents a request to add a watchpoint
type WatchpointRequest struct {
	Address uint64 `json:"address"`
	Type    string `json:"type,omitempty"` // "read", "write", or "readwrite"
}

// WatchpointResponse represents a newly created watchpoint
type WatchpointResponse struct {
	ID      int    `json:"id"`
	Address uint64 `json:"address"`
	Type    string `json:"type"`
}

// WatchpointsResponse represents a list of watchpoints
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// TraceEntryInfo represents a single execution trace entry for the API
type TraceEntryInfo struct {
	Sequence        uint64            `json:"sequence"`
	Address         uint64            `json:"address"`
	Opcode          uint64            `json:"opcode"`
	Disassembly     string            `json:"disassembly"`
	RegisterChanges map[string]uint64 `json:"registerChanges,omitempty"`
	Flags           PSFlags           `json:"flags"`
	DurationNs      int64             `json:"durationNs"`
}

// TraceDataResponse represents a batch of execution trace entries
type TraceDataResponse struct {
	Entries []TraceEntryInfo `json:"entries"`
	Count   int              `json:"count"`
}

// StatisticsResponse represents aggregated execution statistics
type StatisticsResponse struct {
	TotalInstructions  uint64            `json:"totalInstructions"`
	TotalCycles        uint64            `json:"totalCycles"`
	ExecutionTimeMs    int64             `json:"executionTimeMs"`
	InstructionsPerSec float64           `json:"instructionsPerSec"`
	InstructionCounts  map[string]uint64 `json:"instructionCounts,omitempty"`
	BranchCount        uint64            `json:"branchCount"`
	BranchTakenCount   uint64            `json:"branchTakenCount"`
	BranchMissedCount  uint64            `json:"branchMissedCount"`
	MemoryReads        uint64            `json:"memoryReads"`
	MemoryWrites       uint64            `json:"memoryWrites"`
	BytesRead          uint64            `json:"bytesRead"`
	BytesWritten       uint64            `json:"bytesWritten"`
}

// ExampleInfo describes an example assembly program available to load
type ExampleInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ExamplesResponse lists the available example programs
type ExamplesResponse struct {
	Examples []ExampleInfo `json:"examples"`
	Count    int           `json:"count"`
}

// ExampleContentResponse returns the source of a single example program
type ExampleContentResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
}

// ExecutionConfig mirrors the execution-related fields of config.Config
type ExecutionConfig struct {
	MaxCycles      uint64 `json:"maxCycles"`
	StackSize      uint64 `json:"stackSize"`
	DefaultEntry   string `json:"defaultEntry"`
	EnableTrace    bool   `json:"enableTrace"`
	EnableMemTrace bool   `json:"enableMemTrace"`
	EnableStats    bool   `json:"enableStats"`
}

// DebuggerConfig mirrors the debugger-related fields of config.Config
type DebuggerConfig struct {
	HistorySize    int  `json:"historySize"`
	AutoSaveBreaks bool `json:"autoSaveBreaks"`
	ShowSource     bool `json:"showSource"`
	ShowRegisters  bool `json:"showRegisters"`
}

// DisplayConfig mirrors the display-related fields of config.Config
type DisplayConfig struct {
	ColorOutput   bool   `json:"colorOutput"`
	BytesPerLine  int    `json:"bytesPerLine"`
	DisasmContext int    `json:"disasmContext"`
	SourceContext int    `json:"sourceContext"`
	NumberFormat  string `json:"numberFormat"`
}

// TraceConfig mirrors the trace-related fields of config.Config
type TraceConfig struct {
	OutputFile    string `json:"outputFile"`
	FilterRegs    string `json:"filterRegs"`
	IncludeFlags  bool   `json:"includeFlags"`
	IncludeTiming bool   `json:"includeTiming"`
	MaxEntries    int    `json:"maxEntries"`
}

// StatisticsConfig mirrors the statistics-related fields of config.Config
type StatisticsConfig struct {
	OutputFile     string `json:"outputFile"`
	Format         string `json:"format"`
	CollectHotPath bool   `json:"collectHotPath"`
	TrackCalls     bool   `json:"trackCalls"`
}

// ConfigResponse is the JSON shape exchanged with /api/v1/config
type ConfigResponse struct {
	Execution  ExecutionConfig  `json:"execution"`
	Debugger   DebuggerConfig   `json:"debugger"`
	Display    DisplayConfig    `json:"display"`
	Trace      TraceConfig      `json:"trace"`
	Statistics StatisticsConfig `json:"statistics"`
}
