//go:build !(amd64 && unix)

package jit

import "fmt"

// Supported is false on platforms without a native JIT backend. The
// config-selected JIT path (config.Config.Execution.JITEnabled) falls
// back to pure interpretation on these builds.
const Supported = false

// executableBlock has no representation on an unsupported platform.
type executableBlock struct{}

func mapExecutable(code []byte) (*executableBlock, error) {
	return nil, fmt.Errorf("jit: native execution is not supported on this platform")
}

func (b *executableBlock) Close() error { return nil }

func (b *executableBlock) run(intRegs, fpRegs *[32]uint64) {}
