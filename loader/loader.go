package loader

import (
	"fmt"

	"github.com/axp64/alpha-emulator/parser"
	"github.com/axp64/alpha-emulator/vm"
)

// LoadProgramIntoVM loads a parsed guest-assembly program into the VM's
// memory: a flat, ELF-less image, no section headers or relocations
// beyond what the parser's symbol table already resolved. It creates the
// memory segments the code and data need, writes data directives, encodes
// every instruction via parser.EncodeInstruction, and sets up PC at the
// entry point.
func LoadProgramIntoVM(machine *vm.VM, program *parser.Program, entryPoint uint32) error {
	// Ensure a memory segment exists below the standard segments when the
	// entry point or any parsed instruction or directive address lies there
	needsLow := uint64(entryPoint) < vm.CodeSegmentStart
	for _, inst := range program.Instructions {
		if uint64(inst.Address) < vm.CodeSegmentStart {
			needsLow = true
		}
	}
	for _, d := range program.Directives {
		if uint64(d.Address) < vm.CodeSegmentStart {
			needsLow = true
		}
	}
	if needsLow {
		// Create a low memory segment for programs using .org 0x0000 or similar
		if mem, ok := machine.Memory.(*vm.Memory); ok {
			mem.AddSegment("low-memory", 0, vm.CodeSegmentStart, vm.PermRead|vm.PermWrite|vm.PermExecute)
		} else {
			return fmt.Errorf("low memory load requires the reference vm.Memory implementation")
		}
	}

	// Track the maximum address used, for diagnostics only (Alpha has no
	// literal pool to place after the data segment).
	maxAddr := entryPoint

	// The parser has already calculated each instruction's address
	// accounting for the interleaved layout of instructions and directives.
	for _, inst := range program.Instructions {
		if instEnd := inst.Address + 4; instEnd > maxAddr {
			maxAddr = instEnd
		}
	}

	// Process data directives using parser-calculated addresses
	for _, directive := range program.Directives {
		dataAddr := directive.Address

		switch directive.Name {
		case ".org":
			// .org directive is handled at parse time, skip it here
			continue

		case ".align":
			// Alignment is already handled by parser in directive.Address
			continue

		case ".balign":
			// Alignment is already handled by parser in directive.Address
			continue

		case ".word":
			// Write 32-bit words
			for _, arg := range directive.Args {
				var value uint32
				// Try to parse as a number first
				if _, err := fmt.Sscanf(arg, "0x%x", &value); err != nil {
					if _, err := fmt.Sscanf(arg, "%d", &value); err != nil {
						// Not a number, try to look up as a symbol (label)
						symValue, symErr := program.SymbolTable.Get(arg)
						if symErr != nil {
							return fmt.Errorf("invalid .word value %q: %w", arg, symErr)
						}
						value = symValue
					}
				}
				if fault := machine.Memory.WriteVA(0, uint64(dataAddr), uint64(value), 4); fault != nil {
					return fmt.Errorf(".word write failed at 0x%08X: %w", dataAddr, fault)
				}
				dataAddr += 4
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".byte":
			// Write bytes
			for _, arg := range directive.Args {
				var value uint32
				// Check for character literal: 'A', '\n', '\x41', '\123'
				if len(arg) >= 3 && arg[0] == '\'' && arg[len(arg)-1] == '\'' {
					charContent := arg[1 : len(arg)-1] // Content between quotes
					if len(charContent) == 1 {
						// Simple character: 'A'
						value = uint32(charContent[0])
					} else if len(charContent) >= 2 && charContent[0] == '\\' {
						// Escape sequence: '\n', '\x41', '\123'
						b, _, err := parser.ParseEscapeChar(charContent)
						if err != nil {
							return fmt.Errorf("invalid .byte escape sequence: %s", arg)
						}
						value = uint32(b)
					} else {
						return fmt.Errorf("invalid .byte character literal: %s", arg)
					}
				} else if _, err := fmt.Sscanf(arg, "0x%x", &value); err != nil {
					if _, err := fmt.Sscanf(arg, "%d", &value); err != nil {
						return fmt.Errorf("invalid .byte value: %s", arg)
					}
				}
				if fault := machine.Memory.WriteVA(0, uint64(dataAddr), uint64(byte(value)), 1); fault != nil {
					return fmt.Errorf(".byte write failed at 0x%08X: %w", dataAddr, fault)
				}
				dataAddr++
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".ascii":
			// Write string without null terminator
			if len(directive.Args) > 0 {
				str := directive.Args[0]
				// Remove quotes (parser may have already removed them)
				if len(str) >= 2 && (str[0] == '"' || str[0] == '\'') {
					str = str[1 : len(str)-1]
				}
				// Process escape sequences
				processedStr := parser.ProcessEscapeSequences(str)
				// Write string bytes
				for i := 0; i < len(processedStr); i++ {
					if fault := machine.Memory.WriteVA(0, uint64(dataAddr), uint64(processedStr[i]), 1); fault != nil {
						return fmt.Errorf(".ascii write failed at 0x%08X: %w", dataAddr, fault)
					}
					dataAddr++
				}
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".asciz", ".string":
			// Write null-terminated string
			if len(directive.Args) > 0 {
				str := directive.Args[0]
				// Remove quotes
				if len(str) >= 2 && (str[0] == '"' || str[0] == '\'') {
					str = str[1 : len(str)-1]
				}
				// Process escape sequences
				processedStr := parser.ProcessEscapeSequences(str)
				// Write string bytes
				for i := 0; i < len(processedStr); i++ {
					if fault := machine.Memory.WriteVA(0, uint64(dataAddr), uint64(processedStr[i]), 1); fault != nil {
						return fmt.Errorf(".asciz write failed at 0x%08X: %w", dataAddr, fault)
					}
					dataAddr++
				}
				// Write null terminator
				if fault := machine.Memory.WriteVA(0, uint64(dataAddr), 0, 1); fault != nil {
					return fmt.Errorf(".asciz terminator write failed at 0x%08X: %w", dataAddr, fault)
				}
				dataAddr++
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".space", ".skip":
			// Space is reserved but not written - just track the address
			if len(directive.Args) > 0 {
				var size uint32
				if _, err := fmt.Sscanf(directive.Args[0], "0x%x", &size); err != nil {
					if _, err := fmt.Sscanf(directive.Args[0], "%d", &size); err == nil {
						// Successfully parsed
					}
				}
				endAddr := dataAddr + size
				if endAddr > maxAddr {
					maxAddr = endAddr
				}
			}

		}
	}

	// Second pass: encode and write instructions, using the parser's
	// per-instruction addresses for both the instruction's own word and
	// branch-displacement resolution.
	for _, inst := range program.Instructions {
		addr := inst.Address

		opcode, err := parser.EncodeInstruction(inst, addr, program.SymbolTable)
		if err != nil {
			return fmt.Errorf("failed to encode instruction at 0x%08X (%s): %w", addr, inst.Mnemonic, err)
		}

		if fault := machine.Memory.WriteVA(0, uint64(addr), uint64(opcode), 4); fault != nil {
			return fmt.Errorf("failed to write instruction at 0x%08X: %w", addr, fault)
		}
	}

	// Set PC to entry point and save entry point for debugger resets
	machine.CPU.PC = uint64(entryPoint)
	machine.EntryPoint = uint64(entryPoint)

	return nil
}
