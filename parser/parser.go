package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Instruction represents a parsed Alpha assembly instruction.
type Instruction struct {
	Label    string
	Mnemonic string // e.g. "ADDQ", "ADDQ/V", "LDA", "BEQ", "CALL_PAL"
	Operands []string
	Comment  string
	Pos      Position
	RawLine  string
	Address  uint32 // address this instruction will occupy in the code segment
}

// Directive represents an assembler directive.
type Directive struct {
	Name    string
	Args    []string
	Pos     Position
	RawLine string
	Label   string // Optional label before directive
	Comment string
	Address uint32 // Address where this directive's data should be placed
}

// Program represents a parsed assembly fixture.
type Program struct {
	Instructions []*Instruction
	Directives   []*Directive
	SymbolTable  *SymbolTable
	MacroTable   *MacroTable
	Origin       uint32 // Current assembly address (.org)
	OriginSet    bool   // Whether .org directive was explicitly used
}

// Parser parses Alpha assembly language fixtures.
type Parser struct {
	lexer          *Lexer
	tokens         []Token
	pos            int
	currentToken   Token
	peekToken      Token
	errors         *ErrorList
	symbolTable    *SymbolTable
	macroTable     *MacroTable
	numericLabels  *NumericLabelTable
	macroExpander  *MacroExpander
	preprocessor   *Preprocessor
	currentAddress uint32
	originSet      bool     // Track if .org directive has been encountered
	inputLines     []string // Cached split lines for getRawLineFromInput
}

// NewParser creates a new parser
func NewParser(input, filename string) *Parser {
	lexer := NewLexer(input, filename)
	p := &Parser{
		lexer:          lexer,
		tokens:         make([]Token, 0),
		pos:            0,
		errors:         &ErrorList{},
		symbolTable:    NewSymbolTable(),
		macroTable:     NewMacroTable(),
		numericLabels:  NewNumericLabelTable(),
		currentAddress: 0,
	}
	p.macroExpander = NewMacroExpander(p.macroTable)
	p.preprocessor = NewPreprocessor("")

	// Tokenize all input
	p.tokens = lexer.TokenizeAll()

	// Merge lexer errors
	for _, err := range lexer.Errors().Errors {
		p.errors.AddError(err)
	}

	// Initialize current and peek tokens
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Literal: "", Pos: p.currentToken.Pos}
	}
}

// skipNewlines skips newline and comment tokens
func (p *Parser) skipNewlines() {
	for p.currentToken.Type == TokenNewline || p.currentToken.Type == TokenComment {
		p.nextToken()
	}
}

// Parse parses the entire program.
func (p *Parser) Parse() (*Program, error) {
	program := &Program{
		Instructions: make([]*Instruction, 0),
		Directives:   make([]*Directive, 0),
		SymbolTable:  p.symbolTable,
		MacroTable:   p.macroTable,
		Origin:       0,
	}

	if err := p.firstPass(program); err != nil {
		return nil, err
	}

	if p.errors.HasErrors() {
		return nil, p.errors
	}

	if err := p.symbolTable.ResolveForwardReferences(); err != nil {
		return nil, err
	}

	if p.errors.HasErrors() {
		return nil, p.errors
	}

	return program, nil
}

// firstPass walks the token stream once, recording labels, directives, and
// instructions at the addresses they will occupy. Every instruction is a
// fixed 4 bytes (spec.md section 2's quadword-aligned 32-bit word), so
// this single pass is enough to resolve both forward and backward labels.
func (p *Parser) firstPass(program *Program) error {
	p.currentAddress = 0

	for p.currentToken.Type != TokenEOF {
		p.skipNewlines()

		if p.currentToken.Type == TokenEOF {
			break
		}

		var label string
		if p.currentToken.Type == TokenIdentifier && p.peekToken.Type == TokenColon {
			label = p.currentToken.Literal
			p.nextToken() // consume identifier
			p.nextToken() // consume colon

			if err := p.symbolTable.Define(label, SymbolLabel, p.currentAddress, p.currentToken.Pos); err != nil {
				p.errors.AddError(NewError(p.currentToken.Pos, ErrorDuplicateLabel, err.Error()))
			}
		}

		if p.currentToken.Type == TokenEOF {
			break
		}

		switch {
		case p.currentToken.Type == TokenDirective:
			directive := p.parseDirective()
			if directive != nil {
				directive.Label = label
				directive.Address = p.currentAddress
				directive.RawLine = p.getRawLineFromInput(directive.Pos.Line)
				program.Directives = append(program.Directives, directive)
				p.handleDirective(directive, program)
			}

		case p.currentToken.Type == TokenIdentifier:
			// Instructions are longword aligned even after odd-sized data.
			if aligned := (p.currentAddress + 3) &^ 3; aligned != p.currentAddress {
				p.currentAddress = aligned
				if sym, ok := p.symbolTable.Lookup(label); ok && label != "" {
					sym.Value = aligned
				}
			}
			inst := p.parseInstruction()
			if inst != nil {
				inst.Label = label
				inst.Address = p.currentAddress
				inst.RawLine = p.getRawLineFromInput(inst.Pos.Line)
				program.Instructions = append(program.Instructions, inst)
				p.currentAddress += 4
			}

		case p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenComment:
			p.errors.AddError(NewError(
				p.currentToken.Pos,
				ErrorSyntax,
				fmt.Sprintf("unexpected token: %s", p.currentToken.Type),
			))
			p.nextToken()
		}

		p.skipNewlines()
	}

	return nil
}

// parseDirective parses an assembler directive
func (p *Parser) parseDirective() *Directive {
	directive := &Directive{
		Name: p.currentToken.Literal,
		Args: make([]string, 0),
		Pos:  p.currentToken.Pos,
	}

	p.nextToken() // consume directive name

	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF && p.currentToken.Type != TokenComment {
		if p.currentToken.Type == TokenComma {
			p.nextToken()
			continue
		}

		arg := p.currentToken.Literal

		if p.currentToken.Type == TokenMinus && p.peekToken.Type == TokenNumber {
			p.nextToken() // consume minus
			arg = "-" + p.currentToken.Literal
		} else if p.currentToken.Type == TokenString {
			// Preserve quotes for character literals
			arg = "'" + p.currentToken.Literal + "'"
		}

		directive.Args = append(directive.Args, arg)
		p.nextToken()
	}

	if p.currentToken.Type == TokenComment {
		directive.Comment = p.currentToken.Literal
		p.nextToken()
	}

	return directive
}

// handleDirective processes directives that affect assembly state
func (p *Parser) handleDirective(d *Directive, program *Program) {
	switch d.Name {
	case ".text":
		if !p.originSet {
			if p.currentAddress == 0 {
				p.currentAddress = 0
			}
			program.Origin = p.currentAddress
			program.OriginSet = true
			p.originSet = true
		}

	case ".data":
		if !p.originSet && p.currentAddress == 0 {
			program.Origin = 0
			program.OriginSet = true
			p.originSet = true
		}

	case ".global", ".globl":
		// Export declaration; no effect on a single-module fixture.

	case ".org":
		if len(d.Args) > 0 {
			if addr, err := parseNumber(d.Args[0]); err == nil {
				p.currentAddress = addr
				if !p.originSet {
					program.Origin = addr
					program.OriginSet = true
					p.originSet = true
				}
			} else {
				p.errors.AddError(NewError(d.Pos, ErrorSyntax, fmt.Sprintf("invalid .org address: %s", d.Args[0])))
			}
		}

	case ".equ", ".set":
		if len(d.Args) >= 2 {
			name := d.Args[0]
			if value, err := parseNumber(d.Args[1]); err == nil {
				if err := p.symbolTable.Define(name, SymbolConstant, value, d.Pos); err != nil {
					p.errors.AddError(NewError(d.Pos, ErrorDuplicateLabel, err.Error()))
				}
			} else {
				p.errors.AddError(NewError(d.Pos, ErrorSyntax, fmt.Sprintf("invalid constant value: %s", d.Args[1])))
			}
		}

	case ".word":
		p.currentAddress += uint32(len(d.Args) * 4) // #nosec G115 -- reasonable argument count

	case ".byte":
		p.currentAddress += uint32(len(d.Args)) // #nosec G115 -- reasonable argument count

	case ".ascii", ".asciz", ".string":
		if len(d.Args) > 0 {
			str := d.Args[0]
			if len(str) >= 2 && (str[0] == '"' || str[0] == '\'') {
				str = str[1 : len(str)-1]
			}
			processedStr := ProcessEscapeSequences(str)
			p.currentAddress += uint32(len(processedStr)) // #nosec G115 -- reasonable string length
			if d.Name == ".asciz" || d.Name == ".string" {
				p.currentAddress++
			}
		}

	case ".space", ".skip":
		if len(d.Args) > 0 {
			size, err := parseNumber(d.Args[0])
			if err != nil {
				size, err = p.symbolTable.Get(d.Args[0])
				if err != nil {
					p.errors.AddError(NewError(d.Pos, ErrorInvalidOperand,
						fmt.Sprintf("invalid size for .space: %s", d.Args[0])))
					return
				}
			}
			p.currentAddress += size
		}

	case ".align":
		if len(d.Args) > 0 {
			if alignPower, err := parseNumber(d.Args[0]); err == nil {
				alignBytes := uint32(1 << alignPower)
				mask := alignBytes - 1
				p.currentAddress = (p.currentAddress + mask) & ^mask
			}
		}

	case ".balign":
		if len(d.Args) > 0 {
			if align, err := parseNumber(d.Args[0]); err == nil && align > 0 {
				if p.currentAddress%align != 0 {
					p.currentAddress += align - (p.currentAddress % align)
				}
			}
		}
	}
}

// parseInstruction parses an Alpha instruction: a mnemonic (with an
// optional "/suffix" qualifier such as ADDQ/V or SUBT/SUI, each a
// separate token from the lexer since '/' is its own operator) followed
// by a comma-separated operand list.
func (p *Parser) parseInstruction() *Instruction {
	inst := &Instruction{
		Mnemonic: strings.ToUpper(p.currentToken.Literal),
		Operands: make([]string, 0),
		Pos:      p.currentToken.Pos,
	}
	p.nextToken() // consume mnemonic

	for p.currentToken.Type == TokenSlash {
		p.nextToken() // consume slash
		inst.Mnemonic += "/" + strings.ToUpper(p.currentToken.Literal)
		p.nextToken() // consume suffix
	}

	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF && p.currentToken.Type != TokenComment {
		operand := p.parseOperand()
		if operand != "" {
			inst.Operands = append(inst.Operands, operand)
		}

		if p.currentToken.Type == TokenComma {
			p.nextToken()
		} else {
			break
		}
	}

	if p.currentToken.Type == TokenComment {
		inst.Comment = p.currentToken.Literal
		p.nextToken()
	}

	return inst
}

// parseOperand parses a single operand: a register, an immediate, a
// base-displacement memory reference (disp(Rb)), or a bare label.
func (p *Parser) parseOperand() string {
	switch p.currentToken.Type {
	case TokenHash:
		return p.parseImmediateOperand()
	case TokenRegister:
		lit := p.currentToken.Literal
		p.nextToken()
		return lit
	case TokenLParen:
		return p.parseMemoryOperand("")
	case TokenMinus, TokenNumber:
		return p.parseNumberOrMemoryOperand()
	case TokenIdentifier:
		lit := p.currentToken.Literal
		p.nextToken()
		return lit
	default:
		lit := p.currentToken.Literal
		p.nextToken()
		return lit
	}
}

// parseImmediateOperand parses immediate values: #123, #-45, #'A'
func (p *Parser) parseImmediateOperand() string {
	var parts []string
	parts = append(parts, "#")
	p.nextToken()

	if p.currentToken.Type == TokenNumber || p.currentToken.Type == TokenIdentifier ||
		p.currentToken.Type == TokenMinus || p.currentToken.Type == TokenString {
		if p.currentToken.Type == TokenMinus {
			parts = append(parts, "-")
			p.nextToken()
		}
		if p.currentToken.Type == TokenString {
			parts = append(parts, "'"+p.currentToken.Literal+"'")
		} else {
			parts = append(parts, p.currentToken.Literal)
		}
		p.nextToken()
	}
	return strings.Join(parts, "")
}

// parseNumberOrMemoryOperand parses a (possibly negative) displacement,
// returning it bare if it is not followed by "(Rb)", or folded into a
// "disp(Rb)" memory operand if it is.
func (p *Parser) parseNumberOrMemoryOperand() string {
	disp := ""
	if p.currentToken.Type == TokenMinus {
		disp = "-"
		p.nextToken()
	}
	disp += p.currentToken.Literal
	p.nextToken()

	if p.currentToken.Type == TokenLParen {
		return p.parseMemoryOperand(disp)
	}
	return disp
}

// parseMemoryOperand parses "(Rb)" (disp already consumed by the caller,
// or empty for a zero-displacement reference) into "disp(Rb)".
func (p *Parser) parseMemoryOperand(disp string) string {
	p.nextToken() // consume '('
	reg := p.currentToken.Literal
	p.nextToken() // consume register
	if p.currentToken.Type == TokenRParen {
		p.nextToken() // consume ')'
	}
	if disp == "" {
		disp = "0"
	}
	return disp + "(" + reg + ")"
}

// parseNumber parses a number in various formats (decimal, hex, binary, octal)
func parseNumber(s string) (uint32, error) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var value uint64
	var err error

	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		value, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		value, err = strconv.ParseUint(s[2:], 2, 32)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		value, err = strconv.ParseUint(s[2:], 8, 32)
	default:
		value, err = strconv.ParseUint(s, 10, 32)
	}

	if err != nil {
		return 0, err
	}

	result := uint32(value)
	if negative {
		if result > uint32(math.MaxInt32)+1 {
			return 0, fmt.Errorf("negative value -%d is out of range for int32", result)
		}
		result = uint32(-int32(result)) // #nosec G115 -- bounds checked
	}

	return result, nil
}

// getRawLineFromInput extracts the raw source line for a given line number
func (p *Parser) getRawLineFromInput(lineNum int) string {
	if p.lexer == nil || p.lexer.input == "" {
		return ""
	}

	if p.inputLines == nil {
		p.inputLines = strings.Split(p.lexer.input, "\n")
	}

	if lineNum < 1 || lineNum > len(p.inputLines) {
		return ""
	}

	return p.inputLines[lineNum-1]
}

// Errors returns the error list
func (p *Parser) Errors() *ErrorList {
	return p.errors
}
