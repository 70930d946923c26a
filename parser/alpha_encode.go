package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/axp64/alpha-emulator/vm"
)

// EncodeInstruction turns a parsed instruction into its 32-bit machine
// word, resolving any label operand against symtab. This is the guest-
// assembly fixture encoder spec.md section 4.5 calls for: it exists so
// tests can write "ADDQ R1, R2, R3" instead of hand-assembling hex, not to
// ship a general-purpose assembler.
func EncodeInstruction(inst *Instruction, addr uint32, symtab *SymbolTable) (uint32, error) {
	mnemonic := inst.Mnemonic

	if enc, ok := memRefEncoders[mnemonic]; ok {
		return encodeMemRef(enc, inst)
	}
	if op, ok := branchOpcodes[mnemonic]; ok {
		return encodeBranch(op, inst, addr, symtab)
	}
	if fnc, ok := intArithFuncs[mnemonic]; ok {
		return encodeOperate(vm.OpINTA, fnc, inst)
	}
	if fnc, ok := logicalFuncs[mnemonic]; ok {
		return encodeOperate(vm.OpINTL, fnc, inst)
	}
	if fnc, ok := byteManipFuncs[mnemonic]; ok {
		return encodeOperate(vm.OpINTS, fnc, inst)
	}
	if fnc, ok := multiplyFuncs[mnemonic]; ok {
		return encodeOperate(vm.OpINTM, fnc, inst)
	}
	if fnc, ok := fpOperateFuncs[mnemonic]; ok {
		return encodeFpOperate(fnc, inst)
	}
	if kind, ok := jumpKinds[mnemonic]; ok {
		return encodeJump(kind, inst)
	}
	if mnemonic == "CALL_PAL" {
		return encodePal(inst)
	}

	return 0, fmt.Errorf("unrecognized mnemonic %q at %s", inst.Mnemonic, inst.Pos)
}

// memRefEncoders maps a MemRef mnemonic to its primary opcode; the
// displacement field is a signed 16-bit byte offset, which LDAH scales by
// 65536 (vm/memref.go).
var memRefEncoders = map[string]uint32{
	"LDA": vm.OpLDA, "LDAH": vm.OpLDAH,
	"LDBU": vm.OpLDBU, "LDWU": vm.OpLDWU,
	"LDL": vm.OpLDL, "LDQ": vm.OpLDQ,
	"LDQU": vm.OpLDQU, "LDLL": vm.OpLDLL, "LDQL": vm.OpLDQL,
	"STB": vm.OpSTB, "STW": vm.OpSTW, "STL": vm.OpSTL, "STQ": vm.OpSTQ,
	"STQU": vm.OpSTQU, "STLC": vm.OpSTLC, "STQC": vm.OpSTQC,
	"LDF": vm.OpLDF, "LDG": vm.OpLDG, "LDS": vm.OpLDS, "LDT": vm.OpLDT,
	"STF": vm.OpSTF, "STG": vm.OpSTG, "STS": vm.OpSTS, "STT": vm.OpSTT,
}

var branchOpcodes = map[string]uint32{
	"BR": vm.OpBR, "BSR": vm.OpBSR,
	"BEQ": vm.OpBEQ, "BNE": vm.OpBNE, "BLT": vm.OpBLT, "BLE": vm.OpBLE,
	"BGT": vm.OpBGT, "BGE": vm.OpBGE, "BLBC": vm.OpBLBC, "BLBS": vm.OpBLBS,
	"FBEQ": vm.OpFBEQ, "FBNE": vm.OpFBNE, "FBLT": vm.OpFBLT,
	"FBLE": vm.OpFBLE, "FBGT": vm.OpFBGT, "FBGE": vm.OpFBGE,
}

// intArithFuncs mirrors vm's intArithTable, mnemonic-to-function-code,
// built by hand here since that table is named the other direction.
var intArithFuncs = map[string]uint32{
	"ADDL": vm.FncADDL, "ADDL/V": vm.FncADDLV,
	"ADDQ": vm.FncADDQ, "ADDQ/V": vm.FncADDQV,
	"SUBL": vm.FncSUBL, "SUBL/V": vm.FncSUBLV,
	"SUBQ": vm.FncSUBQ, "SUBQ/V": vm.FncSUBQV,
	"S4ADDL": vm.FncS4ADDL, "S4ADDQ": vm.FncS4ADDQ,
	"S8ADDL": vm.FncS8ADDL, "S8ADDQ": vm.FncS8ADDQ,
	"S4SUBL": vm.FncS4SUBL, "S4SUBQ": vm.FncS4SUBQ,
	"S8SUBL": vm.FncS8SUBL, "S8SUBQ": vm.FncS8SUBQ,
	"CMPEQ": vm.FncCMPEQ, "CMPLT": vm.FncCMPLT, "CMPLE": vm.FncCMPLE,
	"CMPULT": vm.FncCMPULT, "CMPULE": vm.FncCMPULE, "CMPBGE": vm.FncCMPBGE,
}

var logicalFuncs = map[string]uint32{
	"AND": vm.FncAND, "BIC": vm.FncBIC, "BIS": vm.FncBIS, "ORNOT": vm.FncORNOT,
	"XOR": vm.FncXOR, "EQV": vm.FncEQV,
	"CMOVEQ": vm.FncCMOVEQ, "CMOVNE": vm.FncCMOVNE,
	"CMOVLT": vm.FncCMOVLT, "CMOVLE": vm.FncCMOVLE,
	"CMOVGT": vm.FncCMOVGT, "CMOVGE": vm.FncCMOVGE,
	"CMOVLBS": vm.FncCMOVLBS, "CMOVLBC": vm.FncCMOVLBC,
	"AMASK": vm.FncAMASK, "IMPLVER": vm.FncIMPLVER,
}

var byteManipFuncs = map[string]uint32{
	"EXTBL": vm.FncEXTBL, "EXTWL": vm.FncEXTWL, "EXTLL": vm.FncEXTLL, "EXTQL": vm.FncEXTQL,
	"EXTWH": vm.FncEXTWH, "EXTLH": vm.FncEXTLH, "EXTQH": vm.FncEXTQH,
	"INSBL": vm.FncINSBL, "INSWL": vm.FncINSWL, "INSLL": vm.FncINSLL, "INSQL": vm.FncINSQL,
	"MSKBL": vm.FncMSKBL, "MSKWL": vm.FncMSKWL, "MSKLL": vm.FncMSKLL, "MSKQL": vm.FncMSKQL,
	"ZAP": vm.FncZAP, "ZAPNOT": vm.FncZAPNOT,
	"SLL": vm.FncSLL, "SRL": vm.FncSRL, "SRA": vm.FncSRA,
}

var multiplyFuncs = map[string]uint32{
	"MULL": vm.FncMULL, "MULL/V": vm.FncMULLV,
	"MULQ": vm.FncMULQ, "MULQ/V": vm.FncMULQV,
	"UMULH": vm.FncUMULH,
}

var fpOperateFuncs = map[string]uint32{
	"ADDS": vm.FncADDS, "ADDT": vm.FncADDT, "SUBS": vm.FncSUBS, "SUBT": vm.FncSUBT,
	"MULS": vm.FncMULS, "MULT": vm.FncMULT, "DIVS": vm.FncDIVS, "DIVT": vm.FncDIVT,
	"SQRTS": vm.FncSQRTS, "SQRTT": vm.FncSQRTT,
	"CMPTEQ": vm.FncCMPTEQ, "CMPTLT": vm.FncCMPTLT, "CMPTLE": vm.FncCMPTLE, "CMPTUN": vm.FncCMPTUN,
	"CVTTS": vm.FncCVTTS, "CVTST": vm.FncCVTST, "CVTQT": vm.FncCVTQT, "CVTTQ": vm.FncCVTTQ, "CVTQS": vm.FncCVTQS,
	"CPYS": vm.FncCPYS, "CPYSN": vm.FncCPYSN, "CPYSE": vm.FncCPYSE,
	"FCMOVEQ": vm.FncFCMOVEQ, "FCMOVNE": vm.FncFCMOVNE, "FCMOVLT": vm.FncFCMOVLT,
	"FCMOVLE": vm.FncFCMOVLE, "FCMOVGT": vm.FncFCMOVGT, "FCMOVGE": vm.FncFCMOVGE,
	"MT_FPCR": vm.FncMT_FPCR, "MF_FPCR": vm.FncMF_FPCR,
}

var jumpKinds = map[string]uint32{
	"JMP": vm.JumpKindJmp, "JSR": vm.JumpKindJsr,
	"RET": vm.JumpKindRet, "JSR_COROUTINE": vm.JumpKindJsrCoroutine,
}

func regNumber(tok string) (int, error) {
	switch strings.ToUpper(tok) {
	case "SP":
		return 30, nil
	case "RA":
		return 26, nil
	case "PV":
		return 27, nil
	case "ZERO", "FZERO":
		return 31, nil
	}
	if len(tok) >= 2 && (tok[0] == 'R' || tok[0] == 'F') {
		if n, err := strconv.Atoi(tok[1:]); err == nil && n >= 0 && n <= 31 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid register operand: %q", tok)
}

// parseImmediate parses a "#123", "#-5", "#0x2a", or "#'A'" operand.
func parseImmediate(tok string) (int64, error) {
	if !strings.HasPrefix(tok, "#") {
		return 0, fmt.Errorf("expected immediate operand, got %q", tok)
	}
	body := tok[1:]

	if len(body) >= 3 && body[0] == '\'' && body[len(body)-1] == '\'' {
		charContent := body[1 : len(body)-1]
		if len(charContent) == 1 {
			return int64(charContent[0]), nil
		}
		b, _, err := ParseEscapeChar(charContent)
		if err != nil {
			return 0, err
		}
		return int64(b), nil
	}

	negative := strings.HasPrefix(body, "-")
	if negative {
		body = body[1:]
	}

	var value uint64
	var err error
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		value, err = strconv.ParseUint(body[2:], 16, 64)
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		value, err = strconv.ParseUint(body[2:], 2, 64)
	default:
		value, err = strconv.ParseUint(body, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid immediate %q: %w", tok, err)
	}
	if negative {
		return -int64(value), nil
	}
	return int64(value), nil
}

// parseMemOperand splits a "disp(Reg)" operand into its displacement and
// register number.
func parseMemOperand(tok string) (int64, int, error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || tok[len(tok)-1] != ')' {
		return 0, 0, fmt.Errorf("expected disp(Reg) memory operand, got %q", tok)
	}
	dispStr := tok[:open]
	regStr := tok[open+1 : len(tok)-1]

	disp, err := parseSignedDecHex(dispStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid displacement %q: %w", dispStr, err)
	}
	reg, err := regNumber(regStr)
	if err != nil {
		return 0, 0, err
	}
	return disp, reg, nil
}

func parseSignedDecHex(s string) (int64, error) {
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var value uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		value, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		value, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if negative {
		return -int64(value), nil
	}
	return int64(value), nil
}

func encodeMemRef(op uint32, inst *Instruction) (uint32, error) {
	if len(inst.Operands) != 2 {
		return 0, fmt.Errorf("%s: expected 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}
	ra, err := regNumber(inst.Operands[0])
	if err != nil {
		return 0, err
	}
	disp, rb, err := parseMemOperand(inst.Operands[1])
	if err != nil {
		return 0, err
	}
	return vm.Encode(vm.FormatMemRef, vm.Fields{Op: op, Ra: ra, Rb: rb, Disp: disp})
}

func encodeBranch(op uint32, inst *Instruction, addr uint32, symtab *SymbolTable) (uint32, error) {
	var raTok, labelTok string
	switch len(inst.Operands) {
	case 1:
		raTok, labelTok = "R31", inst.Operands[0]
	case 2:
		raTok, labelTok = inst.Operands[0], inst.Operands[1]
	default:
		return 0, fmt.Errorf("%s: expected 1 or 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}
	ra, err := regNumber(raTok)
	if err != nil {
		return 0, err
	}
	target, err := symtab.Get(labelTok)
	if err != nil {
		return 0, err
	}
	disp := (int64(target) - int64(addr+4)) / 4
	return vm.Encode(vm.FormatBranch, vm.Fields{Op: op, Ra: ra, Disp: disp})
}

// operateOperands resolves the 3-operand (Ra, Rb-or-literal, Rc) shape
// every Operate-format instruction shares.
func operateOperands(inst *Instruction) (ra, rc int, rb int, lit uint32, litFlag bool, err error) {
	if len(inst.Operands) != 3 {
		err = fmt.Errorf("%s: expected 3 operands, got %d", inst.Mnemonic, len(inst.Operands))
		return
	}
	ra, err = regNumber(inst.Operands[0])
	if err != nil {
		return
	}
	if strings.HasPrefix(inst.Operands[1], "#") {
		var v int64
		v, err = parseImmediate(inst.Operands[1])
		if err != nil {
			return
		}
		lit = uint32(v) & 0xFF
		litFlag = true
	} else {
		rb, err = regNumber(inst.Operands[1])
		if err != nil {
			return
		}
	}
	rc, err = regNumber(inst.Operands[2])
	return
}

func encodeOperate(op, fnc uint32, inst *Instruction) (uint32, error) {
	ra, rc, rb, lit, litFlag, err := operateOperands(inst)
	if err != nil {
		return 0, err
	}
	return vm.Encode(vm.FormatOperate, vm.Fields{
		Op: op, Ra: ra, Rb: rb, Rc: rc, Fnc: fnc, Lit: lit, LitFlag: litFlag,
	})
}

func encodeFpOperate(fnc uint32, inst *Instruction) (uint32, error) {
	var fa, fb, fc string
	switch len(inst.Operands) {
	case 1:
		fa, fb, fc = "F31", inst.Operands[0], inst.Operands[0]
	case 2:
		fa, fb, fc = "F31", inst.Operands[0], inst.Operands[1]
	case 3:
		fa, fb, fc = inst.Operands[0], inst.Operands[1], inst.Operands[2]
	default:
		return 0, fmt.Errorf("%s: expected 1-3 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}
	faN, err := regNumber(fa)
	if err != nil {
		return 0, err
	}
	fbN, err := regNumber(fb)
	if err != nil {
		return 0, err
	}
	fcN, err := regNumber(fc)
	if err != nil {
		return 0, err
	}
	op := uint32(vm.OpFLTI)
	return vm.Encode(vm.FormatFpOperate, vm.Fields{Op: op, Fa: faN, Fb: fbN, Fc: fcN, Fnc: fnc})
}

func encodeJump(kind uint32, inst *Instruction) (uint32, error) {
	var raTok, rbTok string
	switch len(inst.Operands) {
	case 1:
		raTok = "R31"
		_, rb, err := parseMemOperand(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rbTok = fmt.Sprintf("R%d", rb)
	case 2:
		raTok = inst.Operands[0]
		_, rb, err := parseMemOperand(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		rbTok = fmt.Sprintf("R%d", rb)
	default:
		return 0, fmt.Errorf("%s: expected 1 or 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}
	ra, err := regNumber(raTok)
	if err != nil {
		return 0, err
	}
	rb, err := regNumber(rbTok)
	if err != nil {
		return 0, err
	}
	memFnc := kind << 14
	return vm.Encode(vm.FormatJump, vm.Fields{Op: vm.OpJUMP, Ra: ra, Rb: rb, MemFnc: memFnc})
}

func encodePal(inst *Instruction) (uint32, error) {
	if len(inst.Operands) != 1 {
		return 0, fmt.Errorf("CALL_PAL: expected 1 operand, got %d", len(inst.Operands))
	}
	fnc, err := parseImmediate(inst.Operands[0])
	if err != nil {
		return 0, err
	}
	return vm.Encode(vm.FormatPal, vm.Fields{Op: vm.OpPAL, PalFnc: uint32(fnc) & 0x3FFFFFF})
}
