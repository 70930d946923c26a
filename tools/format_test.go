package tools

import (
	"strings"
	"testing"
)

func TestFormat_BasicInstruction(t *testing.T) {
	source := `ADDQ R0,#10,R1`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, "ADDQ") {
		t.Error("Expected ADDQ instruction in output")
	}

	if !strings.Contains(result, "R0,") && !strings.Contains(result, "R0 ,") {
		t.Errorf("Expected operand formatting with R0, got: %s", result)
	}
}

func TestFormat_WithLabel(t *testing.T) {
	source := `loop:ADDQ R0,#10,R1`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, "loop:") {
		t.Error("Expected label with colon")
	}

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) > 0 {
		line := lines[0]
		if !strings.HasPrefix(line, "loop:") {
			t.Error("Expected line to start with label")
		}
	}
}

func TestFormat_WithComment(t *testing.T) {
	source := `ADDQ R0, #10, R1 ; load 10 into R1`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, "load 10 into R1") {
		t.Errorf("Expected comment preserved, got: %s", result)
	}
}

func TestFormat_CompactStyle(t *testing.T) {
	source := "loop:\tADDQ R0, #10, R1\n"

	formatter := NewFormatter(CompactFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, "loop:") || !strings.Contains(result, "ADDQ") {
		t.Errorf("Expected compact formatting to retain label and mnemonic, got: %s", result)
	}
}

func TestFormat_MultipleInstructions(t *testing.T) {
	source := `
_start:	ADDQ R31, #10, R0
		SUBQ R0, #1, R0
		RET (R26)
`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	for _, want := range []string{"ADDQ", "SUBQ", "RET"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in formatted output, got: %s", want, result)
		}
	}
}

func TestFormat_DirectivePreserved(t *testing.T) {
	source := `
	.word 42
	.asciz "hello"
`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, ".word") || !strings.Contains(result, ".asciz") {
		t.Errorf("Expected directives preserved, got: %s", result)
	}
}

func TestFormat_SuffixedMnemonic(t *testing.T) {
	source := `ADDQ/V R0, R1, R2`

	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format(source, "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if !strings.Contains(result, "ADDQ/V") {
		t.Errorf("Expected overflow-trapping suffix preserved, got: %s", result)
	}
}

func TestFormat_EmptyInput(t *testing.T) {
	formatter := NewFormatter(DefaultFormatOptions())
	result, err := formatter.Format("", "test.s")

	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if strings.TrimSpace(result) != "" {
		t.Errorf("Expected empty output for empty input, got: %q", result)
	}
}
